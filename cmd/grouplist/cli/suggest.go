// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"

	"github.com/spf13/pflag"
)

// maxSuggestDistance is the largest edit distance still worth a "did
// you mean" hint.
const maxSuggestDistance = 3

// suggestCommand returns the subcommand name closest to unknown,
// matching aliases too, or "".
func suggestCommand(unknown string, commands []*Command) string {
	best, bestDistance := "", maxSuggestDistance+1
	for _, command := range commands {
		for _, name := range append([]string{command.Name}, command.Aliases...) {
			if distance := levenshtein(unknown, name); distance < bestDistance {
				best, bestDistance = command.Name, distance
			}
		}
	}
	return best
}

// suggestFlag looks at the first long flag in args that flagSet does
// not define and returns the closest defined flag as "--name", or "".
func suggestFlag(args []string, flagSet *pflag.FlagSet) string {
	unknown := firstUnknownFlag(args, flagSet)
	if unknown == "" {
		return ""
	}
	var names []string
	flagSet.VisitAll(func(flag *pflag.Flag) {
		names = append(names, flag.Name)
	})
	if match := closest(unknown, names); match != "" {
		return "--" + match
	}
	return ""
}

func firstUnknownFlag(args []string, flagSet *pflag.FlagSet) string {
	for _, arg := range args {
		if arg == "--" {
			return ""
		}
		name, isLong := strings.CutPrefix(arg, "--")
		if !isLong {
			continue
		}
		name, _, _ = strings.Cut(name, "=")
		if flagSet.Lookup(name) == nil {
			return name
		}
	}
	return ""
}

func closest(input string, candidates []string) string {
	best, bestDistance := "", maxSuggestDistance+1
	for _, candidate := range candidates {
		if distance := levenshtein(input, candidate); distance < bestDistance {
			best, bestDistance = candidate, distance
		}
	}
	return best
}

// levenshtein is the edit distance between a and b, computed over
// bytes with a single row of the matrix.
func levenshtein(a, b string) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	row := make([]int, len(a)+1)
	for i := range row {
		row[i] = i
	}
	for j := 1; j <= len(b); j++ {
		diagonal := row[0]
		row[0] = j
		for i := 1; i <= len(a); i++ {
			substitution := diagonal
			if a[i-1] != b[j-1] {
				substitution++
			}
			diagonal = row[i]
			row[i] = min(row[i]+1, row[i-1]+1, substitution)
		}
	}
	return row[len(a)]
}
