// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/riskful/grouplist/lib/secret"
)

// ReadSecret loads the shared list secret named by --secret-file. "-"
// prompts with echo off when stdin is a terminal and otherwise reads
// the first line of stdin; anything else is a file path.
func ReadSecret(path string) (*secret.Buffer, error) {
	switch {
	case path == "":
		return nil, Validation("--secret-file is required (use - to prompt)")
	case path == "-" && stdinIsTerminal():
		return promptSecret(os.Stderr)
	}
	buffer, err := secret.ReadFromPath(path)
	if err != nil {
		source := path
		if path == "-" {
			source = "stdin"
		}
		return nil, Validation("reading secret from %s: %w", source, err)
	}
	return buffer, nil
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func promptSecret(prompt io.Writer) (*secret.Buffer, error) {
	fmt.Fprint(prompt, "Secret: ")
	typed, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(prompt)
	if err != nil {
		return nil, Internal("reading secret: %w", err)
	}
	defer secret.Zero(typed)
	if len(typed) == 0 {
		return nil, Validation("secret is empty")
	}
	return secret.NewFromBytes(typed)
}

// Confirm asks a yes/no question on stderr. Without a terminal on
// stdin nobody can answer, so it reports false.
func Confirm(question string) (bool, error) {
	if !stdinIsTerminal() {
		return false, nil
	}
	fmt.Fprintf(os.Stderr, "%s [y/N] ", question)
	return affirmative(bufio.NewReader(os.Stdin)), nil
}

// affirmative reads one answer line. Only y and yes, in any case, agree.
func affirmative(reader *bufio.Reader) bool {
	line, _ := reader.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
