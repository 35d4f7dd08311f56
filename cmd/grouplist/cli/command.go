// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// Command is a node in the CLI tree: either a group with Subcommands
// or a leaf with Run.
type Command struct {
	// Name as typed, e.g. "add".
	Name string

	// Aliases are alternative names, e.g. "rm" for remove.
	Aliases []string

	// Summary is the one-line listing in the parent's help.
	Summary string

	// Description is the longer text of the command's own help.
	Description string

	// Usage overrides the synthesized usage line.
	Usage string

	Examples []Example

	// Flags builds the flag set. Called on each parse, so it must
	// return a fresh set bound to the same destinations.
	Flags func() *pflag.FlagSet

	// Args checks positional arguments after flag parsing.
	Args ArgsRule

	Subcommands []*Command

	// Run receives the positional arguments and a logger tagged with
	// the command path. With Subcommands, Run handles the case where no
	// subcommand matches.
	Run func(ctx context.Context, args []string, logger *slog.Logger) error

	parent *Command
}

// Example is one entry of the help Examples section.
type Example struct {
	Description string
	Command     string
}

// ArgsRule validates positional arguments.
type ArgsRule func(args []string) error

// ExactArgs accepts exactly n arguments.
func ExactArgs(n int) ArgsRule {
	return func(args []string) error {
		if len(args) != n {
			return fmt.Errorf("expected %d argument(s), got %d", n, len(args))
		}
		return nil
	}
}

// MinArgs accepts n or more arguments.
func MinArgs(n int) ArgsRule {
	return func(args []string) error {
		if len(args) < n {
			return fmt.Errorf("expected at least %d argument(s), got %d", n, len(args))
		}
		return nil
	}
}

// Execute runs the command tree against args.
func (c *Command) Execute(ctx context.Context, args []string) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.PrintHelp(os.Stderr)
		return nil
	}

	if len(c.Subcommands) > 0 {
		if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
			return c.dispatch(ctx, args[0], args[1:])
		}
		if c.Run == nil {
			c.PrintHelp(os.Stderr)
			if len(args) == 0 {
				return Validation("subcommand required")
			}
			return Validation("subcommand required (got flag %q)", args[0])
		}
	}

	positional, err := c.parseFlags(args)
	if errors.Is(err, pflag.ErrHelp) {
		c.PrintHelp(os.Stderr)
		return nil
	}
	if err != nil {
		return err
	}

	if c.Run == nil {
		c.PrintHelp(os.Stderr)
		return Validation("no action defined for %q", c.fullName())
	}
	if c.Args != nil {
		if err := c.Args(positional); err != nil {
			return Validation("%v\n\nusage: %s", err, c.usage())
		}
	}
	return c.Run(ctx, positional, NewCommandLogger().With("command", c.fullName()))
}

func (c *Command) dispatch(ctx context.Context, name string, rest []string) error {
	for _, sub := range c.Subcommands {
		if sub.Name == name || slices.Contains(sub.Aliases, name) {
			sub.parent = c
			return sub.Execute(ctx, rest)
		}
	}
	if suggestion := suggestCommand(name, c.Subcommands); suggestion != "" {
		return Validation("unknown command %q (did you mean %q?)\n\nRun '%s --help' for usage.",
			name, suggestion, c.fullName())
	}
	return Validation("unknown command %q\n\nRun '%s --help' for usage.", name, c.fullName())
}

// parseFlags returns the positional arguments, or a validation error
// carrying a flag suggestion when one is close.
func (c *Command) parseFlags(args []string) ([]string, error) {
	if c.Flags == nil {
		return args, nil
	}
	flagSet := c.Flags()
	flagSet.SetOutput(io.Discard)
	err := flagSet.Parse(args)
	switch {
	case err == nil:
		return flagSet.Args(), nil
	case errors.Is(err, pflag.ErrHelp):
		return nil, err
	}

	message := err.Error()
	if strings.Contains(message, "unknown flag") || strings.Contains(message, "unknown shorthand flag") {
		// A fresh set: the failed parse may have consumed state.
		if suggestion := suggestFlag(args, c.Flags()); suggestion != "" {
			return nil, Validation("%s (did you mean %s?)\n\nRun '%s --help' for usage.",
				message, suggestion, c.fullName())
		}
	}
	return nil, Validation("%s\n\nRun '%s --help' for usage.", message, c.fullName())
}

func (c *Command) usage() string {
	switch {
	case c.Usage != "":
		return c.Usage
	case len(c.Subcommands) > 0:
		return c.fullName() + " <command> [flags]"
	default:
		return c.fullName() + " [flags]"
	}
}

// PrintHelp writes the command's help to w.
func (c *Command) PrintHelp(w io.Writer) {
	switch {
	case c.Description != "":
		fmt.Fprintf(w, "%s\n\n", c.Description)
	case c.Summary != "":
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}
	fmt.Fprintf(w, "Usage:\n  %s\n", c.usage())

	if len(c.Aliases) > 0 {
		fmt.Fprintf(w, "\nAliases:\n  %s\n", strings.Join(c.Aliases, ", "))
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		table := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(table, "  %s\t%s\n", sub.Name, sub.Summary)
		}
		table.Flush()
	}

	if c.Flags != nil {
		if flags := c.Flags().FlagUsages(); flags != "" {
			fmt.Fprintf(w, "\nFlags:\n%s", flags)
		}
	}

	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "\nExamples:\n")
		for _, example := range c.Examples {
			if example.Description != "" {
				fmt.Fprintf(w, "  # %s\n  %s\n\n", example.Description, example.Command)
				continue
			}
			fmt.Fprintf(w, "  %s\n", example.Command)
		}
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nRun '%s <command> --help' for more information on a command.\n", c.fullName())
	}
}

// fullName is the command path, e.g. "grouplist add".
func (c *Command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}
