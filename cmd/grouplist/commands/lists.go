// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/riskful/grouplist/cmd/grouplist/cli"
	"github.com/riskful/grouplist/lib/groupid"
	"github.com/riskful/grouplist/lib/reconcile"
)

type listParams struct {
	cli.JSONOutput
	targetParams
}

func listCommand() *cli.Command {
	var params listParams
	return &cli.Command{
		Name:    "list",
		Summary: "Print the group IDs in a list",
		Description: `Print the group IDs in a list, one per line in ascending order.

A malformed artifact is read with best-effort repair; the repaired set
is printed but nothing is written back.`,
		Usage:   "grouplist list <list> [flags]",
		Aliases: []string{"ls"},
		Args:    cli.ExactArgs(1),
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Examples: []cli.Example{
			{Description: "Print the whitelist as JSON", Command: "grouplist list whitelist --json"},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			name := args[0]

			target, err := params.open(logger)
			if err != nil {
				return err
			}
			defer target.Close()

			ctx, cancel := context.WithTimeout(ctx, params.Timeout)
			defer cancel()

			result, err := target.List(ctx, name)
			if err != nil {
				return classify(err)
			}
			if done, err := params.EmitJSON(result); done {
				return err
			}
			for _, id := range result.IDs {
				fmt.Println(id)
			}
			return nil
		},
	}
}

type mutateParams struct {
	cli.JSONOutput
	targetParams
}

func addCommand() *cli.Command {
	var params mutateParams
	return &cli.Command{
		Name:    "add",
		Summary: "Add group IDs to a list",
		Description: `Add one or more group IDs to a list. Each ID is a separate commit.
Adding an ID that is already present succeeds without a write.

Lists configured with validate_groups reject IDs the groups API does
not know.`,
		Usage: "grouplist add <list> <group-id>... [flags]",
		Args:  cli.MinArgs(2),
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("add", &params)
		},
		Examples: []cli.Example{
			{Description: "Whitelist two groups", Command: "grouplist add whitelist 1234567 7654321"},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			return runMutations(ctx, args, &params, logger, reconcile.Add)
		},
	}
}

func removeCommand() *cli.Command {
	var params mutateParams
	return &cli.Command{
		Name:    "remove",
		Summary: "Remove group IDs from a list",
		Description: `Remove one or more group IDs from a list. Each ID is a separate
commit. An ID that is not in the list fails with a not-found error
(exit status 3); IDs before it stay removed.`,
		Usage:   "grouplist remove <list> <group-id>... [flags]",
		Aliases: []string{"rm"},
		Args:    cli.MinArgs(2),
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("remove", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			return runMutations(ctx, args, &params, logger, reconcile.Remove)
		},
	}
}

// runMutations applies build(id) for every ID argument in order and
// stops at the first failure. IDs are validated before any I/O.
func runMutations(ctx context.Context, args []string, params *mutateParams, logger *slog.Logger, build func(id groupid.ID) reconcile.Mutation) error {
	name := args[0]
	ids, err := parseIDs(args[1:])
	if err != nil {
		return err
	}

	target, err := params.open(logger)
	if err != nil {
		return err
	}
	defer target.Close()

	ctx, cancel := context.WithTimeout(ctx, params.Timeout)
	defer cancel()

	outcomes := make([]*outcome, 0, len(ids))
	for _, id := range ids {
		result, err := target.Apply(ctx, name, build(id))
		if err != nil {
			if len(outcomes) > 0 {
				emitOutcomes(&params.JSONOutput, outcomes)
			}
			return classify(err)
		}
		outcomes = append(outcomes, result)
	}
	return emitOutcomes(&params.JSONOutput, outcomes)
}

type resetParams struct {
	cli.JSONOutput
	targetParams
	Yes bool `json:"-" flag:"yes,y" desc:"reset without asking for confirmation"`
}

func resetCommand() *cli.Command {
	var params resetParams
	return &cli.Command{
		Name:    "reset",
		Summary: "Empty a list",
		Description: `Replace a list with an empty one. The artifact is rewritten from
the list's template, discarding any surrounding content.

Asks for confirmation on a terminal; pass --yes in scripts.`,
		Usage: "grouplist reset <list> [flags]",
		Args:  cli.ExactArgs(1),
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("reset", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			name := args[0]

			if !params.Yes {
				confirmed, err := cli.Confirm(fmt.Sprintf("Remove every group ID from %s?", name))
				if err != nil {
					return err
				}
				if !confirmed {
					return cli.Validation("reset of %s not confirmed (pass --yes to skip the prompt)", name)
				}
			}

			target, err := params.open(logger)
			if err != nil {
				return err
			}
			defer target.Close()

			ctx, cancel := context.WithTimeout(ctx, params.Timeout)
			defer cancel()

			result, err := target.Apply(ctx, name, reconcile.Reset())
			if err != nil {
				return classify(err)
			}
			return emitOutcomes(&params.JSONOutput, []*outcome{result})
		},
	}
}

func emitOutcomes(output *cli.JSONOutput, outcomes []*outcome) error {
	if done, err := output.EmitJSON(outcomes); done {
		return err
	}
	for _, result := range outcomes {
		fmt.Println(result.Message)
	}
	return nil
}
