// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands assembles the grouplist CLI command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riskful/grouplist/cmd/grouplist/cli"
	"github.com/riskful/grouplist/lib/version"
)

// Root builds and returns the complete grouplist command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "grouplist",
		Description: `grouplist: manage group whitelists and blacklists.

Commands talk to a running list service (--server) using the shared
secret, or edit the configured store directly (--config) with the
service's own store credentials.`,
		Subcommands: []*cli.Command{
			listCommand(),
			addCommand(),
			removeCommand(),
			resetCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, _ []string, _ *slog.Logger) error {
					fmt.Printf("grouplist %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Print the whitelist from a running service",
				Command:     "grouplist list whitelist --server https://lists.example.com --secret-file ~/.grouplist-secret",
			},
			{
				Description: "Add a group to the whitelist without a running service",
				Command:     "grouplist add whitelist 1234567 --config /etc/grouplist/grouplist.yaml",
			},
		},
	}
}
