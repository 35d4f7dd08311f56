// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Command grouplist is the operator CLI for group lists. It talks to a
// running grouplist-service, or edits the configured store directly.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/riskful/grouplist/cmd/grouplist/commands"
	"github.com/riskful/grouplist/lib/process"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.Root().Execute(ctx, os.Args[1:])
	stop()
	if err != nil {
		process.Fatal(err)
	}
}
