// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the grouplist
// operator CLI.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. Commands are assembled into a tree in
// cmd/grouplist/commands and dispatched via [Command.Execute], which
// handles flag parsing, subcommand routing, and structured help output
// with examples.
//
// Parameter structs bind their flags through struct tags with
// [FlagsFromParams]; embedding [JSONOutput] adds --json. When a user
// types an unknown subcommand or flag, the framework suggests the
// closest known name (edit distance <= 3).
//
// [ReadSecret] loads the shared list secret from a file or, for "-",
// from an interactive terminal prompt.
package cli
