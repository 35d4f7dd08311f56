// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the group list
// service and CLI.
//
// Configuration is loaded from a single file specified by either the
// GROUPLIST_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks and no automatic file
// search. Values in the file are applied over [Default]; unknown keys
// are an error.
//
// Variable expansion is performed on path fields after loading:
// ${VAR} and ${VAR:-default} patterns are expanded. No environment
// variable overrides a config value.
//
// [Config.Validate] reports every problem at once via errors.Join.
package config
