// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"
	"time"
)

type connectionParams struct {
	Server     string `flag:"server" desc:"service URL"`
	SecretFile string `flag:"secret-file" desc:"secret path"`
}

type testParams struct {
	JSONOutput
	connectionParams
	Yes     bool          `flag:"yes,y" desc:"skip confirmation"`
	Timeout time.Duration `flag:"timeout" default:"15s" desc:"request timeout"`
	Retries int64         `flag:"retries" default:"2" desc:"attempts"`
	Ignored string
}

func TestBindFlags(t *testing.T) {
	var params testParams
	flagSet := FlagsFromParams("test", &params)

	if err := flagSet.Parse([]string{"--json", "--server", "http://svc", "-y", "--retries", "5"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !params.OutputJSON {
		t.Error("OutputJSON = false, want true")
	}
	if params.Server != "http://svc" {
		t.Errorf("Server = %q, want %q", params.Server, "http://svc")
	}
	if !params.Yes {
		t.Error("Yes = false, want true")
	}
	if params.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v, want 15s", params.Timeout)
	}
	if params.Retries != 5 {
		t.Errorf("Retries = %d, want 5", params.Retries)
	}
	if flagSet.Lookup("ignored") != nil {
		t.Error("untagged field was bound")
	}
}

func TestBindFlagsRejects(t *testing.T) {
	var notPointer testParams
	if err := BindFlags(notPointer, FlagsFromParams("x", &struct{}{})); err == nil {
		t.Error("expected error for non-pointer params")
	}

	var badDefault struct {
		Yes bool `flag:"yes" default:"maybe"`
	}
	if err := BindFlags(&badDefault, FlagsFromParams("y", &struct{}{})); err == nil {
		t.Error("expected error for unparseable default")
	}

	var unsupported struct {
		Ratio float32 `flag:"ratio"`
	}
	if err := BindFlags(&unsupported, FlagsFromParams("z", &struct{}{})); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestBindFlagsEnvironmentDefault(t *testing.T) {
	type envParams struct {
		Server  string        `flag:"server" env:"TEST_PARAMS_SERVER"`
		Timeout time.Duration `flag:"timeout" default:"15s" env:"TEST_PARAMS_TIMEOUT"`
	}

	t.Setenv("TEST_PARAMS_SERVER", "http://from-env")
	t.Setenv("TEST_PARAMS_TIMEOUT", "")

	var params envParams
	flagSet := FlagsFromParams("env", &params)
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if params.Server != "http://from-env" {
		t.Errorf("Server = %q, want %q", params.Server, "http://from-env")
	}
	// An empty variable leaves the tag default in place.
	if params.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v, want 15s", params.Timeout)
	}

	var explicit envParams
	flagSet = FlagsFromParams("env", &explicit)
	if err := flagSet.Parse([]string{"--server", "http://flag"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if explicit.Server != "http://flag" {
		t.Errorf("Server = %q, want the flag value", explicit.Server)
	}

	t.Setenv("TEST_PARAMS_TIMEOUT", "soon")
	var broken envParams
	if err := BindFlags(&broken, FlagsFromParams("broken", &struct{}{})); err == nil {
		t.Error("expected error for unparseable environment value")
	}
}

func TestBindFlagsShadowedField(t *testing.T) {
	type outer struct {
		connectionParams
		Server string `flag:"endpoint"`
	}
	var params outer
	flagSet := FlagsFromParams("shadow", &params)
	if flagSet.Lookup("server") != nil {
		t.Error("shadowed embedded field was bound")
	}
	if flagSet.Lookup("endpoint") == nil {
		t.Error("outer field was not bound")
	}
	if flagSet.Lookup("secret-file") == nil {
		t.Error("promoted field was not bound")
	}
}
