// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/riskful/grouplist/lib/config"
	"github.com/riskful/grouplist/lib/listapi"
	"github.com/riskful/grouplist/lib/process"
	"github.com/riskful/grouplist/lib/secret"
	"github.com/riskful/grouplist/lib/service"
	"github.com/riskful/grouplist/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath  string
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "path to grouplist.yaml (default $"+config.EnvVar+")")
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("grouplist-service %s\n", version.Info())
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	level, _ := cfg.SlogLevel()
	logger := service.NewLogger(os.Stderr, level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Without a secret every list and update request is rejected; the
	// health check still answers.
	var shared *secret.Buffer
	if cfg.SecretFile != "" {
		shared, err = secret.ReadFromPath(cfg.SecretFile)
		if err != nil {
			return fmt.Errorf("reading secret_file: %w", err)
		}
		defer shared.Close()
	} else {
		logger.Warn("no secret_file configured; all list requests will be rejected")
	}

	boot, cleanup, err := service.Bootstrap(service.BootstrapConfig{
		Config: cfg,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer cleanup()

	handler := listapi.NewHandler(listapi.Config{
		Lists:  boot.Lists,
		Secret: shared,
		Logger: logger.With("component", "listapi"),
	})

	server := service.NewHTTPServer(service.HTTPServerConfig{
		Address: cfg.Listen,
		Handler: handler,
		Logger:  logger,
	})

	logger.Info("grouplist-service starting",
		"version", version.Info(),
		"listen", cfg.Listen,
	)
	if err := server.Serve(ctx); err != nil {
		return err
	}
	logger.Info("grouplist-service stopped")
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
