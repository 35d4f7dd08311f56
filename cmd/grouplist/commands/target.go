// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/riskful/grouplist/cmd/grouplist/cli"
	"github.com/riskful/grouplist/lib/config"
	"github.com/riskful/grouplist/lib/groupid"
	"github.com/riskful/grouplist/lib/listapi"
	"github.com/riskful/grouplist/lib/listclient"
	"github.com/riskful/grouplist/lib/reconcile"
	"github.com/riskful/grouplist/lib/secret"
	"github.com/riskful/grouplist/lib/service"
)

// ServerEnvVar supplies --server when the flag is not given. It must
// match the env tag on targetParams.Server.
const ServerEnvVar = "GROUPLIST_SERVER"

// targetParams selects where a command's lists live. Embedded in every
// list command's params.
type targetParams struct {
	Server     string        `json:"server"      flag:"server"      env:"GROUPLIST_SERVER" desc:"list service URL (default $GROUPLIST_SERVER); when unset, the store is edited directly"`
	SecretFile string        `json:"-"           flag:"secret-file" desc:"file holding the shared secret, or - to prompt (server mode)"`
	ConfigPath string        `json:"config"      flag:"config"      desc:"service config file for direct mode (default $GROUPLIST_CONFIG)"`
	Timeout    time.Duration `json:"timeout"     flag:"timeout"     default:"30s" desc:"overall deadline for the command"`
}

// listing is the output of the list command.
type listing struct {
	List        string  `json:"list"`
	IDs         []int64 `json:"ids"`
	Consistency string  `json:"consistency"`
}

// outcome is the output of one applied mutation.
type outcome struct {
	List        string `json:"list"`
	Action      string `json:"action"`
	GroupID     int64  `json:"group_id,omitempty"`
	Changed     bool   `json:"changed"`
	Message     string `json:"message"`
	Consistency string `json:"consistency"`
}

// lists is implemented by the server-mode and direct-mode targets.
type lists interface {
	List(ctx context.Context, name string) (*listing, error)
	Apply(ctx context.Context, name string, mutation reconcile.Mutation) (*outcome, error)
	Close()
}

// open resolves the target from params.
func (p *targetParams) open(logger *slog.Logger) (lists, error) {
	if p.Server != "" {
		return p.openRemote(p.Server)
	}
	return p.openDirect(logger)
}

func (p *targetParams) openRemote(server string) (lists, error) {
	shared, err := cli.ReadSecret(p.SecretFile)
	if err != nil {
		return nil, err
	}
	client, err := listclient.New(server, shared, &http.Client{Timeout: p.Timeout})
	if err != nil {
		shared.Close()
		return nil, cli.Validation("%w", err)
	}
	return &remoteLists{client: client, secret: shared}, nil
}

func (p *targetParams) openDirect(logger *slog.Logger) (lists, error) {
	var cfg *config.Config
	var err error
	if p.ConfigPath != "" {
		cfg, err = config.LoadFile(p.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, cli.Validation("%w (or pass --server to use a running service)", err)
	}
	result, cleanup, err := service.Bootstrap(service.BootstrapConfig{
		Config: cfg,
		Logger: logger,
	})
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	return &directLists{config: cfg, result: result, cleanup: cleanup}, nil
}

type remoteLists struct {
	client *listclient.Client
	secret *secret.Buffer
}

func (r *remoteLists) List(ctx context.Context, name string) (*listing, error) {
	response, err := r.client.List(ctx, name)
	if err != nil {
		return nil, err
	}
	return &listing{List: name, IDs: response.IDs, Consistency: response.Consistency}, nil
}

func (r *remoteLists) Apply(ctx context.Context, name string, mutation reconcile.Mutation) (*outcome, error) {
	var response *listapi.UpdateResponse
	var err error
	switch mutation.Op {
	case reconcile.OpAdd:
		response, err = r.client.Add(ctx, name, mutation.ID)
	case reconcile.OpRemove:
		response, err = r.client.Remove(ctx, name, mutation.ID)
	default:
		response, err = r.client.Reset(ctx, name)
	}
	if err != nil {
		return nil, err
	}
	return &outcome{
		List:        name,
		Action:      string(mutation.Op),
		GroupID:     int64(mutation.ID),
		Changed:     response.Changed,
		Message:     response.Message,
		Consistency: response.Consistency,
	}, nil
}

func (r *remoteLists) Close() { r.secret.Close() }

type directLists struct {
	config  *config.Config
	result  *service.BootstrapResult
	cleanup func()
}

func (d *directLists) lookup(name string) (string, *reconcile.Engine, error) {
	list, ok := d.config.List(name)
	if !ok {
		return "", nil, reconcile.Errorf(reconcile.KindNotFound, "unknown list %q", name)
	}
	return list.Key, d.result.Engines[name], nil
}

func (d *directLists) List(ctx context.Context, name string) (*listing, error) {
	key, engine, err := d.lookup(name)
	if err != nil {
		return nil, err
	}
	result, err := engine.List(ctx, key)
	if err != nil {
		return nil, err
	}
	return &listing{List: name, IDs: result.Set.Int64s(), Consistency: string(engine.Consistency())}, nil
}

func (d *directLists) Apply(ctx context.Context, name string, mutation reconcile.Mutation) (*outcome, error) {
	key, engine, err := d.lookup(name)
	if err != nil {
		return nil, err
	}
	result, err := engine.Apply(ctx, key, mutation)
	if err != nil {
		return nil, err
	}
	return &outcome{
		List:        name,
		Action:      string(mutation.Op),
		GroupID:     int64(mutation.ID),
		Changed:     result.Changed,
		Message:     listapi.Describe(mutation, result, name),
		Consistency: string(engine.Consistency()),
	}, nil
}

func (d *directLists) Close() { d.cleanup() }

// classify converts list failures into categorized CLI errors.
func classify(err error) error {
	var toolErr *cli.ToolError
	if errors.As(err, &toolErr) {
		return err
	}
	kind := reconcile.KindOf(err)
	var remote *listclient.Error
	if errors.As(err, &remote) {
		kind = remote.Kind
	}
	category := cli.CategoryTransient
	switch kind {
	case reconcile.KindBadRequest:
		category = cli.CategoryValidation
	case reconcile.KindNotFound:
		category = cli.CategoryNotFound
	case reconcile.KindUnauthorized:
		category = cli.CategoryForbidden
	case reconcile.KindConflict:
		category = cli.CategoryConflict
	}
	return &cli.ToolError{Category: category, Err: err}
}

// parseIDs parses group ID arguments.
func parseIDs(args []string) ([]groupid.ID, error) {
	ids := make([]groupid.ID, 0, len(args))
	for _, arg := range args {
		id, err := groupid.Parse(arg)
		if err != nil {
			return nil, cli.Validation("%w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
