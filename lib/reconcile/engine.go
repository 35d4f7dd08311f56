// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"context"
	"errors"
	"log/slog"

	"github.com/riskful/grouplist/lib/envelope"
	"github.com/riskful/grouplist/lib/groupid"
	"github.com/riskful/grouplist/lib/versionstore"
)

// State is a step of the update protocol.
type State string

const (
	StateIdle     State = "idle"
	StateFetching State = "fetching"
	StateDecoding State = "decoding"
	StateApplying State = "applying"
	StateEncoding State = "encoding"
	StateWriting  State = "writing"
	StateDone     State = "done"
	StateFailed   State = "failed"
)

// GroupValidator reports whether a group exists upstream. Returning an
// error means the answer is unknown.
type GroupValidator interface {
	GroupExists(ctx context.Context, id groupid.ID) (bool, error)
}

// Config configures an Engine.
type Config struct {
	// Store holds the artifacts. Required.
	Store versionstore.Store

	// Format is the envelope synthesised when the artifact is missing
	// or unrecoverable, and the envelope Reset writes. Defaults to
	// envelope.FormatDelimited.
	Format envelope.Format

	// Validator, when set, is consulted before an Add.
	Validator GroupValidator

	Logger *slog.Logger
}

// Engine runs mutations against one store. It holds no per-request
// state and is safe for concurrent use.
type Engine struct {
	store     versionstore.Store
	format    envelope.Format
	validator GroupValidator
	logger    *slog.Logger
}

// New returns an Engine. Panics if config.Store is nil.
func New(config Config) *Engine {
	if config.Store == nil {
		panic("reconcile: Config.Store is nil")
	}
	format := config.Format
	if format == envelope.FormatNone {
		format = envelope.FormatDelimited
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		store:     config.Store,
		format:    format,
		validator: config.Validator,
		logger:    logger,
	}
}

// Consistency reports the guarantee of the underlying store.
func (e *Engine) Consistency() versionstore.Consistency {
	return e.store.Consistency()
}

// Result describes a completed Apply.
type Result struct {
	// Changed is false when the mutation was a no-op (adding an ID
	// already present) and nothing was written.
	Changed bool

	// Repaired is true when the stored artifact was malformed and its
	// IDs were recovered by repair.
	Repaired bool

	State   State
	Version versionstore.Version
	Set     groupid.Set
}

// Listing is the result of List.
type Listing struct {
	Set      groupid.Set
	Repaired bool
	Version  versionstore.Version
}

// run tracks the state of one Apply.
type run struct {
	logger *slog.Logger
	state  State
}

func (r *run) enter(state State) {
	r.logger.Debug("reconcile state", "state", string(state))
	r.state = state
}

func (r *run) fail(kind Kind, detail string, cause error) error {
	failedIn := r.state
	r.enter(StateFailed)
	return &Error{Kind: kind, Detail: detail, State: failedIn, Err: cause}
}

// Apply performs one mutation against the artifact at key.
func (e *Engine) Apply(ctx context.Context, key string, mutation Mutation) (*Result, error) {
	if err := mutation.Validate(); err != nil {
		return nil, err
	}

	r := &run{logger: e.logger.With("list", key, "mutation", mutation.String()), state: StateIdle}

	if mutation.Op == OpAdd && e.validator != nil {
		exists, err := e.validator.GroupExists(ctx, mutation.ID)
		if err != nil {
			var classified *Error
			if errors.As(err, &classified) {
				return nil, err
			}
			return nil, r.fail(KindUpstreamUnavailable, "could not verify group", err)
		}
		if !exists {
			return nil, Errorf(KindBadRequest, "invalid group ID %d", int64(mutation.ID))
		}
	}

	r.enter(StateFetching)
	artifact, err := e.store.Fetch(ctx, key)
	expected := versionstore.NoVersion
	var content []byte
	switch {
	case err == nil:
		expected = artifact.Version
		content = artifact.Content
	case errors.Is(err, versionstore.ErrNotFound):
		r.logger.Info("list artifact missing, starting from an empty set")
	default:
		return nil, r.fail(KindUpstreamUnavailable, "could not read list", err)
	}

	r.enter(StateDecoding)
	decoded := envelope.Decode(content)
	prior := decoded.Envelope
	repaired := decoded.Outcome == envelope.Repaired
	if repaired {
		r.logger.Warn("list artifact was malformed, recovered by repair", "recovered", decoded.Set.Len())
	}
	if prior.Format == envelope.FormatNone {
		prior = envelope.New(e.format)
	}

	r.enter(StateApplying)
	next := decoded.Set
	switch mutation.Op {
	case OpAdd:
		var added bool
		next, added = decoded.Set.Add(mutation.ID)
		if !added {
			r.enter(StateDone)
			r.logger.Info("group already listed", "group_id", int64(mutation.ID))
			return &Result{Repaired: repaired, State: StateDone, Version: expected, Set: decoded.Set}, nil
		}
	case OpRemove:
		var removed bool
		next, removed = decoded.Set.Remove(mutation.ID)
		if !removed {
			return nil, r.fail(KindNotFound, "group ID not found in list", nil)
		}
	case OpReset:
		next = groupid.NewSet()
		prior = envelope.New(e.format)
	}

	r.enter(StateEncoding)
	encoded := envelope.Encode(next, prior)

	r.enter(StateWriting)
	version, err := e.store.Write(ctx, key, encoded, expected, mutation.message(key))
	if err != nil {
		switch {
		case errors.Is(err, versionstore.ErrVersionConflict),
			errors.Is(err, versionstore.ErrAlreadyExists),
			errors.Is(err, versionstore.ErrNotFound):
			return nil, r.fail(KindConflict, "list was modified concurrently", err)
		default:
			return nil, r.fail(KindUpstreamUnavailable, "could not write list", err)
		}
	}

	r.enter(StateDone)
	r.logger.Info("list updated", "version", string(version), "size", next.Len())
	return &Result{Changed: true, Repaired: repaired, State: StateDone, Version: version, Set: next}, nil
}

// List returns the IDs stored at key. A missing artifact is an empty
// list.
func (e *Engine) List(ctx context.Context, key string) (*Listing, error) {
	artifact, err := e.store.Fetch(ctx, key)
	if err != nil {
		if errors.Is(err, versionstore.ErrNotFound) {
			return &Listing{Set: groupid.NewSet()}, nil
		}
		return nil, &Error{Kind: KindUpstreamUnavailable, Detail: "could not read list", State: StateFetching, Err: err}
	}
	decoded := envelope.Decode(artifact.Content)
	if decoded.Outcome == envelope.Repaired {
		e.logger.Warn("list artifact was malformed, recovered by repair", "list", key, "recovered", decoded.Set.Len())
	}
	return &Listing{
		Set:      decoded.Set,
		Repaired: decoded.Outcome == envelope.Repaired,
		Version:  artifact.Version,
	}, nil
}
