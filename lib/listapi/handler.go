// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package listapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/riskful/grouplist/lib/reconcile"
	"github.com/riskful/grouplist/lib/secret"
	"github.com/riskful/grouplist/lib/version"
)

// maxBodySize bounds request bodies. A request is a secret and one ID.
const maxBodySize = 64 << 10

// List is one served list.
type List struct {
	// Name appears in routes.
	Name string

	// Key is the artifact key the engine reads and writes.
	Key string

	Engine *reconcile.Engine
}

// Config configures a Handler.
type Config struct {
	Lists []List

	// Secret is the shared secret. Nil rejects every request.
	Secret *secret.Buffer

	Logger *slog.Logger
}

// Handler routes list API requests. It is an http.Handler suitable for
// service.HTTPServer.
type Handler struct {
	lists  map[string]List
	secret *secret.Buffer
	logger *slog.Logger
	mux    *http.ServeMux
}

// NewHandler builds the route table. Panics on a list without an
// engine or on duplicate names.
func NewHandler(config Config) *Handler {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	handler := &Handler{
		lists:  make(map[string]List, len(config.Lists)),
		secret: config.Secret,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	for _, list := range config.Lists {
		if list.Engine == nil {
			panic(fmt.Sprintf("listapi: list %q has no engine", list.Name))
		}
		if _, exists := handler.lists[list.Name]; exists {
			panic(fmt.Sprintf("listapi: duplicate list %q", list.Name))
		}
		handler.lists[list.Name] = list
	}

	handler.route(http.MethodGet, "/healthz", handler.serveHealth)
	handler.route(http.MethodPost, "/lists/{name}/list", func(writer http.ResponseWriter, request *http.Request) {
		handler.serveList(writer, request, request.PathValue("name"))
	})
	handler.route(http.MethodPost, "/lists/{name}/update", func(writer http.ResponseWriter, request *http.Request) {
		handler.serveUpdate(writer, request, request.PathValue("name"))
	})

	if _, ok := handler.lists["whitelist"]; ok {
		handler.route(http.MethodPost, "/list-whitelist", func(writer http.ResponseWriter, request *http.Request) {
			handler.serveList(writer, request, "whitelist")
		})
		handler.route(http.MethodPost, "/update-whitelist", func(writer http.ResponseWriter, request *http.Request) {
			handler.serveUpdate(writer, request, "whitelist")
		})
	}
	if _, ok := handler.lists["blacklist"]; ok {
		handler.route(http.MethodPost, "/update-blacklist", func(writer http.ResponseWriter, request *http.Request) {
			handler.serveUpdate(writer, request, "blacklist")
		})
	}
	handler.mux.HandleFunc("/", func(writer http.ResponseWriter, _ *http.Request) {
		writeJSON(writer, http.StatusNotFound, ErrorResponse{Error: string(reconcile.KindNotFound), Details: "no such route"})
	})

	return handler
}

// route registers serve for method on path. Any other method on path
// gets a JSON 405 naming the allowed one.
func (h *Handler) route(method, path string, serve http.HandlerFunc) {
	h.mux.HandleFunc(method+" "+path, serve)
	h.mux.HandleFunc(path, func(writer http.ResponseWriter, _ *http.Request) {
		writer.Header().Set("Allow", method)
		writeJSON(writer, http.StatusMethodNotAllowed, ErrorResponse{Error: MethodNotAllowed, Details: "use " + method})
	})
}

// ServeHTTP dispatches to the route table.
func (h *Handler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	h.mux.ServeHTTP(writer, request)
}

func (h *Handler) serveHealth(writer http.ResponseWriter, _ *http.Request) {
	writeJSON(writer, http.StatusOK, map[string]string{"status": "ok", "version": version.Short()})
}

func (h *Handler) serveList(writer http.ResponseWriter, request *http.Request, name string) {
	var body ListRequest
	if !h.decode(writer, request, &body) {
		return
	}
	if !h.authorize(writer, request, body.Secret) {
		return
	}
	list, ok := h.lookup(writer, name)
	if !ok {
		return
	}

	listing, err := list.Engine.List(request.Context(), list.Key)
	if err != nil {
		h.fail(writer, name, err)
		return
	}

	consistency := string(list.Engine.Consistency())
	writer.Header().Set(ConsistencyHeader, consistency)
	writeJSON(writer, http.StatusOK, ListResponse{
		IDs:         listing.Set.Int64s(),
		Consistency: consistency,
	})
}

func (h *Handler) serveUpdate(writer http.ResponseWriter, request *http.Request, name string) {
	var body UpdateRequest
	if !h.decode(writer, request, &body) {
		return
	}
	if !h.authorize(writer, request, body.Secret) {
		return
	}
	list, ok := h.lookup(writer, name)
	if !ok {
		return
	}

	mutation, err := body.Mutation()
	if err != nil {
		h.fail(writer, name, err)
		return
	}

	result, err := list.Engine.Apply(request.Context(), list.Key, mutation)
	if err != nil {
		h.fail(writer, name, err)
		return
	}

	consistency := string(list.Engine.Consistency())
	writer.Header().Set(ConsistencyHeader, consistency)
	writeJSON(writer, http.StatusOK, UpdateResponse{
		Message:     Describe(mutation, result, name),
		Changed:     result.Changed,
		Consistency: consistency,
	})
}

// decode reads a bounded JSON body into target, writing a 400 on
// failure.
func (h *Handler) decode(writer http.ResponseWriter, request *http.Request, target any) bool {
	data, err := io.ReadAll(http.MaxBytesReader(writer, request.Body, maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(writer, reconcile.Errorf(reconcile.KindBadRequest, "request body exceeds %d bytes", maxBodySize))
			return false
		}
		writeError(writer, reconcile.Errorf(reconcile.KindBadRequest, "reading request body"))
		return false
	}
	if len(data) == 0 {
		writeError(writer, reconcile.Errorf(reconcile.KindBadRequest, "empty request body"))
		return false
	}
	if err := json.Unmarshal(data, target); err != nil {
		writeError(writer, reconcile.Errorf(reconcile.KindBadRequest, "invalid JSON: %v", err))
		return false
	}
	return true
}

// authorize checks the presented secret. The secret itself is never
// logged.
func (h *Handler) authorize(writer http.ResponseWriter, request *http.Request, presented string) bool {
	if h.secret != nil && presented != "" && h.secret.Equal([]byte(presented)) {
		return true
	}
	h.logger.Warn("rejected request with wrong secret",
		"path", request.URL.Path,
		"remote_addr", request.RemoteAddr,
		"secret_configured", h.secret != nil,
	)
	writeError(writer, reconcile.Errorf(reconcile.KindUnauthorized, "wrong secret"))
	return false
}

func (h *Handler) lookup(writer http.ResponseWriter, name string) (List, bool) {
	list, ok := h.lists[name]
	if !ok {
		writeError(writer, reconcile.Errorf(reconcile.KindNotFound, "unknown list %q", name))
	}
	return list, ok
}

func (h *Handler) fail(writer http.ResponseWriter, name string, err error) {
	kind := reconcile.KindOf(err)
	if kind == reconcile.KindUpstreamUnavailable {
		h.logger.Error("list request failed", "list", name, "error", err)
	} else {
		h.logger.Info("list request rejected", "list", name, "kind", string(kind), "error", err)
	}
	writeError(writer, err)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind reconcile.Kind) int {
	switch kind {
	case reconcile.KindBadRequest:
		return http.StatusBadRequest
	case reconcile.KindUnauthorized:
		return http.StatusForbidden
	case reconcile.KindNotFound:
		return http.StatusNotFound
	case reconcile.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

// writeError writes the client-safe part of err. Causes wrapped inside
// a reconcile.Error stay out of the response.
func writeError(writer http.ResponseWriter, err error) {
	kind := reconcile.KindOf(err)
	details := "upstream failure"
	var classified *reconcile.Error
	if errors.As(err, &classified) {
		details = classified.Detail
	}
	writeJSON(writer, StatusFor(kind), ErrorResponse{Error: string(kind), Details: details})
}

func writeJSON(writer http.ResponseWriter, status int, value any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	json.NewEncoder(writer).Encode(value)
}

// Describe is the human-readable outcome of an applied mutation.
func Describe(mutation reconcile.Mutation, result *reconcile.Result, name string) string {
	switch mutation.Op {
	case reconcile.OpAdd:
		if !result.Changed {
			return "Group ID already added"
		}
		return fmt.Sprintf("Group ID %d added to %s", int64(mutation.ID), name)
	case reconcile.OpRemove:
		return fmt.Sprintf("Group ID %d removed from %s", int64(mutation.ID), name)
	default:
		return fmt.Sprintf("%s reset", name)
	}
}
