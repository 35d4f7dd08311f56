// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// runServer starts server in the background and waits for it to bind.
// The returned channel yields Serve's result.
func runServer(t *testing.T, ctx context.Context, server *HTTPServer) <-chan error {
	t.Helper()
	result := make(chan error, 1)
	go func() { result <- server.Serve(ctx) }()
	select {
	case <-server.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("HTTPServer never bound")
	}
	return result
}

func TestHTTPServerServesUntilCancelled(t *testing.T) {
	server := NewHTTPServer(HTTPServerConfig{
		Address: "127.0.0.1:0",
		Handler: http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			io.WriteString(writer, "whitelist")
		}),
		ShutdownTimeout: time.Second,
		Logger:          slog.New(slog.DiscardHandler),
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	result := runServer(t, ctx, server)

	response, err := http.Post("http://"+server.Addr().String()+"/lists/whitelist/list", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	body, _ := io.ReadAll(response.Body)
	response.Body.Close()
	if response.StatusCode != http.StatusOK || string(body) != "whitelist" {
		t.Errorf("response = %d %q, want 200 %q", response.StatusCode, body, "whitelist")
	}

	cancel()
	select {
	case err := <-result:
		if err != nil {
			t.Errorf("Serve = %v after cancel, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestNewHTTPServerRequiresFields(t *testing.T) {
	handler := http.NotFoundHandler()
	logger := slog.New(slog.DiscardHandler)
	for name, config := range map[string]HTTPServerConfig{
		"address": {Handler: handler, Logger: logger},
		"handler": {Address: ":0", Logger: logger},
		"logger":  {Address: ":0", Handler: handler},
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("missing %s: NewHTTPServer did not panic", name)
				}
			}()
			NewHTTPServer(config)
		}()
	}
}

func TestHTTPServerAddressInUse(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer occupied.Close()

	server := NewHTTPServer(HTTPServerConfig{
		Address: occupied.Addr().String(),
		Handler: http.NotFoundHandler(),
		Logger:  slog.New(slog.DiscardHandler),
	})
	if err := server.Serve(t.Context()); err == nil {
		t.Fatal("Serve() on an occupied port = nil, want error")
	}
}

func TestInstrumentLogsRequests(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	handler := instrument(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusForbidden)
	}), logger)

	recorder := httptest.NewRecorder()
	body := strings.NewReader(`{"secret":"hunter2"}`)
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/lists/whitelist/list", body))

	var entry struct {
		Msg    string `json:"msg"`
		Path   string `json:"path"`
		Status int    `json:"status"`
	}
	if err := json.Unmarshal(logs.Bytes(), &entry); err != nil {
		t.Fatalf("decoding log line %q: %v", logs.String(), err)
	}
	if entry.Msg != "http request" || entry.Path != "/lists/whitelist/list" || entry.Status != http.StatusForbidden {
		t.Errorf("log entry = %+v", entry)
	}
	if strings.Contains(logs.String(), "hunter2") {
		t.Error("request body leaked into the access log")
	}
}

func TestInstrumentRecoversPanics(t *testing.T) {
	handler := instrument(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("engine bug")
	}), slog.New(slog.DiscardHandler))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/lists/whitelist/update", nil))

	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), `"error":"internal"`) {
		t.Errorf("body = %q", recorder.Body.String())
	}
}
