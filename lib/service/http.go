// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// HTTPServerConfig configures an HTTPServer.
type HTTPServerConfig struct {
	// Address is the TCP listen address, e.g. ":8080". Port 0 picks a
	// free port, readable from Addr once Ready fires. Required.
	Address string

	// Handler serves requests. It is wrapped with access logging and
	// panic recovery. Required.
	Handler http.Handler

	// ShutdownTimeout bounds the drain of in-flight requests.
	// Default: 10s
	ShutdownTimeout time.Duration

	// WriteTimeout bounds one request: a store round trip plus a
	// groups API lookup.
	// Default: 30s
	WriteTimeout time.Duration

	// Logger is required.
	Logger *slog.Logger
}

// HTTPServer runs the list API until its context is cancelled.
type HTTPServer struct {
	config HTTPServerConfig
	ready  chan struct{}
	addr   net.Addr
}

// NewHTTPServer validates config. Panics on a missing address, handler
// or logger.
func NewHTTPServer(config HTTPServerConfig) *HTTPServer {
	switch {
	case config.Address == "":
		panic("service.HTTPServer: Address is required")
	case config.Handler == nil:
		panic("service.HTTPServer: Handler is required")
	case config.Logger == nil:
		panic("service.HTTPServer: Logger is required")
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = 30 * time.Second
	}
	return &HTTPServer{config: config, ready: make(chan struct{})}
}

// Ready is closed once the listener is bound.
func (s *HTTPServer) Ready() <-chan struct{} {
	return s.ready
}

// Addr is the bound address. Valid after Ready.
func (s *HTTPServer) Addr() net.Addr {
	return s.addr
}

// Serve binds, serves until ctx is cancelled, then drains for up to
// ShutdownTimeout. A bind failure is returned before Ready fires.
func (s *HTTPServer) Serve(ctx context.Context) error {
	logger := s.config.Logger
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.config.Address, err)
	}
	s.addr = listener.Addr()
	close(s.ready)

	server := &http.Server{
		Handler:           instrument(s.config.Handler, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    16 << 10,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
	logger.Info("http server listening", "address", s.addr.String())

	failed := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()

	select {
	case err := <-failed:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("http server shutting down", "timeout", s.config.ShutdownTimeout)
	drainCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(drainCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
		return fmt.Errorf("http server shutdown: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}

// statusRecorder captures the status written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(data []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(data)
}

// instrument logs one line per request and turns a handler panic into
// a 500 instead of a dropped connection. Request bodies, which carry
// the shared secret, are never logged.
func instrument(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		recorder := &statusRecorder{ResponseWriter: writer}
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}
				logger.Error("handler panic",
					"method", request.Method,
					"path", request.URL.Path,
					"panic", fmt.Sprint(recovered),
				)
				if recorder.status == 0 {
					recorder.Header().Set("Content-Type", "application/json")
					recorder.WriteHeader(http.StatusInternalServerError)
					fmt.Fprint(recorder, `{"error":"internal","details":"internal error"}`+"\n")
				}
			}
			level := slog.LevelInfo
			if request.URL.Path == "/healthz" {
				level = slog.LevelDebug
			}
			logger.Log(request.Context(), level, "http request",
				"method", request.Method,
				"path", request.URL.Path,
				"status", recorder.status,
				"duration", time.Since(start),
				"remote_addr", request.RemoteAddr,
			)
		}()
		next.ServeHTTP(recorder, request)
	})
}
