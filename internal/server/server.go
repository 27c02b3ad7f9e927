/*
 * MIT License
 *
 * Copyright (c) 2026 Nguyen Thanh Phuong
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package server exposes indicator snapshots and controls over HTTP and
// streams updates over a websocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/phuonguno98/panelstat/internal/indicator"
	"github.com/phuonguno98/panelstat/internal/panel"
	"github.com/phuonguno98/panelstat/internal/scheduler"
	"github.com/phuonguno98/panelstat/pkg/version"
	"github.com/phuonguno98/panelstat/web"
)

const (
	// maxBodySize limits control request bodies.
	maxBodySize = 4 * 1024
	// requestTimeout bounds the wait for the event loop.
	requestTimeout = 5 * time.Second
)

// Panel is the subset of panel.Panel the server needs.
type Panel interface {
	Snapshots(ctx context.Context) ([]indicator.Snapshot, error)
	Snapshot(ctx context.Context, name string) (indicator.Snapshot, error)
	Hover(ctx context.Context, name string, in bool) error
	SetEnabled(ctx context.Context, name string, enabled bool) error
}

// Server represents the dashboard server.
type Server struct {
	panel  Panel
	hub    *Hub
	logger *slog.Logger
	router *mux.Router
}

// NewServer creates a new web server. hub may be nil to disable /ws.
func NewServer(p Panel, hub *Hub, logger *slog.Logger) *Server {
	s := &Server{
		panel:  p,
		hub:    hub,
		logger: logger,
		router: mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Add CORS middleware
	s.router.Use(corsMiddleware)
	// Add logging middleware
	s.router.Use(s.loggingMiddleware)

	s.router.HandleFunc("/", s.handleIndex).Methods("GET")
	s.router.HandleFunc("/api/version", s.handleGetVersion).Methods("GET")
	s.router.HandleFunc("/api/indicators", s.handleGetIndicators).Methods("GET")
	s.router.HandleFunc("/api/indicators/{name}", s.handleGetIndicator).Methods("GET")
	s.router.HandleFunc("/api/indicators/{name}/hover", s.handleHover).Methods("POST")
	s.router.HandleFunc("/api/indicators/{name}/enable", s.handleSetEnabled(true)).Methods("POST")
	s.router.HandleFunc("/api/indicators/{name}/disable", s.handleSetEnabled(false)).Methods("POST")

	if s.hub != nil {
		s.router.Handle("/ws", s.hub).Methods("GET")
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleIndex serves the embedded dashboard page.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	indexFile, err := web.Assets.Open("index.html")
	if err != nil {
		s.logger.Error("Failed to open index.html", "error", err)
		http.Error(w, "Internal Server Error: index.html not found", http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := indexFile.Close(); err != nil {
			s.logger.Warn("Failed to close index.html", "error", err)
		}
	}()

	if _, err := io.Copy(w, indexFile); err != nil {
		s.logger.Error("Failed to serve index.html", "error", err)
	}
}

// handleGetVersion returns version information from the version package.
func (s *Server) handleGetVersion(w http.ResponseWriter, _ *http.Request) {
	versionInfo := map[string]string{
		"version": version.Version,
		"commit":  version.Commit,
		"date":    version.Date,
	}
	s.writeJSON(w, versionInfo)
}

// handleGetIndicators returns snapshots of every indicator.
func (s *Server) handleGetIndicators(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	snaps, err := s.panel.Snapshots(ctx)
	if err != nil {
		s.writePanelError(w, err)
		return
	}
	s.writeJSON(w, snaps)
}

// handleGetIndicator returns one snapshot including its graph.
func (s *Server) handleGetIndicator(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	snap, err := s.panel.Snapshot(ctx, mux.Vars(r)["name"])
	if err != nil {
		s.writePanelError(w, err)
		return
	}
	s.writeJSON(w, snap)
}

type hoverRequest struct {
	Hover *bool `json:"hover"`
}

// handleHover forwards pointer enter/leave events to the popup coordinator.
func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var req hoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Hover == nil {
		s.writeError(w, `Body must be {"hover": true|false}`, http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := s.panel.Hover(ctx, mux.Vars(r)["name"], *req.Hover); err != nil {
		s.writePanelError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetEnabled starts or suspends an indicator's periodic trigger.
func (s *Server) handleSetEnabled(enabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		name := mux.Vars(r)["name"]
		if err := s.panel.SetEnabled(ctx, name, enabled); err != nil {
			s.writePanelError(w, err)
			return
		}

		s.logger.Info("Indicator toggled", "indicator", name, "enabled", enabled)
		w.WriteHeader(http.StatusNoContent)
	}
}

// writePanelError maps panel errors to HTTP status codes.
func (s *Server) writePanelError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, panel.ErrUnknownIndicator):
		status = http.StatusNotFound
	case errors.Is(err, indicator.ErrDestroyed), errors.Is(err, indicator.ErrNotInitialized):
		status = http.StatusConflict
	case errors.Is(err, scheduler.ErrLoopStopped),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("Panel request failed", "error", err)
	}
	s.writeError(w, err.Error(), status)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to write JSON response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	}); err != nil {
		s.logger.Error("Failed to write error response", "error", err)
	}
}
