// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

// Package api provides the REST handlers of the admin panel: content
// CRUD over the GitHub-backed collections, the bin, site settings,
// taxonomy, menus, previews, comments, and analytics.
package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/circleseven/jekyll-admin/internal/bin"
	"github.com/circleseven/jekyll-admin/internal/cache"
	"github.com/circleseven/jekyll-admin/internal/config"
	"github.com/circleseven/jekyll-admin/internal/github"
	"github.com/circleseven/jekyll-admin/internal/middleware"
	"github.com/circleseven/jekyll-admin/internal/store"
)

// ContentStore is the object store surface the handlers consume.
// *github.Client satisfies it; tests substitute a fake.
type ContentStore interface {
	FetchFile(ctx context.Context, path string) (*github.FileContent, error)
	ListDirectory(ctx context.Context, path string) ([]github.DirEntry, error)
	PutFile(ctx context.Context, path string, opts github.PutOptions) (*github.WriteResult, error)
	DeleteFile(ctx context.Context, path string, opts github.DeleteOptions) (*github.WriteResult, error)
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	cfg     *config.Config
	gh      ContentStore
	cache   cache.Cache
	bin     *bin.Service
	queries *store.Queries
	logger  *slog.Logger
	now     func() time.Time
}

// NewHandler creates the API handler set.
func NewHandler(cfg *config.Config, gh ContentStore, c cache.Cache, binSvc *bin.Service, db *sql.DB, logger *slog.Logger) *Handler {
	return &Handler{
		cfg:     cfg,
		gh:      gh,
		cache:   c,
		bin:     binSvc,
		queries: store.New(db),
		logger:  logger,
		now:     time.Now,
	}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes the flat error shape every endpoint shares: a short
// error category plus a human-readable message.
func WriteError(w http.ResponseWriter, statusCode int, errorName, message string) {
	WriteJSON(w, statusCode, map[string]string{
		"error":   errorName,
		"message": message,
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "Bad Request", message)
}

// WriteValidationError writes a 400 response carrying per-field errors.
func WriteValidationError(w http.ResponseWriter, message string, fields map[string]string) {
	WriteJSON(w, http.StatusBadRequest, map[string]any{
		"error":   "Validation failed",
		"message": message,
		"fields":  fields,
	})
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "Not Found", message)
}

// WriteConflict writes a 409 Conflict response.
func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, "Conflict", message)
}

// WriteMethodNotAllowed writes a 405 response.
func WriteMethodNotAllowed(w http.ResponseWriter) {
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed",
		"The requested HTTP method is not supported for this endpoint")
}

// WriteServiceUnavailable writes a 503 response for missing upstream
// configuration.
func WriteServiceUnavailable(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusServiceUnavailable, "GitHub integration not configured", message)
}

// writeServerError writes a 500 carrying the upstream failure's message.
// The stack-like detail is only exposed in development.
func (h *Handler) writeServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path,
		"request_id", middleware.GetRequestID(r.Context()), "error", err)

	body := map[string]any{
		"error":   "Server error",
		"message": err.Error(),
	}
	if h.cfg.IsDevelopment() {
		body["details"] = fmt.Sprintf("%+v", err)
	}
	WriteJSON(w, http.StatusInternalServerError, body)
}

// requireGitHub rejects mutating requests up front when the store token
// is absent, before any network call.
func (h *Handler) requireGitHub(w http.ResponseWriter) bool {
	if !h.cfg.GitHubConfigured() {
		WriteServiceUnavailable(w, "GITHUB_TOKEN environment variable is missing")
		return false
	}
	return true
}

// decodeBody parses a JSON request body into dst, replying 400 on
// malformed input.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteBadRequest(w, "Request body must be valid JSON")
		return false
	}
	return true
}
