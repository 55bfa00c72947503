// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/circleseven/jekyll-admin/internal/version"
)

// statusResponse is the GET /api/status body.
type statusResponse struct {
	Status           string `json:"status"`
	Version          string `json:"version"`
	GitHubConfigured bool   `json:"github_configured"`
	CacheBackend     string `json:"cache_backend"`
}

// Status handles GET /api/status: a liveness probe that also reports
// whether the store credentials are present, so the frontend can warn
// before the first failing write.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	backend := "memory"
	if h.cfg.UseRedisCache() {
		backend = "redis"
	}

	WriteJSON(w, http.StatusOK, statusResponse{
		Status:           "ok",
		Version:          version.Get().Version,
		GitHubConfigured: h.cfg.GitHubConfigured(),
		CacheBackend:     backend,
	})
}
