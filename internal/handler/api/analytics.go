// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

package api

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/circleseven/jekyll-admin/internal/store"
)

const maxTrackedPathLen = 500

// trackRequest is the body of a page view beacon.
type trackRequest struct {
	Path     string `json:"path"`
	Referrer string `json:"referrer"`
}

// AnalyticsTrack handles POST /api/analytics: record one page view.
// The visitor hash is derived from address and user agent; no raw
// addresses are stored.
func (h *Handler) AnalyticsTrack(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if !decodeBody(w, r, &req) {
		return
	}

	fields := make(map[string]string)
	switch {
	case req.Path == "":
		fields["path"] = "path is required"
	case len(req.Path) > maxTrackedPathLen:
		fields["path"] = "path is too long"
	case !strings.HasPrefix(req.Path, "/"):
		fields["path"] = "path must start with /"
	}
	if len(fields) > 0 {
		WriteValidationError(w, "Request validation failed", fields)
		return
	}

	err := h.queries.CreatePageView(r.Context(), store.CreatePageViewParams{
		Path:        req.Path,
		Referrer:    req.Referrer,
		VisitorHash: visitorHash(r),
		CreatedAt:   h.now().UTC(),
	})
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusAccepted, map[string]any{"success": true})
}

// analyticsSummary is the GET /api/analytics response.
type analyticsSummary struct {
	ViewsLast7Days int64             `json:"views_last_7_days"`
	TopPaths       []store.PathCount `json:"top_paths"`
	Daily          []store.DailyStat `json:"daily"`
}

// AnalyticsSummary handles GET /api/analytics.
func (h *Handler) AnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	since := h.now().UTC().Add(-7 * 24 * time.Hour)

	views, err := h.queries.CountViewsSince(r.Context(), since)
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}

	top, err := h.queries.TopPathsSince(r.Context(), since, 10)
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}
	if top == nil {
		top = []store.PathCount{}
	}

	daily, err := h.queries.ListDailyStats(r.Context(), 30)
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}
	if daily == nil {
		daily = []store.DailyStat{}
	}

	WriteJSON(w, http.StatusOK, analyticsSummary{
		ViewsLast7Days: views,
		TopPaths:       top,
		Daily:          daily,
	})
}

// visitorHash derives a stable, non-reversible visitor key for distinct
// counting.
func visitorHash(r *http.Request) string {
	ip := r.Header.Get("X-Real-IP")
	if ip == "" {
		ip = r.Header.Get("X-Forwarded-For")
	}
	if ip == "" {
		ip = r.RemoteAddr
	}
	sum := sha256.Sum256([]byte(ip + "|" + r.UserAgent()))
	return hex.EncodeToString(sum[:8])
}
