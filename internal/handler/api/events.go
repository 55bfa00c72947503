// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/circleseven/jekyll-admin/internal/store"
)

// eventResponse is one event log entry as the admin sees it.
type eventResponse struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EventsList handles GET /api/events: the operational event log, newest
// first, filterable by level and category.
func (h *Handler) EventsList(w http.ResponseWriter, r *http.Request) {
	level := r.URL.Query().Get("level")
	if level != "" && level != store.EventLevelInfo && level != store.EventLevelWarning && level != store.EventLevelError {
		WriteValidationError(w, "Request validation failed",
			map[string]string{"level": "level must be one of: info, warning, error"})
		return
	}

	limit := int64(100)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 || parsed > 500 {
			WriteValidationError(w, "Request validation failed",
				map[string]string{"limit": "limit must be between 1 and 500"})
			return
		}
		limit = parsed
	}

	events, err := h.queries.ListEvents(r.Context(), store.ListEventsParams{
		Level:    level,
		Category: r.URL.Query().Get("category"),
		Limit:    limit,
	})
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}

	total, err := h.queries.CountEvents(r.Context())
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}

	resp := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, eventResponse{
			ID:        e.ID,
			Level:     e.Level,
			Category:  e.Category,
			Message:   e.Message,
			Metadata:  e.Metadata,
			RequestID: e.RequestID,
			CreatedAt: e.CreatedAt,
		})
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"events": resp,
		"total":  total,
	})
}
