// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/circleseven/jekyll-admin/internal/store"
)

func seedEvent(t *testing.T, h *Handler, level, category, message string) {
	t.Helper()
	_, err := h.queries.CreateEvent(context.Background(), store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
}

func TestEventsList(t *testing.T) {
	h, _ := newTestHandler(t, testConfig(), newFakeContentStore())
	seedEvent(t, h, store.EventLevelError, store.EventCategoryBin, "move failed")
	seedEvent(t, h, store.EventLevelWarning, store.EventCategoryCache, "redis unavailable")
	seedEvent(t, h, store.EventLevelError, store.EventCategoryContent, "put failed")

	rec := doRequest(t, h.EventsList, http.MethodGet, "/api/events?level=error", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Events []eventResponse `json:"events"`
		Total  int64           `json:"total"`
	}
	decodeResponse(t, rec, &resp)

	if len(resp.Events) != 2 {
		t.Fatalf("len(Events) = %d, want 2", len(resp.Events))
	}
	for _, e := range resp.Events {
		if e.Level != "error" {
			t.Errorf("Level = %q, want error", e.Level)
		}
	}
	// Total counts the whole log, not the filtered page.
	if resp.Total != 3 {
		t.Errorf("Total = %d, want 3", resp.Total)
	}
}

func TestEventsListCategoryFilter(t *testing.T) {
	h, _ := newTestHandler(t, testConfig(), newFakeContentStore())
	seedEvent(t, h, store.EventLevelError, store.EventCategoryBin, "move failed")
	seedEvent(t, h, store.EventLevelError, store.EventCategoryContent, "put failed")

	rec := doRequest(t, h.EventsList, http.MethodGet, "/api/events?category=bin", nil)

	var resp struct {
		Events []eventResponse `json:"events"`
	}
	decodeResponse(t, rec, &resp)
	if len(resp.Events) != 1 || resp.Events[0].Message != "move failed" {
		t.Errorf("Events = %+v", resp.Events)
	}
}

func TestEventsListValidation(t *testing.T) {
	h, _ := newTestHandler(t, testConfig(), newFakeContentStore())

	rec := doRequest(t, h.EventsList, http.MethodGet, "/api/events?level=fatal", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("level status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = doRequest(t, h.EventsList, http.MethodGet, "/api/events?limit=1000", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("limit status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
