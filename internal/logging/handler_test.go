// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

package logging

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/circleseven/jekyll-admin/internal/store"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "jekyll-admin-logging-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := store.NewDB(f.Name())
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// discardHandler is a slog.Handler that accepts every record and drops
// it. slog.DiscardHandler is not usable here because its Enabled always
// reports false, which would filter records before Handle runs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func eventLog(t *testing.T, db *sql.DB) []store.Event {
	t.Helper()
	events, err := store.New(db).ListEvents(context.Background(), store.ListEventsParams{Limit: 100})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	return events
}

func TestWarnAndErrorReachEventLog(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Info("ignored at info")
	logger.Warn("cache backend unreachable", "backend", "redis")
	logger.Error("failed to invalidate collection cache", "key", "posts-list.json")

	events := eventLog(t, db)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	// Newest first.
	if events[0].Level != store.EventLevelError {
		t.Errorf("level = %q, want error", events[0].Level)
	}
	if events[0].Category != store.EventCategoryCache {
		t.Errorf("category = %q, want cache", events[0].Category)
	}
	if events[1].Level != store.EventLevelWarning {
		t.Errorf("level = %q, want warning", events[1].Level)
	}
}

func TestExplicitCategoryWins(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Warn("cache looks stale", "category", store.EventCategoryBin)

	events := eventLog(t, db)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Category != store.EventCategoryBin {
		t.Errorf("category = %q, want bin", events[0].Category)
	}
}

func TestRequestIDExtracted(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Error("upstream error", "request_id", "req-42", "status", "500")

	events := eventLog(t, db)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].RequestID != "req-42" {
		t.Errorf("request id = %q, want req-42", events[0].RequestID)
	}
	if events[0].Metadata != `{"status":"500"}` {
		t.Errorf("metadata = %q", events[0].Metadata)
	}
}

func TestCustomThreshold(t *testing.T) {
	db := testDB(t)
	handler := NewEventLogHandlerWithLevel(discardHandler{}, db, slog.LevelInfo)
	logger := slog.New(handler)

	logger.Info("moved item to bin", "filename", "2026-01-15-hello.md")

	events := eventLog(t, db)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Level != store.EventLevelInfo {
		t.Errorf("level = %q, want info", events[0].Level)
	}
	if events[0].Category != store.EventCategoryBin {
		t.Errorf("category = %q, want bin", events[0].Category)
	}
}

func TestQuietConsoleDoesNotSuppressEventLog(t *testing.T) {
	db := testDB(t)
	inner := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError})
	logger := slog.New(NewEventLogHandler(inner, db))

	// The console handler drops WARN; the event log must still get it.
	logger.Warn("bin copy written but source delete failed", "filename", "about.md")

	events := eventLog(t, db)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Level != store.EventLevelWarning {
		t.Errorf("level = %q, want warning", events[0].Level)
	}
}

func TestRecordTimePreserved(t *testing.T) {
	db := testDB(t)
	handler := NewEventLogHandler(discardHandler{}, db)

	at := time.Date(2026, 1, 21, 14, 30, 0, 0, time.UTC)
	r := slog.NewRecord(at, slog.LevelWarn, "bin listing degraded", 0)
	if err := handler.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	events := eventLog(t, db)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if !events[0].CreatedAt.Equal(at) {
		t.Errorf("created_at = %v, want %v", events[0].CreatedAt, at)
	}
}
