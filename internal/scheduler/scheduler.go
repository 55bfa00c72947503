// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

// Package scheduler runs periodic maintenance jobs: rolling up raw page
// views into daily stats and pruning old events and views.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/circleseven/jekyll-admin/internal/store"
)

// Retention windows for pruned data.
const (
	EventRetention    = 90 * 24 * time.Hour
	PageViewRetention = 30 * 24 * time.Hour
)

// Scheduler owns the cron instance and the maintenance jobs.
type Scheduler struct {
	queries *store.Queries
	cron    *cron.Cron
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a scheduler over the given database.
func New(db *sql.DB, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		queries: store.New(db),
		cron:    cron.New(),
		logger:  logger,
		now:     time.Now,
	}
}

// Start registers the maintenance jobs and begins the cron loop.
func (s *Scheduler) Start() error {
	// Roll up yesterday's page views shortly after midnight UTC.
	if _, err := s.cron.AddFunc("15 0 * * *", func() {
		if err := s.RollupYesterday(); err != nil {
			s.logger.Error("analytics rollup failed", "error", err)
		}
	}); err != nil {
		return err
	}

	// Prune old events and raw page views during the quiet hours.
	if _, err := s.cron.AddFunc("30 3 * * *", func() {
		if err := s.Prune(); err != nil {
			s.logger.Error("retention prune failed", "error", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// RollupYesterday aggregates the previous UTC day's page views into
// daily_stats. Re-running for the same day replaces the row, so a
// restart never double-counts.
func (s *Scheduler) RollupYesterday() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	yesterday := s.now().UTC().AddDate(0, 0, -1)
	if err := s.queries.RollupDay(ctx, yesterday); err != nil {
		return err
	}

	s.logger.Info("rolled up daily analytics", "day", yesterday.Format("2006-01-02"))
	return nil
}

// Prune removes events and raw page views past their retention windows.
// Rolled-up daily stats are kept indefinitely.
func (s *Scheduler) Prune() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := s.now().UTC()

	events, err := s.queries.DeleteOldEvents(ctx, now.Add(-EventRetention))
	if err != nil {
		return err
	}

	views, err := s.queries.DeleteOldPageViews(ctx, now.Add(-PageViewRetention))
	if err != nil {
		return err
	}

	s.logger.Info("pruned old records", "events", events, "page_views", views)
	return nil
}
