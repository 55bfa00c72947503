// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"time"
)

// Event levels recorded in the event log.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories recorded in the event log.
const (
	EventCategorySystem    = "system"
	EventCategoryContent   = "content"
	EventCategoryBin       = "bin"
	EventCategoryCache     = "cache"
	EventCategoryComment   = "comment"
	EventCategoryAnalytics = "analytics"
)

// Comment moderation states.
const (
	CommentStatusPending  = "pending"
	CommentStatusApproved = "approved"
	CommentStatusSpam     = "spam"
)

// DBTX is the subset of *sql.DB and *sql.Tx the queries need.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries wraps a database handle with typed accessors.
type Queries struct {
	db DBTX
}

// New creates a Queries instance over the given handle.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Event is one row of the event log.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	Metadata  string
	RequestID string
	CreatedAt time.Time
}

// CreateEventParams holds the fields of a new event log entry.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	Metadata  string
	RequestID string
	CreatedAt time.Time
}

// CreateEvent inserts an event log entry and returns its id.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (int64, error) {
	result, err := q.db.ExecContext(ctx,
		`INSERT INTO events (level, category, message, metadata, request_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		arg.Level, arg.Category, arg.Message, arg.Metadata, arg.RequestID, arg.CreatedAt)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListEventsParams pages through the event log, newest first. Level and
// Category filter when non-empty.
type ListEventsParams struct {
	Level    string
	Category string
	Limit    int64
	Offset   int64
}

// ListEvents returns a page of the event log, newest first.
func (q *Queries) ListEvents(ctx context.Context, arg ListEventsParams) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, level, category, message, metadata, request_id, created_at
		 FROM events
		 WHERE (? = '' OR level = ?) AND (? = '' OR category = ?)
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		arg.Level, arg.Level, arg.Category, arg.Category, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.Metadata, &e.RequestID, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountEvents returns the total number of event log entries.
func (q *Queries) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}

// DeleteOldEvents removes events created before the cutoff and returns
// how many were deleted.
func (q *Queries) DeleteOldEvents(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Comment is one reader comment on a post.
type Comment struct {
	ID           int64
	PostFilename string
	Author       string
	Email        string
	Body         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateCommentParams holds the fields of a new comment. Status defaults
// to pending when empty.
type CreateCommentParams struct {
	PostFilename string
	Author       string
	Email        string
	Body         string
	CreatedAt    time.Time
}

// CreateComment inserts a pending comment and returns its id.
func (q *Queries) CreateComment(ctx context.Context, arg CreateCommentParams) (int64, error) {
	result, err := q.db.ExecContext(ctx,
		`INSERT INTO comments (post_filename, author, email, body, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.PostFilename, arg.Author, arg.Email, arg.Body, CommentStatusPending, arg.CreatedAt, arg.CreatedAt)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetComment returns a single comment by id.
func (q *Queries) GetComment(ctx context.Context, id int64) (Comment, error) {
	var c Comment
	err := q.db.QueryRowContext(ctx,
		`SELECT id, post_filename, author, email, body, status, created_at, updated_at
		 FROM comments WHERE id = ?`, id).
		Scan(&c.ID, &c.PostFilename, &c.Author, &c.Email, &c.Body, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ListCommentsParams filters the comment listing. Empty fields match all.
type ListCommentsParams struct {
	PostFilename string
	Status       string
	Limit        int64
	Offset       int64
}

// ListComments returns comments matching the filter, newest first.
func (q *Queries) ListComments(ctx context.Context, arg ListCommentsParams) ([]Comment, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, post_filename, author, email, body, status, created_at, updated_at
		 FROM comments
		 WHERE (? = '' OR post_filename = ?) AND (? = '' OR status = ?)
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		arg.PostFilename, arg.PostFilename, arg.Status, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostFilename, &c.Author, &c.Email, &c.Body, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// UpdateCommentStatusParams moves a comment between moderation states.
type UpdateCommentStatusParams struct {
	ID        int64
	Status    string
	UpdatedAt time.Time
}

// UpdateCommentStatus changes a comment's moderation state. It reports
// sql.ErrNoRows when the comment does not exist.
func (q *Queries) UpdateCommentStatus(ctx context.Context, arg UpdateCommentStatusParams) error {
	result, err := q.db.ExecContext(ctx,
		`UPDATE comments SET status = ?, updated_at = ? WHERE id = ?`,
		arg.Status, arg.UpdatedAt, arg.ID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteComment removes a comment. It reports sql.ErrNoRows when the
// comment does not exist.
func (q *Queries) DeleteComment(ctx context.Context, id int64) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// PageView is one recorded page view.
type PageView struct {
	ID          int64
	Path        string
	Referrer    string
	VisitorHash string
	CreatedAt   time.Time
}

// CreatePageViewParams holds the fields of a recorded page view.
type CreatePageViewParams struct {
	Path        string
	Referrer    string
	VisitorHash string
	CreatedAt   time.Time
}

// CreatePageView records a page view.
func (q *Queries) CreatePageView(ctx context.Context, arg CreatePageViewParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO page_views (path, referrer, visitor_hash, created_at)
		 VALUES (?, ?, ?, ?)`,
		arg.Path, arg.Referrer, arg.VisitorHash, arg.CreatedAt)
	return err
}

// CountViewsSince returns the number of page views at or after the cutoff.
func (q *Queries) CountViewsSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM page_views WHERE created_at >= ?`, since).Scan(&n)
	return n, err
}

// PathCount is a page path with its view count.
type PathCount struct {
	Path  string
	Views int64
}

// TopPathsSince returns the most viewed paths at or after the cutoff.
func (q *Queries) TopPathsSince(ctx context.Context, since time.Time, limit int64) ([]PathCount, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT path, COUNT(*) AS views FROM page_views
		 WHERE created_at >= ?
		 GROUP BY path
		 ORDER BY views DESC, path ASC
		 LIMIT ?`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []PathCount
	for rows.Next() {
		var pc PathCount
		if err := rows.Scan(&pc.Path, &pc.Views); err != nil {
			return nil, err
		}
		counts = append(counts, pc)
	}
	return counts, rows.Err()
}

// DailyStat is one day's rolled-up traffic.
type DailyStat struct {
	Day      string // YYYY-MM-DD
	Views    int64
	Visitors int64
}

// UpsertDailyStatParams writes one day's rollup.
type UpsertDailyStatParams struct {
	Day      string
	Views    int64
	Visitors int64
}

// UpsertDailyStat writes or replaces one day's rollup.
func (q *Queries) UpsertDailyStat(ctx context.Context, arg UpsertDailyStatParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO daily_stats (day, views, visitors) VALUES (?, ?, ?)
		 ON CONFLICT(day) DO UPDATE SET views = excluded.views, visitors = excluded.visitors`,
		arg.Day, arg.Views, arg.Visitors)
	return err
}

// ListDailyStats returns rollups for the most recent days, oldest first.
func (q *Queries) ListDailyStats(ctx context.Context, limit int64) ([]DailyStat, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT day, views, visitors FROM (
		     SELECT day, views, visitors FROM daily_stats ORDER BY day DESC LIMIT ?
		 ) ORDER BY day ASC`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []DailyStat
	for rows.Next() {
		var s DailyStat
		if err := rows.Scan(&s.Day, &s.Views, &s.Visitors); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// RollupDay aggregates one day's raw page views into daily_stats. Day is
// interpreted as a UTC calendar day.
func (q *Queries) RollupDay(ctx context.Context, day time.Time) error {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	var views, visitors int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT visitor_hash)
		 FROM page_views WHERE created_at >= ? AND created_at < ?`,
		start, end).Scan(&views, &visitors)
	if err != nil {
		return err
	}

	return q.UpsertDailyStat(ctx, UpsertDailyStatParams{
		Day:      start.Format("2006-01-02"),
		Views:    views,
		Visitors: visitors,
	})
}

// DeleteOldPageViews removes raw page views created before the cutoff.
// Rolled-up days in daily_stats are unaffected.
func (q *Queries) DeleteOldPageViews(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, `DELETE FROM page_views WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
