// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

// Package cache provides the TTL read-cache fronting GitHub directory
// listings and data-file reads. The cache is advisory: losing it costs
// extra API calls, never correctness, because every read path falls back
// to the source of truth on a miss.
package cache

import (
	"context"
	"time"
)

// Cache is the interface all backends implement. Implementations must be
// safe for concurrent use. Values are []byte so memory and Redis backends
// are interchangeable.
type Cache interface {
	// Get retrieves a value. Returns ErrCacheMiss if the key is absent
	// or its entry has outlived its TTL.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL. A zero TTL uses the
	// backend's default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Mutating operations invalidate by deleting,
	// never by rewriting in place.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Has checks whether a key exists and is not expired.
	Has(ctx context.Context, key string) (bool, error)

	// Close releases any resources held by the backend.
	Close() error
}

// StatsProvider is an optional interface for backends that track statistics.
type StatsProvider interface {
	Stats() Stats
	ResetStats()
}

// Stats holds cache hit/miss counters.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Sets    int64   `json:"sets"`
	Items   int     `json:"items"`
	HitRate float64 `json:"hit_rate"`
}

// Error represents an error type for cache operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCacheMiss indicates the key was not found or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)

// Cached collection keys. One fixed logical name per collection; a
// mutation against a collection deletes its key so the next read
// repopulates from GitHub.
const (
	KeyPostsList = "posts-list.json"
	KeyPagesList = "pages-list.json"
	KeySettings  = "settings.json"
	KeyTaxonomy  = "taxonomy.json"
	KeyMenus     = "menus.json"
)
