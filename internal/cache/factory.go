// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

package cache

import (
	"log/slog"
	"time"
)

// Config holds configuration for cache creation.
type Config struct {
	// RedisURL selects the Redis backend when non-empty.
	RedisURL string

	// Prefix is the Redis key prefix.
	Prefix string

	// DefaultTTL is the default TTL for cache entries.
	DefaultTTL time.Duration

	// MaxEntries bounds the memory backend (0 = unlimited).
	MaxEntries int
}

// New creates a cache backend from the configuration. When Redis is
// configured but unreachable it falls back to the memory backend: the
// cache is best-effort and must never keep the server from starting.
// The returned bool reports whether the fallback was taken.
func New(cfg Config, logger *slog.Logger) (Cache, bool) {
	if cfg.RedisURL != "" {
		c, err := NewRedisCache(RedisCacheOptions{
			URL:        cfg.RedisURL,
			Prefix:     cfg.Prefix,
			DefaultTTL: cfg.DefaultTTL,
		})
		if err == nil {
			return c, false
		}
		logger.Warn("redis cache unavailable, falling back to memory", "error", err)
		return newMemory(cfg), true
	}

	return newMemory(cfg), false
}

func newMemory(cfg Config) *MemoryCache {
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxEntries:      cfg.MaxEntries,
		CleanupInterval: time.Minute,
	})
}
