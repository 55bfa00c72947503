// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Typed wraps a Cache with JSON serialization for a concrete type.
// Decode failures are treated as misses so a stale or malformed entry can
// never poison a read path.
type Typed[T any] struct {
	cache      Cache
	defaultTTL time.Duration
}

// NewTyped creates a Typed cache view over the given backend.
func NewTyped[T any](c Cache, defaultTTL time.Duration) *Typed[T] {
	return &Typed[T]{
		cache:      c,
		defaultTTL: defaultTTL,
	}
}

// Get retrieves a value. Returns the value and true on a hit, nil and
// false on a miss, expiry, or decode failure.
func (c *Typed[T]) Get(ctx context.Context, key string) (*T, bool) {
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, false
	}
	return &value, true
}

// Set stores a value with the default TTL.
func (c *Typed[T]) Set(ctx context.Context, key string, value *T) error {
	return c.SetWithTTL(ctx, key, value, c.defaultTTL)
}

// SetWithTTL stores a value with a custom TTL.
func (c *Typed[T]) SetWithTTL(ctx context.Context, key string, value *T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, key, data, ttl)
}

// Delete removes a key.
func (c *Typed[T]) Delete(ctx context.Context, key string) error {
	return c.cache.Delete(ctx, key)
}

// GetOrFetch retrieves a value from cache, or calls fn to fetch and store
// it on a miss. A failed cache write is ignored; the fetched value is
// still valid.
func (c *Typed[T]) GetOrFetch(ctx context.Context, key string, fn func() (*T, error)) (*T, error) {
	if value, ok := c.Get(ctx, key); ok {
		return value, nil
	}

	value, err := fn()
	if err != nil {
		return nil, err
	}

	_ = c.SetWithTTL(ctx, key, value, c.defaultTTL)
	return value, nil
}
