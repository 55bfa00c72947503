// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type pageListEntry struct {
	Name string `json:"name"`
	SHA  string `json:"sha"`
}

func TestTyped_SetGet(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Hour)
	defer func() { _ = backend.Close() }()

	typed := NewTyped[[]pageListEntry](backend, time.Hour)
	ctx := context.Background()

	pages := []pageListEntry{{Name: "about.md", SHA: "s1"}, {Name: "contact.md", SHA: "s2"}}
	if err := typed.Set(ctx, KeyPagesList, &pages); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := typed.Get(ctx, KeyPagesList)
	if !ok {
		t.Fatal("expected hit")
	}
	if len(*got) != 2 || (*got)[0].Name != "about.md" {
		t.Errorf("Get = %+v", got)
	}
}

func TestTyped_MissAndDelete(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Hour)
	defer func() { _ = backend.Close() }()

	typed := NewTyped[[]pageListEntry](backend, time.Hour)
	ctx := context.Background()

	if _, ok := typed.Get(ctx, KeyPagesList); ok {
		t.Error("expected miss on empty cache")
	}

	pages := []pageListEntry{{Name: "about.md"}}
	_ = typed.Set(ctx, KeyPagesList, &pages)
	if err := typed.Delete(ctx, KeyPagesList); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := typed.Get(ctx, KeyPagesList); ok {
		t.Error("expected miss after Delete")
	}
}

func TestTyped_MalformedEntryIsMiss(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Hour)
	defer func() { _ = backend.Close() }()
	ctx := context.Background()

	_ = backend.Set(ctx, KeyTaxonomy, []byte("not json"), 0)

	typed := NewTyped[[]pageListEntry](backend, time.Hour)
	if _, ok := typed.Get(ctx, KeyTaxonomy); ok {
		t.Error("malformed entry must behave as a miss")
	}
}

func TestTyped_GetOrFetch(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Hour)
	defer func() { _ = backend.Close() }()

	typed := NewTyped[[]pageListEntry](backend, time.Hour)
	ctx := context.Background()

	calls := 0
	fetch := func() (*[]pageListEntry, error) {
		calls++
		return &[]pageListEntry{{Name: "fetched.md"}}, nil
	}

	got, err := typed.GetOrFetch(ctx, KeyPostsList, fetch)
	if err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}
	if (*got)[0].Name != "fetched.md" {
		t.Errorf("got %+v", got)
	}
	if calls != 1 {
		t.Errorf("fetch calls = %d, want 1", calls)
	}

	// Second call served from cache
	if _, err := typed.GetOrFetch(ctx, KeyPostsList, fetch); err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("fetch calls = %d, want 1 (cached)", calls)
	}
}

func TestTyped_GetOrFetchError(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Hour)
	defer func() { _ = backend.Close() }()

	typed := NewTyped[[]pageListEntry](backend, time.Hour)
	wantErr := errors.New("github unavailable")

	_, err := typed.GetOrFetch(context.Background(), KeyPostsList, func() (*[]pageListEntry, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}
