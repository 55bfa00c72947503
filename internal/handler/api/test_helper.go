// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/circleseven/jekyll-admin/internal/bin"
	"github.com/circleseven/jekyll-admin/internal/cache"
	"github.com/circleseven/jekyll-admin/internal/config"
	"github.com/circleseven/jekyll-admin/internal/github"
	"github.com/circleseven/jekyll-admin/internal/store"
)

// fakeContentStore is an in-memory stand-in for the GitHub Contents API
// client. It verifies shas on writes and deletes the way GitHub does.
type fakeContentStore struct {
	mu      sync.Mutex
	files   map[string]string // path -> raw content
	shas    map[string]string // path -> blob sha
	commits int

	puts    []string // paths written, in order
	deletes []string // paths deleted, in order

	// messages records the commit message of every mutation.
	messages []string

	// failPut, when set, makes every PutFile return this error.
	failPut error
}

func newFakeContentStore() *fakeContentStore {
	return &fakeContentStore{
		files: make(map[string]string),
		shas:  make(map[string]string),
	}
}

func (f *fakeContentStore) add(path, content, sha string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = content
	f.shas[path] = sha
}

func (f *fakeContentStore) content(path string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.files[path]
	return content, ok
}

func (f *fakeContentStore) FetchFile(_ context.Context, path string) (*github.FileContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.files[path]
	if !ok {
		return nil, &github.StatusError{StatusCode: http.StatusNotFound, Body: "Not Found"}
	}
	return &github.FileContent{
		Name:     filepath.Base(path),
		Path:     path,
		SHA:      f.shas[path],
		Size:     int64(len(content)),
		Content:  base64.StdEncoding.EncodeToString([]byte(content)),
		Encoding: "base64",
	}, nil
}

func (f *fakeContentStore) ListDirectory(_ context.Context, dir string) ([]github.DirEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []github.DirEntry
	prefix := dir + "/"
	for path, content := range f.files {
		if !strings.HasPrefix(path, prefix) || strings.Contains(strings.TrimPrefix(path, prefix), "/") {
			continue
		}
		entries = append(entries, github.DirEntry{
			Name: strings.TrimPrefix(path, prefix),
			Path: path,
			SHA:  f.shas[path],
			Size: int64(len(content)),
			Type: "file",
		})
	}
	if entries == nil {
		return nil, &github.StatusError{StatusCode: http.StatusNotFound, Body: "Not Found"}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (f *fakeContentStore) PutFile(_ context.Context, path string, opts github.PutOptions) (*github.WriteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut != nil {
		return nil, f.failPut
	}
	current, exists := f.shas[path]
	if opts.SHA == "" && exists {
		return nil, &github.StatusError{StatusCode: http.StatusUnprocessableEntity, Body: "sha required"}
	}
	if opts.SHA != "" && opts.SHA != current {
		return nil, &github.StatusError{StatusCode: http.StatusConflict, Body: "sha mismatch"}
	}
	f.commits++
	f.files[path] = string(opts.Content)
	f.shas[path] = fmt.Sprintf("sha-%d", f.commits)
	f.puts = append(f.puts, path)
	f.messages = append(f.messages, opts.Message)
	return &github.WriteResult{
		CommitSHA:  fmt.Sprintf("commit-%d", f.commits),
		ContentSHA: f.shas[path],
	}, nil
}

func (f *fakeContentStore) DeleteFile(_ context.Context, path string, opts github.DeleteOptions) (*github.WriteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, exists := f.shas[path]
	if !exists {
		return nil, &github.StatusError{StatusCode: http.StatusNotFound, Body: "Not Found"}
	}
	if opts.SHA != current {
		return nil, &github.StatusError{StatusCode: http.StatusConflict, Body: "sha mismatch"}
	}
	f.commits++
	delete(f.files, path)
	delete(f.shas, path)
	f.deletes = append(f.deletes, path)
	f.messages = append(f.messages, opts.Message)
	return &github.WriteResult{CommitSHA: fmt.Sprintf("commit-%d", f.commits)}, nil
}

// testConfig returns a config with GitHub writes enabled.
func testConfig() *config.Config {
	return &config.Config{
		Env:          "production",
		GitHubToken:  "test-token",
		GitHubOwner:  "octocat",
		GitHubRepo:   "blog",
		GitHubBranch: "main",
		PostsDir:     "_posts",
		PagesDir:     "_pages",
		BinDir:       "_bin",
		ListCacheTTL: 3600,
		DataCacheTTL: 86400,
	}
}

// newTestHandler wires a Handler over the fake store, a memory cache,
// and a throwaway SQLite database.
func newTestHandler(t *testing.T, cfg *config.Config, fs *fakeContentStore) (*Handler, cache.Cache) {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	c := cache.NewSimpleMemoryCache(time.Minute)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	binSvc := bin.NewService(fs, c, logger, bin.Options{
		PostsDir: cfg.PostsDir,
		PagesDir: cfg.PagesDir,
		BinDir:   cfg.BinDir,
	})

	return NewHandler(cfg, fs, c, binSvc, db, logger), c
}

// doRequest runs one handler with an optional JSON body and returns the
// recorded response.
func doRequest(t *testing.T, handler http.HandlerFunc, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch body := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		// Raw bodies, used to exercise malformed JSON handling.
		reader = bytes.NewReader([]byte(body))
	default:
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

// decodeResponse unmarshals a recorded JSON response body.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}
