// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

// Package bin implements the soft-delete subsystem: moving posts and
// pages into the _bin directory, restoring them, and deleting them for
// good.
//
// The underlying store has no multi-object transactions, so every move is
// an ordered write-then-delete pair. The ordering is chosen so a failure
// between the two steps leaves a duplicate, never a lost document: the
// copy is always durably written to its destination before the original
// is deleted.
package bin

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/circleseven/jekyll-admin/internal/cache"
	"github.com/circleseven/jekyll-admin/internal/frontmatter"
	"github.com/circleseven/jekyll-admin/internal/github"
)

// ItemType classifies a content item by its filename convention.
type ItemType string

const (
	// TypePost is a dated post (filename starts with YYYY-MM-DD-).
	TypePost ItemType = "post"
	// TypePage is any other markdown document.
	TypePage ItemType = "page"
)

// BinnedAtKey is the frontmatter key marking bin membership. It is
// present on every item in the bin and on none outside it.
const BinnedAtKey = "binned_at"

// postPrefix matches the Jekyll dated-post filename convention.
var postPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-`)

// InferType classifies a filename: date-prefixed names are posts,
// everything else is a page. This is a naming convention, not a stored
// attribute, so the answer never depends on which collection currently
// holds the file.
func InferType(filename string) ItemType {
	if postPrefix.MatchString(filename) {
		return TypePost
	}
	return TypePage
}

// Title returns the item type with its first letter capitalized, for
// user-facing messages.
func (t ItemType) Title() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// ContentStore is the slice of the object store the bin subsystem needs.
// *github.Client satisfies it; tests substitute a fake.
type ContentStore interface {
	FetchFile(ctx context.Context, path string) (*github.FileContent, error)
	ListDirectory(ctx context.Context, path string) ([]github.DirEntry, error)
	PutFile(ctx context.Context, path string, opts github.PutOptions) (*github.WriteResult, error)
	DeleteFile(ctx context.Context, path string, opts github.DeleteOptions) (*github.WriteResult, error)
}

// Invalidator deletes cached collection listings after a mutation.
type Invalidator interface {
	Delete(ctx context.Context, key string) error
}

// ConflictError is returned when a restore would overwrite an existing
// file in the destination collection. Nothing is written when it occurs.
type ConflictError struct {
	Filename string
	DestDir  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("cannot restore %q: a file with that name already exists in %s", e.Filename, e.DestDir)
}

// PartialFailureError is returned when the copy step of a move succeeded
// but the delete step failed. The system now holds the item in two
// places; the caller should re-list and reconcile rather than blindly
// retry.
type PartialFailureError struct {
	WrittenPath string // path the new copy was written to
	StalePath   string // path the undeleted original remains at
	Err         error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("copy written to %s but delete of %s failed: %v", e.WrittenPath, e.StalePath, e.Err)
}

func (e *PartialFailureError) Unwrap() error { return e.Err }

// Item is one entry of the bin listing.
type Item struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	SHA      string   `json:"sha"`
	Size     int64    `json:"size"`
	Type     ItemType `json:"type"`
	BinnedAt *string  `json:"binned_at"`
}

// Receipt reports the outcome of a bin mutation. CommitSHA is the commit
// of the operation's primary write (the bin copy for a move, the restored
// file for a restore, the delete for a purge).
type Receipt struct {
	CommitSHA string
	Filename  string // final filename, which may differ from the request on a collision rename
	Type      ItemType
}

// Logger is the subset of slog used here, kept as an interface so tests
// can run silent.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options configures a Service.
type Options struct {
	PostsDir string
	PagesDir string
	BinDir   string

	// Now overrides the clock for binned_at stamps and collision
	// suffixes. Defaults to time.Now.
	Now func() time.Time
}

// Service orchestrates bin operations over the content store.
type Service struct {
	store    ContentStore
	lists    Invalidator
	logger   Logger
	postsDir string
	pagesDir string
	binDir   string
	now      func() time.Time
}

// NewService creates a bin service.
func NewService(store ContentStore, lists Invalidator, logger Logger, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:    store,
		lists:    lists,
		logger:   logger,
		postsDir: opts.PostsDir,
		pagesDir: opts.PagesDir,
		binDir:   opts.BinDir,
		now:      now,
	}
}

// sourceDir maps an explicit type to its collection directory. An empty
// type defaults to posts, the behavior older admin clients rely on.
func (s *Service) sourceDir(typ ItemType) (string, ItemType) {
	if typ == TypePage {
		return s.pagesDir, TypePage
	}
	return s.postsDir, TypePost
}

// destDir resolves the restore destination: an explicit type wins,
// otherwise the filename convention decides.
func (s *Service) destDir(filename string, typ ItemType) (string, ItemType) {
	if typ == "" {
		typ = InferType(filename)
	}
	if typ == TypePage {
		return s.pagesDir, TypePage
	}
	return s.postsDir, TypePost
}

// listKey returns the cache key for the collection a directory backs.
func (s *Service) listKey(dir string) string {
	if dir == s.pagesDir {
		return cache.KeyPagesList
	}
	return cache.KeyPostsList
}

// invalidate drops the cached listing for the given collection directory.
// A stale list surviving a bin operation is a correctness bug, so a
// failed invalidation is loud even though the operation itself succeeded.
func (s *Service) invalidate(ctx context.Context, dir string) {
	key := s.listKey(dir)
	if err := s.lists.Delete(ctx, key); err != nil {
		s.logger.Error("failed to invalidate collection cache", "key", key, "error", err)
	}
}

// MoveToBin moves a file from its source collection into the bin. The
// caller's view of the file may be stale, so the sha used for the delete
// is re-fetched here, not taken from the request. The bin copy is written
// before the source is deleted.
func (s *Service) MoveToBin(ctx context.Context, filename string, typ ItemType) (*Receipt, error) {
	sourceDir, itemType := s.sourceDir(typ)
	sourcePath := path.Join(sourceDir, filename)

	file, err := s.store.FetchFile(ctx, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", sourcePath, err)
	}

	raw, err := file.Decode()
	if err != nil {
		return nil, err
	}

	doc, body := frontmatter.Parse(string(raw))
	binnedAt := s.now().UTC().Format(time.RFC3339)
	doc.Set(BinnedAtKey, frontmatter.String(binnedAt))
	content := frontmatter.Compose(doc, body)

	// A same-named file already in the bin must not be overwritten;
	// rename the incoming copy with a timestamp suffix instead.
	finalName := filename
	if _, err := s.store.FetchFile(ctx, path.Join(s.binDir, filename)); err == nil {
		finalName = timestampSuffix(filename, s.now().UTC())
	}

	binPath := path.Join(s.binDir, finalName)
	put, err := s.store.PutFile(ctx, binPath, github.PutOptions{
		Content: []byte(content),
		Message: fmt.Sprintf("Move %s to bin: %s", itemType, finalName),
	})
	if err != nil {
		// Nothing was deleted; the source file is untouched.
		return nil, fmt.Errorf("writing bin copy %s: %w", binPath, err)
	}

	// Delete with the sha fetched above, not the one the caller sent.
	if _, err := s.store.DeleteFile(ctx, sourcePath, github.DeleteOptions{
		Message: fmt.Sprintf("Remove from %s (moved to bin): %s", sourceDir, filename),
		SHA:     file.SHA,
	}); err != nil {
		s.logger.Error("bin copy written but source delete failed",
			"bin_path", binPath, "source_path", sourcePath, "error", err)
		return nil, &PartialFailureError{WrittenPath: binPath, StalePath: sourcePath, Err: err}
	}

	s.invalidate(ctx, sourceDir)
	s.logger.Info("moved item to bin", "filename", finalName, "type", itemType, "source", sourcePath)

	return &Receipt{CommitSHA: put.CommitSHA, Filename: finalName, Type: itemType}, nil
}

// Restore moves a file out of the bin back into its collection. It never
// overwrites: an occupied destination aborts with ConflictError before
// anything is written. The restored copy is written before the bin copy
// is deleted with the caller-supplied sha.
func (s *Service) Restore(ctx context.Context, filename, sha string, typ ItemType) (*Receipt, error) {
	destDir, itemType := s.destDir(filename, typ)
	destPath := path.Join(destDir, filename)

	if _, err := s.store.FetchFile(ctx, destPath); err == nil {
		return nil, &ConflictError{Filename: filename, DestDir: destDir}
	} else if !github.IsNotFound(err) {
		return nil, fmt.Errorf("checking destination %s: %w", destPath, err)
	}

	binPath := path.Join(s.binDir, filename)
	file, err := s.store.FetchFile(ctx, binPath)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", binPath, err)
	}

	raw, err := file.Decode()
	if err != nil {
		return nil, err
	}

	// The key must be absent from the restored document, not set to an
	// empty value.
	doc, body := frontmatter.Parse(string(raw))
	doc.Delete(BinnedAtKey)
	content := frontmatter.Compose(doc, body)

	put, err := s.store.PutFile(ctx, destPath, github.PutOptions{
		Content: []byte(content),
		Message: fmt.Sprintf("Restore %s from bin: %s", itemType, filename),
	})
	if err != nil {
		return nil, fmt.Errorf("writing restored copy %s: %w", destPath, err)
	}

	if _, err := s.store.DeleteFile(ctx, binPath, github.DeleteOptions{
		Message: fmt.Sprintf("Remove from bin (restored): %s", filename),
		SHA:     sha,
	}); err != nil {
		s.logger.Error("restored copy written but bin delete failed",
			"dest_path", destPath, "bin_path", binPath, "error", err)
		return nil, &PartialFailureError{WrittenPath: destPath, StalePath: binPath, Err: err}
	}

	s.invalidate(ctx, destDir)
	s.logger.Info("restored item from bin", "filename", filename, "type", itemType, "dest", destPath)

	return &Receipt{CommitSHA: put.CommitSHA, Filename: filename, Type: itemType}, nil
}

// PurgeForever permanently deletes a file from the bin. There is no
// read-before-delete and no recovery; intent confirmation is the UI's
// job. Deleting an already-gone file surfaces the store's 404, so a
// retry of a purge is harmless.
func (s *Service) PurgeForever(ctx context.Context, filename, sha string, typ ItemType) (*Receipt, error) {
	itemType := typ
	if itemType == "" {
		itemType = TypePost
	}

	binPath := path.Join(s.binDir, filename)
	result, err := s.store.DeleteFile(ctx, binPath, github.DeleteOptions{
		Message: fmt.Sprintf("Permanently delete %s: %s", itemType, filename),
		SHA:     sha,
	})
	if err != nil {
		return nil, fmt.Errorf("deleting %s: %w", binPath, err)
	}

	s.logger.Info("permanently deleted item", "filename", filename, "type", itemType)

	return &Receipt{CommitSHA: result.CommitSHA, Filename: filename, Type: itemType}, nil
}

// List returns every markdown file in the bin with its binned_at stamp.
// Per-item content fetches exist only to read binned_at; when one fails
// the item is still listed with a null stamp. A bin directory that was
// never created lists as empty, not as an error.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	entries, err := s.store.ListDirectory(ctx, s.binDir)
	if err != nil {
		if github.IsNotFound(err) {
			return []Item{}, nil
		}
		return nil, fmt.Errorf("listing %s: %w", s.binDir, err)
	}

	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name, ".md") {
			continue
		}

		item := Item{
			Name: entry.Name,
			Path: entry.Path,
			SHA:  entry.SHA,
			Size: entry.Size,
			Type: InferType(entry.Name),
		}

		if file, err := s.store.FetchFile(ctx, path.Join(s.binDir, entry.Name)); err != nil {
			s.logger.Warn("failed to read binned_at", "filename", entry.Name, "error", err)
		} else if raw, err := file.Decode(); err != nil {
			s.logger.Warn("failed to decode bin item", "filename", entry.Name, "error", err)
		} else {
			doc, _ := frontmatter.Parse(string(raw))
			if v, ok := doc.Get(BinnedAtKey); ok && v.Kind() == frontmatter.KindString && v.AsString() != "" {
				stamp := v.AsString()
				item.BinnedAt = &stamp
			}
		}

		items = append(items, item)
	}

	return items, nil
}

// timestampSuffix appends "-YYYY-MM-DDTHH-MM-SS" before the filename's
// extension, or at the end if it has none.
func timestampSuffix(filename string, t time.Time) string {
	stamp := t.Format("2006-01-02T15-04-05")
	ext := path.Ext(filename)
	if ext == "" {
		return filename + "-" + stamp
	}
	base := strings.TrimSuffix(filename, ext)
	return base + "-" + stamp + ext
}
