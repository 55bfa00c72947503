// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/circleseven/jekyll-admin/internal/cache"
	"github.com/circleseven/jekyll-admin/internal/frontmatter"
	"github.com/circleseven/jekyll-admin/internal/github"
	"github.com/circleseven/jekyll-admin/internal/middleware"
	"github.com/circleseven/jekyll-admin/internal/util"
)

// lastModifiedKey is stamped on every create and update so the site can
// show freshness without a git lookup.
const lastModifiedKey = "last_modified_at"

// collection binds a content type to its repo directory and cache key.
type collection struct {
	label    string // "post" or "page", used in messages and commits
	dir      string
	cacheKey string
}

func (h *Handler) postsCollection() collection {
	return collection{label: "post", dir: h.cfg.PostsDir, cacheKey: cache.KeyPostsList}
}

func (h *Handler) pagesCollection() collection {
	return collection{label: "page", dir: h.cfg.PagesDir, cacheKey: cache.KeyPagesList}
}

// contentItem is one entry of a collection listing.
type contentItem struct {
	Name        string           `json:"name"`
	Path        string           `json:"path"`
	SHA         string           `json:"sha"`
	Size        int64            `json:"size"`
	Frontmatter *frontmatter.Doc `json:"frontmatter,omitempty"`
}

// contentDocument is the single-file GET response.
type contentDocument struct {
	Path        string           `json:"path"`
	Frontmatter *frontmatter.Doc `json:"frontmatter"`
	Body        string           `json:"body"`
	SHA         string           `json:"sha"`
}

// mutationResponse is the success body of content writes.
type mutationResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	CommitSHA string `json:"commitSha"`
}

// invalidateList drops a collection's cached listing. Failure is logged
// and not surfaced; the next list request simply reads through.
func (h *Handler) invalidateList(ctx context.Context, col collection) {
	if err := h.cache.Delete(ctx, col.cacheKey); err != nil {
		h.logger.Error("failed to invalidate collection cache", "key", col.cacheKey,
			"request_id", middleware.GetRequestID(ctx), "error", err)
	}
}

// contentGet handles GET for a collection: a single document when
// ?path= is present, the listing otherwise. Listings without
// ?metadata=true are served from the read cache.
func (h *Handler) contentGet(w http.ResponseWriter, r *http.Request, col collection) {
	if pathParam := r.URL.Query().Get("path"); pathParam != "" {
		h.contentGetSingle(w, r, col, pathParam)
		return
	}

	withMetadata := r.URL.Query().Get("metadata") == "true"
	listKey := col.label + "s"

	lists := cache.NewTyped[[]contentItem](h.cache, h.cfg.ListTTL())
	if !withMetadata {
		if cached, ok := lists.Get(r.Context(), col.cacheKey); ok {
			WriteJSON(w, http.StatusOK, map[string]any{listKey: *cached})
			return
		}
	}

	entries, err := h.gh.ListDirectory(r.Context(), col.dir)
	if err != nil {
		if github.IsNotFound(err) {
			WriteJSON(w, http.StatusOK, map[string]any{listKey: []contentItem{}})
			return
		}
		h.writeServerError(w, r, err)
		return
	}

	items := make([]contentItem, 0, len(entries))
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name, ".md") {
			continue
		}
		item := contentItem{Name: entry.Name, Path: entry.Path, SHA: entry.SHA, Size: entry.Size}

		// Metadata listings fetch each file's frontmatter, skipping the
		// body. A per-item failure leaves that item without metadata.
		if withMetadata {
			if doc := h.fetchFrontmatter(r.Context(), col.dir, entry.Name); doc != nil {
				item.Frontmatter = doc
			}
		}
		items = append(items, item)
	}

	if !withMetadata {
		_ = lists.Set(r.Context(), col.cacheKey, &items)
	}

	WriteJSON(w, http.StatusOK, map[string]any{listKey: items})
}

func (h *Handler) fetchFrontmatter(ctx context.Context, dir, name string) *frontmatter.Doc {
	file, err := h.gh.FetchFile(ctx, dir+"/"+name)
	if err != nil {
		h.logger.Warn("failed to load metadata", "filename", name,
			"request_id", middleware.GetRequestID(ctx), "error", err)
		return nil
	}
	raw, err := file.Decode()
	if err != nil {
		h.logger.Warn("failed to decode content", "filename", name,
			"request_id", middleware.GetRequestID(ctx), "error", err)
		return nil
	}
	doc, _ := frontmatter.Parse(string(raw))
	return doc
}

func (h *Handler) contentGetSingle(w http.ResponseWriter, r *http.Request, col collection, pathParam string) {
	repoPath, err := util.JoinRepoPath(col.dir, pathParam)
	if err != nil {
		WriteBadRequest(w, "Invalid path parameter")
		return
	}

	file, err := h.gh.FetchFile(r.Context(), repoPath)
	if err != nil {
		if github.IsNotFound(err) {
			WriteNotFound(w, capitalize(col.label)+" not found")
			return
		}
		h.writeServerError(w, r, err)
		return
	}

	raw, err := file.Decode()
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}

	doc, body := frontmatter.Parse(string(raw))
	WriteJSON(w, http.StatusOK, contentDocument{
		Path:        pathParam,
		Frontmatter: doc,
		Body:        body,
		SHA:         file.SHA,
	})
}

// createRequest is the body of a content create.
type createRequest struct {
	Filename    string          `json:"filename"`
	Frontmatter frontmatter.Doc `json:"frontmatter"`
	Body        string          `json:"body"`
}

// contentCreate handles POST for a collection.
func (h *Handler) contentCreate(w http.ResponseWriter, r *http.Request, col collection) {
	if !h.requireGitHub(w) {
		return
	}

	var req createRequest
	if !decodeBody(w, r, &req) {
		return
	}

	// Derive the filename from the frontmatter when the client omits it:
	// posts get the dated Jekyll name, pages a bare slug.
	if req.Filename == "" {
		if title, ok := req.Frontmatter.Get("title"); ok && title.AsString() != "" {
			if col.label == "post" {
				day := h.now().UTC().Format("2006-01-02")
				if date, ok := req.Frontmatter.Get("date"); ok {
					if parsed, err := parseDate(date.AsString()); err == nil {
						day = parsed.UTC().Format("2006-01-02")
					}
				}
				req.Filename = util.PostFilename(day, title.AsString())
			} else {
				req.Filename = util.Slugify(title.AsString()) + ".md"
			}
		}
	}

	fields := make(map[string]string)
	if req.Filename == "" {
		fields["filename"] = "filename is required"
	} else if len(req.Filename) > maxFilenameLen {
		fields["filename"] = fmt.Sprintf("filename must be at most %d characters", maxFilenameLen)
	}
	if len(fields) > 0 {
		WriteValidationError(w, "Request validation failed", fields)
		return
	}

	repoPath, err := util.JoinRepoPath(col.dir, req.Filename)
	if err != nil {
		WriteValidationError(w, "Request validation failed",
			map[string]string{"filename": "filename must not contain path separators"})
		return
	}

	// New documents take their modification stamp from the declared
	// publish date, falling back to now.
	stamp := h.now().UTC().Format("2006-01-02 15:04:05")
	if date, ok := req.Frontmatter.Get("date"); ok && date.AsString() != "" {
		if parsed, err := parseDate(date.AsString()); err == nil {
			stamp = parsed.UTC().Format("2006-01-02 15:04:05")
		}
	}
	req.Frontmatter.Set(lastModifiedKey, frontmatter.String(stamp))

	content := frontmatter.Compose(&req.Frontmatter, req.Body)
	result, err := h.gh.PutFile(r.Context(), repoPath, github.PutOptions{
		Content: []byte(content),
		Message: fmt.Sprintf("Create %s: %s", col.label, req.Filename),
	})
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}

	h.invalidateList(r.Context(), col)

	WriteJSON(w, http.StatusCreated, mutationResponse{
		Success:   true,
		Message:   capitalize(col.label) + " created successfully",
		CommitSHA: result.CommitSHA,
	})
}

// updateRequest is the body of a content update.
type updateRequest struct {
	Path        string          `json:"path"`
	Frontmatter frontmatter.Doc `json:"frontmatter"`
	Body        string          `json:"body"`
	SHA         string          `json:"sha"`
}

// contentUpdate handles PUT for a collection.
func (h *Handler) contentUpdate(w http.ResponseWriter, r *http.Request, col collection) {
	if !h.requireGitHub(w) {
		return
	}

	var req updateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	fields := make(map[string]string)
	if req.Path == "" {
		fields["path"] = "path is required"
	}
	if req.SHA == "" {
		fields["sha"] = "sha is required"
	}
	if len(fields) > 0 {
		WriteValidationError(w, "Request validation failed", fields)
		return
	}

	repoPath, err := util.JoinRepoPath(col.dir, req.Path)
	if err != nil {
		WriteValidationError(w, "Request validation failed",
			map[string]string{"path": "path must not contain path separators"})
		return
	}

	req.Frontmatter.Set(lastModifiedKey,
		frontmatter.String(h.now().UTC().Format("2006-01-02 15:04:05")))

	content := frontmatter.Compose(&req.Frontmatter, req.Body)
	result, err := h.gh.PutFile(r.Context(), repoPath, github.PutOptions{
		Content: []byte(content),
		Message: fmt.Sprintf("Update %s: %s", col.label, req.Path),
		SHA:     req.SHA,
	})
	if err != nil {
		if github.IsConflict(err) {
			WriteConflict(w, "The file was modified by someone else. Reload and try again.")
			return
		}
		h.writeServerError(w, r, err)
		return
	}

	h.invalidateList(r.Context(), col)

	WriteJSON(w, http.StatusOK, mutationResponse{
		Success:   true,
		Message:   capitalize(col.label) + " updated successfully",
		CommitSHA: result.CommitSHA,
	})
}

// deleteRequest is the body of a content delete.
type deleteRequest struct {
	Path string `json:"path"`
	SHA  string `json:"sha"`
}

// contentDelete handles DELETE for a collection.
func (h *Handler) contentDelete(w http.ResponseWriter, r *http.Request, col collection) {
	if !h.requireGitHub(w) {
		return
	}

	var req deleteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	fields := make(map[string]string)
	if req.Path == "" {
		fields["path"] = "path is required"
	}
	if req.SHA == "" {
		fields["sha"] = "sha is required"
	}
	if len(fields) > 0 {
		WriteValidationError(w, "Request validation failed", fields)
		return
	}

	repoPath, err := util.JoinRepoPath(col.dir, req.Path)
	if err != nil {
		WriteValidationError(w, "Request validation failed",
			map[string]string{"path": "path must not contain path separators"})
		return
	}

	result, err := h.gh.DeleteFile(r.Context(), repoPath, github.DeleteOptions{
		Message: fmt.Sprintf("Delete %s: %s", col.label, req.Path),
		SHA:     req.SHA,
	})
	if err != nil {
		if github.IsConflict(err) {
			WriteConflict(w, "The file was modified by someone else. Reload and try again.")
			return
		}
		h.writeServerError(w, r, err)
		return
	}

	h.invalidateList(r.Context(), col)

	WriteJSON(w, http.StatusOK, mutationResponse{
		Success:   true,
		Message:   capitalize(col.label) + " deleted successfully",
		CommitSHA: result.CommitSHA,
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// parseDate accepts the date formats Jekyll frontmatter commonly uses.
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02 15:04:05 -0700",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// Posts handlers.

// PostsGet handles GET /api/posts.
func (h *Handler) PostsGet(w http.ResponseWriter, r *http.Request) {
	h.contentGet(w, r, h.postsCollection())
}

// PostsCreate handles POST /api/posts.
func (h *Handler) PostsCreate(w http.ResponseWriter, r *http.Request) {
	h.contentCreate(w, r, h.postsCollection())
}

// PostsUpdate handles PUT /api/posts.
func (h *Handler) PostsUpdate(w http.ResponseWriter, r *http.Request) {
	h.contentUpdate(w, r, h.postsCollection())
}

// PostsDelete handles DELETE /api/posts.
func (h *Handler) PostsDelete(w http.ResponseWriter, r *http.Request) {
	h.contentDelete(w, r, h.postsCollection())
}

// Pages handlers.

// PagesGet handles GET /api/pages.
func (h *Handler) PagesGet(w http.ResponseWriter, r *http.Request) {
	h.contentGet(w, r, h.pagesCollection())
}

// PagesCreate handles POST /api/pages.
func (h *Handler) PagesCreate(w http.ResponseWriter, r *http.Request) {
	h.contentCreate(w, r, h.pagesCollection())
}

// PagesUpdate handles PUT /api/pages.
func (h *Handler) PagesUpdate(w http.ResponseWriter, r *http.Request) {
	h.contentUpdate(w, r, h.pagesCollection())
}

// PagesDelete handles DELETE /api/pages.
func (h *Handler) PagesDelete(w http.ResponseWriter, r *http.Request) {
	h.contentDelete(w, r, h.pagesCollection())
}
