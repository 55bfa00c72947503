// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

// Package github is a minimal client for the GitHub Contents API, the
// object store backing all site content. Every mutation carries the file's
// current sha; GitHub rejects writes against a stale sha, which is the
// only concurrency control the system relies on.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Request configuration constants
const (
	DefaultBaseURL = "https://api.github.com"
	RequestTimeout = 30 * time.Second // HTTP request timeout
	MaxErrorLen    = 10 * 1024        // Maximum error response body to keep (10KB)
	UserAgent      = "jekyll-admin/1.0"
	acceptHeader   = "application/vnd.github.v3+json"
)

// httpClient is the shared HTTP client with appropriate timeouts.
var httpClient = &http.Client{
	Timeout: RequestTimeout,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	},
}

// StatusError is returned when the GitHub API responds with a non-2xx
// status. The status code is preserved so callers can distinguish a
// missing file (404) from a stale-sha conflict (409/422).
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github api: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a GitHub 404 response.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// IsConflict reports whether err is a GitHub conflict response, which the
// Contents API reports as 409 or 422 depending on the operation.
func IsConflict(err error) bool {
	var se *StatusError
	return errors.As(err, &se) &&
		(se.StatusCode == http.StatusConflict || se.StatusCode == http.StatusUnprocessableEntity)
}

// Options configures a Client.
type Options struct {
	Owner  string
	Repo   string
	Branch string
	Token  string
	// BaseURL overrides the GitHub API endpoint, used in tests.
	BaseURL string
	// RatePerSecond caps outbound requests to stay inside GitHub's API
	// quota. Zero disables the limiter.
	RatePerSecond float64
}

// Client performs authenticated requests against one repository's
// Contents API. It is safe for concurrent use.
type Client struct {
	owner   string
	repo    string
	branch  string
	token   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// New creates a Client for the repository described by opts.
func New(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	var limiter *rate.Limiter
	if opts.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), int(opts.RatePerSecond)+1)
	}

	return &Client{
		owner:   opts.Owner,
		repo:    opts.Repo,
		branch:  opts.Branch,
		token:   opts.Token,
		baseURL: baseURL,
		http:    httpClient,
		limiter: limiter,
	}
}

// Branch returns the branch all operations target.
func (c *Client) Branch() string { return c.branch }

// FileContent is a single file returned by the Contents API.
type FileContent struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Size     int64  `json:"size"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// Decode returns the file's raw bytes. The Contents API delivers file
// bodies base64-encoded.
func (f *FileContent) Decode() ([]byte, error) {
	if f.Encoding != "" && f.Encoding != "base64" {
		return nil, fmt.Errorf("unsupported content encoding %q for %s", f.Encoding, f.Path)
	}
	data, err := base64.StdEncoding.DecodeString(f.Content)
	if err != nil {
		// GitHub wraps base64 bodies with newlines
		data, err = base64.StdEncoding.DecodeString(stripNewlines(f.Content))
	}
	if err != nil {
		return nil, fmt.Errorf("decoding content of %s: %w", f.Path, err)
	}
	return data, nil
}

// DirEntry is one entry of a directory listing.
type DirEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	SHA  string `json:"sha"`
	Size int64  `json:"size"`
	Type string `json:"type"` // "file" or "dir"
}

// WriteResult reports the commit produced by a put or delete.
type WriteResult struct {
	CommitSHA  string
	ContentSHA string // sha of the written blob; empty for deletes
}

type commitInfo struct {
	SHA string `json:"sha"`
}

type writeResponse struct {
	Content *FileContent `json:"content"`
	Commit  commitInfo   `json:"commit"`
}

// FetchFile retrieves a single file with its content and current sha.
func (c *Client) FetchFile(ctx context.Context, path string) (*FileContent, error) {
	var file FileContent
	if err := c.do(ctx, http.MethodGet, c.contentsPath(path)+"?ref="+url.QueryEscape(c.branch), nil, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// ListDirectory lists the entries of a directory.
func (c *Client) ListDirectory(ctx context.Context, path string) ([]DirEntry, error) {
	var entries []DirEntry
	if err := c.do(ctx, http.MethodGet, c.contentsPath(path)+"?ref="+url.QueryEscape(c.branch), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// PutOptions describes a file create or update.
type PutOptions struct {
	Content []byte
	Message string
	// SHA of the file being replaced. Must be empty on create and set on
	// update; GitHub enforces both.
	SHA string
}

// PutFile creates or updates a file and returns the resulting commit.
func (c *Client) PutFile(ctx context.Context, path string, opts PutOptions) (*WriteResult, error) {
	body := map[string]any{
		"message": opts.Message,
		"content": base64.StdEncoding.EncodeToString(opts.Content),
		"branch":  c.branch,
	}
	if opts.SHA != "" {
		body["sha"] = opts.SHA
	}

	var resp writeResponse
	if err := c.do(ctx, http.MethodPut, c.contentsPath(path), body, &resp); err != nil {
		return nil, err
	}

	result := &WriteResult{CommitSHA: resp.Commit.SHA}
	if resp.Content != nil {
		result.ContentSHA = resp.Content.SHA
	}
	return result, nil
}

// DeleteOptions describes a file deletion.
type DeleteOptions struct {
	Message string
	// SHA of the file's current content; required.
	SHA string
}

// DeleteFile removes a file and returns the resulting commit.
func (c *Client) DeleteFile(ctx context.Context, path string, opts DeleteOptions) (*WriteResult, error) {
	body := map[string]any{
		"message": opts.Message,
		"sha":     opts.SHA,
		"branch":  c.branch,
	}

	var resp writeResponse
	if err := c.do(ctx, http.MethodDelete, c.contentsPath(path), body, &resp); err != nil {
		return nil, err
	}
	return &WriteResult{CommitSHA: resp.Commit.SHA}, nil
}

// contentsPath builds the API path for a repository-relative file path.
func (c *Client) contentsPath(path string) string {
	return fmt.Sprintf("/repos/%s/%s/contents/%s", c.owner, c.repo, escapePath(path))
}

// do performs one API request, decoding a 2xx JSON response into out and
// turning everything else into a StatusError.
func (c *Client) do(ctx context.Context, method, apiPath string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPath, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", acceptHeader)
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("github request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorLen))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(msg)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding github response: %w", err)
	}
	return nil
}

// escapePath percent-encodes each path segment, keeping the separators.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func stripNewlines(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}
