// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/circleseven/jekyll-admin/internal/bin"
)

// maxFilenameLen bounds filenames accepted by the bin endpoints.
const maxFilenameLen = 200

// binRequest is the body shared by the three mutating bin verbs.
type binRequest struct {
	Filename string `json:"filename"`
	SHA      string `json:"sha"`
	Type     string `json:"type"`
}

// validate checks the shared field contract and returns per-field
// errors, or nil when the request is well formed.
func (req *binRequest) validate() map[string]string {
	fields := make(map[string]string)

	switch {
	case req.Filename == "":
		fields["filename"] = "filename is required"
	case len(req.Filename) > maxFilenameLen:
		fields["filename"] = fmt.Sprintf("filename must be at most %d characters", maxFilenameLen)
	case strings.ContainsAny(req.Filename, "/\\") || strings.Contains(req.Filename, ".."):
		fields["filename"] = "filename must not contain path separators"
	}

	if req.SHA == "" {
		fields["sha"] = "sha is required"
	}

	if req.Type != "" && req.Type != string(bin.TypePost) && req.Type != string(bin.TypePage) {
		fields["type"] = "type must be one of: post, page"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

// readBinRequest decodes and validates a mutating bin request. Replies
// have been written when it returns false.
func readBinRequest(w http.ResponseWriter, r *http.Request) (*binRequest, bool) {
	var req binRequest
	if !decodeBody(w, r, &req) {
		return nil, false
	}
	if fields := req.validate(); fields != nil {
		WriteValidationError(w, "Request validation failed", fields)
		return nil, false
	}
	return &req, true
}

// binReceiptResponse is the success body of the mutating bin verbs.
type binReceiptResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	CommitSHA string `json:"commitSha"`
}

// BinList handles GET /api/bin.
func (h *Handler) BinList(w http.ResponseWriter, r *http.Request) {
	items, err := h.bin.List(r.Context())
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

// BinMove handles POST /api/bin: move a post or page into the bin.
func (h *Handler) BinMove(w http.ResponseWriter, r *http.Request) {
	if !h.requireGitHub(w) {
		return
	}
	req, ok := readBinRequest(w, r)
	if !ok {
		return
	}

	receipt, err := h.bin.MoveToBin(r.Context(), req.Filename, bin.ItemType(req.Type))
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, binReceiptResponse{
		Success:   true,
		Message:   fmt.Sprintf("%s moved to bin successfully", receipt.Type.Title()),
		CommitSHA: receipt.CommitSHA,
	})
}

// BinRestore handles PUT /api/bin: restore an item from the bin.
func (h *Handler) BinRestore(w http.ResponseWriter, r *http.Request) {
	if !h.requireGitHub(w) {
		return
	}
	req, ok := readBinRequest(w, r)
	if !ok {
		return
	}

	receipt, err := h.bin.Restore(r.Context(), req.Filename, req.SHA, bin.ItemType(req.Type))
	if err != nil {
		var conflict *bin.ConflictError
		if errors.As(err, &conflict) {
			WriteConflict(w, conflict.Error())
			return
		}
		h.writeServerError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, binReceiptResponse{
		Success:   true,
		Message:   fmt.Sprintf("%s restored successfully", receipt.Type.Title()),
		CommitSHA: receipt.CommitSHA,
	})
}

// BinPurge handles DELETE /api/bin: permanently delete an item.
func (h *Handler) BinPurge(w http.ResponseWriter, r *http.Request) {
	if !h.requireGitHub(w) {
		return
	}
	req, ok := readBinRequest(w, r)
	if !ok {
		return
	}

	receipt, err := h.bin.PurgeForever(r.Context(), req.Filename, req.SHA, bin.ItemType(req.Type))
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, binReceiptResponse{
		Success:   true,
		Message:   fmt.Sprintf("%s permanently deleted", receipt.Type.Title()),
		CommitSHA: receipt.CommitSHA,
	})
}
