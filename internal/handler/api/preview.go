// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/circleseven/jekyll-admin/internal/render"
)

// maxPreviewBytes bounds the markdown accepted for preview rendering.
const maxPreviewBytes = 1 << 20

type previewRequest struct {
	Markdown string `json:"markdown"`
}

type previewResponse struct {
	HTML string `json:"html"`
}

// Preview handles POST /api/preview: markdown in, sanitized HTML out.
// It never touches the object store, so no token guard applies.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPreviewBytes)

	var req previewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	html, err := render.Preview([]byte(req.Markdown))
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, previewResponse{HTML: html})
}
