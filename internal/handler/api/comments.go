// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strconv"
	"time"

	"github.com/circleseven/jekyll-admin/internal/store"
)

// Bounds on reader-submitted comment fields.
const (
	maxCommentAuthorLen = 100
	maxCommentBodyLen   = 5000
)

// commentResponse is one comment in API responses. Email is included
// only on moderation listings, never on public ones.
type commentResponse struct {
	ID           int64     `json:"id"`
	PostFilename string    `json:"post_filename"`
	Author       string    `json:"author"`
	Email        string    `json:"email,omitempty"`
	Body         string    `json:"body"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// CommentsList handles GET /api/comments. Filters: ?post= and ?status=.
func (h *Handler) CommentsList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && status != store.CommentStatusPending &&
		status != store.CommentStatusApproved && status != store.CommentStatusSpam {
		WriteValidationError(w, "Request validation failed",
			map[string]string{"status": "status must be one of: pending, approved, spam"})
		return
	}

	comments, err := h.queries.ListComments(r.Context(), store.ListCommentsParams{
		PostFilename: r.URL.Query().Get("post"),
		Status:       status,
		Limit:        200,
	})
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}

	resp := make([]commentResponse, 0, len(comments))
	for _, c := range comments {
		resp = append(resp, commentResponse{
			ID:           c.ID,
			PostFilename: c.PostFilename,
			Author:       c.Author,
			Email:        c.Email,
			Body:         c.Body,
			Status:       c.Status,
			CreatedAt:    c.CreatedAt,
		})
	}
	WriteJSON(w, http.StatusOK, map[string]any{"comments": resp})
}

// commentSubmitRequest is the body of a reader comment submission.
type commentSubmitRequest struct {
	PostFilename string `json:"post_filename"`
	Author       string `json:"author"`
	Email        string `json:"email"`
	Body         string `json:"body"`
}

// CommentsSubmit handles POST /api/comments. New comments always enter
// the moderation queue as pending.
func (h *Handler) CommentsSubmit(w http.ResponseWriter, r *http.Request) {
	var req commentSubmitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	fields := make(map[string]string)
	switch {
	case req.PostFilename == "":
		fields["post_filename"] = "post_filename is required"
	case len(req.PostFilename) > maxFilenameLen:
		fields["post_filename"] = fmt.Sprintf("post_filename must be at most %d characters", maxFilenameLen)
	}
	switch {
	case req.Author == "":
		fields["author"] = "author is required"
	case len(req.Author) > maxCommentAuthorLen:
		fields["author"] = fmt.Sprintf("author must be at most %d characters", maxCommentAuthorLen)
	}
	switch {
	case req.Body == "":
		fields["body"] = "body is required"
	case len(req.Body) > maxCommentBodyLen:
		fields["body"] = fmt.Sprintf("body must be at most %d characters", maxCommentBodyLen)
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			fields["email"] = "email must be a valid address"
		}
	}
	if len(fields) > 0 {
		WriteValidationError(w, "Request validation failed", fields)
		return
	}

	id, err := h.queries.CreateComment(r.Context(), store.CreateCommentParams{
		PostFilename: req.PostFilename,
		Author:       req.Author,
		Email:        req.Email,
		Body:         req.Body,
		CreatedAt:    h.now().UTC(),
	})
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}

	h.logger.Info("comment submitted", "comment_id", id, "post", req.PostFilename)
	WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Comment submitted for moderation",
		"id":      id,
	})
}

// commentModerateRequest is the body of a moderation decision.
type commentModerateRequest struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// CommentsModerate handles PUT /api/comments.
func (h *Handler) CommentsModerate(w http.ResponseWriter, r *http.Request) {
	var req commentModerateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	fields := make(map[string]string)
	if req.ID <= 0 {
		fields["id"] = "id is required"
	}
	if req.Status != store.CommentStatusApproved && req.Status != store.CommentStatusSpam &&
		req.Status != store.CommentStatusPending {
		fields["status"] = "status must be one of: pending, approved, spam"
	}
	if len(fields) > 0 {
		WriteValidationError(w, "Request validation failed", fields)
		return
	}

	err := h.queries.UpdateCommentStatus(r.Context(), store.UpdateCommentStatusParams{
		ID:        req.ID,
		Status:    req.Status,
		UpdatedAt: h.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Comment not found")
			return
		}
		h.writeServerError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Comment " + req.Status,
	})
}

// CommentsDelete handles DELETE /api/comments?id=N.
func (h *Handler) CommentsDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		WriteValidationError(w, "Request validation failed",
			map[string]string{"id": "id must be a positive integer"})
		return
	}

	if err := h.queries.DeleteComment(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Comment not found")
			return
		}
		h.writeServerError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Comment deleted",
	})
}
