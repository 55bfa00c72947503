// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

package api

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/circleseven/jekyll-admin/internal/cache"
	"github.com/circleseven/jekyll-admin/internal/github"
	"github.com/circleseven/jekyll-admin/internal/middleware"
)

// configPath is the Jekyll site configuration file.
const configPath = "_config.yml"

// editableSettings is the allowlist of _config.yml fields the admin can
// read and write. Everything else in the file is invisible to the API
// and survives updates untouched.
var editableSettings = []string{
	"title",
	"description",
	"author",
	"email",
	"github_username",
	"paginate",
	"related_posts_count",
	"timezone",
	"lang",
	"google_fonts",
	"cloudinary_default_folder",
}

// SettingsGet handles GET /api/settings: the editable subset of
// _config.yml, served from the read cache when warm.
func (h *Handler) SettingsGet(w http.ResponseWriter, r *http.Request) {
	settingsCache := cache.NewTyped[map[string]any](h.cache, h.cfg.DataTTL())
	if cached, ok := settingsCache.Get(r.Context(), cache.KeySettings); ok {
		WriteJSON(w, http.StatusOK, *cached)
		return
	}

	file, err := h.gh.FetchFile(r.Context(), configPath)
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}
	raw, err := file.Decode()
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}

	var config map[string]any
	if err := yaml.Unmarshal(raw, &config); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Failed to parse %s: %v", configPath, err))
		return
	}

	settings := make(map[string]any)
	for _, field := range editableSettings {
		if value, ok := config[field]; ok {
			settings[field] = value
		}
	}

	_ = settingsCache.Set(r.Context(), cache.KeySettings, &settings)
	WriteJSON(w, http.StatusOK, settings)
}

// SettingsUpdate handles PUT /api/settings. Only allowlisted fields may
// change; the file's other keys, ordering, and comments are preserved
// by editing the YAML node tree in place.
func (h *Handler) SettingsUpdate(w http.ResponseWriter, r *http.Request) {
	if !h.requireGitHub(w) {
		return
	}

	var updates map[string]any
	if !decodeBody(w, r, &updates) {
		return
	}

	var invalid []string
	for field := range updates {
		if !slices.Contains(editableSettings, field) {
			invalid = append(invalid, field)
		}
	}
	if len(invalid) > 0 {
		slices.Sort(invalid)
		WriteBadRequest(w, "Cannot update fields: "+strings.Join(invalid, ", "))
		return
	}

	file, err := h.gh.FetchFile(r.Context(), configPath)
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}
	raw, err := file.Decode()
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Failed to parse %s: %v", configPath, err))
		return
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		WriteBadRequest(w, configPath+" is not a YAML mapping")
		return
	}

	for field, value := range updates {
		if err := setYAMLKey(doc.Content[0], field, value); err != nil {
			h.writeServerError(w, r, err)
			return
		}
	}

	content, err := yaml.Marshal(&doc)
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}

	result, err := h.gh.PutFile(r.Context(), configPath, github.PutOptions{
		Content: content,
		Message: "Update site settings from admin panel",
		SHA:     file.SHA,
	})
	if err != nil {
		if github.IsConflict(err) {
			WriteConflict(w, "Site configuration was modified by someone else. Reload and try again.")
			return
		}
		h.writeServerError(w, r, err)
		return
	}

	// Invalidation over update: the next GET re-reads the file of
	// record instead of trusting a locally reconstructed copy.
	if err := h.cache.Delete(r.Context(), cache.KeySettings); err != nil {
		h.logger.Error("failed to invalidate settings cache",
			"request_id", middleware.GetRequestID(r.Context()), "error", err)
	}

	WriteJSON(w, http.StatusOK, mutationResponse{
		Success:   true,
		Message:   "Settings updated successfully. The site will rebuild automatically in 1-2 minutes.",
		CommitSHA: result.CommitSHA,
	})
}

// setYAMLKey replaces the value of key in a mapping node, or appends the
// pair when the key is absent.
func setYAMLKey(mapping *yaml.Node, key string, value any) error {
	var valueNode yaml.Node
	if err := valueNode.Encode(value); err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			// Keep the original node's comments.
			valueNode.HeadComment = mapping.Content[i+1].HeadComment
			valueNode.LineComment = mapping.Content[i+1].LineComment
			mapping.Content[i+1] = &valueNode
			return nil
		}
	}

	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: key}
	mapping.Content = append(mapping.Content, keyNode, &valueNode)
	return nil
}
