// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

package api

import (
	"fmt"
	"net/http"

	"gopkg.in/yaml.v3"

	"github.com/circleseven/jekyll-admin/internal/cache"
	"github.com/circleseven/jekyll-admin/internal/github"
	"github.com/circleseven/jekyll-admin/internal/middleware"
	"github.com/circleseven/jekyll-admin/internal/util"
)

// menusPath is the data file holding the site's menu definitions.
const menusPath = "_data/menus.yml"

// MenuItem is one entry of a site menu, nestable one level via Children.
type MenuItem struct {
	ID       string     `json:"id" yaml:"id"`
	Type     string     `json:"type" yaml:"type"`
	Label    string     `json:"label" yaml:"label"`
	URL      string     `json:"url,omitempty" yaml:"url,omitempty"`
	Icon     string     `json:"icon,omitempty" yaml:"icon,omitempty"`
	MegaMenu bool       `json:"mega_menu,omitempty" yaml:"mega_menu,omitempty"`
	Children []MenuItem `json:"children,omitempty" yaml:"children,omitempty"`
}

// menusFile is the YAML shape of _data/menus.yml and also the GET
// response body.
type menusFile struct {
	HeaderMenu []MenuItem `json:"header_menu" yaml:"header_menu"`
	MobileMenu []MenuItem `json:"mobile_menu" yaml:"mobile_menu"`
	FooterMenu []MenuItem `json:"footer_menu" yaml:"footer_menu"`
}

func (m *menusFile) fillEmpty() {
	if m.HeaderMenu == nil {
		m.HeaderMenu = []MenuItem{}
	}
	if m.MobileMenu == nil {
		m.MobileMenu = []MenuItem{}
	}
	if m.FooterMenu == nil {
		m.FooterMenu = []MenuItem{}
	}
}

// MenusGet handles GET /api/menus.
func (h *Handler) MenusGet(w http.ResponseWriter, r *http.Request) {
	menusCache := cache.NewTyped[menusFile](h.cache, h.cfg.DataTTL())
	if cached, ok := menusCache.Get(r.Context(), cache.KeyMenus); ok {
		WriteJSON(w, http.StatusOK, *cached)
		return
	}

	file, err := h.gh.FetchFile(r.Context(), menusPath)
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}
	raw, err := file.Decode()
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}

	var menus menusFile
	if err := yaml.Unmarshal(raw, &menus); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Failed to parse %s: %v", menusPath, err))
		return
	}
	menus.fillEmpty()

	_ = menusCache.Set(r.Context(), cache.KeyMenus, &menus)
	WriteJSON(w, http.StatusOK, menus)
}

// MenusUpdate handles PUT /api/menus.
func (h *Handler) MenusUpdate(w http.ResponseWriter, r *http.Request) {
	if !h.requireGitHub(w) {
		return
	}

	var req menusFile
	if !decodeBody(w, r, &req) {
		return
	}
	req.fillEmpty()

	fields := make(map[string]string)
	validateMenuItems("header_menu", req.HeaderMenu, fields)
	validateMenuItems("mobile_menu", req.MobileMenu, fields)
	validateMenuItems("footer_menu", req.FooterMenu, fields)
	if len(fields) > 0 {
		WriteValidationError(w, "Request validation failed", fields)
		return
	}

	fillMenuIDs(req.HeaderMenu)
	fillMenuIDs(req.MobileMenu)
	fillMenuIDs(req.FooterMenu)

	file, err := h.gh.FetchFile(r.Context(), menusPath)
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}

	content, err := buildMenusYAML(&req)
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}

	result, err := h.gh.PutFile(r.Context(), menusPath, github.PutOptions{
		Content: content,
		Message: "Update menus from admin panel",
		SHA:     file.SHA,
	})
	if err != nil {
		if github.IsConflict(err) {
			WriteConflict(w, "Menus were modified by someone else. Reload and try again.")
			return
		}
		h.writeServerError(w, r, err)
		return
	}

	if err := h.cache.Delete(r.Context(), cache.KeyMenus); err != nil {
		h.logger.Error("failed to invalidate menus cache",
			"request_id", middleware.GetRequestID(r.Context()), "error", err)
	}

	WriteJSON(w, http.StatusOK, mutationResponse{
		Success:   true,
		Message:   "Menus updated successfully. The site will rebuild automatically.",
		CommitSHA: result.CommitSHA,
	})
}

// fillMenuIDs derives missing item ids from labels. An explicit id is
// kept only when it is a well-formed slug; anything else is re-derived.
func fillMenuIDs(items []MenuItem) {
	for i := range items {
		if !util.IsValidSlug(items[i].ID) {
			items[i].ID = util.Slugify(items[i].Label)
		}
		fillMenuIDs(items[i].Children)
	}
}

func validateMenuItems(menu string, items []MenuItem, fields map[string]string) {
	for i, item := range items {
		if item.Label == "" {
			fields[fmt.Sprintf("%s[%d].label", menu, i)] = "label is required"
		}
		if item.Type == "" {
			fields[fmt.Sprintf("%s[%d].type", menu, i)] = "type is required"
		}
	}
}

const menusHeader = `# Menu Configuration
#
# Structure:
# - id: Unique identifier for the menu item
# - type: Type of menu item (category|page|custom|heading)
# - label: Display text for the menu item
# - url: Target URL (optional for headings)
# - icon: Icon class (optional)
# - mega_menu: Boolean to enable mega-menu styling (default: false)
# - children: Array of nested menu items (optional)

`

func buildMenusYAML(menus *menusFile) ([]byte, error) {
	body, err := yaml.Marshal(menus)
	if err != nil {
		return nil, err
	}
	return append([]byte(menusHeader), body...), nil
}
