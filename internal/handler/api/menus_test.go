// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"strings"
	"testing"
)

const menusYAML = `header_menu:
  - id: home
    type: page
    label: Home
    url: /
  - id: tech
    type: category
    label: Tech
    mega_menu: true
    children:
      - id: go
        type: category
        label: Go
        url: /categories/go/
footer_menu:
  - id: about
    type: page
    label: About
    url: /about/
`

func TestMenusGet(t *testing.T) {
	fs := newFakeContentStore()
	fs.add("_data/menus.yml", menusYAML, "m1")
	h, _ := newTestHandler(t, testConfig(), fs)

	rec := doRequest(t, h.MenusGet, http.MethodGet, "/api/menus", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp menusFile
	decodeResponse(t, rec, &resp)

	if len(resp.HeaderMenu) != 2 {
		t.Fatalf("len(HeaderMenu) = %d, want 2", len(resp.HeaderMenu))
	}
	if resp.HeaderMenu[1].Label != "Tech" || !resp.HeaderMenu[1].MegaMenu {
		t.Errorf("HeaderMenu[1] = %+v", resp.HeaderMenu[1])
	}
	if len(resp.HeaderMenu[1].Children) != 1 || resp.HeaderMenu[1].Children[0].ID != "go" {
		t.Errorf("HeaderMenu[1].Children = %+v", resp.HeaderMenu[1].Children)
	}
	// Absent menus come back as empty arrays, not null.
	if resp.MobileMenu == nil {
		t.Error("MobileMenu is nil, want empty slice")
	}
}

func TestMenusUpdate(t *testing.T) {
	fs := newFakeContentStore()
	fs.add("_data/menus.yml", menusYAML, "m1")
	h, _ := newTestHandler(t, testConfig(), fs)

	rec := doRequest(t, h.MenusUpdate, http.MethodPut, "/api/menus", map[string]any{
		"header_menu": []map[string]any{
			{"id": "home", "type": "page", "label": "Home", "url": "/"},
			{"type": "page", "label": "Contact Us", "url": "/contact/"},
		},
		"mobile_menu": []map[string]any{},
		"footer_menu": []map[string]any{},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp mutationResponse
	decodeResponse(t, rec, &resp)
	if !resp.Success {
		t.Error("Success = false")
	}

	written, _ := fs.content("_data/menus.yml")
	if !strings.HasPrefix(written, "# Menu Configuration") {
		t.Errorf("header comment missing:\n%s", written)
	}
	if !strings.Contains(written, "label: Home") {
		t.Errorf("menu item missing:\n%s", written)
	}
	if strings.Contains(written, "label: About") {
		t.Errorf("removed footer item survived:\n%s", written)
	}
	// Items without an id get one derived from the label.
	if !strings.Contains(written, "id: contact-us") {
		t.Errorf("missing derived id:\n%s", written)
	}
	if fs.messages[len(fs.messages)-1] != "Update menus from admin panel" {
		t.Errorf("commit message = %q", fs.messages[len(fs.messages)-1])
	}
}

func TestMenusUpdateRederivesMalformedIDs(t *testing.T) {
	fs := newFakeContentStore()
	fs.add("_data/menus.yml", menusYAML, "m1")
	h, _ := newTestHandler(t, testConfig(), fs)

	rec := doRequest(t, h.MenusUpdate, http.MethodPut, "/api/menus", map[string]any{
		"header_menu": []map[string]any{
			{"id": "Contact Us!", "type": "page", "label": "Contact Us", "url": "/contact/"},
		},
		"mobile_menu": []map[string]any{},
		"footer_menu": []map[string]any{},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	// An id that is not a well-formed slug is replaced with one derived
	// from the label.
	written, _ := fs.content("_data/menus.yml")
	if !strings.Contains(written, "id: contact-us") || strings.Contains(written, "Contact Us!") {
		t.Errorf("malformed id not re-derived:\n%s", written)
	}
}

func TestMenusUpdateValidation(t *testing.T) {
	fs := newFakeContentStore()
	fs.add("_data/menus.yml", menusYAML, "m1")
	h, _ := newTestHandler(t, testConfig(), fs)

	rec := doRequest(t, h.MenusUpdate, http.MethodPut, "/api/menus", map[string]any{
		"header_menu": []map[string]any{
			{"id": "x", "type": "page"},
			{"id": "y", "label": "Y"},
		},
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	decodeResponse(t, rec, &resp)
	if resp.Fields["header_menu[0].label"] == "" {
		t.Error("missing error for header_menu[0].label")
	}
	if resp.Fields["header_menu[1].type"] == "" {
		t.Error("missing error for header_menu[1].type")
	}
	if len(fs.puts) != 0 {
		t.Error("store written despite validation failure")
	}
}
