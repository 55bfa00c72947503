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

// taxonomyPath is the data file holding site categories and tags.
const taxonomyPath = "_data/taxonomy.yml"

// CategoryNode is one category, optionally with children one level
// deep. YAML accepts either a bare string or a mapping.
type CategoryNode struct {
	Item     string         `json:"item" yaml:"item"`
	Slug     string         `json:"slug" yaml:"slug"`
	Children []CategoryNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// UnmarshalYAML accepts both `- Tech` and `- {item: Tech, slug: tech}`.
func (c *CategoryNode) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		c.Item = node.Value
		return nil
	}
	type plain CategoryNode
	return node.Decode((*plain)(c))
}

// TagNode is one tag. YAML accepts either a bare string or a mapping.
type TagNode struct {
	Item string `json:"item" yaml:"item"`
	Slug string `json:"slug" yaml:"slug"`
}

// UnmarshalYAML accepts both `- Travel` and `- {item: Travel, slug: travel}`.
func (t *TagNode) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		t.Item = node.Value
		return nil
	}
	type plain TagNode
	return node.Decode((*plain)(t))
}

// taxonomyFile is the YAML shape of _data/taxonomy.yml.
type taxonomyFile struct {
	Categories []CategoryNode `yaml:"categories"`
	Tags       []TagNode      `yaml:"tags"`
}

// taxonomyResponse carries both the flattened names (for pickers) and
// the full trees (for the taxonomy editor).
type taxonomyResponse struct {
	Categories     []string       `json:"categories"`
	Tags           []string       `json:"tags"`
	CategoriesTree []CategoryNode `json:"categoriesTree"`
	TagsTree       []TagNode      `json:"tagsTree"`
}

// flattenCategories lists category names with their children inline.
func flattenCategories(nodes []CategoryNode) []string {
	flat := make([]string, 0, len(nodes))
	for _, node := range nodes {
		flat = append(flat, node.Item)
		for _, child := range node.Children {
			flat = append(flat, child.Item)
		}
	}
	return flat
}

func tagNames(nodes []TagNode) []string {
	names := make([]string, 0, len(nodes))
	for _, node := range nodes {
		names = append(names, node.Item)
	}
	return names
}

// TaxonomyGet handles GET /api/taxonomy.
func (h *Handler) TaxonomyGet(w http.ResponseWriter, r *http.Request) {
	taxCache := cache.NewTyped[taxonomyResponse](h.cache, h.cfg.DataTTL())
	if cached, ok := taxCache.Get(r.Context(), cache.KeyTaxonomy); ok {
		WriteJSON(w, http.StatusOK, *cached)
		return
	}

	file, err := h.gh.FetchFile(r.Context(), taxonomyPath)
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}
	raw, err := file.Decode()
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}

	var tax taxonomyFile
	if err := yaml.Unmarshal(raw, &tax); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Failed to parse %s: %v", taxonomyPath, err))
		return
	}

	resp := taxonomyResponse{
		Categories:     flattenCategories(tax.Categories),
		Tags:           tagNames(tax.Tags),
		CategoriesTree: tax.Categories,
		TagsTree:       tax.Tags,
	}
	if resp.CategoriesTree == nil {
		resp.CategoriesTree = []CategoryNode{}
	}
	if resp.TagsTree == nil {
		resp.TagsTree = []TagNode{}
	}

	_ = taxCache.Set(r.Context(), cache.KeyTaxonomy, &resp)
	WriteJSON(w, http.StatusOK, resp)
}

// taxonomyUpdateRequest is the body of a taxonomy update. Flat lists
// are accepted for older clients; trees win when both are present.
type taxonomyUpdateRequest struct {
	Categories     []string       `json:"categories"`
	Tags           []string       `json:"tags"`
	CategoriesTree []CategoryNode `json:"categoriesTree"`
	TagsTree       []TagNode      `json:"tagsTree"`
}

// TaxonomyUpdate handles PUT /api/taxonomy.
func (h *Handler) TaxonomyUpdate(w http.ResponseWriter, r *http.Request) {
	if !h.requireGitHub(w) {
		return
	}

	var req taxonomyUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Categories == nil || req.Tags == nil {
		WriteBadRequest(w, "Both categories and tags must be arrays")
		return
	}

	categoriesTree := req.CategoriesTree
	if categoriesTree == nil {
		categoriesTree = make([]CategoryNode, 0, len(req.Categories))
		for _, name := range req.Categories {
			categoriesTree = append(categoriesTree, CategoryNode{Item: name})
		}
	}
	tagsTree := req.TagsTree
	if tagsTree == nil {
		tagsTree = make([]TagNode, 0, len(req.Tags))
		for _, name := range req.Tags {
			tagsTree = append(tagsTree, TagNode{Item: name})
		}
	}

	fillCategorySlugs(categoriesTree)
	for i := range tagsTree {
		if !util.IsValidSlug(tagsTree[i].Slug) {
			tagsTree[i].Slug = util.Slugify(tagsTree[i].Item)
		}
	}

	file, err := h.gh.FetchFile(r.Context(), taxonomyPath)
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}

	content, err := buildTaxonomyYAML(categoriesTree, tagsTree)
	if err != nil {
		h.writeServerError(w, r, err)
		return
	}

	result, err := h.gh.PutFile(r.Context(), taxonomyPath, github.PutOptions{
		Content: content,
		Message: "Update taxonomy from admin panel",
		SHA:     file.SHA,
	})
	if err != nil {
		if github.IsConflict(err) {
			WriteConflict(w, "Taxonomy was modified by someone else. Reload and try again.")
			return
		}
		h.writeServerError(w, r, err)
		return
	}

	if err := h.cache.Delete(r.Context(), cache.KeyTaxonomy); err != nil {
		h.logger.Error("failed to invalidate taxonomy cache",
			"request_id", middleware.GetRequestID(r.Context()), "error", err)
	}

	WriteJSON(w, http.StatusOK, mutationResponse{
		Success:   true,
		Message:   "Taxonomy updated successfully. The site will rebuild automatically.",
		CommitSHA: result.CommitSHA,
	})
}

// fillCategorySlugs derives missing slugs from category names. An
// explicit slug is kept only when well formed; anything else is
// re-derived from the name.
func fillCategorySlugs(nodes []CategoryNode) {
	for i := range nodes {
		if !util.IsValidSlug(nodes[i].Slug) {
			nodes[i].Slug = util.Slugify(nodes[i].Item)
		}
		fillCategorySlugs(nodes[i].Children)
	}
}

const taxonomyHeader = `# Site Taxonomy - Manage categories and tags used across the site
# Edit these lists in the admin panel under Settings > Taxonomy
#
# Categories support one level of hierarchy with parent-child
# relationships. Each entry can carry an optional slug.

`

func buildTaxonomyYAML(categories []CategoryNode, tags []TagNode) ([]byte, error) {
	body, err := yaml.Marshal(taxonomyFile{Categories: categories, Tags: tags})
	if err != nil {
		return nil, err
	}
	return append([]byte(taxonomyHeader), body...), nil
}
