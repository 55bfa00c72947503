// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

package frontmatter

import (
	"strings"
	"testing"
)

func TestParse_Typical(t *testing.T) {
	content := "---\n" +
		"title: About Us\n" +
		"layout: page\n" +
		"protected: true\n" +
		"tags:\n" +
		"  - news\n" +
		"  - featured\n" +
		"---\n" +
		"Page content here"

	doc, body := Parse(content)

	if body != "Page content here" {
		t.Errorf("body = %q, want %q", body, "Page content here")
	}
	if got, _ := doc.Get("title"); !got.Equal(String("About Us")) {
		t.Errorf("title = %+v, want string About Us", got)
	}
	if got, _ := doc.Get("layout"); !got.Equal(String("page")) {
		t.Errorf("layout = %+v, want string page", got)
	}
	if got, _ := doc.Get("protected"); !got.Equal(Bool(true)) {
		t.Errorf("protected = %+v, want bool true", got)
	}
	if got, _ := doc.Get("tags"); !got.Equal(List("news", "featured")) {
		t.Errorf("tags = %+v, want [news featured]", got)
	}

	wantKeys := []string{"title", "layout", "protected", "tags"}
	gotKeys := doc.Keys()
	if len(gotKeys) != len(wantKeys) {
		t.Fatalf("Keys() = %v, want %v", gotKeys, wantKeys)
	}
	for i := range wantKeys {
		if gotKeys[i] != wantKeys[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, gotKeys[i], wantKeys[i])
		}
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	content := "Just a body, no metadata."

	doc, body := Parse(content)

	if doc.Len() != 0 {
		t.Errorf("Len() = %d, want 0", doc.Len())
	}
	if body != content {
		t.Errorf("body = %q, want full input", body)
	}
}

func TestParse_UnterminatedFence(t *testing.T) {
	content := "---\ntitle: Broken\nNo closing fence"

	doc, body := Parse(content)

	if doc.Len() != 0 {
		t.Errorf("Len() = %d, want 0", doc.Len())
	}
	if body != content {
		t.Errorf("body = %q, want full input", body)
	}
}

func TestParse_InlineList(t *testing.T) {
	doc, _ := Parse("---\ncategories: [Tech, Life]\n---\nbody")

	if got, _ := doc.Get("categories"); !got.Equal(List("Tech", "Life")) {
		t.Errorf("categories = %+v, want [Tech Life]", got)
	}
}

func TestParse_EmptyInlineList(t *testing.T) {
	doc, _ := Parse("---\ntags: []\n---\nbody")

	got, ok := doc.Get("tags")
	if !ok {
		t.Fatal("tags key missing")
	}
	if got.Kind() != KindList || len(got.AsList()) != 0 {
		t.Errorf("tags = %+v, want empty list", got)
	}
}

func TestParse_QuotedValues(t *testing.T) {
	doc, _ := Parse("---\ntitle: \"Quoted: with colon\"\nauthor: 'Single'\n---\nbody")

	if got, _ := doc.Get("title"); !got.Equal(String("Quoted: with colon")) {
		t.Errorf("title = %+v, want unquoted string", got)
	}
	if got, _ := doc.Get("author"); !got.Equal(String("Single")) {
		t.Errorf("author = %+v, want Single", got)
	}
}

func TestParse_SingleItemListStaysList(t *testing.T) {
	doc, _ := Parse("---\ntags:\n  - solo\n---\nbody")

	got, _ := doc.Get("tags")
	if got.Kind() != KindList {
		t.Fatalf("tags kind = %v, want KindList", got.Kind())
	}
	if list := got.AsList(); len(list) != 1 || list[0] != "solo" {
		t.Errorf("tags = %v, want [solo]", list)
	}
}

func TestParse_EmptyValue(t *testing.T) {
	doc, _ := Parse("---\nimage:\ntitle: Next\n---\nbody")

	if got, _ := doc.Get("image"); !got.Equal(String("")) {
		t.Errorf("image = %+v, want empty string", got)
	}
	if got, _ := doc.Get("title"); !got.Equal(String("Next")) {
		t.Errorf("title = %+v, want Next", got)
	}
}

func TestBuild(t *testing.T) {
	doc := &Doc{}
	doc.Set("title", String("About"))
	doc.Set("protected", Bool(true))
	doc.Set("tags", List("news", "featured"))
	doc.Set("drafts", List())

	got := Build(doc)
	want := "---\n" +
		"title: About\n" +
		"protected: true\n" +
		"tags:\n" +
		"  - news\n" +
		"  - featured\n" +
		"drafts: []\n" +
		"---\n"

	if got != want {
		t.Errorf("Build() = %q, want %q", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	doc := &Doc{}
	doc.Set("title", String("My Post"))
	doc.Set("layout", String("post"))
	doc.Set("published", Bool(false))
	doc.Set("categories", List("Tech"))
	doc.Set("tags", List("go", "jekyll"))
	doc.Set("empty", List())

	parsed, body := Parse(Compose(doc, "The body.\n"))

	if body != "The body." {
		t.Errorf("body = %q, want %q", body, "The body.")
	}
	if !parsed.Equal(doc) {
		t.Errorf("round trip mismatch: got keys %v, want keys %v", parsed.Keys(), doc.Keys())
	}
}

func TestSetDeleteDoesNotDisturbOtherKeys(t *testing.T) {
	original := &Doc{}
	original.Set("title", String("Post"))
	original.Set("categories", List("Tech", "Life"))
	original.Set("protected", Bool(true))

	working := original.Clone()
	working.Set("binned_at", String("2025-10-21T10:30:00Z"))

	if !working.Has("binned_at") {
		t.Fatal("binned_at not set")
	}
	keys := working.Keys()
	if keys[len(keys)-1] != "binned_at" {
		t.Errorf("new key should append at the end, got %v", keys)
	}

	if !working.Delete("binned_at") {
		t.Fatal("Delete returned false")
	}
	if !working.Equal(original) {
		t.Errorf("strip(inject(doc)) != doc: got %v, want %v", working.Keys(), original.Keys())
	}
}

func TestDelete_Absent(t *testing.T) {
	doc := &Doc{}
	doc.Set("title", String("x"))

	if doc.Delete("missing") {
		t.Error("Delete of absent key returned true")
	}
	if doc.Len() != 1 {
		t.Errorf("Len() = %d, want 1", doc.Len())
	}
}

func TestSet_ReplacePreservesPosition(t *testing.T) {
	doc := &Doc{}
	doc.Set("a", String("1"))
	doc.Set("b", String("2"))
	doc.Set("c", String("3"))

	doc.Set("b", String("updated"))

	keys := doc.Keys()
	if keys[1] != "b" {
		t.Errorf("replaced key moved: %v", keys)
	}
	if got, _ := doc.Get("b"); !got.Equal(String("updated")) {
		t.Errorf("b = %+v, want updated", got)
	}
}

func TestBuild_DeletedKeyAbsentFromOutput(t *testing.T) {
	doc := &Doc{}
	doc.Set("title", String("Post"))
	doc.Set("binned_at", String("2025-10-21T10:30:00Z"))
	doc.Delete("binned_at")

	if out := Build(doc); strings.Contains(out, "binned_at") {
		t.Errorf("Build() still contains deleted key: %q", out)
	}
}
