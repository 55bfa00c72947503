// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

// Package frontmatter implements parsing and serialization of the YAML-ish
// metadata block that prefixes Jekyll markdown documents.
//
// The dialect is deliberately narrow: scalar strings, booleans and flat
// string lists, with key order preserved. Documents produced by Build
// round-trip through Parse without disturbing unrelated keys, which is
// what lets a single key be added or removed on a move through the bin
// without rewriting the rest of the metadata.
package frontmatter

import (
	"regexp"
	"strings"
)

// Delimiter is the fence line separating frontmatter from the body.
const Delimiter = "---"

// Kind discriminates the value types a frontmatter field can hold.
type Kind int

const (
	// KindString is a scalar string value.
	KindString Kind = iota
	// KindBool is a boolean value.
	KindBool
	// KindList is an ordered list of strings.
	KindList
)

// Value is a tagged union of the supported frontmatter value types.
type Value struct {
	kind Kind
	str  string
	b    bool
	list []string
}

// String constructs a string Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bool constructs a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// List constructs a string-list Value.
func List(items ...string) Value {
	return Value{kind: KindList, list: append([]string(nil), items...)}
}

// Kind returns the value's type tag.
func (v Value) Kind() Kind { return v.kind }

// AsString returns the scalar string, or "" for non-string values.
func (v Value) AsString() string { return v.str }

// AsBool returns the boolean, or false for non-boolean values.
func (v Value) AsBool() bool { return v.b }

// AsList returns a copy of the list, or nil for non-list values.
func (v Value) AsList() []string {
	if v.list == nil {
		return nil
	}
	return append([]string(nil), v.list...)
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	default:
		return v.str == o.str
	}
}

type field struct {
	key   string
	value Value
}

// Doc is an ordered key→Value map holding a document's frontmatter.
// The zero value is an empty document ready for use.
type Doc struct {
	fields []field
}

// Get returns the value for key and whether it is present.
func (d *Doc) Get(key string) (Value, bool) {
	for _, f := range d.fields {
		if f.key == key {
			return f.value, true
		}
	}
	return Value{}, false
}

// Has reports whether key is present.
func (d *Doc) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Set replaces the value for key in place, preserving its position, or
// appends the key if it is new.
func (d *Doc) Set(key string, value Value) {
	for i, f := range d.fields {
		if f.key == key {
			d.fields[i].value = value
			return
		}
	}
	d.fields = append(d.fields, field{key: key, value: value})
}

// Delete removes key entirely and reports whether it was present.
func (d *Doc) Delete(key string) bool {
	for i, f := range d.fields {
		if f.key == key {
			d.fields = append(d.fields[:i], d.fields[i+1:]...)
			return true
		}
	}
	return false
}

// Keys returns the keys in document order.
func (d *Doc) Keys() []string {
	keys := make([]string, len(d.fields))
	for i, f := range d.fields {
		keys[i] = f.key
	}
	return keys
}

// Len returns the number of fields.
func (d *Doc) Len() int { return len(d.fields) }

// Clone returns a deep copy of the document.
func (d *Doc) Clone() *Doc {
	c := &Doc{fields: make([]field, len(d.fields))}
	copy(c.fields, d.fields)
	return c
}

// Equal reports whether two documents contain the same keys, in the same
// order, with equal values.
func (d *Doc) Equal(o *Doc) bool {
	if len(d.fields) != len(o.fields) {
		return false
	}
	for i := range d.fields {
		if d.fields[i].key != o.fields[i].key || !d.fields[i].value.Equal(o.fields[i].value) {
			return false
		}
	}
	return true
}

// keyLine matches "key:" at the start of a frontmatter line.
var keyLine = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*:`)

// Parse splits a document into frontmatter and body. A document without a
// leading delimiter at offset 0 has no frontmatter: the entire input is
// returned as body with an empty Doc, not an error.
func Parse(content string) (*Doc, string) {
	doc := &Doc{}

	if !strings.HasPrefix(content, Delimiter+"\n") {
		return doc, content
	}

	rest := content[len(Delimiter)+1:]
	end := strings.Index(rest, "\n"+Delimiter+"\n")
	if end < 0 {
		// Unterminated fence: treat the whole input as body, matching the
		// no-frontmatter case.
		return doc, content
	}

	block := rest[:end]
	body := strings.TrimSpace(rest[end+len(Delimiter)+2:])

	var (
		currentKey  string
		currentVals []string
		fromList    bool // values came from "- item" list syntax
	)

	flush := func() {
		if currentKey == "" {
			return
		}
		switch {
		case fromList || len(currentVals) > 1:
			doc.Set(currentKey, List(currentVals...))
		case len(currentVals) == 1:
			doc.Set(currentKey, coerceScalar(currentVals[0]))
		default:
			doc.Set(currentKey, String(""))
		}
		currentKey = ""
		currentVals = nil
		fromList = false
	}

	for _, line := range strings.Split(block, "\n") {
		switch {
		case keyLine.MatchString(line):
			flush()

			colon := strings.Index(line, ":")
			currentKey = strings.TrimSpace(line[:colon])
			value := strings.TrimSpace(line[colon+1:])

			if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
				// Inline list syntax: [item1, item2]
				doc.Set(currentKey, List(splitInlineList(value)...))
				currentKey = ""
			} else if value != "" {
				currentVals = append(currentVals, unquote(value))
			}

		case currentKey != "" && strings.HasPrefix(strings.TrimSpace(line), "-"):
			fromList = true
			item := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
			currentVals = append(currentVals, unquote(item))
		}
	}
	flush()

	return doc, body
}

// Build serializes a Doc back to a fenced frontmatter block, list values as
// block lists (empty lists inline as []), scalars as "key: value". The
// returned string ends with the closing fence and a newline, so the body
// can be appended directly.
func Build(doc *Doc) string {
	var sb strings.Builder
	sb.WriteString(Delimiter)
	sb.WriteByte('\n')

	for _, f := range doc.fields {
		switch f.value.kind {
		case KindList:
			if len(f.value.list) == 0 {
				sb.WriteString(f.key)
				sb.WriteString(": []\n")
				continue
			}
			sb.WriteString(f.key)
			sb.WriteString(":\n")
			for _, item := range f.value.list {
				sb.WriteString("  - ")
				sb.WriteString(item)
				sb.WriteByte('\n')
			}
		case KindBool:
			sb.WriteString(f.key)
			sb.WriteString(": ")
			if f.value.b {
				sb.WriteString("true")
			} else {
				sb.WriteString("false")
			}
			sb.WriteByte('\n')
		default:
			sb.WriteString(f.key)
			sb.WriteString(": ")
			sb.WriteString(f.value.str)
			sb.WriteByte('\n')
		}
	}

	sb.WriteString(Delimiter)
	sb.WriteByte('\n')
	return sb.String()
}

// Compose joins frontmatter and body back into a full document.
func Compose(doc *Doc, body string) string {
	return Build(doc) + body
}

// coerceScalar converts the literal strings "true"/"false" to booleans,
// everything else stays a string.
func coerceScalar(s string) Value {
	switch s {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	default:
		return String(s)
	}
}

// splitInlineList parses the contents of an inline [a, b, c] list.
func splitInlineList(value string) []string {
	inner := strings.TrimSpace(value[1 : len(value)-1])
	if inner == "" {
		return nil
	}
	parts := strings.Split(inner, ",")
	items := make([]string, len(parts))
	for i, p := range parts {
		items[i] = unquote(strings.TrimSpace(p))
	}
	return items
}

// unquote strips one layer of matching single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
