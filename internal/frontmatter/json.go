// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

package frontmatter

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON emits the document as a JSON object with keys in document
// order.
func (d *Doc) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range d.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := f.value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object into the document, preserving the
// order keys appear in the input. A token-level decode is required here
// because decoding through a map would shuffle the keys.
func (d *Doc) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("frontmatter: expected JSON object, got %v", tok)
	}

	d.fields = nil
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("frontmatter: unexpected key token %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var value Value
		if err := value.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("frontmatter: key %q: %w", key, err)
		}
		d.fields = append(d.fields, field{key: key, value: value})
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON emits the value as a JSON string, boolean, or array of
// strings depending on its kind.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return json.Marshal(v.b)
	case KindList:
		list := v.list
		if list == nil {
			list = []string{}
		}
		return json.Marshal(list)
	default:
		return json.Marshal(v.str)
	}
}

// UnmarshalJSON reads a JSON string, boolean, number, or array of
// strings. Numbers are kept as their literal text, matching how the
// YAML side treats every scalar that is not a boolean.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty value")
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = String(s)
		return nil
	case '[':
		var items []string
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("lists must contain only strings: %w", err)
		}
		*v = List(items...)
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return err
		}
		*v = Bool(b)
		return nil
	case 'n':
		*v = String("")
		return nil
	default:
		// Numbers arrive as their literal text.
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("unsupported value type")
		}
		*v = String(n.String())
		return nil
	}
}
