// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package recordstore

import (
	"encoding/json"
	"fmt"
)

// Document is the stored form of a record: a flat JSON object.
type Document map[string]any

// Clone returns a shallow copy so transaction functions never mutate the
// caller's snapshot.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Merge applies fields on top of d. A nil value removes the field.
func (d Document) Merge(fields Document) Document {
	out := d.Clone()
	if out == nil {
		out = Document{}
	}
	for k, v := range fields {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// String returns the field as a string, or "" when absent or not a string.
func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Snapshot is a point-in-time read of one record.
type Snapshot struct {
	Collection string
	ID         string
	Data       Document
	Version    int64
}

// Decode unmarshals the snapshot into v. The record key is exposed as "id".
func (s Snapshot) Decode(v any) error {
	doc := s.Data.Clone()
	if doc == nil {
		doc = Document{}
	}
	doc["id"] = s.ID
	return Convert(doc, v)
}

// ToDocument encodes a typed value as a Document. The "id" field is dropped
// because the key lives outside the document.
func ToDocument(v any) (Document, error) {
	var doc Document
	if err := Convert(v, &doc); err != nil {
		return nil, err
	}
	delete(doc, "id")
	return doc, nil
}

// Convert round-trips src through JSON into dst.
func Convert(src, dst any) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}
