// Copyright © 2026 Genome Research Limited
//
//  This file is part of altocumulus.
//
//  altocumulus is free software: you can redistribute it and/or modify
//  it under the terms of the GNU Lesser General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  altocumulus is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU Lesser General Public License for more details.
//
//  You should have received a copy of the GNU Lesser General Public License
//  along with altocumulus. If not, see <http://www.gnu.org/licenses/>.

package stage

// this file implements the JSON manifest of workflow inputs

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
)

const manifestIndent = "    "

// Manifest is a JSON object of workflow input names to values that remembers
// the order of its keys. Values are held as raw JSON, so anything that isn't
// changed (numbers in particular) is written back out exactly as it was read.
type Manifest struct {
	keys   []string
	values map[string]json.RawMessage
}

// NewManifest returns an empty Manifest.
func NewManifest() *Manifest {
	return &Manifest{values: make(map[string]json.RawMessage)}
}

// ParseManifest parses a JSON object.
func ParseManifest(data []byte) (*Manifest, error) {
	m := NewManifest()
	if err := m.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return m, nil
}

// ReadManifest reads a Manifest from input, which is either the path to a JSON
// file or, if no such file exists, a literal JSON string.
func ReadManifest(input string) (*Manifest, error) {
	data := []byte(input)
	if info, err := os.Stat(input); err == nil && !info.IsDir() {
		data, err = os.ReadFile(input)
		if err != nil {
			return nil, err
		}
	}

	m, err := ParseManifest(data)
	if err != nil {
		return nil, Error{Op: "ReadManifest", Path: input, Err: ErrBadManifest, cause: err}
	}
	return m, nil
}

// UnmarshalJSON implements json.Unmarshaler. A repeated key takes the last
// value but keeps its first position.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New(ErrBadManifest)
	}

	m.keys = nil
	m.values = make(map[string]json.RawMessage)

	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errors.New(ErrBadManifest)
		}

		var raw json.RawMessage
		if err = dec.Decode(&raw); err != nil {
			return err
		}
		m.Set(key, raw)
	}

	if _, err = dec.Token(); err != nil {
		return err
	}
	if _, err = dec.Token(); err != io.EOF {
		return errors.New(ErrBadManifest)
	}
	return nil
}

// MarshalJSON implements json.Marshaler, writing keys in order.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalString(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(m.values[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Len returns the number of keys.
func (m *Manifest) Len() int {
	return len(m.keys)
}

// Keys returns the keys in order.
func (m *Manifest) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Get returns the raw JSON value of a key.
func (m *Manifest) Get(key string) (json.RawMessage, bool) {
	v, ok := m.values[key]
	return v, ok
}

// GetString returns the value of a key if it is a JSON string.
func (m *Manifest) GetString(key string) (string, bool) {
	raw, ok := m.values[key]
	if !ok || len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Set sets the raw JSON value of a key, appending the key if new.
func (m *Manifest) Set(key string, value json.RawMessage) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = append(json.RawMessage(nil), value...)
}

// SetString sets the value of a key to a JSON string.
func (m *Manifest) SetString(key, value string) {
	raw, err := marshalString(value)
	if err != nil {
		// strings always marshal
		panic(err)
	}
	m.Set(key, raw)
}

// Merge sets every key of other on ourselves, in other's order.
func (m *Manifest) Merge(other *Manifest) {
	for _, key := range other.keys {
		m.Set(key, other.values[key])
	}
}

// Indent returns our JSON indented with 4 spaces, with a trailing newline.
func (m *Manifest) Indent() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", manifestIndent)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes our indented JSON to the given path.
func (m *Manifest) WriteFile(path string) error {
	data, err := m.Indent()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644) // #nosec
}

// marshalString encodes s as a JSON string without HTML escaping.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
