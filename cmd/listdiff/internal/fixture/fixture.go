// Package fixture reads and writes list snapshots used by the listdiff CLI.
//
// A snapshot file holds a list of sections, each with an identity, an
// optional value and its elements:
//
//	sections:
//	  - id: general
//	    value: General
//	    elements:
//	      - id: wifi
//	        value: "on"
//	      - id: bluetooth
//
// Files ending in .yaml or .yml are YAML; files ending in .cbor are CBOR with
// the same field names.
package fixture

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/listdiff/pkg/diff"
	"github.com/go-drift/listdiff/pkg/errors"
)

// Format is a snapshot encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatCBOR
)

func (f Format) String() string {
	if f == FormatCBOR {
		return "cbor"
	}
	return "yaml"
}

// File is the on-disk shape of a snapshot.
type File struct {
	Sections []Section `yaml:"sections" cbor:"sections"`
}

// Section is one section of a snapshot file.
type Section struct {
	ID       string      `yaml:"id" cbor:"id"`
	Value    string      `yaml:"value,omitempty" cbor:"value,omitempty"`
	Elements []diff.Item `yaml:"elements,omitempty" cbor:"elements,omitempty"`
}

// FormatOf picks the encoding from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cbor":
		return FormatCBOR, nil
	}
	return 0, fmt.Errorf("unsupported snapshot extension %q (use .yaml, .yml or .cbor)", filepath.Ext(path))
}

// Load reads the snapshot at path.
func Load(path string) ([]diff.ItemSection, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, decodeError("fixture.Load", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	sections, err := Decode(data, format)
	if err != nil {
		return nil, decodeError("fixture.Load", path, err)
	}
	return sections, nil
}

// Decode parses a snapshot in the given format.
func Decode(data []byte, format Format) ([]diff.ItemSection, error) {
	var f File
	switch format {
	case FormatCBOR:
		if err := cbor.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("cbor unmarshal: %w", err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && err != io.EOF {
			return nil, fmt.Errorf("yaml unmarshal: %w", err)
		}
	}
	return f.ItemSections()
}

// Encode serializes sections in the given format.
func Encode(sections []diff.ItemSection, format Format) ([]byte, error) {
	f := FromSections(sections)
	if format == FormatCBOR {
		return cbor.Marshal(f)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write stores sections at path, choosing the encoding from its extension.
func Write(path string, sections []diff.ItemSection) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(sections, format)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// ItemSections converts the file into diffable sections. Sections and
// elements must have a non-empty id.
func (f File) ItemSections() ([]diff.ItemSection, error) {
	out := make([]diff.ItemSection, len(f.Sections))
	for i, s := range f.Sections {
		if s.ID == "" {
			return nil, fmt.Errorf("section %d has no id", i)
		}
		for j, e := range s.Elements {
			if e.ID == "" {
				return nil, fmt.Errorf("element [%d, %d] has no id", i, j)
			}
		}
		out[i] = diff.ItemSection{
			Model:    diff.Item{ID: s.ID, Value: s.Value},
			Elements: append([]diff.Item(nil), s.Elements...),
		}
	}
	return out, nil
}

// FromSections is the inverse of ItemSections.
func FromSections(sections []diff.ItemSection) File {
	f := File{Sections: make([]Section, len(sections))}
	for i, s := range sections {
		f.Sections[i] = Section{
			ID:       s.Model.ID,
			Value:    s.Model.Value,
			Elements: append([]diff.Item(nil), s.Elements...),
		}
	}
	return f
}

func decodeError(op, path string, err error) error {
	return &errors.Error{Op: op, Kind: errors.KindDecode, Path: path, Err: err}
}
