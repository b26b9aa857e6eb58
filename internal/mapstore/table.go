// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mapstore persists subject→target mappings and the resolution
// log. Implements: prd002-mapping-store (R1-R5);
//
//	docs/ARCHITECTURE § Mapping Store.
package mapstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/shelf-bridge/pkg/types"
)

// ConflictError reports an Upsert against a subject that is already
// mapped, when overwriting was not requested.
type ConflictError struct {
	SubjectURL string
	Existing   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("subject %s already mapped to %s", e.SubjectURL, e.Existing)
}

// MappingTable is the in-memory view of one category's mapping file. It
// preserves insertion order, so re-persisting an unchanged table writes
// an identical file.
type MappingTable struct {
	bysubject map[string]int
	mappings  []types.Mapping
}

// NewMappingTable returns an empty table.
func NewMappingTable() *MappingTable {
	return &MappingTable{bysubject: make(map[string]int)}
}

// LoadMappingTable reads a mapping file. A missing file yields an empty
// table, so first runs need no setup step.
func LoadMappingTable(path string) (*MappingTable, error) {
	t := NewMappingTable()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading mapping file %s: %w", path, err)
	}

	var mappings []types.Mapping
	if err := json.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("parsing mapping file %s: %w", path, err)
	}

	for _, m := range mappings {
		if m.SubjectURL == "" {
			continue
		}
		if _, exists := t.bysubject[m.SubjectURL]; exists {
			continue
		}
		t.bysubject[m.SubjectURL] = len(t.mappings)
		t.mappings = append(t.mappings, m)
	}
	return t, nil
}

// Len returns the number of mappings in the table.
func (t *MappingTable) Len() int { return len(t.mappings) }

// Lookup returns the target for a subject, and whether one exists.
func (t *MappingTable) Lookup(subjectURL string) (string, bool) {
	i, ok := t.bysubject[subjectURL]
	if !ok {
		return "", false
	}
	return t.mappings[i].TargetURL, true
}

// All returns the mappings in insertion order. The returned slice is
// shared; callers must not mutate it.
func (t *MappingTable) All() []types.Mapping { return t.mappings }

// Upsert records a mapping. When the subject is already mapped and
// overwrite is false it leaves the table untouched and returns a
// ConflictError, so a re-run can never silently clobber confirmed work.
func (t *MappingTable) Upsert(m types.Mapping, overwrite bool) error {
	if i, exists := t.bysubject[m.SubjectURL]; exists {
		if !overwrite {
			return &ConflictError{SubjectURL: m.SubjectURL, Existing: t.mappings[i].TargetURL}
		}
		t.mappings[i].TargetURL = m.TargetURL
		return nil
	}
	t.bysubject[m.SubjectURL] = len(t.mappings)
	t.mappings = append(t.mappings, m)
	return nil
}

// Persist writes the table to path atomically: a temp file in the same
// directory, then a rename. A crash mid-write leaves the previous file
// intact.
func (t *MappingTable) Persist(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating mapping directory: %w", err)
	}

	mappings := t.mappings
	if mappings == nil {
		mappings = []types.Mapping{}
	}
	data, err := json.MarshalIndent(mappings, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding mappings: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing mapping file: %w", err)
	}
	return nil
}
