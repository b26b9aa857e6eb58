// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mapstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/shelf-bridge/pkg/types"
)

func TestLoadMappingTableMissingFile(t *testing.T) {
	table, err := LoadMappingTable(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("a missing mapping file must load as empty, got: %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("Len() = %d, want 0", table.Len())
	}
}

func TestMappingTableRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json")

	table := NewMappingTable()
	mappings := []types.Mapping{
		{SubjectURL: "https://book.douban.com/subject/1070152/", TargetURL: "https://www.goodreads.com/book/show/769044"},
		{SubjectURL: "https://book.douban.com/subject/1082154/", TargetURL: "https://www.goodreads.com/book/show/117833"},
	}
	for _, m := range mappings {
		if err := table.Upsert(m, false); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}
	if err := table.Persist(path); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	loaded, err := LoadMappingTable(path)
	if err != nil {
		t.Fatalf("LoadMappingTable: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", loaded.Len())
	}
	for i, m := range loaded.All() {
		if m != mappings[i] {
			t.Errorf("mapping %d = %+v, want %+v (insertion order must survive)", i, m, mappings[i])
		}
	}

	target, ok := loaded.Lookup(mappings[0].SubjectURL)
	if !ok || target != mappings[0].TargetURL {
		t.Errorf("Lookup = %q/%v", target, ok)
	}
}

func TestMappingTablePersistFormat(t *testing.T) {
	// The file format is consumed by the downstream publishing tooling:
	// a JSON array of objects with subject_url and target_url keys.
	path := filepath.Join(t.TempDir(), "movies.json")

	table := NewMappingTable()
	if err := table.Upsert(types.Mapping{
		SubjectURL: "https://movie.douban.com/subject/1293181/",
		TargetURL:  "https://www.imdb.com/title/tt0101258/",
	}, false); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := table.Persist(path); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var raw []map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("mapping file is not a JSON array of objects: %v", err)
	}
	if len(raw) != 1 {
		t.Fatalf("len = %d, want 1", len(raw))
	}
	if raw[0]["subject_url"] == "" || raw[0]["target_url"] == "" {
		t.Errorf("entry = %v, want subject_url and target_url keys", raw[0])
	}
	if len(raw[0]) != 2 {
		t.Errorf("entry has %d keys, want exactly 2", len(raw[0]))
	}
}

func TestMappingTablePersistEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json")
	if err := NewMappingTable().Persist(path); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var raw []types.Mapping
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("empty table must persist as an empty JSON array, got %q: %v", data, err)
	}
}

func TestMappingTableUpsertConflict(t *testing.T) {
	table := NewMappingTable()
	first := types.Mapping{SubjectURL: "https://book.douban.com/subject/1/", TargetURL: "https://www.goodreads.com/book/show/10"}
	if err := table.Upsert(first, false); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	clash := types.Mapping{SubjectURL: first.SubjectURL, TargetURL: "https://www.goodreads.com/book/show/20"}
	err := table.Upsert(clash, false)

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("want ConflictError, got %v", err)
	}
	if conflict.Existing != first.TargetURL {
		t.Errorf("Existing = %q, want %q", conflict.Existing, first.TargetURL)
	}

	// The confirmed mapping survives the rejected upsert.
	if target, _ := table.Lookup(first.SubjectURL); target != first.TargetURL {
		t.Errorf("Lookup = %q, the existing mapping must be untouched", target)
	}

	// With overwrite the replacement goes through, in place.
	if err := table.Upsert(clash, true); err != nil {
		t.Fatalf("Upsert overwrite: %v", err)
	}
	if target, _ := table.Lookup(first.SubjectURL); target != clash.TargetURL {
		t.Errorf("Lookup after overwrite = %q, want %q", target, clash.TargetURL)
	}
	if table.Len() != 1 {
		t.Errorf("Len() = %d, overwrite must not append", table.Len())
	}
}

func TestMappingTablePersistAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "books.json")

	table := NewMappingTable()
	table.Upsert(types.Mapping{SubjectURL: "s", TargetURL: "t"}, false)
	if err := table.Persist(path); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if err := table.Persist(path); err != nil {
		t.Fatalf("second Persist: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, temp files must not be left behind", len(entries))
	}
}
