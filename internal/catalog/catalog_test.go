// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/shelf-bridge/pkg/types"
)

func writeCatalog(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestLoadBooks(t *testing.T) {
	path := writeCatalog(t, "books.json", `[
		{
			"title": "The Garlic Ballads",
			"title_zh": "天堂蒜薹之歌",
			"comment": "Brutal and lyrical.",
			"rating": 5,
			"subject_url": "https://book.douban.com/subject/1070152/",
			"author": "Mo Yan"
		},
		{
			"title": "",
			"title_zh": "活着",
			"comment": "",
			"rating": null,
			"subject_url": "https://book.douban.com/subject/4913064/",
			"author": "Yu Hua"
		}
	]`)

	var warnings bytes.Buffer
	items, err := Load(path, types.CategoryBook, &warnings)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}

	first := items[0]
	if first.Category != types.CategoryBook || first.Title != "The Garlic Ballads" || first.Creator != "Mo Yan" {
		t.Errorf("first item = %+v", first)
	}
	if first.Rating != 5 {
		t.Errorf("Rating = %d, want 5", first.Rating)
	}

	second := items[1]
	if second.Rating != 0 {
		t.Errorf("null rating loaded as %d, want 0", second.Rating)
	}
	if second.QueryTitle() != "活着" {
		t.Errorf("QueryTitle() = %q, want the original-language fallback", second.QueryTitle())
	}
	if warnings.Len() != 0 {
		t.Errorf("unexpected warnings: %s", warnings.String())
	}
}

func TestLoadMoviesUsesDirector(t *testing.T) {
	path := writeCatalog(t, "movies.json", `[
		{
			"title": "Raise the Red Lantern",
			"title_zh": "大红灯笼高高挂",
			"rating": 4,
			"subject_url": "https://movie.douban.com/subject/1293181/",
			"director": "Zhang Yimou"
		}
	]`)

	items, err := Load(path, types.CategoryMovie, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].Creator != "Zhang Yimou" {
		t.Errorf("Creator = %q, movies take the director field", items[0].Creator)
	}
}

func TestLoadDropsRecordsWithoutSubjectURL(t *testing.T) {
	path := writeCatalog(t, "books.json", `[
		{"title": "No Identity", "author": "Unknown"},
		{"title": "Frog", "subject_url": "https://book.douban.com/subject/6/", "author": "Mo Yan"}
	]`)

	var warnings bytes.Buffer
	items, err := Load(path, types.CategoryBook, &warnings)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Frog" {
		t.Errorf("items = %+v, the record without subject_url must be dropped", items)
	}
	if !strings.Contains(warnings.String(), "subject_url") {
		t.Errorf("warnings = %q, want a subject_url warning", warnings.String())
	}
}

func TestLoadRejectsUnknownCategory(t *testing.T) {
	if _, err := Load("whatever.json", types.Category("album"), &bytes.Buffer{}); err == nil {
		t.Error("unknown category should be rejected")
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	var warnings bytes.Buffer
	items, err := Load(filepath.Join(t.TempDir(), "nope.json"), types.CategoryBook, &warnings)
	if err != nil {
		t.Fatalf("a missing catalog file must load as empty, got: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("len(items) = %d, want 0", len(items))
	}
	if !strings.Contains(warnings.String(), "no catalog file") {
		t.Errorf("warnings = %q, want a missing-file warning", warnings.String())
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeCatalog(t, "books.json", `{"not": "an array"}`)
	if _, err := Load(path, types.CategoryBook, &bytes.Buffer{}); err == nil {
		t.Error("malformed catalog file should be an error")
	}
}
