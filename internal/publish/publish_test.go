// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/shelf-bridge/internal/mapstore"
	"github.com/pdiddy/shelf-bridge/pkg/types"
)

func TestConvertRating(t *testing.T) {
	tests := []struct {
		name     string
		rating   int
		category types.Category
		want     int
	}{
		{"book unrated", 0, types.CategoryBook, 0},
		{"book in range", 4, types.CategoryBook, 4},
		{"book clamp low", -1, types.CategoryBook, 1},
		{"book clamp high", 7, types.CategoryBook, 5},
		{"movie unrated", 0, types.CategoryMovie, 0},
		{"movie doubles", 3, types.CategoryMovie, 6},
		{"movie max", 5, types.CategoryMovie, 10},
		{"movie clamp high", 9, types.CategoryMovie, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConvertRating(tt.rating, tt.category); got != tt.want {
				t.Errorf("ConvertRating(%d, %s) = %d, want %d", tt.rating, tt.category, got, tt.want)
			}
		})
	}
}

func TestBuildQueue(t *testing.T) {
	table := mapstore.NewMappingTable()
	table.Upsert(types.Mapping{
		SubjectURL: "https://movie.douban.com/subject/1/",
		TargetURL:  "https://www.imdb.com/title/tt0101258/",
	}, false)

	items := []types.CatalogItem{
		{
			Category:   types.CategoryMovie,
			Title:      "Raise the Red Lantern",
			Comment:    "Stunning.",
			Rating:     4,
			SubjectURL: "https://movie.douban.com/subject/1/",
		},
		{
			Category:   types.CategoryMovie,
			Title:      "Not Yet Resolved",
			SubjectURL: "https://movie.douban.com/subject/2/",
		},
	}

	entries, unmapped, empty := BuildQueue(items, table)
	if unmapped != 1 {
		t.Errorf("unmapped = %d, want 1", unmapped)
	}
	if empty != 0 {
		t.Errorf("empty = %d, want 0", empty)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}

	e := entries[0]
	if e.TargetURL != "https://www.imdb.com/title/tt0101258/" {
		t.Errorf("TargetURL = %q", e.TargetURL)
	}
	if e.Rating != 8 {
		t.Errorf("Rating = %d, want the doubled movie rating 8", e.Rating)
	}
	if e.Comment != "Stunning." {
		t.Errorf("Comment = %q", e.Comment)
	}
}

func TestBuildQueueFallsBackToOriginalTitle(t *testing.T) {
	table := mapstore.NewMappingTable()
	table.Upsert(types.Mapping{SubjectURL: "s", TargetURL: "t"}, false)

	items := []types.CatalogItem{
		{Category: types.CategoryBook, OriginalTitle: "活着", Rating: 5, SubjectURL: "s"},
	}
	entries, _, _ := BuildQueue(items, table)
	if len(entries) != 1 || entries[0].Title != "活着" {
		t.Errorf("entries = %+v, want the original-language title", entries)
	}
}

func TestBuildQueueSkipsItemsWithNothingToPost(t *testing.T) {
	table := mapstore.NewMappingTable()
	table.Upsert(types.Mapping{SubjectURL: "s", TargetURL: "t"}, false)

	items := []types.CatalogItem{
		{Category: types.CategoryBook, Title: "Frog", SubjectURL: "s"},
	}
	entries, unmapped, empty := BuildQueue(items, table)
	if len(entries) != 0 || unmapped != 0 || empty != 1 {
		t.Errorf("entries=%d unmapped=%d empty=%d, a mapped item with no comment and no rating must count as empty", len(entries), unmapped, empty)
	}
}

func TestWriteQueue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue", "movies.yaml")
	entries := []QueueEntry{
		{SubjectURL: "s", TargetURL: "t", Title: "Raise the Red Lantern", Rating: 8},
	}
	if err := WriteQueue(path, entries); err != nil {
		t.Fatalf("WriteQueue: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	for _, want := range []string{"items:", "target_url: t", "rating: 8"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("queue file missing %q:\n%s", want, data)
		}
	}
}

func TestWriteQueueEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.yaml")
	if err := WriteQueue(path, nil); err != nil {
		t.Fatalf("WriteQueue: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "items: []") {
		t.Errorf("empty queue file = %q, want an explicit empty list", data)
	}
}
