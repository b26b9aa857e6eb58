// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish prepares per-category publish queues: resolved items
// joined with their destination URLs, ratings converted to the
// destination scale. The queue files are the hand-off to the posting
// stage, which drives a browser session and is outside this tool.
// Implements: prd006-publish (R1-R3).
package publish

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/shelf-bridge/internal/mapstore"
	"github.com/pdiddy/shelf-bridge/pkg/types"
)

// QueueEntry is one item ready for posting.
type QueueEntry struct {
	SubjectURL string `yaml:"subject_url"`
	TargetURL  string `yaml:"target_url"`
	Title      string `yaml:"title"`
	Comment    string `yaml:"comment,omitempty"`

	// Rating is on the destination scale: 1-5 for Goodreads, 2-10 for
	// IMDb. Zero means unrated and must not be posted.
	Rating int `yaml:"rating,omitempty"`
}

// ConvertRating maps a source rating (1-5, 0 = unrated) to the
// destination scale. Goodreads keeps the 1-5 scale; IMDb rates on 1-10,
// so source stars double (1→2 ... 5→10). Unrated stays unrated, and
// out-of-range input clamps rather than errors.
func ConvertRating(rating int, category types.Category) int {
	if rating == 0 {
		return 0
	}
	if rating < 1 {
		rating = 1
	}
	if rating > 5 {
		rating = 5
	}
	if category == types.CategoryMovie {
		return rating * 2
	}
	return rating
}

// BuildQueue joins catalog items with their confirmed mappings. Items
// without a mapping are not queue-worthy and are counted, not errored;
// they belong in the review flow instead. Items with neither a comment
// nor a rating have nothing to post and are counted as empty.
func BuildQueue(items []types.CatalogItem, table *mapstore.MappingTable) (entries []QueueEntry, unmapped, empty int) {
	for _, item := range items {
		target, ok := table.Lookup(item.SubjectURL)
		if !ok {
			unmapped++
			continue
		}
		if item.Comment == "" && item.Rating == 0 {
			empty++
			continue
		}
		entries = append(entries, QueueEntry{
			SubjectURL: item.SubjectURL,
			TargetURL:  target,
			Title:      item.QueryTitle(),
			Comment:    item.Comment,
			Rating:     ConvertRating(item.Rating, item.Category),
		})
	}
	return entries, unmapped, empty
}

// queueFile is the on-disk shape of a publish queue.
type queueFile struct {
	Items []QueueEntry `yaml:"items"`
}

// WriteQueue writes the queue entries to a YAML file.
func WriteQueue(path string, entries []QueueEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating queue directory: %w", err)
	}
	if entries == nil {
		entries = []QueueEntry{}
	}
	data, err := yaml.Marshal(queueFile{Items: entries})
	if err != nil {
		return fmt.Errorf("encoding queue file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing queue file %s: %w", path, err)
	}
	return nil
}
