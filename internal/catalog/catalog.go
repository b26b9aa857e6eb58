// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog loads the translated corpus files produced by the
// upstream translation stage.
// Implements: prd005-catalog (R1-R3); docs/ARCHITECTURE § Catalog.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pdiddy/shelf-bridge/pkg/types"
)

// rawItem mirrors one record of a translated corpus file. The
// translation stage writes "author" for books and "director" for
// movies; everything else is shared.
type rawItem struct {
	Title      string `json:"title"`
	TitleZh    string `json:"title_zh"`
	Comment    string `json:"comment"`
	Rating     *int   `json:"rating"`
	SubjectURL string `json:"subject_url"`
	Author     string `json:"author"`
	Director   string `json:"director"`
}

// Load reads one translated corpus file into CatalogItems of the given
// category. Records without a subject URL have no stable identity and
// are dropped with a warning line on w.
func Load(path string, category types.Category, w io.Writer) ([]types.CatalogItem, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("unknown category %q", category)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// A category the user never crawled simply has nothing to
		// resolve; only unreadable or malformed files abort.
		fmt.Fprintf(w, "warning: %s: no catalog file, nothing to resolve\n", path)
		return []types.CatalogItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading catalog file %s: %w", path, err)
	}

	var raw []rawItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", path, err)
	}

	items := make([]types.CatalogItem, 0, len(raw))
	for i, r := range raw {
		if r.SubjectURL == "" {
			fmt.Fprintf(w, "warning: %s: record %d has no subject_url, dropped\n", path, i)
			continue
		}

		creator := r.Author
		if category == types.CategoryMovie {
			creator = r.Director
		}
		rating := 0
		if r.Rating != nil {
			rating = *r.Rating
		}

		items = append(items, types.CatalogItem{
			Category:      category,
			Title:         r.Title,
			Creator:       creator,
			OriginalTitle: r.TitleZh,
			Comment:       r.Comment,
			Rating:        rating,
			SubjectURL:    r.SubjectURL,
		})
	}
	return items, nil
}
