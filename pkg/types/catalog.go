// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the shelf-bridge pipeline.
// Implements: prd001-resolution (CatalogItem, Candidate, Resolution);
//
//	prd002-mapping-store (Mapping).
//
// See docs/ARCHITECTURE.md § Pipeline Interface, § Data Structures.
package types

// Category identifies the kind of catalog entry and selects the
// destination platform: books resolve against Goodreads, movies
// against IMDb.
type Category string

const (
	CategoryBook  Category = "book"
	CategoryMovie Category = "movie"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c == CategoryBook || c == CategoryMovie
}

// CatalogItem is one entry from the translated source catalog. Items are
// loaded read-only from the translation stage's output and are never
// mutated by the resolution pipeline.
type CatalogItem struct {
	// Category is book or movie.
	Category Category `json:"category" yaml:"category"`

	// Title is the translated (English) title.
	Title string `json:"title" yaml:"title"`

	// Creator is the translated author (books) or director (movies).
	// Multiple people are joined with " / " by the translation stage.
	Creator string `json:"creator" yaml:"creator"`

	// OriginalTitle is the source-language title, kept as a fallback
	// search query when translation produced an empty title.
	OriginalTitle string `json:"original_title,omitempty" yaml:"original_title,omitempty"`

	// Comment is the translated review text, carried through for the
	// publishing stage.
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`

	// Rating is the source rating on a 1-5 scale; 0 means unrated.
	Rating int `json:"rating,omitempty" yaml:"rating,omitempty"`

	// SubjectURL is the source platform URL. It is the item's stable,
	// unique identity across the whole pipeline.
	SubjectURL string `json:"subject_url" yaml:"subject_url"`
}

// QueryTitle returns the title to search with: the translated title, or
// the original-language title when translation produced nothing.
func (i CatalogItem) QueryTitle() string {
	if i.Title != "" {
		return i.Title
	}
	return i.OriginalTitle
}

// Candidate is a single search result from a destination platform. It is
// ephemeral: produced per search call, scored by the matcher, and never
// persisted on its own.
type Candidate struct {
	// Title is the candidate title, whitespace-normalized by the extractor.
	Title string `json:"title" yaml:"title"`

	// Creator is the candidate's author or director line, when the result
	// page exposes one. Empty when the destination omits it.
	Creator string `json:"creator,omitempty" yaml:"creator,omitempty"`

	// ID is the destination identifier (Goodreads numeric book id, IMDb
	// tt-id).
	ID string `json:"id" yaml:"id"`

	// URL is the absolute destination record URL.
	URL string `json:"url" yaml:"url"`

	// Rank is the 0-based position in the destination's result list. The
	// matcher uses it as a tie-break signal, so extractors must preserve
	// result order.
	Rank int `json:"rank" yaml:"rank"`

	// Category is the category signal derived from the result page
	// section, when the page exposes one. Empty means unknown.
	Category Category `json:"category,omitempty" yaml:"category,omitempty"`
}

// Mapping is a confirmed subject→target pairing. The field names match
// the mapping file format the publishing stage consumes.
type Mapping struct {
	SubjectURL string `json:"subject_url" yaml:"subject_url"`
	TargetURL  string `json:"target_url" yaml:"target_url"`
}

// ResolutionStatus is the matcher's verdict class for one item.
type ResolutionStatus string

const (
	StatusMatched    ResolutionStatus = "matched"
	StatusAmbiguous  ResolutionStatus = "ambiguous"
	StatusUnresolved ResolutionStatus = "unresolved"
)

// Unresolved reason strings recorded in the resolution log and review files.
const (
	ReasonNoCandidates     = "no_candidates"
	ReasonBelowThreshold   = "below_threshold"
	ReasonFetchFailed      = "fetch_failed"
	ReasonCategoryConflict = "category_conflict"
)

// ScoredCandidate pairs a candidate with its combined similarity score.
type ScoredCandidate struct {
	Candidate `yaml:",inline"`
	Score     float64 `json:"score" yaml:"score"`
}

// Resolution is the matcher's verdict on one CatalogItem.
type Resolution struct {
	// Status is matched, ambiguous, or unresolved.
	Status ResolutionStatus `json:"status" yaml:"status"`

	// TargetURL is the accepted destination URL. Set only when matched.
	TargetURL string `json:"target_url,omitempty" yaml:"target_url,omitempty"`

	// Confidence is the top candidate's combined score. Zero when no
	// candidate was scored.
	Confidence float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`

	// Reason explains an unresolved verdict (no_candidates,
	// below_threshold, fetch_failed, category_conflict).
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`

	// Candidates holds the near-equal top candidates of an ambiguous
	// verdict, for human adjudication.
	Candidates []ScoredCandidate `json:"candidates,omitempty" yaml:"candidates,omitempty"`
}
