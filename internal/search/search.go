// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries destination platforms and extracts normalized
// match candidates from their result pages.
// Implements: prd003-fetch (R5); prd004-extraction (R1-R3);
//
//	docs/ARCHITECTURE § Search.
package search

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/shelf-bridge/pkg/types"
)

// Backend searches a single destination platform. Each destination
// (Goodreads, IMDb) implements this interface per the Strategy pattern.
type Backend interface {
	Name() string
	Category() types.Category
	Search(ctx context.Context, query Query) ([]types.Candidate, error)
}

// Query holds the search terms for one catalog item.
type Query struct {
	Title   string
	Creator string
}

// IsEmpty reports whether the query contains no searchable terms.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.Title) == "" && strings.TrimSpace(q.Creator) == ""
}

// Terms joins the non-empty query fields into the free-text string the
// destination search boxes expect.
func (q Query) Terms() string {
	var parts []string
	for _, p := range []string{q.Title, q.Creator} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Headers carries the browser-style request headers and optional session
// cookie attached to every outbound search request.
type Headers struct {
	UserAgent      string
	AcceptLanguage string
	Cookie         string
}

// apply sets the headers on req. Destination platforms serve a different
// (often empty) page to requests without a browser user agent.
func (h Headers) apply(req *http.Request) {
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}
	if h.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", h.AcceptLanguage)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if h.Cookie != "" {
		req.Header.Set("Cookie", h.Cookie)
	}
}

// cleanField normalizes an extracted candidate field: Unicode NFKC form,
// trimmed, with internal whitespace collapsed to single spaces. Casing is
// preserved; the matcher folds case itself.
func cleanField(s string) string {
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(s), " ")
}
