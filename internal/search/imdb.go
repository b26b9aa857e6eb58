// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/shelf-bridge/internal/httputil"
	"github.com/pdiddy/shelf-bridge/pkg/types"
)

// imdbBaseURL is the IMDb site root. Declared as a var so tests can
// substitute an httptest server.
var imdbBaseURL = "https://www.imdb.com"

// imdbIDPattern pulls the title id from a /title/ path
// (e.g. "/title/tt0120689/" → "tt0120689").
var imdbIDPattern = regexp.MustCompile(`/title/(tt\d+)`)

// IMDbBackend searches the IMDb find page for title candidates.
type IMDbBackend struct {
	Client   *http.Client
	Throttle *httputil.Throttle
	Headers  Headers
	Cfg      types.FetchConfig
}

// Name returns the backend identifier.
func (b *IMDbBackend) Name() string { return "imdb" }

// Category returns the catalog category this backend serves.
func (b *IMDbBackend) Category() types.Category { return types.CategoryMovie }

// Search queries the IMDb find page, restricted to feature titles, and
// extracts candidates in result order. IMDb has served two markups for
// this page over time; both are handled.
func (b *IMDbBackend) Search(ctx context.Context, query Query) ([]types.Candidate, error) {
	if query.IsEmpty() {
		return nil, fmt.Errorf("empty IMDb query")
	}

	params := url.Values{
		"q":     {query.Terms()},
		"s":     {"tt"},
		"ttype": {"ft"},
	}
	reqURL := imdbBaseURL + "/find/?" + params.Encode()

	doc, err := fetchDocument(ctx, b.Client, b.Throttle, reqURL, b.Headers, b.Cfg.MaxRetries, query)
	if err != nil {
		return nil, err
	}

	return extractIMDb(doc), nil
}

// extractIMDb pulls candidates from an IMDb find-result document. The
// current markup lists results as ipc summary items; the legacy markup
// uses findList tables partitioned by section header. Candidates from a
// "Names" (people) section carry no title id and are dropped by the id
// check, so only title records survive.
func extractIMDb(doc *goquery.Document) []types.Candidate {
	var candidates []types.Candidate

	// Current markup.
	doc.Find("li.ipc-metadata-list-summary-item").Each(func(_ int, item *goquery.Selection) {
		link := item.Find("a.ipc-metadata-list-summary-item__t").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		id := extractIMDbID(href)
		if id == "" {
			return
		}
		title := cleanField(link.Text())
		if title == "" {
			return
		}

		// The second inline list carries the principal names; the first
		// carries year and type.
		creator := cleanField(item.Find("ul.ipc-metadata-list-summary-item__stl li").First().Text())

		candidates = append(candidates, types.Candidate{
			Title:    title,
			Creator:  creator,
			ID:       id,
			URL:      absoluteURL(imdbBaseURL, href),
			Rank:     len(candidates),
			Category: types.CategoryMovie,
		})
	})

	if len(candidates) > 0 {
		return candidates
	}

	// Legacy markup.
	doc.Find("td.result_text").Each(func(_ int, cell *goquery.Selection) {
		link := cell.Find("a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		id := extractIMDbID(href)
		if id == "" {
			return
		}
		title := cleanField(link.Text())
		if title == "" {
			return
		}

		candidates = append(candidates, types.Candidate{
			Title:    title,
			ID:       id,
			URL:      absoluteURL(imdbBaseURL, href),
			Rank:     len(candidates),
			Category: types.CategoryMovie,
		})
	})

	return candidates
}

// extractIMDbID returns the tt-id from a result href, or "" when the
// href is not a title link.
func extractIMDbID(href string) string {
	m := imdbIDPattern.FindStringSubmatch(href)
	if m == nil {
		return ""
	}
	return m[1]
}
