// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/shelf-bridge/internal/httputil"
	"github.com/pdiddy/shelf-bridge/pkg/types"
)

// goodreadsBaseURL is the Goodreads site root. Declared as a var so tests
// can substitute an httptest server.
var goodreadsBaseURL = "https://www.goodreads.com"

// goodreadsIDPattern pulls the numeric book id from a /book/show/ path
// (e.g. "/book/show/769044.The_Garlic_Ballads" → "769044").
var goodreadsIDPattern = regexp.MustCompile(`/book/show/(\d+)`)

// GoodreadsBackend searches Goodreads for book candidates.
type GoodreadsBackend struct {
	Client   *http.Client
	Throttle *httputil.Throttle
	Headers  Headers
	Cfg      types.FetchConfig
}

// Name returns the backend identifier.
func (b *GoodreadsBackend) Name() string { return "goodreads" }

// Category returns the catalog category this backend serves.
func (b *GoodreadsBackend) Category() types.Category { return types.CategoryBook }

// Search queries the Goodreads search page and extracts book candidates
// in result order. A page that parses to nothing yields an empty slice,
// not an error.
func (b *GoodreadsBackend) Search(ctx context.Context, query Query) ([]types.Candidate, error) {
	if query.IsEmpty() {
		return nil, fmt.Errorf("empty Goodreads query")
	}

	reqURL := goodreadsBaseURL + "/search?q=" + url.QueryEscape(query.Terms())
	doc, err := fetchDocument(ctx, b.Client, b.Throttle, reqURL, b.Headers, b.Cfg.MaxRetries, query)
	if err != nil {
		return nil, err
	}

	return extractGoodreads(doc), nil
}

// extractGoodreads pulls candidates from a Goodreads search result
// document. It reads the result table rows, falling back to bare
// bookTitle anchors when the table layout is absent, and preserves the
// page's result order.
func extractGoodreads(doc *goquery.Document) []types.Candidate {
	var candidates []types.Candidate

	rows := doc.Find("tr[itemtype='http://schema.org/Book']")
	if rows.Length() == 0 {
		rows = doc.Find("table.tableList tr")
	}

	rows.Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a.bookTitle").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		id := extractGoodreadsID(href)
		if id == "" {
			return
		}

		title := cleanField(link.Text())
		if title == "" {
			return
		}

		creator := cleanField(row.Find("a.authorName").First().Text())

		candidates = append(candidates, types.Candidate{
			Title:    title,
			Creator:  creator,
			ID:       id,
			URL:      absoluteURL(goodreadsBaseURL, href),
			Rank:     len(candidates),
			Category: types.CategoryBook,
		})
	})

	// Bare anchor fallback, seen on some lightweight result variants.
	if len(candidates) == 0 {
		doc.Find("a.bookTitle").Each(func(_ int, link *goquery.Selection) {
			href, ok := link.Attr("href")
			if !ok {
				return
			}
			id := extractGoodreadsID(href)
			title := cleanField(link.Text())
			if id == "" || title == "" {
				return
			}
			candidates = append(candidates, types.Candidate{
				Title:    title,
				ID:       id,
				URL:      absoluteURL(goodreadsBaseURL, href),
				Rank:     len(candidates),
				Category: types.CategoryBook,
			})
		})
	}

	return candidates
}

// extractGoodreadsID returns the numeric book id from a result href, or
// "" when the href is not a book link.
func extractGoodreadsID(href string) string {
	m := goodreadsIDPattern.FindStringSubmatch(href)
	if m == nil {
		return ""
	}
	return m[1]
}

// absoluteURL resolves href against the site base and strips any query
// string, which on result pages only carries tracking parameters.
func absoluteURL(base, href string) string {
	if i := strings.IndexByte(href, '?'); i >= 0 {
		href = href[:i]
	}
	if strings.HasPrefix(href, "/") {
		return base + href
	}
	return href
}

// fetchDocument performs one throttled, retried GET and parses the body
// into a goquery document. The throttle clock advances when the body has
// been fully read, so inter-request spacing is measured end-to-start.
func fetchDocument(ctx context.Context, client *http.Client, throttle *httputil.Throttle, reqURL string, headers Headers, maxRetries int, query Query) (*goquery.Document, error) {
	if throttle != nil {
		if err := throttle.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	headers.apply(req)

	resp, err := httputil.DoWithRetry(ctx, client, req, throttle, maxRetries)
	if err != nil {
		var fe *httputil.FetchError
		if errors.As(err, &fe) && fe.Query == "" {
			fe.Query = query.Terms()
		}
		if throttle != nil {
			throttle.Done()
		}
		return nil, err
	}
	defer resp.Body.Close()

	doc, parseErr := goquery.NewDocumentFromReader(resp.Body)
	if throttle != nil {
		throttle.Done()
	}
	if parseErr != nil {
		// A body that is not even HTML still yields an empty candidate
		// list downstream; surface it as a malformed response.
		return nil, &httputil.FetchError{Kind: httputil.Malformed, Query: query.Terms(), Err: parseErr}
	}
	return doc, nil
}
