// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mapstore

import (
	"context"
	"testing"

	"github.com/pdiddy/shelf-bridge/pkg/types"
)

func testLog(t *testing.T) *Log {
	t.Helper()
	log, err := OpenLog(t.TempDir())
	if err != nil {
		t.Fatalf("OpenLog: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

func TestLogRecordAndStats(t *testing.T) {
	log := testLog(t)
	ctx := context.Background()

	items := []struct {
		item types.CatalogItem
		res  types.Resolution
	}{
		{
			types.CatalogItem{Category: types.CategoryBook, Title: "Frog", SubjectURL: "https://book.douban.com/subject/1/"},
			types.Resolution{Status: types.StatusMatched, TargetURL: "https://www.goodreads.com/book/show/10", Confidence: 0.95},
		},
		{
			types.CatalogItem{Category: types.CategoryBook, Title: "Red Sorghum", SubjectURL: "https://book.douban.com/subject/2/"},
			types.Resolution{Status: types.StatusAmbiguous, Confidence: 0.9, Candidates: []types.ScoredCandidate{
				{Candidate: types.Candidate{Title: "Red Sorghum", ID: "20", URL: "u"}, Score: 0.9},
			}},
		},
		{
			types.CatalogItem{Category: types.CategoryMovie, Title: "To Live", SubjectURL: "https://movie.douban.com/subject/3/"},
			types.Resolution{Status: types.StatusUnresolved, Reason: types.ReasonNoCandidates},
		},
	}
	for _, tt := range items {
		if err := log.Record(ctx, tt.item, tt.res); err != nil {
			t.Fatalf("Record(%s): %v", tt.item.SubjectURL, err)
		}
	}

	stats, err := log.Stats(ctx, "")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Matched != 1 || stats.Ambiguous != 1 || stats.Unresolved != 1 {
		t.Errorf("Stats = %+v", stats)
	}
	if stats.Total() != 3 {
		t.Errorf("Total() = %d, want 3", stats.Total())
	}

	bookStats, err := log.Stats(ctx, types.CategoryBook)
	if err != nil {
		t.Fatalf("Stats(book): %v", err)
	}
	if bookStats.Total() != 2 || bookStats.Unresolved != 0 {
		t.Errorf("Stats(book) = %+v", bookStats)
	}
}

func TestLogRecordReplacesEarlierVerdict(t *testing.T) {
	log := testLog(t)
	ctx := context.Background()

	item := types.CatalogItem{Category: types.CategoryBook, Title: "Frog", SubjectURL: "https://book.douban.com/subject/1/"}

	if err := log.Record(ctx, item, types.Resolution{Status: types.StatusUnresolved, Reason: types.ReasonFetchFailed}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := log.Record(ctx, item, types.Resolution{Status: types.StatusMatched, TargetURL: "u", Confidence: 1.0}); err != nil {
		t.Fatalf("second Record: %v", err)
	}

	stats, err := log.Stats(ctx, "")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total() != 1 || stats.Matched != 1 {
		t.Errorf("Stats = %+v, the later verdict must replace the earlier one", stats)
	}
}

func TestLogNeedsReview(t *testing.T) {
	log := testLog(t)
	ctx := context.Background()

	matched := types.CatalogItem{Category: types.CategoryBook, Title: "Frog", SubjectURL: "https://book.douban.com/subject/1/"}
	ambiguous := types.CatalogItem{Category: types.CategoryBook, Title: "Red Sorghum", SubjectURL: "https://book.douban.com/subject/2/"}
	unresolvedMovie := types.CatalogItem{Category: types.CategoryMovie, Title: "To Live", SubjectURL: "https://movie.douban.com/subject/3/"}

	log.Record(ctx, matched, types.Resolution{Status: types.StatusMatched, TargetURL: "u", Confidence: 1.0})
	log.Record(ctx, ambiguous, types.Resolution{Status: types.StatusAmbiguous, Confidence: 0.9, Candidates: []types.ScoredCandidate{
		{Candidate: types.Candidate{Title: "Red Sorghum", Creator: "Mo Yan", ID: "20", URL: "u2", Rank: 0}, Score: 0.9},
		{Candidate: types.Candidate{Title: "Red Sorghum", Creator: "Mo Yann", ID: "21", URL: "u3", Rank: 1}, Score: 0.87},
	}})
	log.Record(ctx, unresolvedMovie, types.Resolution{Status: types.StatusUnresolved, Reason: types.ReasonBelowThreshold, Confidence: 0.4})

	entries, err := log.NeedsReview(ctx, "")
	if err != nil {
		t.Fatalf("NeedsReview: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2 (matched items are excluded)", len(entries))
	}

	var amb *ReviewEntry
	for i := range entries {
		if entries[i].Status == string(types.StatusAmbiguous) {
			amb = &entries[i]
		}
	}
	if amb == nil {
		t.Fatal("ambiguous entry missing")
	}
	if len(amb.Candidates) != 2 {
		t.Errorf("len(Candidates) = %d, the contenders must survive the round trip", len(amb.Candidates))
	}
	if amb.Candidates[0].Score != 0.9 || amb.Candidates[0].Creator != "Mo Yan" {
		t.Errorf("candidate 0 = %+v", amb.Candidates[0])
	}

	movieEntries, err := log.NeedsReview(ctx, types.CategoryMovie)
	if err != nil {
		t.Fatalf("NeedsReview(movie): %v", err)
	}
	if len(movieEntries) != 1 || movieEntries[0].SubjectURL != unresolvedMovie.SubjectURL {
		t.Errorf("movie entries = %+v", movieEntries)
	}
}
