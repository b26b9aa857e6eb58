// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve runs the resolution loop: search, score, persist.
// Implements: prd001-resolution (R5-R7); docs/ARCHITECTURE § Pipeline.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pdiddy/shelf-bridge/internal/mapstore"
	"github.com/pdiddy/shelf-bridge/internal/match"
	"github.com/pdiddy/shelf-bridge/internal/search"
	"github.com/pdiddy/shelf-bridge/pkg/types"
)

// ErrPartial signals that the run completed but left items ambiguous or
// unresolved. The CLI maps it to a distinct exit code so scripted runs
// can tell "done" from "done, but review needed".
var ErrPartial = errors.New("some items were not resolved")

// Runner resolves a batch of catalog items against one destination
// backend and persists the outcomes.
type Runner struct {
	Backend   search.Backend
	Table     *mapstore.MappingTable
	TablePath string
	Log       *mapstore.Log
	Match     types.MatchConfig

	// Overwrite re-resolves items that already have a mapping.
	Overwrite bool

	// DryRun searches and scores but persists nothing.
	DryRun bool
}

// Summary holds counts from one resolution run.
type Summary struct {
	Matched    int
	Ambiguous  int
	Unresolved int
	Skipped    int
}

// Total returns the number of items processed.
func (s Summary) Total() int {
	return s.Matched + s.Ambiguous + s.Unresolved + s.Skipped
}

// Partial reports whether any item needs human attention.
func (s Summary) Partial() bool {
	return s.Ambiguous > 0 || s.Unresolved > 0
}

// Run processes items in order, writing one status line per item to w.
// Already-mapped items are skipped unless Overwrite is set. A search
// failure marks that item unresolved and the run continues; the mapping
// file is re-persisted after every accepted match, so an interrupted run
// loses at most the in-flight item. Returns ErrPartial when the run
// finishes with ambiguous or unresolved items.
func (r *Runner) Run(ctx context.Context, items []types.CatalogItem, w io.Writer) (Summary, error) {
	var summary Summary

	for _, item := range items {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		if _, mapped := r.Table.Lookup(item.SubjectURL); mapped && !r.Overwrite {
			fmt.Fprintf(w, "skipped    %s\n", item.SubjectURL)
			summary.Skipped++
			continue
		}

		res := r.resolveOne(ctx, item)
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		if r.Log != nil && !r.DryRun {
			if err := r.Log.Record(ctx, item, res); err != nil {
				return summary, err
			}
		}

		switch res.Status {
		case types.StatusMatched:
			if !r.DryRun {
				err := r.Table.Upsert(types.Mapping{SubjectURL: item.SubjectURL, TargetURL: res.TargetURL}, r.Overwrite)
				var conflict *mapstore.ConflictError
				if errors.As(err, &conflict) {
					// Mapped between the lookup and here; the existing
					// entry is authoritative.
					fmt.Fprintf(w, "skipped    %s\n", item.SubjectURL)
					summary.Skipped++
					continue
				}
				if err != nil {
					return summary, err
				}
				if err := r.Table.Persist(r.TablePath); err != nil {
					return summary, err
				}
			}
			fmt.Fprintf(w, "matched    %s -> %s (%.2f)\n", item.SubjectURL, res.TargetURL, res.Confidence)
			summary.Matched++

		case types.StatusAmbiguous:
			fmt.Fprintf(w, "ambiguous  %s (%d contenders)\n", item.SubjectURL, len(res.Candidates))
			summary.Ambiguous++

		default:
			fmt.Fprintf(w, "unresolved %s (%s)\n", item.SubjectURL, res.Reason)
			summary.Unresolved++
		}
	}

	fmt.Fprintf(w, "\nmatched: %d, ambiguous: %d, unresolved: %d, skipped: %d\n",
		summary.Matched, summary.Ambiguous, summary.Unresolved, summary.Skipped)

	if summary.Partial() {
		return summary, ErrPartial
	}
	return summary, nil
}

// resolveOne searches for one item and classifies the result. Search
// failures become an unresolved verdict rather than aborting the batch;
// a context cancellation still aborts via the caller's select.
func (r *Runner) resolveOne(ctx context.Context, item types.CatalogItem) types.Resolution {
	query := search.Query{Title: item.QueryTitle(), Creator: item.Creator}
	if query.IsEmpty() {
		return types.Resolution{Status: types.StatusUnresolved, Reason: types.ReasonNoCandidates}
	}

	candidates, err := r.Backend.Search(ctx, query)
	if err != nil {
		return types.Resolution{Status: types.StatusUnresolved, Reason: types.ReasonFetchFailed}
	}

	return match.Resolve(item, candidates, r.Match)
}
