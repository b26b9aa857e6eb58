// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/shelf-bridge/internal/catalog"
	"github.com/pdiddy/shelf-bridge/internal/httputil"
	"github.com/pdiddy/shelf-bridge/internal/mapstore"
	"github.com/pdiddy/shelf-bridge/internal/resolve"
	"github.com/pdiddy/shelf-bridge/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve catalog items to destination records",
	Long: `Resolve searches each catalog item on its destination platform (books
on Goodreads, movies on IMDb), scores the result candidates, and persists
accepted pairings to the mapping files. Ambiguous and unresolved items are
written to per-category review files for human adjudication.

Items that already have a mapping are skipped unless --overwrite is given.
Exit code 2 means the run completed but left items needing review.`,
	RunE: runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	categoryFlag, _ := cmd.Flags().GetString("category")
	categories, err := categoriesFromFlag(categoryFlag)
	if err != nil {
		return err
	}

	if throttleFlag, _ := cmd.Flags().GetDuration("throttle"); cmd.Flags().Changed("throttle") {
		cfg.Fetch.ThrottleInterval = throttleFlag
		if err := cfg.Fetch.Validate(); err != nil {
			return err
		}
	}
	overwrite, _ := cmd.Flags().GetBool("overwrite")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	log, err := mapstore.OpenLog(cfg.Store.IndexDir)
	if err != nil {
		return err
	}
	defer log.Close()

	// One throttle across both categories: the spacing guarantee is
	// per-process, not per-site.
	throttle := httputil.NewThrottle(cfg.Fetch.ThrottleInterval)

	var total resolve.Summary
	for _, category := range categories {
		summary, err := resolveCategory(cmd, cfg, category, throttle, log, overwrite, dryRun)
		if err != nil && !errors.Is(err, resolve.ErrPartial) {
			return err
		}
		total.Matched += summary.Matched
		total.Ambiguous += summary.Ambiguous
		total.Unresolved += summary.Unresolved
		total.Skipped += summary.Skipped
	}

	if total.Partial() {
		return resolve.ErrPartial
	}
	return nil
}

func resolveCategory(cmd *cobra.Command, cfg types.PipelineConfig, category types.Category, throttle *httputil.Throttle, log *mapstore.Log, overwrite, dryRun bool) (resolve.Summary, error) {
	items, err := catalog.Load(catalogFile(cfg.Catalog, category), category, os.Stderr)
	if err != nil {
		return resolve.Summary{}, err
	}
	fmt.Fprintf(os.Stdout, "resolving %d %s item(s)\n", len(items), category)

	tablePath := mappingFile(cfg.Store, category)
	table, err := mapstore.LoadMappingTable(tablePath)
	if err != nil {
		return resolve.Summary{}, err
	}

	runner := &resolve.Runner{
		Backend:   backendFor(category, cfg.Fetch, throttle),
		Table:     table,
		TablePath: tablePath,
		Log:       log,
		Match:     cfg.Match,
		Overwrite: overwrite,
		DryRun:    dryRun,
	}

	summary, err := runner.Run(cmd.Context(), items, os.Stdout)
	if err != nil && !errors.Is(err, resolve.ErrPartial) {
		return summary, err
	}

	if !dryRun {
		entries, reviewErr := log.NeedsReview(cmd.Context(), category)
		if reviewErr != nil {
			return summary, reviewErr
		}
		if writeErr := resolve.WriteReview(reviewFile(cfg.Store, category), entries); writeErr != nil {
			return summary, writeErr
		}
	}
	return summary, err
}

func init() {
	resolveCmd.Flags().String("category", "both", "categories to resolve: book, movie, or both")
	resolveCmd.Flags().Bool("overwrite", false, "re-resolve items that already have a mapping")
	resolveCmd.Flags().Bool("dry-run", false, "search and score without writing mappings or review files")
	resolveCmd.Flags().Duration("throttle", 1500*time.Millisecond, "minimum spacing between outbound requests")

	rootCmd.AddCommand(resolveCmd)
}
