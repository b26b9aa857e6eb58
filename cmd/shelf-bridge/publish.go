// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/shelf-bridge/internal/catalog"
	"github.com/pdiddy/shelf-bridge/internal/mapstore"
	"github.com/pdiddy/shelf-bridge/internal/publish"
)

var publishQueueCmd = &cobra.Command{
	Use:   "publish-queue",
	Short: "Prepare per-category publish queues from resolved mappings",
	Long: `Publish-queue joins resolved catalog items with their destination
URLs and writes per-category queue files for the posting stage. Ratings
are converted to the destination scale: Goodreads keeps 1-5, IMDb takes
the doubled 2-10 value. Items without a mapping are left out.`,
	RunE: runPublishQueue,
}

func runPublishQueue(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}
	categoryFlag, _ := cmd.Flags().GetString("category")
	categories, err := categoriesFromFlag(categoryFlag)
	if err != nil {
		return err
	}

	for _, category := range categories {
		items, err := catalog.Load(catalogFile(cfg.Catalog, category), category, os.Stderr)
		if err != nil {
			return err
		}
		table, err := mapstore.LoadMappingTable(mappingFile(cfg.Store, category))
		if err != nil {
			return err
		}

		entries, unmapped, empty := publish.BuildQueue(items, table)
		path := queueFile(cfg.Publish, category)
		if err := publish.WriteQueue(path, entries); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s: %d queued, %d unmapped, %d empty -> %s\n", category, len(entries), unmapped, empty, path)
	}
	return nil
}

func init() {
	publishQueueCmd.Flags().String("category", "both", "categories to queue: book, movie, or both")

	rootCmd.AddCommand(publishQueueCmd)
}
