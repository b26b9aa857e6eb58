// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/shelf-bridge/internal/mapstore"
	"github.com/pdiddy/shelf-bridge/pkg/types"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "List items needing human adjudication",
	Long: `Review lists the ambiguous and unresolved items from the last
resolution run, with the scored contenders for each ambiguous item.
Confirm a pairing by adding it to the mapping file, then re-run resolve;
confirmed items are skipped.`,
	RunE: runReview,
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}
	categoryFlag, _ := cmd.Flags().GetString("category")

	var category types.Category
	if categoryFlag != "" && categoryFlag != "both" {
		category = types.Category(categoryFlag)
		if !category.Valid() {
			return fmt.Errorf("unknown category %q: use book, movie, or both", categoryFlag)
		}
	}

	log, err := mapstore.OpenLog(cfg.Store.IndexDir)
	if err != nil {
		return err
	}
	defer log.Close()

	entries, err := log.NeedsReview(cmd.Context(), category)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("Nothing needs review.")
		return nil
	}

	for _, e := range entries {
		if e.Reason != "" {
			fmt.Fprintf(os.Stdout, "%s  %s  %q (%s)\n", e.Status, e.SubjectURL, e.Title, e.Reason)
		} else {
			fmt.Fprintf(os.Stdout, "%s  %s  %q\n", e.Status, e.SubjectURL, e.Title)
		}
		for _, c := range e.Candidates {
			fmt.Fprintf(os.Stdout, "    %.3f  %s  %q  %s\n", c.Score, c.ID, c.Title, c.URL)
		}
	}
	fmt.Fprintf(os.Stdout, "\n%d item(s) need review\n", len(entries))
	return nil
}

func init() {
	reviewCmd.Flags().String("category", "both", "categories to list: book, movie, or both")
	reviewCmd.Flags().Bool("json", false, "output entries as JSON")

	rootCmd.AddCommand(reviewCmd)
}
