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

var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "Inspect the persisted subject-to-target mappings",
}

var mappingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List confirmed mappings",
	RunE:  runMappingsList,
}

func runMappingsList(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}
	categoryFlag, _ := cmd.Flags().GetString("category")
	categories, err := categoriesFromFlag(categoryFlag)
	if err != nil {
		return err
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")

	var all []types.Mapping
	for _, category := range categories {
		table, err := mapstore.LoadMappingTable(mappingFile(cfg.Store, category))
		if err != nil {
			return err
		}
		all = append(all, table.All()...)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(all)
	}

	for _, m := range all {
		fmt.Fprintf(os.Stdout, "%s -> %s\n", m.SubjectURL, m.TargetURL)
	}
	fmt.Fprintf(os.Stdout, "\n%d mapping(s)\n", len(all))
	return nil
}

var mappingsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show resolution counts by status",
	RunE:  runMappingsStats,
}

func runMappingsStats(cmd *cobra.Command, args []string) error {
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

	stats, err := log.Stats(cmd.Context(), category)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "matched:    %d\n", stats.Matched)
	fmt.Fprintf(os.Stdout, "ambiguous:  %d\n", stats.Ambiguous)
	fmt.Fprintf(os.Stdout, "unresolved: %d\n", stats.Unresolved)
	fmt.Fprintf(os.Stdout, "total:      %d\n", stats.Total())
	return nil
}

func init() {
	mappingsListCmd.Flags().String("category", "both", "categories to list: book, movie, or both")
	mappingsListCmd.Flags().Bool("json", false, "output mappings as JSON")
	mappingsStatsCmd.Flags().String("category", "both", "categories to count: book, movie, or both")

	mappingsCmd.AddCommand(mappingsListCmd)
	mappingsCmd.AddCommand(mappingsStatsCmd)
	rootCmd.AddCommand(mappingsCmd)
}
