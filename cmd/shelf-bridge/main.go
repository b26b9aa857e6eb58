// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the shelf-bridge CLI.
// Implements: prd001-resolution, prd002-mapping-store, prd005-catalog,
//             prd006-publish (CLI surface).
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/shelf-bridge/internal/resolve"
	"github.com/pdiddy/shelf-bridge/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds session credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the shelf-bridge CLI.
var rootCmd = &cobra.Command{
	Use:   "shelf-bridge",
	Short: "Resolve a translated catalog against Goodreads and IMDb",
	Long: `shelf-bridge takes a translated book/movie catalog and resolves each
item to its record on the destination platform: books against Goodreads,
movies against IMDb. Confirmed pairings are persisted as mapping files
the publishing stage consumes.

Each pipeline stage is a subcommand: resolve, mappings, review, and
publish-queue.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env feeds the same variables the browser tooling uses
		// (GOODREADS_COOKIE, IMDB_COOKIE, BROWSER_UA). Absence is fine.
		_ = godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./shelf-bridge.yaml or ~/.config/shelf-bridge/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("shelf-bridge")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "shelf-bridge"))
		}
	}

	viper.SetEnvPrefix("SHELF_BRIDGE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// A partial run is still a completed run; scripts distinguish it
		// from a hard failure by exit code.
		if errors.Is(err, resolve.ErrPartial) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
