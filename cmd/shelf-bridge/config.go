// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/shelf-bridge/internal/httputil"
	"github.com/pdiddy/shelf-bridge/internal/search"
	"github.com/pdiddy/shelf-bridge/internal/secrets"
	"github.com/pdiddy/shelf-bridge/pkg/types"
)

// defaultUserAgent is used when neither the config nor the secrets
// provide a browser-ua. Both destinations serve degraded pages to
// obvious bot user agents.
const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

func init() {
	viper.SetDefault("catalog.books_file", "catalog/douban_books_translated.json")
	viper.SetDefault("catalog.movies_file", "catalog/douban_movies_translated.json")
	viper.SetDefault("fetch.timeout", 30*time.Second)
	viper.SetDefault("fetch.throttle_interval", 1500*time.Millisecond)
	viper.SetDefault("fetch.max_retries", 3)
	viper.SetDefault("match.accept_threshold", 0.72)
	viper.SetDefault("match.ambiguity_margin", 0.05)
	viper.SetDefault("match.rank_epsilon", 0.01)
	viper.SetDefault("match.title_weight", 0.7)
	viper.SetDefault("store.mappings_dir", "mappings")
	viper.SetDefault("store.review_dir", "review")
	viper.SetDefault("store.index_dir", filepath.Join("mappings", "index"))
	viper.SetDefault("publish.queue_dir", "publish")
}

// pipelineConfig builds the validated stage configuration from viper
// (defaults, config file, SHELF_BRIDGE_* environment).
func pipelineConfig() (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing configuration: %w", err)
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = secrets.Get(loadedSecrets, secrets.BrowserUA)
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = defaultUserAgent
	}
	if cfg.Fetch.AcceptLanguage == "" {
		cfg.Fetch.AcceptLanguage = secrets.Get(loadedSecrets, secrets.AcceptLanguage)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// backendFor builds the search backend for one category, sharing the
// throttle so book and movie runs in one process keep the global
// request spacing.
func backendFor(category types.Category, cfg types.FetchConfig, throttle *httputil.Throttle) search.Backend {
	client := &http.Client{Timeout: cfg.Timeout}
	headers := search.Headers{
		UserAgent:      cfg.UserAgent,
		AcceptLanguage: cfg.AcceptLanguage,
	}

	switch category {
	case types.CategoryMovie:
		headers.Cookie = secrets.Get(loadedSecrets, secrets.IMDbCookie)
		return &search.IMDbBackend{Client: client, Throttle: throttle, Headers: headers, Cfg: cfg}
	default:
		headers.Cookie = secrets.Get(loadedSecrets, secrets.GoodreadsCookie)
		return &search.GoodreadsBackend{Client: client, Throttle: throttle, Headers: headers, Cfg: cfg}
	}
}

// catalogFile returns the translated corpus path for a category.
func catalogFile(cfg types.CatalogConfig, category types.Category) string {
	if category == types.CategoryMovie {
		return cfg.MoviesFile
	}
	return cfg.BooksFile
}

// mappingFile returns the mapping file path for a category. The file
// names are fixed: the downstream publishing tooling looks for them.
func mappingFile(cfg types.StoreConfig, category types.Category) string {
	if category == types.CategoryMovie {
		return filepath.Join(cfg.MappingsDir, "imdb_targets.json")
	}
	return filepath.Join(cfg.MappingsDir, "goodreads_targets.json")
}

// reviewFile returns the review file path for a category.
func reviewFile(cfg types.StoreConfig, category types.Category) string {
	if category == types.CategoryMovie {
		return filepath.Join(cfg.ReviewDir, "movies.yaml")
	}
	return filepath.Join(cfg.ReviewDir, "books.yaml")
}

// queueFile returns the publish queue path for a category.
func queueFile(cfg types.PublishConfig, category types.Category) string {
	if category == types.CategoryMovie {
		return filepath.Join(cfg.QueueDir, "movies.yaml")
	}
	return filepath.Join(cfg.QueueDir, "books.yaml")
}

// categoriesFromFlag parses the --category flag value.
func categoriesFromFlag(value string) ([]types.Category, error) {
	switch value {
	case "book":
		return []types.Category{types.CategoryBook}, nil
	case "movie":
		return []types.Category{types.CategoryMovie}, nil
	case "both", "":
		return []types.Category{types.CategoryBook, types.CategoryMovie}, nil
	}
	return nil, fmt.Errorf("unknown category %q: use book, movie, or both", value)
}
