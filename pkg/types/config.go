// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests. The
	// destination platforms reject default Go user agents, so this is a
	// browser-style string by default.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// AcceptLanguage is the Accept-Language header value.
	AcceptLanguage string `json:"accept_language" yaml:"accept_language" mapstructure:"accept_language"`
}

// FetchConfig holds settings for the rate-limited fetcher.
type FetchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// ThrottleInterval is the minimum spacing between consecutive outbound
	// search requests, measured from the end of one request to the start
	// of the next (default 1.5s). The throttle is process-wide.
	ThrottleInterval time.Duration `json:"throttle_interval" yaml:"throttle_interval" mapstructure:"throttle_interval"`

	// MaxRetries is the number of retry attempts for transient failures
	// (network errors, HTTP 5xx, rate-limit responses). Default 3.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// Validate checks the fetch settings that would otherwise fail mid-run.
func (c FetchConfig) Validate() error {
	if c.ThrottleInterval < 0 {
		return fmt.Errorf("throttle_interval must not be negative, got %s", c.ThrottleInterval)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	}
	return nil
}

// MatchConfig holds the matcher's policy constants. The acceptance and
// ambiguity thresholds are empirical; they are configuration rather than
// code so they can be tuned against how often destination search returns
// summary or review pages instead of canonical entries.
type MatchConfig struct {
	// AcceptThreshold is the minimum combined score for a match (default 0.72).
	AcceptThreshold float64 `json:"accept_threshold" yaml:"accept_threshold" mapstructure:"accept_threshold"`

	// AmbiguityMargin: when a second distinct candidate scores within this
	// margin of the top candidate and above the acceptance threshold, the
	// item is ambiguous and left for human adjudication (default 0.05).
	AmbiguityMargin float64 `json:"ambiguity_margin" yaml:"ambiguity_margin" mapstructure:"ambiguity_margin"`

	// RankEpsilon: candidates whose scores differ by no more than this are
	// treated as tied and ordered by the destination's own result rank
	// (default 0.01).
	RankEpsilon float64 `json:"rank_epsilon" yaml:"rank_epsilon" mapstructure:"rank_epsilon"`

	// TitleWeight is the title's share of the combined score; the creator
	// gets the remainder. Titles weigh more because creator names
	// frequently transliterate inexactly (default 0.7).
	TitleWeight float64 `json:"title_weight" yaml:"title_weight" mapstructure:"title_weight"`
}

// Validate checks that the matcher constants are usable.
func (c MatchConfig) Validate() error {
	if c.AcceptThreshold <= 0 || c.AcceptThreshold > 1 {
		return fmt.Errorf("accept_threshold must be in (0, 1], got %g", c.AcceptThreshold)
	}
	if c.AmbiguityMargin < 0 || c.AmbiguityMargin >= 1 {
		return fmt.Errorf("ambiguity_margin must be in [0, 1), got %g", c.AmbiguityMargin)
	}
	if c.RankEpsilon < 0 || c.RankEpsilon > c.AmbiguityMargin {
		return fmt.Errorf("rank_epsilon must be in [0, ambiguity_margin], got %g", c.RankEpsilon)
	}
	if c.TitleWeight <= 0 || c.TitleWeight > 1 {
		return fmt.Errorf("title_weight must be in (0, 1], got %g", c.TitleWeight)
	}
	return nil
}

// CatalogConfig locates the translated corpus files.
type CatalogConfig struct {
	// BooksFile is the translated book corpus (JSON).
	BooksFile string `json:"books_file" yaml:"books_file" mapstructure:"books_file"`

	// MoviesFile is the translated movie corpus (JSON).
	MoviesFile string `json:"movies_file" yaml:"movies_file" mapstructure:"movies_file"`
}

// StoreConfig holds settings for the mapping store.
type StoreConfig struct {
	// MappingsDir holds the per-category mapping files consumed by the
	// publishing stage.
	MappingsDir string `json:"mappings_dir" yaml:"mappings_dir" mapstructure:"mappings_dir"`

	// ReviewDir holds the per-category review files listing ambiguous and
	// unresolved items.
	ReviewDir string `json:"review_dir" yaml:"review_dir" mapstructure:"review_dir"`

	// IndexDir holds the resolution log database.
	IndexDir string `json:"index_dir" yaml:"index_dir" mapstructure:"index_dir"`
}

// PublishConfig holds settings for publish-queue preparation.
type PublishConfig struct {
	// QueueDir holds the per-category publish queue files.
	QueueDir string `json:"queue_dir" yaml:"queue_dir" mapstructure:"queue_dir"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Catalog CatalogConfig `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
	Fetch   FetchConfig   `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
	Match   MatchConfig   `json:"match" yaml:"match" mapstructure:"match"`
	Store   StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`
	Publish PublishConfig `json:"publish" yaml:"publish" mapstructure:"publish"`
}

// Validate checks every stage's settings. It runs at startup, before any
// network activity.
func (c PipelineConfig) Validate() error {
	if err := c.Fetch.Validate(); err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	if err := c.Match.Validate(); err != nil {
		return fmt.Errorf("match: %w", err)
	}
	return nil
}
