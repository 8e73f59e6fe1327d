package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is the config file looked up in the working
// directory when no path is given.
const DefaultFileName = ".feedscroll.toml"

// Config represents the application configuration
type Config struct {
	Version int          `toml:"version"`
	Paging  PagingConfig `toml:"paging"`
	Feed    FeedConfig   `toml:"feed"`
	LogFile string       `toml:"log_file"`
}

// PagingConfig tunes the paging controller.
type PagingConfig struct {
	// NextItemsThreshold is how many trailing items may remain unseen
	// before the next page is prefetched.
	NextItemsThreshold int `toml:"next_items_threshold"`
	// PreviousItemsThreshold is the same for backward pagination.
	PreviousItemsThreshold int `toml:"previous_items_threshold"`
	// StartPage is the page the session opens on. Anything above 0
	// makes the feed bidirectional.
	StartPage int `toml:"start_page"`
}

// FeedConfig tunes the simulated feed backend.
type FeedConfig struct {
	PageSize   int `toml:"page_size"`
	TotalPages int `toml:"total_pages"`
	// LatencyMS is the simulated fetch latency per page.
	LatencyMS int `toml:"latency_ms"`
	// FailEveryN injects a failure on every Nth fetch; 0 disables.
	FailEveryN int `toml:"fail_every_n"`
	// CacheSize is the number of pages kept in the LRU page cache.
	CacheSize int `toml:"cache_size"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Paging: PagingConfig{
			NextItemsThreshold:     30,
			PreviousItemsThreshold: 5,
			StartPage:              0,
		},
		Feed: FeedConfig{
			PageSize:   25,
			TotalPages: 40,
			LatencyMS:  350,
			FailEveryN: 0,
			CacheSize:  64,
		},
		LogFile: "feedscroll.log",
	}
}

// Load reads the configuration from path. A missing file is not an
// error: the defaults are returned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path.
func Save(cfg *Config, path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for values the services cannot
// work with.
func (c *Config) Validate() error {
	if c.Paging.NextItemsThreshold < 0 {
		return fmt.Errorf("invalid config: next_items_threshold must be >= 0, got %d", c.Paging.NextItemsThreshold)
	}
	if c.Paging.PreviousItemsThreshold < 0 {
		return fmt.Errorf("invalid config: previous_items_threshold must be >= 0, got %d", c.Paging.PreviousItemsThreshold)
	}
	if c.Feed.PageSize <= 0 {
		return fmt.Errorf("invalid config: page_size must be > 0, got %d", c.Feed.PageSize)
	}
	if c.Feed.TotalPages <= 0 {
		return fmt.Errorf("invalid config: total_pages must be > 0, got %d", c.Feed.TotalPages)
	}
	if c.Paging.StartPage < 0 || c.Paging.StartPage >= c.Feed.TotalPages {
		return fmt.Errorf("invalid config: start_page must be within [0, %d), got %d", c.Feed.TotalPages, c.Paging.StartPage)
	}
	if c.Feed.LatencyMS < 0 {
		return fmt.Errorf("invalid config: latency_ms must be >= 0, got %d", c.Feed.LatencyMS)
	}
	if c.Feed.FailEveryN < 0 {
		return fmt.Errorf("invalid config: fail_every_n must be >= 0, got %d", c.Feed.FailEveryN)
	}
	if c.Feed.CacheSize <= 0 {
		return fmt.Errorf("invalid config: cache_size must be > 0, got %d", c.Feed.CacheSize)
	}
	return nil
}
