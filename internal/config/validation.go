package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

func validate(c *Config) error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	switch c.FetchMode {
	case "static", "auto", "browser":
	default:
		return fmt.Errorf("fetch mode must be static, auto or browser, got %q", c.FetchMode)
	}
	if c.BrowserPoolSize <= 0 || c.BrowserPoolSize > DefaultMaxBrowserPoolSize {
		return fmt.Errorf("browser pool size must be between 1 and %d", DefaultMaxBrowserPoolSize)
	}
	if c.CacheMaxSizeBytes <= 0 {
		return fmt.Errorf("cache max size must be > 0")
	}
	if c.MaxRetries < 1 || c.ClassifierAttempts < 1 {
		return fmt.Errorf("retry attempts must be >= 1")
	}
	if c.SnippetBatchSize <= 0 || c.SnippetChunkSize <= 0 {
		return fmt.Errorf("snippet batch and chunk size must be > 0")
	}
	if c.SearchPageSize <= 0 || c.SearchPageSize > 50 {
		return fmt.Errorf("search page size must be between 1 and 50")
	}
	if c.CrawlConcurrency < 0 {
		return fmt.Errorf("crawl concurrency must be >= 0")
	}
	if c.ResultsPath == "" {
		return fmt.Errorf("results path must be set")
	}
	return nil
}
