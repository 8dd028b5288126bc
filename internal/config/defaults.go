package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default constants for application configuration
const (
	DefaultLogLevel            = "error"
	DefaultJSONLog             = false
	DefaultUserAgent           = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"
	DefaultHTTPTimeout         = 30 * time.Second
	DefaultFetchMode           = "auto"
	DefaultFetchRateLimitRPS   = 2.0
	DefaultFetchRateLimitBurst = 4
	DefaultMaxRetries          = 3
	DefaultBrowserPoolSize     = 2
	DefaultMaxBrowserPoolSize  = 10
	DefaultBrowserHeadless     = true
	DefaultRenderTimeout       = 30 * time.Second
	DefaultRenderSettle        = 500 * time.Millisecond
	DefaultCacheTTL            = 10 * time.Minute
	DefaultCacheMaxSizeBytes   = 64 * 1024 * 1024 // 64MB
	DefaultOpenAIModel         = "gpt-4o-mini"
	DefaultLLMRateLimitRPS     = 0.0
	DefaultClassifierAttempts  = 5
	DefaultClassifierBackoff   = 2 * time.Second
	DefaultSnippetBatchSize    = 100
	DefaultSnippetChunkSize    = 5000
	DefaultSearchRPM           = 3
	DefaultSearchPageSize      = 50
	DefaultSearchMaxResults    = 1000
	DefaultCrawlConcurrency    = 8
	DefaultConfigFile          = "config.yaml"
	DefaultEnvFile             = ".env"
)

// DefaultConfigPath is where the config file is looked up when --config is not given.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "contractors", DefaultConfigFile)
}

// DefaultResultsPath is the CSV file holding stored contractors.
func DefaultResultsPath() string {
	return filepath.Join(xdg.DataHome, "contractors", "results.csv")
}

// DefaultLLMCachePath is the SQLite database caching model answers.
func DefaultLLMCachePath() string {
	return filepath.Join(xdg.CacheHome, "contractors", "llm.db")
}

// DefaultBlacklistPath is the list of URL fragments excluded from search results.
func DefaultBlacklistPath() string {
	return filepath.Join(xdg.ConfigHome, "contractors", "blacklist.txt")
}
