package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool
	Quiet    bool

	// HTTP/Fetching
	HTTPTimeout         time.Duration
	UserAgent           string
	Headers             []string
	Proxy               string
	FetchMode           string
	FetchRateLimitRPS   float64
	FetchRateLimitBurst int
	MaxRetries          int

	// Browser Pool
	BrowserPoolSize int
	BrowserHeadless bool
	ChromePath      string
	RenderTimeout   time.Duration
	RenderSettle    time.Duration

	// Caching
	CacheTTL          time.Duration
	CacheMaxSizeBytes int64

	// Language model
	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAIBaseURL      string
	LLMRateLimitRPS    float64
	LLMCachePath       string
	ClassifierAttempts int
	ClassifierBackoff  time.Duration
	SnippetBatchSize   int
	SnippetChunkSize   int

	// Search
	BingAPIKey       string
	SearchRPM        int
	SearchPageSize   int
	SearchMaxResults int
	BlacklistPath    string
	Terms            []string

	// Results
	ResultsPath      string
	CrawlConcurrency int

	// ConfigFile is the YAML file that was applied, if any.
	ConfigFile string
}

// Defaults returns a Config with every default applied.
func Defaults() *Config {
	return &Config{
		LogLevel:            DefaultLogLevel,
		JSONLog:             DefaultJSONLog,
		HTTPTimeout:         DefaultHTTPTimeout,
		UserAgent:           DefaultUserAgent,
		FetchMode:           DefaultFetchMode,
		FetchRateLimitRPS:   DefaultFetchRateLimitRPS,
		FetchRateLimitBurst: DefaultFetchRateLimitBurst,
		MaxRetries:          DefaultMaxRetries,
		BrowserPoolSize:     DefaultBrowserPoolSize,
		BrowserHeadless:     DefaultBrowserHeadless,
		RenderTimeout:       DefaultRenderTimeout,
		RenderSettle:        DefaultRenderSettle,
		CacheTTL:            DefaultCacheTTL,
		CacheMaxSizeBytes:   DefaultCacheMaxSizeBytes,
		OpenAIModel:         DefaultOpenAIModel,
		LLMRateLimitRPS:     DefaultLLMRateLimitRPS,
		LLMCachePath:        DefaultLLMCachePath(),
		ClassifierAttempts:  DefaultClassifierAttempts,
		ClassifierBackoff:   DefaultClassifierBackoff,
		SnippetBatchSize:    DefaultSnippetBatchSize,
		SnippetChunkSize:    DefaultSnippetChunkSize,
		SearchRPM:           DefaultSearchRPM,
		SearchPageSize:      DefaultSearchPageSize,
		SearchMaxResults:    DefaultSearchMaxResults,
		BlacklistPath:       DefaultBlacklistPath(),
		ResultsPath:         DefaultResultsPath(),
		CrawlConcurrency:    DefaultCrawlConcurrency,
	}
}

// Load builds a Config by combining defaults, an optional config file, a .env
// file, environment variables, and CLI flags, in that order of precedence.
// Caller should pass the executing *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Defaults()

	explicit := flagString(cmd, "config")
	path := explicit
	if path == "" {
		path = DefaultConfigPath()
	}
	file, err := LoadFile(path)
	switch {
	case err == nil:
		file.Apply(cfg)
		cfg.ConfigFile = path
	case errors.Is(err, ErrConfigNotFound) && explicit == "":
	default:
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	envFile := flagString(cmd, "env-file")
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("env file %s: %w", envFile, err)
	}

	applyEnv(cfg)
	if cmd != nil {
		applyFlags(cmd, cfg)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CONTRACTORS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CONTRACTORS_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("CONTRACTORS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CONTRACTORS_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("CONTRACTORS_FETCH_MODE"); v != "" {
		cfg.FetchMode = v
	}
	if v := os.Getenv("CONTRACTORS_MODEL"); v != "" {
		cfg.OpenAIModel = v
	}
	if v := os.Getenv("CONTRACTORS_RESULTS"); v != "" {
		cfg.ResultsPath = v
	}
	if v := os.Getenv("CONTRACTORS_BLACKLIST"); v != "" {
		cfg.BlacklistPath = v
	}
	if v := os.Getenv("CONTRACTORS_LLM_CACHE"); v != "" {
		cfg.LLMCachePath = v
	}
	if v := os.Getenv("CONTRACTORS_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CrawlConcurrency = n
		}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIAPIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAIBaseURL = v
	}
	if v := os.Getenv("BING_SEARCH_V7_SUBSCRIPTION_KEY"); v != "" {
		cfg.BingAPIKey = v
	}
}

func applyFlags(cmd *cobra.Command, cfg *Config) {
	flags := cmd.Flags()

	if changed(cmd, "verbose") {
		if v, err := flags.GetBool("verbose"); err == nil && v {
			cfg.LogLevel = "debug"
		}
	}
	if changed(cmd, "quiet") {
		cfg.Quiet, _ = flags.GetBool("quiet")
	}
	if changed(cmd, "json") {
		cfg.JSONLog, _ = flags.GetBool("json")
	}
	if changed(cmd, "timeout") {
		if d, err := flags.GetDuration("timeout"); err == nil {
			cfg.HTTPTimeout = d
		}
	}
	if changed(cmd, "user-agent") {
		cfg.UserAgent = flagString(cmd, "user-agent")
	}
	if changed(cmd, "proxy") {
		cfg.Proxy = flagString(cmd, "proxy")
	}
	if changed(cmd, "header") {
		cfg.Headers, _ = flags.GetStringArray("header")
	}
	if changed(cmd, "mode") {
		cfg.FetchMode = flagString(cmd, "mode")
	}
	if changed(cmd, "model") {
		cfg.OpenAIModel = flagString(cmd, "model")
	}
	if changed(cmd, "results") {
		cfg.ResultsPath = flagString(cmd, "results")
	}
	if changed(cmd, "blacklist") {
		cfg.BlacklistPath = flagString(cmd, "blacklist")
	}
	if changed(cmd, "concurrency") {
		cfg.CrawlConcurrency, _ = flags.GetInt("concurrency")
	}
	if changed(cmd, "chrome-path") {
		cfg.ChromePath = flagString(cmd, "chrome-path")
	}
	if changed(cmd, "no-headless") {
		if v, _ := flags.GetBool("no-headless"); v {
			cfg.BrowserHeadless = false
		}
	}
}

func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

func flagString(cmd *cobra.Command, name string) string {
	if cmd == nil {
		return ""
	}
	if f := cmd.Flags().Lookup(name); f != nil {
		return strings.TrimSpace(f.Value.String())
	}
	return ""
}
