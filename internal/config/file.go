package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the YAML configuration file. Zero values leave the current setting untouched.
type File struct {
	LogLevel  string        `yaml:"log_level"`
	UserAgent string        `yaml:"user_agent"`
	Headers   []string      `yaml:"headers"`
	Proxy     string        `yaml:"proxy"`
	Timeout   time.Duration `yaml:"timeout"`

	Fetch struct {
		Mode       string  `yaml:"mode"`
		RPS        float64 `yaml:"rps"`
		Burst      int     `yaml:"burst"`
		MaxRetries int     `yaml:"max_retries"`
	} `yaml:"fetch"`

	Browser struct {
		PoolSize   int           `yaml:"pool_size"`
		Headless   *bool         `yaml:"headless"`
		ChromePath string        `yaml:"chrome_path"`
		Timeout    time.Duration `yaml:"timeout"`
		Settle     time.Duration `yaml:"settle"`
	} `yaml:"browser"`

	Cache struct {
		TTL          time.Duration `yaml:"ttl"`
		MaxSizeBytes int64         `yaml:"max_size_bytes"`
	} `yaml:"cache"`

	LLM struct {
		Model              string        `yaml:"model"`
		BaseURL            string        `yaml:"base_url"`
		RPS                float64       `yaml:"rps"`
		CachePath          string        `yaml:"cache_path"`
		ClassifierAttempts int           `yaml:"classifier_attempts"`
		ClassifierBackoff  time.Duration `yaml:"classifier_backoff"`
		BatchSize          int           `yaml:"batch_size"`
		ChunkSize          int           `yaml:"chunk_size"`
	} `yaml:"llm"`

	Search struct {
		RPM        int      `yaml:"rpm"`
		PageSize   int      `yaml:"page_size"`
		MaxResults int      `yaml:"max_results"`
		Blacklist  string   `yaml:"blacklist"`
		Terms      []string `yaml:"terms"`
	} `yaml:"search"`

	Results struct {
		Path        string `yaml:"path"`
		Concurrency int    `yaml:"concurrency"`
	} `yaml:"results"`
}

// LoadFile reads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Apply copies every set value onto cfg.
func (f *File) Apply(cfg *Config) {
	setString(&cfg.LogLevel, f.LogLevel)
	setString(&cfg.UserAgent, f.UserAgent)
	setString(&cfg.Proxy, f.Proxy)
	if len(f.Headers) > 0 {
		cfg.Headers = f.Headers
	}
	setPositive(&cfg.HTTPTimeout, f.Timeout)

	setString(&cfg.FetchMode, f.Fetch.Mode)
	setPositive(&cfg.FetchRateLimitRPS, f.Fetch.RPS)
	setPositive(&cfg.FetchRateLimitBurst, f.Fetch.Burst)
	setPositive(&cfg.MaxRetries, f.Fetch.MaxRetries)

	setPositive(&cfg.BrowserPoolSize, f.Browser.PoolSize)
	if f.Browser.Headless != nil {
		cfg.BrowserHeadless = *f.Browser.Headless
	}
	setString(&cfg.ChromePath, f.Browser.ChromePath)
	setPositive(&cfg.RenderTimeout, f.Browser.Timeout)
	setPositive(&cfg.RenderSettle, f.Browser.Settle)

	setPositive(&cfg.CacheTTL, f.Cache.TTL)
	setPositive(&cfg.CacheMaxSizeBytes, f.Cache.MaxSizeBytes)

	setString(&cfg.OpenAIModel, f.LLM.Model)
	setString(&cfg.OpenAIBaseURL, f.LLM.BaseURL)
	setPositive(&cfg.LLMRateLimitRPS, f.LLM.RPS)
	setString(&cfg.LLMCachePath, f.LLM.CachePath)
	setPositive(&cfg.ClassifierAttempts, f.LLM.ClassifierAttempts)
	setPositive(&cfg.ClassifierBackoff, f.LLM.ClassifierBackoff)
	setPositive(&cfg.SnippetBatchSize, f.LLM.BatchSize)
	setPositive(&cfg.SnippetChunkSize, f.LLM.ChunkSize)

	setPositive(&cfg.SearchRPM, f.Search.RPM)
	setPositive(&cfg.SearchPageSize, f.Search.PageSize)
	setPositive(&cfg.SearchMaxResults, f.Search.MaxResults)
	setString(&cfg.BlacklistPath, f.Search.Blacklist)
	if len(f.Search.Terms) > 0 {
		cfg.Terms = f.Search.Terms
	}

	setString(&cfg.ResultsPath, f.Results.Path)
	setPositive(&cfg.CrawlConcurrency, f.Results.Concurrency)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setPositive[T int | int64 | float64 | time.Duration](dst *T, v T) {
	if v > 0 {
		*dst = v
	}
}
