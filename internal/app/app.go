// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/law-makers/contractors/internal/cache"
	"github.com/law-makers/contractors/internal/config"
	"github.com/law-makers/contractors/internal/crawler"
	"github.com/law-makers/contractors/internal/credentials"
	"github.com/law-makers/contractors/internal/fetch"
	"github.com/law-makers/contractors/internal/llm"
	"github.com/law-makers/contractors/internal/oracle"
	"github.com/law-makers/contractors/internal/proxy"
	"github.com/law-makers/contractors/internal/ratelimit"
	"github.com/law-makers/contractors/internal/render"
	"github.com/law-makers/contractors/internal/results"
	"github.com/law-makers/contractors/internal/retry"
	"github.com/law-makers/contractors/internal/scraper"
	"github.com/law-makers/contractors/internal/search"
	"github.com/law-makers/contractors/internal/sitemap"
	"github.com/law-makers/contractors/internal/snippet"
	"github.com/law-makers/contractors/internal/store"
	"github.com/law-makers/contractors/internal/utils/headers"
	"github.com/law-makers/contractors/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	Cache       cache.Cache
	RateLimiter ratelimit.RateLimiter
	HTTPClient  *http.Client
	Proxies     *proxy.Pool
	Credentials *credentials.Store

	BrowserPool *render.Pool
	renderer    *render.Renderer
	poolMu      sync.Mutex

	Fetcher  *fetch.Fetcher
	LLM      *llm.Client
	llmCache *llm.Cache
	SiteMap  *sitemap.Extractor
	Scrapers scraper.Set
	Crawler  *crawler.Crawler
	Store    *store.CSVStore

	startTime time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Creates the page cache, per-host rate limiter and HTTP client
//   - Creates the fetcher, with a browser renderer started on first use
//   - Creates the language model client with its response cache
//   - Wires the oracles, scrapers, site map extractor and crawler
//
// The browser pool is not started here.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := NewLogger(cfg)
	log.Logger = logger

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Str("config_file", cfg.ConfigFile).
		Msg("Logger initialized")

	extraHeaders, err := headers.ParseHeaders(cfg.Headers)
	if err != nil {
		return nil, err
	}

	memCache := cache.NewMemoryCache(cfg.CacheMaxSizeBytes)
	logger.Debug().
		Int64("max_size_bytes", cfg.CacheMaxSizeBytes).
		Msg("Memory cache initialized")

	rateLimiter := ratelimit.NewDomainLimiter(cfg.FetchRateLimitRPS, cfg.FetchRateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.FetchRateLimitRPS).
		Int("burst", cfg.FetchRateLimitBurst).
		Msg("Rate limiter initialized")

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DisableKeepAlives:   false,
	}
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout, Transport: transport}

	var proxies *proxy.Pool
	if list := proxy.ParseList(cfg.Proxy); len(list) > 0 {
		proxies, err = proxy.NewPool(list)
		if err != nil {
			return nil, err
		}
		httpClient.Transport = proxies.Transport(transport)
	}
	logger.Debug().
		Dur("timeout", cfg.HTTPTimeout).
		Int("proxies", proxyCount(proxies)).
		Msg("HTTP client initialized")

	app := &Application{
		Config:      cfg,
		Logger:      &logger,
		Cache:       memCache,
		RateLimiter: rateLimiter,
		HTTPClient:  httpClient,
		Proxies:     proxies,
		Credentials: credentials.NewStore(""),
		Store:       store.NewCSV(cfg.ResultsPath),
		startTime:   time.Now(),
	}

	var renderer fetch.Renderer
	if cfg.FetchMode != string(fetch.ModeStatic) {
		renderer = lazyRenderer{app: app}
	}
	fetchRetry := retry.DefaultConfig()
	fetchRetry.MaxAttempts = cfg.MaxRetries
	app.Fetcher = fetch.New(httpClient, rateLimiter, memCache, renderer, fetch.Options{
		UserAgent: cfg.UserAgent,
		Headers:   extraHeaders,
		Retry:     fetchRetry,
		CacheTTL:  cfg.CacheTTL,
		Mode:      fetch.Mode(cfg.FetchMode),
	})

	app.LLM = app.newLLM()

	snippetOpts := snippet.Options{
		BatchSize: cfg.SnippetBatchSize,
		ChunkSize: cfg.SnippetChunkSize,
		Retry:     snippet.RateLimitRetry(cfg.ClassifierAttempts, cfg.ClassifierBackoff),
	}
	app.Scrapers = scraper.NewSet(
		oracle.NewAddress(app.LLM),
		oracle.NewPhone(app.LLM),
		oracle.NewEmail(app.LLM),
		snippetOpts,
	)
	app.SiteMap = sitemap.New(app.Fetcher, oracle.NewSiteMap(app.LLM))
	app.Crawler = crawler.New(app.Fetcher, app.SiteMap, app.Scrapers)
	logger.Debug().Msg("Crawler initialized")

	logger.Info().Msg("Application initialized successfully")
	return app, nil
}

// NewLogger builds the process logger: JSON on stderr or a console writer.
func NewLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.Quiet {
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	var logWriter io.Writer
	if cfg.JSONLog {
		logWriter = os.Stderr
	} else {
		logWriter = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) { w.Out = os.Stderr })
	}
	return zerolog.New(logWriter).With().Timestamp().Logger()
}

func (a *Application) newLLM() *llm.Client {
	cfg := a.Config
	key := cfg.OpenAIAPIKey
	if key == "" {
		key, _ = a.Credentials.Load(credentials.OpenAI)
	}
	provider := llm.NewOpenAI(key, &http.Client{Timeout: 2 * time.Minute}).
		WithModel(cfg.OpenAIModel).
		WithBaseURL(cfg.OpenAIBaseURL)
	if !provider.Available() {
		a.Logger.Warn().Msg("No OpenAI API key configured; run `contractors login openai` or set OPENAI_API_KEY")
	}

	opts := []llm.Option{llm.WithLimiter(ratelimit.PerSecond(cfg.LLMRateLimitRPS, 1))}
	if cfg.LLMCachePath != "" {
		c, err := llm.OpenCache(cfg.LLMCachePath)
		if err != nil {
			a.Logger.Warn().Err(err).Str("path", cfg.LLMCachePath).Msg("LLM cache unavailable, continuing without it")
		} else {
			a.llmCache = c
			opts = append(opts, llm.WithCache(c))
		}
	}
	return llm.NewClient(provider, opts...)
}

// NewAggregator loads stored results and returns an aggregator over them.
// onCrawled may be nil.
func (a *Application) NewAggregator(onCrawled func(*models.Contractor)) (*results.Aggregator, error) {
	agg := results.New(a.Store, a.Crawler, results.Options{
		Concurrency: a.Config.CrawlConcurrency,
		OnCrawled:   onCrawled,
	})
	if err := agg.Load(); err != nil {
		return nil, err
	}
	return agg, nil
}

// NewSearchHandler wires the search client and contractor classifier to onParse.
func (a *Application) NewSearchHandler(onParse func(context.Context, []*models.Contractor) error) (*search.Handler, error) {
	key := a.Config.BingAPIKey
	if key == "" {
		key, _ = a.Credentials.Load(credentials.Bing)
	}
	if key == "" {
		return nil, search.ErrNoSubscriptionKey
	}

	blacklist, err := search.LoadBlacklist(a.Config.BlacklistPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load blacklist: %w", err)
	}
	a.Logger.Debug().Int("entries", len(blacklist)).Str("path", a.Config.BlacklistPath).Msg("Blacklist loaded")

	client := search.NewBing(key, a.HTTPClient, ratelimit.PerMinute(a.Config.SearchRPM))
	return search.NewHandler(client, oracle.NewContractor(a.LLM), onParse, search.Options{
		PageSize:    a.Config.SearchPageSize,
		MaxResults:  a.Config.SearchMaxResults,
		Blacklist:   blacklist,
		Concurrency: a.Config.CrawlConcurrency,
	}), nil
}

// EnsureBrowserPool lazily creates the browser pool if it has not already been
// initialized. Callers should provide a context with an appropriate timeout.
func (a *Application) EnsureBrowserPool(ctx context.Context) error {
	if a == nil {
		return fmt.Errorf("application is nil")
	}

	a.poolMu.Lock()
	defer a.poolMu.Unlock()

	if a.BrowserPool != nil {
		return nil
	}

	logger := a.Logger
	logger.Debug().Msg("Initializing browser pool on demand")

	var browserProxy string
	if a.Proxies != nil {
		browserProxy = a.Proxies.Next()
	}
	pool, err := render.NewPool(render.PoolOptions{
		Size:       a.Config.BrowserPoolSize,
		Headless:   a.Config.BrowserHeadless,
		UserAgent:  a.Config.UserAgent,
		Proxy:      browserProxy,
		ChromePath: a.Config.ChromePath,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to create browser pool on demand")
		return err
	}

	a.BrowserPool = pool
	a.renderer = render.NewRenderer(pool, a.Config.RenderTimeout, a.Config.RenderSettle)

	logger.Info().Int("pool_size", pool.Size()).Msg("Browser pool initialized on demand")
	return nil
}

// lazyRenderer starts the browser pool the first time a page needs rendering.
type lazyRenderer struct {
	app *Application
}

func (r lazyRenderer) Render(ctx context.Context, url string) (string, int, error) {
	if err := r.app.EnsureBrowserPool(ctx); err != nil {
		return "", 0, retry.Permanent{Err: err}
	}
	return r.app.renderer.Render(ctx, url)
}

// Close gracefully shuts down the application and all its resources.
//
// It performs the following cleanup steps in order:
//   - Closes the browser pool
//   - Closes the page cache
//   - Closes the language model response cache
//   - Closes idle HTTP connections
//
// Any errors during shutdown are logged but do not prevent other shutdown steps.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Info().Msg("Shutting down application")

	a.poolMu.Lock()
	if a.BrowserPool != nil {
		if err := a.BrowserPool.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Error closing browser pool")
		}
		a.BrowserPool = nil
	}
	a.poolMu.Unlock()

	if a.Cache != nil {
		a.Cache.Close()
	}

	if a.llmCache != nil {
		if err := a.llmCache.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Error closing LLM cache")
		}
	}

	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}

	a.Logger.Info().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}

func proxyCount(p *proxy.Pool) int {
	if p == nil {
		return 0
	}
	return p.Len()
}
