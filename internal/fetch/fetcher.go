// internal/fetch/fetcher.go
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/contractors/internal/cache"
	"github.com/law-makers/contractors/internal/ratelimit"
	"github.com/law-makers/contractors/internal/retry"
	"github.com/law-makers/contractors/pkg/models"
	"github.com/rs/zerolog/log"
)

// Mode selects how raw markup is obtained.
type Mode string

const (
	ModeStatic  Mode = "static"
	ModeAuto    Mode = "auto"
	ModeBrowser Mode = "browser"
)

// Renderer produces the markup of a page after client-side rendering.
type Renderer interface {
	Render(ctx context.Context, url string) (html string, status int, err error)
}

// Options configures a Fetcher.
type Options struct {
	UserAgent    string
	Headers      map[string]string
	Retry        retry.Config
	CacheTTL     time.Duration
	MaxBodyBytes int64
	Mode         Mode
}

// Fetcher downloads pages with browser-like headers and reduces them to a
// sanitized <body>.
type Fetcher struct {
	client   *http.Client
	limiter  ratelimit.RateLimiter
	cache    cache.Cache
	renderer Renderer
	opts     Options
}

// New creates a Fetcher. limiter, pageCache and renderer may be nil.
func New(client *http.Client, limiter ratelimit.RateLimiter, pageCache cache.Cache, renderer Renderer, opts Options) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 5 * 1024 * 1024
	}
	if opts.Mode == "" {
		opts.Mode = ModeStatic
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.DefaultConfig()
	}
	return &Fetcher{
		client:   client,
		limiter:  limiter,
		cache:    pageCache,
		renderer: renderer,
		opts:     opts,
	}
}

// Fetch retrieves url and returns its sanitized page. Every failure is a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*models.Page, error) {
	if f.cache != nil {
		if page, ok := f.cache.Get(url); ok {
			return page, nil
		}
	}

	start := time.Now()
	log.Debug().Str("url", url).Str("mode", string(f.opts.Mode)).Msg("Starting fetch")

	var (
		page *models.Page
		err  error
	)
	switch f.opts.Mode {
	case ModeBrowser:
		page, err = f.fetchRendered(ctx, url)
	case ModeAuto:
		page, err = f.fetchAuto(ctx, url)
	default:
		page, _, err = f.fetchStatic(ctx, url)
	}
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			return nil, fe
		}
		return nil, &FetchError{URL: url, Err: err}
	}

	page.FetchedAt = time.Now()
	page.ResponseTime = time.Since(start).Milliseconds()

	log.Debug().
		Str("url", url).
		Int("status", page.StatusCode).
		Bool("rendered", page.Rendered).
		Int64("response_time_ms", page.ResponseTime).
		Msg("Fetch completed")

	if f.cache != nil {
		_ = f.cache.Set(url, page, f.opts.CacheTTL)
	}
	return page, nil
}

// fetchStatic downloads and sanitizes a page, also returning the raw markup.
func (f *Fetcher) fetchStatic(ctx context.Context, url string) (*models.Page, string, error) {
	var (
		raw    string
		status int
	)
	err := retry.WithRetry(ctx, f.opts.Retry, func() error {
		var err error
		raw, status, err = f.get(ctx, url)
		return err
	})
	if err != nil {
		return nil, "", &FetchError{URL: url, StatusCode: status, Err: err}
	}

	sanitized, err := Sanitize(raw)
	if err != nil {
		return nil, raw, &FetchError{URL: url, StatusCode: status, Err: err}
	}
	return &models.Page{URL: url, StatusCode: status, HTML: sanitized}, raw, nil
}

func (f *Fetcher) fetchAuto(ctx context.Context, url string) (*models.Page, error) {
	page, raw, err := f.fetchStatic(ctx, url)
	if f.renderer == nil {
		return page, err
	}
	if err != nil && !errors.Is(err, ErrEmptyBody) {
		return nil, err
	}

	var text string
	if page != nil {
		if doc, derr := page.Document(); derr == nil {
			text = doc.Text()
		}
	}
	if page != nil && !NeedsJavaScript(raw, text) {
		return page, nil
	}

	log.Debug().
		Str("url", url).
		Str("framework", DetectFramework(raw)).
		Msg("Page looks client-rendered, switching to browser")

	rendered, rerr := f.fetchRendered(ctx, url)
	if rerr != nil {
		if page != nil {
			log.Debug().Err(rerr).Str("url", url).Msg("Browser render failed, using static markup")
			return page, nil
		}
		return nil, rerr
	}
	return rendered, nil
}

func (f *Fetcher) fetchRendered(ctx context.Context, url string) (*models.Page, error) {
	if f.renderer == nil {
		return nil, &FetchError{URL: url, Err: ErrNoRenderer}
	}

	var (
		raw    string
		status int
	)
	err := retry.WithRetry(ctx, f.opts.Retry, func() error {
		var err error
		raw, status, err = f.renderer.Render(ctx, url)
		if err == nil && status >= 400 {
			err = retry.NewHTTPError(status, http.StatusText(status), "")
		}
		return err
	})
	if err != nil {
		return nil, &FetchError{URL: url, StatusCode: status, Err: err}
	}

	sanitized, err := Sanitize(raw)
	if err != nil {
		return nil, &FetchError{URL: url, StatusCode: status, Err: err}
	}
	return &models.Page{URL: url, StatusCode: status, HTML: sanitized, Rendered: true}, nil
}

// get performs a single HTTP request.
func (f *Fetcher) get(ctx context.Context, url string) (string, int, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, url); err != nil {
			return "", 0, retry.Permanent{Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, retry.Permanent{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", resp.StatusCode, retry.NewHTTPError(resp.StatusCode, resp.Status, "")
	}

	if ct := resp.Header.Get("Content-Type"); !isMarkup(ct) {
		return "", resp.StatusCode, retry.Permanent{Err: fmt.Errorf("%w: %s", ErrUnsupportedType, ct)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to read body: %w", err)
	}
	return string(body), resp.StatusCode, nil
}

func (f *Fetcher) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Dnt", "1")
	req.Header.Set("Sec-Ch-Ua", `"Not=A?Brand";v="99", "Chromium";v="118"`)
	for key, value := range f.opts.Headers {
		req.Header.Set(key, value)
	}
}

// isMarkup rejects binary media while tolerating missing or odd content types.
func isMarkup(contentType string) bool {
	ct := strings.ToLower(contentType)
	for _, prefix := range []string{"image/", "video/", "audio/", "font/", "application/pdf", "application/zip", "application/octet-stream"} {
		if strings.HasPrefix(ct, prefix) {
			return false
		}
	}
	return true
}

// Text returns the visible text of a sanitized page.
func Text(page *models.Page) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}
