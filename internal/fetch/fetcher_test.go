// internal/fetch/fetcher_test.go
package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/law-makers/contractors/internal/cache"
	"github.com/law-makers/contractors/internal/retry"
)

const testUA = "Mozilla/5.0 (test)"

func newTestFetcher(c cache.Cache, r Renderer, mode Mode) *Fetcher {
	cfg := retry.DefaultConfig()
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 2 * time.Millisecond
	return New(&http.Client{Timeout: 5 * time.Second}, nil, c, r, Options{
		UserAgent: testUA,
		Headers:   map[string]string{"X-Trace": "1"},
		Retry:     cfg,
		Mode:      mode,
	})
}

func TestFetcher_Fetch_SanitizesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != testUA || r.Header.Get("X-Trace") != "1" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Acme</title><script>var x = 1;</script></head>
<body>
	<header><a href="tel:5551234567">Call</a></header>
	<script>track()</script>
	<p>We build <i>great</i> homes.</p>
	<form><input name="q"><button>Go</button></form>
	<img src="/logo.png">
</body>
</html>`))
	}))
	defer server.Close()

	page, err := newTestFetcher(nil, nil, ModeStatic).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if page.StatusCode != http.StatusOK {
		t.Errorf("Expected status code 200, got %d", page.StatusCode)
	}
	if !strings.HasPrefix(page.HTML, "<body") {
		t.Errorf("Expected page reduced to <body>, got %q", page.HTML)
	}
	for _, gone := range []string{"<script", "<img", "<form", "<i>", "<title"} {
		if strings.Contains(page.HTML, gone) {
			t.Errorf("Expected %s to be stripped, got %q", gone, page.HTML)
		}
	}
	if !strings.Contains(page.HTML, `href="tel:5551234567"`) {
		t.Error("Expected anchor attributes to survive sanitizing")
	}
}

func TestFetcher_Fetch_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`<html><body><p>ok</p></body></html>`))
	}))
	defer server.Close()

	if _, err := newTestFetcher(nil, nil, ModeStatic).Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("Expected 3 requests, got %d", got)
	}
}

func TestFetcher_Fetch_NotFoundIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := newTestFetcher(nil, nil, ModeStatic).Fetch(context.Background(), server.URL)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Expected *FetchError, got %v", err)
	}
	if fe.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", fe.StatusCode)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected 1 request, got %d", got)
	}
}

func TestFetcher_Fetch_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>x</title></head><body>  <script>app()</script> </body></html>`))
	}))
	defer server.Close()

	_, err := newTestFetcher(nil, nil, ModeStatic).Fetch(context.Background(), server.URL)
	if !errors.Is(err, ErrEmptyBody) {
		t.Fatalf("Expected ErrEmptyBody, got %v", err)
	}
}

func TestFetcher_Fetch_RejectsMedia(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	_, err := newTestFetcher(nil, nil, ModeStatic).Fetch(context.Background(), server.URL)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("Expected ErrUnsupportedType, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected 1 request, got %d", got)
	}
}

func TestFetcher_Fetch_UsesCache(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`<html><body><p>cached</p></body></html>`))
	}))
	defer server.Close()

	mc := cache.NewMemoryCache(0)
	defer mc.Close()
	f := newTestFetcher(mc, nil, ModeStatic)

	for i := 0; i < 3; i++ {
		if _, err := f.Fetch(context.Background(), server.URL); err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected 1 request with cache, got %d", got)
	}
}

type fakeRenderer struct {
	html  string
	calls int32
}

func (r *fakeRenderer) Render(ctx context.Context, url string) (string, int, error) {
	atomic.AddInt32(&r.calls, 1)
	return r.html, http.StatusOK, nil
}

func TestFetcher_Fetch_AutoRendersClientSideShell(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div id="root"></div><script src="/bundle.js"></script></body></html>`))
	}))
	defer server.Close()

	renderer := &fakeRenderer{html: `<html><body><footer>123 Main St, Springfield</footer></body></html>`}
	page, err := newTestFetcher(nil, renderer, ModeAuto).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !page.Rendered || !strings.Contains(page.HTML, "123 Main St") {
		t.Errorf("Expected rendered page, got %+v", page)
	}
	if renderer.calls != 1 {
		t.Errorf("Expected 1 render, got %d", renderer.calls)
	}
}

func TestFetcher_Fetch_AutoKeepsStaticContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>` + strings.Repeat("roofing siding decks ", 20) + `</p></body></html>`))
	}))
	defer server.Close()

	renderer := &fakeRenderer{}
	page, err := newTestFetcher(nil, renderer, ModeAuto).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if page.Rendered || renderer.calls != 0 {
		t.Error("Expected static page without rendering")
	}
}

func TestFetcher_Fetch_BrowserModeWithoutRenderer(t *testing.T) {
	_, err := newTestFetcher(nil, nil, ModeBrowser).Fetch(context.Background(), "http://example.invalid")
	if !errors.Is(err, ErrNoRenderer) {
		t.Fatalf("Expected ErrNoRenderer, got %v", err)
	}
}
