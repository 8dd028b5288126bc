package render

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// Renderer loads pages in a pooled Chrome tab and returns the rendered markup.
type Renderer struct {
	pool    *Pool
	timeout time.Duration
	settle  time.Duration
}

// NewRenderer creates a Renderer. settle is how long to wait after load for
// client-side content to appear.
func NewRenderer(pool *Pool, timeout, settle time.Duration) *Renderer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Renderer{pool: pool, timeout: timeout, settle: settle}
}

// Render navigates to url and returns the document's outer HTML and the
// status of the main response.
func (r *Renderer) Render(ctx context.Context, url string) (string, int, error) {
	acquireCtx, cancelAcquire := context.WithTimeout(ctx, r.timeout)
	tab, err := r.pool.Acquire(acquireCtx)
	cancelAcquire()
	if err != nil {
		return "", 0, err
	}
	defer r.pool.Release(tab)

	runCtx, cancel := context.WithTimeout(tab.Ctx, r.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var (
		mu     sync.Mutex
		status int64
	)
	chromedp.ListenTarget(runCtx, func(ev interface{}) {
		if resp, ok := ev.(*network.EventResponseReceived); ok && resp.Type == network.ResourceTypeDocument {
			mu.Lock()
			if status == 0 {
				status = resp.Response.Status
			}
			mu.Unlock()
		}
	})

	start := time.Now()
	var html string
	err = chromedp.Run(runCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(r.settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", 0, err
	}

	mu.Lock()
	code := int(status)
	mu.Unlock()
	if code == 0 {
		code = 200
	}

	log.Debug().
		Str("url", url).
		Int("status", code).
		Dur("elapsed", time.Since(start)).
		Msg("Rendered page")

	return html, code, nil
}
