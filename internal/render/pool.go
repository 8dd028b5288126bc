// internal/render/pool.go
package render

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

var ErrPoolClosed = errors.New("browser pool is closed")

// Pool keeps a fixed number of warm Chrome tabs shared by all crawls.
type Pool struct {
	size        int
	tabs        chan *Tab
	allocCancel context.CancelFunc
	mu          sync.Mutex
	closed      bool
}

// Tab is one browser context owned by the pool.
type Tab struct {
	Ctx    context.Context
	Cancel context.CancelFunc
}

// PoolOptions configures the browser pool
type PoolOptions struct {
	Size       int
	Headless   bool
	UserAgent  string
	Proxy      string
	ChromePath string
}

// NewPool starts Chrome and warms Size tabs.
func NewPool(opts PoolOptions) (*Pool, error) {
	if opts.Size <= 0 {
		opts.Size = 2
	}
	if opts.Size > 8 {
		opts.Size = 8
	}

	chromePath := opts.ChromePath
	if chromePath == "" {
		chromePath = FindChrome()
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.Flag("window-size", "1366,900"),
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if chromePath != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(chromePath)}, allocOpts...)
	}
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	pool := &Pool{
		size:        opts.Size,
		tabs:        make(chan *Tab, opts.Size),
		allocCancel: allocCancel,
	}

	for i := 0; i < opts.Size; i++ {
		tabCtx, tabCancel := chromedp.NewContext(allocCtx)
		if err := chromedp.Run(tabCtx, chromedp.Navigate("about:blank")); err != nil {
			tabCancel()
			pool.Close()
			return nil, fmt.Errorf("failed to warm up browser tab %d: %w", i, err)
		}
		pool.tabs <- &Tab{Ctx: tabCtx, Cancel: tabCancel}
	}

	log.Debug().Int("pool_size", opts.Size).Str("chrome", chromePath).Msg("Browser pool ready")
	return pool, nil
}

// Acquire takes a tab from the pool, blocking until one is free or ctx is done.
func (p *Pool) Acquire(ctx context.Context) (*Tab, error) {
	select {
	case tab, ok := <-p.tabs:
		if !ok {
			return nil, ErrPoolClosed
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed {
			tab.Cancel()
			return nil, ErrPoolClosed
		}
		return tab, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for browser tab: %w", ctx.Err())
	}
}

// Release resets a tab and returns it to the pool.
func (p *Pool) Release(tab *Tab) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		tab.Cancel()
		return
	}
	p.mu.Unlock()

	_ = chromedp.Run(tab.Ctx, chromedp.Navigate("about:blank"))

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		tab.Cancel()
		return
	}
	select {
	case p.tabs <- tab:
	default:
		tab.Cancel()
		log.Warn().Msg("Browser pool full, discarding tab")
	}
}

// Close shuts down all tabs and the browser process.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	close(p.tabs)
	for tab := range p.tabs {
		tab.Cancel()
	}
	p.allocCancel()

	log.Debug().Msg("Browser pool closed")
	return nil
}

// Size returns the pool size
func (p *Pool) Size() int {
	return p.size
}

// Available returns the number of idle tabs.
func (p *Pool) Available() int {
	return len(p.tabs)
}
