// Package crawler visits a contractor's homepage and its discovered secondary
// pages until every requested contact field is filled or no pages remain.
package crawler

import (
	"context"
	"sync"
	"time"

	"github.com/law-makers/contractors/internal/reqctx"
	"github.com/law-makers/contractors/internal/scraper"
	"github.com/law-makers/contractors/pkg/models"
)

// State is the phase of a single crawl.
type State int

const (
	StateInit State = iota
	StateDiscovering
	StateCrawling
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateDiscovering:
		return "discovering_sitemap"
	case StateCrawling:
		return "crawling"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// PageFetcher retrieves sanitized pages.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*models.Page, error)
}

// Discoverer finds the secondary pages of a site.
type Discoverer interface {
	Discover(ctx context.Context, homepage string) (models.SiteMap, error)
}

// Crawler fills contractor contact fields from their websites.
type Crawler struct {
	fetcher    PageFetcher
	discoverer Discoverer
	scrapers   scraper.Set
}

// New creates a Crawler. discoverer may be nil to crawl homepages only.
func New(fetcher PageFetcher, discoverer Discoverer, scrapers scraper.Set) *Crawler {
	return &Crawler{
		fetcher:    fetcher,
		discoverer: discoverer,
		scrapers:   scrapers,
	}
}

// Crawl tries to fill every contact field of c.
func (cr *Crawler) Crawl(ctx context.Context, c *models.Contractor) {
	cr.CrawlFields(ctx, c, models.AllFields())
}

// CrawlFields tries to fill the given fields of c. Results are written through
// the contractor's setters; the first value found for a field wins.
func (cr *Crawler) CrawlFields(ctx context.Context, c *models.Contractor, fields []models.FieldKind) {
	ctx = reqctx.WithCrawl(ctx, c.Title)
	t := newTask(c, fields, cr.scrapers)
	logger := reqctx.Logger(ctx)
	start := time.Now()

	for t.state != StateDone {
		switch t.state {
		case StateInit:
			t.frontier.push(c.URL)
			t.state = StateDiscovering

		case StateDiscovering:
			if cr.discoverer != nil && len(t.pending) > 0 && ctx.Err() == nil {
				sm, err := cr.discoverer.Discover(ctx, c.URL)
				if err != nil {
					logger.Warn().Err(err).Str("url", c.URL).Msg("Site map discovery failed, crawling homepage only")
				}
				for _, page := range sm.Pages() {
					t.frontier.push(page)
				}
			}
			t.state = StateCrawling

		case StateCrawling:
			if len(t.pending) == 0 || t.frontier.empty() || ctx.Err() != nil {
				t.state = StateDone
				continue
			}
			cr.visit(ctx, t, t.frontier.pop())
		}
	}

	missing := make([]string, 0, len(t.pending))
	for _, kind := range t.pendingKinds() {
		missing = append(missing, kind.String())
	}
	logger.Info().
		Str("url", c.URL).
		Int("pages", t.visited).
		Strs("missing", missing).
		Dur("elapsed", time.Since(start)).
		Msg("Crawl finished")
}

// visit runs every pending scraper on one page concurrently, then removes the
// fields that were found.
func (cr *Crawler) visit(ctx context.Context, t *task, url string) {
	logger := reqctx.Logger(ctx)

	page, err := cr.fetcher.Fetch(ctx, url)
	t.visited++
	if err != nil {
		logger.Warn().Err(err).Str("url", url).Msg("Skipping unusable page")
		return
	}

	kinds := t.pendingKinds()
	found := make([]bool, len(kinds))

	var wg sync.WaitGroup
	for i, kind := range kinds {
		wg.Add(1)
		go func(i int, kind models.FieldKind) {
			defer wg.Done()
			found[i] = t.scrapers[kind].Scrape(ctx, page, t.contractor.Setter(kind))
		}(i, kind)
	}
	wg.Wait()

	for i, kind := range kinds {
		if found[i] {
			delete(t.pending, kind)
			logger.Debug().
				Str("url", url).
				Str("field", kind.String()).
				Str("value", t.contractor.Field(kind)).
				Msg("Field found")
		}
	}
}
