// Package results collects contractors found by search, crawls each new one
// and persists the whole set.
package results

import (
	"context"
	"fmt"
	"sync"

	"github.com/law-makers/contractors/internal/store"
	"github.com/law-makers/contractors/pkg/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Crawler fills contact fields for one contractor.
type Crawler interface {
	Crawl(ctx context.Context, c *models.Contractor)
	CrawlFields(ctx context.Context, c *models.Contractor, fields []models.FieldKind)
}

// Options configures an Aggregator.
type Options struct {
	// Concurrency caps simultaneous crawls. Zero means unbounded.
	Concurrency int
	// OnCrawled is called after each crawl finishes.
	OnCrawled func(c *models.Contractor)
}

// Aggregator holds contractors keyed by title in insertion order.
type Aggregator struct {
	store   store.Store
	crawler Crawler
	opts    Options

	mu     sync.Mutex
	byName map[string]*models.Contractor
	order  []string
}

// New creates an Aggregator. Call Load to pick up previously stored results.
func New(s store.Store, crawler Crawler, opts Options) *Aggregator {
	return &Aggregator{
		store:   s,
		crawler: crawler,
		opts:    opts,
		byName:  make(map[string]*models.Contractor),
	}
}

// Load reads stored contractors. Duplicate titles in the file keep the last row.
func (a *Aggregator) Load() error {
	stored, err := a.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	a.mu.Lock()
	for _, c := range stored {
		a.put(c)
	}
	n := len(a.order)
	a.mu.Unlock()

	if n == 0 {
		log.Info().Msg("No stored results, starting from scratch")
	} else {
		log.Info().Int("count", n).Msg("Loaded stored results")
	}
	return nil
}

// Handle adds contractors whose titles are new, crawls them concurrently and
// saves once every crawl has finished.
func (a *Aggregator) Handle(ctx context.Context, contractors []*models.Contractor) error {
	var fresh []*models.Contractor

	a.mu.Lock()
	for _, c := range contractors {
		if _, ok := a.byName[c.Title]; ok {
			log.Debug().Str("title", c.Title).Msg("Skipping duplicate contractor")
			continue
		}
		a.put(c)
		fresh = append(fresh, c)
	}
	a.mu.Unlock()

	a.crawlAll(ctx, fresh, func(c *models.Contractor) {
		a.crawler.Crawl(ctx, c)
	})
	return a.Save()
}

// Recrawl re-runs the crawler for stored contractors with missing fields.
func (a *Aggregator) Recrawl(ctx context.Context) error {
	var incomplete []*models.Contractor
	for _, c := range a.Contractors() {
		if len(c.Missing()) > 0 && c.URL != "" {
			incomplete = append(incomplete, c)
		}
	}
	log.Info().Int("count", len(incomplete)).Msg("Re-crawling incomplete contractors")

	a.crawlAll(ctx, incomplete, func(c *models.Contractor) {
		a.crawler.CrawlFields(ctx, c, c.Missing())
	})
	return a.Save()
}

// Incomplete counts contractors with at least one missing field.
func (a *Aggregator) Incomplete() int {
	n := 0
	for _, c := range a.Contractors() {
		if len(c.Missing()) > 0 {
			n++
		}
	}
	return n
}

// Contractors returns a snapshot in insertion order.
func (a *Aggregator) Contractors() []*models.Contractor {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]*models.Contractor, 0, len(a.order))
	for _, title := range a.order {
		out = append(out, a.byName[title])
	}
	return out
}

// Save writes every contractor to the store.
func (a *Aggregator) Save() error {
	contractors := a.Contractors()
	if err := a.store.Save(contractors); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	log.Info().Int("count", len(contractors)).Msg("Saved results")
	return nil
}

func (a *Aggregator) crawlAll(ctx context.Context, contractors []*models.Contractor, crawl func(*models.Contractor)) {
	var g errgroup.Group
	if a.opts.Concurrency > 0 {
		g.SetLimit(a.opts.Concurrency)
	}
	for _, c := range contractors {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			crawl(c)
			if a.opts.OnCrawled != nil {
				a.opts.OnCrawled(c)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// put must be called with mu held.
func (a *Aggregator) put(c *models.Contractor) {
	if _, ok := a.byName[c.Title]; !ok {
		a.order = append(a.order, c.Title)
	}
	a.byName[c.Title] = c
}
