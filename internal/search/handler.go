package search

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/law-makers/contractors/internal/oracle"
	urlutil "github.com/law-makers/contractors/internal/utils/url"
	"github.com/law-makers/contractors/pkg/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPageSize   = 50
	DefaultMaxResults = 1000
)

// Classifier decides whether a result is a contractor site and names the company.
type Classifier interface {
	IsContractor(ctx context.Context, result models.SearchResult) (bool, error)
	ExtractName(ctx context.Context, result models.SearchResult) (string, error)
}

// Options configures a Handler.
type Options struct {
	PageSize   int
	MaxResults int
	Blacklist  []string
	// Concurrency caps simultaneous classifier calls. Zero means unbounded.
	Concurrency int
}

// Handler turns search terms into batches of contractors.
type Handler struct {
	client     Client
	classifier Classifier
	onParse    func(ctx context.Context, contractors []*models.Contractor) error
	opts       Options
}

// NewHandler creates a Handler that passes every parsed batch to onParse.
func NewHandler(client Client, classifier Classifier, onParse func(context.Context, []*models.Contractor) error, opts Options) *Handler {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	return &Handler{
		client:     client,
		classifier: classifier,
		onParse:    onParse,
		opts:       opts,
	}
}

// Run searches every term page by page. A page shorter than requested ends
// the term early.
func (h *Handler) Run(ctx context.Context, terms []string) error {
	runs := (h.opts.MaxResults + h.opts.PageSize - 1) / h.opts.PageSize
	for _, term := range terms {
		log.Info().Str("term", term).Msg("Searching")

		for run, offset := 1, 0; offset < h.opts.MaxResults; run, offset = run+1, offset+h.opts.PageSize {
			if err := ctx.Err(); err != nil {
				return err
			}
			count := min(h.opts.PageSize, h.opts.MaxResults-offset)
			results, err := h.client.Search(ctx, term, count, offset)
			if err != nil {
				return fmt.Errorf("search %q at offset %d: %w", term, offset, err)
			}
			log.Info().Str("term", term).Int("run", run).Int("runs", runs).Int("results", len(results)).Msg("Fetched search page")

			contractors := h.Parse(ctx, results)
			if len(contractors) > 0 {
				if err := h.onParse(ctx, contractors); err != nil {
					return err
				}
			}
			if len(results) < count {
				break
			}
		}
	}
	return nil
}

// Parse filters raw results down to contractors.
func (h *Handler) Parse(ctx context.Context, results []models.SearchResult) []*models.Contractor {
	results = h.filterBlacklisted(results)

	keep := make([]bool, len(results))
	h.each(ctx, len(results), func(i int) {
		ok, err := h.classifier.IsContractor(ctx, results[i])
		if err != nil {
			if errors.Is(err, oracle.ErrAmbiguous) {
				log.Warn().Err(err).Str("url", results[i].URL).Msg("Dropping result with ambiguous classification")
			} else {
				log.Warn().Err(err).Str("url", results[i].URL).Msg("Classification failed")
			}
			return
		}
		keep[i] = ok
	})

	var sites []models.SearchResult
	for i, r := range results {
		if keep[i] {
			sites = append(sites, r)
		}
	}

	contractors := make([]*models.Contractor, len(sites))
	h.each(ctx, len(sites), func(i int) {
		c, err := h.contractor(ctx, sites[i])
		if err != nil {
			log.Warn().Err(err).Str("url", sites[i].URL).Msg("Could not build contractor")
			return
		}
		contractors[i] = c
	})

	out := contractors[:0]
	for _, c := range contractors {
		if c != nil {
			out = append(out, c)
		}
	}
	log.Info().Int("results", len(results)).Int("contractors", len(out)).Msg("Parsed search results")
	return out
}

func (h *Handler) contractor(ctx context.Context, r models.SearchResult) (*models.Contractor, error) {
	homepage, err := urlutil.StripURL(r.URL)
	if err != nil {
		return nil, err
	}
	name, err := h.classifier.ExtractName(ctx, r)
	if err != nil {
		return nil, err
	}
	return models.NewContractor(name, r.Description, homepage), nil
}

func (h *Handler) filterBlacklisted(results []models.SearchResult) []models.SearchResult {
	var kept []models.SearchResult
	for _, r := range results {
		if h.blacklisted(r.URL) {
			log.Debug().Str("url", r.URL).Msg("Skipping blacklisted result")
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

func (h *Handler) blacklisted(url string) bool {
	for _, entry := range h.opts.Blacklist {
		if strings.Contains(url, entry) {
			return true
		}
	}
	return false
}

func (h *Handler) each(ctx context.Context, n int, fn func(i int)) {
	var g errgroup.Group
	if h.opts.Concurrency > 0 {
		g.SetLimit(h.opts.Concurrency)
	}
	for i := range n {
		g.Go(func() error {
			if ctx.Err() == nil {
				fn(i)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// LoadBlacklist reads one URL fragment per line, skipping blanks and # comments.
// A missing file yields an empty list.
func LoadBlacklist(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn().Str("path", path).Msg("Blacklist not found, no results will be filtered")
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var entries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	return entries, scanner.Err()
}
