// Package sitemap discovers the About and Contact pages of a contractor site.
package sitemap

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	urlutil "github.com/law-makers/contractors/internal/utils/url"
	"github.com/law-makers/contractors/pkg/models"
	"github.com/rs/zerolog/log"
)

// PageFetcher retrieves sanitized pages.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*models.Page, error)
}

// Oracle picks the About and Contact pages from a list of same-site links.
type Oracle interface {
	Identify(ctx context.Context, homepage string, links []string) (models.SiteMap, error)
}

// Extractor discovers a site's secondary pages from its homepage links.
type Extractor struct {
	fetcher PageFetcher
	oracle  Oracle
}

// New creates an Extractor.
func New(fetcher PageFetcher, oracle Oracle) *Extractor {
	return &Extractor{fetcher: fetcher, oracle: oracle}
}

// Discover fetches homepage and identifies its About and Contact pages.
// A fetch failure is returned so the caller can fall back to the homepage alone.
func (e *Extractor) Discover(ctx context.Context, homepage string) (models.SiteMap, error) {
	page, err := e.fetcher.Fetch(ctx, homepage)
	if err != nil {
		return models.SiteMap{}, fmt.Errorf("fetching homepage: %w", err)
	}

	doc, err := page.Document()
	if err != nil {
		return models.SiteMap{}, fmt.Errorf("parsing homepage: %w", err)
	}

	links := CandidateLinks(homepage, doc)
	if len(links) == 0 {
		log.Debug().Str("url", homepage).Msg("Homepage has no internal links")
		return models.SiteMap{}, nil
	}

	sm, err := e.oracle.Identify(ctx, homepage, links)
	if err != nil {
		return models.SiteMap{}, fmt.Errorf("identifying pages: %w", err)
	}

	log.Debug().
		Str("url", homepage).
		Int("links", len(links)).
		Str("about", sm.About).
		Str("contact", sm.Contact).
		Msg("Site map discovered")
	return sm, nil
}

// CandidateLinks returns the unique absolute same-site links of a document, in
// document order, excluding the homepage itself.
func CandidateLinks(homepage string, doc *goquery.Document) []string {
	self := strings.TrimRight(homepage, "/")
	seen := map[string]bool{self: true}
	var links []string

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		link := urlutil.StripFragment(urlutil.ResolveURL(homepage, href))
		if !urlutil.IsHTTP(link) || !urlutil.SameHost(homepage, link) {
			return
		}
		key := strings.TrimRight(link, "/")
		if seen[key] {
			return
		}
		seen[key] = true
		links = append(links, link)
	})
	return links
}
