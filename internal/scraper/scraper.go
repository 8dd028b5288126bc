// Package scraper implements the per-field contact scrapers run on every crawled page.
package scraper

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/contractors/internal/snippet"
	"github.com/law-makers/contractors/pkg/models"
	"github.com/rs/zerolog/log"
)

// Scraper looks for one field on a page. When it returns true it has called
// onFound exactly once with the value.
type Scraper interface {
	Name() string
	Scrape(ctx context.Context, page *models.Page, onFound func(string)) bool
}

// Set maps each field to the scraper responsible for it.
type Set map[models.FieldKind]Scraper

// NewSet builds the standard scrapers around the given field oracles.
func NewSet(address, phone, email snippet.Oracle, opts snippet.Options) Set {
	return Set{
		models.FieldAddress: NewAddress(address, opts),
		models.FieldPhone:   NewPhone(phone, opts),
		models.FieldEmail:   NewEmail(email, opts),
	}
}

// document parses a private copy of the page for one scraper.
func document(page *models.Page, field string) (*goquery.Document, bool) {
	doc, err := page.Document()
	if err != nil {
		log.Debug().Err(err).Str("url", page.URL).Str("field", field).Msg("Could not parse page")
		return nil, false
	}
	return doc, true
}
