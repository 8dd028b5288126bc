package scraper

import (
	"context"
	"regexp"
	"strings"

	"github.com/law-makers/contractors/internal/oracle"
	"github.com/law-makers/contractors/internal/snippet"
	"github.com/law-makers/contractors/pkg/models"
)

var (
	lineBreakRe   = regexp.MustCompile(`\s*[\r\n]+\s*`)
	repeatCommaRe = regexp.MustCompile(`(,\s*)+,`)
)

// Address finds a mailing address with the classifier only.
type Address struct {
	extractor *snippet.Extractor
}

// NewAddress creates an Address scraper.
func NewAddress(o snippet.Oracle, opts snippet.Options) *Address {
	return &Address{extractor: snippet.New(snippet.Field{
		Name:     "address",
		Sentinel: oracle.NoAddress,
		Oracle:   o,
	}, opts)}
}

func (s *Address) Name() string { return "address" }

func (s *Address) Scrape(ctx context.Context, page *models.Page, onFound func(string)) bool {
	doc, ok := document(page, s.Name())
	if !ok {
		return false
	}
	answer, ok := s.extractor.Extract(ctx, doc)
	if !ok {
		return false
	}
	address := OneLine(answer)
	if address == "" {
		return false
	}
	onFound(address)
	return true
}

// OneLine joins a multi-line address with commas.
func OneLine(address string) string {
	address = lineBreakRe.ReplaceAllString(strings.TrimSpace(address), ", ")
	address = repeatCommaRe.ReplaceAllString(address, ",")
	return strings.Trim(address, ", ")
}
