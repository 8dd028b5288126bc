package scraper

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/contractors/internal/oracle"
	"github.com/law-makers/contractors/internal/snippet"
	"github.com/law-makers/contractors/pkg/models"
	"github.com/rs/zerolog/log"
)

var emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// Email finds a contact email, preferring mailto: links over the classifier.
type Email struct {
	extractor *snippet.Extractor
}

// NewEmail creates an Email scraper.
func NewEmail(o snippet.Oracle, opts snippet.Options) *Email {
	return &Email{extractor: snippet.New(snippet.Field{
		Name:     "email",
		Sentinel: oracle.NoEmail,
		Oracle:   o,
	}, opts)}
}

func (s *Email) Name() string { return "email" }

func (s *Email) Scrape(ctx context.Context, page *models.Page, onFound func(string)) bool {
	doc, ok := document(page, s.Name())
	if !ok {
		return false
	}

	if email := mailtoAddress(doc); email != "" {
		onFound(email)
		return true
	}

	log.Debug().Str("url", page.URL).Msg("No mailto link, deferring to classifier")
	answer, ok := s.extractor.Extract(ctx, doc)
	if !ok {
		return false
	}
	email := emailRe.FindString(answer)
	if email == "" {
		log.Debug().Str("url", page.URL).Str("answer", answer).Msg("Classifier answer holds no email address")
		return false
	}
	onFound(email)
	return true
}

// mailtoAddress returns the address of the first usable mailto: link.
func mailtoAddress(doc *goquery.Document) string {
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if len(href) < 7 || !strings.EqualFold(href[:7], "mailto:") {
			return true
		}
		addr := href[7:]
		if i := strings.IndexByte(addr, '?'); i >= 0 {
			addr = addr[:i]
		}
		if decoded, err := url.PathUnescape(addr); err == nil {
			addr = decoded
		}
		// Several recipients may be listed, keep the first.
		addr = strings.TrimSpace(strings.Split(addr, ",")[0])
		if addr == "" {
			return true
		}
		found = addr
		return false
	})
	return found
}
