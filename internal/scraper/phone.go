package scraper

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/contractors/internal/oracle"
	"github.com/law-makers/contractors/internal/snippet"
	"github.com/law-makers/contractors/pkg/models"
	"github.com/rs/zerolog/log"
)

// minPhoneDigits rejects answers too short to be a dialable number.
const minPhoneDigits = 7

// Phone finds a phone number, preferring tel: links over the classifier.
type Phone struct {
	extractor *snippet.Extractor
}

// NewPhone creates a Phone scraper.
func NewPhone(o snippet.Oracle, opts snippet.Options) *Phone {
	return &Phone{extractor: snippet.New(snippet.Field{
		Name:     "phone",
		Sentinel: oracle.NoPhone,
		Oracle:   o,
	}, opts)}
}

func (s *Phone) Name() string { return "phone" }

func (s *Phone) Scrape(ctx context.Context, page *models.Page, onFound func(string)) bool {
	doc, ok := document(page, s.Name())
	if !ok {
		return false
	}

	if phone := telNumber(doc); phone != "" {
		onFound(FormatPhone(phone))
		return true
	}

	answer, ok := s.extractor.Extract(ctx, doc)
	if !ok {
		return false
	}
	if countDigits(answer) < minPhoneDigits {
		log.Debug().Str("url", page.URL).Str("answer", answer).Msg("Classifier answer is not a phone number")
		return false
	}
	onFound(FormatPhone(answer))
	return true
}

func telNumber(doc *goquery.Document) string {
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if len(href) < 4 || !strings.EqualFold(href[:4], "tel:") {
			return true
		}
		if number := strings.TrimSpace(href[4:]); countDigits(number) > 0 {
			found = number
			return false
		}
		return true
	})
	return found
}

// FormatPhone renders North American numbers as (###) ###-####. Anything else
// is returned trimmed.
func FormatPhone(raw string) string {
	raw = strings.TrimSpace(raw)
	var digits []rune
	for _, r := range raw {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return raw
	}
	return fmt.Sprintf("(%s) %s-%s", string(digits[:3]), string(digits[3:6]), string(digits[6:]))
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
