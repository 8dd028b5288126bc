// Package snippet locates a single piece of contact information inside a page
// by asking a classifier about progressively larger fragments of it.
package snippet

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/contractors/internal/fetch"
	"github.com/law-makers/contractors/internal/llm"
	"github.com/law-makers/contractors/internal/oracle"
	"github.com/law-makers/contractors/internal/retry"
	"github.com/rs/zerolog/log"
)

// candidateSelector lists the small text-bearing elements scanned in document order.
const candidateSelector = "p, span, a, strong, li, b, u, font"

// Oracle classifies a fragment of markup, answering with the value or a sentinel.
type Oracle interface {
	Classify(ctx context.Context, content string) (string, error)
}

// OracleFunc adapts a function to Oracle.
type OracleFunc func(ctx context.Context, content string) (string, error)

// Classify calls f.
func (f OracleFunc) Classify(ctx context.Context, content string) (string, error) {
	return f(ctx, content)
}

// Field describes what an Extractor looks for.
type Field struct {
	Name     string
	Sentinel string
	Oracle   Oracle
}

// Options tunes the scan.
type Options struct {
	// BatchSize is the number of elements classified concurrently.
	BatchSize int

	// ChunkSize is the length of the head and tail fallback fragments.
	ChunkSize int

	// Retry governs rate-limited classifier calls.
	Retry retry.Config
}

// DefaultOptions returns the standard scan settings.
func DefaultOptions() Options {
	return Options{
		BatchSize: 100,
		ChunkSize: 5000,
		Retry:     RateLimitRetry(5, 2*time.Second),
	}
}

// RateLimitRetry retries only rate-limited classifier calls, with a fixed delay.
func RateLimitRetry(attempts int, delay time.Duration) retry.Config {
	return retry.Fixed(attempts, delay, func(err error) bool {
		return errors.Is(err, llm.ErrRateLimited)
	})
}

// Extractor finds one field value in a document.
type Extractor struct {
	field Field
	opts  Options
}

// New creates an Extractor.
func New(field Field, opts Options) *Extractor {
	def := DefaultOptions()
	if opts.BatchSize <= 0 {
		opts.BatchSize = def.BatchSize
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = def.ChunkSize
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = def.Retry
	}
	return &Extractor{field: field, opts: opts}
}

// Name returns the field name.
func (e *Extractor) Name() string {
	return e.field.Name
}

// Extract searches doc for the field. The document's attributes are stripped
// in place, so callers should pass a copy they own.
//
// Fragments are tried in this order: the footer and header as a whole, then
// candidate elements batch by batch, then the head and tail of the document.
// Within a batch the earliest element with an answer wins.
func (e *Extractor) Extract(ctx context.Context, doc *goquery.Document) (string, bool) {
	fetch.StripAttributes(doc.Selection)
	root := doc.Find("body").First()
	if root.Length() == 0 {
		root = doc.Selection
	}

	for _, tag := range []string{"footer", "header"} {
		section := root.Find(tag).First()
		if section.Length() == 0 {
			continue
		}
		html, err := goquery.OuterHtml(section)
		if err != nil {
			continue
		}
		if value, ok := e.classify(ctx, html); ok {
			return value, true
		}
	}

	candidates := root.Find(candidateSelector)
	for start := 0; start < candidates.Length(); start += e.opts.BatchSize {
		if ctx.Err() != nil {
			return "", false
		}
		end := min(start+e.opts.BatchSize, candidates.Length())
		if value, ok := e.classifyBatch(ctx, candidates.Slice(start, end)); ok {
			return value, true
		}
	}

	serialized, err := goquery.OuterHtml(root)
	if err != nil {
		return "", false
	}
	head, tail := headTail(serialized, e.opts.ChunkSize)
	if value, ok := e.classify(ctx, head); ok {
		return value, true
	}
	if tail != head {
		if value, ok := e.classify(ctx, tail); ok {
			return value, true
		}
	}

	log.Debug().
		Str("field", e.field.Name).
		Int("candidates", candidates.Length()).
		Msg("No snippet found in document")
	return "", false
}

// classifyBatch classifies every element concurrently and returns the first
// answer in document order.
func (e *Extractor) classifyBatch(ctx context.Context, batch *goquery.Selection) (string, bool) {
	fragments := make([]string, 0, batch.Length())
	batch.Each(func(_ int, s *goquery.Selection) {
		if html, err := goquery.OuterHtml(s); err == nil {
			fragments = append(fragments, html)
		}
	})

	type result struct {
		value string
		ok    bool
	}
	results := make([]result, len(fragments))

	var wg sync.WaitGroup
	for i, fragment := range fragments {
		wg.Add(1)
		go func(i int, fragment string) {
			defer wg.Done()
			value, ok := e.classify(ctx, fragment)
			results[i] = result{value: value, ok: ok}
		}(i, fragment)
	}
	wg.Wait()

	for _, r := range results {
		if r.ok {
			return r.value, true
		}
	}
	return "", false
}

// classify asks the oracle about one fragment. Any failure counts as "not found".
func (e *Extractor) classify(ctx context.Context, content string) (string, bool) {
	var answer string
	err := retry.WithRetry(ctx, e.opts.Retry, func() error {
		var err error
		answer, err = e.field.Oracle.Classify(ctx, content)
		return err
	})
	if err != nil {
		event := log.Debug()
		if errors.Is(err, llm.ErrRateLimited) {
			event = log.Warn()
		}
		event.Err(err).
			Str("field", e.field.Name).
			Int("content_bytes", len(content)).
			Msg("Classifier gave no answer")
		return "", false
	}

	if answer == "" || oracle.IsSentinel(answer, e.field.Sentinel) {
		return "", false
	}
	return answer, true
}

// headTail returns the first and last n bytes of s, cut on rune boundaries.
func headTail(s string, n int) (string, string) {
	if len(s) <= n {
		return s, s
	}
	headEnd := n
	for headEnd > 0 && !utf8.RuneStart(s[headEnd]) {
		headEnd--
	}
	tailStart := len(s) - n
	for tailStart < len(s) && !utf8.RuneStart(s[tailStart]) {
		tailStart++
	}
	return s[:headEnd], s[tailStart:]
}
