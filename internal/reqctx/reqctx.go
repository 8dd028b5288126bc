package reqctx

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type key int

const crawlKey key = 0

// CrawlContext identifies one site crawl in logs and errors.
type CrawlContext struct {
	CrawlID    string
	Contractor string
	StartTime  time.Time
}

// WithCrawl attaches a fresh crawl ID and a matching logger to ctx.
func WithCrawl(ctx context.Context, contractor string) context.Context {
	cc := &CrawlContext{
		CrawlID:    uuid.NewString(),
		Contractor: contractor,
		StartTime:  time.Now(),
	}
	ctx = context.WithValue(ctx, crawlKey, cc)

	logger := log.With().
		Str("crawl_id", cc.CrawlID).
		Str("contractor", contractor).
		Logger()
	return logger.WithContext(ctx)
}

// FromContext returns the crawl attached to ctx, or a placeholder.
func FromContext(ctx context.Context) *CrawlContext {
	if cc, ok := ctx.Value(crawlKey).(*CrawlContext); ok {
		return cc
	}
	return &CrawlContext{
		CrawlID:   "unknown",
		StartTime: time.Now(),
	}
}

// Logger returns the crawl-scoped logger, falling back to the global one.
func Logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}
