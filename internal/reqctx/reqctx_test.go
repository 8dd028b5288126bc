package reqctx

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestWithCrawl(t *testing.T) {
	ctx := WithCrawl(context.Background(), "Acme Roofing")
	cc := FromContext(ctx)

	if _, err := uuid.Parse(cc.CrawlID); err != nil {
		t.Errorf("CrawlID %q is not a UUID: %v", cc.CrawlID, err)
	}
	if cc.Contractor != "Acme Roofing" {
		t.Errorf("Contractor = %q", cc.Contractor)
	}
	if Logger(ctx) == nil {
		t.Error("Logger() returned nil")
	}

	other := FromContext(WithCrawl(context.Background(), "Other"))
	if other.CrawlID == cc.CrawlID {
		t.Error("crawl IDs should be unique")
	}
}

func TestFromContextWithoutCrawl(t *testing.T) {
	if got := FromContext(context.Background()).CrawlID; got != "unknown" {
		t.Errorf("CrawlID = %q, want unknown", got)
	}
	if Logger(context.Background()) == nil {
		t.Error("Logger() should fall back to the global logger")
	}
}
