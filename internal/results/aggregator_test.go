package results

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/law-makers/contractors/pkg/models"
)

type memStore struct {
	stored []*models.Contractor
	saved  []*models.Contractor
	saves  int
	err    error
}

func (s *memStore) Load() ([]*models.Contractor, error) { return s.stored, s.err }

func (s *memStore) Save(contractors []*models.Contractor) error {
	s.saves++
	s.saved = contractors
	return nil
}

type fakeCrawler struct {
	mu     sync.Mutex
	crawls map[string]int
	fields map[string][]models.FieldKind
}

func newFakeCrawler() *fakeCrawler {
	return &fakeCrawler{crawls: map[string]int{}, fields: map[string][]models.FieldKind{}}
}

func (f *fakeCrawler) Crawl(ctx context.Context, c *models.Contractor) {
	f.CrawlFields(ctx, c, models.AllFields())
}

func (f *fakeCrawler) CrawlFields(ctx context.Context, c *models.Contractor, fields []models.FieldKind) {
	f.mu.Lock()
	f.crawls[c.Title]++
	f.fields[c.Title] = fields
	f.mu.Unlock()
	c.SetPhone("(555) 000-0000")
}

func TestHandle_TitlesAreUnique(t *testing.T) {
	s := &memStore{}
	cr := newFakeCrawler()
	a := New(s, cr, Options{Concurrency: 2})

	batch := []*models.Contractor{
		models.NewContractor("acme roofing", "", "https://acme.com"),
		models.NewContractor("Acme  Roofing", "", "https://acme-roofing.com"),
		models.NewContractor("Bob Builders", "", "https://bob.com"),
	}
	if err := a.Handle(context.Background(), batch); err != nil {
		t.Fatal(err)
	}
	if err := a.Handle(context.Background(), []*models.Contractor{models.NewContractor("bob builders", "", "https://bob.com")}); err != nil {
		t.Fatal(err)
	}

	got := a.Contractors()
	if len(got) != 2 {
		t.Fatalf("contractors = %d, want 2", len(got))
	}
	if got[0].URL != "https://acme.com" {
		t.Errorf("first entry should win, got %s", got[0].URL)
	}
	if cr.crawls["Acme Roofing"] != 1 || cr.crawls["Bob Builders"] != 1 {
		t.Errorf("crawls = %v", cr.crawls)
	}
	if s.saves != 2 || len(s.saved) != 2 {
		t.Errorf("saves = %d, saved = %d", s.saves, len(s.saved))
	}
}

func TestHandle_SkipsStoredTitles(t *testing.T) {
	s := &memStore{stored: []*models.Contractor{{Title: "Acme Roofing", URL: "https://acme.com"}}}
	cr := newFakeCrawler()
	a := New(s, cr, Options{})
	if err := a.Load(); err != nil {
		t.Fatal(err)
	}

	if err := a.Handle(context.Background(), []*models.Contractor{models.NewContractor("acme roofing", "", "https://x.com")}); err != nil {
		t.Fatal(err)
	}
	if len(cr.crawls) != 0 {
		t.Errorf("stored contractor crawled again: %v", cr.crawls)
	}
}

func TestHandle_ProgressHook(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	a := New(&memStore{}, newFakeCrawler(), Options{OnCrawled: func(c *models.Contractor) {
		mu.Lock()
		seen = append(seen, c.Title)
		mu.Unlock()
	}})

	batch := []*models.Contractor{
		models.NewContractor("a", "", "https://a.com"),
		models.NewContractor("b", "", "https://b.com"),
	}
	if err := a.Handle(context.Background(), batch); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 {
		t.Errorf("hook calls = %v", seen)
	}
}

func TestRecrawl_OnlyMissingFields(t *testing.T) {
	s := &memStore{stored: []*models.Contractor{
		{Title: "Complete", URL: "https://c.com", Phone: "1", Email: "e@c.com", Address: "a"},
		{Title: "Partial", URL: "https://p.com", Email: "e@p.com"},
	}}
	cr := newFakeCrawler()
	a := New(s, cr, Options{})
	if err := a.Load(); err != nil {
		t.Fatal(err)
	}
	if a.Incomplete() != 1 {
		t.Fatalf("Incomplete() = %d", a.Incomplete())
	}

	if err := a.Recrawl(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok := cr.crawls["Complete"]; ok {
		t.Error("complete contractor re-crawled")
	}
	fields := cr.fields["Partial"]
	if len(fields) != 2 || fields[0] != models.FieldAddress || fields[1] != models.FieldPhone {
		t.Errorf("fields = %v, want [address phone]", fields)
	}
	if s.saves != 1 {
		t.Errorf("saves = %d", s.saves)
	}
}

func TestLoad_Error(t *testing.T) {
	errBroken := errors.New("broken")
	a := New(&memStore{err: errBroken}, newFakeCrawler(), Options{})
	if err := a.Load(); !errors.Is(err, errBroken) {
		t.Errorf("Load() error = %v", err)
	}
}
