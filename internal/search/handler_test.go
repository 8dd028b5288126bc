package search

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/law-makers/contractors/internal/oracle"
	"github.com/law-makers/contractors/pkg/models"
)

type pagedClient struct {
	mu      sync.Mutex
	total   int
	offsets []int
}

func (c *pagedClient) Search(ctx context.Context, query string, count, offset int) ([]models.SearchResult, error) {
	c.mu.Lock()
	c.offsets = append(c.offsets, offset)
	c.mu.Unlock()

	var results []models.SearchResult
	for i := offset; i < offset+count && i < c.total; i++ {
		results = append(results, models.SearchResult{
			Title: fmt.Sprintf("Site %d", i),
			URL:   fmt.Sprintf("https://site%d.com/page", i),
		})
	}
	return results, nil
}

type fakeClassifier struct {
	isContractor func(models.SearchResult) (bool, error)
}

func (f fakeClassifier) IsContractor(ctx context.Context, r models.SearchResult) (bool, error) {
	return f.isContractor(r)
}

func (f fakeClassifier) ExtractName(ctx context.Context, r models.SearchResult) (string, error) {
	return strings.ToLower(r.Title) + " llc", nil
}

func acceptAll(models.SearchResult) (bool, error) { return true, nil }

func TestRun_StopsOnShortPage(t *testing.T) {
	client := &pagedClient{total: 120}
	var got int
	h := NewHandler(client, fakeClassifier{acceptAll}, func(ctx context.Context, cs []*models.Contractor) error {
		got += len(cs)
		return nil
	}, Options{})

	if err := h.Run(context.Background(), []string{"roofers"}); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(client.offsets, []int{0, 50, 100}) {
		t.Errorf("offsets = %v", client.offsets)
	}
	if got != 120 {
		t.Errorf("contractors = %d", got)
	}
}

func TestRun_CapsAtMaxResults(t *testing.T) {
	client := &pagedClient{total: 5000}
	h := NewHandler(client, fakeClassifier{acceptAll}, func(context.Context, []*models.Contractor) error { return nil }, Options{})

	if err := h.Run(context.Background(), []string{"a", "b"}); err != nil {
		t.Fatal(err)
	}
	if len(client.offsets) != 40 {
		t.Errorf("requests = %d, want 20 per term", len(client.offsets))
	}
	if last := client.offsets[19]; last != 950 {
		t.Errorf("last offset = %d", last)
	}
}

func TestParse_FiltersAndBuildsContractors(t *testing.T) {
	results := []models.SearchResult{
		{Title: "Acme", Description: " Roofing pros ", URL: "https://www.acme.com/roofing?ref=1"},
		{Title: "Yelp", URL: "https://www.yelp.com/biz/acme"},
		{Title: "County", URL: "https://permits.county.gov/"},
		{Title: "Blog", URL: "https://blog.com/roofing-tips"},
		{Title: "Unsure", URL: "https://unsure.com"},
	}
	classifier := fakeClassifier{func(r models.SearchResult) (bool, error) {
		switch r.Title {
		case "Blog":
			return false, nil
		case "Unsure":
			return false, fmt.Errorf("%w: maybe", oracle.ErrAmbiguous)
		case "Yelp", "County":
			t.Errorf("blacklisted result %s classified", r.URL)
		}
		return true, nil
	}}
	h := NewHandler(&pagedClient{}, classifier, nil, Options{Blacklist: []string{"yelp.com", ".gov"}})

	got := h.Parse(context.Background(), results)
	if len(got) != 1 {
		t.Fatalf("contractors = %+v", got)
	}
	c := got[0]
	if c.Title != "Acme Llc" || c.URL != "https://www.acme.com" || c.Description != "Roofing pros" {
		t.Errorf("contractor = %+v", c)
	}
}

func TestRun_PropagatesSearchError(t *testing.T) {
	errDown := errors.New("down")
	h := NewHandler(errClient{errDown}, fakeClassifier{acceptAll}, nil, Options{})
	if err := h.Run(context.Background(), []string{"x"}); !errors.Is(err, errDown) {
		t.Errorf("Run() error = %v", err)
	}
}

type errClient struct{ err error }

func (c errClient) Search(context.Context, string, int, int) ([]models.SearchResult, error) {
	return nil, c.err
}

func TestLoadBlacklist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blacklist.txt")
	if err := os.WriteFile(path, []byte("yelp.com\n\n# directories\n.gov\n  bbb.org  \n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadBlacklist(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"yelp.com", ".gov", "bbb.org"}) {
		t.Errorf("LoadBlacklist() = %v", got)
	}

	if got, err := LoadBlacklist(filepath.Join(t.TempDir(), "missing")); err != nil || got != nil {
		t.Errorf("missing file = %v, %v", got, err)
	}
}
