package sitemap

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/contractors/pkg/models"
)

type stubFetcher struct {
	html string
	err  error
}

func (f stubFetcher) Fetch(ctx context.Context, url string) (*models.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Page{URL: url, HTML: f.html}, nil
}

type recordingOracle struct {
	links  []string
	result models.SiteMap
	calls  int
}

func (o *recordingOracle) Identify(ctx context.Context, homepage string, links []string) (models.SiteMap, error) {
	o.calls++
	o.links = links
	return o.result, nil
}

const homepageHTML = `<body>
	<nav>
		<a href="/">Home</a>
		<a href="/about-us">About</a>
		<a href="contact#form">Contact</a>
		<a href="https://www.facebook.com/acme">Facebook</a>
		<a href="mailto:info@acme.com">Email</a>
		<a href="tel:5551234567">Call</a>
		<a href="#top">Top</a>
		<a href="https://acme.com/about-us/">About again</a>
	</nav>
</body>`

func TestCandidateLinks_ExcludesExternalAndDuplicates(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(homepageHTML))
	if err != nil {
		t.Fatal(err)
	}

	got := CandidateLinks("https://acme.com", doc)
	want := []string{"https://acme.com/about-us", "https://acme.com/contact"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CandidateLinks() = %v, want %v", got, want)
	}
}

func TestDiscover_PassesOnlySameSiteLinks(t *testing.T) {
	oracle := &recordingOracle{result: models.SiteMap{About: "https://acme.com/about-us"}}
	e := New(stubFetcher{html: homepageHTML}, oracle)

	sm, err := e.Discover(context.Background(), "https://acme.com")
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if sm.About != "https://acme.com/about-us" || sm.Contact != "" {
		t.Errorf("Discover() = %+v", sm)
	}
	for _, link := range oracle.links {
		if strings.Contains(link, "facebook.com") {
			t.Errorf("external link %s reached the oracle", link)
		}
	}
}

func TestDiscover_NoLinksSkipsOracle(t *testing.T) {
	oracle := &recordingOracle{}
	e := New(stubFetcher{html: `<body><p>Welcome</p><a href="https://twitter.com/acme">t</a></body>`}, oracle)

	sm, err := e.Discover(context.Background(), "https://acme.com")
	if err != nil {
		t.Fatal(err)
	}
	if oracle.calls != 0 || len(sm.Pages()) != 0 {
		t.Errorf("calls = %d, site map = %+v", oracle.calls, sm)
	}
}

func TestDiscover_FetchFailure(t *testing.T) {
	errDown := errors.New("connection refused")
	e := New(stubFetcher{err: errDown}, &recordingOracle{})

	if _, err := e.Discover(context.Background(), "https://acme.com"); !errors.Is(err, errDown) {
		t.Errorf("Discover() error = %v, want wrapped fetch error", err)
	}
}
