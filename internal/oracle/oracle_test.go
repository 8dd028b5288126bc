package oracle

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/law-makers/contractors/pkg/models"
)

// scripted answers prompts in order and records them.
type scripted struct {
	answers []string
	err     error
	prompts []string
}

func (s *scripted) Complete(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	if len(s.prompts) > len(s.answers) {
		return "", errors.New("unexpected prompt")
	}
	return s.answers[len(s.prompts)-1], nil
}

func TestChain_StopsAtSentinel(t *testing.T) {
	c := &scripted{answers: []string{"No Phone Number."}}
	got, err := NewPhone(c).Classify(context.Background(), "<p>hello</p>")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got != NoPhone {
		t.Errorf("Classify() = %q, want sentinel", got)
	}
	if len(c.prompts) != 1 {
		t.Errorf("prompts = %d, format stage should be skipped", len(c.prompts))
	}
	if !strings.Contains(c.prompts[0], "<p>hello</p>") {
		t.Errorf("content missing from prompt: %s", c.prompts[0])
	}
}

func TestChain_FeedsAnswerForward(t *testing.T) {
	c := &scripted{answers: []string{"555.123.4567", "(555) 123-4567"}}
	got, err := NewPhone(c).Classify(context.Background(), "call 555.123.4567")
	if err != nil {
		t.Fatal(err)
	}
	if got != "(555) 123-4567" {
		t.Errorf("Classify() = %q", got)
	}
	if !strings.Contains(c.prompts[1], "555.123.4567") {
		t.Errorf("second stage did not receive first answer: %s", c.prompts[1])
	}
}

func TestChain_PropagatesErrors(t *testing.T) {
	errBoom := errors.New("boom")
	if _, err := NewEmail(&scripted{err: errBoom}).Classify(context.Background(), "x"); !errors.Is(err, errBoom) {
		t.Errorf("Classify() error = %v", err)
	}
}

func TestAddress_FormatsStructuredAnswer(t *testing.T) {
	c := &scripted{answers: []string{
		"123 Main St\nSpringfield, IL 62701",
		"```json\n{\"street\":\"123 Main St\",\"city\":\"Springfield\",\"state\":\"IL\",\"zip\":\"62701\"}\n```",
	}}
	got, err := NewAddress(c).Classify(context.Background(), "<footer>...</footer>")
	if err != nil {
		t.Fatal(err)
	}
	if got != "123 Main St, Springfield, IL 62701" {
		t.Errorf("Classify() = %q", got)
	}
}

func TestAddress_IncompleteStructuredAnswer(t *testing.T) {
	c := &scripted{answers: []string{"Springfield", `{"street":"","city":"Springfield","state":"IL","zip":""}`}}
	got, err := NewAddress(c).Classify(context.Background(), "x")
	if err != nil {
		t.Fatal(err)
	}
	if got != NoAddress {
		t.Errorf("Classify() = %q, want sentinel", got)
	}
}

func TestParseDecision(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"contractor", true},
		{"Contractor.", true},
		{"not contractor", false},
		{"NOT CONTRACTOR", false},
	}
	for _, tt := range tests {
		got, err := ParseDecision(tt.answer)
		if err != nil || got != tt.want {
			t.Errorf("ParseDecision(%q) = %v, %v", tt.answer, got, err)
		}
	}
}

func TestParseDecision_Ambiguous(t *testing.T) {
	_, err := ParseDecision("I am not sure")
	if !errors.Is(err, ErrAmbiguous) {
		t.Fatalf("ParseDecision() error = %v, want ErrAmbiguous", err)
	}
}

func TestContractor_IsContractorSurfacesAmbiguity(t *testing.T) {
	c := &scripted{answers: []string{"A local news article about a roofer.", "maybe"}}
	_, err := NewContractor(c).IsContractor(context.Background(), models.SearchResult{
		Title: "Roofer wins award", URL: "https://news.example.com/roofer",
	})
	if !errors.Is(err, ErrAmbiguous) {
		t.Fatalf("IsContractor() error = %v, want ErrAmbiguous", err)
	}
	if !strings.Contains(c.prompts[1], "A local news article") {
		t.Error("decision prompt should include the explanation")
	}
}

func TestContractor_ExtractName(t *testing.T) {
	c := &scripted{answers: []string{` "Acme Roofing" `}}
	got, err := NewContractor(c).ExtractName(context.Background(), models.SearchResult{Title: "Acme Roofing | Home"})
	if err != nil || got != "Acme Roofing" {
		t.Errorf("ExtractName() = %q, %v", got, err)
	}
}

func TestParseSiteMap(t *testing.T) {
	answer := "Here you go:\n```json\n{\"about\": \"/about-us\", \"contact\": \"https://facebook.com/acme\"}\n```"
	sm := ParseSiteMap("https://acme.com", answer)
	if sm.About != "https://acme.com/about-us" {
		t.Errorf("About = %q", sm.About)
	}
	if sm.Contact != "" {
		t.Errorf("Contact = %q, off-site link should be dropped", sm.Contact)
	}

	if sm := ParseSiteMap("https://acme.com", "no idea"); sm != (models.SiteMap{}) {
		t.Errorf("ParseSiteMap(non-JSON) = %+v, want empty", sm)
	}
}

func TestSiteMap_IdentifyUnparseableAnswerIsEmpty(t *testing.T) {
	c := &scripted{answers: []string{"I could not find those pages."}}
	sm, err := NewSiteMap(c).Identify(context.Background(), "https://acme.com", []string{"https://acme.com/team"})
	if err != nil {
		t.Fatalf("Identify() error = %v", err)
	}
	if sm != (models.SiteMap{}) {
		t.Errorf("Identify() = %+v, want empty", sm)
	}
}

func TestSiteMap_IdentifyListsLinks(t *testing.T) {
	c := &scripted{answers: []string{`{"about":"https://acme.com/about","contact":"https://acme.com/contact"}`}}
	sm, err := NewSiteMap(c).Identify(context.Background(), "https://acme.com",
		[]string{"https://acme.com/about", "https://acme.com/contact"})
	if err != nil {
		t.Fatal(err)
	}
	if sm.About != "https://acme.com/about" || sm.Contact != "https://acme.com/contact" {
		t.Errorf("Identify() = %+v", sm)
	}
	if !strings.Contains(c.prompts[0], "- https://acme.com/contact") {
		t.Errorf("links missing from prompt: %s", c.prompts[0])
	}
}
