package models

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FieldKind identifies one of the contact fields a crawl tries to fill.
type FieldKind int

const (
	FieldAddress FieldKind = iota
	FieldPhone
	FieldEmail
)

// AllFields returns every field kind in crawl order.
func AllFields() []FieldKind {
	return []FieldKind{FieldAddress, FieldPhone, FieldEmail}
}

func (k FieldKind) String() string {
	switch k {
	case FieldAddress:
		return "address"
	case FieldPhone:
		return "phone"
	case FieldEmail:
		return "email"
	default:
		return "unknown"
	}
}

// Contractor is a business discovered through search and enriched by a site crawl.
// Empty strings mean the field has not been found.
type Contractor struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Phone       string   `json:"phone,omitempty"`
	Email       string   `json:"email,omitempty"`
	Address     string   `json:"address,omitempty"`
	Services    []string `json:"services,omitempty"`
}

// NewContractor creates a contractor with a normalized title.
func NewContractor(title, description, url string) *Contractor {
	return &Contractor{
		Title:       NormalizeTitle(title),
		Description: NormalizeNewlines(strings.TrimSpace(description)),
		URL:         url,
	}
}

// SetAddress records the address. Blank values are ignored so a found field is never cleared.
func (c *Contractor) SetAddress(v string) {
	if v = NormalizeNewlines(strings.TrimSpace(v)); v != "" {
		c.Address = v
	}
}

// SetPhone records the phone number.
func (c *Contractor) SetPhone(v string) {
	if v = NormalizeNewlines(strings.TrimSpace(v)); v != "" {
		c.Phone = v
	}
}

// SetEmail records the email address.
func (c *Contractor) SetEmail(v string) {
	if v = NormalizeNewlines(strings.TrimSpace(v)); v != "" {
		c.Email = v
	}
}

// AddService adds a service offered by the contractor, ignoring duplicates.
func (c *Contractor) AddService(service string) {
	service = strings.TrimSpace(service)
	if service == "" {
		return
	}
	for _, s := range c.Services {
		if strings.EqualFold(s, service) {
			return
		}
	}
	c.Services = append(c.Services, service)
}

// Setter returns the setter for the given field.
func (c *Contractor) Setter(kind FieldKind) func(string) {
	switch kind {
	case FieldAddress:
		return c.SetAddress
	case FieldPhone:
		return c.SetPhone
	case FieldEmail:
		return c.SetEmail
	default:
		return func(string) {}
	}
}

// Field returns the current value of the given field.
func (c *Contractor) Field(kind FieldKind) string {
	switch kind {
	case FieldAddress:
		return c.Address
	case FieldPhone:
		return c.Phone
	case FieldEmail:
		return c.Email
	default:
		return ""
	}
}

// Missing lists the fields that are still unset.
func (c *Contractor) Missing() []FieldKind {
	var missing []FieldKind
	for _, kind := range AllFields() {
		if c.Field(kind) == "" {
			missing = append(missing, kind)
		}
	}
	return missing
}

var newlineReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NormalizeNewlines converts CRLF and lone CR line breaks to LF. Stored values
// never hold a CR, since CSV readers fold CRLF inside quoted fields.
func NormalizeNewlines(s string) string {
	return newlineReplacer.Replace(s)
}

var titleCaser = cases.Title(language.English)

// NormalizeTitle collapses whitespace and title-cases a company name.
func NormalizeTitle(title string) string {
	title = strings.Join(strings.Fields(title), " ")
	return titleCaser.String(title)
}

// SearchResult is a single organic result returned by the search provider.
type SearchResult struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Page is a fetched document reduced to its sanitized <body>.
type Page struct {
	URL          string    `json:"url"`
	StatusCode   int       `json:"status_code"`
	HTML         string    `json:"html"`
	FetchedAt    time.Time `json:"fetched_at"`
	ResponseTime int64     `json:"response_time_ms"`
	Rendered     bool      `json:"rendered,omitempty"`
}

// Document parses a fresh copy of the page. Callers may mutate the result freely.
func (p *Page) Document() (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(p.HTML))
}

// SiteMap holds the secondary pages worth visiting on a contractor's site.
type SiteMap struct {
	About   string `json:"about,omitempty"`
	Contact string `json:"contact,omitempty"`
}

// Pages returns the discovered pages in visit order.
func (s SiteMap) Pages() []string {
	var pages []string
	if s.About != "" {
		pages = append(pages, s.About)
	}
	if s.Contact != "" {
		pages = append(pages, s.Contact)
	}
	return pages
}
