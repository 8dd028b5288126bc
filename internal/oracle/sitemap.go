package oracle

import (
	"context"
	"encoding/json"
	"strings"

	urlutil "github.com/law-makers/contractors/internal/utils/url"
	"github.com/law-makers/contractors/pkg/models"
	"github.com/rs/zerolog/log"
)

// SiteMap picks the About and Contact pages out of a homepage's links.
type SiteMap struct {
	completer Completer
}

// NewSiteMap creates a SiteMap oracle.
func NewSiteMap(c Completer) *SiteMap {
	return &SiteMap{completer: c}
}

type siteMapInput struct {
	Homepage string
	Links    []string
}

// Identify asks the model which of links are the About and Contact pages.
// Pages it cannot identify, or answers pointing off-site, are left empty.
func (s *SiteMap) Identify(ctx context.Context, homepage string, links []string) (models.SiteMap, error) {
	prompt, err := render(siteMapPrompt, siteMapInput{Homepage: homepage, Links: links})
	if err != nil {
		return models.SiteMap{}, err
	}
	answer, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return models.SiteMap{}, err
	}
	return ParseSiteMap(homepage, answer), nil
}

// ParseSiteMap decodes the model's JSON answer, dropping unusable URLs.
// An answer that is not JSON resolves neither page.
func ParseSiteMap(homepage, answer string) models.SiteMap {
	raw := stripFences(answer)
	if start, end := strings.IndexByte(raw, '{'), strings.LastIndexByte(raw, '}'); start >= 0 && end > start {
		raw = raw[start : end+1]
	}

	var parsed struct {
		About   string `json:"about"`
		Contact string `json:"contact"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		log.Debug().Err(err).Str("homepage", homepage).Str("answer", answer).Msg("Unparseable site map answer")
		return models.SiteMap{}
	}

	return models.SiteMap{
		About:   sameSite(homepage, parsed.About),
		Contact: sameSite(homepage, parsed.Contact),
	}
}

func sameSite(homepage, link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	link = urlutil.StripFragment(urlutil.ResolveURL(homepage, link))
	if !urlutil.IsHTTP(link) || !urlutil.SameHost(homepage, link) {
		log.Debug().Str("homepage", homepage).Str("link", link).Msg("Discarding off-site page from site map")
		return ""
	}
	return link
}
