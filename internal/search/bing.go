// Package search finds candidate contractor websites through a web search API.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/law-makers/contractors/internal/retry"
	"github.com/law-makers/contractors/pkg/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const defaultBingEndpoint = "https://api.bing.microsoft.com/v7.0/search"

// ErrNoSubscriptionKey is returned when no Bing key is configured.
var ErrNoSubscriptionKey = errors.New("bing search subscription key not configured")

// Client runs a single paged web search.
type Client interface {
	Search(ctx context.Context, query string, count, offset int) ([]models.SearchResult, error)
}

// Bing queries the Bing Web Search v7 API.
type Bing struct {
	key      string
	endpoint string
	market   string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewBing creates a Bing client. If key is empty, BING_SEARCH_V7_SUBSCRIPTION_KEY
// is used. limiter may be nil.
func NewBing(key string, client *http.Client, limiter *rate.Limiter) *Bing {
	if key == "" {
		key = os.Getenv("BING_SEARCH_V7_SUBSCRIPTION_KEY")
	}
	if client == nil {
		client = &http.Client{}
	}
	return &Bing{
		key:      key,
		endpoint: defaultBingEndpoint,
		market:   "en-US",
		client:   client,
		limiter:  limiter,
	}
}

// WithEndpoint overrides the API endpoint.
func (b *Bing) WithEndpoint(endpoint string) *Bing {
	if endpoint != "" {
		b.endpoint = endpoint
	}
	return b
}

type bingResponse struct {
	WebPages struct {
		Value []struct {
			Name    string `json:"name"`
			Snippet string `json:"snippet"`
			URL     string `json:"url"`
		} `json:"value"`
	} `json:"webPages"`
}

// Search returns up to count organic results starting at offset.
func (b *Bing) Search(ctx context.Context, query string, count, offset int) ([]models.SearchResult, error) {
	if b.key == "" {
		return nil, ErrNoSubscriptionKey
	}
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("mkt", b.market)
	params.Set("responseFilters", "webpages")
	params.Set("count", strconv.Itoa(count))
	params.Set("offset", strconv.Itoa(offset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", b.key)

	log.Debug().Str("query", query).Int("count", count).Int("offset", offset).Msg("Searching")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, retry.NewHTTPError(resp.StatusCode, resp.Status, strings.TrimSpace(string(body)))
	}

	var parsed bingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	results := make([]models.SearchResult, 0, len(parsed.WebPages.Value))
	for _, v := range parsed.WebPages.Value {
		results = append(results, models.SearchResult{
			Title:       v.Name,
			Description: v.Snippet,
			URL:         v.URL,
		})
	}
	return results, nil
}
