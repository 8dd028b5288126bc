// Package proxy rotates outbound requests across a list of proxies, skipping
// the ones that failed recently.
package proxy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// FailureCooldown is how long a failed proxy is skipped.
const FailureCooldown = 5 * time.Minute

// Pool manages a list of proxies with rotation and health tracking
type Pool struct {
	proxies []string
	index   int
	mu      sync.Mutex
	failed  map[string]time.Time
}

// ParseList splits a comma-separated proxy setting into its entries.
func ParseList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NewPool validates every proxy URL and creates a Pool.
func NewPool(proxies []string) (*Pool, error) {
	for _, p := range proxies {
		u, err := url.Parse(p)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy %q", p)
		}
	}
	return &Pool{
		proxies: proxies,
		failed:  make(map[string]time.Time),
	}, nil
}

// Len returns the number of configured proxies.
func (p *Pool) Len() int {
	return len(p.proxies)
}

// Next returns the next healthy proxy. When every proxy failed recently the
// rotation continues regardless.
func (p *Pool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	start := p.index
	for {
		proxy := p.proxies[p.index]
		p.index = (p.index + 1) % len(p.proxies)

		if failTime, ok := p.failed[proxy]; ok {
			if time.Since(failTime) < FailureCooldown {
				if p.index == start {
					return proxy
				}
				continue
			}
			delete(p.failed, proxy)
		}

		return proxy
	}
}

// MarkFailed marks a proxy as failed so it will be skipped for a while
func (p *Pool) MarkFailed(proxy string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[proxy] = time.Now()
}

// MarkHealthy clears the failure status of a proxy
func (p *Pool) MarkHealthy(proxy string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, proxy)
}

type proxyKey struct{}

// Transport wraps base so every request goes through the next proxy in the
// pool. Transport errors mark the proxy as failed.
func (p *Pool) Transport(base *http.Transport) http.RoundTripper {
	t := base.Clone()
	t.Proxy = func(req *http.Request) (*url.URL, error) {
		u, _ := req.Context().Value(proxyKey{}).(*url.URL)
		return u, nil
	}
	return &rotatingTransport{pool: p, base: t}
}

type rotatingTransport struct {
	pool *Pool
	base *http.Transport
}

func (rt *rotatingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	raw := rt.pool.Next()
	if raw == "" {
		return rt.base.RoundTrip(req)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}

	req = req.WithContext(context.WithValue(req.Context(), proxyKey{}, u))
	resp, err := rt.base.RoundTrip(req)
	if err != nil {
		if req.Context().Err() == nil {
			log.Debug().Err(err).Str("proxy", u.Redacted()).Msg("Proxy failed, rotating")
			rt.pool.MarkFailed(raw)
		}
		return nil, err
	}
	rt.pool.MarkHealthy(raw)
	return resp, nil
}

func (rt *rotatingTransport) CloseIdleConnections() {
	rt.base.CloseIdleConnections()
}
