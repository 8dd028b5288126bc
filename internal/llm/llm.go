// Package llm provides access to chat-completion models used as text classifiers.
package llm

import (
	"context"
	"errors"

	"golang.org/x/time/rate"
)

var (
	// ErrNoAPIKey is returned when a provider has no credentials configured.
	ErrNoAPIKey = errors.New("no LLM API key configured")

	// ErrRateLimited is transient: the request may succeed after waiting.
	ErrRateLimited = errors.New("LLM rate limit exceeded")

	// ErrInputTooLarge means the prompt does not fit the model context and
	// retrying the same input is pointless.
	ErrInputTooLarge = errors.New("LLM input too large")
)

// Provider is a chat-completion backend.
type Provider interface {
	// Name identifies the provider and model, and is part of cache keys.
	Name() string

	// Complete sends a single user prompt and returns the model's answer.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client wraps a Provider with an optional request throttle and response cache.
type Client struct {
	provider Provider
	limiter  *rate.Limiter
	cache    *Cache
}

// Option configures a Client.
type Option func(*Client)

// WithLimiter throttles requests that miss the cache.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithCache serves repeated prompts from a persistent cache.
func WithCache(cache *Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// NewClient creates a new LLM client for the given provider.
func NewClient(p Provider, opts ...Option) *Client {
	c := &Client{provider: p}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete answers prompt from the cache when possible, otherwise asks the provider.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.provider == nil {
		return "", ErrNoAPIKey
	}

	if c.cache != nil {
		if answer, ok := c.cache.Get(ctx, c.provider.Name(), prompt); ok {
			return answer, nil
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	answer, err := c.provider.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	if c.cache != nil {
		c.cache.Put(ctx, c.provider.Name(), prompt, answer)
	}
	return answer, nil
}
