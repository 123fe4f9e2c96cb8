package search

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	ProviderSerpAPI = "serpapi"
	ProviderBrave   = "brave"

	// DefaultTimeout bounds a single search request.
	DefaultTimeout = 30 * time.Second
)

// Result is one organic search result.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// Searcher returns up to limit organic results for query.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// Options configures New.
type Options struct {
	Provider string
	APIKey   string
	// BaseURL overrides the provider endpoint, mainly for tests.
	BaseURL string
	Timeout time.Duration
	// RatePerSecond limits request rate; zero or negative means unlimited.
	RatePerSecond float64
}

// New builds the Searcher for opts.Provider.
func New(opts Options) (Searcher, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("search API key is required for provider %q", opts.Provider)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	client := &http.Client{Timeout: opts.Timeout}

	var s Searcher
	switch strings.ToLower(opts.Provider) {
	case "", ProviderSerpAPI:
		s = NewSerpAPI(opts.APIKey, opts.BaseURL, client)
	case ProviderBrave:
		s = NewBrave(opts.APIKey, opts.BaseURL, client)
	default:
		return nil, fmt.Errorf("unknown search provider: %s (must be %q or %q)", opts.Provider, ProviderSerpAPI, ProviderBrave)
	}

	if opts.RatePerSecond > 0 {
		s = NewLimited(s, rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1))
	}
	return s, nil
}

// Limited waits on a rate limiter before every search.
type Limited struct {
	next    Searcher
	limiter *rate.Limiter
}

// NewLimited wraps next with limiter.
func NewLimited(next Searcher, limiter *rate.Limiter) *Limited {
	return &Limited{next: next, limiter: limiter}
}

// Search waits for the limiter and delegates.
func (l *Limited) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}
	return l.next.Search(ctx, query, limit)
}

func truncate(results []Result, limit int) []Result {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
