package web_search

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mohammad-safakhou/wayfarer/config"
	"github.com/mohammad-safakhou/wayfarer/internal/metrics"
	"github.com/mohammad-safakhou/wayfarer/tools/web_search/brave"
	"github.com/mohammad-safakhou/wayfarer/tools/web_search/google"
	"github.com/mohammad-safakhou/wayfarer/tools/web_search/models"
	"github.com/mohammad-safakhou/wayfarer/tools/web_search/serper"
	"github.com/rs/zerolog"
)

// WebSearcher is a raw provider call. It returns provider errors as-is.
type WebSearcher interface {
	Discover(ctx context.Context, q string, k int) ([]models.Result, error)
}

type Provider string

const (
	GoogleProvider Provider = config.SearchProviderGoogle
	SerperProvider Provider = config.SearchProviderSerper
	BraveProvider  Provider = config.SearchProviderBrave
)

func NewWebSearcher(cfg config.SearchConfig, client *http.Client) (WebSearcher, error) {
	switch Provider(cfg.Provider) {
	case GoogleProvider, "":
		return google.Search{ApiKey: cfg.APIKey, EngineID: cfg.EngineID, Endpoint: cfg.Endpoint, Client: client}, nil
	case SerperProvider:
		return serper.Search{ApiKey: cfg.APIKey, Endpoint: cfg.Endpoint, Client: client}, nil
	case BraveProvider:
		return brave.Search{ApiKey: cfg.APIKey, Endpoint: cfg.Endpoint, Client: client}, nil
	default:
		return nil, fmt.Errorf("unsupported search provider %q", cfg.Provider)
	}
}

// Client is the fail-soft search entry point used by the request pipeline:
// it never returns an error, an unavailable provider simply yields nothing.
type Client struct {
	provider   string
	configured bool
	maxResults int
	searcher   WebSearcher
	log        zerolog.Logger
	metrics    *metrics.Metrics
}

func NewClient(cfg config.SearchConfig, log zerolog.Logger, m *metrics.Metrics) (*Client, error) {
	cfg = cfg.Normalize()
	searcher, err := NewWebSearcher(cfg, &http.Client{Timeout: cfg.Timeout})
	if err != nil {
		return nil, err
	}
	return &Client{
		provider:   cfg.Provider,
		configured: cfg.Configured(),
		maxResults: cfg.MaxResults,
		searcher:   searcher,
		log:        log.With().Str("component", "search").Str("provider", cfg.Provider).Logger(),
		metrics:    m,
	}, nil
}

// Configured reports whether the provider credentials are present.
func (c *Client) Configured() bool { return c.configured }

// Search returns up to numResults ranked results for query, or an empty slice
// when search is not configured or the provider fails.
func (c *Client) Search(ctx context.Context, query string, numResults int) []models.Result {
	query = strings.TrimSpace(query)
	if !c.configured || query == "" {
		c.metrics.ObserveSearch(c.provider, metrics.OutcomeSkipped)
		return []models.Result{}
	}
	if numResults <= 0 || numResults > c.maxResults {
		numResults = c.maxResults
	}

	results, err := c.searcher.Discover(ctx, query, numResults)
	if err != nil {
		c.log.Warn().Err(err).Str("query", query).Msg("web search failed")
		c.metrics.ObserveSearch(c.provider, metrics.OutcomeError)
		return []models.Result{}
	}
	if len(results) == 0 {
		c.metrics.ObserveSearch(c.provider, metrics.OutcomeEmpty)
		return []models.Result{}
	}
	c.metrics.ObserveSearch(c.provider, metrics.OutcomeOK)
	c.log.Debug().Str("query", query).Int("results", len(results)).Msg("web search done")
	return results
}
