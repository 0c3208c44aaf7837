package web_fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mohammad-safakhou/wayfarer/config"
	"github.com/mohammad-safakhou/wayfarer/internal/metrics"
	"github.com/mohammad-safakhou/wayfarer/tools/web_fetch/models"
	"github.com/mohammad-safakhou/wayfarer/tools/web_fetch/page"
	"github.com/mohammad-safakhou/wayfarer/tools/web_fetch/readability"
	"github.com/mohammad-safakhou/wayfarer/tools/web_fetch/selector"
)

const (
	DefaultTimeout  = 10 * time.Second
	MaxCharsDefault = 1500
)

// WebFetcher turns a URL into a bounded plain-text excerpt. Implementations
// never panic or return errors; failures are reported in the Result.
type WebFetcher interface {
	Exec(ctx context.Context, url string, maxChars int) models.Result
}

type FetcherType string

const (
	SelectorFetcherType    FetcherType = config.ExtractEngineSelector
	ReadabilityFetcherType FetcherType = config.ExtractEngineReadability
)

func NewWebFetcher(cfg config.ExtractConfig, m *metrics.Metrics) (WebFetcher, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}
	client := &http.Client{Timeout: timeout}

	var inner WebFetcher
	switch FetcherType(cfg.Engine) {
	case SelectorFetcherType, "":
		inner = selector.Fetch{Client: client, UserAgent: userAgent}
	case ReadabilityFetcherType:
		inner = readability.Fetch{Client: client, UserAgent: userAgent}
	default:
		return nil, fmt.Errorf("unsupported fetcher type %q", cfg.Engine)
	}
	engine := cfg.Engine
	if engine == "" {
		engine = string(SelectorFetcherType)
	}
	return guarded{inner: inner, engine: engine, metrics: m}, nil
}

// guarded records metrics and turns a panicking engine into a failed Result.
type guarded struct {
	inner   WebFetcher
	engine  string
	metrics *metrics.Metrics
}

func (g guarded) Exec(ctx context.Context, url string, maxChars int) (res models.Result) {
	if maxChars <= 0 {
		maxChars = MaxCharsDefault
	}
	defer func() {
		if r := recover(); r != nil {
			res = models.Failed(url, page.StatusFailed, fmt.Errorf("extract %s: panic: %v", url, r))
		}
		outcome := metrics.OutcomeOK
		if !res.Ok() {
			outcome = metrics.OutcomeError
		}
		g.metrics.ObserveExtract(g.engine, outcome)
	}()
	return g.inner.Exec(ctx, url, maxChars)
}
