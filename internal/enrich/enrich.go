// Package enrich runs web searches and augments the top hits with text
// extracted from the linked pages.
package enrich

import (
	"context"
	"fmt"
	"strings"

	fetchmodels "github.com/mohammad-safakhou/wayfarer/tools/web_fetch/models"
	"github.com/mohammad-safakhou/wayfarer/tools/web_search/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	// PlanTopN and PlanMaxChars bound the planning-info path.
	PlanTopN     = 5
	PlanMaxChars = 1500
	// QueryTopN and QueryMaxChars bound the search-endpoint path.
	QueryTopN     = 3
	QueryMaxChars = 1000

	resultsPerQuery = 10
	maxParallel     = 5
)

// Searcher is the fail-soft search port (tools/web_search.Client).
type Searcher interface {
	Search(ctx context.Context, query string, numResults int) []models.Result
}

// Fetcher is the fail-soft extraction port (tools/web_fetch.WebFetcher).
type Fetcher interface {
	Exec(ctx context.Context, url string, maxChars int) fetchmodels.Result
}

type Pipeline struct {
	search Searcher
	fetch  Fetcher
	log    zerolog.Logger
	limit  int
}

func NewPipeline(search Searcher, fetch Fetcher, log zerolog.Logger, parallel int) *Pipeline {
	if parallel <= 0 {
		parallel = maxParallel
	}
	return &Pipeline{
		search: search,
		fetch:  fetch,
		log:    log.With().Str("component", "enrich").Logger(),
		limit:  parallel,
	}
}

// PlanQueries returns the searches issued for a destination: attractions,
// food and lodging, plus one for the traveller's preferences when given.
func PlanQueries(destination string, days int, preferences string) []string {
	destination = strings.TrimSpace(destination)
	queries := []string{
		fmt.Sprintf("%s %d day itinerary top attractions", destination, days),
		fmt.Sprintf("%s best local food restaurants", destination),
		fmt.Sprintf("%s where to stay hotels accommodation", destination),
	}
	if p := strings.TrimSpace(preferences); p != "" {
		queries = append(queries, fmt.Sprintf("%s %s", destination, p))
	}
	return queries
}

// Enrich gathers planning information for a destination. An empty result
// means no information was available; it is not an error.
func (p *Pipeline) Enrich(ctx context.Context, destination string, days int, preferences string) []models.Result {
	queries := PlanQueries(destination, days, preferences)
	batches := make([][]models.Result, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.limit)
	for i, q := range queries {
		g.Go(func() error {
			batches[i] = p.search.Search(gctx, q, resultsPerQuery)
			return nil
		})
	}
	_ = g.Wait()

	var all []models.Result
	for _, b := range batches {
		all = append(all, b...)
	}
	unique := Dedup(all)
	p.log.Debug().Int("queries", len(queries)).Int("results", len(all)).Int("unique", len(unique)).Msg("planning searches done")
	if len(unique) == 0 {
		return []models.Result{}
	}
	return p.EnrichResults(ctx, unique, PlanTopN, PlanMaxChars)
}

// EnrichQuery runs a single search for query and enriches the top hits.
func (p *Pipeline) EnrichQuery(ctx context.Context, query string) []models.Result {
	results := Dedup(p.search.Search(ctx, query, resultsPerQuery))
	if len(results) == 0 {
		return []models.Result{}
	}
	return p.EnrichResults(ctx, results, QueryTopN, QueryMaxChars)
}

// EnrichResults extracts page text for the first n results. Every one of those
// results is returned in input order; a result whose page could not be
// extracted keeps only its snippet.
func (p *Pipeline) EnrichResults(ctx context.Context, results []models.Result, n, maxChars int) []models.Result {
	if n > len(results) || n <= 0 {
		n = len(results)
	}
	out := make([]models.Result, n)
	copy(out, results[:n])

	var g errgroup.Group
	g.SetLimit(p.limit)
	for i := range out {
		g.Go(func() error {
			out[i] = p.enrichOne(ctx, out[i], maxChars)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (p *Pipeline) enrichOne(ctx context.Context, r models.Result, maxChars int) (enriched models.Result) {
	enriched = r
	defer func() {
		if rec := recover(); rec != nil {
			p.log.Warn().Str("url", r.Link).Interface("panic", rec).Msg("content extraction panicked, keeping snippet")
			enriched = degrade(r)
		}
	}()

	res := p.fetch.Exec(ctx, r.Link, maxChars)
	if !res.Ok() {
		p.log.Warn().Err(res.Err).Str("url", r.Link).Int("status", res.Status).Msg("content extraction failed, keeping snippet")
		return degrade(r)
	}
	enriched.Content = res.Text
	enriched.IsLinkOnly = false
	return enriched
}

func degrade(r models.Result) models.Result {
	r.Content = ""
	r.IsLinkOnly = strings.TrimSpace(r.Snippet) == ""
	return r
}

// Dedup drops results whose link was already seen, keeping the first
// occurrence and the original order.
func Dedup(results []models.Result) []models.Result {
	seen := make(map[string]struct{}, len(results))
	out := make([]models.Result, 0, len(results))
	for _, r := range results {
		if _, ok := seen[r.Link]; ok {
			continue
		}
		seen[r.Link] = struct{}{}
		out = append(out, r)
	}
	return out
}
