package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/wayfarer/internal/enrich"
	"github.com/mohammad-safakhou/wayfarer/internal/failures"
	"github.com/mohammad-safakhou/wayfarer/internal/helpers"
	"github.com/mohammad-safakhou/wayfarer/internal/metrics"
	"github.com/mohammad-safakhou/wayfarer/internal/planner"
	"github.com/mohammad-safakhou/wayfarer/tools/web_search/models"
	"github.com/rs/zerolog"
)

var (
	errSearchNotConfigured = failures.New(failures.Configuration, "search not configured")
	errNoResults           = failures.New(failures.NotFound, "no results found")
)

type SearchHandler struct {
	Search    SearchClient
	Enrich    *enrich.Pipeline
	Generator *planner.Generator
	Metrics   *metrics.Metrics
	Log       zerolog.Logger
}

func (h *SearchHandler) Register(g *echo.Group) {
	g.POST("/search", h.search)
	g.OPTIONS("/search", h.preflight)
}

func (h *SearchHandler) preflight(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// search summarises the top hits for a free-text query. A failed summary does
// not fail the request: the references are returned with summaryError set.
func (h *SearchHandler) search(c echo.Context) error {
	var body SearchRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	query := strings.TrimSpace(body.Query)
	if query == "" {
		return failures.New(failures.Validation, "query is required")
	}
	if !h.Search.Configured() {
		return errSearchNotConfigured
	}

	ctx := c.Request().Context()
	results := h.Enrich.EnrichQuery(ctx, query)
	if len(results) == 0 {
		h.Metrics.ObserveSearchResponse(metrics.OutcomeEmpty)
		return errNoResults
	}
	references := models.References(results)

	summary, err := h.Generator.Summarize(ctx, query, results)
	if err != nil {
		h.Log.Warn().Err(err).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Str("query", query).
			Msg("summary failed, answering with references only")
		h.Metrics.ObserveSearchResponse(metrics.OutcomeDegraded)
		return c.JSON(http.StatusOK, SearchResponse{
			Success:      true,
			Summary:      degradedSummary(failures.Describe(failures.Classify(err)), results),
			References:   references,
			UsingAPI:     true,
			SummaryError: true,
		})
	}
	h.Metrics.ObserveSearchResponse(metrics.OutcomeOK)
	return c.JSON(http.StatusOK, SearchResponse{
		Success:    true,
		Summary:    summary,
		References: references,
		UsingAPI:   true,
	})
}

func degradedSummary(explanation string, results []models.Result) string {
	var b strings.Builder
	b.WriteString(explanation)
	b.WriteString(". Here are the search results:\n")
	for i, r := range results {
		if host := helpers.LinkHost(r.Link); host != "" {
			fmt.Fprintf(&b, "\n%d. %s (%s)\n", i+1, r.Title, host)
		} else {
			fmt.Fprintf(&b, "\n%d. %s\n", i+1, r.Title)
		}
		if s := strings.TrimSpace(r.Snippet); s != "" {
			fmt.Fprintf(&b, "   %s\n", s)
		}
		fmt.Fprintf(&b, "   %s\n", r.Link)
	}
	return strings.TrimRight(b.String(), "\n")
}
