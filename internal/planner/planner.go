// Package planner turns travel requests and enriched search results into
// prompts and runs them through the configured completion provider.
package planner

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"strings"
	"text/template"
	"time"

	"github.com/mohammad-safakhou/wayfarer/internal/failures"
	"github.com/mohammad-safakhou/wayfarer/internal/metrics"
	"github.com/mohammad-safakhou/wayfarer/provider"
	"github.com/mohammad-safakhou/wayfarer/tools/web_search/models"
	"github.com/rs/zerolog"
)

//go:embed prompts/plan.tmpl
var planPrompt string

//go:embed prompts/summary.tmpl
var summaryPrompt string

// PlanHeader is the section every generated plan opens with.
const PlanHeader = "## Travel Plan Overview"

const (
	ModePlan    = "plan"
	ModeSummary = "summary"

	planSystemPrompt    = "You are a professional travel planner. You write detailed, practical travel plans that are clearly structured, accurate and realistic."
	summarySystemPrompt = "You are a travel research assistant. You summarise web search results accurately and cite the sources you rely on."
)

// Completion settings per mode.
var (
	PlanSettings    = provider.Completion{MaxTokens: 2000, Temperature: 0.7, Timeout: 60 * time.Second}
	SummarySettings = provider.Completion{MaxTokens: 1500, Temperature: 0.7, Timeout: 120 * time.Second}
)

var (
	planTemplate    = template.Must(template.New("plan").Parse(planPrompt))
	summaryTemplate = template.Must(template.New("summary").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).Parse(summaryPrompt))
)

// PlanRequest is a validated travel-plan request.
type PlanRequest struct {
	Days        int
	Destination string
	Budget      string
	Preferences string
}

type Generator struct {
	llm     provider.Provider
	log     zerolog.Logger
	metrics *metrics.Metrics
}

func NewGenerator(llm provider.Provider, log zerolog.Logger, m *metrics.Metrics) *Generator {
	return &Generator{
		llm:     llm,
		log:     log.With().Str("component", "planner").Logger(),
		metrics: m,
	}
}

// PlanPrompt renders the user prompt for a plan request.
func PlanPrompt(req PlanRequest) (string, error) {
	var buf bytes.Buffer
	err := planTemplate.Execute(&buf, PlanRequest{
		Days:        req.Days,
		Destination: strings.TrimSpace(req.Destination),
		Budget:      strings.TrimSpace(req.Budget),
		Preferences: strings.TrimSpace(req.Preferences),
	})
	return buf.String(), err
}

// SummaryPrompt renders the user prompt for a search summary, one numbered
// source block per result.
func SummaryPrompt(query string, results []models.Result) (string, error) {
	var buf bytes.Buffer
	err := summaryTemplate.Execute(&buf, struct {
		Query   string
		Sources []models.Result
	}{Query: strings.TrimSpace(query), Sources: results})
	return buf.String(), err
}

// Plan generates a day-by-day itinerary. Search results are not used.
func (g *Generator) Plan(ctx context.Context, req PlanRequest) (string, error) {
	user, err := PlanPrompt(req)
	if err != nil {
		return "", failures.Wrap(failures.Internal, "could not build plan prompt", err)
	}
	call := PlanSettings
	call.System, call.User = planSystemPrompt, user

	plan, err := g.complete(ctx, ModePlan, call)
	if err != nil {
		return "", err
	}
	if !strings.Contains(plan, "Travel Plan Overview") {
		plan = PlanHeader + "\n\n" + plan
	}
	return plan, nil
}

// Summarize answers query from the enriched results.
func (g *Generator) Summarize(ctx context.Context, query string, results []models.Result) (string, error) {
	user, err := SummaryPrompt(query, results)
	if err != nil {
		return "", failures.Wrap(failures.Internal, "could not build summary prompt", err)
	}
	call := SummarySettings
	call.System, call.User = summarySystemPrompt, user
	return g.complete(ctx, ModeSummary, call)
}

func (g *Generator) complete(ctx context.Context, mode string, call provider.Completion) (string, error) {
	start := time.Now()
	out, err := g.llm.Complete(ctx, call)
	took := time.Since(start)
	if err != nil {
		kind := failures.Classify(err)
		g.metrics.ObserveCompletion(mode, metrics.OutcomeError, took)
		g.log.Error().Err(err).Str("mode", mode).Str("kind", string(kind)).Dur("took", took).Msg("completion failed")
		var fe *failures.Error
		if errors.As(err, &fe) {
			return "", err
		}
		return "", failures.Wrap(kind, "completion failed", err)
	}
	g.metrics.ObserveCompletion(mode, metrics.OutcomeOK, took)
	g.log.Info().Str("mode", mode).Dur("took", took).Int("chars", len(out)).Msg("completion done")
	return out, nil
}
