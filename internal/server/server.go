package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mohammad-safakhou/wayfarer/config"
	"github.com/mohammad-safakhou/wayfarer/internal/enrich"
	"github.com/mohammad-safakhou/wayfarer/internal/failures"
	"github.com/mohammad-safakhou/wayfarer/internal/metrics"
	"github.com/mohammad-safakhou/wayfarer/internal/planner"
	"github.com/mohammad-safakhou/wayfarer/provider"
	openai_provider "github.com/mohammad-safakhou/wayfarer/provider/openai"
	"github.com/mohammad-safakhou/wayfarer/tools/web_fetch"
	"github.com/mohammad-safakhou/wayfarer/tools/web_search"
	"github.com/mohammad-safakhou/wayfarer/tools/web_search/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// SearchClient is the fail-soft search dependency of the API.
type SearchClient interface {
	Configured() bool
	Search(ctx context.Context, query string, numResults int) []models.Result
}

// Deps are the collaborators the API is built from. Registry and Metrics may
// be nil.
type Deps struct {
	Config   *config.Config
	Log      zerolog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	LLM      provider.Provider
	Search   SearchClient
	Fetch    web_fetch.WebFetcher
}

// Build wires the production dependencies from cfg.
func Build(cfg *config.Config, log zerolog.Logger) (Deps, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	search, err := web_search.NewClient(cfg.Search, log, m)
	if err != nil {
		return Deps{}, fmt.Errorf("search client: %w", err)
	}
	fetch, err := web_fetch.NewWebFetcher(cfg.Extract, m)
	if err != nil {
		return Deps{}, fmt.Errorf("content extractor: %w", err)
	}
	if !search.Configured() {
		log.Warn().Str("provider", cfg.Search.Provider).Msg("search is not configured, /api/search and /api/travel-info will answer 400")
	}
	if cfg.LLM.APIKey == "" {
		log.Warn().Msg("llm.api_key is not set, completions will fail with an authentication error")
	}
	return Deps{
		Config:   cfg,
		Log:      log,
		Registry: reg,
		Metrics:  m,
		LLM:      openai_provider.NewOpenAIClient(cfg.LLM, log),
		Search:   search,
		Fetch:    fetch,
	}, nil
}

// New builds the echo instance serving the API.
func New(d Deps) *echo.Echo {
	cfg := d.Config
	if cfg == nil {
		c := config.Config{}.Normalize()
		cfg = &c
	}
	log := d.Log.With().Str("component", "http").Logger()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			d.Metrics.ObserveHTTP(c.Path(), strconv.Itoa(v.Status))
			ev := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID},
	}))
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// Unified HTTP error handler with structured JSON and logging
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, msg := describe(err)
		req := c.Request()
		log.Warn().Err(err).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Int("status", code).
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Msg("request failed")
		if req.Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		if c.Path() == planPath || req.URL.Path == planPath {
			_ = c.JSON(code, PlanResponse{Success: false, Error: msg, References: []models.Reference{}})
			return
		}
		_ = c.JSON(code, ErrorResponse{Success: false, Error: msg})
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if cfg.Telemetry.Enabled && d.Registry != nil {
		e.GET(cfg.Telemetry.MetricsPath, echo.WrapHandler(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}
	if dir := cfg.Server.StaticDir; dir != "" {
		e.File("/", filepath.Join(dir, "index.html"))
		e.Static("/static", dir)
	}

	parallel := cfg.Extract.Concurrency
	generator := planner.NewGenerator(d.LLM, d.Log, d.Metrics)
	pipeline := enrich.NewPipeline(d.Search, d.Fetch, d.Log, parallel)

	api := e.Group("/api")
	(&PlanHandler{Generator: generator}).Register(api)
	(&SearchHandler{Search: d.Search, Enrich: pipeline, Generator: generator, Metrics: d.Metrics, Log: d.Log}).Register(api)
	(&TravelInfoHandler{Search: d.Search, Enrich: pipeline}).Register(api)
	return e
}

// Run serves the API until SIGINT or SIGTERM.
func Run(cfg *config.Config, log zerolog.Logger) error {
	deps, err := Build(cfg, log)
	if err != nil {
		return err
	}
	e := New(deps)
	e.Server.ReadHeaderTimeout = 10 * time.Second
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Address).Msg("listening")
		errCh <- e.Start(cfg.Server.Address)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// describe maps err to a status code and a client-facing message.
func describe(err error) (int, string) {
	var fe *failures.Error
	if errors.As(err, &fe) {
		switch fe.Kind {
		case failures.Validation, failures.Configuration, failures.NotFound:
			return fe.Kind.Status(), fe.Message
		default:
			return fe.Kind.Status(), failures.Describe(fe.Kind)
		}
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
		return he.Code, msg
	}
	return http.StatusInternalServerError, "internal server error"
}
