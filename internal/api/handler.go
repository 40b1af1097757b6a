// Package api exposes the analysis engine over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"trading-advisor/internal/cache"
	"trading-advisor/internal/engine"
	"trading-advisor/internal/metrics"
	"trading-advisor/internal/model"
)

// Handler serves the advisor REST endpoints.
type Handler struct {
	eng      *engine.Engine
	cache    cache.Cache
	cacheTTL time.Duration
	maxBars  int
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewHandler wires the engine and its supporting services into an HTTP
// handler. A nil cache disables response caching.
func NewHandler(eng *engine.Engine, c cache.Cache, ttl time.Duration, maxBars int, m *metrics.Metrics, log zerolog.Logger) *Handler {
	if c == nil {
		c = cache.Nop{}
	}
	return &Handler{
		eng:      eng,
		cache:    c,
		cacheTTL: ttl,
		maxBars:  maxBars,
		metrics:  m,
		log:      log.With().Str("component", "api").Logger(),
	}
}

// RegisterRoutes mounts the v1 API on e.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.GET("/health", h.Health)
	g.GET("/patterns", h.Patterns)
	g.POST("/analyze", h.Analyze)
	g.POST("/analyze/batch", h.AnalyzeBatch)
}

// Health reports liveness of the API listener.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Patterns lists every candlestick pattern the matcher recognizes.
func (h *Handler) Patterns(c echo.Context) error {
	return c.JSON(http.StatusOK, h.eng.PatternCatalog())
}

// Analyze runs the full analysis pass over one bar series.
func (h *Handler) Analyze(c echo.Context) error {
	req := &AnalyzeRequest{}
	if verr := bindAndValidate(c, req); verr != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request", Details: verr})
	}
	if len(req.Bars) > h.maxBars {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "too many bars: limit is " + model.Itoa(h.maxBars),
		})
	}

	eng, cfg, err := h.resolveEngine(req.Engine)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	ctx := c.Request().Context()
	key := cacheKey(req.Symbol, req.Bars, cfg)
	if cached, ok := h.cache.Get(ctx, key); ok {
		h.metrics.CacheHits.Inc()
		return c.JSONBlob(http.StatusOK, cached)
	}
	h.metrics.CacheMisses.Inc()

	resp, status, errResp := h.analyzeOne(req.Symbol, req.Bars, eng)
	if errResp != nil {
		return c.JSON(status, errResp)
	}

	body, err := json.Marshal(resp)
	if err != nil {
		h.log.Error().Err(err).Msg("marshal analysis response")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	h.cache.Set(ctx, key, body, h.cacheTTL)
	return c.JSONBlob(http.StatusOK, body)
}

// AnalyzeBatch analyzes several series in one call. Series fail
// independently; the reply is 200 as long as the envelope is valid.
func (h *Handler) AnalyzeBatch(c echo.Context) error {
	req := &BatchRequest{}
	if verr := bindAndValidate(c, req); verr != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request", Details: verr})
	}

	eng, _, err := h.resolveEngine(req.Engine)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	out := BatchResponse{Results: make([]BatchResult, 0, len(req.Series))}
	for _, s := range req.Series {
		if len(s.Bars) > h.maxBars {
			out.Results = append(out.Results, BatchResult{
				Symbol: s.Symbol,
				Error:  "too many bars: limit is " + model.Itoa(h.maxBars),
			})
			continue
		}
		resp, _, errResp := h.analyzeOne(s.Symbol, s.Bars, eng)
		if errResp != nil {
			out.Results = append(out.Results, BatchResult{Symbol: s.Symbol, Error: errResp.Error})
			continue
		}
		out.Results = append(out.Results, BatchResult{Symbol: s.Symbol, Analysis: resp})
	}
	return c.JSON(http.StatusOK, out)
}

// resolveEngine returns the per-request engine: the shared one, or a
// fresh one when the request carries a tuning override.
func (h *Handler) resolveEngine(override *engine.Config) (*engine.Engine, engine.Config, error) {
	if override == nil {
		return h.eng, h.eng.Config(), nil
	}
	eng, err := engine.New(*override)
	if err != nil {
		return nil, engine.Config{}, err
	}
	return eng, *override, nil
}

// analyzeOne runs one series through the engine and records metrics.
// Domain failures come back as an ErrorResponse with its HTTP status.
func (h *Handler) analyzeOne(symbol string, dtos []BarDTO, eng *engine.Engine) (*AnalyzeResponse, int, *ErrorResponse) {
	bars := toBars(dtos)

	start := time.Now()
	analysis, err := eng.Analyze(bars)
	if err != nil {
		h.log.Debug().Err(err).Str("symbol", symbol).Msg("analysis rejected")
		return nil, http.StatusUnprocessableEntity, &ErrorResponse{Error: err.Error()}
	}
	h.metrics.AnalyzeDur.Observe(time.Since(start).Seconds())
	h.metrics.BarsPerRequest.Observe(float64(len(bars)))
	h.metrics.SignalsTotal.WithLabelValues(string(analysis.Signal.Action)).Inc()

	last := len(bars) - 1
	for _, m := range analysis.Patterns {
		if m.Index == last {
			h.metrics.PatternsMatched.WithLabelValues(m.Name).Inc()
		}
	}

	h.log.Info().
		Str("symbol", symbol).
		Int("bars", len(bars)).
		Str("action", string(analysis.Signal.Action)).
		Float64("score", analysis.Signal.Score).
		Msg("series analyzed")

	return &AnalyzeResponse{
		Symbol:     symbol,
		Bars:       len(bars),
		AnalyzedAt: time.Now().UTC(),
		Analysis:   *analysis,
	}, http.StatusOK, nil
}
