// Package engine orchestrates the indicator calculator, the pattern
// matcher, and the signal combiner into one analysis pass.
//
// The engine is stateless and side-effect-free: every Analyze call
// recomputes from the full bar sequence, never logs, and holds no shared
// mutable state, so concurrent invocations (one per symbol) need no
// coordination.
package engine

import (
	"trading-advisor/internal/indicator"
	"trading-advisor/internal/model"
	"trading-advisor/internal/pattern"
)

// Engine computes indicators, pattern matches, and a consolidated signal
// from OHLCV bar sequences. Safe for concurrent use.
type Engine struct {
	cfg     Config
	matcher *pattern.Matcher
}

// New creates an engine with the given config. Returns an
// InvalidConfigError when the config cannot be run with.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:     cfg,
		matcher: pattern.NewMatcher(),
	}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// PatternCatalog returns reference info for every pattern the matcher knows.
func (e *Engine) PatternCatalog() []pattern.Info { return e.matcher.Catalog() }

// Analyze runs the full pass over a bar sequence: indicator values for
// the latest bar, pattern matches for every bar, and the combined signal.
//
// Fails with InsufficientDataError on an empty sequence and with a
// SeriesOrderError on out-of-order timestamps; a short-but-nonempty
// sequence succeeds with not-ready indicator points instead.
func (e *Engine) Analyze(bars []model.Bar) (*model.Analysis, error) {
	if len(bars) == 0 {
		return nil, &model.InsufficientDataError{Op: "analyze", Need: 1, Got: 0}
	}
	if err := model.ValidateSeries(bars); err != nil {
		return nil, err
	}

	set := make(model.IndicatorSet)

	rsiSeries, err := indicator.RSISeries(bars, e.cfg.RSIWindow)
	if err != nil {
		return nil, err
	}
	set["RSI_"+model.Itoa(e.cfg.RSIWindow)] = rsiSeries.Last()

	for _, w := range e.cfg.SMAWindows {
		s, err := indicator.SMASeries(bars, w)
		if err != nil {
			return nil, err
		}
		set["SMA_"+model.Itoa(w)] = s.Last()
	}
	for _, w := range e.cfg.EMAWindows {
		s, err := indicator.EMASeries(bars, w)
		if err != nil {
			return nil, err
		}
		set["EMA_"+model.Itoa(w)] = s.Last()
	}

	macd, err := indicator.MACDSeries(bars, e.cfg.MACDFast, e.cfg.MACDSlow, e.cfg.MACDSignal)
	if err != nil {
		return nil, err
	}
	set["MACD"] = macd.MACD.Last()
	set["MACD_SIGNAL"] = macd.Signal.Last()
	set["MACD_HIST"] = macd.Histogram.Last()

	patterns := e.matcher.Detect(bars)

	last := len(bars) - 1
	var latest []model.PatternMatch
	for _, m := range patterns {
		if m.Index == last {
			latest = append(latest, m)
		}
	}

	sig := combine(
		e.cfg,
		rsiSeries.Last(),
		macd.Histogram.At(last-1),
		macd.Histogram.At(last),
		latest,
	)

	return &model.Analysis{
		Indicators: set,
		Patterns:   patterns,
		Signal:     sig,
	}, nil
}
