// Package indicator provides technical indicator calculations over bar data.
//
// Each indicator exists in two forms: a streaming struct fed one bar at a
// time (Update/Value/Ready), and a series function that runs a fresh
// instance over a full bar sequence and returns one Point per bar.
// Positions without enough history are returned as not-ready Points rather
// than errors, so callers can render partial series.
package indicator

import "trading-advisor/internal/model"

// Indicator is the interface for all streaming technical indicators.
type Indicator interface {
	// Name returns the indicator name (e.g., "SMA_20", "RSI_14").
	Name() string

	// Update feeds a new bar and recalculates.
	Update(bar model.Bar)

	// Value returns the current calculated value. Returns 0 if not enough data.
	Value() float64

	// Ready returns true when enough data has been accumulated.
	Ready() bool
}

// Series holds one Point per input bar, index-aligned with the bars.
type Series []model.Point

// Last returns the Point for the most recent bar. Not-ready zero Point
// for an empty series.
func (s Series) Last() model.Point {
	if len(s) == 0 {
		return model.Point{}
	}
	return s[len(s)-1]
}

// At returns the Point at index i, or a not-ready zero Point when i is
// out of range.
func (s Series) At(i int) model.Point {
	if i < 0 || i >= len(s) {
		return model.Point{}
	}
	return s[i]
}

// collect runs a streaming indicator over the full bar sequence and
// records its value after every update.
func collect(ind Indicator, bars []model.Bar) Series {
	out := make(Series, len(bars))
	for i, b := range bars {
		ind.Update(b)
		out[i] = model.Point{Value: ind.Value(), Ready: ind.Ready()}
	}
	return out
}

// checkInput validates the common preconditions of the series functions.
func checkInput(op string, bars []model.Bar, window int) error {
	if window <= 0 {
		return &model.InvalidConfigError{Field: op + " window", Reason: "must be positive"}
	}
	if len(bars) == 0 {
		return &model.InsufficientDataError{Op: op, Need: 1, Got: 0}
	}
	return nil
}
