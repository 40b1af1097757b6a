// Package model defines the domain types shared across the engine and its
// adapters: OHLCV bars, indicator values, pattern matches, trading signals,
// and the typed errors the engine returns.
package model

import (
	"encoding/json"
	"time"
)

// Bar represents one period's OHLCV data for a single instrument.
// Bars are immutable once produced by the data source.
type Bar struct {
	TS     time.Time `json:"ts"` // period start time (UTC)
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// JSON returns the JSON-encoded bar (ignoring errors for hot-path usage).
func (b *Bar) JSON() []byte {
	buf, _ := json.Marshal(b)
	return buf
}

// Body returns the absolute distance between open and close.
func (b *Bar) Body() float64 {
	if b.Close >= b.Open {
		return b.Close - b.Open
	}
	return b.Open - b.Close
}

// Range returns the high-low spread.
func (b *Bar) Range() float64 {
	return b.High - b.Low
}

// UpperShadow returns the wick above the body.
func (b *Bar) UpperShadow() float64 {
	if b.Close >= b.Open {
		return b.High - b.Close
	}
	return b.High - b.Open
}

// LowerShadow returns the wick below the body.
func (b *Bar) LowerShadow() float64 {
	if b.Close >= b.Open {
		return b.Open - b.Low
	}
	return b.Close - b.Low
}

// Bullish reports whether the bar closed above its open.
func (b *Bar) Bullish() bool { return b.Close > b.Open }

// Bearish reports whether the bar closed below its open.
func (b *Bar) Bearish() bool { return b.Close < b.Open }

// ValidateSeries checks that a bar sequence is time-ordered with strictly
// increasing timestamps and no duplicates. Returns a SeriesOrderError
// naming the first offending index, or nil.
func ValidateSeries(bars []Bar) error {
	for i := 1; i < len(bars); i++ {
		if !bars[i].TS.After(bars[i-1].TS) {
			return &SeriesOrderError{Index: i, TS: bars[i].TS, PrevTS: bars[i-1].TS}
		}
	}
	return nil
}
