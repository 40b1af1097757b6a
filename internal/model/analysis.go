package model

import "encoding/json"

// Point holds one computed indicator value. Ready=false means the
// indicator did not have enough history at that position; Value is
// meaningless and renderers should leave the region blank.
type Point struct {
	Value float64 `json:"value"`
	Ready bool    `json:"ready"`
}

// IndicatorSet maps indicator names (e.g. "RSI_14", "SMA_20", "MACD")
// to their value on the latest bar.
type IndicatorSet map[string]Point

// Direction classifies the market bias a pattern implies.
type Direction string

const (
	Bullish Direction = "bullish"
	Bearish Direction = "bearish"
	Neutral Direction = "neutral"
)

// Strength grades how reliable a pattern match is considered.
type Strength string

const (
	Weak     Strength = "weak"
	Moderate Strength = "moderate"
	Strong   Strength = "strong"
)

// PatternMatch records one candlestick pattern recognized at a bar.
// A bar may carry zero, one, or several matches; matches are emitted
// in catalog order so output is stable across runs.
type PatternMatch struct {
	Name      string    `json:"name"`
	Index     int       `json:"index"` // bar index within the analyzed series
	Direction Direction `json:"direction"`
	Strength  Strength  `json:"strength"`
}

// Action is the consolidated trading recommendation.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Signal is the consolidated recommendation derived from the latest
// IndicatorSet and the pattern matches on the most recent bar.
// It is a pure function of the bar history and the engine config.
type Signal struct {
	Action     Action   `json:"action"`
	Score      float64  `json:"score"`
	Confidence float64  `json:"confidence"` // in [0,1]
	Reasons    []string `json:"reasons"`    // non-zero contributors, evaluation order
}

// Analysis bundles everything the engine derives from one bar sequence.
type Analysis struct {
	Indicators IndicatorSet   `json:"indicators"`
	Patterns   []PatternMatch `json:"patterns"`
	Signal     Signal         `json:"signal"`
}

// JSON returns the JSON-encoded analysis.
func (a *Analysis) JSON() []byte {
	b, _ := json.Marshal(a)
	return b
}
