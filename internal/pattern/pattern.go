// Package pattern classifies bars against a catalog of candlestick
// patterns (Doji, Hammer, Engulfing, Morning Star, ...).
//
// Matching is purely geometric on OHLC ratios with fixed thresholds.
// Each catalog entry inspects the current bar plus up to two prior bars;
// bars without enough lookback are simply not evaluated. Matches are
// emitted in catalog order so the output is stable when several patterns
// fire on the same bar.
package pattern

import "trading-advisor/internal/model"

// Geometric thresholds, expressed as fractions of the bar range or as
// body multiples. Shared across the catalog.
const (
	dojiBodyMax     = 0.10 // body ≤ 10% of range
	smallBodyMax    = 0.30 // "small body" for stars and pin bars
	longBodyMin     = 0.60 // body ≥ 60% of range
	shadowBodyRatio = 2.0  // wick ≥ 2× body for hammer/shooting star
	shortShadowMax  = 0.10 // "little/no" wick ≤ 10% of range
	marubozuWickMax = 0.05 // both wicks ≤ 5% of range
)

// predicate inspects the bar at index i (with guaranteed lookback) and
// reports whether the pattern matched plus its direction.
type predicate func(bars []model.Bar, i int) (model.Direction, bool)

// entry is one catalog row. Lookback is the number of prior bars the
// predicate needs.
type entry struct {
	name     string
	lookback int
	strength model.Strength
	match    predicate
}

// Matcher evaluates the full pattern catalog against bar sequences.
// It is stateless and safe for concurrent use.
type Matcher struct {
	catalog []entry
}

// NewMatcher creates a matcher with the default catalog.
func NewMatcher() *Matcher {
	return &Matcher{catalog: defaultCatalog()}
}

// defaultCatalog lists every known pattern in fixed evaluation order:
// single-bar patterns first, then two-bar, then three-bar.
func defaultCatalog() []entry {
	return []entry{
		{"Doji", 0, model.Moderate, isDoji},
		{"Hammer", 1, model.Strong, isHammer},
		{"Hanging Man", 1, model.Moderate, isHangingMan},
		{"Shooting Star", 1, model.Strong, isShootingStar},
		{"Marubozu", 0, model.Strong, isMarubozu},
		{"Bullish Engulfing", 1, model.Strong, isBullishEngulfing},
		{"Bearish Engulfing", 1, model.Strong, isBearishEngulfing},
		{"Bullish Harami", 1, model.Moderate, isBullishHarami},
		{"Bearish Harami", 1, model.Moderate, isBearishHarami},
		{"Morning Star", 2, model.Strong, isMorningStar},
		{"Evening Star", 2, model.Strong, isEveningStar},
		{"Three White Soldiers", 2, model.Strong, isThreeWhiteSoldiers},
		{"Three Black Crows", 2, model.Strong, isThreeBlackCrows},
	}
}

// DetectAt evaluates the catalog against the bar at index i. Entries
// whose lookback exceeds i are skipped.
func (m *Matcher) DetectAt(bars []model.Bar, i int) []model.PatternMatch {
	if i < 0 || i >= len(bars) {
		return nil
	}
	var matches []model.PatternMatch
	for _, e := range m.catalog {
		if i < e.lookback {
			continue
		}
		if dir, ok := e.match(bars, i); ok {
			matches = append(matches, model.PatternMatch{
				Name:      e.name,
				Index:     i,
				Direction: dir,
				Strength:  e.strength,
			})
		}
	}
	return matches
}

// Detect evaluates every bar in the sequence and returns all matches,
// ordered by bar index and within a bar by catalog order.
func (m *Matcher) Detect(bars []model.Bar) []model.PatternMatch {
	var matches []model.PatternMatch
	for i := range bars {
		matches = append(matches, m.DetectAt(bars, i)...)
	}
	return matches
}
