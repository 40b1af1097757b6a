package engine

import (
	"fmt"
	"math"
	"strings"

	"trading-advisor/internal/model"
)

// combine reduces the latest indicator values and the pattern matches on
// the most recent bar into one Signal. It is a pure function: identical
// inputs always yield an identical Signal.
//
// Rules, in evaluation order (each non-zero contributor lands in Reasons):
//  1. RSI < 30 → +2, RSI > 70 → -2
//  2. MACD histogram sign flip between prior and current bar → ±1
//  3. each pattern on the latest bar → ±weight(strength)
func combine(cfg Config, rsi model.Point, histPrev, histCur model.Point, latest []model.PatternMatch) model.Signal {
	score := 0.0
	var reasons []string

	if rsi.Ready {
		switch {
		case rsi.Value < rsiOversold:
			score += rsiScore
			reasons = append(reasons, "RSI oversold")
		case rsi.Value > rsiOverbought:
			score -= rsiScore
			reasons = append(reasons, "RSI overbought")
		}
	}

	if histPrev.Ready && histCur.Ready {
		switch {
		case histPrev.Value < 0 && histCur.Value > 0:
			score += macdScore
			reasons = append(reasons, "MACD bullish crossover")
		case histPrev.Value > 0 && histCur.Value < 0:
			score -= macdScore
			reasons = append(reasons, "MACD bearish crossover")
		}
	}

	for _, m := range latest {
		w := cfg.StrengthWeights[m.Strength]
		switch m.Direction {
		case model.Bullish:
			score += w
		case model.Bearish:
			score -= w
		default:
			continue // neutral patterns carry no score and no reason
		}
		reasons = append(reasons, patternReason(m))
	}

	action := model.ActionHold
	switch {
	case score >= cfg.BuyThreshold:
		action = model.ActionBuy
	case score <= cfg.SellThreshold:
		action = model.ActionSell
	}

	confidence := math.Min(1.0, math.Abs(score)/cfg.maxScore())

	return model.Signal{
		Action:     action,
		Score:      score,
		Confidence: confidence,
		Reasons:    reasons,
	}
}

// patternReason renders a match as e.g. "bullish Engulfing (strong)".
// Catalog names that already carry the direction word are shortened so
// the reason doesn't repeat it.
func patternReason(m model.PatternMatch) string {
	name := strings.TrimPrefix(m.Name, "Bullish ")
	name = strings.TrimPrefix(name, "Bearish ")
	return fmt.Sprintf("%s %s (%s)", m.Direction, name, m.Strength)
}
