package engine

import "trading-advisor/internal/model"

// Config enumerates every tunable of the engine. All scoring constants
// live here so thresholds are independently testable, never scattered
// through the combiner.
type Config struct {
	RSIWindow  int   `json:"rsi_window" yaml:"rsi_window"`
	SMAWindows []int `json:"sma_windows" yaml:"sma_windows"`
	EMAWindows []int `json:"ema_windows" yaml:"ema_windows"`

	MACDFast   int `json:"macd_fast" yaml:"macd_fast"`
	MACDSlow   int `json:"macd_slow" yaml:"macd_slow"`
	MACDSignal int `json:"macd_signal" yaml:"macd_signal"`

	BuyThreshold  float64 `json:"buy_threshold" yaml:"buy_threshold"`
	SellThreshold float64 `json:"sell_threshold" yaml:"sell_threshold"`

	// StrengthWeights maps pattern strength to its score contribution.
	StrengthWeights map[model.Strength]float64 `json:"strength_weights" yaml:"strength_weights"`
}

// Score contributions of the indicator rules. Patterns are weighted via
// Config.StrengthWeights.
const (
	rsiOversold   = 30.0
	rsiOverbought = 70.0
	rsiScore      = 2.0
	macdScore     = 1.0
)

// DefaultConfig returns the standard engine tuning: RSI(14), SMA 20/50,
// EMA 9/50, MACD 12/26/9, buy at +3, sell at -3, strength weights 1/2/3.
func DefaultConfig() Config {
	return Config{
		RSIWindow:     14,
		SMAWindows:    []int{20, 50},
		EMAWindows:    []int{9, 50},
		MACDFast:      12,
		MACDSlow:      26,
		MACDSignal:    9,
		BuyThreshold:  3,
		SellThreshold: -3,
		StrengthWeights: map[model.Strength]float64{
			model.Weak:     1,
			model.Moderate: 2,
			model.Strong:   3,
		},
	}
}

// Validate checks the config for values the engine cannot run with.
func (c Config) Validate() error {
	if c.RSIWindow <= 0 {
		return &model.InvalidConfigError{Field: "rsi_window", Reason: "must be positive"}
	}
	for _, w := range c.SMAWindows {
		if w <= 0 {
			return &model.InvalidConfigError{Field: "sma_windows", Reason: "windows must be positive"}
		}
	}
	for _, w := range c.EMAWindows {
		if w <= 0 {
			return &model.InvalidConfigError{Field: "ema_windows", Reason: "windows must be positive"}
		}
	}
	if c.MACDFast <= 0 || c.MACDSlow <= 0 || c.MACDSignal <= 0 {
		return &model.InvalidConfigError{Field: "macd", Reason: "periods must be positive"}
	}
	if c.MACDFast >= c.MACDSlow {
		return &model.InvalidConfigError{Field: "macd_fast", Reason: "must be below macd_slow"}
	}
	if c.BuyThreshold <= c.SellThreshold {
		return &model.InvalidConfigError{Field: "buy_threshold", Reason: "must be above sell_threshold"}
	}
	for _, s := range []model.Strength{model.Weak, model.Moderate, model.Strong} {
		w, ok := c.StrengthWeights[s]
		if !ok {
			return &model.InvalidConfigError{Field: "strength_weights", Reason: "missing weight for " + string(s)}
		}
		if w <= 0 {
			return &model.InvalidConfigError{Field: "strength_weights", Reason: "weight for " + string(s) + " must be positive"}
		}
	}
	return nil
}

// maxStrengthWeight returns the largest configured pattern weight,
// falling back to the default strong weight when the map is empty.
func (c Config) maxStrengthWeight() float64 {
	max := 0.0
	for _, w := range c.StrengthWeights {
		if w > max {
			max = w
		}
	}
	if max == 0 {
		max = 3
	}
	return max
}

// maxScore is the largest score any single analysis can produce in one
// direction: the RSI rule, the MACD rule, and one strongest pattern.
// Used to normalize confidence into [0,1].
func (c Config) maxScore() float64 {
	return rsiScore + macdScore + c.maxStrengthWeight()
}
