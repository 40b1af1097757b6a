package pattern

import "trading-advisor/internal/model"

// Info describes one catalog pattern for reference endpoints.
type Info struct {
	Name        string         `json:"name"`
	Candles     int            `json:"candles"` // bars involved, 1-3
	Strength    model.Strength `json:"strength"`
	Description string         `json:"description"`
	Formation   string         `json:"formation"`
}

var descriptions = map[string][2]string{
	"Doji": {
		"Open and close prices are nearly equal, indicating indecision",
		"Small body with long upper and lower shadows",
	},
	"Hammer": {
		"Bullish reversal pattern after a decline",
		"Small body at top, long lower shadow, little/no upper shadow",
	},
	"Hanging Man": {
		"Bearish reversal pattern after an advance",
		"Small body at top, long lower shadow after an up bar",
	},
	"Shooting Star": {
		"Bearish reversal pattern after an advance",
		"Small body at bottom, long upper shadow, little/no lower shadow",
	},
	"Marubozu": {
		"Strong directional movement with no shadows",
		"Large body with no upper or lower shadows",
	},
	"Bullish Engulfing": {
		"Large bullish candle completely engulfs previous bearish candle",
		"Small red candle followed by a large green candle that engulfs it",
	},
	"Bearish Engulfing": {
		"Large bearish candle completely engulfs previous bullish candle",
		"Small green candle followed by a large red candle that engulfs it",
	},
	"Bullish Harami": {
		"Small bullish candle within the body of the previous large bearish candle",
		"Large red candle followed by a small green candle inside its body",
	},
	"Bearish Harami": {
		"Small bearish candle within the body of the previous large bullish candle",
		"Large green candle followed by a small red candle inside its body",
	},
	"Morning Star": {
		"Three-candle bullish reversal pattern",
		"Large red candle, small-bodied candle, large green candle closing above the first body's midpoint",
	},
	"Evening Star": {
		"Three-candle bearish reversal pattern",
		"Large green candle, small-bodied candle, large red candle closing below the first body's midpoint",
	},
	"Three White Soldiers": {
		"Three consecutive long bullish candles",
		"Three large green candles with higher opens and closes",
	},
	"Three Black Crows": {
		"Three consecutive long bearish candles",
		"Three large red candles with lower opens and closes",
	},
}

// Catalog returns reference information for every pattern, in catalog
// (evaluation) order.
func (m *Matcher) Catalog() []Info {
	infos := make([]Info, 0, len(m.catalog))
	for _, e := range m.catalog {
		d := descriptions[e.name]
		infos = append(infos, Info{
			Name:        e.name,
			Candles:     e.lookback + 1,
			Strength:    e.strength,
			Description: d[0],
			Formation:   d[1],
		})
	}
	return infos
}
