package indicator

import "trading-advisor/internal/model"

// EMA calculates Exponential Moving Average.
// Seeded by the SMA of the first `period` values, then O(1) per update.
type EMA struct {
	period     int
	multiplier float64
	current    float64
	count      int
	sum        float64
}

// NewEMA creates a new EMA indicator with the given period.
func NewEMA(period int) *EMA {
	return &EMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *EMA) Name() string { return "EMA_" + model.Itoa(e.period) }

func (e *EMA) Update(bar model.Bar) {
	e.update(bar.Close)
}

// update feeds a raw value, so MACD can run an EMA over a derived line.
func (e *EMA) update(price float64) {
	e.count++

	if e.count <= e.period {
		// Accumulate for initial SMA seed
		e.sum += price
		if e.count == e.period {
			e.current = e.sum / float64(e.period)
		}
		return
	}

	// EMA formula: EMA = (Price * multiplier) + (EMA_prev * (1 - multiplier))
	e.current = (price * e.multiplier) + (e.current * (1 - e.multiplier))
}

func (e *EMA) Value() float64 { return e.current }
func (e *EMA) Ready() bool    { return e.count >= e.period }

// EMASeries computes the exponential moving average of close prices for
// every bar. The first ready Point (index window-1) equals the SMA of the
// first `window` closes; later Points follow the EMA recurrence with
// k = 2/(window+1).
func EMASeries(bars []model.Bar, window int) (Series, error) {
	if err := checkInput("ema", bars, window); err != nil {
		return nil, err
	}
	return collect(NewEMA(window), bars), nil
}
