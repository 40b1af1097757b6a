package indicator

import "trading-advisor/internal/model"

// MACD calculates Moving Average Convergence Divergence:
// macd = EMA(fast) - EMA(slow), signal = EMA(macd, signalPeriod),
// histogram = macd - signal. The signal EMA is seeded by the SMA of the
// first signalPeriod macd values, mirroring the price EMAs.
type MACD struct {
	fast   *EMA
	slow   *EMA
	signal *EMA

	macdLine  float64
	signalVal float64
	histogram float64
}

// NewMACD creates a MACD indicator with the given periods
// (typically 12, 26, 9).
func NewMACD(fastPeriod, slowPeriod, signalPeriod int) *MACD {
	return &MACD{
		fast:   NewEMA(fastPeriod),
		slow:   NewEMA(slowPeriod),
		signal: NewEMA(signalPeriod),
	}
}

func (m *MACD) Name() string { return "MACD" }

func (m *MACD) Update(bar model.Bar) {
	m.fast.Update(bar)
	m.slow.Update(bar)

	if !m.slow.Ready() || !m.fast.Ready() {
		return
	}

	m.macdLine = m.fast.Value() - m.slow.Value()
	m.signal.update(m.macdLine)
	if m.signal.Ready() {
		m.signalVal = m.signal.Value()
		m.histogram = m.macdLine - m.signalVal
	}
}

// Value returns the MACD line. Signal() and Histogram() carry the rest.
func (m *MACD) Value() float64     { return m.macdLine }
func (m *MACD) Signal() float64    { return m.signalVal }
func (m *MACD) Histogram() float64 { return m.histogram }

// Ready reports whether the MACD line is defined (slow EMA seeded).
func (m *MACD) Ready() bool { return m.slow.Ready() && m.fast.Ready() }

// SignalReady reports whether the signal line and histogram are defined.
func (m *MACD) SignalReady() bool { return m.signal.Ready() }

// MACDResult holds the three index-aligned MACD output series.
type MACDResult struct {
	MACD      Series
	Signal    Series
	Histogram Series
}

// MACDSeries computes the MACD line, signal line, and histogram for every
// bar. The MACD line becomes ready once the slow EMA is seeded; signal and
// histogram once signalPeriod MACD values exist on top of that.
func MACDSeries(bars []model.Bar, fast, slow, signal int) (MACDResult, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return MACDResult{}, &model.InvalidConfigError{Field: "macd periods", Reason: "must be positive"}
	}
	if fast >= slow {
		return MACDResult{}, &model.InvalidConfigError{Field: "macd fast", Reason: "must be below slow period"}
	}
	if len(bars) == 0 {
		return MACDResult{}, &model.InsufficientDataError{Op: "macd", Need: 1, Got: 0}
	}

	res := MACDResult{
		MACD:      make(Series, len(bars)),
		Signal:    make(Series, len(bars)),
		Histogram: make(Series, len(bars)),
	}
	m := NewMACD(fast, slow, signal)
	for i, b := range bars {
		m.Update(b)
		res.MACD[i] = model.Point{Value: m.Value(), Ready: m.Ready()}
		res.Signal[i] = model.Point{Value: m.Signal(), Ready: m.SignalReady()}
		res.Histogram[i] = model.Point{Value: m.Histogram(), Ready: m.SignalReady()}
	}
	return res, nil
}
