package indicator

import "trading-advisor/internal/model"

// SMA calculates Simple Moving Average over a rolling window.
// Uses a preallocated circular buffer for zero-allocation hot path.
type SMA struct {
	period  int
	buf     []float64 // preallocated circular buffer
	idx     int       // current write position
	count   int       // total values received
	sum     float64
	current float64
}

// NewSMA creates a new SMA indicator with the given period.
func NewSMA(period int) *SMA {
	return &SMA{
		period: period,
		buf:    make([]float64, period),
	}
}

func (s *SMA) Name() string { return "SMA_" + model.Itoa(s.period) }

func (s *SMA) Update(bar model.Bar) {
	price := bar.Close

	if s.count >= s.period {
		// Subtract the oldest value being overwritten
		s.sum -= s.buf[s.idx]
	}

	s.buf[s.idx] = price
	s.sum += price
	s.idx = (s.idx + 1) % s.period
	s.count++

	if s.count >= s.period {
		s.current = s.sum / float64(s.period)
	}
}

func (s *SMA) Value() float64 { return s.current }
func (s *SMA) Ready() bool    { return s.count >= s.period }

// SMASeries computes the simple moving average of close prices for every
// bar. The Point at index i covers bars [i-window+1, i] and is not ready
// for i < window-1. An empty bar sequence is an InsufficientDataError.
func SMASeries(bars []model.Bar, window int) (Series, error) {
	if err := checkInput("sma", bars, window); err != nil {
		return nil, err
	}
	return collect(NewSMA(window), bars), nil
}
