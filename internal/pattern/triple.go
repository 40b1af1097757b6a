package pattern

import "trading-advisor/internal/model"

// Three-bar patterns: stars and soldier/crow runs.

// longBody reports a body covering most of the bar's range.
func longBody(b *model.Bar) bool {
	rng := b.Range()
	return rng > 0 && b.Body() >= longBodyMin*rng
}

// smallBody reports a compact body (star middle candle).
func smallBody(b *model.Bar) bool {
	rng := b.Range()
	return rng > 0 && b.Body() <= smallBodyMax*rng
}

func isMorningStar(bars []model.Bar, i int) (model.Direction, bool) {
	first, star, last := &bars[i-2], &bars[i-1], &bars[i]
	if !(first.Bearish() && longBody(first)) {
		return model.Bullish, false
	}
	if !smallBody(star) {
		return model.Bullish, false
	}
	// Third bar closes above the midpoint of the first body.
	mid := (first.Open + first.Close) / 2
	ok := last.Bullish() && longBody(last) && last.Close > mid
	return model.Bullish, ok
}

func isEveningStar(bars []model.Bar, i int) (model.Direction, bool) {
	first, star, last := &bars[i-2], &bars[i-1], &bars[i]
	if !(first.Bullish() && longBody(first)) {
		return model.Bearish, false
	}
	if !smallBody(star) {
		return model.Bearish, false
	}
	mid := (first.Open + first.Close) / 2
	ok := last.Bearish() && longBody(last) && last.Close < mid
	return model.Bearish, ok
}

func isThreeWhiteSoldiers(bars []model.Bar, i int) (model.Direction, bool) {
	a, b, c := &bars[i-2], &bars[i-1], &bars[i]
	ok := a.Bullish() && b.Bullish() && c.Bullish() &&
		longBody(a) && longBody(b) && longBody(c) &&
		b.Close > a.Close && c.Close > b.Close &&
		b.Open > a.Open && c.Open > b.Open
	return model.Bullish, ok
}

func isThreeBlackCrows(bars []model.Bar, i int) (model.Direction, bool) {
	a, b, c := &bars[i-2], &bars[i-1], &bars[i]
	ok := a.Bearish() && b.Bearish() && c.Bearish() &&
		longBody(a) && longBody(b) && longBody(c) &&
		b.Close < a.Close && c.Close < b.Close &&
		b.Open < a.Open && c.Open < b.Open
	return model.Bearish, ok
}
