package pattern

import "trading-advisor/internal/model"

// Two-bar patterns: engulfing and harami. Both compare the current body
// against the prior bar's body.

func isBullishEngulfing(bars []model.Bar, i int) (model.Direction, bool) {
	prev, cur := &bars[i-1], &bars[i]
	ok := prev.Bearish() && cur.Bullish() &&
		cur.Open <= prev.Close && cur.Close >= prev.Open &&
		cur.Body() > prev.Body()
	return model.Bullish, ok
}

func isBearishEngulfing(bars []model.Bar, i int) (model.Direction, bool) {
	prev, cur := &bars[i-1], &bars[i]
	ok := prev.Bullish() && cur.Bearish() &&
		cur.Open >= prev.Close && cur.Close <= prev.Open &&
		cur.Body() > prev.Body()
	return model.Bearish, ok
}

func isBullishHarami(bars []model.Bar, i int) (model.Direction, bool) {
	prev, cur := &bars[i-1], &bars[i]
	ok := prev.Bearish() && cur.Bullish() &&
		prev.Body() >= longBodyMin*prev.Range() &&
		cur.Open >= prev.Close && cur.Close <= prev.Open &&
		cur.Body() < prev.Body()
	return model.Bullish, ok
}

func isBearishHarami(bars []model.Bar, i int) (model.Direction, bool) {
	prev, cur := &bars[i-1], &bars[i]
	ok := prev.Bullish() && cur.Bearish() &&
		prev.Body() >= longBodyMin*prev.Range() &&
		cur.Open <= prev.Close && cur.Close >= prev.Open &&
		cur.Body() < prev.Body()
	return model.Bearish, ok
}
