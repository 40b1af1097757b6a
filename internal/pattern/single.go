package pattern

import "trading-advisor/internal/model"

// Single-bar patterns. Hammer, Hanging Man and Shooting Star share their
// geometry; what separates them is the color of the preceding bar, which
// stands in for trend context.

func isDoji(bars []model.Bar, i int) (model.Direction, bool) {
	b := &bars[i]
	rng := b.Range()
	if rng <= 0 {
		return model.Neutral, false
	}
	return model.Neutral, b.Body() <= dojiBodyMax*rng
}

// pinBarDown reports a small body near the top of the range with a long
// lower wick.
func pinBarDown(b *model.Bar) bool {
	rng := b.Range()
	if rng <= 0 {
		return false
	}
	body := b.Body()
	return body > 0 &&
		body <= smallBodyMax*rng &&
		b.LowerShadow() >= shadowBodyRatio*body &&
		b.UpperShadow() <= shortShadowMax*rng
}

// pinBarUp reports a small body near the bottom of the range with a long
// upper wick.
func pinBarUp(b *model.Bar) bool {
	rng := b.Range()
	if rng <= 0 {
		return false
	}
	body := b.Body()
	return body > 0 &&
		body <= smallBodyMax*rng &&
		b.UpperShadow() >= shadowBodyRatio*body &&
		b.LowerShadow() <= shortShadowMax*rng
}

func isHammer(bars []model.Bar, i int) (model.Direction, bool) {
	// Needs a preceding down bar: bottom-wick rejection in a decline.
	return model.Bullish, bars[i-1].Bearish() && pinBarDown(&bars[i])
}

func isHangingMan(bars []model.Bar, i int) (model.Direction, bool) {
	// Same geometry as the hammer, after an up bar.
	return model.Bearish, bars[i-1].Bullish() && pinBarDown(&bars[i])
}

func isShootingStar(bars []model.Bar, i int) (model.Direction, bool) {
	// Top-wick rejection after an up bar.
	return model.Bearish, bars[i-1].Bullish() && pinBarUp(&bars[i])
}

func isMarubozu(bars []model.Bar, i int) (model.Direction, bool) {
	b := &bars[i]
	rng := b.Range()
	if rng <= 0 {
		return model.Neutral, false
	}
	if b.UpperShadow() > marubozuWickMax*rng || b.LowerShadow() > marubozuWickMax*rng {
		return model.Neutral, false
	}
	if b.Bullish() {
		return model.Bullish, true
	}
	if b.Bearish() {
		return model.Bearish, true
	}
	return model.Neutral, false
}
