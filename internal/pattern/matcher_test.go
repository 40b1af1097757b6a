package pattern

import (
	"reflect"
	"testing"
	"time"

	"trading-advisor/internal/model"
)

func mkBar(o, h, l, c float64) model.Bar {
	return model.Bar{Open: o, High: h, Low: l, Close: c, Volume: 1000}
}

func stamp(bars []model.Bar) []model.Bar {
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i].TS = start.Add(time.Duration(i) * time.Hour)
	}
	return bars
}

func hasMatch(matches []model.PatternMatch, name string, idx int) bool {
	for _, m := range matches {
		if m.Name == name && m.Index == idx {
			return true
		}
	}
	return false
}

func TestDetectAt_SingleBarPatterns(t *testing.T) {
	cases := []struct {
		name    string
		bars    []model.Bar
		pattern string
		dir     model.Direction
	}{
		{
			name: "doji",
			bars: []model.Bar{
				mkBar(100, 100.5, 99.5, 100.2),
				mkBar(100, 102, 98, 100.1), // body 0.1, range 4
			},
			pattern: "Doji",
			dir:     model.Neutral,
		},
		{
			name: "hammer after down bar",
			bars: []model.Bar{
				mkBar(105, 105.5, 101.5, 102), // bearish
				mkBar(100, 101.2, 96, 101),    // long lower wick
			},
			pattern: "Hammer",
			dir:     model.Bullish,
		},
		{
			name: "hanging man after up bar",
			bars: []model.Bar{
				mkBar(98, 100.5, 97.5, 100), // bullish
				mkBar(100, 101.2, 96, 101),  // same geometry as hammer
			},
			pattern: "Hanging Man",
			dir:     model.Bearish,
		},
		{
			name: "shooting star after up bar",
			bars: []model.Bar{
				mkBar(100, 103.5, 99.5, 103), // bullish
				mkBar(103, 105, 102.5, 102.6),
			},
			pattern: "Shooting Star",
			dir:     model.Bearish,
		},
		{
			name: "bullish marubozu",
			bars: []model.Bar{
				mkBar(99, 100, 98.5, 99.5),
				mkBar(100, 105.1, 99.9, 105),
			},
			pattern: "Marubozu",
			dir:     model.Bullish,
		},
		{
			name: "bearish marubozu",
			bars: []model.Bar{
				mkBar(99, 100, 98.5, 99.5),
				mkBar(105, 105.1, 99.9, 100),
			},
			pattern: "Marubozu",
			dir:     model.Bearish,
		},
	}

	m := NewMatcher()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bars := stamp(tc.bars)
			matches := m.DetectAt(bars, len(bars)-1)
			if !hasMatch(matches, tc.pattern, len(bars)-1) {
				t.Fatalf("expected %s at last bar, got %+v", tc.pattern, matches)
			}
			for _, got := range matches {
				if got.Name == tc.pattern && got.Direction != tc.dir {
					t.Errorf("%s: direction = %s, want %s", tc.pattern, got.Direction, tc.dir)
				}
			}
		})
	}
}

func TestDetectAt_TwoBarPatterns(t *testing.T) {
	cases := []struct {
		name    string
		bars    []model.Bar
		pattern string
		dir     model.Direction
	}{
		{
			name: "bullish engulfing",
			bars: []model.Bar{
				mkBar(102, 102.3, 100.5, 100.8),   // small bearish
				mkBar(100.5, 102.8, 100.2, 102.5), // engulfs it
			},
			pattern: "Bullish Engulfing",
			dir:     model.Bullish,
		},
		{
			name: "bearish engulfing",
			bars: []model.Bar{
				mkBar(100.8, 102.3, 100.5, 102),   // small bullish
				mkBar(102.5, 102.8, 100.2, 100.5), // engulfs it
			},
			pattern: "Bearish Engulfing",
			dir:     model.Bearish,
		},
		{
			name: "bullish harami",
			bars: []model.Bar{
				mkBar(105, 105.2, 99.8, 100), // long bearish
				mkBar(101, 103.2, 100.8, 103),
			},
			pattern: "Bullish Harami",
			dir:     model.Bullish,
		},
		{
			name: "bearish harami",
			bars: []model.Bar{
				mkBar(100, 105.2, 99.8, 105), // long bullish
				mkBar(103, 103.2, 100.8, 101),
			},
			pattern: "Bearish Harami",
			dir:     model.Bearish,
		},
	}

	m := NewMatcher()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bars := stamp(tc.bars)
			matches := m.DetectAt(bars, 1)
			if !hasMatch(matches, tc.pattern, 1) {
				t.Fatalf("expected %s, got %+v", tc.pattern, matches)
			}
		})
	}
}

func TestDetectAt_ThreeBarPatterns(t *testing.T) {
	cases := []struct {
		name    string
		bars    []model.Bar
		pattern string
	}{
		{
			name: "morning star",
			bars: []model.Bar{
				mkBar(110, 110.3, 103.7, 104),     // long bearish
				mkBar(103.5, 104.2, 102.8, 103.2), // small star
				mkBar(104, 109.3, 103.8, 109),     // long bullish above midpoint
			},
			pattern: "Morning Star",
		},
		{
			name: "evening star",
			bars: []model.Bar{
				mkBar(104, 110.3, 103.7, 110),     // long bullish
				mkBar(110.5, 111.2, 109.8, 110.2), // small star
				mkBar(110, 110.2, 104.7, 105),     // long bearish below midpoint
			},
			pattern: "Evening Star",
		},
		{
			name: "three white soldiers",
			bars: []model.Bar{
				mkBar(100, 103.2, 99.9, 103),
				mkBar(101, 105.3, 100.8, 105),
				mkBar(103, 107.2, 102.9, 107),
			},
			pattern: "Three White Soldiers",
		},
		{
			name: "three black crows",
			bars: []model.Bar{
				mkBar(107, 107.2, 102.9, 103),
				mkBar(105, 105.3, 100.8, 101),
				mkBar(103, 103.2, 98.9, 99),
			},
			pattern: "Three Black Crows",
		},
	}

	m := NewMatcher()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bars := stamp(tc.bars)
			matches := m.DetectAt(bars, 2)
			if !hasMatch(matches, tc.pattern, 2) {
				t.Fatalf("expected %s, got %+v", tc.pattern, matches)
			}
		})
	}
}

func TestDetect_SkipsInsufficientLookback(t *testing.T) {
	// A single bar can only match the lookback-0 entries; a second
	// bar unlocks the two-bar patterns, never the three-bar ones.
	bars := stamp([]model.Bar{
		mkBar(100, 102, 98, 100.1), // doji geometry
		mkBar(100, 102, 98, 100.1),
	})

	m := NewMatcher()
	for _, match := range m.Detect(bars) {
		if match.Index == 0 && match.Name != "Doji" && match.Name != "Marubozu" {
			t.Errorf("bar 0 matched %s, which needs lookback", match.Name)
		}
	}
}

func TestDetect_Deterministic(t *testing.T) {
	bars := stamp([]model.Bar{
		mkBar(105, 105.5, 101.5, 102),
		mkBar(100, 101.2, 96, 101),
		mkBar(102, 102.3, 100.5, 100.8),
		mkBar(100.5, 102.8, 100.2, 102.5),
		mkBar(100, 102, 98, 100.1),
	})

	m := NewMatcher()
	first := m.Detect(bars)
	second := m.Detect(bars)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("matcher not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestDetectAt_CatalogOrderStable(t *testing.T) {
	// A flat-open doji with a long lower wick after a down bar matches
	// both Doji and Hammer-family geometry; Doji must come first.
	bars := stamp([]model.Bar{
		mkBar(105, 105.5, 101.5, 102),
		mkBar(100, 100.2, 96, 100.1), // body 0.1, range 4.2, lower wick 4
	})

	m := NewMatcher()
	matches := m.DetectAt(bars, 1)
	if len(matches) < 2 {
		t.Fatalf("expected multiple matches, got %+v", matches)
	}
	if matches[0].Name != "Doji" {
		t.Errorf("expected Doji first in catalog order, got %s", matches[0].Name)
	}
	if matches[1].Name != "Hammer" {
		t.Errorf("expected Hammer second, got %s", matches[1].Name)
	}
}

func TestCatalog_CoversAllEntries(t *testing.T) {
	m := NewMatcher()
	infos := m.Catalog()
	if len(infos) != len(m.catalog) {
		t.Fatalf("catalog info count = %d, want %d", len(infos), len(m.catalog))
	}
	for _, info := range infos {
		if info.Description == "" || info.Formation == "" {
			t.Errorf("%s: missing reference text", info.Name)
		}
		if info.Candles < 1 || info.Candles > 3 {
			t.Errorf("%s: candles = %d", info.Name, info.Candles)
		}
	}
}
