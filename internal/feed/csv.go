// Package feed loads OHLCV bar series from local files for the CLI.
package feed

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"trading-advisor/internal/model"
)

// Column aliases accepted in the CSV header, lowercased.
var columnAliases = map[string]string{
	"ts": "ts", "timestamp": "ts", "time": "ts", "date": "ts", "datetime": "ts",
	"open": "open", "o": "open",
	"high": "high", "h": "high",
	"low": "low", "l": "low",
	"close": "close", "c": "close", "adj close": "close", "adj_close": "close",
	"volume": "volume", "v": "volume", "vol": "volume",
}

// Timestamp layouts tried in order.
var tsLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02-01-2006",
}

// LoadCSV reads an OHLCV series from path. The file must have a header
// row naming at least ts, open, high, low, and close columns (volume is
// optional); extra columns are ignored. Rows come back in file order.
func LoadCSV(path string) ([]model.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open csv")
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads an OHLCV series from r. See LoadCSV for the format.
func Parse(r io.Reader) ([]model.Bar, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read csv header")
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var bars []model.Bar
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read csv line %d", line+1)
		}
		line++

		bar, err := parseBar(rec, cols)
		if err != nil {
			return nil, errors.Wrapf(err, "csv line %d", line)
		}
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, errors.New("csv contains no data rows")
	}
	return bars, nil
}

// mapColumns resolves header names to field indexes.
func mapColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		key, ok := columnAliases[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	for _, required := range []string{"ts", "open", "high", "low", "close"} {
		if _, ok := cols[required]; !ok {
			return nil, errors.Errorf("csv header missing %s column", required)
		}
	}
	return cols, nil
}

func parseBar(rec []string, cols map[string]int) (model.Bar, error) {
	field := func(key string) (string, error) {
		i := cols[key]
		if i >= len(rec) {
			return "", errors.Errorf("missing %s field", key)
		}
		return strings.TrimSpace(rec[i]), nil
	}

	var bar model.Bar

	raw, err := field("ts")
	if err != nil {
		return bar, err
	}
	bar.TS, err = parseTS(raw)
	if err != nil {
		return bar, err
	}

	for _, c := range []struct {
		key string
		dst *float64
	}{
		{"open", &bar.Open},
		{"high", &bar.High},
		{"low", &bar.Low},
		{"close", &bar.Close},
	} {
		raw, err := field(c.key)
		if err != nil {
			return bar, err
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return bar, errors.Wrapf(err, "parse %s", c.key)
		}
		*c.dst = v
	}

	if i, ok := cols["volume"]; ok && i < len(rec) {
		raw := strings.TrimSpace(rec[i])
		if raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return bar, errors.Wrap(err, "parse volume")
			}
			bar.Volume = v
		}
	}

	return bar, nil
}

// parseTS accepts the common layouts plus raw Unix seconds or millis.
func parseTS(raw string) (time.Time, error) {
	for _, layout := range tsLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	return time.Time{}, errors.Errorf("unrecognized timestamp %q", raw)
}
