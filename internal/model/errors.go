package model

import (
	"errors"
	"fmt"
	"time"
)

// InsufficientDataError reports input too short for any computation to
// proceed (e.g. an empty bar sequence). Per-point "not enough history"
// conditions are represented as not-ready Points instead, so callers
// can render partial series.
type InsufficientDataError struct {
	Op   string // operation that failed, e.g. "sma"
	Need int    // minimum bars required
	Got  int    // bars provided
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: need %d bars, got %d", e.Op, e.Need, e.Got)
}

// InvalidConfigError reports an engine configuration that cannot be used
// (non-positive window, buy threshold not above sell threshold, ...).
type InvalidConfigError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

// SeriesOrderError reports a bar sequence whose timestamps are not
// strictly increasing.
type SeriesOrderError struct {
	Index  int
	TS     time.Time
	PrevTS time.Time
}

func (e *SeriesOrderError) Error() string {
	return fmt.Sprintf("bar %d out of order: ts %s not after %s",
		e.Index, e.TS.Format(time.RFC3339), e.PrevTS.Format(time.RFC3339))
}

// IsInsufficientData reports whether err is an InsufficientDataError.
func IsInsufficientData(err error) bool {
	var ide *InsufficientDataError
	return errors.As(err, &ide)
}

// IsInvalidConfig reports whether err is an InvalidConfigError.
func IsInvalidConfig(err error) bool {
	var ice *InvalidConfigError
	return errors.As(err, &ice)
}
