package api

import (
	"errors"
	"fmt"
	"hash/fnv"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"trading-advisor/internal/engine"
	"trading-advisor/internal/model"
)

var validate = validator.New()

// BarDTO is the wire form of one OHLCV bar.
type BarDTO struct {
	TS     time.Time `json:"ts" validate:"required"`
	Open   float64   `json:"open" validate:"gt=0"`
	High   float64   `json:"high" validate:"gt=0"`
	Low    float64   `json:"low" validate:"gt=0"`
	Close  float64   `json:"close" validate:"gt=0"`
	Volume float64   `json:"volume" validate:"gte=0"`
}

func (b BarDTO) toModel() model.Bar {
	return model.Bar{
		TS:     b.TS,
		Open:   b.Open,
		High:   b.High,
		Low:    b.Low,
		Close:  b.Close,
		Volume: b.Volume,
	}
}

func toBars(dtos []BarDTO) []model.Bar {
	bars := make([]model.Bar, len(dtos))
	for i, d := range dtos {
		bars[i] = d.toModel()
	}
	return bars
}

// AnalyzeRequest is the body of POST /api/v1/analyze. Engine, when
// present, overrides the server's engine tuning for this request only.
type AnalyzeRequest struct {
	Symbol string         `json:"symbol" validate:"required,max=32"`
	Bars   []BarDTO       `json:"bars" validate:"required,min=1,dive"`
	Engine *engine.Config `json:"engine,omitempty"`
}

// AnalyzeResponse is one analyzed series.
type AnalyzeResponse struct {
	Symbol     string         `json:"symbol"`
	Bars       int            `json:"bars"`
	AnalyzedAt time.Time      `json:"analyzed_at"`
	Analysis   model.Analysis `json:"analysis"`
}

// BatchRequest is the body of POST /api/v1/analyze/batch. One optional
// engine override applies to every series.
type BatchRequest struct {
	Series []BatchSeries  `json:"series" validate:"required,min=1,max=50,dive"`
	Engine *engine.Config `json:"engine,omitempty"`
}

// BatchSeries is one symbol's bars within a batch request.
type BatchSeries struct {
	Symbol string   `json:"symbol" validate:"required,max=32"`
	Bars   []BarDTO `json:"bars" validate:"required,min=1,dive"`
}

// BatchResponse holds per-series results. A series that fails carries
// Error instead of a result; other series are unaffected.
type BatchResponse struct {
	Results []BatchResult `json:"results"`
}

// BatchResult is one entry of a batch response.
type BatchResult struct {
	Symbol   string           `json:"symbol"`
	Analysis *AnalyzeResponse `json:"analysis,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// ValidationError describes one failed field constraint.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details []ValidationError `json:"details,omitempty"`
}

// bindAndValidate binds the request body into req, applies struct-tag
// defaults, and validates. Returns field errors suitable for a 400 body.
func bindAndValidate(c echo.Context, req interface{}) []ValidationError {
	if err := c.Bind(req); err != nil {
		return bindError(err)
	}
	if err := defaults.Set(req); err != nil {
		return bindError(err)
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return bindError(err)
	}
	return nil
}

func bindError(err error) []ValidationError {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		out := make([]ValidationError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			out = append(out, ValidationError{
				Field:   fe.Field(),
				Message: fieldMessage(fe),
			})
		}
		return out
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return []ValidationError{{Message: fmt.Sprintf("%v", he.Message)}}
	}
	return []ValidationError{{Message: err.Error()}}
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if fe.Type().Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s elements", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Type().Kind() == reflect.Slice || fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("%s must have at most %s elements", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

// cacheKey fingerprints a request so identical symbol, bars, and engine
// tuning hit the same cache entry.
func cacheKey(symbol string, bars []BarDTO, cfg engine.Config) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%+v|%d", symbol, cfg, len(bars))
	for _, b := range bars {
		fmt.Fprintf(h, "|%d:%g:%g:%g:%g:%g",
			b.TS.UnixNano(), b.Open, b.High, b.Low, b.Close, b.Volume)
	}
	return fmt.Sprintf("%s:%x", symbol, h.Sum64())
}
