package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"trading-advisor/internal/cache"
	"trading-advisor/internal/engine"
	"trading-advisor/internal/metrics"
)

// One registration against the default Prometheus registry per test
// binary.
var testMetrics = metrics.New()

func newTestHandler(t *testing.T, mem *cache.Memory, maxBars int) (*Handler, *echo.Echo) {
	t.Helper()
	eng, err := engine.New(engine.DefaultConfig())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	var c cache.Cache = cache.Nop{}
	if mem != nil {
		c = mem
	}
	log := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	h := NewHandler(eng, c, time.Minute, maxBars, testMetrics, log)
	e := echo.New()
	h.RegisterRoutes(e)
	return h, e
}

// flatBars emits n identical bars one minute apart.
func flatBars(n int) []BarDTO {
	base := time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)
	bars := make([]BarDTO, n)
	for i := range bars {
		bars[i] = BarDTO{
			TS:     base.Add(time.Duration(i) * time.Minute),
			Open:   100, High: 100.5, Low: 99.5, Close: 100,
			Volume: 1000,
		}
	}
	return bars
}

func doJSON(e *echo.Echo, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	_, e := newTestHandler(t, nil, 5000)
	rec := doJSON(e, http.MethodGet, "/api/v1/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestPatternsCatalog(t *testing.T) {
	_, e := newTestHandler(t, nil, 5000)
	rec := doJSON(e, http.MethodGet, "/api/v1/patterns", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var infos []struct {
		Name    string `json:"name"`
		Candles int    `json:"candles"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &infos); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(infos) != 13 {
		t.Errorf("expected 13 catalog entries, got %d", len(infos))
	}
	if infos[0].Name != "Doji" {
		t.Errorf("expected Doji first, got %q", infos[0].Name)
	}
}

func TestAnalyzeFlatSeries(t *testing.T) {
	_, e := newTestHandler(t, nil, 5000)
	rec := doJSON(e, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{
		Symbol: "RELIANCE",
		Bars:   flatBars(60),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Symbol != "RELIANCE" || resp.Bars != 60 {
		t.Errorf("bad envelope: %+v", resp)
	}
	if resp.Analysis.Signal.Action != "HOLD" {
		t.Errorf("expected HOLD on flat series, got %s", resp.Analysis.Signal.Action)
	}
	rsi, ok := resp.Analysis.Indicators["RSI_14"]
	if !ok || !rsi.Ready {
		t.Fatalf("expected ready RSI_14, got %+v", resp.Analysis.Indicators)
	}
	if rsi.Value != 50 {
		t.Errorf("expected RSI 50 on flat series, got %v", rsi.Value)
	}
}

func TestAnalyzeValidation(t *testing.T) {
	_, e := newTestHandler(t, nil, 5000)

	cases := []struct {
		name string
		req  AnalyzeRequest
	}{
		{"missing symbol", AnalyzeRequest{Bars: flatBars(10)}},
		{"no bars", AnalyzeRequest{Symbol: "X"}},
		{"zero price", AnalyzeRequest{Symbol: "X", Bars: []BarDTO{{
			TS: time.Now(), Open: 0, High: 1, Low: 1, Close: 1,
		}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/api/v1/analyze", tc.req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			var resp ErrorResponse
			json.Unmarshal(rec.Body.Bytes(), &resp)
			if len(resp.Details) == 0 {
				t.Error("expected field details in error body")
			}
		})
	}
}

func TestAnalyzeUnorderedBars(t *testing.T) {
	_, e := newTestHandler(t, nil, 5000)
	bars := flatBars(10)
	bars[5].TS = bars[2].TS

	rec := doJSON(e, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{
		Symbol: "X", Bars: bars,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAnalyzeMaxBars(t *testing.T) {
	_, e := newTestHandler(t, nil, 20)
	rec := doJSON(e, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{
		Symbol: "X", Bars: flatBars(21),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAnalyzeEngineOverride(t *testing.T) {
	_, e := newTestHandler(t, nil, 5000)

	bad := engine.DefaultConfig()
	bad.RSIWindow = -1
	rec := doJSON(e, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{
		Symbol: "X", Bars: flatBars(30), Engine: &bad,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid override, got %d", rec.Code)
	}

	good := engine.DefaultConfig()
	good.RSIWindow = 7
	rec = doJSON(e, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{
		Symbol: "X", Bars: flatBars(30), Engine: &good,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp AnalyzeResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if _, ok := resp.Analysis.Indicators["RSI_7"]; !ok {
		t.Errorf("expected RSI_7 with override, got %v", resp.Analysis.Indicators)
	}
}

func TestAnalyzePartialEngineOverrideRejected(t *testing.T) {
	_, e := newTestHandler(t, nil, 5000)

	// A hand-written override that omits strength_weights must not
	// silently disable pattern scoring; it is an invalid config.
	body := map[string]interface{}{
		"symbol": "X",
		"bars":   flatBars(30),
		"engine": map[string]interface{}{
			"rsi_window":     14,
			"sma_windows":    []int{20, 50},
			"ema_windows":    []int{9, 50},
			"macd_fast":      12,
			"macd_slow":      26,
			"macd_signal":    9,
			"buy_threshold":  3,
			"sell_threshold": -3,
		},
	}
	rec := doJSON(e, http.MethodPost, "/api/v1/analyze", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp ErrorResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if !strings.Contains(resp.Error, "strength_weights") {
		t.Errorf("expected strength_weights in error, got %q", resp.Error)
	}
}

func TestAnalyzeCaching(t *testing.T) {
	mem := cache.NewMemory()
	_, e := newTestHandler(t, mem, 5000)

	req := AnalyzeRequest{Symbol: "TCS", Bars: flatBars(40)}
	first := doJSON(e, http.MethodPost, "/api/v1/analyze", req)
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", first.Code)
	}
	if mem.Len() != 1 {
		t.Fatalf("expected 1 cache entry, got %d", mem.Len())
	}

	second := doJSON(e, http.MethodPost, "/api/v1/analyze", req)
	if second.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", second.Code)
	}
	if !bytes.Equal(bytes.TrimSpace(first.Body.Bytes()), bytes.TrimSpace(second.Body.Bytes())) {
		t.Error("cached response differs from original")
	}

	// A different symbol must not hit the same entry.
	other := doJSON(e, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{
		Symbol: "INFY", Bars: flatBars(40),
	})
	if other.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", other.Code)
	}
	if mem.Len() != 2 {
		t.Errorf("expected 2 cache entries, got %d", mem.Len())
	}
}

func TestAnalyzeBatch(t *testing.T) {
	_, e := newTestHandler(t, nil, 5000)

	bad := flatBars(10)
	bad[4].TS = bad[1].TS

	rec := doJSON(e, http.MethodPost, "/api/v1/analyze/batch", BatchRequest{
		Series: []BatchSeries{
			{Symbol: "GOOD", Bars: flatBars(40)},
			{Symbol: "BAD", Bars: bad},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp BatchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	if resp.Results[0].Symbol != "GOOD" || resp.Results[0].Analysis == nil || resp.Results[0].Error != "" {
		t.Errorf("expected GOOD to succeed: %+v", resp.Results[0])
	}
	if resp.Results[1].Symbol != "BAD" || resp.Results[1].Analysis != nil || resp.Results[1].Error == "" {
		t.Errorf("expected BAD to fail: %+v", resp.Results[1])
	}
}

func TestCacheKeyDistinguishesConfig(t *testing.T) {
	bars := flatBars(5)
	a := cacheKey("X", bars, engine.DefaultConfig())

	cfg := engine.DefaultConfig()
	cfg.RSIWindow = 7
	b := cacheKey("X", bars, cfg)
	if a == b {
		t.Error("expected different keys for different configs")
	}

	c := cacheKey("Y", bars, engine.DefaultConfig())
	if a == c {
		t.Error("expected different keys for different symbols")
	}

	moved := flatBars(5)
	moved[4].Close += 0.01
	d := cacheKey("X", moved, engine.DefaultConfig())
	if a == d {
		t.Error("expected different keys for different bars")
	}

	if a != cacheKey("X", flatBars(5), engine.DefaultConfig()) {
		t.Error("expected stable key for identical input")
	}
}

func TestRequestIDHeader(t *testing.T) {
	_, e := newTestHandler(t, nil, 5000)
	e.Use(requestID())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Header().Get(headerRequestID) == "" {
		t.Error("expected generated request id header")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set(headerRequestID, "abc-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := rec.Header().Get(headerRequestID); got != "abc-123" {
		t.Errorf("expected client id echoed back, got %q", got)
	}
}
