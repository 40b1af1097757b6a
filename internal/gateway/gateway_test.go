package gateway

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"trading-advisor/internal/engine"
	"trading-advisor/internal/metrics"
	"trading-advisor/internal/model"
)

var testMetrics = metrics.New()

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	eng, err := engine.New(engine.DefaultConfig())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	log := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return New(eng, 5000, testMetrics, log)
}

func dial(t *testing.T, g *Gateway) (*websocket.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(g)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func flatBars(n int) []model.Bar {
	base := time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)
	bars := make([]model.Bar, n)
	for i := range bars {
		bars[i] = model.Bar{
			TS:     base.Add(time.Duration(i) * time.Minute),
			Open:   100, High: 100.5, Low: 99.5, Close: 100,
			Volume: 1000,
		}
	}
	return bars
}

func readFrame(t *testing.T, conn *websocket.Conn, out interface{}) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := json.Unmarshal(msg, out); err != nil {
		t.Fatalf("decode %s: %v", msg, err)
	}
}

func TestGatewayAnalyzeRoundTrip(t *testing.T) {
	g := newTestGateway(t)
	conn, done := dial(t, g)
	defer done()

	err := conn.WriteJSON(AnalyzeFrame{
		Type: TypeAnalyze, ID: "req-1", Symbol: "RELIANCE", Bars: flatBars(60),
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	var resp AnalysisFrame
	readFrame(t, conn, &resp)
	if resp.Type != TypeAnalysis {
		t.Fatalf("expected analysis frame, got %q", resp.Type)
	}
	if resp.ID != "req-1" || resp.Symbol != "RELIANCE" || resp.Bars != 60 {
		t.Errorf("bad envelope: %+v", resp)
	}
	if resp.Analysis == nil || resp.Analysis.Signal.Action != model.ActionHold {
		t.Errorf("expected HOLD on flat series, got %+v", resp.Analysis)
	}
}

func TestGatewayMultiplexing(t *testing.T) {
	g := newTestGateway(t)
	conn, done := dial(t, g)
	defer done()

	for _, id := range []string{"a", "b", "c"} {
		if err := conn.WriteJSON(AnalyzeFrame{
			Type: TypeAnalyze, ID: id, Symbol: "X", Bars: flatBars(30),
		}); err != nil {
			t.Fatalf("write %s: %v", id, err)
		}
	}

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		var resp AnalysisFrame
		readFrame(t, conn, &resp)
		seen[resp.ID] = true
	}
	for _, id := range []string{"a", "b", "c"} {
		if !seen[id] {
			t.Errorf("missing reply for id %q", id)
		}
	}
}

func TestGatewayErrorFrames(t *testing.T) {
	g := newTestGateway(t)
	conn, done := dial(t, g)
	defer done()

	cases := []struct {
		name  string
		frame AnalyzeFrame
	}{
		{"missing symbol", AnalyzeFrame{Type: TypeAnalyze, ID: "1", Bars: flatBars(10)}},
		{"no bars", AnalyzeFrame{Type: TypeAnalyze, ID: "2", Symbol: "X"}},
		{"unknown type", AnalyzeFrame{Type: "subscribe", ID: "3"}},
	}
	for _, tc := range cases {
		if err := conn.WriteJSON(tc.frame); err != nil {
			t.Fatalf("%s: write: %v", tc.name, err)
		}
		var resp ErrorFrame
		readFrame(t, conn, &resp)
		if resp.Type != TypeError {
			t.Errorf("%s: expected error frame, got %q", tc.name, resp.Type)
		}
		if resp.ID != tc.frame.ID {
			t.Errorf("%s: expected id %q echoed, got %q", tc.name, tc.frame.ID, resp.ID)
		}
	}

	// The connection survives errors.
	if err := conn.WriteJSON(AnalyzeFrame{
		Type: TypeAnalyze, ID: "4", Symbol: "X", Bars: flatBars(20),
	}); err != nil {
		t.Fatalf("write after errors: %v", err)
	}
	var resp AnalysisFrame
	readFrame(t, conn, &resp)
	if resp.Type != TypeAnalysis {
		t.Errorf("expected analysis after errors, got %q", resp.Type)
	}
}

func TestGatewayUnorderedBars(t *testing.T) {
	g := newTestGateway(t)
	conn, done := dial(t, g)
	defer done()

	bars := flatBars(10)
	bars[5].TS = bars[2].TS
	if err := conn.WriteJSON(AnalyzeFrame{
		Type: TypeAnalyze, ID: "x", Symbol: "X", Bars: bars,
	}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var resp ErrorFrame
	readFrame(t, conn, &resp)
	if resp.Type != TypeError {
		t.Fatalf("expected error frame, got %q", resp.Type)
	}
}
