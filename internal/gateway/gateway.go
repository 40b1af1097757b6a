// Package gateway streams analyses over WebSocket. A client pushes bar
// batches as analyze frames and receives one analysis or error frame
// per request, multiplexed by the client-chosen ID.
package gateway

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"trading-advisor/internal/engine"
	"trading-advisor/internal/metrics"
	"trading-advisor/internal/model"
)

// Gateway upgrades HTTP connections and serves the analyze stream.
type Gateway struct {
	eng     *engine.Engine
	maxBars int
	metrics *metrics.Metrics
	log     zerolog.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// New creates a gateway backed by the shared engine.
func New(eng *engine.Engine, maxBars int, m *metrics.Metrics, log zerolog.Logger) *Gateway {
	return &Gateway{
		eng:     eng,
		maxBars: maxBars,
		metrics: m,
		log:     log.With().Str("component", "gateway").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the connection and runs the client pumps.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}

	c := &client{gw: g, conn: conn, send: make(chan []byte, sendBuffer)}

	g.mu.Lock()
	g.clients[c] = struct{}{}
	n := len(g.clients)
	g.mu.Unlock()
	g.metrics.WSClients.Set(float64(n))
	g.log.Info().Int("clients", n).Msg("ws client connected")

	go c.writePump()
	c.readPump()
}

// remove drops a disconnected client.
func (g *Gateway) remove(c *client) {
	g.mu.Lock()
	if _, ok := g.clients[c]; ok {
		delete(g.clients, c)
		close(c.send)
	}
	n := len(g.clients)
	g.mu.Unlock()
	g.metrics.WSClients.Set(float64(n))
	g.log.Info().Int("clients", n).Msg("ws client disconnected")
}

// handleAnalyze runs one frame through the engine and builds the reply.
func (g *Gateway) handleAnalyze(frame AnalyzeFrame) interface{} {
	if frame.Symbol == "" {
		return ErrorFrame{Type: TypeError, ID: frame.ID, Error: "symbol is required"}
	}
	if len(frame.Bars) == 0 {
		return ErrorFrame{Type: TypeError, ID: frame.ID, Symbol: frame.Symbol, Error: "bars are required"}
	}
	if len(frame.Bars) > g.maxBars {
		return ErrorFrame{
			Type: TypeError, ID: frame.ID, Symbol: frame.Symbol,
			Error: "too many bars: limit is " + model.Itoa(g.maxBars),
		}
	}

	eng := g.eng
	if frame.Engine != nil {
		override, err := engine.New(*frame.Engine)
		if err != nil {
			return ErrorFrame{Type: TypeError, ID: frame.ID, Symbol: frame.Symbol, Error: err.Error()}
		}
		eng = override
	}

	analysis, err := eng.Analyze(frame.Bars)
	if err != nil {
		return ErrorFrame{Type: TypeError, ID: frame.ID, Symbol: frame.Symbol, Error: err.Error()}
	}

	g.metrics.WSFrames.Inc()
	g.metrics.SignalsTotal.WithLabelValues(string(analysis.Signal.Action)).Inc()

	return AnalysisFrame{
		Type:     TypeAnalysis,
		ID:       frame.ID,
		Symbol:   frame.Symbol,
		Bars:     len(frame.Bars),
		Analysis: analysis,
	}
}
