package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Metrics holds all Prometheus metrics for the advisor service.
type Metrics struct {
	RequestsTotal  *prometheus.CounterVec // labels: endpoint, status
	AnalyzeDur     prometheus.Histogram
	BarsPerRequest prometheus.Histogram

	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	SignalsTotal    *prometheus.CounterVec // labels: action
	PatternsMatched *prometheus.CounterVec // labels: pattern

	WSClients prometheus.Gauge
	WSFrames  prometheus.Counter

	// Redis cache circuit breaker (0=closed, 1=open, 2=half-open)
	CacheBreakerState prometheus.Gauge
	CacheBreakerTrips prometheus.Counter
}

// New registers and returns all advisor metrics.
func New() *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_requests_total",
			Help: "Total HTTP requests by endpoint and status code",
		}, []string{"endpoint", "status"}),
		AnalyzeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "advisor_analyze_duration_seconds",
			Help:    "Full analysis latency (indicators + patterns + signal)",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		BarsPerRequest: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "advisor_bars_per_request",
			Help:    "Number of bars submitted per analyze request",
			Buckets: []float64{10, 30, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "advisor_cache_hits_total",
			Help: "Analysis responses served from cache",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "advisor_cache_misses_total",
			Help: "Analysis requests that missed the cache",
		}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_signals_total",
			Help: "Signals emitted by action (BUY, SELL, HOLD)",
		}, []string{"action"}),
		PatternsMatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_patterns_matched_total",
			Help: "Candlestick patterns matched on the latest bar",
		}, []string{"pattern"}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "advisor_ws_clients",
			Help: "Currently connected WebSocket clients",
		}),
		WSFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "advisor_ws_frames_total",
			Help: "Analysis frames pushed over WebSocket",
		}),
		CacheBreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "advisor_cache_breaker_state",
			Help: "Redis cache circuit breaker state (0=closed, 1=open, 2=half-open)",
		}),
		CacheBreakerTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "advisor_cache_breaker_trips_total",
			Help: "Times the Redis cache circuit breaker tripped open",
		}),
	}

	prometheus.MustRegister(
		m.RequestsTotal,
		m.AnalyzeDur,
		m.BarsPerRequest,
		m.CacheHits,
		m.CacheMisses,
		m.SignalsTotal,
		m.PatternsMatched,
		m.WSClients,
		m.WSFrames,
		m.CacheBreakerState,
		m.CacheBreakerTrips,
	)

	return m
}

// HealthStatus tracks liveness of the service and its optional
// dependencies for the /healthz endpoint.
type HealthStatus struct {
	mu sync.RWMutex

	RedisEnabled   bool
	RedisConnected bool
	RedisLatencyMs float64
	LastCheckAt    time.Time
	StartedAt      time.Time
}

// NewHealthStatus returns a status anchored at the current time.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

type pinger interface {
	Ping(ctx context.Context) error
}

// StartLivenessChecker periodically probes the Redis cache tier. A nil
// probe disables the check.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, probe pinger, interval time.Duration) {
	if probe == nil {
		return
	}
	h.mu.Lock()
	h.RedisEnabled = true
	h.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				start := time.Now()
				err := probe.Ping(probeCtx)
				cancel()

				h.mu.Lock()
				h.RedisConnected = err == nil
				h.RedisLatencyMs = float64(time.Since(start).Microseconds()) / 1000.0
				h.LastCheckAt = time.Now()
				h.mu.Unlock()
			}
		}
	}()
}

// ServeHTTP handles /healthz. The service is degraded, not down, when
// the optional Redis tier is unreachable.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	if h.RedisEnabled && !h.RedisConnected {
		overallStatus = "degraded"
	}

	lastCheck := ""
	if !h.LastCheckAt.IsZero() {
		lastCheck = h.LastCheckAt.Format(time.RFC3339)
	}

	status := struct {
		Status         string  `json:"status"`
		Uptime         string  `json:"uptime"`
		RedisEnabled   bool    `json:"redis_enabled"`
		RedisConnected bool    `json:"redis_connected"`
		RedisLatencyMs float64 `json:"redis_latency_ms"`
		LastCheckAt    string  `json:"last_check_at,omitempty"`
	}{
		Status:         overallStatus,
		Uptime:         time.Since(h.StartedAt).Round(time.Second).String(),
		RedisEnabled:   h.RedisEnabled,
		RedisConnected: h.RedisConnected,
		RedisLatencyMs: h.RedisLatencyMs,
		LastCheckAt:    lastCheck,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz, separate
// from the API listener.
type Server struct {
	addr string
	srv  *http.Server
	log  zerolog.Logger
}

// NewServer creates the metrics and health server.
func NewServer(addr string, health *HealthStatus, log zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", health)

	return &Server{
		addr: addr,
		log:  log.With().Str("component", "metrics").Logger(),
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("metrics server listening")
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			s.log.Error().Err(err).Msg("metrics server error")
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
