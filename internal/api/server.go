package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"trading-advisor/internal/metrics"
)

// ServerConfig holds the API listener settings.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server wraps the Echo HTTP server hosting the REST API.
type Server struct {
	echo *echo.Echo
	cfg  ServerConfig
	log  zerolog.Logger
}

// NewServer builds the API server: recovery, CORS, request IDs, request
// logging, and per-route metrics, then the handler's routes.
func NewServer(cfg ServerConfig, h *Handler, m *metrics.Metrics, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout

	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(requestID())
	e.Use(requestLogging(log))
	e.Use(requestMetrics(m))

	h.RegisterRoutes(e)

	return &Server{
		echo: e,
		cfg:  cfg,
		log:  log.With().Str("component", "http").Logger(),
	}
}

// Echo returns the underlying Echo instance, for mounting extra routes.
func (s *Server) Echo() *echo.Echo { return s.echo }

// Start launches the listener in a goroutine.
func (s *Server) Start() {
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("api server listening")
		if err := s.echo.Start(s.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("api server error")
		}
	}()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return err
	}
	s.log.Info().Msg("api server stopped")
	return nil
}
