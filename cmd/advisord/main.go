// Command advisord runs the analysis engine as an HTTP and WebSocket
// service with Prometheus metrics on a separate listener.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"trading-advisor/config"
	"trading-advisor/internal/api"
	"trading-advisor/internal/cache"
	"trading-advisor/internal/engine"
	"trading-advisor/internal/gateway"
	"trading-advisor/internal/metrics"
	"trading-advisor/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "advisord:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// Missing .env is fine; env vars may come from the environment.
	godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	log, err := logger.New("advisord", cfg.Logger)
	if err != nil {
		return err
	}

	eng, err := engine.New(cfg.Engine)
	if err != nil {
		return err
	}

	m := metrics.New()
	health := metrics.NewHealthStatus()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Cache tier: Redis when configured and reachable, else in-process.
	var store cache.Cache = cache.NewMemory()
	if cfg.Cache.RedisAddr != "" {
		rc := cache.NewRedis(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, m, log)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rc.Ping(pingCtx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).
				Msg("redis unreachable, falling back to in-process cache")
			rc.Close()
		} else {
			store = rc
			defer rc.Close()
			health.StartLivenessChecker(ctx, rc, 15*time.Second)
			log.Info().Str("addr", cfg.Cache.RedisAddr).Msg("redis cache enabled")
		}
	}

	metricsSrv := metrics.NewServer(cfg.Metrics.Addr, health, log)
	metricsSrv.Start()

	handler := api.NewHandler(eng, store, cfg.Cache.TTL, cfg.Server.MaxBars, m, log)
	apiSrv := api.NewServer(api.ServerConfig{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, handler, m, log)

	gw := gateway.New(eng, cfg.Server.MaxBars, m, log)
	apiSrv.Echo().GET("/api/v1/stream", echo.WrapHandler(gw))

	apiSrv.Start()
	log.Info().
		Str("addr", cfg.Server.Addr).
		Int("rsi_window", cfg.Engine.RSIWindow).
		Ints("sma_windows", cfg.Engine.SMAWindows).
		Msg("advisor ready")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := apiSrv.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("api shutdown")
	}
	metricsSrv.Stop(shutdownCtx)
	return nil
}
