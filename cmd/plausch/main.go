package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/plausch-chat/plausch/internal/broker"
	"github.com/plausch-chat/plausch/internal/config"
	"github.com/plausch-chat/plausch/internal/geo"
	"github.com/plausch-chat/plausch/internal/meteo"
	"github.com/plausch-chat/plausch/internal/server"
	"github.com/plausch-chat/plausch/internal/stats"
	"github.com/plausch-chat/plausch/internal/weather"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("starting plausch server",
		"port", cfg.Server.Port,
		"long_poll_timeout", cfg.Server.LongPollTimeout,
		"statistics_db", cfg.Database.Enabled,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, cleanup, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to set up statistics store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	geocoder := geo.NewClient(cfg.Geocoder.BaseURL,
		geo.WithTimeout(cfg.Geocoder.Timeout),
		geo.WithUserAgent(cfg.Geocoder.UserAgent),
		geo.WithLogger(logger),
	)
	forecaster := meteo.NewClient(cfg.Weather.BaseURL,
		meteo.WithTimeout(cfg.Weather.Timeout),
		meteo.WithLogger(logger),
	)
	weatherSvc := weather.NewService(geocoder, forecaster, logger)

	registry := broker.NewRegistry()
	router := broker.NewRouter(registry, weatherSvc, store, logger)

	srv := server.New(registry, router, store, cfg.Server, logger)
	httpServer := server.CreateServer(cfg.Server.Port, srv.Routes())

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		if err := server.ShutdownServer(httpServer, cfg.Server.ShutdownTimeout); err != nil {
			// Abandoned long polls can outlive the grace period; cut
			// them off.
			_ = httpServer.Close()
		}
		cancel()
	}()

	if err := server.StartServer(httpServer); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadAndValidate(path)
}

// buildStore selects the statistics backend: Postgres when configured, the
// in-memory counter otherwise.
func buildStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (stats.Store, func(), error) {
	if !cfg.Database.Enabled {
		logger.Info("statistics database disabled, using in-memory counters")
		return stats.NewMemory(), func() {}, nil
	}

	logger.Info("connecting to statistics database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := stats.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	store, err := stats.NewPostgres(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	logger.Info("statistics database connected")
	return store, pool.Close, nil
}
