package server

import (
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/plausch-chat/plausch/internal/broker"
	"github.com/plausch-chat/plausch/internal/config"
	"github.com/plausch-chat/plausch/internal/stats"
)

// Server binds the broker, router, and statistics store to the HTTP
// transport.
type Server struct {
	registry *broker.Registry
	router   *broker.Router
	store    stats.Store
	cfg      config.ServerConfig
	logger   *slog.Logger
	limiters *senderLimiters
	origins  *originPolicy
	upgrader websocket.Upgrader
}

// New creates a Server over the given broker components. store may be nil
// when statistics are disabled.
func New(registry *broker.Registry, router *broker.Router, store stats.Store, cfg config.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		registry: registry,
		router:   router,
		store:    store,
		cfg:      cfg,
		logger:   logger,
		limiters: newSenderLimiters(cfg.RateLimit.Burst, cfg.RateLimit.RefillInterval),
		origins:  newOriginPolicy(cfg.AllowedOrigins, logger),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.origins.checkRequest,
	}
	return s
}
