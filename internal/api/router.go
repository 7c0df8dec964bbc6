package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/connectfour-go/internal/api/apierr"
	"github.com/mcoot/connectfour-go/internal/api/handler"
	"github.com/mcoot/connectfour-go/internal/middleware"
	"github.com/mcoot/connectfour-go/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger    *slog.Logger
	Archive   storage.Storage
	Live      handler.LiveStats
	Workers   handler.WorkerStats
	Conns     handler.ConnectionCounter
	WebSocket http.Handler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	playerHandler := handler.NewPlayerHandler(cfg.Archive)
	gameHandler := handler.NewGameHandler(cfg.Archive)
	statsHandler := handler.NewStatsHandler(cfg.Live, cfg.Workers, cfg.Conns)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger, apierr.PanicHandler)

	// Game protocol endpoint; the logging writer passes the hijack through
	r.Handle("/ws", recoveryMiddleware(loggingMiddleware(cfg.WebSocket))).Methods(http.MethodGet)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", handler.Health).Methods(http.MethodGet)
	api.HandleFunc("/stats", statsHandler.Get).Methods(http.MethodGet)

	// Archive routes
	api.HandleFunc("/players/{username}/{display_name}", playerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/players/{username}/{display_name}/games", playerHandler.Games).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", gameHandler.Get).Methods(http.MethodGet)

	return r
}
