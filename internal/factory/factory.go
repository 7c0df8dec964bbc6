package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/connectfour-go/internal/api"
	"github.com/mcoot/connectfour-go/internal/dependencies/clock"
	"github.com/mcoot/connectfour-go/internal/dependencies/random"
	"github.com/mcoot/connectfour-go/internal/protocol"
	"github.com/mcoot/connectfour-go/internal/services/dispatch"
	"github.com/mcoot/connectfour-go/internal/services/games"
	"github.com/mcoot/connectfour-go/internal/services/matchmaking"
	"github.com/mcoot/connectfour-go/internal/services/players"
	"github.com/mcoot/connectfour-go/internal/storage"
	"github.com/mcoot/connectfour-go/internal/storage/memory"
	pgstorage "github.com/mcoot/connectfour-go/internal/storage/postgres"
	redisstorage "github.com/mcoot/connectfour-go/internal/storage/redis"
	"github.com/mcoot/connectfour-go/internal/transport/ws"
	"github.com/mcoot/connectfour-go/internal/worker"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Archive storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Live state
	Players    *players.Registry
	Games      *games.Registry
	Matchmaker *matchmaking.Engine
	Dispatcher *dispatch.Dispatcher

	// Transport
	Codec     protocol.Codec
	Pool      *worker.Pool
	Hub       *ws.Hub
	WebSocket *ws.Handler

	Logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the archive backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds database settings (required if StorageType is "postgres")
	PostgresConfig *pgstorage.Config
	// Workers is the size of the request worker pool
	// If zero, defaults to worker.DefaultSize
	Workers int
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	app, err := newWithDependencies(store, clock.New(), random.New(), cfg.Workers, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return app, nil
}

func newStorage(ctx context.Context, cfg Config, logger *slog.Logger) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		return pgstorage.New(ctx, *cfg.PostgresConfig, logger)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'postgres'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	workers int,
	logger *slog.Logger,
	gameOpts ...games.Option,
) (*App, error) {
	pool, err := worker.New(workers, logger)
	if err != nil {
		return nil, err
	}

	playerRegistry := players.NewRegistry(clk, logger)
	gameRegistry := games.NewRegistry(clk, logger, gameOpts...)
	engine := matchmaking.NewEngine(rnd, logger)
	codec := protocol.NewMsgpackCodec()
	hub := ws.NewHub(logger)
	dispatcher := dispatch.New(playerRegistry, gameRegistry, engine, codec, hub, store, clk, logger)

	return &App{
		Storage:    store,
		Clock:      clk,
		Random:     rnd,
		Players:    playerRegistry,
		Games:      gameRegistry,
		Matchmaker: engine,
		Dispatcher: dispatcher,
		Codec:      codec,
		Pool:       pool,
		Hub:        hub,
		WebSocket:  ws.NewHandler(hub, dispatcher, pool, logger),
		Logger:     logger,
	}, nil
}

// Router builds the HTTP routes for the app
func (a *App) Router() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:    a.Logger,
		Archive:   a.Storage,
		Live:      a.Dispatcher,
		Workers:   a.Pool,
		Conns:     a.Hub,
		WebSocket: a.WebSocket,
	})
}

// Close disconnects every client, waits for their games to be forfeited and
// archived, then releases the worker pool and storage
func (a *App) Close(ctx context.Context) error {
	a.Hub.CloseAll()
	if err := a.WebSocket.Wait(ctx); err != nil {
		a.Logger.Warn("connections still closing", slog.String("error", err.Error()))
	}

	timeout := 5 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	return errors.Join(a.Pool.Release(timeout), a.Storage.Close())
}
