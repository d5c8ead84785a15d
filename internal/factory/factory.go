package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/perspectra/portal/internal/authclient"
	"github.com/perspectra/portal/internal/catalog"
	"github.com/perspectra/portal/internal/dependencies/clock"
	"github.com/perspectra/portal/internal/dependencies/random"
	"github.com/perspectra/portal/internal/services/gate"
	"github.com/perspectra/portal/internal/services/ledger"
	"github.com/perspectra/portal/internal/services/session"
	"github.com/perspectra/portal/internal/services/stats"
	"github.com/perspectra/portal/internal/storage"
	"github.com/perspectra/portal/internal/storage/memory"
	redisstorage "github.com/perspectra/portal/internal/storage/redis"
	sqlitestorage "github.com/perspectra/portal/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	AuthClient     *authclient.Client
	SessionManager *session.Manager
	LedgerService  *ledger.Service
	StatsService   *stats.Service
	Gate           *gate.Gate
}

// Config holds configuration for the application factory
type Config struct {
	// AuthURL is the base URL of the external authentication service
	AuthURL string
	// SessionConfig holds configuration for the session manager (optional)
	// If zero value, defaults to session.DefaultConfig()
	SessionConfig session.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file path (required if StorageType is "sqlite")
	SQLitePath string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	if cfg.AuthURL == "" {
		return nil, errors.New("AuthURL is required")
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlitestorage.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Use default session config if not provided
	sessionCfg := cfg.SessionConfig
	if sessionCfg.SessionDuration == 0 {
		sessionCfg = session.DefaultConfig()
	}

	return newWithDependencies(store, clk, rnd, cfg.AuthURL, sessionCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, authURL string, sessionCfg session.Config, logger *slog.Logger) *App {
	authClient := authclient.New(authURL)
	sessionManager := session.New(store, clk, rnd, sessionCfg, logger)
	ledgerService := ledger.New(store, catalog.Scenarios(), clk, logger)
	statsService := stats.New(store, catalog.Roster(), catalog.Scenarios(), logger)
	accessGate := gate.New(sessionManager, ledgerService, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		AuthClient:     authClient,
		SessionManager: sessionManager,
		LedgerService:  ledgerService,
		StatsService:   statsService,
		Gate:           accessGate,
	}
}
