package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	database "github.com/FACorreiaa/rotinaai-settings/app/db"
	"github.com/FACorreiaa/rotinaai-settings/app/observability/metrics"
	"github.com/FACorreiaa/rotinaai-settings/config"
	"github.com/FACorreiaa/rotinaai-settings/internal/api/settings"
	"github.com/FACorreiaa/rotinaai-settings/internal/kv"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Logger          *slog.Logger
	Pool            *pgxpool.Pool
	Redis           *redis.Client
	Store           kv.Store
	SettingsService *settings.SettingsServiceImpl
	SettingsHandler *settings.SettingsHandler
}

// NewContainer wires the storage backend named by settings.storageBackend
// into the settings service and handler. m may be nil.
func NewContainer(ctx context.Context, cfg *config.Config, m *metrics.AppMetrics, logger *slog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	store, err := c.openStore(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Store = store

	instrumented := settings.InstrumentStorage(store, cfg.Settings.StorageBackend, m)
	repo, err := settings.NewKVSettingsRepo(instrumented, settings.Mode(cfg.Settings.PersistenceMode), logger)
	if err != nil {
		c.Close()
		return nil, err
	}

	pulse := cfg.Settings.PulseDuration
	if pulse == 0 {
		pulse = settings.DefaultPulseDuration
	}
	c.SettingsService = settings.NewSettingsService(repo, settings.Ownership(cfg.Settings.ThemeOwner), pulse, m, logger)
	c.SettingsHandler = settings.NewSettingsHandler(c.SettingsService, cfg.Settings.ThemeCookie, logger)
	return c, nil
}

func (c *Container) openStore(ctx context.Context) (kv.Store, error) {
	cfg := c.Config
	switch cfg.Settings.StorageBackend {
	case "memory":
		return kv.NewMemory(), nil
	case "cache":
		return kv.NewCache(), nil
	case "redis":
		client, err := kv.DialRedis(ctx, cfg.Repositories.Redis.URL)
		if err != nil {
			c.Logger.Error("Failed to connect to redis", slog.Any("error", err))
			return nil, err
		}
		c.Redis = client
		c.Logger.Info("Successfully connected to Redis")
		return kv.WithPrefix(kv.NewRedis(client), cfg.Repositories.Redis.KeyPrefix), nil
	case "postgres":
		dbConfig, err := database.NewDatabaseConfig(cfg, c.Logger)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(dbConfig.ConnectionURL, c.Logger); err != nil {
			return nil, err
		}
		pool, err := database.Init(ctx, dbConfig.ConnectionURL, c.Logger)
		if err != nil {
			return nil, err
		}
		c.Pool = pool
		if !database.WaitForDB(ctx, pool, c.Logger) {
			return nil, fmt.Errorf("database not ready after retries")
		}
		return kv.NewPostgres(pool), nil
	default:
		return nil, fmt.Errorf("unknown settings storage backend %q", cfg.Settings.StorageBackend)
	}
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("Error closing redis client", slog.Any("error", err))
		}
	}
}
