// Package app assembles the runtime dependencies shared by the Cloud
// Function entry points and the roommatch CLI.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/liteapi-travel/room-matcher-async/internal/batch"
	"github.com/liteapi-travel/room-matcher-async/internal/config"
	"github.com/liteapi-travel/room-matcher-async/internal/inventory"
	"github.com/liteapi-travel/room-matcher-async/internal/metrics"
	"github.com/liteapi-travel/room-matcher-async/internal/service"
	"github.com/liteapi-travel/room-matcher-async/internal/store"
)

type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Redis   *redis.Client
	Rooms   inventory.Source
	Matcher *service.Matcher
	Batch   *batch.Processor

	db *sql.DB
}

// New connects nothing eagerly except Postgres, which is pinged when it is
// the room source.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
		Redis: redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}),
	}
	kv := store.NewRedis(a.Redis)

	source, err := a.roomSource(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if cfg.Rooms.CacheTTL > 0 {
		source = inventory.NewCached(source, kv, cfg.Rooms.CacheTTL, logger)
	}
	a.Rooms = source

	a.Matcher = service.New(a.Rooms, a.Metrics, logger)
	a.Batch = batch.New(kv, a.Matcher, a.Rooms, batch.Options{
		Concurrency: cfg.Batch.Concurrency,
		RateLimit:   cfg.Batch.RateLimit,
		RateBurst:   cfg.Batch.RateBurst,
		ResultTTL:   cfg.Batch.ResultTTL,
	}, a.Metrics, logger)

	return a, nil
}

func (a *App) roomSource(ctx context.Context) (inventory.Source, error) {
	switch a.Config.Rooms.Source {
	case config.SourcePostgres:
		db, err := inventory.Open(ctx, a.Config.Database.DSN())
		if err != nil {
			return nil, err
		}
		a.db = db
		a.Logger.Info("using postgres room inventory", zap.String("host", a.Config.Database.Host))
		return inventory.NewPostgres(db, a.Logger), nil
	case config.SourceFile:
		if _, err := os.Stat(a.Config.Rooms.File); errors.Is(err, os.ErrNotExist) {
			a.Logger.Warn("rooms file not found, using built-in demo rooms", zap.String("path", a.Config.Rooms.File))
			return inventory.Static(inventory.DefaultRooms()), nil
		}
		a.Logger.Info("using file room inventory", zap.String("path", a.Config.Rooms.File))
		return inventory.File{Path: a.Config.Rooms.File}, nil
	default:
		return nil, fmt.Errorf("unknown room source %q", a.Config.Rooms.Source)
	}
}

// Close releases the Redis client and, if open, the database pool.
func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
