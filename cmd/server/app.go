package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"tailor-backend/internal/cache"
	"tailor-backend/internal/config"
	"tailor-backend/internal/db"
	"tailor-backend/internal/docstore"
	"tailor-backend/internal/format"
	"tailor-backend/internal/logger"
	"tailor-backend/internal/repositories"
	"tailor-backend/internal/timeutil"
)

// app holds the process-wide dependencies shared by every command.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	pool   *pgxpool.Pool
	store  docstore.Client
	users  repositories.UserStore
	format *format.Formatter

	closers []func()
}

// bootstrap loads config and opens the store. Redis is optional: when it is
// unreachable the cache is disabled and the change feed stays in-process.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.Init(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if err := timeutil.SetLocation(cfg.Format.Timezone); err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	f, err := format.New(cfg.Format.Locale, cfg.Format.Currency)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, format: f}

	if cfg.Redis.Enabled {
		if err := cache.Init(cache.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}); err != nil {
			log.Warn("Redis unavailable, caching disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			log.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
			a.closers = append(a.closers, func() { cache.Close() })
		}
	}

	feed, err := a.openFeed(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	switch cfg.Store.Driver {
	case "memory":
		log.Warn("Using in-memory store; data is lost on restart")
		a.store = docstore.NewMemoryStore(docstore.WithFeed(feed))
		a.users = repositories.NewMemoryUserRepository()
	default:
		pool, err := db.Connect(ctx, cfg.Database)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect database: %w", err)
		}
		log.Info("Connected to PostgreSQL",
			zap.String("host", cfg.Database.Host),
			zap.String("database", cfg.Database.Name))
		a.pool = pool
		a.closers = append(a.closers, pool.Close)
		a.store = docstore.NewPostgresStore(pool, feed)
		a.users = repositories.NewUserRepository(pool)
	}
	return a, nil
}

func (a *app) openFeed(ctx context.Context) (docstore.Feed, error) {
	if a.cfg.Store.Feed != "redis" {
		return docstore.NewLocalFeed(), nil
	}
	client := cache.GetClient()
	if client == nil {
		a.log.Warn("Redis change feed requested but Redis is unavailable; live updates stay local to this instance")
		return docstore.NewLocalFeed(), nil
	}
	feed := docstore.NewRedisFeed(client)
	if err := feed.Start(ctx); err != nil {
		return nil, fmt.Errorf("start change feed: %w", err)
	}
	// Runs before the Redis client closes.
	a.closers = append(a.closers, func() { feed.Close() })
	return feed, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	a.log.Sync()
}
