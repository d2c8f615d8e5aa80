package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/simaogato/estateflow-backend/internal/adapter/cache"
	"github.com/simaogato/estateflow-backend/internal/adapter/repository/sqlstore"
	"github.com/simaogato/estateflow-backend/internal/config"
	"github.com/simaogato/estateflow-backend/internal/domain"
	"github.com/simaogato/estateflow-backend/internal/logging"
	"github.com/simaogato/estateflow-backend/internal/metrics"
	"github.com/simaogato/estateflow-backend/internal/usecase/pricing"
	"github.com/simaogato/estateflow-backend/internal/usecase/scheduler"
	"github.com/simaogato/estateflow-backend/internal/usecase/seeder"
	"github.com/simaogato/estateflow-backend/internal/usecase/timeline"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// App holds the wired dependencies shared by the commands
type App struct {
	Config  *config.Config
	Logger  logging.Logger
	DB      *sqlstore.DB
	Cache   domain.CacheRepository
	Metrics *metrics.Metrics

	ProductRepo  domain.ProductRepository
	SitePlanRepo domain.SitePlanRepository
	DiscountRepo domain.DiscountRepository
	ScheduleRepo domain.ScheduleRepository

	Pricing  *pricing.PricingService
	Schedule *timeline.ScheduleService
	Seeder   *seeder.CatalogSeeder

	closers []func() error
}

// newApp loads the configuration and wires repositories and services
func newApp(ctx context.Context, configFile string) (app *App, err error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(logging.Options{Level: cfg.LogLevel, Debug: cfg.LogDebug})
	if err != nil {
		return nil, err
	}

	app = &App{Config: cfg, Logger: logger, Metrics: metrics.New()}
	app.closers = append(app.closers, logger.Sync)
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	db, err := openDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	app.DB = db
	app.closers = append(app.closers, db.Close)

	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache(cfg.RedisAddr)
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, falling back to the in-process cache", "addr", cfg.RedisAddr, "error", err)
			_ = redisCache.Close()
			app.Cache = cache.NewMemoryCache()
		} else {
			app.Cache = redisCache
			app.closers = append(app.closers, redisCache.Close)
		}
	} else {
		app.Cache = cache.NewMemoryCache()
	}

	app.ProductRepo = sqlstore.NewProductRepository(db)
	app.SitePlanRepo = sqlstore.NewSitePlanRepository(db)
	app.DiscountRepo = sqlstore.NewDiscountRepository(db)
	app.ScheduleRepo = sqlstore.NewScheduleRepository(db)

	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	app.Pricing = pricing.NewPricingService(app.ProductRepo, app.DiscountRepo, app.Cache, cfg.Currency, cfg.PriceCacheTTL)
	app.Pricing.Logger = logger.New("component", "pricing")
	app.Pricing.Metrics = app.Metrics

	app.Schedule = timeline.NewScheduleService(app.ProductRepo, app.SitePlanRepo, app.ScheduleRepo, app.Cache,
		cfg.Currency, scheduler.Config{PlusDays: cfg.PlusDays})
	app.Schedule.Location = location
	app.Schedule.Logger = logger.New("component", "schedule")
	app.Schedule.Metrics = app.Metrics

	app.Seeder = seeder.NewCatalogSeeder(app.DiscountRepo, app.SitePlanRepo, app.ProductRepo)

	return app, nil
}

// openDB connects to the database, retrying while it comes up
func openDB(ctx context.Context, cfg *config.Config, logger logging.Logger) (*sqlstore.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err := sqlstore.Open(cfg.DB.Driver, cfg.DSN())
		if err == nil {
			return db, nil
		}
		lastErr = err
		logger.Warn("database not ready", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", connectAttempts, lastErr)
}

// Close releases every resource in reverse acquisition order
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}
