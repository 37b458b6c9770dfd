package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/upb/capability-resolver/config"
	"github.com/upb/capability-resolver/handlers"
	"github.com/upb/capability-resolver/internal/observability"
	"github.com/upb/capability-resolver/middleware"
	"github.com/upb/capability-resolver/models"
	"github.com/upb/capability-resolver/repositories"
	"github.com/upb/capability-resolver/repositories/memory"
	"github.com/upb/capability-resolver/repositories/postgres"
	"github.com/upb/capability-resolver/services/catalog"
	"github.com/upb/capability-resolver/services/routing"
	"go.uber.org/zap"
)

// Dependencies holds every wired component of the resolver service
type Dependencies struct {
	// Infrastructure
	Config   *config.Config
	Logger   *zap.Logger
	DB       *postgres.DB // nil when the registry is kept in memory
	Registry *prometheus.Registry

	// Repository factory, only set in postgres mode
	RepoFactory *postgres.RepositoryFactory

	// Domain
	Catalog   *catalog.Catalog
	Providers repositories.ProviderRepository
	Routing   *routing.RoutingService

	// HTTP
	Middleware      *middleware.ResolutionMiddleware
	HealthHandler   *handlers.HealthHandler
	ProviderHandler *handlers.ProviderHandler
	ResolverHandler *handlers.ResolverHandler
	CatalogHandler  *handlers.CatalogHandler
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}

	if err := deps.initCatalog(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize catalog: %w", err)
	}

	seed, err := loadSeed(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load provider seed: %w", err)
	}

	if err := deps.initRepositories(ctx, cfg, seed); err != nil {
		return nil, fmt.Errorf("failed to initialize provider registry: %w", err)
	}

	if err := deps.initRouting(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize routing: %w", err)
	}

	deps.initHandlers()

	logger.Info("all dependencies initialized successfully",
		zap.Bool("postgres", deps.DB != nil),
		zap.String("default_strategy", string(deps.Routing.GetStrategy())))
	return deps, nil
}

// initCatalog loads the catalog override or falls back to the built-in table
func (d *Dependencies) initCatalog(cfg *config.Config) error {
	if cfg.Resolver.CatalogFile == "" {
		d.Catalog = catalog.Default()
		return nil
	}

	cat, err := catalog.LoadFile(cfg.Resolver.CatalogFile)
	if err != nil {
		return err
	}
	d.Catalog = cat
	d.Logger.Info("catalog loaded",
		zap.String("file", cfg.Resolver.CatalogFile),
		zap.Strings("families", cat.Families()))
	return nil
}

func loadSeed(cfg *config.Config) ([]*models.ProviderCandidate, error) {
	if cfg.Resolver.ProvidersFile == "" {
		return nil, nil
	}
	return memory.LoadFile(cfg.Resolver.ProvidersFile)
}

// initRepositories selects the postgres registry when a database is configured
// and the in-memory registry otherwise, then applies the seed
func (d *Dependencies) initRepositories(ctx context.Context, cfg *config.Config, seed []*models.ProviderCandidate) error {
	if cfg.Database == nil {
		repo := memory.NewProviderRepository(d.Logger)
		if len(seed) > 0 {
			if err := repo.Seed(ctx, seed); err != nil {
				return err
			}
		}
		d.Providers = repo
		d.Logger.Info("using in-memory provider registry", zap.Int("seeded", len(seed)))
		return nil
	}

	factory, err := postgres.NewRepositoryFactory(*cfg.Database, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}
	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if cfg.Database.InitSchema {
		if err := d.DB.InitSchema(ctx); err != nil {
			return err
		}
	}

	if len(seed) > 0 {
		if err := factory.SeedProviders(ctx, seed); err != nil {
			return err
		}
	}

	d.Providers = factory.NewRepositories().Providers
	return nil
}

// initRouting builds the routing service and registers its metrics
func (d *Dependencies) initRouting(cfg *config.Config) error {
	strategy, err := routing.ParseStrategy(cfg.Resolver.DefaultStrategy)
	if err != nil {
		return err
	}

	d.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	routingCfg := routing.DefaultRoutingConfig()
	routingCfg.DefaultStrategy = strategy
	routingCfg.EnableFallbackWarnings = cfg.Resolver.EnableFallbackWarnings

	d.Routing = routing.NewRoutingService(routingCfg, d.Catalog, d.Providers, d.Logger).
		WithMetrics(observability.NewPrometheusMetrics(d.Registry))
	return nil
}

func (d *Dependencies) initHandlers() {
	var db handlers.HealthChecker
	if d.DB != nil {
		db = d.DB
	}

	d.Middleware = middleware.NewResolutionMiddleware(d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(db, d.Providers, d.Logger)
	d.ProviderHandler = handlers.NewProviderHandler(d.Providers, d.Logger)
	d.ResolverHandler = handlers.NewResolverHandler(d.Routing, d.Logger)
	d.CatalogHandler = handlers.NewCatalogHandler(d.Catalog, d.Logger)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	_ = d.Logger.Sync()

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
