package cli

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/warera-economy-go/internal/adapters/api"
	"github.com/andrescamacho/warera-economy-go/internal/adapters/metrics"
	"github.com/andrescamacho/warera-economy-go/internal/adapters/persistence"
	"github.com/andrescamacho/warera-economy-go/internal/application/auth"
	"github.com/andrescamacho/warera-economy-go/internal/application/common"
	economyQueries "github.com/andrescamacho/warera-economy-go/internal/application/economy/queries"
	"github.com/andrescamacho/warera-economy-go/internal/application/market/services"
	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
	"github.com/andrescamacho/warera-economy-go/internal/application/setup"
	"github.com/andrescamacho/warera-economy-go/internal/domain/economy"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/player"
	"github.com/andrescamacho/warera-economy-go/internal/domain/recipe"
	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
	"github.com/andrescamacho/warera-economy-go/internal/infrastructure/config"
	"github.com/andrescamacho/warera-economy-go/internal/infrastructure/database"
	"github.com/andrescamacho/warera-economy-go/internal/infrastructure/logging"
)

// App is the fully wired engine shared by the CLI commands and the HTTP server
type App struct {
	Config     *config.Config
	UserConfig *config.UserConfig
	Catalog    *recipe.Catalog
	Defaults   economy.Defaults
	Mediator   mediator.Mediator
	Prices     *services.PriceCacheService
	Logger     *logging.Logger

	marketMetrics *metrics.MarketMetricsCollector
	db            *gorm.DB
}

// AppOptions carries per-invocation overrides
type AppOptions struct {
	// UserConfigPath overrides ~/.warera/config.json
	UserConfigPath string

	// Clock overrides the real clock (tests)
	Clock shared.Clock

	// EnableMetrics registers the Prometheus collectors
	EnableMetrics bool
}

// NewApp builds every collaborator from configuration
func NewApp(cfg *config.Config, opts AppOptions) (*App, error) {
	clock := opts.Clock
	if clock == nil {
		clock = shared.NewRealClock()
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	app := &App{Config: cfg, Logger: logger, Defaults: cfg.Economy.Defaults()}
	if err := app.init(clock, opts); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) init(clock shared.Clock, opts AppOptions) error {
	cfg := a.Config

	catalog, err := loadCatalog(cfg.Economy.CatalogPath)
	if err != nil {
		return err
	}
	a.Catalog = catalog

	userCfg, err := loadUserConfig(opts.UserConfigPath)
	if err != nil {
		return err
	}
	a.UserConfig = userCfg

	// Storage: the snapshot (and resolved players) live in a JSON file or in the database
	var store market.SnapshotStore
	var players player.PlayerRepository
	switch cfg.Storage.Type {
	case "database":
		db, err := database.NewConnection(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		a.db = db
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		store = persistence.NewSnapshotRepository(db)
		players = persistence.NewGormPlayerRepository(db, clock)
	default:
		store = persistence.NewFileSnapshotStore(cfg.Storage.FilePath)
	}

	client := api.NewClientFromConfig(cfg.API, clock)
	scraper := api.NewScraper(client, cfg.API.ScrapeDelay, clock)
	regions := api.NewRegionDirectory(client, cfg.Regions.TTL, clock)

	a.Prices = services.NewPriceCacheService(scraper, store, catalog, clock, services.PriceCacheOptions{
		StaleAfter:        cfg.Storage.StaleAfter,
		BackgroundRefresh: cfg.Storage.BackgroundRefresh,
	})
	a.Prices.SetOverrides(userCfg.PriceOverrides)

	var queryMetrics *metrics.QueryMetricsCollector
	if opts.EnableMetrics || cfg.Metrics.Enabled {
		queryMetrics, err = a.initMetrics(client, store, clock)
		if err != nil {
			return err
		}
	}

	env := economyQueries.Environment{
		Catalog:       catalog,
		Defaults:      a.Defaults,
		DefaultSalary: userCfg.SalaryOr(cfg.Economy.DefaultSalary),
		Prices:        a.Prices,
	}
	registry := setup.NewHandlerRegistry(env, a.Prices, setup.PlaygroundDeps{
		Resolver:  api.NewUsernameResolver(client, resolverOptions(cfg.Resolver), clock),
		Players:   players,
		Owner:     api.NewTokenOwner(cfg.API.Token),
		Companies: api.NewCompanyLoader(client, regions),
		PriceMap:  client,
	})

	a.Mediator, err = registry.CreateConfiguredMediator(
		a.loggerMiddleware,
		auth.SessionMiddleware(auth.Session{Token: cfg.API.Token, Fingerprint: cfg.API.Fingerprint}),
		metrics.QueryMetricsMiddleware(queryMetrics),
	)
	if err != nil {
		return fmt.Errorf("failed to configure mediator: %w", err)
	}
	return nil
}

func (a *App) initMetrics(client *api.Client, store market.SnapshotStore, clock shared.Clock) (*metrics.QueryMetricsCollector, error) {
	metrics.InitRegistry()

	marketCollector := metrics.NewMarketMetricsCollector(store, clock)
	economyCollector := metrics.NewEconomyMetricsCollector()
	upstreamCollector := metrics.NewUpstreamMetricsCollector()
	queryCollector := metrics.NewQueryMetricsCollector()

	for _, register := range []func() error{
		marketCollector.Register,
		economyCollector.Register,
		upstreamCollector.Register,
		queryCollector.Register,
	} {
		if err := register(); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	metrics.SetGlobalMarketCollector(marketCollector)
	metrics.SetGlobalEconomyCollector(economyCollector)
	client.SetRecorder(upstreamCollector)
	a.marketMetrics = marketCollector
	return queryCollector, nil
}

// loggerMiddleware makes the app logger available to every handler
func (a *App) loggerMiddleware(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
	return next(common.WithLogger(ctx, a.Logger), request)
}

// StartBackground starts pollers that only make sense in long-running processes
func (a *App) StartBackground(ctx context.Context) {
	if a.marketMetrics != nil {
		a.marketMetrics.Start(ctx)
	}
}

// Close releases everything the app opened
func (a *App) Close() {
	if a.marketMetrics != nil {
		a.marketMetrics.Stop()
	}
	if a.Prices != nil {
		a.Prices.Wait()
	}
	if a.db != nil {
		_ = database.Close(a.db)
	}
	if a.Logger != nil {
		_ = a.Logger.Close()
	}
}

func loadCatalog(path string) (*recipe.Catalog, error) {
	var catalog *recipe.Catalog
	var err error
	if path != "" {
		catalog, err = recipe.LoadCatalogFile(path)
	} else {
		catalog, err = recipe.DefaultCatalog()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe catalog: %w", err)
	}
	return catalog, nil
}

func loadUserConfig(path string) (*config.UserConfig, error) {
	handler, err := userConfigHandler(path)
	if err != nil {
		return nil, err
	}
	userCfg, err := handler.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	return userCfg, nil
}

func userConfigHandler(path string) (*config.UserConfigHandler, error) {
	if path != "" {
		return config.NewUserConfigHandlerAt(path)
	}
	return config.NewUserConfigHandler()
}

func resolverOptions(cfg config.ResolverConfig) api.ResolverOptions {
	opts := api.DefaultResolverOptions()
	if cfg.ChunkSize > 0 {
		opts.ChunkSize = cfg.ChunkSize
	}
	if cfg.RetryDelay > 0 {
		opts.RetryDelay = cfg.RetryDelay
	}
	opts.PauseEvery = cfg.PauseEvery
	if cfg.PauseDuration > 0 {
		opts.PauseDuration = cfg.PauseDuration
	}
	if cfg.RankingLimit > 0 {
		opts.RankingLimit = cfg.RankingLimit
	}
	opts.CacheTTL = cfg.CacheTTL
	return opts
}

// isTokenError reports whether err means the session must be renewed
func isTokenError(err error) bool {
	return errors.Is(err, market.ErrTokenExpired) || errors.Is(err, market.ErrTokenMissing)
}
