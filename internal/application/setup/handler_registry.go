package setup

import (
	"reflect"

	economyQueries "github.com/andrescamacho/warera-economy-go/internal/application/economy/queries"
	marketQueries "github.com/andrescamacho/warera-economy-go/internal/application/market/queries"
	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
	playgroundQueries "github.com/andrescamacho/warera-economy-go/internal/application/playground/queries"
	"github.com/andrescamacho/warera-economy-go/internal/domain/player"
)

// HandlerRegistry holds all application dependencies for handler creation
type HandlerRegistry struct {
	economy    economyQueries.Environment
	marketData marketQueries.MarketDataProvider

	// Playground dependencies; when resolver is nil the playground handlers are not registered
	resolver  player.UsernameResolver
	players   player.PlayerRepository
	owner     player.TokenOwner
	companies player.CompanySource
	priceMap  player.PriceMapSource
}

// PlaygroundDeps groups the collaborators of the playground queries
type PlaygroundDeps struct {
	Resolver  player.UsernameResolver
	Players   player.PlayerRepository
	Owner     player.TokenOwner
	Companies player.CompanySource
	PriceMap  player.PriceMapSource
}

// NewHandlerRegistry creates a new handler registry with required dependencies
func NewHandlerRegistry(
	economy economyQueries.Environment,
	marketData marketQueries.MarketDataProvider,
	playground PlaygroundDeps,
) *HandlerRegistry {
	return &HandlerRegistry{
		economy:    economy,
		marketData: marketData,
		resolver:   playground.Resolver,
		players:    playground.Players,
		owner:      playground.Owner,
		companies:  playground.Companies,
		priceMap:   playground.PriceMap,
	}
}

// RegisterEconomyHandlers registers the pure computation queries:
//   - CalculateCostQuery → CalculateCostHandler
//   - RankProfitabilityQuery → RankProfitabilityHandler
//   - ProjectFacilitiesQuery → ProjectFacilitiesHandler
//   - ReconcileNetworkQuery → ReconcileNetworkHandler
//   - GetFlowsQuery → GetFlowsHandler
func (r *HandlerRegistry) RegisterEconomyHandlers(m mediator.Mediator) error {
	handlers := map[reflect.Type]mediator.RequestHandler{
		reflect.TypeOf(&economyQueries.CalculateCostQuery{}):     economyQueries.NewCalculateCostHandler(r.economy),
		reflect.TypeOf(&economyQueries.RankProfitabilityQuery{}): economyQueries.NewRankProfitabilityHandler(r.economy),
		reflect.TypeOf(&economyQueries.ProjectFacilitiesQuery{}): economyQueries.NewProjectFacilitiesHandler(r.economy),
		reflect.TypeOf(&economyQueries.ReconcileNetworkQuery{}):  economyQueries.NewReconcileNetworkHandler(r.economy),
		reflect.TypeOf(&economyQueries.GetFlowsQuery{}):          economyQueries.NewGetFlowsHandler(r.economy),
	}
	for requestType, handler := range handlers {
		if err := m.Register(requestType, handler); err != nil {
			return err
		}
	}
	return nil
}

// RegisterMarketHandlers registers GetMarketDataQuery
func (r *HandlerRegistry) RegisterMarketHandlers(m mediator.Mediator) error {
	return m.Register(
		reflect.TypeOf(&marketQueries.GetMarketDataQuery{}),
		marketQueries.NewGetMarketDataHandler(r.marketData),
	)
}

// RegisterPlaygroundHandlers registers the account-backed queries:
//   - LoadPlaygroundQuery → LoadPlaygroundHandler
//   - ResolveUsernameQuery → ResolveUsernameHandler
func (r *HandlerRegistry) RegisterPlaygroundHandlers(m mediator.Mediator) error {
	if err := m.Register(
		reflect.TypeOf(&playgroundQueries.LoadPlaygroundQuery{}),
		playgroundQueries.NewLoadPlaygroundHandler(r.resolver, r.players, r.owner, r.companies, r.priceMap),
	); err != nil {
		return err
	}

	return m.Register(
		reflect.TypeOf(&playgroundQueries.ResolveUsernameQuery{}),
		playgroundQueries.NewResolveUsernameHandler(r.resolver, r.players),
	)
}

// CreateConfiguredMediator creates a mediator with every available handler registered.
// Middleware is attached by the caller, outermost first.
func (r *HandlerRegistry) CreateConfiguredMediator(middleware ...mediator.Middleware) (mediator.Mediator, error) {
	m := mediator.NewMediator()
	for _, mw := range middleware {
		m.RegisterMiddleware(mw)
	}

	if err := r.RegisterEconomyHandlers(m); err != nil {
		return nil, err
	}

	if r.marketData != nil {
		if err := r.RegisterMarketHandlers(m); err != nil {
			return nil, err
		}
	}

	if r.resolver != nil {
		if err := r.RegisterPlaygroundHandlers(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}
