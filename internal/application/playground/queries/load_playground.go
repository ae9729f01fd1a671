package queries

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/andrescamacho/warera-economy-go/internal/application/common"
	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/player"
	"github.com/andrescamacho/warera-economy-go/internal/domain/production"
)

// LoadPlaygroundQuery loads a user's companies and the current price map.
// An empty Username loads the owner of the session token.
type LoadPlaygroundQuery struct {
	Username    string
	Token       string
	Fingerprint string
}

// LoadPlaygroundResponse is the facility snapshot a session starts from
type LoadPlaygroundResponse struct {
	UserID     string
	Username   string
	Facilities []production.FacilityParams
	Prices     market.PriceTable
}

// LoadPlaygroundHandler handles LoadPlaygroundQuery
type LoadPlaygroundHandler struct {
	users     *userLookup
	owner     player.TokenOwner
	companies player.CompanySource
	prices    player.PriceMapSource
}

// NewLoadPlaygroundHandler creates a new handler; players may be nil
func NewLoadPlaygroundHandler(
	resolver player.UsernameResolver,
	players player.PlayerRepository,
	owner player.TokenOwner,
	companies player.CompanySource,
	prices player.PriceMapSource,
) *LoadPlaygroundHandler {
	return &LoadPlaygroundHandler{
		users:     &userLookup{resolver: resolver, players: players},
		owner:     owner,
		companies: companies,
		prices:    prices,
	}
}

// Handle executes the query
func (h *LoadPlaygroundHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*LoadPlaygroundQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *LoadPlaygroundQuery")
	}

	logger := common.LoggerFromContext(ctx)
	username := strings.TrimSpace(query.Username)

	var userID string
	if username != "" {
		id, found, err := h.users.resolve(ctx, username)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", player.ErrUserNotFound, username)
		}
		userID = id
	} else {
		id, err := h.owner.OwnerID(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to identify token owner: %w", err)
		}
		userID = id
	}

	var facilities []production.FacilityParams
	var priceMap map[string]float64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		facilities, err = h.companies.FetchFacilities(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load companies: %w", err)
		}
		return nil
	})
	// a missing price map only zeroes prices; companies still load
	var priceErr error
	g.Go(func() error {
		priceMap, priceErr = h.prices.FetchPriceMap(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	prices := market.EmptyPriceTable()
	if priceErr != nil {
		logger.Log("WARNING", "Price map unavailable, continuing without prices", map[string]interface{}{
			"user_id": userID,
			"error":   priceErr.Error(),
		})
	} else {
		table, err := market.NewPriceTable(priceMap)
		if err != nil {
			return nil, fmt.Errorf("invalid price map: %w", err)
		}
		prices = table
	}

	if facilities == nil {
		facilities = []production.FacilityParams{}
	}

	logger.Log("INFO", "Playground loaded", map[string]interface{}{
		"user_id":    userID,
		"facilities": len(facilities),
		"prices":     prices.Len(),
	})

	return &LoadPlaygroundResponse{
		UserID:     userID,
		Username:   username,
		Facilities: facilities,
		Prices:     prices,
	}, nil
}
