package player

import (
	"context"

	"github.com/andrescamacho/warera-economy-go/internal/domain/production"
)

// UsernameResolver maps a case-insensitive username to a user id
type UsernameResolver interface {
	ResolveUsername(ctx context.Context, username string) (userID string, found bool, err error)
}

// TokenOwner identifies the account that owns the session token
type TokenOwner interface {
	OwnerID(ctx context.Context) (string, error)
}

// CompanySource loads a user's companies as facility parameters
type CompanySource interface {
	FetchFacilities(ctx context.Context, userID string) ([]production.FacilityParams, error)
}

// PriceMapSource fetches the whole current price map in one call
type PriceMapSource interface {
	FetchPriceMap(ctx context.Context) (map[string]float64, error)
}

// PlayerRepository remembers resolved usernames between runs
type PlayerRepository interface {
	FindByUsername(ctx context.Context, username string) (*Player, error)
	Add(ctx context.Context, player *Player) error
}
