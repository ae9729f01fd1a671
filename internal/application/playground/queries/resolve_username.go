package queries

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andrescamacho/warera-economy-go/internal/application/common"
	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
	"github.com/andrescamacho/warera-economy-go/internal/domain/player"
)

// MinSearchLength is the shortest query that triggers a ranking scan
const MinSearchLength = 2

// ResolveUsernameQuery looks up a user id by case-insensitive username
type ResolveUsernameQuery struct {
	Username    string
	Token       string
	Fingerprint string
}

// ResolveUsernameResponse reports whether the user exists
type ResolveUsernameResponse struct {
	Found    bool
	UserID   string
	Username string
}

// ResolveUsernameHandler handles ResolveUsernameQuery
type ResolveUsernameHandler struct {
	users *userLookup
}

// NewResolveUsernameHandler creates a new handler; players may be nil
func NewResolveUsernameHandler(resolver player.UsernameResolver, players player.PlayerRepository) *ResolveUsernameHandler {
	return &ResolveUsernameHandler{users: &userLookup{resolver: resolver, players: players}}
}

// Handle executes the query
func (h *ResolveUsernameHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ResolveUsernameQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ResolveUsernameQuery")
	}

	username := strings.TrimSpace(query.Username)
	if len([]rune(username)) < MinSearchLength {
		return &ResolveUsernameResponse{Found: false, Username: username}, nil
	}

	id, found, err := h.users.resolve(ctx, username)
	if err != nil {
		return nil, err
	}

	return &ResolveUsernameResponse{Found: found, UserID: id, Username: username}, nil
}

// userLookup checks the local player store before scanning the ranking,
// and remembers every successful scan
type userLookup struct {
	resolver player.UsernameResolver
	players  player.PlayerRepository
}

func (u *userLookup) resolve(ctx context.Context, username string) (string, bool, error) {
	logger := common.LoggerFromContext(ctx)

	if u.players != nil {
		p, err := u.players.FindByUsername(ctx, username)
		if err == nil {
			return p.ID, true, nil
		}
		if !errors.Is(err, player.ErrUserNotFound) {
			logger.Log("WARNING", "Player store lookup failed", map[string]interface{}{
				"username": username,
				"error":    err.Error(),
			})
		}
	}

	id, found, err := u.resolver.ResolveUsername(ctx, username)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve username: %w", err)
	}
	if !found {
		return "", false, nil
	}

	if u.players != nil {
		if err := u.players.Add(ctx, player.NewPlayer(id, username)); err != nil {
			logger.Log("WARNING", "Failed to remember resolved player", map[string]interface{}{
				"username": username,
				"error":    err.Error(),
			})
		}
	}
	return id, true, nil
}
