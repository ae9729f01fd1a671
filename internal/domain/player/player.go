package player

import "errors"

// ErrUserNotFound is returned when a username cannot be resolved to an id
var ErrUserNotFound = errors.New("user not found")

// Player is a WarEra account whose companies can be loaded into a session
type Player struct {
	ID       string
	Username string
}

// NewPlayer creates a new player
func NewPlayer(id, username string) *Player {
	return &Player{
		ID:       id,
		Username: username,
	}
}
