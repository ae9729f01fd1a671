package helpers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/andrescamacho/warera-economy-go/internal/domain/player"
)

// MockPlayerRepository is a test double for PlayerRepository interface
type MockPlayerRepository struct {
	mu         sync.RWMutex
	byUsername map[string]*player.Player // lower-cased username -> player
	adds       int
}

// NewMockPlayerRepository creates a new mock player repository
func NewMockPlayerRepository() *MockPlayerRepository {
	return &MockPlayerRepository{
		byUsername: make(map[string]*player.Player),
	}
}

// FindByUsername retrieves a player by username
func (m *MockPlayerRepository) FindByUsername(ctx context.Context, username string) (*player.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.byUsername[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", player.ErrUserNotFound, username)
	}
	return p, nil
}

// Add stores a player
func (m *MockPlayerRepository) Add(ctx context.Context, p *player.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byUsername[strings.ToLower(strings.TrimSpace(p.Username))] = p
	m.adds++
	return nil
}

// AddCount returns how many times Add was called
func (m *MockPlayerRepository) AddCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.adds
}
