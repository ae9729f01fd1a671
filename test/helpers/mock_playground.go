package helpers

import (
	"context"
	"strings"
	"sync"

	"github.com/andrescamacho/warera-economy-go/internal/domain/production"
)

// MockUsernameResolver resolves from a fixed username -> id table
type MockUsernameResolver struct {
	mu    sync.Mutex
	users map[string]string
	calls int
	Err   error
}

// NewMockUsernameResolver creates a resolver over users (keys are case-insensitive)
func NewMockUsernameResolver(users map[string]string) *MockUsernameResolver {
	normalized := make(map[string]string, len(users))
	for name, id := range users {
		normalized[strings.ToLower(name)] = id
	}
	return &MockUsernameResolver{users: normalized}
}

// ResolveUsername looks the name up in the table
func (m *MockUsernameResolver) ResolveUsername(ctx context.Context, username string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return "", false, m.Err
	}
	id, ok := m.users[strings.ToLower(strings.TrimSpace(username))]
	return id, ok, nil
}

// Calls returns how many lookups reached the resolver
func (m *MockUsernameResolver) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockTokenOwner returns a fixed owner id
type MockTokenOwner struct {
	ID  string
	Err error
}

// OwnerID returns the configured id or error
func (m *MockTokenOwner) OwnerID(ctx context.Context) (string, error) {
	return m.ID, m.Err
}

// MockCompanySource returns canned facilities per user id
type MockCompanySource struct {
	Facilities map[string][]production.FacilityParams
	Err        error
}

// FetchFacilities returns the user's facilities
func (m *MockCompanySource) FetchFacilities(ctx context.Context, userID string) ([]production.FacilityParams, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Facilities[userID], nil
}

// MockPriceMapSource returns a fixed price map
type MockPriceMapSource struct {
	Prices map[string]float64
	Err    error
}

// FetchPriceMap returns the configured prices
func (m *MockPriceMapSource) FetchPriceMap(ctx context.Context) (map[string]float64, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Prices, nil
}
