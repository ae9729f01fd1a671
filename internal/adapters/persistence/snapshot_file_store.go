package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
)

// snapshotFile is the on-disk JSON layout of the price cache
type snapshotFile struct {
	Prices    []priceEntry `json:"prices"`
	Timestamp time.Time    `json:"timestamp"`
}

type priceEntry struct {
	ProductID    string    `json:"productId"`
	AveragePrice float64   `json:"averagePrice"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

// FileSnapshotStore keeps the latest snapshot in a single JSON file
type FileSnapshotStore struct {
	path string
	mu   sync.Mutex
}

// NewFileSnapshotStore creates a store backed by the given file path
func NewFileSnapshotStore(path string) *FileSnapshotStore {
	return &FileSnapshotStore{path: path}
}

// Path returns the cache file location
func (s *FileSnapshotStore) Path() string {
	return s.path
}

// Load reads the cache file. A missing file is not an error.
func (s *FileSnapshotStore) Load(ctx context.Context) (*market.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read price cache: %w", err)
	}

	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse price cache %s: %w", s.path, err)
	}

	prices := make([]market.MarketPrice, len(file.Prices))
	for i, p := range file.Prices {
		prices[i] = market.MarketPrice{
			ProductID:    p.ProductID,
			AveragePrice: p.AveragePrice,
			LastUpdated:  p.LastUpdated,
		}
	}

	return market.NewSnapshot(prices, file.Timestamp), nil
}

// Save writes the snapshot through a temp file and rename
func (s *FileSnapshotStore) Save(ctx context.Context, snapshot *market.Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file := snapshotFile{
		Prices:    make([]priceEntry, len(snapshot.Prices)),
		Timestamp: snapshot.Timestamp,
	}
	for i, p := range snapshot.Prices {
		file.Prices[i] = priceEntry{
			ProductID:    p.ProductID,
			AveragePrice: p.AveragePrice,
			LastUpdated:  p.LastUpdated,
		}
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal price cache: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write price cache: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace price cache: %w", err)
	}

	return nil
}
