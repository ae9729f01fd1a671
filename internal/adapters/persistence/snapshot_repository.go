package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
)

const latestSnapshotID = 1

// SnapshotRepositoryGORM stores the latest price snapshot in the database
type SnapshotRepositoryGORM struct {
	db *gorm.DB
}

// NewSnapshotRepository creates a new GORM-based snapshot repository
func NewSnapshotRepository(db *gorm.DB) *SnapshotRepositoryGORM {
	return &SnapshotRepositoryGORM{db: db}
}

// Load returns the stored snapshot, or nil when nothing has been saved yet
func (r *SnapshotRepositoryGORM) Load(ctx context.Context) (*market.Snapshot, error) {
	var header PriceSnapshotModel
	err := r.db.WithContext(ctx).Where("id = ?", latestSnapshotID).First(&header).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var rows []MarketPriceModel
	if err := r.db.WithContext(ctx).Order("product_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load market prices: %w", err)
	}

	prices := make([]market.MarketPrice, len(rows))
	for i, row := range rows {
		prices[i] = market.MarketPrice{
			ProductID:    row.ProductID,
			AveragePrice: row.AveragePrice,
			LastUpdated:  row.LastUpdated,
		}
	}

	return market.NewSnapshot(prices, header.Timestamp), nil
}

// Save replaces the stored snapshot atomically
func (r *SnapshotRepositoryGORM) Save(ctx context.Context, snapshot *market.Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Delete all existing rows; the snapshot is re-inserted as a whole
		if err := tx.Where("1 = 1").Delete(&MarketPriceModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete old market prices: %w", err)
		}

		if len(snapshot.Prices) > 0 {
			rows := make([]MarketPriceModel, 0, len(snapshot.Prices))
			seen := make(map[string]bool, len(snapshot.Prices))
			for _, p := range snapshot.Prices {
				if seen[p.ProductID] {
					continue
				}
				seen[p.ProductID] = true
				rows = append(rows, MarketPriceModel{
					ProductID:    p.ProductID,
					AveragePrice: p.AveragePrice,
					LastUpdated:  p.LastUpdated,
				})
			}

			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to insert market prices: %w", err)
			}
		}

		header := PriceSnapshotModel{ID: latestSnapshotID, Timestamp: snapshot.Timestamp}
		if err := tx.Save(&header).Error; err != nil {
			return fmt.Errorf("failed to save snapshot header: %w", err)
		}

		return nil
	})
}
