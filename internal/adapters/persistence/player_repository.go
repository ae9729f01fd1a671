package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/warera-economy-go/internal/domain/player"
	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
)

// GormPlayerRepository implements PlayerRepository using GORM
type GormPlayerRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormPlayerRepository creates a new GORM player repository
// If clock is nil, uses RealClock (production behavior)
func NewGormPlayerRepository(db *gorm.DB, clock shared.Clock) *GormPlayerRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormPlayerRepository{db: db, clock: clock}
}

// FindByUsername retrieves a player by case-insensitive username
func (r *GormPlayerRepository) FindByUsername(ctx context.Context, username string) (*player.Player, error) {
	var model PlayerModel
	result := r.db.WithContext(ctx).Where("username = ?", normalizeUsername(username)).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", player.ErrUserNotFound, username)
		}
		return nil, fmt.Errorf("failed to find player: %w", result.Error)
	}

	return player.NewPlayer(model.ID, model.Username), nil
}

// Add persists a resolved player, replacing any earlier mapping for the username
func (r *GormPlayerRepository) Add(ctx context.Context, p *player.Player) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("player id cannot be empty")
	}

	model := PlayerModel{
		ID:         p.ID,
		Username:   normalizeUsername(p.Username),
		ResolvedAt: r.clock.Now(),
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("username = ? AND id <> ?", model.Username, model.ID).Delete(&PlayerModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear stale mapping: %w", err)
		}
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "resolved_at"}),
		}).Create(&model)
		if result.Error != nil {
			return fmt.Errorf("failed to add player: %w", result.Error)
		}
		return nil
	})
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
