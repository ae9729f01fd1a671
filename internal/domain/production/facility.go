package production

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/andrescamacho/warera-economy-go/internal/domain/economy"
	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
)

// FacilityParams describes a facility before level clamping and validation
type FacilityParams struct {
	ID              string
	Name            string
	OutputItemID    string
	AutomationLevel int
	StorageLevel    int
	ProductionBonus shared.Percentage
	Workers         []Worker
	CurrentStock    float64
}

// Facility is a production unit with one output item. It is mutable during a
// session (roster and level edits) and is never persisted. The computation
// packages only read it.
type Facility struct {
	id              string
	name            string
	outputItemID    string
	automationLevel int
	storageLevel    int
	productionBonus shared.Percentage
	workers         []Worker
	currentStock    float64

	minLevel int
	maxLevel int
}

// NewFacility validates params and clamps levels into the defaults' range
func NewFacility(p FacilityParams, defaults economy.Defaults) (*Facility, error) {
	if strings.TrimSpace(p.OutputItemID) == "" {
		return nil, shared.NewValidationError("output_item_id", "facility must produce an item")
	}
	if !nonNegative(p.CurrentStock) {
		return nil, shared.NewValidationError("current_stock", "must be a non-negative number")
	}

	id := p.ID
	if id == "" {
		id = uuid.New().String()
	}

	workers := make([]Worker, len(p.Workers))
	copy(workers, p.Workers)

	return &Facility{
		id:              id,
		name:            p.Name,
		outputItemID:    strings.TrimSpace(p.OutputItemID),
		automationLevel: defaults.ClampLevel(p.AutomationLevel),
		storageLevel:    defaults.ClampLevel(p.StorageLevel),
		productionBonus: p.ProductionBonus,
		workers:         workers,
		currentStock:    p.CurrentStock,
		minLevel:        defaults.MinLevel,
		maxLevel:        defaults.MaxLevel,
	}, nil
}

func (f *Facility) ID() string                         { return f.id }
func (f *Facility) Name() string                       { return f.name }
func (f *Facility) OutputItemID() string               { return f.outputItemID }
func (f *Facility) AutomationLevel() int               { return f.automationLevel }
func (f *Facility) StorageLevel() int                  { return f.storageLevel }
func (f *Facility) ProductionBonus() shared.Percentage { return f.productionBonus }
func (f *Facility) CurrentStock() float64              { return f.currentStock }

// Workers returns a copy of the roster
func (f *Facility) Workers() []Worker {
	out := make([]Worker, len(f.workers))
	copy(out, f.workers)
	return out
}

// AddWorker appends a worker to the roster
func (f *Facility) AddWorker(w Worker) {
	f.workers = append(f.workers, w)
}

// RemoveWorker drops the worker with the given id
func (f *Facility) RemoveWorker(workerID string) error {
	for i, w := range f.workers {
		if w.ID() == workerID {
			f.workers = append(f.workers[:i], f.workers[i+1:]...)
			return nil
		}
	}
	return shared.NewNotFoundError("worker", workerID)
}

// SetWorkerWage changes one worker's wage per work point
func (f *Facility) SetWorkerWage(workerID string, wage float64) error {
	for i, w := range f.workers {
		if w.ID() != workerID {
			continue
		}
		updated, err := w.WithWage(wage)
		if err != nil {
			return err
		}
		f.workers[i] = updated
		return nil
	}
	return shared.NewNotFoundError("worker", workerID)
}

// AdjustAutomationLevel moves the automation level by delta, clamped
func (f *Facility) AdjustAutomationLevel(delta int) int {
	f.automationLevel = f.clamp(f.automationLevel + delta)
	return f.automationLevel
}

// AdjustStorageLevel moves the storage level by delta, clamped
func (f *Facility) AdjustStorageLevel(delta int) int {
	f.storageLevel = f.clamp(f.storageLevel + delta)
	return f.storageLevel
}

// SetProductionBonus replaces the location bonus
func (f *Facility) SetProductionBonus(bonus shared.Percentage) {
	f.productionBonus = bonus
}

// SetOutputItem switches what the facility produces
func (f *Facility) SetOutputItem(itemID string) error {
	if strings.TrimSpace(itemID) == "" {
		return shared.NewValidationError("output_item_id", "facility must produce an item")
	}
	f.outputItemID = strings.TrimSpace(itemID)
	return nil
}

// Params snapshots the facility's current state
func (f *Facility) Params() FacilityParams {
	return FacilityParams{
		ID:              f.id,
		Name:            f.name,
		OutputItemID:    f.outputItemID,
		AutomationLevel: f.automationLevel,
		StorageLevel:    f.storageLevel,
		ProductionBonus: f.productionBonus,
		Workers:         f.Workers(),
		CurrentStock:    f.currentStock,
	}
}

func (f *Facility) clamp(level int) int {
	if level < f.minLevel {
		return f.minLevel
	}
	if level > f.maxLevel {
		return f.maxLevel
	}
	return level
}

func (f *Facility) String() string {
	return fmt.Sprintf("Facility[%s, item=%s, automation=%d, workers=%d]",
		f.id, f.outputItemID, f.automationLevel, len(f.workers))
}
