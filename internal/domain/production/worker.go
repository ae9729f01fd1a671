package production

import (
	"math"

	"github.com/google/uuid"

	"github.com/andrescamacho/warera-economy-go/internal/domain/economy"
	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
)

// Manual worker defaults used when a worker is added by hand in a session
const (
	DefaultWorkerEnergy = 100
	DefaultWorkerSkill  = 10
	DefaultWorkerWage   = 0.15
)

// WorkOutput is the daily work points produced by one worker:
// energy * skill * K * (1 + loyalty/100). Inputs are not range checked here.
func WorkOutput(energy, skill float64, loyalty shared.Percentage, defaults economy.Defaults) float64 {
	return energy * skill * defaults.WorkOutputFactor * loyalty.Multiplier()
}

// Worker is a single laborer assigned to a facility
type Worker struct {
	id      string
	name    string
	energy  float64
	skill   float64
	loyalty shared.Percentage
	wage    float64
}

// NewWorker validates worker attributes. Energy, skill and wage must be
// non-negative finite numbers; the loyalty bonus is clamped by Percentage.
func NewWorker(id, name string, energy, skill float64, loyalty shared.Percentage, wage float64) (Worker, error) {
	if id == "" {
		id = uuid.New().String()
	}
	if !nonNegative(energy) {
		return Worker{}, shared.NewValidationError("energy", "must be a non-negative number")
	}
	if !nonNegative(skill) {
		return Worker{}, shared.NewValidationError("skill", "must be a non-negative number")
	}
	if !nonNegative(wage) {
		return Worker{}, shared.NewValidationError("wage", "must be a non-negative number")
	}
	return Worker{
		id:      id,
		name:    name,
		energy:  energy,
		skill:   skill,
		loyalty: loyalty,
		wage:    wage,
	}, nil
}

// NewDefaultWorker builds a manually added worker with the platform defaults
func NewDefaultWorker() Worker {
	w, _ := NewWorker("", "Manual worker", DefaultWorkerEnergy, DefaultWorkerSkill, shared.ZeroPercent, DefaultWorkerWage)
	return w
}

func (w Worker) ID() string                 { return w.id }
func (w Worker) Name() string               { return w.name }
func (w Worker) Energy() float64            { return w.energy }
func (w Worker) Skill() float64             { return w.skill }
func (w Worker) Loyalty() shared.Percentage { return w.loyalty }
func (w Worker) WagePerWorkPoint() float64  { return w.wage }

// WorkOutput returns this worker's daily work points
func (w Worker) WorkOutput(defaults economy.Defaults) float64 {
	return WorkOutput(w.energy, w.skill, w.loyalty, defaults)
}

// DailyWage is the worker's pay: output times wage per work point
func (w Worker) DailyWage(defaults economy.Defaults) float64 {
	return w.WorkOutput(defaults) * w.wage
}

// WithWage returns a copy with a different wage
func (w Worker) WithWage(wage float64) (Worker, error) {
	if !nonNegative(wage) {
		return Worker{}, shared.NewValidationError("wage", "must be a non-negative number")
	}
	w.wage = wage
	return w, nil
}

func nonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
