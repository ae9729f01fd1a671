package production

import (
	"github.com/andrescamacho/warera-economy-go/internal/domain/economy"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/recipe"
)

// InputNeed is how much of one input a facility consumes
type InputNeed struct {
	ItemID  string
	PerUnit float64
	PerDay  float64
}

// Projection is the derived daily economics of one facility
type Projection struct {
	FacilityID   string
	OutputItemID string

	AggregateWorkPoints float64
	OutputRate          float64 // units per day
	DailyRevenue        float64
	DailyWages          float64
	DailyInputCost      float64
	DailyNet            float64

	UnitInputCost float64
	// MaxSustainableWage is the break-even wage per work point. It is not
	// clamped and is negative when inputs alone cost more than the output sells for.
	MaxSustainableWage float64

	Inputs []InputNeed
}

// Project converts a facility snapshot into daily output, revenue and costs
func Project(
	f *Facility,
	catalog *recipe.Catalog,
	prices market.PriceTable,
	defaults economy.Defaults,
) Projection {
	workerPoints := 0.0
	wages := 0.0
	for _, w := range f.workers {
		out := w.WorkOutput(defaults)
		workerPoints += out
		wages += out * w.WagePerWorkPoint()
	}

	aggregate := workerPoints + float64(f.automationLevel)*defaults.AutomationWorkPerLevel
	bonus := f.productionBonus.Multiplier()
	workPoints := defaults.WorkPointsOf(catalog, f.outputItemID)
	outputRate := aggregate * bonus / workPoints
	price := defaults.PriceOf(prices, f.outputItemID)

	p := Projection{
		FacilityID:          f.id,
		OutputItemID:        f.outputItemID,
		AggregateWorkPoints: aggregate,
		OutputRate:          outputRate,
		DailyRevenue:        outputRate * price,
		DailyWages:          wages,
	}

	if rec, ok := catalog.Get(f.outputItemID); ok {
		p.OutputItemID = rec.ID()
		for _, in := range rec.Inputs() {
			inPrice := defaults.PriceOf(prices, in.ItemID)
			need := InputNeed{
				ItemID:  catalog.CanonicalID(in.ItemID),
				PerUnit: in.Quantity,
				PerDay:  in.Quantity * outputRate,
			}
			p.Inputs = append(p.Inputs, need)
			p.UnitInputCost += in.Quantity * inPrice
			p.DailyInputCost += need.PerDay * inPrice
		}
	}

	p.DailyNet = p.DailyRevenue - p.DailyWages - p.DailyInputCost
	p.MaxSustainableWage = (price - p.UnitInputCost) * bonus / workPoints
	return p
}

// ProjectAll projects every facility in order
func ProjectAll(
	facilities []*Facility,
	catalog *recipe.Catalog,
	prices market.PriceTable,
	defaults economy.Defaults,
) []Projection {
	out := make([]Projection, len(facilities))
	for i, f := range facilities {
		out[i] = Project(f, catalog, prices, defaults)
	}
	return out
}
