package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/andrescamacho/warera-economy-go/internal/domain/costing"
	"github.com/andrescamacho/warera-economy-go/internal/domain/market"
	"github.com/andrescamacho/warera-economy-go/internal/domain/network"
	"github.com/andrescamacho/warera-economy-go/internal/domain/production"
	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
	"github.com/andrescamacho/warera-economy-go/internal/infrastructure/config"
)

// WorkerDTO is the wire form of a worker
type WorkerDTO struct {
	ID      string  `json:"id,omitempty"`
	Name    string  `json:"name,omitempty"`
	Energy  float64 `json:"energy" validate:"gte=0"`
	Skill   float64 `json:"skill" validate:"gte=0"`
	Loyalty float64 `json:"loyalty" validate:"gte=0"`
	Wage    float64 `json:"wage" validate:"gte=0"`
}

// FacilityDTO is the wire form of a facility snapshot
type FacilityDTO struct {
	ID              string      `json:"id,omitempty"`
	Name            string      `json:"name,omitempty"`
	OutputItemID    string      `json:"outputItemId" validate:"required"`
	AutomationLevel int         `json:"automationLevel"`
	StorageLevel    int         `json:"storageLevel"`
	ProductionBonus float64     `json:"productionBonus" validate:"gte=0"`
	CurrentStock    float64     `json:"currentStock" validate:"gte=0"`
	Workers         []WorkerDTO `json:"workers" validate:"dive"`
}

// Params converts the DTO into domain construction parameters
func (d FacilityDTO) Params() (production.FacilityParams, error) {
	workers := make([]production.Worker, 0, len(d.Workers))
	for _, w := range d.Workers {
		worker, err := production.NewWorker(w.ID, w.Name, w.Energy, w.Skill, shared.NewPercentage(w.Loyalty), w.Wage)
		if err != nil {
			return production.FacilityParams{}, err
		}
		workers = append(workers, worker)
	}

	return production.FacilityParams{
		ID:              d.ID,
		Name:            d.Name,
		OutputItemID:    d.OutputItemID,
		AutomationLevel: d.AutomationLevel,
		StorageLevel:    d.StorageLevel,
		ProductionBonus: shared.NewPercentage(d.ProductionBonus),
		Workers:         workers,
		CurrentStock:    d.CurrentStock,
	}, nil
}

// FacilityFromParams is the inverse of Params
func FacilityFromParams(p production.FacilityParams) FacilityDTO {
	workers := make([]WorkerDTO, len(p.Workers))
	for i, w := range p.Workers {
		workers[i] = WorkerDTO{
			ID:      w.ID(),
			Name:    w.Name(),
			Energy:  w.Energy(),
			Skill:   w.Skill(),
			Loyalty: w.Loyalty().Value(),
			Wage:    w.WagePerWorkPoint(),
		}
	}
	return FacilityDTO{
		ID:              p.ID,
		Name:            p.Name,
		OutputItemID:    p.OutputItemID,
		AutomationLevel: p.AutomationLevel,
		StorageLevel:    p.StorageLevel,
		ProductionBonus: p.ProductionBonus.Value(),
		CurrentStock:    p.CurrentStock,
		Workers:         workers,
	}
}

// FacilitySet is a list of facilities, the body of network requests and the
// format of facility files read by the CLI
type FacilitySet struct {
	Facilities []FacilityDTO `json:"facilities" validate:"required,min=1,dive"`
}

// Params converts every facility, reporting the index of the first bad one
func (s FacilitySet) Params() ([]production.FacilityParams, error) {
	out := make([]production.FacilityParams, 0, len(s.Facilities))
	for i, f := range s.Facilities {
		p, err := f.Params()
		if err != nil {
			return nil, fmt.Errorf("facility %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// DecodeFacilities reads and validates a FacilitySet
func DecodeFacilities(r io.Reader) ([]production.FacilityParams, error) {
	var set FacilitySet
	if err := json.NewDecoder(r).Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to decode facilities: %w", err)
	}
	if err := config.NewValidator().Validate(set); err != nil {
		return nil, err
	}
	return set.Params()
}

// EncodeFacilities writes params in the FacilitySet format
func EncodeFacilities(w io.Writer, params []production.FacilityParams) error {
	set := FacilitySet{Facilities: make([]FacilityDTO, len(params))}
	for i, p := range params {
		set.Facilities[i] = FacilityFromParams(p)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(set)
}

// priceOverrides is an optional explicit price table in a request body
type priceOverrides map[string]float64

func (p priceOverrides) table() (*market.PriceTable, error) {
	if p == nil {
		return nil, nil
	}
	table, err := market.NewPriceTable(p)
	if err != nil {
		return nil, err
	}
	return &table, nil
}

type costRequest struct {
	ItemID string         `json:"itemId" validate:"required"`
	Salary *float64       `json:"salary" validate:"omitempty,gte=0"`
	Prices priceOverrides `json:"prices"`
}

type profitabilityRequest struct {
	Salary *float64       `json:"salary" validate:"omitempty,gte=0"`
	Prices priceOverrides `json:"prices"`
	Limit  int            `json:"limit" validate:"gte=0"`
}

type networkRequest struct {
	FacilitySet
	Mode      string         `json:"mode" validate:"omitempty,oneof=standard supply_chain supply-chain"`
	SortBy    string         `json:"sortBy" validate:"omitempty,oneof=item price unit_cost net_profit margin"`
	Ascending bool           `json:"ascending"`
	Prices    priceOverrides `json:"prices"`
}

type marketPriceDTO struct {
	ProductID    string    `json:"productId"`
	AveragePrice float64   `json:"averagePrice"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

type marketDataResponse struct {
	Prices     []marketPriceDTO `json:"prices"`
	Timestamp  *time.Time       `json:"timestamp,omitempty"`
	WasUpdated bool             `json:"wasUpdated"`
	Stale      bool             `json:"stale"`
	Error      string           `json:"error,omitempty"`
}

type costNodeDTO struct {
	ItemID    string         `json:"itemId"`
	Method    string         `json:"method"`
	Quantity  float64        `json:"quantity"`
	UnitPrice float64        `json:"unitPrice,omitempty"`
	LaborCost float64        `json:"laborCost,omitempty"`
	UnitCost  float64        `json:"unitCost"`
	Total     float64        `json:"total"`
	Children  []*costNodeDTO `json:"children,omitempty"`
}

func costNodeFrom(n *costing.CostNode) *costNodeDTO {
	if n == nil {
		return nil
	}
	out := &costNodeDTO{
		ItemID:    n.ItemID,
		Method:    string(n.Method),
		Quantity:  n.Quantity,
		UnitPrice: n.UnitPrice,
		LaborCost: n.LaborCost,
		UnitCost:  n.UnitCost,
		Total:     n.Total,
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, costNodeFrom(c))
	}
	return out
}

type costResponse struct {
	ItemID    string       `json:"itemId"`
	Salary    float64      `json:"salary"`
	Cost      float64      `json:"cost"`
	Breakdown *costNodeDTO `json:"breakdown"`
}

type rankedProductDTO struct {
	Rank           int     `json:"rank"`
	ItemID         string  `json:"itemId"`
	Name           string  `json:"name"`
	MarketPrice    float64 `json:"marketPrice"`
	ProductionCost float64 `json:"productionCost"`
	NetProfit      float64 `json:"netProfit"`
	ProfitMargin   float64 `json:"profitMargin"`
}

type profitabilityResponse struct {
	Salary   float64            `json:"salary"`
	Products []rankedProductDTO `json:"products"`
}

func rankedFrom(records []costing.ProfitabilityRecord) []rankedProductDTO {
	out := make([]rankedProductDTO, len(records))
	for i, r := range records {
		out[i] = rankedProductDTO{
			Rank:           i + 1,
			ItemID:         r.Recipe.ID(),
			Name:           r.Recipe.Name(),
			MarketPrice:    r.MarketPrice,
			ProductionCost: r.ProductionCost,
			NetProfit:      r.NetProfit,
			ProfitMargin:   r.ProfitMargin,
		}
	}
	return out
}

type itemStatsDTO struct {
	ItemID             string             `json:"itemId"`
	FacilityCount      int                `json:"facilityCount"`
	MarketPrice        float64            `json:"marketPrice"`
	DailyYield         float64            `json:"dailyYield"`
	ConsumedInternally float64            `json:"consumedInternally"`
	Surplus            float64            `json:"surplus"`
	Revenue            float64            `json:"revenue"`
	MarketExpenses     float64            `json:"marketExpenses"`
	InternalInputs     map[string]float64 `json:"internalInputs,omitempty"`
	SupplyChainSavings float64            `json:"supplyChainSavings"`
	LaborCost          float64            `json:"laborCost"`
	NetProfitPerDay    float64            `json:"netProfitPerDay"`
	UnitCost           float64            `json:"unitCost"`
	Margin             *float64           `json:"margin"`
	Classification     string             `json:"classification"`
}

type flowDTO struct {
	ItemID   string  `json:"itemId"`
	Produced float64 `json:"produced"`
	Consumed float64 `json:"consumed"`
	Net      float64 `json:"net"`
}

type projectionDTO struct {
	FacilityID          string  `json:"facilityId"`
	OutputItemID        string  `json:"outputItemId"`
	AggregateWorkPoints float64 `json:"aggregateWorkPoints"`
	OutputRate          float64 `json:"outputRate"`
	DailyRevenue        float64 `json:"dailyRevenue"`
	DailyWages          float64 `json:"dailyWages"`
	DailyInputCost      float64 `json:"dailyInputCost"`
	DailyNet            float64 `json:"dailyNet"`
	UnitInputCost       float64 `json:"unitInputCost"`
	MaxSustainableWage  float64 `json:"maxSustainableWage"`
}

type networkResponse struct {
	Mode             string          `json:"mode"`
	Items            []itemStatsDTO  `json:"items"`
	Flows            []flowDTO       `json:"flows"`
	Projections      []projectionDTO `json:"projections"`
	TotalRevenue     float64         `json:"totalRevenue"`
	GrandTotalProfit float64         `json:"grandTotalProfit"`
}

func networkFrom(report *network.Report, projections []production.Projection) networkResponse {
	out := networkResponse{
		Mode:             string(report.Mode),
		Items:            make([]itemStatsDTO, len(report.Items)),
		Flows:            make([]flowDTO, len(report.Flows)),
		Projections:      make([]projectionDTO, len(projections)),
		TotalRevenue:     report.TotalRevenue,
		GrandTotalProfit: report.GrandTotalProfit,
	}

	for i, s := range report.Items {
		dto := itemStatsDTO{
			ItemID:             s.ItemID,
			FacilityCount:      s.FacilityCount,
			MarketPrice:        s.MarketPrice,
			DailyYield:         s.DailyYield,
			ConsumedInternally: s.ConsumedInternally,
			Surplus:            s.Surplus,
			Revenue:            s.Revenue,
			MarketExpenses:     s.MarketExpenses,
			SupplyChainSavings: s.SupplyChainSavings,
			LaborCost:          s.LaborCost,
			NetProfitPerDay:    s.NetProfitPerDay,
			UnitCost:           s.UnitCost(),
			Classification:     string(s.Classification),
		}
		if m := s.Margin(); m != network.NoMargin {
			dto.Margin = &m
		}
		if len(s.InternalInputs) > 0 {
			dto.InternalInputs = make(map[string]float64, len(s.InternalInputs))
			for _, in := range s.InternalInputs {
				dto.InternalInputs[in.ItemID] = in.Quantity
			}
		}
		out.Items[i] = dto
	}

	for i, f := range report.Flows {
		out.Flows[i] = flowDTO{ItemID: f.ItemID, Produced: f.Produced, Consumed: f.Consumed, Net: f.Net}
	}

	for i, p := range projections {
		out.Projections[i] = projectionDTO{
			FacilityID:          p.FacilityID,
			OutputItemID:        p.OutputItemID,
			AggregateWorkPoints: p.AggregateWorkPoints,
			OutputRate:          p.OutputRate,
			DailyRevenue:        p.DailyRevenue,
			DailyWages:          p.DailyWages,
			DailyInputCost:      p.DailyInputCost,
			DailyNet:            p.DailyNet,
			UnitInputCost:       p.UnitInputCost,
			MaxSustainableWage:  p.MaxSustainableWage,
		}
	}
	return out
}

type playgroundResponse struct {
	UserID     string             `json:"userId"`
	Username   string             `json:"username,omitempty"`
	Facilities []FacilityDTO      `json:"facilities"`
	Prices     map[string]float64 `json:"prices"`
}

type searchUserResponse struct {
	Found    bool   `json:"found"`
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
}
