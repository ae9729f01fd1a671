package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/andrescamacho/warera-economy-go/internal/domain/costing"
	"github.com/andrescamacho/warera-economy-go/internal/domain/network"
)

// RankingHeader is the column layout of a ranking export
var RankingHeader = []string{"Rank", "Product", "Market Price", "Production Cost", "Net Profit", "Profit Margin %"}

// NetworkHeader is the column layout of a network report export
var NetworkHeader = []string{
	"Item", "Facilities", "Market Price", "Daily Yield", "Consumed Internally", "Surplus",
	"Revenue", "Market Expenses", "Supply Chain Savings", "Labor Cost", "Net Profit/Day",
	"Unit Cost", "Margin %", "Classification",
}

// WriteRanking writes ranked records as CSV, one row per record in the given order
func WriteRanking(w io.Writer, records []costing.ProfitabilityRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RankingHeader); err != nil {
		return fmt.Errorf("failed to write ranking header: %w", err)
	}

	for i, rec := range records {
		row := []string{
			strconv.Itoa(i + 1),
			rec.Recipe.Name(),
			money(rec.MarketPrice),
			money(rec.ProductionCost),
			money(rec.NetProfit),
			percent(rec.ProfitMargin),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write ranking row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteNetwork writes the per-item stats of a reconciled report as CSV.
// Items without revenue leave the margin column empty.
func WriteNetwork(w io.Writer, report *network.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(NetworkHeader); err != nil {
		return fmt.Errorf("failed to write network header: %w", err)
	}

	if report != nil {
		for _, s := range report.Items {
			margin := ""
			if m := s.Margin(); m != network.NoMargin {
				margin = percent(m)
			}
			row := []string{
				s.ItemID,
				strconv.Itoa(s.FacilityCount),
				money(s.MarketPrice),
				money(s.DailyYield),
				money(s.ConsumedInternally),
				money(s.Surplus),
				money(s.Revenue),
				money(s.MarketExpenses),
				money(s.SupplyChainSavings),
				money(s.LaborCost),
				money(s.NetProfitPerDay),
				money(s.UnitCost()),
				margin,
				string(s.Classification),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write network row %s: %w", s.ItemID, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
