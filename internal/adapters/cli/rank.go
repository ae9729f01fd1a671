package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/warera-economy-go/internal/adapters/export"
	economyQueries "github.com/andrescamacho/warera-economy-go/internal/application/economy/queries"
	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
)

// NewRankCommand creates the rank command
func NewRankCommand() *cobra.Command {
	var (
		limit      int
		exportPath string
	)

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank every craftable item by net profit",
		Long: `Rank every item in the recipe catalog by net profit per unit.

Net profit is the market price minus the production cost, where inputs
with a market price are bought and everything else is crafted at the
given salary per work point. Manual price overrides from
'warera config set-override' are applied on top of scraped prices.

Examples:
  warera rank
  warera rank --salary 0.2 --limit 10
  warera rank --export ranking.csv
  warera rank --format csv > ranking.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			salary, err := optionalFloat(cmd, "salary")
			if err != nil {
				return err
			}

			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			return runRank(cmd.Context(), cmd.OutOrStdout(), app.Mediator, salary, limit, exportPath)
		},
	}

	cmd.Flags().Float64("salary", 0, "Salary per work point (default: configured salary)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Show only the top N items (0 = all)")
	cmd.Flags().StringVar(&exportPath, "export", "", "Also write the ranking to this CSV file")

	return cmd
}

func runRank(ctx context.Context, out io.Writer, m mediator.Mediator, salary *float64, limit int, exportPath string) error {
	if limit < 0 {
		return fmt.Errorf("--limit must be non-negative")
	}

	resp, err := mediator.Send[*economyQueries.RankProfitabilityResponse](ctx, m, &economyQueries.RankProfitabilityQuery{
		Salary: salary,
		Limit:  limit,
	})
	if err != nil {
		return fmt.Errorf("failed to rank items: %w", err)
	}

	if exportPath != "" {
		if err := writeFile(exportPath, func(w io.Writer) error {
			return export.WriteRanking(w, resp.Records)
		}); err != nil {
			return err
		}
	}

	switch outputFormat {
	case formatCSV:
		return export.WriteRanking(out, resp.Records)
	case formatJSON:
		type row struct {
			Rank           int     `json:"rank"`
			ItemID         string  `json:"itemId"`
			Name           string  `json:"name"`
			MarketPrice    float64 `json:"marketPrice"`
			ProductionCost float64 `json:"productionCost"`
			NetProfit      float64 `json:"netProfit"`
			ProfitMargin   float64 `json:"profitMargin"`
		}
		rows := make([]row, len(resp.Records))
		for i, r := range resp.Records {
			rows[i] = row{i + 1, r.Recipe.ID(), r.Recipe.Name(), r.MarketPrice, r.ProductionCost, r.NetProfit, r.ProfitMargin}
		}
		return printJSON(out, rows)
	}

	if len(resp.Records) == 0 {
		fmt.Fprintln(out, "No items in the recipe catalog")
		return nil
	}

	fmt.Fprintf(out, "Profitability at salary %.3f per work point\n\n", resp.Salary)
	w := newTable(out)
	fmt.Fprintln(w, "RANK\tITEM\tPRICE\tCOST\tNET\tMARGIN")
	fmt.Fprintln(w, "----\t----\t-----\t----\t---\t------")
	for i, r := range resp.Records {
		fmt.Fprintf(w, "%d\t%s\t%.3f\t%.3f\t%s\t%.1f%%\n",
			i+1, r.Recipe.Name(), r.MarketPrice, r.ProductionCost, signed(r.NetProfit), r.ProfitMargin)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if exportPath != "" {
		fmt.Fprintf(out, "\nExported %d rows to %s\n", len(resp.Records), exportPath)
	}
	return nil
}
