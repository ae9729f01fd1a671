package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	economyQueries "github.com/andrescamacho/warera-economy-go/internal/application/economy/queries"
	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
)

// NewCostCommand creates the cost command
func NewCostCommand() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "cost <item>",
		Short: "Show the production cost of an item",
		Long: `Show the unit production cost of an item and how it was derived.

The breakdown tree marks every input as BUY (market price used) or CRAFT
(cost computed from its recipe). Items with neither a price nor a recipe
are shown as UNKNOWN and cost nothing.

Examples:
  warera cost bread
  warera cost steel --salary 0.25
  warera cost steel --format json`,
		Args: cobra.ExactArgs(1),
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

			return runCost(cmd.Context(), cmd.OutOrStdout(), app.Mediator, args[0], salary, !noColor)
		},
	}

	cmd.Flags().Float64("salary", 0, "Salary per work point (default: configured salary)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable ANSI colors in the tree")

	return cmd
}

func runCost(ctx context.Context, out io.Writer, m mediator.Mediator, itemID string, salary *float64, colors bool) error {
	resp, err := mediator.Send[*economyQueries.CalculateCostResponse](ctx, m, &economyQueries.CalculateCostQuery{
		ItemID: itemID,
		Salary: salary,
	})
	if err != nil {
		return err
	}

	if outputFormat == formatJSON {
		return printJSON(out, resp)
	}

	formatter := NewTreeFormatter(colors)
	fmt.Fprintf(out, "Production cost of %s: %.3f (salary %.3f per work point)\n\n", resp.ItemID, resp.Cost, resp.Salary)
	fmt.Fprint(out, formatter.FormatTree(resp.Breakdown))
	fmt.Fprintf(out, "\n%s\n", formatter.FormatTreeSummary(resp.Breakdown))
	return nil
}
