package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	economyQueries "github.com/andrescamacho/warera-economy-go/internal/application/economy/queries"
	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
	"github.com/andrescamacho/warera-economy-go/internal/domain/production"
)

// NewProjectCommand creates the project command
func NewProjectCommand() *cobra.Command {
	var flags sessionFlags

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project daily output and profit of each company",
		Long: `Project the daily output, revenue, wages and input costs of each company.

Companies are read from a JSON file (see 'warera playground --save') or
loaded live with --from-user. Edits are applied in this order before
projecting: add worker, remove worker, wage, automation, storage,
bonus, output item. Companies are referenced by id or 1-based position.

Examples:
  warera project --facilities companies.json
  warera project --from-user SomePlayer
  warera project -f companies.json --add-worker 1 --wage c1:w1=0.2
  warera project -f companies.json --automation c1=+3 --save edited.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			sess, err := flags.load(cmd.Context(), app.Mediator, app.Defaults, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runProject(cmd.Context(), cmd.OutOrStdout(), app.Mediator, sess)
		},
	}

	flags.register(cmd)
	return cmd
}

func runProject(ctx context.Context, out io.Writer, m mediator.Mediator, sess *session) error {
	resp, err := mediator.Send[*economyQueries.ProjectFacilitiesResponse](ctx, m, &economyQueries.ProjectFacilitiesQuery{
		Facilities: sess.Facilities,
		Prices:     sess.Prices,
	})
	if err != nil {
		return err
	}

	if outputFormat == formatJSON {
		return printJSON(out, resp.Projections)
	}

	printProjections(out, sess.Facilities, resp.Projections)
	return nil
}

func printProjections(out io.Writer, facilities []production.FacilityParams, projections []production.Projection) {
	w := newTable(out)
	fmt.Fprintln(w, "COMPANY\tITEM\tAUTO\tWORKERS\tWP/DAY\tUNITS/DAY\tREVENUE\tWAGES\tINPUTS\tNET/DAY\tMAX WAGE")
	fmt.Fprintln(w, "-------\t----\t----\t-------\t------\t---------\t-------\t-----\t------\t-------\t--------")

	var totalNet float64
	for i, p := range projections {
		name := p.FacilityID
		workers, automation := 0, 0
		if i < len(facilities) {
			if facilities[i].Name != "" {
				name = facilities[i].Name
			}
			workers = len(facilities[i].Workers)
			automation = facilities[i].AutomationLevel
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.2f\t%.3f\t%.3f\t%.3f\t%.3f\t%s\t%.4f\n",
			name, p.OutputItemID, automation, workers, p.AggregateWorkPoints, p.OutputRate,
			p.DailyRevenue, p.DailyWages, p.DailyInputCost, signed(p.DailyNet), p.MaxSustainableWage)
		totalNet += p.DailyNet
	}
	w.Flush()

	fmt.Fprintf(out, "\nTotal net per day: %s\n", signed(totalNet))
}
