package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	economyQueries "github.com/andrescamacho/warera-economy-go/internal/application/economy/queries"
	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
)

// NewFlowsCommand creates the flows command
func NewFlowsCommand() *cobra.Command {
	var flags sessionFlags

	cmd := &cobra.Command{
		Use:   "flows",
		Short: "Show what a set of companies produces and consumes per day",
		Long: `Show the daily production and consumption of every item in a set of
companies. A negative net is a deficit that must be bought. Prices are
not used.

Examples:
  warera flows -f companies.json
  warera flows --from-user SomePlayer --output c2=bread`,
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
			return runFlows(cmd.Context(), cmd.OutOrStdout(), app.Mediator, sess)
		},
	}

	flags.register(cmd)
	return cmd
}

func runFlows(ctx context.Context, out io.Writer, m mediator.Mediator, sess *session) error {
	resp, err := mediator.Send[*economyQueries.GetFlowsResponse](ctx, m, &economyQueries.GetFlowsQuery{
		Facilities: sess.Facilities,
	})
	if err != nil {
		return err
	}

	if outputFormat == formatJSON {
		return printJSON(out, resp.Flows)
	}

	if len(resp.Flows) == 0 {
		fmt.Fprintln(out, "No flows")
		return nil
	}

	w := newTable(out)
	fmt.Fprintln(w, "ITEM\tPRODUCED\tCONSUMED\tNET")
	fmt.Fprintln(w, "----\t--------\t--------\t---")
	for _, f := range resp.Flows {
		fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%s\n", f.ItemID, f.Produced, f.Consumed, signed(f.Net))
	}
	return w.Flush()
}
