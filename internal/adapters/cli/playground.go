package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/warera-economy-go/internal/adapters/httpapi"
	economyQueries "github.com/andrescamacho/warera-economy-go/internal/application/economy/queries"
	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
	playgroundQueries "github.com/andrescamacho/warera-economy-go/internal/application/playground/queries"
	"github.com/andrescamacho/warera-economy-go/internal/domain/network"
)

// NewPlaygroundCommand creates the playground command
func NewPlaygroundCommand() *cobra.Command {
	var savePath string

	cmd := &cobra.Command{
		Use:   "playground [username]",
		Short: "Load a player's companies and summarize their economics",
		Long: `Load a player's companies and live prices, then show each company's
projection and the network totals in both accounting modes.

Without a username the default from 'warera config set-username' is used,
and without that the owner of the session token.

Use --save to write the companies to a file that project, network and
flows can edit offline.

Examples:
  warera playground SomePlayer
  warera playground SomePlayer --save companies.json
  warera playground --token eyJ...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			username := app.UserConfig.DefaultUsername
			if len(args) == 1 {
				username = args[0]
			}

			err = runPlayground(cmd.Context(), cmd.OutOrStdout(), app.Mediator, username, savePath)
			if isTokenError(err) {
				return fmt.Errorf("%w (pass a fresh --token or set WARERA_TOKEN)", err)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&savePath, "save", "", "Write the loaded companies to this JSON file")

	return cmd
}

func runPlayground(ctx context.Context, out io.Writer, m mediator.Mediator, username, savePath string) error {
	resp, err := mediator.Send[*playgroundQueries.LoadPlaygroundResponse](ctx, m, &playgroundQueries.LoadPlaygroundQuery{
		Username: username,
	})
	if err != nil {
		return err
	}

	if savePath != "" {
		if err := writeFile(savePath, func(w io.Writer) error {
			return httpapi.EncodeFacilities(w, resp.Facilities)
		}); err != nil {
			return err
		}
	}

	prices := resp.Prices
	sess := &session{Facilities: resp.Facilities, Prices: &prices}

	if outputFormat == formatJSON {
		return printJSON(out, resp)
	}

	who := resp.UserID
	if resp.Username != "" {
		who = fmt.Sprintf("%s (%s)", resp.Username, resp.UserID)
	}
	fmt.Fprintf(out, "Loaded %d companies for %s, %d live prices\n\n", len(resp.Facilities), who, prices.Len())
	if len(resp.Facilities) == 0 {
		return nil
	}

	if err := runProject(ctx, out, m, sess); err != nil {
		return err
	}

	fmt.Fprintln(out)
	for _, mode := range []network.Mode{network.ModeStandard, network.ModeSupplyChain} {
		net, err := mediator.Send[*economyQueries.ReconcileNetworkResponse](ctx, m, &economyQueries.ReconcileNetworkQuery{
			Facilities: sess.Facilities,
			Mode:       mode,
			Prices:     sess.Prices,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Network profit (%s): %s\n", mode, signed(net.Report.GrandTotalProfit))
	}

	if savePath != "" {
		fmt.Fprintf(out, "\nSaved companies to %s\n", savePath)
	}
	return nil
}
