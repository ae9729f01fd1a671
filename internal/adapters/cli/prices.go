package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	marketQueries "github.com/andrescamacho/warera-economy-go/internal/application/market/queries"
	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
)

// NewPricesCommand creates the prices command with subcommands
func NewPricesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Show or refresh cached market prices",
		Long: `Show or refresh the cached market price snapshot.

Prices are scraped from the WarEra trading API and cached. A snapshot
older than storage.stale_after is refreshed on the next read. Scraping
needs a session token (--token or WARERA_TOKEN).

Examples:
  warera prices show
  warera prices show --format json
  warera prices refresh --token eyJ...`,
	}

	cmd.AddCommand(newPricesShowCommand())
	cmd.AddCommand(newPricesRefreshCommand())

	return cmd
}

func newPricesShowCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show cached prices, refreshing when stale",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			return runPrices(cmd.Context(), cmd.OutOrStdout(), app.Mediator, force, app.UserConfig.PriceOverrides)
		},
	}

	cmd.Flags().BoolVar(&force, "refresh", false, "Scrape fresh prices even if the cache is current")

	return cmd
}

func newPricesRefreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Scrape fresh prices now",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			return runPrices(cmd.Context(), cmd.OutOrStdout(), app.Mediator, true, app.UserConfig.PriceOverrides)
		},
	}
}

func runPrices(ctx context.Context, out io.Writer, m mediator.Mediator, force bool, overrides map[string]float64) error {
	resp, err := mediator.Send[*marketQueries.GetMarketDataResponse](ctx, m, &marketQueries.GetMarketDataQuery{Force: force})
	if err != nil {
		return err
	}

	if outputFormat == formatJSON {
		return printJSON(out, resp)
	}

	switch {
	case resp.Error == "TOKEN_EXPIRED":
		fmt.Fprintln(out, "Warning: session token expired, showing cached prices. Pass a fresh --token to refresh.")
	case resp.Error != "":
		fmt.Fprintf(out, "Warning: refresh failed (%s), showing cached prices.\n", resp.Error)
	case resp.Stale:
		fmt.Fprintln(out, "Note: prices are stale, a refresh is running in the background.")
	}

	if len(resp.Prices) == 0 && len(overrides) == 0 {
		fmt.Fprintln(out, "No prices cached")
		return nil
	}

	if resp.Timestamp.IsZero() {
		fmt.Fprintln(out, "Snapshot: none")
	} else {
		status := "cached"
		if resp.WasUpdated {
			status = "refreshed"
		}
		fmt.Fprintf(out, "Snapshot: %s (%s, %d items)\n", resp.Timestamp.Format("2006-01-02 15:04:05 MST"), status, len(resp.Prices))
	}
	fmt.Fprintln(out)

	rows := make(map[string]float64, len(resp.Prices)+len(overrides))
	for _, p := range resp.Prices {
		rows[p.ProductID] = p.AveragePrice
	}
	for id, p := range overrides {
		rows[id] = p
	}
	ids := make([]string, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	w := newTable(out)
	fmt.Fprintln(w, "ITEM\tPRICE\tSOURCE")
	fmt.Fprintln(w, "----\t-----\t------")
	for _, id := range ids {
		source := "market"
		if _, ok := overrides[id]; ok {
			source = "override"
		}
		fmt.Fprintf(w, "%s\t%.3f\t%s\n", id, rows[id], source)
	}
	return w.Flush()
}
