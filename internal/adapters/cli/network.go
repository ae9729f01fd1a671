package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/warera-economy-go/internal/adapters/export"
	economyQueries "github.com/andrescamacho/warera-economy-go/internal/application/economy/queries"
	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
	"github.com/andrescamacho/warera-economy-go/internal/domain/network"
)

type networkOptions struct {
	mode       network.Mode
	sortBy     network.SortKey
	ascending  bool
	compare    bool
	exportPath string
}

// NewNetworkCommand creates the network command
func NewNetworkCommand() *cobra.Command {
	var (
		flags      sessionFlags
		mode       string
		sortBy     string
		ascending  bool
		compare    bool
		exportPath string
	)

	cmd := &cobra.Command{
		Use:   "network",
		Short: "Reconcile the economics of a set of companies",
		Long: `Reconcile the daily economics of a set of companies as one network.

Modes:
  standard      every company buys all its inputs and sells all its output
  supply_chain  internal output is consumed first, only the surplus is sold
                and only the deficit is bought

Sort keys: item, price, unit_cost, net_profit, margin

Examples:
  warera network -f companies.json
  warera network -f companies.json --mode supply_chain --sort margin
  warera network --from-user SomePlayer --compare
  warera network -f companies.json --export network.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := networkOptions{ascending: ascending, compare: compare, exportPath: exportPath}

			var ok bool
			if opts.mode, ok = network.ParseMode(mode); !ok {
				return fmt.Errorf("invalid --mode %q: must be standard or supply_chain", mode)
			}
			if sortBy != "" {
				key, err := network.ParseSortKey(sortBy)
				if err != nil {
					return err
				}
				opts.sortBy = key
			}

			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			sess, err := flags.load(cmd.Context(), app.Mediator, app.Defaults, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runNetwork(cmd.Context(), cmd.OutOrStdout(), app.Mediator, sess, opts)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&mode, "mode", string(network.ModeStandard), "Accounting mode (standard, supply_chain)")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort items by key (default: first-seen order)")
	cmd.Flags().BoolVar(&ascending, "asc", false, "Sort ascending instead of descending")
	cmd.Flags().BoolVar(&compare, "compare", false, "Reconcile in both modes and show the difference")
	cmd.Flags().StringVar(&exportPath, "export", "", "Also write the item table to this CSV file")

	return cmd
}

func runNetwork(ctx context.Context, out io.Writer, m mediator.Mediator, sess *session, opts networkOptions) error {
	reconcile := func(mode network.Mode) (*network.Report, error) {
		resp, err := mediator.Send[*economyQueries.ReconcileNetworkResponse](ctx, m, &economyQueries.ReconcileNetworkQuery{
			Facilities: sess.Facilities,
			Mode:       mode,
			Prices:     sess.Prices,
			SortBy:     opts.sortBy,
			Ascending:  opts.ascending,
		})
		if err != nil {
			return nil, err
		}
		return resp.Report, nil
	}

	if opts.compare {
		standard, err := reconcile(network.ModeStandard)
		if err != nil {
			return err
		}
		supplyChain, err := reconcile(network.ModeSupplyChain)
		if err != nil {
			return err
		}
		if opts.exportPath != "" {
			if err := writeFile(opts.exportPath, func(w io.Writer) error {
				return export.WriteNetwork(w, supplyChain)
			}); err != nil {
				return err
			}
		}
		if outputFormat == formatJSON {
			return printJSON(out, map[string]*network.Report{
				string(network.ModeStandard):    standard,
				string(network.ModeSupplyChain): supplyChain,
			})
		}
		printComparison(out, standard, supplyChain)
		return nil
	}

	report, err := reconcile(opts.mode)
	if err != nil {
		return err
	}

	if opts.exportPath != "" {
		if err := writeFile(opts.exportPath, func(w io.Writer) error {
			return export.WriteNetwork(w, report)
		}); err != nil {
			return err
		}
	}

	switch outputFormat {
	case formatCSV:
		return export.WriteNetwork(out, report)
	case formatJSON:
		return printJSON(out, report)
	}

	printReport(out, report)
	return nil
}

func printReport(out io.Writer, report *network.Report) {
	if len(report.Items) == 0 {
		fmt.Fprintln(out, "No facilities in the network")
		return
	}

	fmt.Fprintf(out, "Network (%s mode)\n\n", report.Mode)
	w := newTable(out)
	fmt.Fprintln(w, "ITEM\tFAC\tPRICE\tYIELD\tINTERNAL\tSURPLUS\tREVENUE\tEXPENSES\tSAVINGS\tLABOR\tNET/DAY\tMARGIN\tCLASS")
	fmt.Fprintln(w, "----\t---\t-----\t-----\t--------\t-------\t-------\t--------\t-------\t-----\t-------\t------\t-----")
	for _, s := range report.Items {
		margin := "-"
		if m := s.Margin(); m != network.NoMargin {
			margin = fmt.Sprintf("%.1f%%", m)
		}
		fmt.Fprintf(w, "%s\t%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%s\t%s\t%s\n",
			s.ItemID, s.FacilityCount, s.MarketPrice, s.DailyYield, s.ConsumedInternally, s.Surplus,
			s.Revenue, s.MarketExpenses, s.SupplyChainSavings, s.LaborCost, signed(s.NetProfitPerDay),
			margin, s.Classification)
	}
	w.Flush()

	fmt.Fprintf(out, "\nTotal revenue:      %.3f\n", report.TotalRevenue)
	fmt.Fprintf(out, "Grand total profit: %s\n", signed(report.GrandTotalProfit))
}

func printComparison(out io.Writer, standard, supplyChain *network.Report) {
	byItem := make(map[string]network.ItemEconomicStats, len(supplyChain.Items))
	for _, s := range supplyChain.Items {
		byItem[s.ItemID] = s
	}

	w := newTable(out)
	fmt.Fprintln(w, "ITEM\tSTANDARD\tSUPPLY CHAIN\tDIFF")
	fmt.Fprintln(w, "----\t--------\t------------\t----")
	for _, s := range standard.Items {
		sc := byItem[s.ItemID]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			s.ItemID, signed(s.NetProfitPerDay), signed(sc.NetProfitPerDay), signed(sc.NetProfitPerDay-s.NetProfitPerDay))
	}
	fmt.Fprintf(w, "TOTAL\t%s\t%s\t%s\n",
		signed(standard.GrandTotalProfit), signed(supplyChain.GrandTotalProfit),
		signed(supplyChain.GrandTotalProfit-standard.GrandTotalProfit))
	w.Flush()
}
