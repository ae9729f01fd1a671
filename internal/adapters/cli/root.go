package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/warera-economy-go/internal/infrastructure/config"
)

var (
	// Global flags
	configPath     string
	userConfigPath string
	token          string
	fingerprint    string
	outputFormat   string
	verbose        bool
)

// Output formats accepted by --format
const (
	formatTable = "table"
	formatJSON  = "json"
	formatCSV   = "csv"
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "warera",
		Short: "WarEra economy calculator",
		Long: `warera computes production costs, profitability rankings and company
network economics for WarEra, using scraped market prices.

Examples:
  warera rank --salary 0.12 --limit 10
  warera cost steel
  warera prices refresh
  warera playground SomePlayer --save companies.json
  warera network --facilities companies.json --mode supply_chain --sort margin
  warera project --facilities companies.json --automation c1=+2 --add-worker c1
  warera serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch outputFormat {
			case formatTable, formatJSON, formatCSV:
				return nil
			}
			return fmt.Errorf("unknown --format %q (table, json, csv)", outputFormat)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config.yaml (default: ./config.yaml, ./configs, /etc/warera)")
	rootCmd.PersistentFlags().StringVar(&userConfigPath, "user-config", "",
		"Path to user preferences (default: ~/.warera/config.json)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "",
		"WarEra session token (overrides WARERA_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&fingerprint, "fingerprint", "",
		"Browser fingerprint sent with the token")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "o", formatTable,
		"Output format: table, json, csv")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	// Add command groups
	rootCmd.AddCommand(NewRankCommand())
	rootCmd.AddCommand(NewCostCommand())
	rootCmd.AddCommand(NewProjectCommand())
	rootCmd.AddCommand(NewNetworkCommand())
	rootCmd.AddCommand(NewFlowsCommand())
	rootCmd.AddCommand(NewPricesCommand())
	rootCmd.AddCommand(NewPlaygroundCommand())
	rootCmd.AddCommand(NewUserCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewServeCommand())

	return rootCmd
}

// loadConfig reads configuration and applies the global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if token != "" {
		cfg.API.Token = token
	}
	if fingerprint != "" {
		cfg.API.Fingerprint = fingerprint
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// openApp wires the engine for a one-shot command. Logs go to stderr so
// they never mix with command output.
func openApp() (*App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Logging.Output == "stdout" {
		cfg.Logging.Output = "stderr"
	}
	return NewApp(cfg, AppOptions{UserConfigPath: userConfigPath})
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
