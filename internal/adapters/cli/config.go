package cli

import (
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/warera-economy-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage WarEra configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (WARERA_* prefix)
2. Config file (config.yaml)
3. Default values

User preferences (salary, price overrides, default username) are stored
in ~/.warera/config.json

Examples:
  warera config show
  warera config set-salary 0.12
  warera config set-override steel 1.8
  warera config clear-overrides
  warera config set-username SomePlayer`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetSalaryCommand())
	cmd.AddCommand(newConfigSetOverrideCommand())
	cmd.AddCommand(newConfigClearOverridesCommand())
	cmd.AddCommand(newConfigSetUsernameCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long: `Display the current configuration settings.

Shows both system configuration and user preferences.

Example:
  warera config show`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := loadConfig()
			if err != nil {
				fmt.Fprintf(out, "Warning: %v\n", err)
				fmt.Fprintln(out, "Using default configuration.")
				cfg = config.DefaultConfig()
			}

			handler, err := userConfigHandler(userConfigPath)
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			userCfg, err := handler.Load()
			if err != nil {
				fmt.Fprintf(out, "Warning: Failed to load user config: %v\n\n", err)
				userCfg = &config.UserConfig{}
			}

			printConfig(out, cfg, userCfg, handler.GetConfigPath())
			return nil
		},
	}
}

func printConfig(out io.Writer, cfg *config.Config, userCfg *config.UserConfig, userPath string) {
	fmt.Fprintln(out, "WarEra Configuration")
	fmt.Fprintln(out, "====================")

	fmt.Fprintln(out, "User Preferences:")
	fmt.Fprintf(out, "  Config file:      %s\n", userPath)
	if userCfg.DefaultSalary != nil {
		fmt.Fprintf(out, "  Default Salary:   %g\n", *userCfg.DefaultSalary)
	} else {
		fmt.Fprintf(out, "  Default Salary:   (not set, using %g)\n", cfg.Economy.DefaultSalary)
	}
	if userCfg.DefaultUsername != "" {
		fmt.Fprintf(out, "  Default Username: %s\n", userCfg.DefaultUsername)
	} else {
		fmt.Fprintf(out, "  Default Username: (not set)\n")
	}
	if len(userCfg.PriceOverrides) == 0 {
		fmt.Fprintf(out, "  Price Overrides:  (none)\n")
	} else {
		fmt.Fprintf(out, "  Price Overrides:  %d\n", len(userCfg.PriceOverrides))
		for _, id := range userCfg.OverrideIDs() {
			fmt.Fprintf(out, "    %-16s%g\n", id, userCfg.PriceOverrides[id])
		}
	}

	fmt.Fprintln(out, "\nEconomy:")
	if cfg.Economy.CatalogPath != "" {
		fmt.Fprintf(out, "  Catalog:          %s\n", cfg.Economy.CatalogPath)
	} else {
		fmt.Fprintf(out, "  Catalog:          (bundled)\n")
	}
	fmt.Fprintf(out, "  Work Factor:      %g\n", cfg.Economy.WorkOutputFactor)
	fmt.Fprintf(out, "  Automation/Level: %g\n", cfg.Economy.AutomationWorkPerLevel)
	fmt.Fprintf(out, "  Levels:           %d-%d\n", cfg.Economy.MinLevel, cfg.Economy.MaxLevel)

	fmt.Fprintln(out, "\nStorage:")
	fmt.Fprintf(out, "  Type:             %s\n", cfg.Storage.Type)
	if cfg.Storage.Type == "database" {
		fmt.Fprintf(out, "  Database:         %s\n", cfg.Database.Type)
		if cfg.Database.URL != "" {
			fmt.Fprintf(out, "  URL:              %s\n", maskPassword(cfg.Database.URL))
		} else {
			fmt.Fprintf(out, "  Host:             %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
		}
	} else {
		fmt.Fprintf(out, "  File:             %s\n", cfg.Storage.FilePath)
	}
	fmt.Fprintf(out, "  Stale After:      %s\n", cfg.Storage.StaleAfter)
	fmt.Fprintf(out, "  Background:       %t\n", cfg.Storage.BackgroundRefresh)

	fmt.Fprintln(out, "\nWarEra API:")
	fmt.Fprintf(out, "  Base URL:         %s\n", cfg.API.BaseURL)
	fmt.Fprintf(out, "  Token:            %s\n", presence(cfg.API.Token))
	fmt.Fprintf(out, "  Timeout:          %s\n", cfg.API.Timeout)
	fmt.Fprintf(out, "  Rate Limit:       %d req/s (burst: %d)\n",
		cfg.API.RateLimit.Requests, cfg.API.RateLimit.Burst)
	fmt.Fprintf(out, "  Max Retries:      %d\n", cfg.API.Retry.MaxAttempts)

	fmt.Fprintln(out, "\nServer:")
	fmt.Fprintf(out, "  Address:          %s\n", cfg.Server.Address)
	fmt.Fprintf(out, "  Metrics:          %t (%s)\n", cfg.Metrics.Enabled, cfg.Metrics.Path)

	fmt.Fprintln(out, "\nLogging:")
	fmt.Fprintf(out, "  Level:            %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "  Format:           %s\n", cfg.Logging.Format)
	fmt.Fprintf(out, "  Output:           %s\n", cfg.Logging.Output)
}

func newConfigSetSalaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-salary <salary>",
		Short: "Set the default salary per work point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			salary, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid salary %q: %w", args[0], err)
			}

			handler, err := userConfigHandler(userConfigPath)
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := handler.SetDefaultSalary(salary); err != nil {
				return fmt.Errorf("failed to set default salary: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Default salary set to %g\n", salary)
			return nil
		},
	}
}

func newConfigSetOverrideCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-override <item> <price>",
		Short: "Pin the price of an item",
		Long: `Pin the price of an item. Overrides replace scraped prices in every
cost, ranking and network calculation until cleared.

Example:
  warera config set-override steel 1.8`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid price %q: %w", args[1], err)
			}

			handler, err := userConfigHandler(userConfigPath)
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := handler.SetPriceOverride(args[0], price); err != nil {
				return fmt.Errorf("failed to set price override: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Price of %s pinned to %g\n", args[0], price)
			return nil
		},
	}
}

func newConfigClearOverridesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-overrides",
		Short: "Remove every price override",
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := userConfigHandler(userConfigPath)
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := handler.ClearPriceOverrides(); err != nil {
				return fmt.Errorf("failed to clear price overrides: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Price overrides cleared")
			return nil
		},
	}
}

func newConfigSetUsernameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-username <username>",
		Short: "Set the default playground username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := userConfigHandler(userConfigPath)
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := handler.SetDefaultUsername(args[0]); err != nil {
				return fmt.Errorf("failed to set default username: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Default username set to %s\n", args[0])
			return nil
		},
	}
}

// maskPassword hides the password in a connection URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(unparseable)"
	}
	return u.Redacted()
}

func presence(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	return "(set)"
}
