package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/warera-economy-go/internal/adapters/httpapi"
	"github.com/andrescamacho/warera-economy-go/internal/infrastructure/pidfile"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	var (
		address string
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API server",
		Long: `Run the HTTP API that backs the WarEra economy web client.

Endpoints:
  GET  /healthz
  GET  /api/market-data[?force=true]
  POST /api/cost
  POST /api/profitability
  POST /api/network
  GET  /api/playground?username=NAME
  GET  /api/playground/search-user?q=NAME
  GET  /metrics (with --metrics or metrics.enabled)

Examples:
  warera serve
  warera serve --address :9090 --metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Server.Address = address
			}

			app, err := NewApp(cfg, AppOptions{UserConfigPath: userConfigPath, EnableMetrics: metrics})
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return Serve(ctx, app)
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "Listen address (default: server.address)")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Expose Prometheus metrics")

	return cmd
}

// Serve runs the HTTP API until ctx is cancelled. It holds the configured PID
// file for its lifetime and starts the app's background pollers.
func Serve(ctx context.Context, app *App) error {
	cfg := app.Config

	if cfg.Server.PIDFile != "" {
		pf := pidfile.New(cfg.Server.PIDFile)
		if err := pf.Acquire(); err != nil {
			return fmt.Errorf("failed to acquire PID file: %w", err)
		}
		defer func() {
			if err := pf.Release(); err != nil {
				app.Logger.Log("WARNING", "Failed to release PID file", map[string]interface{}{
					"path":  pf.Path(),
					"error": err.Error(),
				})
			}
		}()
	}

	app.StartBackground(ctx)

	server := httpapi.NewServer(app.Mediator, cfg.Server, cfg.Metrics.Path, app.Logger)
	return server.Run(ctx)
}
