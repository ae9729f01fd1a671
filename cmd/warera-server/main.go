package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/andrescamacho/warera-economy-go/internal/adapters/cli"
	"github.com/andrescamacho/warera-economy-go/internal/infrastructure/config"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml")
	address := flag.String("address", "", "Listen address (overrides server.address)")
	flag.Parse()

	fmt.Println("WarEra Economy Server")
	fmt.Println("=====================")

	// 1. Load configuration
	fmt.Println("Loading configuration...")
	cfg := config.MustLoadConfig(*configPath)
	if *address != "" {
		cfg.Server.Address = *address
	}

	if err := run(cfg); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(cfg *config.Config) error {
	// 2. Wire storage, API client, price cache, handlers and metrics
	fmt.Printf("Using %s storage\n", cfg.Storage.Type)
	app, err := cli.NewApp(cfg, cli.AppOptions{EnableMetrics: true})
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer app.Close()
	fmt.Printf("Recipe catalog loaded (%d items)\n", app.Catalog.Len())

	// 3. Serve until SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Listening on %s (PID file %s)\n", cfg.Server.Address, cfg.Server.PIDFile)
	if err := cli.Serve(ctx, app); err != nil {
		return err
	}
	fmt.Println("Server stopped")
	return nil
}
