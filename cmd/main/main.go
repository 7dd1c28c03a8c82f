package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"market-dashboard/src/config"
	"market-dashboard/src/logger"
)

// -----------------------------------------------------------------------------

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// -----------------------------------------------------------------------------

// run returns the process exit code. Failures return instead of exiting so
// the deferred store Close and log Sync always happen.
func run(args []string, stdout io.Writer) int {

	// 1. Parse command line flags
	flags := flag.NewFlagSet("market-dashboard", flag.ContinueOnError)
	configPath := flags.String("config", "config/default.yaml", "path to config file")
	importPath := flags.String("import", "", "load a CSV snapshot into the configured store and exit")
	assetClass := flags.String("asset-class", "", "asset class of -import or -render (default: default_asset_class)")
	renderOnly := flags.Bool("render", false, "print the dashboard JSON and exit")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	// 2. Load config from YAML file
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}

	// 3. Setup logger
	appLogger := logger.NewLogger(conf.MConfig, conf.Name)
	defer appLogger.Sync()

	// 4. Setup Components
	store, err := setupDatabase(conf.MConfig, appLogger)
	if err != nil {
		appLogger.Error("Failed to init db: %v", err)
		return 1
	}
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				appLogger.Error("Failed to close store: %v", err)
			}
		}()
	}

	if *importPath != "" {
		if err := importSnapshot(context.Background(), store, *importPath, *assetClass, conf.MConfig, appLogger); err != nil {
			appLogger.Error("Import failed: %v", err)
			return 1
		}
		return 0
	}

	networkManager := setupNetwork(conf.MConfig)
	multiSource, err := setupDataSources(conf.MConfig, appLogger, networkManager, store)
	if err != nil {
		appLogger.Error("Failed to init data sources: %v", err)
		return 1
	}
	renderer := setupRenderer(conf.MConfig, multiSource)

	if *renderOnly {
		if err := renderOnce(context.Background(), renderer, *assetClass, stdout); err != nil {
			appLogger.Error("Render failed: %v", err)
			return 1
		}
		return 0
	}

	// 5. Start Servers
	servers := startServers(conf, *configPath, renderer, multiSource, networkManager, store, appLogger)

	// 6. Wait for a shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	stopServers(servers, appLogger)
	appLogger.Info("Shutdown complete.")
	return 0
}
