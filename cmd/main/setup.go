package main

import (
	"fmt"

	"market-dashboard/src/analysis"
	datasource "market-dashboard/src/data_source"
	"market-dashboard/src/data_source/registry"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/network"
	"market-dashboard/src/storage"
	"market-dashboard/src/utils"
)

// -----------------------------------------------------------------------------

// setupDatabase opens the configured snapshot store. SQLite without a
// db_path means no store.
func setupDatabase(config *models.MConfig, appLogger *logger.Logger) (interfaces.ISnapshotStore, error) {
	var db interfaces.ISnapshotStore
	var err error

	switch config.Storage.DBType {
	case "postgres":
		db, err = storage.NewPostgresStore(config, logger.NewLogger(config, "PostgresStore"))
	default:
		if config.Storage.DBPath == "" {
			appLogger.Info("No storage.db_path set, running without a snapshot store")
			return nil, nil
		}
		db, err = storage.NewSQLiteStore(config, logger.NewLogger(config, "SQLiteStore"))
	}

	if err != nil {
		return nil, err
	}
	if err := db.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to migrate db: %w", err)
	}
	return db, nil
}

// -----------------------------------------------------------------------------

// setupNetwork initializes the network manager
func setupNetwork(config *models.MConfig) interfaces.INetworkManager {
	networkLogger := logger.NewLogger(config, "NetworkManager")
	return network.NewNetworkManager(config, networkLogger)
}

// -----------------------------------------------------------------------------

// setupDataSources builds every configured source, in priority order
func setupDataSources(config *models.MConfig, appLogger *logger.Logger, networkManager interfaces.INetworkManager, store interfaces.ISnapshotStore) (*datasource.MultiSourceManager, error) {
	var sources []interfaces.ISnapshotProvider
	appLogger.Info("Initializing data sources...")

	for _, srcCfg := range config.DataSource.Sources {
		s, err := registry.NewSource(config, srcCfg, networkManager, store)
		if err != nil {
			appLogger.Warning("Skipping source: %v", err)
			continue
		}
		sources = append(sources, s)
		appLogger.Info("Added source: %s (%s) for %v", srcCfg.Name, srcCfg.Type, srcCfg.AssetClasses)
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no valid data sources")
	}

	appLogger.Info("Initializing MultiSourceManager for %d sources.", len(sources))
	return datasource.NewMultiSourceManager(sources, logger.NewLogger(config, "MultiSourceManager")), nil
}

// -----------------------------------------------------------------------------

// setupRenderer wires the transform, the trading calendar and the sources
func setupRenderer(config *models.MConfig, provider interfaces.ISnapshotProvider) *analysis.Renderer {
	analysisLogger := logger.NewLogger(config, "Analysis")
	facade := analysis.NewDashboardFacade(config, analysisLogger)
	calendar := utils.NewTradingCalendar(config.Market.MIC, analysisLogger)
	return analysis.NewRenderer(config, provider, facade, calendar, logger.NewLogger(config, "Renderer"))
}
