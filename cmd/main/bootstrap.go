package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"market-dashboard/src/analysis"
	"market-dashboard/src/data_source/csvfile"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/snapshot"
)

// -----------------------------------------------------------------------------

// importSnapshot loads a CSV export into the store so database sources can
// serve it.
func importSnapshot(ctx context.Context, store interfaces.ISnapshotStore, path, assetClass string, config *models.MConfig, appLogger *logger.Logger) error {
	if store == nil {
		return fmt.Errorf("no snapshot store configured (storage.db_path or storage.db_connection_string)")
	}
	if assetClass == "" {
		assetClass = config.DefaultAssetClass
	}

	raw, err := csvfile.ReadFile(path)
	if err != nil {
		return err
	}
	raw.AssetClass = assetClass
	raw.Source = "import:" + path

	// Report column problems now rather than at render time
	s, err := snapshot.Ingest(raw)
	if err != nil {
		return err
	}
	for _, colErr := range s.ColumnErrors() {
		appLogger.Warning("Imported snapshot: %v", colErr)
	}

	if err := store.SaveSnapshot(ctx, raw); err != nil {
		return err
	}
	appLogger.Info("Imported %d rows for %s from %s", len(raw.Records), assetClass, path)
	return nil
}

// -----------------------------------------------------------------------------

// renderOnce writes one dashboard response as indented JSON.
func renderOnce(ctx context.Context, renderer *analysis.Renderer, assetClass string, w io.Writer) error {
	resp, err := renderer.Render(ctx, assetClass)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
