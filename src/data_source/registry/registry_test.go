package registry

import (
	"context"
	"path/filepath"
	"testing"

	"market-dashboard/src/models"
	"market-dashboard/src/network"
	"market-dashboard/src/storage"
)

func TestNewSource(t *testing.T) {
	cfg := &models.MConfig{
		Network: models.MNetworkConfig{RequestTimeout: 5},
		Storage: models.MStorageConfig{DBType: "sqlite", DBPath: filepath.Join(t.TempDir(), "r.db")},
	}
	store, err := storage.NewSQLiteStore(cfg, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := store.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer store.Close()

	netMgr := network.NewNetworkManager(cfg, nil)

	tests := []struct {
		name    string
		source  models.MSourceConfig
		wantErr bool
	}{
		{"http", models.MSourceConfig{Name: "api", Type: TypeHTTP, URL: "http://127.0.0.1/market"}, false},
		{"csv", models.MSourceConfig{Name: "file", Type: TypeCSV, Path: "data/stocks.csv"}, false},
		{"sqlite", models.MSourceConfig{Name: "db", Type: TypeSQLite}, false},
		{"postgres against sqlite store", models.MSourceConfig{Name: "pg", Type: TypePostgres}, true},
		{"unknown", models.MSourceConfig{Name: "x", Type: "ftp"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewSource(cfg, tt.source, netMgr, store)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if src.Name() != tt.source.Name {
				t.Errorf("expected name %s, got %s", tt.source.Name, src.Name())
			}
		})
	}
}

func TestStoreSourceRenamesSnapshot(t *testing.T) {
	cfg := &models.MConfig{Storage: models.MStorageConfig{DBType: "sqlite", DBPath: filepath.Join(t.TempDir(), "s.db")}}
	store, err := storage.NewSQLiteStore(cfg, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := store.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.SaveSnapshot(ctx, &models.MRawSnapshot{AssetClass: "stocks", Source: "import", Columns: []string{"symbol"},
		Records: []map[string]interface{}{{"symbol": "AAA"}}}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	src := &StoreSource{SourceConfig: models.MSourceConfig{Name: "db", AssetClasses: []string{"stocks"}}, Store: store}
	snap, err := src.FetchSnapshot(ctx, "stocks")
	if err != nil {
		t.Fatalf("FetchSnapshot: %v", err)
	}
	if snap.Source != "db" || len(snap.Records) != 1 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if src.Supports("bonds") {
		t.Error("db source only serves stocks")
	}
}
