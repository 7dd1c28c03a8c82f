package storage

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"market-dashboard/src/helpers"
	"market-dashboard/src/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	cfg := &models.MConfig{Storage: models.MStorageConfig{DBType: "sqlite", DBPath: filepath.Join(t.TempDir(), "dashboard.db")}}

	store, err := NewSQLiteStore(cfg, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := store.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndFetchSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	snap := &models.MRawSnapshot{
		AssetClass: "stocks",
		Source:     "csv",
		Columns:    []string{"symbol", "close_price", "eps", "number_trades", "unknown"},
		Records: []map[string]interface{}{
			{"symbol": "BBB", "close_price": 12.5, "eps": nil, "number_trades": json.Number("42"), "unknown": "x"},
			{"symbol": "AAA", "close_price": "1,000", "eps": 0.3, "number_trades": 7},
		},
	}
	if err := store.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	got, err := store.FetchSnapshot(ctx, "stocks")
	if err != nil {
		t.Fatalf("FetchSnapshot: %v", err)
	}

	if got.Source != "csv" || len(got.Records) != 2 {
		t.Fatalf("unexpected snapshot %+v", got)
	}
	if len(got.Columns) != 4 || got.HasColumn("unknown") {
		t.Errorf("expected only known columns, got %v", got.Columns)
	}
	if got.HasColumn("yesterday_price") {
		t.Error("columns the provider did not send must stay missing")
	}

	first, second := got.Records[0], got.Records[1]
	if first["symbol"] != "BBB" || second["symbol"] != "AAA" {
		t.Errorf("row order not kept: %v, %v", first["symbol"], second["symbol"])
	}
	if first["close_price"] != "12.5" || second["close_price"] != "1,000" {
		t.Errorf("unexpected close prices %v, %v", first["close_price"], second["close_price"])
	}
	if v, ok := first["eps"]; !ok || v != nil {
		t.Errorf("expected null eps, got %#v", v)
	}
	if first["number_trades"] != "42" || second["number_trades"] != "7" {
		t.Errorf("unexpected trades %v, %v", first["number_trades"], second["number_trades"])
	}
}

func TestSaveSnapshotReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, n := range []int{3, 1} {
		snap := &models.MRawSnapshot{AssetClass: "stocks", Source: "api", Columns: []string{"symbol"}}
		for i := 0; i < n; i++ {
			snap.Records = append(snap.Records, map[string]interface{}{"symbol": "S"})
		}
		if err := store.SaveSnapshot(ctx, snap); err != nil {
			t.Fatalf("SaveSnapshot: %v", err)
		}
	}

	got, err := store.FetchSnapshot(ctx, "stocks")
	if err != nil {
		t.Fatalf("FetchSnapshot: %v", err)
	}
	if len(got.Records) != 1 {
		t.Errorf("expected 1 row after replace, got %d", len(got.Records))
	}
}

func TestFetchSnapshotUnknownAssetClass(t *testing.T) {
	store := newTestStore(t)

	_, err := store.FetchSnapshot(context.Background(), "bonds")
	var serr *helpers.StorageError
	if !errors.As(err, &serr) {
		t.Errorf("expected StorageError, got %v", err)
	}
}

func TestSchemaName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"dashboard", "dashboard"},
		{"Market-Dashboard", "market_dashboard"},
		{"", "market_dashboard"},
	}

	for _, tt := range tests {
		if got := SchemaName(tt.input); got != tt.expected {
			t.Errorf("SchemaName(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}
