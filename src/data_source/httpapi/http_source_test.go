package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"market-dashboard/src/analysis"
	"market-dashboard/src/helpers"
	"market-dashboard/src/models"
	"market-dashboard/src/network"
	"market-dashboard/src/snapshot"
)

func TestDecodeRecords(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		columns []string
		rows    int
		wantErr bool
	}{
		{"array", `[{"symbol":"A","close_price":1},{"symbol":"B","eps":null}]`, []string{"symbol", "close_price", "eps"}, 2, false},
		{"envelope", `{"data":[{"value":10,"symbol":"A"}]}`, []string{"value", "symbol"}, 1, false},
		{"empty array", `[]`, nil, 0, false},
		{"missing data", `{"rows":[]}`, nil, 0, true},
		{"not records", `[1,2]`, nil, 0, true},
		{"empty body", ``, nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			columns, records, err := DecodeRecords([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(records) != tt.rows {
				t.Errorf("expected %d rows, got %d", tt.rows, len(records))
			}
			if len(columns) != len(tt.columns) {
				t.Fatalf("expected columns %v, got %v", tt.columns, columns)
			}
			for i := range columns {
				if columns[i] != tt.columns[i] {
					t.Errorf("column %d: expected %s, got %s", i, tt.columns[i], columns[i])
				}
			}
		})
	}
}

func TestEmptyResponseRendersZeroedDashboard(t *testing.T) {
	for _, body := range []string{`[]`, `{"data":[]}`} {
		t.Run(body, func(t *testing.T) {
			columns, records, err := DecodeRecords([]byte(body))
			if err != nil {
				t.Fatalf("DecodeRecords: %v", err)
			}

			s, err := snapshot.Ingest(&models.MRawSnapshot{AssetClass: "stocks", Columns: columns, Records: records})
			if err != nil {
				t.Fatalf("Ingest: %v", err)
			}
			d := analysis.NewDashboardFacade(nil, nil).Build(s)

			if d.Breadth.Status != models.PanelStatusOK {
				t.Fatalf("expected ok breadth, got %s", d.Breadth.Error)
			}
			if b := d.Breadth.Breadth; b.Gainers != 0 || b.Losers != 0 || b.RatioDisplay != "0.00" {
				t.Errorf("expected zeroed breadth, got %+v", b)
			}
			if d.AssetTypes.Status != models.PanelStatusOK || len(d.AssetTypes.Leaderboards) != 0 {
				t.Errorf("expected no asset leaderboards, got %+v", d.AssetTypes)
			}
			if n := d.FailedPanels(); n != 0 {
				t.Errorf("expected no failed panels, got %d", n)
			}
		})
	}
}

func TestDecodeRecordsKeepsNumbersExact(t *testing.T) {
	_, records, err := DecodeRecords([]byte(`[{"number_trades":12345678901234}]`))
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}
	n, ok := records[0]["number_trades"].(json.Number)
	if !ok || n.String() != "12345678901234" {
		t.Errorf("expected json.Number 12345678901234, got %#v", records[0]["number_trades"])
	}
}

func TestFetchSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/market/stocks" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("apikey") != "secret" {
			t.Errorf("expected apikey param, got %q", r.URL.RawQuery)
		}
		w.Write([]byte(`[{"symbol":"AAA","close_price":"1,200"}]`))
	}))
	defer srv.Close()

	cfg := &models.MConfig{Network: models.MNetworkConfig{RequestTimeout: 5}}
	src := NewHTTPSource(cfg, models.MSourceConfig{
		Name:         "api",
		URL:          srv.URL + "/market/" + AssetClassPlaceholder,
		APIKey:       "secret",
		AssetClasses: []string{"stocks"},
	}, network.NewNetworkManager(cfg, nil))

	snap, err := src.FetchSnapshot(context.Background(), "stocks")
	if err != nil {
		t.Fatalf("FetchSnapshot: %v", err)
	}
	if snap.Source != "api" || len(snap.Records) != 1 || !snap.HasColumn("close_price") {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	_, err = src.FetchSnapshot(context.Background(), "bonds")
	var perr *helpers.ProviderError
	if !errors.As(err, &perr) {
		t.Errorf("expected ProviderError for unknown path, got %v", err)
	}
	if src.Supports("bonds") {
		t.Error("source is configured for stocks only")
	}
}
