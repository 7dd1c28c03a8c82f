package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"market-dashboard/src/models"
	"market-dashboard/src/snapshot"

	"github.com/guregu/null/v6"
)

func newFacade() *DashboardFacade {
	return NewDashboardFacade(nil, nil)
}

func row(symbol string, closePrice, value float64) snapshot.Row {
	return snapshot.Row{
		Symbol:            symbol,
		ClosePrice:        closePrice,
		TradeValue:        value,
		TradeVolume:       value / 10,
		FirstPrice:        closePrice,
		LastTrade:         closePrice,
		LowPrice:          closePrice - 1,
		HighPrice:         closePrice + 1,
		YesterdayPrice:    closePrice,
		EPS:               null.FloatFrom(1),
		SharesOutstanding: 1000,
	}
}

func TestBreadthScenario(t *testing.T) {
	s := snapshot.FromRows("stocks", []snapshot.Row{
		row("A", 10, 1), row("B", 12, 1), row("C", 9, 1),
	})

	b, err := newFacade().Breadth(s)
	if err != nil {
		t.Fatalf("Breadth: %v", err)
	}
	if b.Gainers != 1 || b.Losers != 1 || b.Ratio != 0.5 || b.RatioDisplay != "0.50" {
		t.Errorf("unexpected breadth %+v", b)
	}
}

func TestSessionBreadthUsesYesterdayPrice(t *testing.T) {
	up := row("A", 10, 1)
	up.YesterdayPrice = 8
	down := row("B", 12, 1)
	down.YesterdayPrice = 13
	flat := row("C", 9, 1)
	s := snapshot.FromRows("stocks", []snapshot.Row{up, down, flat})

	b, err := newFacade().SessionBreadth(s)
	if err != nil {
		t.Fatalf("SessionBreadth: %v", err)
	}
	if b.Gainers != 1 || b.Losers != 1 || b.RatioDisplay != "0.50" {
		t.Errorf("unexpected session breadth %+v", b)
	}

	// The adjacent-row breadth on the same rows is unaffected
	adj, _ := newFacade().Breadth(s)
	if adj.Gainers != 1 || adj.Losers != 1 {
		t.Errorf("unexpected adjacent breadth %+v", adj)
	}
}

func TestBreadthEmptySnapshot(t *testing.T) {
	d := newFacade().Build(snapshot.FromRows("stocks", nil))

	if d.Breadth.Status != models.PanelStatusOK {
		t.Fatalf("expected ok breadth on empty snapshot, got %s", d.Breadth.Error)
	}
	if b := d.Breadth.Breadth; b.Gainers != 0 || b.Losers != 0 || b.Ratio != 0 {
		t.Errorf("expected zero breadth, got %+v", b)
	}
	if len(d.Warnings) != 1 || !strings.Contains(d.Warnings[0], "no rows") {
		t.Errorf("expected empty snapshot warning, got %v", d.Warnings)
	}
}

func TestPriceMovementRatio(t *testing.T) {
	r := row("ONE", 1, 1)
	r.FirstPrice = 0
	r.LastTrade = 5

	chart, err := newFacade().PriceMovementRatio(snapshot.FromRows("stocks", []snapshot.Row{r}))
	if err != nil {
		t.Fatalf("PriceMovementRatio: %v", err)
	}
	if len(chart.Bars) != 1 || chart.Bars[0].Value != 5.0 {
		t.Errorf("expected single bar 5.0, got %+v", chart.Bars)
	}
	if chart.YLabel != "Last/First Price" {
		t.Errorf("unexpected label %q", chart.YLabel)
	}
}

func TestPriceMovementRatioTopTwentyStable(t *testing.T) {
	var rows []snapshot.Row
	for i := 0; i < 30; i++ {
		r := row(fmt.Sprintf("S%02d", i), 1, 1)
		r.FirstPrice = 0
		// three distinct ratios, many ties
		r.LastTrade = float64(i % 3)
		rows = append(rows, r)
	}

	chart, err := newFacade().PriceMovementRatio(snapshot.FromRows("stocks", rows))
	if err != nil {
		t.Fatalf("PriceMovementRatio: %v", err)
	}
	if len(chart.Bars) != 20 {
		t.Fatalf("expected 20 bars, got %d", len(chart.Bars))
	}

	for i := 1; i < len(chart.Bars); i++ {
		prev, cur := chart.Bars[i-1], chart.Bars[i]
		if prev.Value < cur.Value {
			t.Fatalf("not descending at %d: %v < %v", i, prev.Value, cur.Value)
		}
		if prev.Value == cur.Value && prev.Symbol > cur.Symbol {
			t.Fatalf("tie order not stable at %d: %s before %s", i, prev.Symbol, cur.Symbol)
		}
	}
	if chart.Bars[0].Symbol != "S02" {
		t.Errorf("expected S02 first, got %s", chart.Bars[0].Symbol)
	}
}

func TestTradeValueLeaderboard(t *testing.T) {
	var rows []snapshot.Row
	for i := 0; i < 20; i++ {
		rows = append(rows, row(fmt.Sprintf("V%02d", i), 1, float64(i)))
	}

	chart, err := newFacade().TradeValueLeaderboard(snapshot.FromRows("stocks", rows))
	if err != nil {
		t.Fatalf("TradeValueLeaderboard: %v", err)
	}
	if len(chart.Bars) != 15 {
		t.Fatalf("expected 15 bars, got %d", len(chart.Bars))
	}
	if chart.Bars[0].Symbol != "V19" || chart.Bars[14].Symbol != "V05" {
		t.Errorf("unexpected order: first %s, last %s", chart.Bars[0].Symbol, chart.Bars[14].Symbol)
	}
}

func TestDailyPriceRangePassesNegativeThrough(t *testing.T) {
	flat := row("FLAT", 10, 1)
	flat.HighPrice, flat.LowPrice = 10, 10
	wide := row("WIDE", 10, 1)
	wide.HighPrice, wide.LowPrice = 15, 5
	inverted := row("INV", 10, 1)
	inverted.HighPrice, inverted.LowPrice = 9, 10

	chart, err := newFacade().DailyPriceRange(snapshot.FromRows("stocks", []snapshot.Row{inverted, flat, wide}))
	if err != nil {
		t.Fatalf("DailyPriceRange: %v", err)
	}

	want := []models.MBar{{Symbol: "WIDE", Value: 10}, {Symbol: "FLAT", Value: 0}, {Symbol: "INV", Value: -1}}
	for i, b := range want {
		if chart.Bars[i] != b {
			t.Errorf("bar %d: expected %+v, got %+v", i, b, chart.Bars[i])
		}
	}
}

func TestCloseVsValueKeepsEveryRow(t *testing.T) {
	var rows []snapshot.Row
	for i := 0; i < 40; i++ {
		rows = append(rows, row(fmt.Sprintf("P%02d", i), float64(i), float64(i*100)))
	}

	chart, err := newFacade().CloseVsValue(snapshot.FromRows("stocks", rows))
	if err != nil {
		t.Fatalf("CloseVsValue: %v", err)
	}
	if len(chart.Points) != 40 {
		t.Fatalf("expected 40 points, got %d", len(chart.Points))
	}
	p := chart.Points[3]
	if p.Symbol != "P03" || p.X != 3 || p.Y != 300 || p.Size != 30 {
		t.Errorf("unexpected point %+v", p)
	}
}

func TestEPSVsCloseFiltersNonPositive(t *testing.T) {
	pos := row("POS", 10, 1)
	pos.EPS = null.FloatFrom(2.5)
	zero := row("ZERO", 10, 1)
	zero.EPS = null.FloatFrom(0)
	neg := row("NEG", 10, 1)
	neg.EPS = null.FloatFrom(-1)
	missing := row("NULL", 10, 1)
	missing.EPS = null.Float{}

	chart, err := newFacade().EPSVsClose(snapshot.FromRows("stocks", []snapshot.Row{pos, zero, neg, missing}))
	if err != nil {
		t.Fatalf("EPSVsClose: %v", err)
	}
	if len(chart.Points) != 1 || chart.Points[0].Symbol != "POS" {
		t.Fatalf("expected only POS, got %+v", chart.Points)
	}
	for _, p := range chart.Points {
		if p.X <= 0 {
			t.Errorf("point %s has EPS %v", p.Symbol, p.X)
		}
	}
}

func TestAssetTypeLeaderboards(t *testing.T) {
	var rows []snapshot.Row
	for i := 0; i < 20; i++ {
		r := row(fmt.Sprintf("E%02d", i), 1, float64(i))
		r.TypeOfAsset = null.StringFrom("equity")
		rows = append(rows, r)
	}
	fund := row("F1", 1, 5)
	fund.TypeOfAsset = null.StringFrom("fund")
	orphan := row("X1", 1, 1e9)
	rows = append([]snapshot.Row{fund}, append(rows, orphan)...)

	boards, err := newFacade().AssetTypeLeaderboards(snapshot.FromRows("stocks", rows))
	if err != nil {
		t.Fatalf("AssetTypeLeaderboards: %v", err)
	}
	if len(boards) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(boards))
	}
	if boards[0].AssetType != "fund" || boards[1].AssetType != "equity" {
		t.Errorf("expected first-appearance order, got %s, %s", boards[0].AssetType, boards[1].AssetType)
	}
	if len(boards[0].Chart.Bars) != 1 || len(boards[1].Chart.Bars) != 15 {
		t.Errorf("unexpected sizes %d, %d", len(boards[0].Chart.Bars), len(boards[1].Chart.Bars))
	}
	for _, b := range boards {
		for _, bar := range b.Chart.Bars {
			if bar.Symbol == "X1" {
				t.Errorf("row without asset type leaked into %s", b.AssetType)
			}
		}
	}
}

func TestAssetTypeLeaderboardsNoTypes(t *testing.T) {
	s := snapshot.FromRows("stocks", []snapshot.Row{row("A", 1, 1), row("B", 2, 2)})

	d := newFacade().Build(s)
	if d.AssetTypes.Status != models.PanelStatusOK {
		t.Fatalf("expected ok, got %s", d.AssetTypes.Error)
	}
	if len(d.AssetTypes.Leaderboards) != 0 {
		t.Errorf("expected no leaderboards, got %d", len(d.AssetTypes.Leaderboards))
	}
}

func TestBuildIsolatesPanelFailures(t *testing.T) {
	columns := snapshot.ProviderKeys()[:13]
	var kept []string
	for _, c := range columns {
		if c != "eps" {
			kept = append(kept, c)
		}
	}
	record := map[string]interface{}{
		"symbol": "AAA", "close_price": 10.0, "value": "not a number", "volume": 1.0,
		"number_trades": 1, "first_price": 1.0, "last_trade": 2.0, "low_price": 1.0,
		"high_price": 3.0, "yesterday_price": 9.0, "number_shares": 10.0, "type_of_asset": "equity",
	}
	s, err := snapshot.Ingest(&models.MRawSnapshot{AssetClass: "stocks", Columns: kept, Records: []map[string]interface{}{record}})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	d := newFacade().Build(s)

	expected := map[string]string{
		PanelPriceMovementRatio: models.PanelStatusOK,
		PanelTradeValue:         models.PanelStatusError,
		PanelDailyRange:         models.PanelStatusOK,
		PanelCloseVsValue:       models.PanelStatusError,
		PanelEPSVsClose:         models.PanelStatusError,
	}
	for name, status := range expected {
		p, ok := d.Panel(name)
		if !ok {
			t.Fatalf("panel %s missing", name)
		}
		if p.Status != status {
			t.Errorf("panel %s: expected %s, got %s (%s)", name, status, p.Status, p.Error)
		}
		if p.Status == models.PanelStatusError && (p.Bar != nil || p.Scatter != nil) {
			t.Errorf("failed panel %s carries data", name)
		}
	}
	if d.Breadth.Status != models.PanelStatusOK {
		t.Errorf("breadth should render, got %s", d.Breadth.Error)
	}
	if d.AssetTypes.Status != models.PanelStatusError {
		t.Errorf("asset types depend on Trade Value and should fail")
	}
	if d.FailedPanels() != 4 {
		t.Errorf("expected 4 failed outputs, got %d", d.FailedPanels())
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	var rows []snapshot.Row
	for i := 0; i < 25; i++ {
		r := row(fmt.Sprintf("I%02d", i), float64(i%7), float64(i%4))
		if i%2 == 0 {
			r.TypeOfAsset = null.StringFrom(fmt.Sprintf("type-%d", i%3))
		}
		rows = append(rows, r)
	}
	s := snapshot.FromRows("stocks", rows)
	a := newFacade()

	first, err := json.Marshal(a.Build(s))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(a.Build(s))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("two builds of the same snapshot differ")
	}
}

func TestConfiguredTopN(t *testing.T) {
	cfg := &models.MConfig{Charts: models.MChartsConfig{ValueTopN: 3}}
	a := NewDashboardFacade(cfg, nil)

	var rows []snapshot.Row
	for i := 0; i < 10; i++ {
		rows = append(rows, row(fmt.Sprintf("C%d", i), 1, float64(i)))
	}
	chart, err := a.TradeValueLeaderboard(snapshot.FromRows("stocks", rows))
	if err != nil {
		t.Fatalf("TradeValueLeaderboard: %v", err)
	}
	if len(chart.Bars) != 3 {
		t.Errorf("expected 3 bars, got %d", len(chart.Bars))
	}
}
