package analysis

import (
	"fmt"

	"market-dashboard/src/analysis/core"
	"market-dashboard/src/helpers"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/snapshot"
)

// Panel names
const (
	PanelBreadth            = "breadth"
	PanelSessionBreadth     = "session_breadth"
	PanelPriceMovementRatio = "price_movement_ratio"
	PanelTradeValue         = "trade_value"
	PanelDailyRange         = "daily_range"
	PanelCloseVsValue       = "close_vs_value"
	PanelEPSVsClose         = "eps_vs_close"
	PanelAssetTypes         = "asset_types"
)

// Top-N sizes used when the config leaves them unset
const (
	defaultRatioTopN = 20
	defaultTopN      = 15
	scatterSizeMax   = 60
)

// PanelNames lists every chart panel in page order.
var PanelNames = []string{
	PanelPriceMovementRatio,
	PanelTradeValue,
	PanelDailyRange,
	PanelCloseVsValue,
	PanelEPSVsClose,
}

// DashboardFacade turns one ingested snapshot into the derived tables and
// metrics of the dashboard. Every method is pure and leaves the snapshot as is.
type DashboardFacade struct {
	Charts models.MChartsConfig
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewDashboardFacade(cfg *models.MConfig, log *logger.Logger) *DashboardFacade {
	a := &DashboardFacade{Logger: log}
	if cfg != nil {
		a.Charts = cfg.Charts
	}
	if a.Logger == nil {
		a.Logger = logger.NewNop("Analysis")
	}
	return a
}

// -----------------------------------------------------------------------------

// Build computes every output. A failing output is reported in its own panel
// and never prevents the others from rendering.
func (a *DashboardFacade) Build(s *snapshot.Snapshot) *models.MDashboard {
	d := &models.MDashboard{
		AssetClass: s.AssetClass,
		Rows:       s.Len(),
	}

	if s.Len() == 0 {
		d.Warnings = append(d.Warnings, helpers.NewEmptySnapshotError(s.AssetClass).Error())
	}

	// 1. Breadth metrics
	breadth, err := a.Breadth(s)
	d.Breadth = breadthPanel(PanelBreadth, "Breadth Ratio", breadth, err)

	sessionBreadth, err := a.SessionBreadth(s)
	d.SessionBreadth = breadthPanel(PanelSessionBreadth, "Session Breadth Ratio", sessionBreadth, err)

	// 2. Chart tables
	for _, name := range PanelNames {
		d.Panels = append(d.Panels, a.chartPanel(name, s))
	}

	// 3. Per-asset-type leaderboards
	d.AssetTypes = models.MAssetSection{Title: "Trade Value by Type of Asset", Status: models.PanelStatusOK}
	boards, err := a.AssetTypeLeaderboards(s)
	if err != nil {
		a.Logger.Warning("Panel %s failed: %v", PanelAssetTypes, err)
		d.AssetTypes.Status = models.PanelStatusError
		d.AssetTypes.Error = err.Error()
		d.AssetTypes.Leaderboards = []models.MAssetLeaderboard{}
	} else {
		d.AssetTypes.Leaderboards = boards
	}

	for _, p := range d.Panels {
		if p.Status == models.PanelStatusError {
			a.Logger.Warning("Panel %s failed: %s", p.Name, p.Error)
		}
	}

	return d
}

// -----------------------------------------------------------------------------

func (a *DashboardFacade) chartPanel(name string, s *snapshot.Snapshot) models.MChartPanel {
	panel := models.MChartPanel{Name: name, Status: models.PanelStatusOK}

	var err error
	switch name {
	case PanelPriceMovementRatio:
		panel.Bar, err = a.PriceMovementRatio(s)
	case PanelTradeValue:
		panel.Bar, err = a.TradeValueLeaderboard(s)
	case PanelDailyRange:
		panel.Bar, err = a.DailyPriceRange(s)
	case PanelCloseVsValue:
		panel.Scatter, err = a.CloseVsValue(s)
	case PanelEPSVsClose:
		panel.Scatter, err = a.EPSVsClose(s)
	default:
		err = fmt.Errorf("unknown panel %q", name)
	}

	if err != nil {
		return models.MChartPanel{Name: name, Status: models.PanelStatusError, Error: err.Error()}
	}
	return panel
}

// -----------------------------------------------------------------------------

func breadthPanel(name, label string, b *models.MBreadth, err error) models.MBreadthPanel {
	if err != nil {
		return models.MBreadthPanel{Name: name, Label: label, Status: models.PanelStatusError, Error: err.Error()}
	}
	return models.MBreadthPanel{Name: name, Label: label, Status: models.PanelStatusOK, Breadth: b}
}

// -----------------------------------------------------------------------------
// Breadth
// -----------------------------------------------------------------------------

// Breadth compares each Close Price to the row before it in table order.
func (a *DashboardFacade) Breadth(s *snapshot.Snapshot) (*models.MBreadth, error) {
	if err := s.Require(snapshot.ColClosePrice); err != nil {
		return nil, err
	}

	rows := s.Rows()
	closes := make([]float64, len(rows))
	for i, r := range rows {
		closes[i] = r.ClosePrice
	}

	gainers, losers, ratio := core.AdjacentBreadth(closes)
	return newBreadth(gainers, losers, ratio), nil
}

// -----------------------------------------------------------------------------

// SessionBreadth compares each Close Price to the same symbol's Yesterday Price.
func (a *DashboardFacade) SessionBreadth(s *snapshot.Snapshot) (*models.MBreadth, error) {
	if err := s.Require(snapshot.ColClosePrice, snapshot.ColYesterdayPrice); err != nil {
		return nil, err
	}

	rows := s.Rows()
	closes := make([]float64, len(rows))
	previous := make([]float64, len(rows))
	for i, r := range rows {
		closes[i] = r.ClosePrice
		previous[i] = r.YesterdayPrice
	}

	gainers, losers, ratio := core.SessionBreadth(closes, previous)
	return newBreadth(gainers, losers, ratio), nil
}

func newBreadth(gainers, losers int, ratio float64) *models.MBreadth {
	return &models.MBreadth{
		Gainers:      gainers,
		Losers:       losers,
		Ratio:        ratio,
		RatioDisplay: fmt.Sprintf("%.2f", ratio),
	}
}

// -----------------------------------------------------------------------------
// Bar leaderboards
// -----------------------------------------------------------------------------

// PriceMovementRatio ranks symbols by Last Trade / (First Price + 1).
func (a *DashboardFacade) PriceMovementRatio(s *snapshot.Snapshot) (*models.MBarChart, error) {
	if err := s.Require(snapshot.ColSymbol, snapshot.ColLastTrade, snapshot.ColFirstPrice); err != nil {
		return nil, err
	}

	chart := &models.MBarChart{
		Title:      "First vs Last Trade Price Ratio",
		XLabel:     snapshot.ColSymbol.Label,
		YLabel:     "Last/First Price",
		ColorScale: "Bluered_r",
	}
	chart.Bars = rankBars(s.Rows(), func(r snapshot.Row) float64 {
		return core.PriceMovementRatio(r.LastTrade, r.FirstPrice)
	}, topN(a.Charts.RatioTopN, defaultRatioTopN))
	return chart, nil
}

// -----------------------------------------------------------------------------

// TradeValueLeaderboard ranks symbols by Trade Value.
func (a *DashboardFacade) TradeValueLeaderboard(s *snapshot.Snapshot) (*models.MBarChart, error) {
	if err := s.Require(snapshot.ColSymbol, snapshot.ColTradeValue); err != nil {
		return nil, err
	}

	chart := &models.MBarChart{
		Title:      "Top Symbols by Trade Value",
		XLabel:     snapshot.ColSymbol.Label,
		YLabel:     snapshot.ColTradeValue.Label,
		ColorScale: "Tealrose",
	}
	chart.Bars = rankBars(s.Rows(), tradeValue, topN(a.Charts.ValueTopN, defaultTopN))
	return chart, nil
}

// -----------------------------------------------------------------------------

// DailyPriceRange ranks symbols by High Price - Low Price.
func (a *DashboardFacade) DailyPriceRange(s *snapshot.Snapshot) (*models.MBarChart, error) {
	if err := s.Require(snapshot.ColSymbol, snapshot.ColHighPrice, snapshot.ColLowPrice); err != nil {
		return nil, err
	}

	chart := &models.MBarChart{
		Title:      "Daily Price Range",
		XLabel:     snapshot.ColSymbol.Label,
		YLabel:     "Range",
		ColorScale: "Agsunset",
	}
	chart.Bars = rankBars(s.Rows(), func(r snapshot.Row) float64 {
		return core.DailyRange(r.HighPrice, r.LowPrice)
	}, topN(a.Charts.RangeTopN, defaultTopN))
	return chart, nil
}

// -----------------------------------------------------------------------------

// AssetTypeLeaderboards builds one Trade Value leaderboard per non-null asset
// type, in order of first appearance.
func (a *DashboardFacade) AssetTypeLeaderboards(s *snapshot.Snapshot) ([]models.MAssetLeaderboard, error) {
	if err := s.Require(snapshot.ColTypeOfAsset, snapshot.ColSymbol, snapshot.ColTradeValue); err != nil {
		return nil, err
	}

	var order []string
	groups := make(map[string][]snapshot.Row)
	for _, r := range s.Rows() {
		if !r.TypeOfAsset.Valid {
			continue
		}
		t := r.TypeOfAsset.String
		if _, ok := groups[t]; !ok {
			order = append(order, t)
		}
		groups[t] = append(groups[t], r)
	}

	boards := make([]models.MAssetLeaderboard, 0, len(order))
	n := topN(a.Charts.AssetTopN, defaultTopN)
	for _, t := range order {
		boards = append(boards, models.MAssetLeaderboard{
			AssetType: t,
			Chart: models.MBarChart{
				Title:      t,
				XLabel:     snapshot.ColSymbol.Label,
				YLabel:     snapshot.ColTradeValue.Label,
				ColorScale: "Sunsetdark",
				Bars:       rankBars(groups[t], tradeValue, n),
			},
		})
	}
	return boards, nil
}

// -----------------------------------------------------------------------------
// Scatter tables
// -----------------------------------------------------------------------------

// CloseVsValue passes every row through: x = Close Price, y = Trade Value,
// size = Trade Volume.
func (a *DashboardFacade) CloseVsValue(s *snapshot.Snapshot) (*models.MScatterChart, error) {
	if err := s.Require(snapshot.ColClosePrice, snapshot.ColTradeValue, snapshot.ColTradeVolume, snapshot.ColSymbol); err != nil {
		return nil, err
	}

	rows := s.Rows()
	chart := &models.MScatterChart{
		Title:     "Close Price vs Trade Value",
		XLabel:    snapshot.ColClosePrice.Label,
		YLabel:    snapshot.ColTradeValue.Label,
		SizeLabel: snapshot.ColTradeVolume.Label,
		SizeMax:   scatterSizeMax,
		Points:    make([]models.MScatterPoint, 0, len(rows)),
	}
	for _, r := range rows {
		chart.Points = append(chart.Points, models.MScatterPoint{
			Symbol: r.Symbol,
			X:      r.ClosePrice,
			Y:      r.TradeValue,
			Size:   r.TradeVolume,
		})
	}
	return chart, nil
}

// -----------------------------------------------------------------------------

// EPSVsClose keeps rows with EPS strictly above zero: x = EPS,
// y = Close Price, size = Shares Outstanding.
func (a *DashboardFacade) EPSVsClose(s *snapshot.Snapshot) (*models.MScatterChart, error) {
	if err := s.Require(snapshot.ColEPS, snapshot.ColClosePrice, snapshot.ColSymbol, snapshot.ColSharesOutstanding); err != nil {
		return nil, err
	}

	chart := &models.MScatterChart{
		Title:     "EPS vs Close Price",
		XLabel:    snapshot.ColEPS.Label,
		YLabel:    snapshot.ColClosePrice.Label,
		SizeLabel: snapshot.ColSharesOutstanding.Label,
		SizeMax:   scatterSizeMax,
		Points:    []models.MScatterPoint{},
	}
	for _, r := range s.Rows() {
		if !r.EPS.Valid || !(r.EPS.Float64 > 0) {
			continue
		}
		chart.Points = append(chart.Points, models.MScatterPoint{
			Symbol: r.Symbol,
			X:      r.EPS.Float64,
			Y:      r.ClosePrice,
			Size:   r.SharesOutstanding,
		})
	}
	return chart, nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func tradeValue(r snapshot.Row) float64 {
	return r.TradeValue
}

func topN(configured, fallback int) int {
	if configured > 0 {
		return configured
	}
	return fallback
}

// rankBars sorts rows by key (descending, stable) and keeps the first n.
func rankBars(rows []snapshot.Row, key func(snapshot.Row) float64, n int) []models.MBar {
	keys := make([]float64, len(rows))
	for i, r := range rows {
		keys[i] = key(r)
	}

	idx := core.TopNDesc(keys, n)
	bars := make([]models.MBar, 0, len(idx))
	for _, i := range idx {
		bars = append(bars, models.MBar{Symbol: rows[i].Symbol, Value: keys[i]})
	}
	return bars
}
