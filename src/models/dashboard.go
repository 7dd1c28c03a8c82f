package models

// Panel status values
const (
	PanelStatusOK    = "ok"
	PanelStatusError = "error"
)

// -----------------------------------------------------------------------------
// Derived tables
// -----------------------------------------------------------------------------

// MBar is one categorical bar keyed by symbol.
type MBar struct {
	Symbol string  `json:"symbol"`
	Value  float64 `json:"value"`
}

// MBarChart is a leaderboard ready for a bar renderer (x = Symbol, y = Value).
type MBarChart struct {
	Title      string `json:"title"`
	XLabel     string `json:"x_label"`
	YLabel     string `json:"y_label"`
	ColorScale string `json:"color_scale"`
	Bars       []MBar `json:"bars"`
}

// MScatterPoint carries the x/y position plus the size encoding of one symbol.
type MScatterPoint struct {
	Symbol string  `json:"symbol"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Size   float64 `json:"size"`
}

// MScatterChart is a point cloud ready for a scatter renderer.
type MScatterChart struct {
	Title     string          `json:"title"`
	XLabel    string          `json:"x_label"`
	YLabel    string          `json:"y_label"`
	SizeLabel string          `json:"size_label"`
	SizeMax   int             `json:"size_max"`
	Points    []MScatterPoint `json:"points"`
}

// -----------------------------------------------------------------------------
// Panels
// -----------------------------------------------------------------------------

// MBreadth holds the three scalar breadth metrics.
type MBreadth struct {
	Gainers      int     `json:"gainers"`
	Losers       int     `json:"losers"`
	Ratio        float64 `json:"ratio"`
	RatioDisplay string  `json:"ratio_display"`
}

// MBreadthPanel wraps breadth metrics with their render status.
type MBreadthPanel struct {
	Name    string    `json:"name"`
	Label   string    `json:"label"`
	Status  string    `json:"status"`
	Error   string    `json:"error,omitempty"`
	Breadth *MBreadth `json:"breadth,omitempty"`
}

// MChartPanel is one chart slot. A failed panel has no chart data.
type MChartPanel struct {
	Name    string         `json:"name"`
	Status  string         `json:"status"`
	Error   string         `json:"error,omitempty"`
	Bar     *MBarChart     `json:"bar,omitempty"`
	Scatter *MScatterChart `json:"scatter,omitempty"`
}

// MAssetLeaderboard is the trade value leaderboard of one asset type.
type MAssetLeaderboard struct {
	AssetType string    `json:"asset_type"`
	Chart     MBarChart `json:"chart"`
}

// MAssetSection groups the per-asset-type leaderboards.
type MAssetSection struct {
	Title        string              `json:"title"`
	Status       string              `json:"status"`
	Error        string              `json:"error,omitempty"`
	Leaderboards []MAssetLeaderboard `json:"leaderboards"`
}

// MDashboard is the full set of derived outputs of one snapshot.
type MDashboard struct {
	AssetClass     string        `json:"asset_class"`
	Rows           int           `json:"rows"`
	Breadth        MBreadthPanel `json:"breadth"`
	SessionBreadth MBreadthPanel `json:"session_breadth"`
	Panels         []MChartPanel `json:"panels"`
	AssetTypes     MAssetSection `json:"asset_types"`
	Warnings       []string      `json:"warnings,omitempty"`
}

// -----------------------------------------------------------------------------

// Panel returns the chart panel with the given name.
func (d *MDashboard) Panel(name string) (MChartPanel, bool) {
	for _, p := range d.Panels {
		if p.Name == name {
			return p, true
		}
	}
	return MChartPanel{}, false
}

// FailedPanels counts the outputs that could not be rendered.
func (d *MDashboard) FailedPanels() int {
	failed := 0
	if d.Breadth.Status == PanelStatusError {
		failed++
	}
	if d.SessionBreadth.Status == PanelStatusError {
		failed++
	}
	for _, p := range d.Panels {
		if p.Status == PanelStatusError {
			failed++
		}
	}
	if d.AssetTypes.Status == PanelStatusError {
		failed++
	}
	return failed
}
