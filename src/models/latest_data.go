package models

// -----------------------------------------------------------------------------
// Render response
// -----------------------------------------------------------------------------

// MMarketSession describes the exchange session at render time.
type MMarketSession struct {
	MIC        string `json:"mic"`
	TradingDay bool   `json:"trading_day"`
	MarketOpen bool   `json:"market_open"`
}

type MDashboardResponse struct {
	Type          string         `json:"type"` // "DASHBOARD" or "ERROR"
	Dashboard     *MDashboard    `json:"dashboard,omitempty"`
	Session       MMarketSession `json:"session"`
	Timestamp     int64          `json:"timestamp"`
	RenderMetrics MRenderMetrics `json:"render_metrics"`
	Error         string         `json:"error,omitempty"`
}

// -----------------------------------------------------------------------------
// RenderCommand for websocket client messages
// -----------------------------------------------------------------------------

type MRenderCommand struct {
	Command    string `json:"command"`
	AssetClass string `json:"asset_class"`
	Panel      string `json:"panel"`
}
