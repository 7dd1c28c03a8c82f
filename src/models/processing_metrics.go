package models

// MRenderMetrics represents the cost of producing one dashboard.
type MRenderMetrics struct {
	FetchTimeSeconds     float64 `json:"fetch_time_seconds"`
	TransformTimeSeconds float64 `json:"transform_time_seconds"`
	Rows                 int     `json:"rows"`
	FailedPanels         int     `json:"failed_panels"`
	Source               string  `json:"source"`
}
