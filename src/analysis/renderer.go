package analysis

import (
	"context"
	"time"

	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/snapshot"
	"market-dashboard/src/utils"
)

// Response types
const (
	ResponseDashboard = "DASHBOARD"
	ResponseError     = "ERROR"
)

// Renderer is the render pipeline shared by every surface: fetch one raw
// snapshot, validate it, build the dashboard and stamp the market session.
type Renderer struct {
	Provider          interfaces.ISnapshotProvider
	Facade            *DashboardFacade
	Calendar          *utils.TradingCalendar
	DefaultAssetClass string
	Logger            *logger.Logger
	now               func() time.Time
}

// -----------------------------------------------------------------------------

func NewRenderer(cfg *models.MConfig, provider interfaces.ISnapshotProvider, facade *DashboardFacade, calendar *utils.TradingCalendar, log *logger.Logger) *Renderer {
	if log == nil {
		log = logger.NewNop("Renderer")
	}
	r := &Renderer{
		Provider: provider,
		Facade:   facade,
		Calendar: calendar,
		Logger:   log,
		now:      time.Now,
	}
	if cfg != nil {
		r.DefaultAssetClass = cfg.DefaultAssetClass
	}
	if r.DefaultAssetClass == "" {
		r.DefaultAssetClass = "stocks"
	}
	if r.Facade == nil {
		r.Facade = NewDashboardFacade(cfg, log)
	}
	return r
}

// -----------------------------------------------------------------------------

// LoadSnapshot fetches and ingests one snapshot. Provider errors are returned
// as they come, wrapped in helpers.ProviderError by the provider.
func (r *Renderer) LoadSnapshot(ctx context.Context, assetClass string) (*snapshot.Snapshot, error) {
	raw, err := r.Provider.FetchSnapshot(ctx, r.assetClass(assetClass))
	if err != nil {
		return nil, err
	}
	return snapshot.Ingest(raw)
}

// -----------------------------------------------------------------------------

// Render produces the full response for an asset class. An error means no
// dashboard at all; panel failures are reported inside the dashboard.
func (r *Renderer) Render(ctx context.Context, assetClass string) (*models.MDashboardResponse, error) {
	assetClass = r.assetClass(assetClass)

	// 1. Fetch
	fetchStart := time.Now()
	s, err := r.LoadSnapshot(ctx, assetClass)
	if err != nil {
		r.Logger.Error("Render of %s failed: %v", assetClass, err)
		return nil, err
	}
	fetchTime := time.Since(fetchStart)

	// 2. Transform
	transformStart := time.Now()
	dashboard := r.Facade.Build(s)
	transformTime := time.Since(transformStart)

	now := r.now()
	resp := &models.MDashboardResponse{
		Type:      ResponseDashboard,
		Dashboard: dashboard,
		Timestamp: now.Unix(),
		RenderMetrics: models.MRenderMetrics{
			FetchTimeSeconds:     fetchTime.Seconds(),
			TransformTimeSeconds: transformTime.Seconds(),
			Rows:                 dashboard.Rows,
			FailedPanels:         dashboard.FailedPanels(),
			Source:               s.Source,
		},
	}
	if r.Calendar != nil {
		resp.Session = r.Calendar.Session(now)
	}

	r.Logger.Info("Rendered %s from %s: %d rows, %d failed panels in %.3fs",
		assetClass, s.Source, dashboard.Rows, resp.RenderMetrics.FailedPanels, (fetchTime + transformTime).Seconds())
	return resp, nil
}

// -----------------------------------------------------------------------------

// ErrorResponse wraps a render failure for the websocket and page clients.
func (r *Renderer) ErrorResponse(err error) *models.MDashboardResponse {
	return &models.MDashboardResponse{
		Type:      ResponseError,
		Timestamp: r.now().Unix(),
		Error:     err.Error(),
	}
}

// -----------------------------------------------------------------------------

func (r *Renderer) assetClass(assetClass string) string {
	if assetClass == "" {
		return r.DefaultAssetClass
	}
	return assetClass
}
