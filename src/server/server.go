package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"market-dashboard/src/analysis"
	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// sourceLister is implemented by provider chains that can list their members.
type sourceLister interface {
	GetAllSources() []interfaces.ISnapshotProvider
}

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

type DashboardServer struct {
	Config   *models.MConfig
	Logger   *logger.Logger
	Renderer *analysis.Renderer
	Errors   *helpers.ErrorHandler
	engine   *gin.Engine
	http     *http.Server

	// WebSocket clients
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	connections atomic.Int64
	lastRender  atomic.Int64
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewDashboardServer(cfg *models.MConfig, renderer *analysis.Renderer, log *logger.Logger) *DashboardServer {
	// Set Gin mode
	if gin.Mode() == gin.DebugMode && cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}
	if log == nil {
		log = logger.NewNop("DashboardServer")
	}

	s := &DashboardServer{
		Config:     cfg,
		Logger:     log,
		Renderer:   renderer,
		Errors:     helpers.NewErrorHandler(log),
		engine:     gin.New(),
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}

	s.engine.Use(gin.Recovery(), RequestLogger(log.Zap()), CORS())
	s.setupRoutes()

	go s.handleWebsockets()

	s.http = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: s.engine,
	}
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	// Page
	s.engine.GET("/", s.getPage)

	// REST API endpoints
	api := s.engine.Group("/api")
	api.GET("/dashboard", s.getDashboard)
	api.GET("/dashboard/:panel", s.getPanel)
	api.GET("/health", s.getHealth)
	api.GET("/config", s.getConfig)
	api.GET("/sources", s.getSources)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------

// Handler exposes the router, mainly for tests.
func (s *DashboardServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *DashboardServer) Start() error {
	s.Logger.Info("Starting server on %s", s.http.Addr)

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err = s.http.Shutdown(ctx)
		close(s.done)
		s.Logger.Info("Server stopped")
	})
	return err
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) render(c *gin.Context) (*models.MDashboardResponse, bool) {
	resp, err := s.Renderer.Render(c.Request.Context(), c.Query("asset_class"))
	if err != nil {
		s.Errors.Handle(err, "render")
		c.JSON(statusForError(err), s.Renderer.ErrorResponse(err))
		return nil, false
	}
	s.lastRender.Store(resp.Timestamp)
	return resp, true
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getDashboard(c *gin.Context) {
	resp, ok := s.render(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getPanel(c *gin.Context) {
	name := c.Param("panel")
	if !isPanelName(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown panel %q", name)})
		return
	}

	resp, ok := s.render(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"type":      resp.Type,
		"panel":     panelOf(resp.Dashboard, name),
		"session":   resp.Session,
		"timestamp": resp.Timestamp,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default_asset_class": s.Renderer.DefaultAssetClass,
		"mic":                 s.Config.Market.MIC,
		"charts":              s.Config.Charts,
		"panels":              append(append([]string{analysis.PanelBreadth, analysis.PanelSessionBreadth}, analysis.PanelNames...), analysis.PanelAssetTypes),
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"connections": s.connections.Load(),
		"last_render": s.lastRender.Load(),
		"errors":      s.Errors.ErrorCount(),
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getSources(c *gin.Context) {
	c.JSON(http.StatusOK, SourceNames(s.Renderer.Provider))
}

// -----------------------------------------------------------------------------

// SourceNames lists the provider names in priority order.
func SourceNames(provider interfaces.ISnapshotProvider) []string {
	names := []string{}
	if lister, ok := provider.(sourceLister); ok {
		for _, src := range lister.GetAllSources() {
			names = append(names, src.Name())
		}
		return names
	}
	if provider != nil {
		names = append(names, provider.Name())
	}
	return names
}

// -----------------------------------------------------------------------------

// statusForError maps a render failure to an HTTP status.
func statusForError(err error) int {
	var perr *helpers.ProviderError
	var serr *helpers.StorageError
	switch {
	case errors.As(err, &perr), errors.As(err, &serr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
