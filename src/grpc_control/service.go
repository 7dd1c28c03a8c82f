package grpc_control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"market-dashboard/src/analysis"
	"market-dashboard/src/config"
	datasource "market-dashboard/src/data_source"
	"market-dashboard/src/data_source/registry"
	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ControlService implements DashboardControlServer
type ControlService struct {
	Config         *config.Config
	Renderer       *analysis.Renderer
	DataSource     *datasource.MultiSourceManager
	ConfigPath     string
	Logger         *logger.Logger
	NetworkManager interfaces.INetworkManager
	Store          interfaces.ISnapshotStore

	// mu guards Config.DataSource.Sources and keeps it in step with DataSource
	mu sync.Mutex
}

// NewControlService creates a new instance of ControlService
func NewControlService(
	cfg *config.Config,
	renderer *analysis.Renderer,
	ds *datasource.MultiSourceManager,
	cfgPath string,
	log *logger.Logger,
	netMgr interfaces.INetworkManager,
	store interfaces.ISnapshotStore,
) *ControlService {
	if log == nil {
		log = logger.NewNop("ControlService")
	}
	return &ControlService{
		Config:         cfg,
		Renderer:       renderer,
		DataSource:     ds,
		ConfigPath:     cfgPath,
		Logger:         log,
		NetworkManager: netMgr,
		Store:          store,
	}
}

// -----------------------------------------------------------------------------

// RenderDashboard renders the asset class named in the request (empty means
// the default) and returns the JSON response as a Struct.
func (s *ControlService) RenderDashboard(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	resp, err := s.Renderer.Render(ctx, req.GetValue())
	if err != nil {
		return nil, statusFromError(err)
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "marshal dashboard: %v", err)
	}

	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Errorf(codes.Internal, "convert dashboard: %v", err)
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) ListSources(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error) {
	s.mu.Lock()
	configured := make(map[string]models.MSourceConfig)
	for _, src := range s.Config.DataSource.Sources {
		configured[src.Name] = src
	}
	sources := s.DataSource.GetAllSources()
	s.mu.Unlock()

	var response []interface{}
	for i, src := range sources {
		entry := map[string]interface{}{
			"name":     src.Name(),
			"priority": i,
			"type":     "unknown",
		}
		if cfg, ok := configured[src.Name()]; ok {
			entry["type"] = cfg.Type
			classes := make([]interface{}, 0, len(cfg.AssetClasses))
			for _, c := range cfg.AssetClasses {
				classes = append(classes, c)
			}
			entry["asset_classes"] = classes
		}
		response = append(response, entry)
	}

	list, err := structpb.NewList(response)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build source list: %v", err)
	}
	return list, nil
}

// -----------------------------------------------------------------------------

// AddSource registers a new lowest-priority source and persists it to the
// config file. Fields: name, type, url, path, api_key, asset_classes.
func (s *ControlService) AddSource(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sourceCfg := sourceFromStruct(req)
	if sourceCfg.Name == "" || sourceCfg.Type == "" {
		return nil, status.Error(codes.InvalidArgument, "name and type are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Check if exists
	if _, err := s.DataSource.GetSource(sourceCfg.Name); err == nil {
		return nil, status.Errorf(codes.AlreadyExists, "source %s already exists", sourceCfg.Name)
	}

	// Validate against the whole config before touching the manager
	previous := s.Config.DataSource.Sources
	s.Config.DataSource.Sources = append(append([]models.MSourceConfig{}, previous...), sourceCfg)
	if err := s.Config.Validate(); err != nil {
		s.Config.DataSource.Sources = previous
		return nil, status.Errorf(codes.InvalidArgument, "invalid source: %v", err)
	}

	newSource, err := registry.NewSource(s.Config.MConfig, sourceCfg, s.NetworkManager, s.Store)
	if err != nil {
		s.Config.DataSource.Sources = previous
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	if err := s.DataSource.AddSource(newSource); err != nil {
		s.Config.DataSource.Sources = previous
		s.Logger.Error("Failed to add source: %v", err)
		return controlResult(false, fmt.Sprintf("Failed to add source: %v", err)), nil
	}

	s.persist()
	return controlResult(true, fmt.Sprintf("Added source %s", sourceCfg.Name)), nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) RemoveSource(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	name := req.GetValue()
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.DataSource.RemoveSource(name); err != nil {
		return controlResult(false, fmt.Sprintf("Failed to remove source: %v", err)), nil
	}

	// Clean from Config
	newSources := []models.MSourceConfig{}
	for _, src := range s.Config.DataSource.Sources {
		if src.Name != name {
			newSources = append(newSources, src)
		}
	}
	s.Config.DataSource.Sources = newSources
	s.persist()

	return controlResult(true, fmt.Sprintf("Removed source %s", name)), nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) Health(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	health := map[string]interface{}{
		"status":              "ok",
		"sources":             len(s.DataSource.GetAllSources()),
		"default_asset_class": s.Renderer.DefaultAssetClass,
	}
	if s.Renderer.Calendar != nil {
		health["mic"] = s.Renderer.Calendar.MIC
	}

	out, err := structpb.NewStruct(health)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build health: %v", err)
	}
	return out, nil
}

// -----------------------------------------------------------------------------

// persist saves the config; callers hold mu.
func (s *ControlService) persist() {
	if s.ConfigPath == "" {
		return
	}
	if err := s.Config.Save(s.ConfigPath); err != nil {
		s.Logger.Error("gRPC: failed to save config: %v", err)
	}
}

// -----------------------------------------------------------------------------

func sourceFromStruct(req *structpb.Struct) models.MSourceConfig {
	fields := req.GetFields()
	str := func(key string) string {
		return fields[key].GetStringValue()
	}

	cfg := models.MSourceConfig{
		Name:   str("name"),
		Type:   str("type"),
		URL:    str("url"),
		Path:   str("path"),
		APIKey: str("api_key"),
	}
	for _, v := range fields["asset_classes"].GetListValue().GetValues() {
		if c := v.GetStringValue(); c != "" {
			cfg.AssetClasses = append(cfg.AssetClasses, c)
		}
	}
	return cfg
}

// -----------------------------------------------------------------------------

func controlResult(success bool, message string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"success": structpb.NewBoolValue(success),
		"message": structpb.NewStringValue(message),
	}}
}

// -----------------------------------------------------------------------------

// statusFromError maps render failures to gRPC codes.
func statusFromError(err error) error {
	var perr *helpers.ProviderError
	var serr *helpers.StorageError
	switch {
	case errors.As(err, &perr), errors.As(err, &serr):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
