package registry

import (
	"context"
	"fmt"

	datasource "market-dashboard/src/data_source"
	"market-dashboard/src/data_source/csvfile"
	"market-dashboard/src/data_source/httpapi"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/models"
)

// Source types accepted in data_source.sources[].type
const (
	TypeHTTP     = "http"
	TypeCSV      = "csv"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// -----------------------------------------------------------------------------

// NewSource builds the provider described by one source entry. Database
// sources read from store, which must match the configured storage.db_type.
func NewSource(cfg *models.MConfig, sourceCfg models.MSourceConfig, netMgr interfaces.INetworkManager, store interfaces.ISnapshotStore) (interfaces.ISnapshotProvider, error) {
	switch sourceCfg.Type {
	case TypeHTTP:
		if netMgr == nil {
			return nil, fmt.Errorf("source %s: http sources need a network manager", sourceCfg.Name)
		}
		return httpapi.NewHTTPSource(cfg, sourceCfg, netMgr), nil

	case TypeCSV:
		return csvfile.NewCSVSource(cfg, sourceCfg), nil

	case TypeSQLite, TypePostgres:
		if store == nil {
			return nil, fmt.Errorf("source %s: no %s store configured", sourceCfg.Name, sourceCfg.Type)
		}
		if store.Name() != sourceCfg.Type {
			return nil, fmt.Errorf("source %s: storage is %s, not %s", sourceCfg.Name, store.Name(), sourceCfg.Type)
		}
		return &StoreSource{SourceConfig: sourceCfg, Store: store}, nil

	default:
		return nil, fmt.Errorf("source %s: unsupported type %q", sourceCfg.Name, sourceCfg.Type)
	}
}

// -----------------------------------------------------------------------------

// StoreSource serves snapshots previously imported into the database under
// the name and asset classes of its source entry.
type StoreSource struct {
	SourceConfig models.MSourceConfig
	Store        interfaces.ISnapshotStore
}

func (s *StoreSource) Name() string {
	return s.SourceConfig.Name
}

func (s *StoreSource) Supports(assetClass string) bool {
	return datasource.SupportsAssetClass(s.SourceConfig.AssetClasses, assetClass)
}

func (s *StoreSource) FetchSnapshot(ctx context.Context, assetClass string) (*models.MRawSnapshot, error) {
	snap, err := s.Store.FetchSnapshot(ctx, assetClass)
	if err != nil {
		return nil, err
	}
	snap.Source = s.Name()
	return snap, nil
}
