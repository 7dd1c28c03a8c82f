package datasource

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

// MultiSourceManager tries its sources in configured order and returns the
// first snapshot it gets for the requested asset class.
type MultiSourceManager struct {
	sources []interfaces.ISnapshotProvider
	Logger  *logger.Logger
	mu      sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMultiSourceManager(sources []interfaces.ISnapshotProvider, log *logger.Logger) *MultiSourceManager {
	if log == nil {
		log = logger.NewNop("MultiSourceManager")
	}
	m := &MultiSourceManager{Logger: log}
	for _, s := range sources {
		if err := m.AddSource(s); err != nil {
			log.Warning("%v", err)
		}
	}
	return m
}

// -----------------------------------------------------------------------------

// AddSource appends a source at the lowest priority.
func (m *MultiSourceManager) AddSource(source interfaces.ISnapshotProvider) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := source.Name()
	for _, s := range m.sources {
		if s.Name() == name {
			return fmt.Errorf("source %s already exists", name)
		}
	}

	m.sources = append(m.sources, source)
	m.Logger.Info("Added source: %s", name)
	return nil
}

// -----------------------------------------------------------------------------

// RemoveSource removes a source by name
func (m *MultiSourceManager) RemoveSource(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, s := range m.sources {
		if s.Name() == name {
			m.sources = append(m.sources[:i:i], m.sources[i+1:]...)
			m.Logger.Info("Removed source: %s", name)
			return nil
		}
	}
	return fmt.Errorf("source %s not found", name)
}

// -----------------------------------------------------------------------------

// GetSource retrieves a source by name
func (m *MultiSourceManager) GetSource(name string) (interfaces.ISnapshotProvider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.sources {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("source %s not found", name)
}

// -----------------------------------------------------------------------------

// GetAllSources returns the sources in priority order
func (m *MultiSourceManager) GetAllSources() []interfaces.ISnapshotProvider {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]interfaces.ISnapshotProvider, len(m.sources))
	copy(list, m.sources)
	return list
}

// -----------------------------------------------------------------------------

// Name returns "MultiSourceManager"
func (m *MultiSourceManager) Name() string {
	return "MultiSourceManager"
}

// -----------------------------------------------------------------------------

// Supports reports whether any source serves the asset class.
func (m *MultiSourceManager) Supports(assetClass string) bool {
	for _, s := range m.GetAllSources() {
		if s.Supports(assetClass) {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

// FetchSnapshot walks the sources in order. A failing source is logged and the
// next one is tried; the error of every attempt is kept in the result.
func (m *MultiSourceManager) FetchSnapshot(ctx context.Context, assetClass string) (*models.MRawSnapshot, error) {
	var errs []error

	for _, src := range m.GetAllSources() {
		if !src.Supports(assetClass) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, helpers.NewProviderError(m.Name(), err)
		}

		snap, err := src.FetchSnapshot(ctx, assetClass)
		if err != nil {
			m.Logger.Warning("Source %s failed for %s: %v", src.Name(), assetClass, err)
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}

		if snap.Source == "" {
			snap.Source = src.Name()
		}
		if snap.AssetClass == "" {
			snap.AssetClass = assetClass
		}
		return snap, nil
	}

	if len(errs) == 0 {
		return nil, helpers.NewProviderError(m.Name(), fmt.Errorf("no source serves asset class %q", assetClass))
	}
	return nil, helpers.NewProviderError(m.Name(), errors.Join(errs...))
}

// -----------------------------------------------------------------------------

// SupportsAssetClass is the membership test shared by configured sources. An
// empty list serves every asset class.
func SupportsAssetClass(assetClasses []string, assetClass string) bool {
	if len(assetClasses) == 0 {
		return true
	}
	for _, c := range assetClasses {
		if c == assetClass {
			return true
		}
	}
	return false
}
