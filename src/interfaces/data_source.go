package interfaces

import (
	"context"
	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// ISnapshotProvider is the only capability the dashboard needs from a market
// data source: one synchronous snapshot per asset class (e.g. "stocks").
// -----------------------------------------------------------------------------

type ISnapshotProvider interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// Supports reports whether the source serves the given asset class.
	Supports(assetClass string) bool

	// -----------------------------------------------------------------------------

	// FetchSnapshot returns the current raw table for the asset class.
	FetchSnapshot(ctx context.Context, assetClass string) (*models.MRawSnapshot, error)
}
