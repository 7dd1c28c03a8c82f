package interfaces

import (
	"context"
	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// ISnapshotStore is a database that holds the latest raw snapshot per asset
// class. It doubles as a snapshot provider.
// -----------------------------------------------------------------------------

type ISnapshotStore interface {
	ISnapshotProvider

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveSnapshot replaces the stored rows of the snapshot's asset class.
	SaveSnapshot(ctx context.Context, snapshot *models.MRawSnapshot) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
