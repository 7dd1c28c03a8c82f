package interfaces

// -----------------------------------------------------------------------------
// IDataExchanger is an outward surface (HTTP, gRPC) that renders dashboards
// on request.
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Start serving; blocks until the server stops.
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
