package ports

import (
	"context"

	"statatab/domain/table"
)

// ExportRequest describes one dataset export from a live session.
type ExportRequest struct {
	// Variables to export, already deduplicated by the caller.
	Variables []string
	// ValueLabels asks the source to substitute human-readable value labels
	// for coded values where it has them.
	ValueLabels bool
	// MissingVal is the marker to place in cells the source reports as
	// missing, normally table.Missing.
	MissingVal any
}

// Session is a handle to a running external statistical session holding an
// in-memory dataset. Implementations live in adapters; the interop layer
// behind them is a black box to the rest of the system.
type Session interface {
	// ExportData exports the requested variables from the current in-memory
	// dataset as a table, one row per observation.
	ExportData(ctx context.Context, req ExportRequest) (*table.Table, error)
}

// SessionBootstrap initializes the external runtime and returns a usable
// session handle.
type SessionBootstrap interface {
	Initialize(ctx context.Context) (Session, error)
}
