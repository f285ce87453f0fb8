// Package source defines the data provider port and the row parsing shared
// by the tabular backends.
package source

import (
	"context"
	"errors"

	"typhoondash/internal/core"
)

// ErrDataUnavailable is wrapped by every backend failure. Callers never
// receive partial data alongside it.
var ErrDataUnavailable = errors.New("data unavailable")

// Ports for inbound data backends.
type (
	// Loader materializes the full record table.
	Loader interface {
		// Name identifies the backend in logs and metrics.
		Name() string
		// Load returns every record in authored order.
		Load(ctx context.Context) ([]core.YearRecord, error)
	}

	// Closer is implemented by loaders holding resources.
	Closer interface {
		Close() error
	}
)
