package catalog

import (
	"context"
	"errors"
)

// ErrUnavailable marks transport or upstream failures while reading the
// catalog. Callers must treat it as distinct from an empty candidate set.
var ErrUnavailable = errors.New("catalog unavailable")

// Backend reads candidate price records for a match key. Implementations are
// safe for concurrent use.
type Backend interface {
	// FetchCandidates returns every record whose match keys equal key,
	// regardless of quantity band. An empty slice with a nil error means the
	// catalog was read successfully and simply has no such rows.
	FetchCandidates(ctx context.Context, key MatchKey) ([]PriceRecord, error)

	// Ping verifies the catalog source is reachable.
	Ping(ctx context.Context) error
}
