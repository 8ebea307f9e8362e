package blob

import (
	"context"
	"io"
)

// Store is the artifact storage abstraction shared by the simulation
// writer and the gate/report readers. Keys are paths relative to the
// store root; simulation results are single JSON documents.
type Store interface {
	Put(ctx context.Context, key string, reader io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// List returns keys carrying the given suffix in lexicographic
	// order. The gate's scan order contract depends on the sorting.
	List(ctx context.Context, suffix string) ([]string, error)
}
