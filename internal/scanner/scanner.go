package scanner

import (
	"context"

	"github.com/lumipallolabs/sweeper/internal/model"
)

// Scanner defines the interface for filesystem scanning
type Scanner interface {
	// Scan scans the given root path and returns a tree of entries
	Scan(ctx context.Context, root string) (*model.Entry, error)
}

// Scan runs the sequential walker
func Scan(ctx context.Context, root string, opts Options) (*model.Entry, error) {
	return NewWalker(opts).Scan(ctx, root)
}

// ScanParallel runs the parallel walker
func ScanParallel(ctx context.Context, root string, opts Options) (*model.Entry, error) {
	return NewParallelWalker(opts).Scan(ctx, root)
}

// Ensure both walkers implement Scanner
var (
	_ Scanner = (*Walker)(nil)
	_ Scanner = (*ParallelWalker)(nil)
)
