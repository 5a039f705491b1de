package ports

import (
	"context"
	"math/rand"

	"gosynth/domain/core"
)

// RNGPort provides seeded random number generation for deterministic synthesis
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// ColumnStream creates a deterministic RNG stream scoped to one column of one run
	// This ensures per-column synthesis produces identical results for the same run
	// regardless of execution order
	ColumnStream(ctx context.Context, runID core.RunID, column string, baseSeed int64) (*rand.Rand, error)
}
