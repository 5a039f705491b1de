package ports

import (
	"context"

	"gosynth/domain/core"
	"gosynth/domain/dataset"
)

// PatternSetRepository defines the interface for pattern set storage operations
type PatternSetRepository interface {
	// Save stores a pattern set, replacing any existing record with the same ID
	Save(ctx context.Context, ps *dataset.PatternSet) error

	// GetByID loads one stored pattern set
	GetByID(ctx context.Context, id core.PatternSetID) (*dataset.PatternSet, error)

	// List returns stored pattern sets newest first
	List(ctx context.Context, limit, offset int) ([]PatternSetSummary, error)

	// Delete removes a stored pattern set
	Delete(ctx context.Context, id core.PatternSetID) error
}

// PatternSetSummary is the read model for pattern set listings
type PatternSetSummary struct {
	ID          core.PatternSetID
	Name        string
	Columns     int
	Fingerprint core.Hash
	CreatedAt   core.Timestamp
}
