package ports

import (
	"context"

	"gosynth/domain/dataset"
)

// TableReaderPort provides read-only access to tabular source files
// This keeps file-format parsing outside the modeling domain
type TableReaderPort interface {
	// Read loads one table from a source path, header row first
	Read(ctx context.Context, path string) (*dataset.Table, error)

	// Supports reports whether this reader handles the given path
	Supports(path string) bool
}
