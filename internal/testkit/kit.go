package testkit

import (
	"context"
	"math/rand"

	"gosynth/adapters/masking"
	"gosynth/adapters/tabular"
	"gosynth/domain/attribute"
	"gosynth/domain/core"
	"gosynth/domain/dataset"
	"gosynth/ports"
)

// TestKit provides testing utilities and fixtures
type TestKit struct {
	repo *InMemoryPatternSetRepository // Shared repository instance
}

// NewTestKit creates a new test kit instance
func NewTestKit() (*TestKit, error) {
	return &TestKit{repo: NewInMemoryPatternSetRepository()}, nil
}

// PatternSetRepository returns the shared in-memory repository
func (t *TestKit) PatternSetRepository() ports.PatternSetRepository {
	return t.repo
}

// RNGAdapter returns an RNG adapter
func (t *TestKit) RNGAdapter() ports.RNGPort {
	return &RNGAdapter{}
}

// Masker returns a deterministic masker for pseudonymization
func (t *TestKit) Masker() attribute.Masker {
	return masking.NewHashMasker(masking.DefaultMaskLength)
}

// SampleTable returns a small mixed-type table covering every attribute
// kind: unique ids, integers, a binary category, decimals and dates.
func (t *TestKit) SampleTable() *dataset.Table {
	return &dataset.Table{
		Name:    "users",
		Headers: []string{"id", "age", "sex", "amount", "joined"},
		Rows: [][]string{
			{"u1", "23", "M", "10.5", "2020-01-01"},
			{"u2", "31", "F", "20.25", "2020-06-15"},
			{"u3", "23", "F", "30.125", "2020-12-31"},
			{"u4", "45", "M", "10.5", "2020-06-15"},
			{"u5", "52", "F", "", "2020-03-10"},
			{"u6", "23", "M", "20.25", "2020-09-01"},
		},
	}
}

// WriteSampleCSV writes the sample table to path for file-based tests
func (t *TestKit) WriteSampleCSV(path string) error {
	return tabular.Write(t.SampleTable(), path)
}

// RNGAdapter implements the RNGPort interface with in-process seeding
type RNGAdapter struct{}

// SeededStream creates a deterministic random number generator for a named operation
func (r *RNGAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	return rand.New(rand.NewSource(seed)), nil
}

// ColumnStream creates a deterministic RNG stream for a specific run/column
func (r *RNGAdapter) ColumnStream(ctx context.Context, runID core.RunID, column string, baseSeed int64) (*rand.Rand, error) {
	// Create a deterministic seed by hashing runID + column + baseSeed.
	// This ensures identical results for the same run/column combination
	// regardless of synthesis order.
	seed := baseSeed
	if runID != "" {
		seed = int64(hashString(runID.String())) + seed
	}
	if column != "" {
		seed = int64(hashString(column)) + seed
	}
	return rand.New(rand.NewSource(seed)), nil
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}
