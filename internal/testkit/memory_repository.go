package testkit

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gosynth/domain/attribute"
	"gosynth/domain/core"
	"gosynth/domain/dataset"
	"gosynth/ports"
)

// InMemoryPatternSetRepository keeps pattern sets in process memory. It
// backs tests and lets the server run without a database.
type InMemoryPatternSetRepository struct {
	mu   sync.RWMutex
	sets map[core.PatternSetID]*dataset.PatternSet
}

var _ ports.PatternSetRepository = (*InMemoryPatternSetRepository)(nil)

// NewInMemoryPatternSetRepository creates an empty in-memory repository
func NewInMemoryPatternSetRepository() *InMemoryPatternSetRepository {
	return &InMemoryPatternSetRepository{
		sets: make(map[core.PatternSetID]*dataset.PatternSet),
	}
}

// Save stores a pattern set, replacing any existing record with the same ID
func (r *InMemoryPatternSetRepository) Save(ctx context.Context, ps *dataset.PatternSet) error {
	if ps == nil {
		return core.NewValidationError("pattern_set", "pattern set is required")
	}
	if err := ps.Validate(); err != nil {
		return fmt.Errorf("failed to save pattern set: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets[ps.ID] = copyPatternSet(ps)
	return nil
}

// GetByID loads one stored pattern set
func (r *InMemoryPatternSetRepository) GetByID(ctx context.Context, id core.PatternSetID) (*dataset.PatternSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ps, ok := r.sets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrPatternSetNotFound, id)
	}
	return copyPatternSet(ps), nil
}

// List returns stored pattern sets newest first
func (r *InMemoryPatternSetRepository) List(ctx context.Context, limit, offset int) ([]ports.PatternSetSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*dataset.PatternSet, 0, len(r.sets))
	for _, ps := range r.sets {
		all = append(all, ps)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Time().Equal(all[j].CreatedAt.Time()) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []ports.PatternSetSummary{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	summaries := make([]ports.PatternSetSummary, 0, end-offset)
	for _, ps := range all[offset:end] {
		summaries = append(summaries, ports.PatternSetSummary{
			ID:          ps.ID,
			Name:        ps.Name,
			Columns:     len(ps.Patterns),
			Fingerprint: ps.Fingerprint,
			CreatedAt:   ps.CreatedAt,
		})
	}
	return summaries, nil
}

// Delete removes a stored pattern set
func (r *InMemoryPatternSetRepository) Delete(ctx context.Context, id core.PatternSetID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sets[id]; !ok {
		return fmt.Errorf("%w: %s", core.ErrPatternSetNotFound, id)
	}
	delete(r.sets, id)
	return nil
}

// copyPatternSet clones a pattern set so callers cannot mutate stored state
func copyPatternSet(ps *dataset.PatternSet) *dataset.PatternSet {
	cp := *ps
	cp.Patterns = append([]attribute.Pattern(nil), ps.Patterns...)
	return &cp
}
