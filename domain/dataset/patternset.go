package dataset

import (
	"encoding/json"
	"fmt"

	"gosynth/domain/attribute"
	"gosynth/domain/core"
)

// PatternSet is the portable form of a dataset: one pattern per column in
// source order, fingerprinted for replayability. It is what repositories
// store and what synthesis can run from without the raw data.
type PatternSet struct {
	ID          core.PatternSetID   `json:"id"`
	Name        string              `json:"name"`
	Patterns    []attribute.Pattern `json:"patterns"`
	Fingerprint core.Hash           `json:"fingerprint"`
	CreatedAt   core.Timestamp      `json:"created_at"`
}

// NewPatternSet assembles and fingerprints a pattern set. The fingerprint
// covers the patterns only, so the same learned state always fingerprints
// the same regardless of when or under what ID it was stored.
func NewPatternSet(name string, patterns []attribute.Pattern) (*PatternSet, error) {
	ps := &PatternSet{
		ID:        core.PatternSetID(core.NewID()),
		Name:      name,
		Patterns:  patterns,
		CreatedAt: core.Now(),
	}
	if err := ps.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(patterns)
	if err != nil {
		return nil, fmt.Errorf("fingerprint pattern set: %w", err)
	}
	ps.Fingerprint = core.NewHash(data)
	return ps, nil
}

// Validate ensures the set is storable: named, non-empty, with unique
// column names.
func (ps *PatternSet) Validate() error {
	if ps.Name == "" {
		return core.NewValidationError("name", "pattern set name is empty")
	}
	if len(ps.Patterns) == 0 {
		return core.NewValidationError("patterns", "pattern set has no columns")
	}
	seen := make(map[string]bool, len(ps.Patterns))
	for _, p := range ps.Patterns {
		if p.Name == "" {
			return core.NewValidationError("patterns", "pattern with empty column name")
		}
		if seen[p.Name] {
			return core.NewValidationError("patterns", fmt.Sprintf("duplicate column %q", p.Name))
		}
		seen[p.Name] = true
	}
	return nil
}

// Pattern returns the pattern for a named column.
func (ps *PatternSet) Pattern(name string) (attribute.Pattern, bool) {
	for _, p := range ps.Patterns {
		if p.Name == name {
			return p, true
		}
	}
	return attribute.Pattern{}, false
}

// ColumnNames returns the column names in stored order.
func (ps *PatternSet) ColumnNames() []string {
	out := make([]string, len(ps.Patterns))
	for i, p := range ps.Patterns {
		out[i] = p.Name
	}
	return out
}

// ToPatternSet exports the dataset's learned state under the given name.
func (d *Dataset) ToPatternSet(name string) (*PatternSet, error) {
	patterns := make([]attribute.Pattern, len(d.order))
	for i, column := range d.order {
		patterns[i] = d.columns[column].ToPattern()
	}
	if name == "" {
		name = d.name
	}
	return NewPatternSet(name, patterns)
}

// FromPatternSet reconstructs a dataset from stored patterns. The result
// carries no raw cells: synthesis by distribution works, operations that
// re-read source data do not.
func FromPatternSet(ps *PatternSet) (*Dataset, error) {
	if ps == nil {
		return nil, core.NewValidationError("patterns", "pattern set is nil")
	}
	if err := ps.Validate(); err != nil {
		return nil, err
	}

	d := &Dataset{
		name:    ps.Name,
		order:   ps.ColumnNames(),
		columns: make(map[string]*attribute.Attribute, len(ps.Patterns)),
	}
	for _, p := range ps.Patterns {
		a, err := attribute.FromPattern(p)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", p.Name, err)
		}
		d.columns[p.Name] = a
	}
	return d, nil
}
