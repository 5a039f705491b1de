package attribute

import (
	"gosynth/domain/core"
)

// DefaultBinSize is the histogram resolution for non-categorical
// attributes: the domain [min, max] is split into this many equal-width
// bins unless the caller overrides it.
const DefaultBinSize = 20

// PatternState is the one-shot latch guarding pattern computation. It
// moves from Unset to Computed exactly once, on the first computation from
// data or the first install of a serialized pattern, and never back.
type PatternState int

const (
	PatternUnset PatternState = iota
	PatternComputed
)

// String returns a readable label for the state.
func (s PatternState) String() string {
	if s == PatternComputed {
		return "computed"
	}
	return "unset"
}

// Options control pattern computation for an attribute built from data.
type Options struct {
	// Categorical forces the categorical flag. False leaves detection to
	// the column itself: string columns with repeated values qualify.
	Categorical bool
	// BinSize overrides the histogram resolution; 0 means DefaultBinSize.
	BinSize int
}

// ============================================================================
// ATTRIBUTE
// ============================================================================

// Attribute is one column's values plus its learned statistical pattern:
// a kind, a categorical flag, a domain, and a discretized probability
// distribution over that domain. It exists in two modes: built from raw
// data (cells resident, full API available) or restored from a serialized
// Pattern (no cells; encoding and synthesis still work, operations that
// re-read raw data do not).
type Attribute struct {
	name        string
	kind        Kind
	categorical bool
	state       PatternState
	binSize     int

	// Domain. For string attributes min/max bound the value lengths; for
	// datetime they are epoch seconds.
	min      float64
	max      float64
	step     float64
	decimals int // float kind only

	// Distribution. Non-categorical attributes hold equal-width histogram
	// left edges in bins; categorical attributes hold their sorted
	// category values in cats. prs and counts align with whichever is set.
	bins     []float64
	cats     []Value
	catIndex map[string]int
	prs      []float64
	counts   []float64

	// Resident normalized cells, data mode only.
	cells []Value
}

// New builds an attribute from raw data and computes its pattern once:
// kind inference, mode imputation of missing cells, domain and
// distribution. The returned attribute is in the Computed state.
func New(s Series, opts Options) (*Attribute, error) {
	binSize := opts.BinSize
	if binSize <= 0 {
		binSize = DefaultBinSize
	}
	if s.observedCount() == 0 {
		// No mode exists for an all-missing column; unsupported input.
		return nil, core.NewDomainError(s.Name(), core.ErrEmptyColumn)
	}

	kind := InferKind(s.cells)
	norm, err := normalizeCells(s.cells, kind)
	if err != nil {
		return nil, core.NewDomainError(s.Name(), err)
	}
	fill, err := mode(norm)
	if err != nil {
		return nil, core.NewDomainError(s.Name(), err)
	}
	filled := imputeCells(norm, fill)

	a := &Attribute{
		name:    s.Name(),
		kind:    kind,
		binSize: binSize,
		cells:   filled,
	}
	if kind == KindFloat {
		a.decimals = decimalPlaces(filled)
	}
	a.categorical = inferCategorical(kind, filled, opts.Categorical)
	a.computeDomain()
	if err := a.computeDistribution(); err != nil {
		return nil, core.NewDomainError(s.Name(), err)
	}
	a.state = PatternComputed
	return a, nil
}

// MustNew builds an attribute and panics on failure. Intended for tests.
func MustNew(s Series, opts Options) *Attribute {
	a, err := New(s, opts)
	if err != nil {
		panic(err)
	}
	return a
}

// ============================================================================
// ACCESSORS
// ============================================================================

// Name returns the column name.
func (a *Attribute) Name() string { return a.name }

// Kind returns the inferred or restored value kind.
func (a *Attribute) Kind() Kind { return a.kind }

// IsCategorical reports whether the attribute models a fixed value set
// rather than a continuous range.
func (a *Attribute) IsCategorical() bool { return a.categorical }

// State returns the pattern latch state.
func (a *Attribute) State() PatternState { return a.state }

// BinSize returns the histogram resolution for non-categorical attributes.
func (a *Attribute) BinSize() int { return a.binSize }

// Min returns the lower domain bound: a value for numeric kinds, a length
// for strings, epoch seconds for datetimes.
func (a *Attribute) Min() float64 { return a.min }

// Max returns the upper domain bound, on the same axis as Min.
func (a *Attribute) Max() float64 { return a.max }

// Decimals returns the rounding precision learned for float attributes.
func (a *Attribute) Decimals() int { return a.decimals }

// Size returns the number of resident cells; zero in pattern-only mode.
func (a *Attribute) Size() int { return len(a.cells) }

// HasRawValues reports whether the attribute still holds its source cells.
func (a *Attribute) HasRawValues() bool { return len(a.cells) > 0 }

// Values returns a copy of the resident normalized cells.
func (a *Attribute) Values() []Value {
	out := make([]Value, len(a.cells))
	copy(out, a.cells)
	return out
}

// Bins returns a copy of the histogram left edges. Empty for categorical
// attributes.
func (a *Attribute) Bins() []float64 {
	out := make([]float64, len(a.bins))
	copy(out, a.bins)
	return out
}

// Categories returns a copy of the category values in bin order. Empty
// for non-categorical attributes.
func (a *Attribute) Categories() []Value {
	out := make([]Value, len(a.cats))
	copy(out, a.cats)
	return out
}

// Probabilities returns a copy of the per-bin probability mass.
func (a *Attribute) Probabilities() []float64 {
	out := make([]float64, len(a.prs))
	copy(out, a.prs)
	return out
}

// Counts returns a copy of the raw per-bin counts. Nil when the attribute
// was restored from a pattern, which carries probabilities only.
func (a *Attribute) Counts() []float64 {
	if a.counts == nil {
		return nil
	}
	out := make([]float64, len(a.counts))
	copy(out, a.counts)
	return out
}

// NumBins returns the number of distribution slots, categorical or not.
func (a *Attribute) NumBins() int {
	if a.categorical {
		return len(a.cats)
	}
	return len(a.bins)
}

// Domain returns the attribute's domain: the category list for
// categorical attributes, otherwise the [min, max] pair expressed in the
// attribute's kind (lengths for strings, epoch seconds for datetimes).
func (a *Attribute) Domain() []Value {
	if a.categorical {
		return a.Categories()
	}
	switch a.kind {
	case KindInteger:
		return []Value{NewIntegerValue(int64(a.min)), NewIntegerValue(int64(a.max))}
	case KindFloat:
		return []Value{NewFloatValue(a.min), NewFloatValue(a.max)}
	case KindString:
		return []Value{NewIntegerValue(int64(a.min)), NewIntegerValue(int64(a.max))}
	case KindDatetime:
		return []Value{NewDatetimeValue(int64(a.min)), NewDatetimeValue(int64(a.max))}
	}
	return nil
}
