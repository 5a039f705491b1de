package attribute

import (
	"math"
	"strconv"
	"strings"

	"gosynth/domain/core"
)

// Series is a named, ordered sequence of cells: the raw-data side of an
// attribute before any pattern is attached. It wraps a plain []Value, it
// is not a statistical object itself.
type Series struct {
	name  string
	cells []Value
}

// NewSeries creates a series from already-typed cells.
func NewSeries(name string, cells []Value) Series {
	copied := make([]Value, len(cells))
	copy(copied, cells)
	return Series{name: name, cells: copied}
}

// SeriesFromStrings parses a raw text column, one cell per entry, into a
// typed series. Integers and floats are recognized by their native
// representations; empty cells and the usual missing markers become
// missing values; everything else stays a string.
func SeriesFromStrings(name string, raw []string) Series {
	cells := make([]Value, len(raw))
	for i, r := range raw {
		cells[i] = ParseCell(r)
	}
	return Series{name: name, cells: cells}
}

// missingMarkers are the raw spellings treated as absent values, matching
// common tabular-export conventions.
var missingMarkers = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
}

// ParseCell converts one raw text cell into a typed Value.
func ParseCell(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	if missingMarkers[strings.ToLower(trimmed)] {
		return NewMissingValue()
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return NewIntegerValue(i)
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		if !math.IsNaN(f) && !math.IsInf(f, 0) {
			return NewFloatValue(f)
		}
	}
	return NewStringValue(trimmed)
}

// Name returns the column name.
func (s Series) Name() string {
	return s.name
}

// Len returns the number of cells, missing included.
func (s Series) Len() int {
	return len(s.cells)
}

// Cells returns a copy of the underlying cells.
func (s Series) Cells() []Value {
	copied := make([]Value, len(s.cells))
	copy(copied, s.cells)
	return copied
}

// observedCount returns the number of non-missing cells.
func (s Series) observedCount() int {
	n := 0
	for _, c := range s.cells {
		if !c.IsMissing() {
			n++
		}
	}
	return n
}

// mode returns the most frequent non-missing cell. Ties break toward the
// smallest value so imputation stays deterministic.
func mode(cells []Value) (Value, error) {
	tally := make(map[string]int)
	rep := make(map[string]Value)
	for _, c := range cells {
		if c.IsMissing() {
			continue
		}
		k := c.key()
		tally[k]++
		rep[k] = c
	}
	if len(tally) == 0 {
		return Value{}, core.ErrEmptyColumn
	}

	var best Value
	bestCount := -1
	for k, n := range tally {
		v := rep[k]
		if n > bestCount || (n == bestCount && v.Less(best)) {
			best = v
			bestCount = n
		}
	}
	return best, nil
}

// imputeCells returns a new sequence with every missing cell replaced by
// the fill value. The input is left untouched.
func imputeCells(cells []Value, fill Value) []Value {
	out := make([]Value, len(cells))
	for i, c := range cells {
		if c.IsMissing() {
			out[i] = fill
		} else {
			out[i] = c
		}
	}
	return out
}

// normalizeCells returns a new sequence in which every non-missing cell is
// re-tagged to the column's inferred kind: integers widen to floats for
// float columns, everything stringifies for string columns, and calendar
// strings collapse to epoch seconds for datetime columns. Missing cells
// pass through unchanged.
func normalizeCells(cells []Value, kind Kind) ([]Value, error) {
	out := make([]Value, len(cells))
	for i, c := range cells {
		if c.IsMissing() {
			out[i] = c
			continue
		}
		switch kind {
		case KindInteger:
			if c.Kind != KindInteger {
				return nil, core.NewValidationError("cells", "non-integer cell in integer column")
			}
			out[i] = c
		case KindFloat:
			switch c.Kind {
			case KindInteger:
				out[i] = NewFloatValue(float64(c.Int()))
			case KindFloat:
				out[i] = c
			default:
				return nil, core.NewValidationError("cells", "non-numeric cell in float column")
			}
		case KindString:
			out[i] = NewStringValue(c.String())
		case KindDatetime:
			if c.Kind != KindString {
				return nil, core.NewValidationError("cells", "non-text cell in datetime column")
			}
			t, ok := ParseDatetime(c.Str())
			if !ok {
				return nil, core.NewValidationError("cells", "unparseable datetime cell "+strconv.Quote(c.Str()))
			}
			out[i] = NewDatetimeValue(EpochSeconds(t))
		default:
			return nil, core.ErrUnknownKind
		}
	}
	return out, nil
}

// hasDuplicates reports whether any non-missing value occurs more than
// once.
func hasDuplicates(cells []Value) bool {
	seen := make(map[string]bool, len(cells))
	for _, c := range cells {
		if c.IsMissing() {
			continue
		}
		k := c.key()
		if seen[k] {
			return true
		}
		seen[k] = true
	}
	return false
}
