package attribute

import (
	"sort"

	"github.com/montanaflynn/stats"

	"gosynth/domain/core"
)

// computeDomain derives min, max, step and the category list from the
// resident cells. Strings are measured by length, datetimes by epoch
// seconds; everything else by value.
func (a *Attribute) computeDomain() {
	proj := make([]float64, len(a.cells))
	for i, c := range a.cells {
		proj[i] = c.Float64()
	}
	// cells are never empty here, the constructor guards that
	mn, _ := stats.Min(proj)
	mx, _ := stats.Max(proj)
	a.min = mn
	a.max = mx

	if a.categorical {
		a.cats = distinctSorted(a.cells)
		return
	}
	if a.kind != KindString {
		a.step = (a.max - a.min) / float64(a.binSize)
	}
}

// SetDomain installs a manual domain override and recomputes the
// distribution against it using the resident cells. Non-categorical
// attributes take an ascending [min, max] pair (datetime bounds may be
// calendar strings); categorical attributes take the full category list,
// which is merged with the observed values and zero-filled where unseen.
// Only available while the raw cells are resident.
func (a *Attribute) SetDomain(domain []Value) error {
	if !a.HasRawValues() {
		return core.NewDomainError(a.name, core.ErrNoRawValues)
	}
	if len(domain) == 0 {
		return core.NewDomainError(a.name, core.ErrInvalidDomain)
	}

	norm := make([]Value, len(domain))
	for i, v := range domain {
		nv, err := a.normalizeDomainValue(v)
		if err != nil {
			return core.NewDomainError(a.name, err)
		}
		norm[i] = nv
	}

	if a.categorical {
		a.cats = distinctSorted(norm)
		lo, hi := domainBounds(norm)
		a.min, a.max = lo, hi
		return a.computeDistribution()
	}

	switch a.kind {
	case KindInteger, KindFloat, KindDatetime:
		if len(norm) != 2 {
			return core.NewDomainError(a.name, core.ErrInvalidDomain)
		}
		lo, hi := norm[0].Float64(), norm[1].Float64()
		if hi < lo {
			return core.NewDomainError(a.name, core.ErrInvalidDomain)
		}
		a.min, a.max = lo, hi
		a.step = (a.max - a.min) / float64(a.binSize)
	case KindString:
		// String ranges are length ranges; the histogram still runs over
		// the observed lengths.
		lo, hi := domainBounds(norm)
		a.min, a.max = lo, hi
	default:
		return core.NewDomainError(a.name, core.ErrUnknownKind)
	}
	return a.computeDistribution()
}

// normalizeDomainValue coerces one caller-supplied domain entry to the
// attribute's kind. Datetime entries may arrive as calendar strings;
// numeric entries may arrive as either integer or float cells.
func (a *Attribute) normalizeDomainValue(v Value) (Value, error) {
	if v.IsMissing() {
		return Value{}, core.ErrInvalidDomain
	}
	switch a.kind {
	case KindInteger:
		switch v.Kind {
		case KindInteger:
			return v, nil
		case KindFloat:
			return NewIntegerValue(int64(v.Float())), nil
		}
	case KindFloat:
		switch v.Kind {
		case KindFloat:
			return v, nil
		case KindInteger:
			return NewFloatValue(float64(v.Int())), nil
		}
	case KindString:
		if v.Kind == KindString {
			return v, nil
		}
	case KindDatetime:
		switch v.Kind {
		case KindDatetime:
			return v, nil
		case KindInteger:
			return NewDatetimeValue(v.Int()), nil
		case KindString:
			if t, ok := ParseDatetime(v.Str()); ok {
				return NewDatetimeValue(EpochSeconds(t)), nil
			}
		}
	}
	return Value{}, core.ErrInvalidDomain
}

// domainBounds computes [min, max] over a value list on its numeric axis:
// lengths for strings, epoch seconds for datetimes, values otherwise.
func domainBounds(values []Value) (float64, float64) {
	proj := make([]float64, len(values))
	for i, v := range values {
		proj[i] = v.Float64()
	}
	mn, _ := stats.Min(proj)
	mx, _ := stats.Max(proj)
	return mn, mx
}

// distinctSorted returns the deduplicated values in canonical ascending
// order: the bin order of categorical attributes.
func distinctSorted(cells []Value) []Value {
	seen := make(map[string]bool, len(cells))
	out := make([]Value, 0, len(cells))
	for _, c := range cells {
		if c.IsMissing() {
			continue
		}
		k := c.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
