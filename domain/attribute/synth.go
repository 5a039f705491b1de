package attribute

import (
	"math"
	"math/rand"
	"sort"

	"gosynth/domain/core"
)

// Masker supplies the string primitives synthesis depends on: a
// deterministic one-way mask for pseudonymization and a random string
// generator for string-kind output. Implementations live in
// adapters/masking.
type Masker interface {
	Mask(value string) string
	RandString(r *rand.Rand, length int) string
}

// ============================================================================
// SYNTHESIS
// ============================================================================

// Random synthesizes size values uniformly across the domain, ignoring the
// learned distribution: an evenly spaced sweep over [min, max], shuffled.
// String attributes instead draw one length from [min, max) and emit
// random strings of that length. A size of 0 falls back to the resident
// column size.
func (a *Attribute) Random(r *rand.Rand, size int, masker Masker) ([]Value, error) {
	size, err := a.resolveSize(size)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, core.NewDomainError(a.name, core.ErrNilStream)
	}

	if a.kind == KindString {
		if masker == nil {
			return nil, core.NewDomainError(a.name, core.ErrNilMasker)
		}
		length := int(a.min)
		if a.min != a.max {
			length = r.Intn(int(a.max)-int(a.min)) + int(a.min)
		}
		out := make([]Value, size)
		for i := range out {
			out[i] = NewStringValue(masker.RandString(r, length))
		}
		return out, nil
	}

	sweep := make([]float64, size)
	if a.min == a.max {
		for i := range sweep {
			sweep[i] = a.min
		}
	} else {
		width := (a.max - a.min) / float64(size)
		for i := range sweep {
			sweep[i] = a.min + float64(i)*width
		}
	}
	r.Shuffle(len(sweep), func(i, j int) { sweep[i], sweep[j] = sweep[j], sweep[i] })

	out := make([]Value, size)
	for i, v := range sweep {
		switch a.kind {
		case KindInteger:
			out[i] = NewIntegerValue(int64(v))
		case KindFloat:
			out[i] = NewFloatValue(v)
		case KindDatetime:
			out[i] = NewDatetimeValue(int64(v))
		case KindString:
			// handled above
		}
	}
	return out, nil
}

// Choice synthesizes size values weighted by the learned distribution:
// draw a bin by probability mass, then a value uniformly within the bin.
// Categorical attributes return the category itself. A size of 0 falls
// back to the resident column size.
func (a *Attribute) Choice(r *rand.Rand, size int, masker Masker) ([]Value, error) {
	size, err := a.resolveSize(size)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, core.NewDomainError(a.name, core.ErrNilStream)
	}
	indexes, err := a.drawIndexes(r, size)
	if err != nil {
		return nil, err
	}
	return a.materialize(r, indexes, masker)
}

// ChoiceAt synthesizes at externally supplied bin indices, letting a
// larger pipeline reuse one index draw across attributes.
func (a *Attribute) ChoiceAt(r *rand.Rand, indexes []int, masker Masker) ([]Value, error) {
	if r == nil {
		return nil, core.NewDomainError(a.name, core.ErrNilStream)
	}
	for _, idx := range indexes {
		if idx < 0 || idx >= a.NumBins() {
			return nil, core.NewValidationError("indexes", "bin index out of range")
		}
	}
	return a.materialize(r, indexes, masker)
}

// Pseudonymize produces deterministically masked values. Categorical
// attributes mask each category; everything else masks each value's
// display form. Asking for a size different from the resident column
// first resamples that many values weighted by the distribution, so
// masking and up/down-sampling compose. The masker is deterministic, so
// equal source values always yield equal masks.
func (a *Attribute) Pseudonymize(r *rand.Rand, size int, masker Masker) ([]string, error) {
	if masker == nil {
		return nil, core.NewDomainError(a.name, core.ErrNilMasker)
	}
	size, err := a.resolveSize(size)
	if err != nil {
		return nil, err
	}

	var source []Value
	if a.HasRawValues() && size == len(a.cells) {
		source = a.cells
	} else {
		if r == nil {
			return nil, core.NewDomainError(a.name, core.ErrNilStream)
		}
		indexes, derr := a.drawIndexes(r, size)
		if derr != nil {
			return nil, derr
		}
		source = make([]Value, len(indexes))
		for i, idx := range indexes {
			switch {
			case a.categorical:
				source[i] = a.cats[idx]
			case a.kind == KindInteger:
				source[i] = NewIntegerValue(int64(a.bins[idx]))
			case a.kind == KindDatetime:
				source[i] = NewDatetimeValue(int64(a.bins[idx]))
			default:
				source[i] = NewFloatValue(a.bins[idx])
			}
		}
	}

	out := make([]string, len(source))
	for i, v := range source {
		out[i] = masker.Mask(v.String())
	}
	return out, nil
}

// ============================================================================
// SAMPLING INTERNALS
// ============================================================================

// resolveSize substitutes the resident column size for a non-positive
// request.
func (a *Attribute) resolveSize(size int) (int, error) {
	if size > 0 {
		return size, nil
	}
	if a.HasRawValues() {
		return len(a.cells), nil
	}
	return 0, core.NewDomainError(a.name, core.ErrInvalidSize)
}

// drawIndexes draws bin indices according to the probability mass.
func (a *Attribute) drawIndexes(r *rand.Rand, size int) ([]int, error) {
	n := a.NumBins()
	cum := make([]float64, n)
	total := 0.0
	for i := 0; i < n; i++ {
		total += a.prs[i]
		cum[i] = total
	}
	if total <= 0 {
		return nil, core.NewDomainError(a.name, core.ErrZeroMass)
	}

	out := make([]int, size)
	for i := range out {
		u := r.Float64() * total
		idx := sort.SearchFloat64s(cum, u)
		if idx >= n {
			idx = n - 1
		}
		out[i] = idx
	}
	return out, nil
}

// sampleAt draws one raw value from bin idx: the category itself for
// categorical attributes, otherwise uniform between the bin's edge and the
// next (the last bin runs to max).
func (a *Attribute) sampleAt(r *rand.Rand, idx int) float64 {
	if idx < len(a.bins)-1 {
		return uniformBetween(r, a.bins[idx], a.bins[idx+1])
	}
	return uniformBetween(r, a.bins[len(a.bins)-1], a.max)
}

func uniformBetween(r *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + r.Float64()*(hi-lo)
}

// clampFloat pins v inside [lo, hi]. Degenerate domains widen their
// histogram range, so a raw sample can land slightly outside the declared
// bounds.
func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// materialize converts drawn bin indices to kind-typed output values.
func (a *Attribute) materialize(r *rand.Rand, indexes []int, masker Masker) ([]Value, error) {
	out := make([]Value, len(indexes))
	for i, idx := range indexes {
		if a.categorical {
			v := a.cats[idx]
			if a.kind == KindFloat {
				v = NewFloatValue(roundTo(v.Float(), a.decimals))
			}
			out[i] = v
			continue
		}

		raw := clampFloat(a.sampleAt(r, idx), a.min, a.max)
		switch a.kind {
		case KindInteger:
			out[i] = NewIntegerValue(int64(math.Round(raw)))
		case KindFloat:
			out[i] = NewFloatValue(roundTo(raw, a.decimals))
		case KindDatetime:
			out[i] = NewDatetimeValue(int64(raw))
		case KindString:
			if masker == nil {
				return nil, core.NewDomainError(a.name, core.ErrNilMasker)
			}
			out[i] = NewStringValue(masker.RandString(r, int(raw)))
		default:
			return nil, core.NewDomainError(a.name, core.ErrUnknownKind)
		}
	}
	return out, nil
}

// roundTo rounds v to d decimal places.
func roundTo(v float64, d int) float64 {
	scale := math.Pow(10, float64(d))
	return math.Round(v*scale) / scale
}
