package attribute

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"gosynth/domain/core"
)

// encodeEpsilon guards the bin-width division against exact-boundary
// artifacts when a value sits on the top edge.
const encodeEpsilon = 1e-8

// Encoding is the discretized representation of a cell sequence: a one-hot
// matrix for categorical attributes, normalized scalar codes otherwise.
// Exactly one of OneHot and Codes is populated.
type Encoding struct {
	// Levels gives the column order of OneHot, one per category.
	Levels []Value
	// OneHot has one row per input cell and one column per level.
	OneHot [][]float64
	// Codes has one normalized value in [0, 1] per input cell; missing
	// cells encode as NaN.
	Codes []float64
}

// Encode maps cells to the attribute's discretized representation. A nil
// cells argument encodes the resident values. Supplied datetime cells may
// be calendar strings or epoch seconds. Non-categorical string attributes
// cannot be encoded: lengths carry no category identity.
func (a *Attribute) Encode(cells []Value) (*Encoding, error) {
	if cells == nil {
		if !a.HasRawValues() {
			return nil, core.NewDomainError(a.name, core.ErrNoRawValues)
		}
		cells = a.cells
	}
	coerced, err := a.coerceCells(cells)
	if err != nil {
		return nil, err
	}

	if a.categorical {
		enc := &Encoding{
			Levels: a.Categories(),
			OneHot: make([][]float64, len(coerced)),
		}
		for i, c := range coerced {
			row := make([]float64, len(a.cats))
			for j, cat := range a.cats {
				if c.Equal(cat) {
					row[j] = 1
				}
			}
			enc.OneHot[i] = row
		}
		return enc, nil
	}

	if a.kind == KindString {
		return nil, core.NewDomainError(a.name, core.ErrStringEncode)
	}

	codes := make([]float64, len(coerced))
	for i, c := range coerced {
		if c.IsMissing() {
			codes[i] = math.NaN()
			continue
		}
		v := c.Float64()
		codes[i] = math.Trunc((v-a.min)/(a.step+encodeEpsilon)) / float64(a.binSize)
	}
	return &Encoding{Codes: codes}, nil
}

// coerceCells brings supplied cells onto the attribute's axis. Only
// datetime attributes need work: calendar strings parse to epoch seconds,
// numeric cells are taken as seconds directly.
func (a *Attribute) coerceCells(cells []Value) ([]Value, error) {
	if a.kind != KindDatetime {
		return cells, nil
	}
	out := make([]Value, len(cells))
	for i, c := range cells {
		switch {
		case c.IsMissing() || c.Kind == KindDatetime:
			out[i] = c
		case c.Kind == KindString:
			t, ok := ParseDatetime(c.Str())
			if !ok {
				return nil, core.NewValidationError("cells", "unparseable datetime cell")
			}
			out[i] = NewDatetimeValue(EpochSeconds(t))
		case c.Kind == KindInteger:
			out[i] = NewDatetimeValue(c.Int())
		case c.Kind == KindFloat:
			out[i] = NewDatetimeValue(int64(c.Float()))
		default:
			return nil, core.ErrUnknownKind
		}
	}
	return out, nil
}

// BinIndexes maps every resident cell to its bin position. Output indices
// lie in [0, NumBins()]; NumBins() itself is the sentinel for unmappable
// cells.
func (a *Attribute) BinIndexes() ([]int, error) {
	if !a.HasRawValues() {
		return nil, core.NewDomainError(a.name, core.ErrNoRawValues)
	}
	out := make([]int, len(a.cells))
	for i, c := range a.cells {
		out[i] = a.IndexOf(c)
	}
	return out, nil
}

// IndexOf maps one cell to its bin position: the category position for
// categorical attributes, otherwise the largest i with bins[i] <= value.
// Missing and out-of-domain cells return the sentinel NumBins().
func (a *Attribute) IndexOf(c Value) int {
	sentinel := a.NumBins()
	if c.IsMissing() {
		return sentinel
	}
	if a.categorical {
		if i, ok := a.catIndex[c.key()]; ok {
			return i
		}
		return sentinel
	}

	v := c.Float64()
	if len(a.bins) == 0 || v < a.bins[0] || v > a.max {
		return sentinel
	}
	// right-biased: the last edge not exceeding v
	i := sort.Search(len(a.bins), func(j int) bool { return a.bins[j] > v })
	return i - 1
}

// CategoryCounts re-tabulates the resident cells against a caller-supplied
// category list, zero-filling unseen entries. With normalize, counts
// become percentages of the column size rounded to two decimals. Datetime
// categories may be supplied as calendar strings.
func (a *Attribute) CategoryCounts(categories []Value, normalize bool) ([]float64, error) {
	if !a.HasRawValues() {
		return nil, core.NewDomainError(a.name, core.ErrNoRawValues)
	}
	if !a.categorical {
		return nil, core.NewValidationError("categories", "attribute is not categorical")
	}

	tally := make(map[string]float64, len(a.cells))
	for _, c := range a.cells {
		tally[c.key()]++
	}

	out := make([]float64, len(categories))
	total := float64(len(a.cells))
	for i, cat := range categories {
		nc, err := a.normalizeDomainValue(cat)
		if err != nil {
			return nil, core.NewDomainError(a.name, err)
		}
		n := tally[nc.key()]
		if normalize {
			pct, rerr := stats.Round(n/total*100, 2)
			if rerr != nil {
				return nil, rerr
			}
			out[i] = pct
		} else {
			out[i] = n
		}
	}
	return out, nil
}

// HistogramCounts re-tabulates the resident cells against caller-supplied
// bin edges, for comparing two attributes on a common domain. A single
// edge collapses to one all-inclusive bin. With normalize, counts become
// percentages of the in-range total rounded to two decimals.
func (a *Attribute) HistogramCounts(edges []float64, normalize bool) ([]float64, error) {
	if !a.HasRawValues() {
		return nil, core.NewDomainError(a.name, core.ErrNoRawValues)
	}
	if a.categorical {
		return nil, core.NewValidationError("edges", "attribute is categorical")
	}
	if len(edges) == 0 {
		return nil, core.NewValidationError("edges", "no bin edges supplied")
	}
	if len(edges) == 1 {
		return []float64{float64(len(a.cells))}, nil
	}
	if !sort.Float64sAreSorted(edges) {
		return nil, core.NewValidationError("edges", "bin edges not ascending")
	}

	proj := make([]float64, 0, len(a.cells))
	for _, c := range a.cells {
		proj = append(proj, c.Float64())
	}
	sort.Float64s(proj)

	lo, hi := edges[0], edges[len(edges)-1]
	inRange := proj[:0]
	for _, v := range proj {
		if v >= lo && v <= hi {
			inRange = append(inRange, v)
		}
	}

	dividers := make([]float64, len(edges))
	copy(dividers, edges)
	dividers[len(dividers)-1] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, inRange, nil)

	if !normalize {
		return counts, nil
	}
	total, err := stats.Sum(counts)
	if err != nil || total == 0 {
		return make([]float64, len(counts)), nil
	}
	out := make([]float64, len(counts))
	for i, c := range counts {
		pct, rerr := stats.Round(c/total*100, 2)
		if rerr != nil {
			return nil, rerr
		}
		out[i] = pct
	}
	return out, nil
}
