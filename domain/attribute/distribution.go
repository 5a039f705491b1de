package attribute

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// computeDistribution derives counts and prs from the resident cells
// against the current domain: a category tally for categorical attributes,
// an equal-width histogram otherwise.
func (a *Attribute) computeDistribution() error {
	if a.categorical {
		a.tallyCategories()
		return nil
	}
	a.histogram()
	return nil
}

// tallyCategories counts occurrences per category over the union of
// declared categories and observed values. Declared-but-unseen categories
// keep a zero slot, so a domain override with extra known values still
// yields a complete distribution.
func (a *Attribute) tallyCategories() {
	declared := append(append([]Value{}, a.cats...), a.cells...)
	merged := distinctSorted(declared)

	index := make(map[string]int, len(merged))
	for i, c := range merged {
		index[c.key()] = i
	}
	counts := make([]float64, len(merged))
	for _, c := range a.cells {
		counts[index[c.key()]]++
	}

	a.cats = merged
	a.catIndex = index
	a.bins = nil
	a.counts = counts
	a.prs = normalizeCounts(counts)
}

// histogram partitions the domain into binSize equal-width bins and counts
// the resident cells into them. Only the left edges are kept; the final
// bin is closed on the right at max. A zero-width domain widens by half a
// unit on each side rather than dividing by zero.
func (a *Attribute) histogram() {
	proj := make([]float64, 0, len(a.cells))
	for _, c := range a.cells {
		proj = append(proj, c.Float64())
	}

	lo, hi := a.min, a.max
	if a.kind == KindString && len(proj) > 0 {
		// Length histograms follow the observed lengths even under a
		// declared length range.
		mn, _ := stats.Min(proj)
		mx, _ := stats.Max(proj)
		lo, hi = mn, mx
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	edges := make([]float64, a.binSize+1)
	floats.Span(edges, lo, hi)

	sort.Float64s(proj)
	inRange := proj[:0]
	for _, v := range proj {
		if v >= lo && v <= hi {
			inRange = append(inRange, v)
		}
	}

	// Count with a right edge nudged past max so values equal to max land
	// in the final bin.
	dividers := make([]float64, len(edges))
	copy(dividers, edges)
	dividers[len(dividers)-1] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, inRange, nil)

	a.bins = edges[:a.binSize]
	a.cats = nil
	a.catIndex = nil
	a.counts = counts
	a.prs = normalizeCounts(counts)

	if a.kind == KindInteger {
		a.min = math.Trunc(a.min)
		a.max = math.Trunc(a.max)
	}
}

// normalizeCounts converts raw counts to probability mass. An all-zero
// tally stays all-zero instead of dividing by zero.
func normalizeCounts(counts []float64) []float64 {
	out := make([]float64, len(counts))
	total, err := stats.Sum(counts)
	if err != nil || total == 0 {
		return out
	}
	for i, c := range counts {
		out[i] = c / total
	}
	return out
}

// decimalPlaces learns the rounding precision of a float column: tally how
// many decimal digits each cell's shortest decimal form carries, walk the
// tallies from most to least frequent, and once the walked share of cells
// exceeds 80%, return the widest digit count seen on the walk.
func decimalPlaces(cells []Value) int {
	tally := make(map[int]int)
	total := 0
	for _, c := range cells {
		if c.IsMissing() {
			continue
		}
		d := fractionDigits(c.Float())
		tally[d]++
		total++
	}
	if total == 0 {
		return 0
	}

	type slot struct {
		digits int
		count  int
	}
	slots := make([]slot, 0, len(tally))
	for d, n := range tally {
		slots = append(slots, slot{digits: d, count: n})
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].count != slots[j].count {
			return slots[i].count > slots[j].count
		}
		return slots[i].digits < slots[j].digits
	})

	walked := 0
	widest := 0
	for _, s := range slots {
		walked += s.count
		if s.digits > widest {
			widest = s.digits
		}
		if float64(walked)/float64(total) > 0.8 {
			break
		}
	}
	return widest
}

// fractionDigits counts the digits after the decimal point in the shortest
// decimal representation. Integral floats count one place, matching their
// "x.0" source form.
func fractionDigits(v float64) int {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return 1
	}
	return len(s) - i - 1
}
