package attribute

import (
	"errors"
	"sort"
	"testing"

	"gosynth/domain/core"
)

// TestHistogram_Invariants verifies the structural relationships every
// non-categorical distribution must satisfy.
func TestHistogram_Invariants(t *testing.T) {
	a := MustNew(SeriesFromStrings("score", []string{"1.5", "2.25", "9.75", "4.0", "7.125"}), Options{})

	bins := a.Bins()
	if len(bins) != DefaultBinSize {
		t.Fatalf("Expected %d bin edges, got %d", DefaultBinSize, len(bins))
	}
	if !sort.Float64sAreSorted(bins) {
		t.Error("Bin edges should ascend")
	}
	if bins[0] != a.Min() {
		t.Errorf("First edge should sit at min: %v vs %v", bins[0], a.Min())
	}
	if last := bins[len(bins)-1]; last >= a.Max() {
		t.Errorf("Last edge should lie below max: %v vs %v", last, a.Max())
	}

	prs := a.Probabilities()
	counts := a.Counts()
	if len(prs) != len(bins) || len(counts) != len(bins) {
		t.Fatalf("Slot lengths diverge: bins=%d prs=%d counts=%d", len(bins), len(prs), len(counts))
	}
	sum := 0.0
	for _, p := range prs {
		if p < 0 {
			t.Errorf("Negative probability %v", p)
		}
		sum += p
	}
	if !floatsNear(sum, 1.0) {
		t.Errorf("Probabilities should sum to 1, got %v", sum)
	}
}

// TestHistogram_SingleValueColumn verifies the degenerate zero-width
// domain widens instead of dividing by zero.
func TestHistogram_SingleValueColumn(t *testing.T) {
	a := MustNew(SeriesFromStrings("const", []string{"7", "7", "7"}), Options{})

	if a.Min() != 7 || a.Max() != 7 {
		t.Errorf("Bounds mismatch: [%v, %v] vs [7, 7]", a.Min(), a.Max())
	}
	counts := a.Counts()
	total := 0.0
	for _, c := range counts {
		total += c
	}
	if total != 3 {
		t.Errorf("All cells should land in the widened range, counted %v", total)
	}
	if counts[10] != 3 {
		t.Errorf("Constant value should land in the center bin: %v", counts)
	}
}

func TestHistogram_StringLengthAxis(t *testing.T) {
	a := MustNew(SeriesFromStrings("word", []string{"ab", "abcd", "abcdef"}), Options{})

	if a.Min() != 2 || a.Max() != 6 {
		t.Fatalf("Length bounds mismatch: [%v, %v] vs [2, 6]", a.Min(), a.Max())
	}
	total := 0.0
	for _, c := range a.Counts() {
		total += c
	}
	if total != 3 {
		t.Errorf("Length histogram should cover all cells, counted %v", total)
	}
}

// TestDecimals_MajorityRule verifies the 80% cumulative rule: walk digit
// tallies from most to least frequent and keep the widest seen when the
// walk crosses the threshold.
func TestDecimals_MajorityRule(t *testing.T) {
	a := MustNew(SeriesFromStrings("amount", []string{"1.50", "2.25", "3.125", "4.0"}), Options{})

	if a.Kind() != KindFloat {
		t.Fatalf("Expected float kind, got %s", a.Kind())
	}
	// Tallies: 1 digit x2, 2 digits x1, 3 digits x1. The walk needs all
	// three slots to pass 80%, so the widest (3) wins.
	if a.Decimals() != 3 {
		t.Errorf("Decimals mismatch: %d vs 3", a.Decimals())
	}
}

func TestDecimals_DominantPrecision(t *testing.T) {
	// Nine one-digit cells and one three-digit outlier: the walk crosses
	// 80% within the one-digit slot alone, so the outlier is ignored.
	raw := []string{"1.5", "2.5", "3.5", "4.5", "5.5", "6.5", "7.5", "8.5", "9.5", "1.125"}
	a := MustNew(SeriesFromStrings("amount", raw), Options{})

	if a.Decimals() != 1 {
		t.Errorf("Dominant precision should win: %d vs 1", a.Decimals())
	}
}

func TestFractionDigits(t *testing.T) {
	testCases := []struct {
		v    float64
		want int
	}{
		{1.5, 1},
		{2.25, 2},
		{3.125, 3},
		{4.0, 1}, // integral floats count their ".0"
		{0.0001, 4},
	}
	for _, tc := range testCases {
		if got := fractionDigits(tc.v); got != tc.want {
			t.Errorf("fractionDigits(%v) = %d, want %d", tc.v, got, tc.want)
		}
	}
}

// TestSetDomain_CategoricalZeroFill verifies a declared-but-unseen
// category keeps a zero slot in the recomputed distribution.
func TestSetDomain_CategoricalZeroFill(t *testing.T) {
	a := MustNew(SeriesFromStrings("sex", []string{"M", "F", "F", "M", "M"}), Options{})

	domain := []Value{NewStringValue("F"), NewStringValue("M"), NewStringValue("X")}
	if err := a.SetDomain(domain); err != nil {
		t.Fatalf("SetDomain failed: %v", err)
	}

	cats := a.Categories()
	if len(cats) != 3 || cats[2].Str() != "X" {
		t.Fatalf("Declared category missing: %v", cats)
	}
	counts := a.Counts()
	if counts[0] != 2 || counts[1] != 3 || counts[2] != 0 {
		t.Errorf("Counts mismatch: %v vs [2 3 0]", counts)
	}
	prs := a.Probabilities()
	if prs[0] != 0.4 || prs[1] != 0.6 || prs[2] != 0 {
		t.Errorf("Probabilities mismatch: %v vs [0.4 0.6 0]", prs)
	}
}

func TestSetDomain_NumericOverride(t *testing.T) {
	a := MustNew(SeriesFromStrings("age", []string{"1", "2", "2", "3", "3", "3"}), Options{})

	if err := a.SetDomain([]Value{NewIntegerValue(0), NewIntegerValue(10)}); err != nil {
		t.Fatalf("SetDomain failed: %v", err)
	}
	if a.Min() != 0 || a.Max() != 10 {
		t.Errorf("Bounds mismatch: [%v, %v] vs [0, 10]", a.Min(), a.Max())
	}
	if bins := a.Bins(); bins[0] != 0 {
		t.Errorf("Histogram should rebuild over the declared range, first edge %v", bins[0])
	}
	total := 0.0
	for _, c := range a.Counts() {
		total += c
	}
	if total != 6 {
		t.Errorf("All cells lie inside the wider range, counted %v", total)
	}
}

func TestSetDomain_DatetimeStrings(t *testing.T) {
	a := MustNew(SeriesFromStrings("day", []string{"2020-01-01", "2020-06-15", "2020-12-31"}), Options{})

	// Calendar strings coerce to epoch seconds.
	err := a.SetDomain([]Value{NewStringValue("2019-01-01"), NewStringValue("2021-01-01")})
	if err != nil {
		t.Fatalf("SetDomain failed: %v", err)
	}
	if a.Min() != 1546300800 || a.Max() != 1609459200 {
		t.Errorf("Epoch bounds mismatch: [%v, %v]", a.Min(), a.Max())
	}
}

func TestSetDomain_Validation(t *testing.T) {
	newAge := func() *Attribute {
		return MustNew(SeriesFromStrings("age", []string{"1", "2", "3"}), Options{})
	}

	if err := newAge().SetDomain(nil); !errors.Is(err, core.ErrInvalidDomain) {
		t.Errorf("Empty domain: expected ErrInvalidDomain, got %v", err)
	}
	three := []Value{NewIntegerValue(0), NewIntegerValue(5), NewIntegerValue(10)}
	if err := newAge().SetDomain(three); !errors.Is(err, core.ErrInvalidDomain) {
		t.Errorf("Interval domain needs exactly two bounds, got %v", err)
	}
	desc := []Value{NewIntegerValue(10), NewIntegerValue(0)}
	if err := newAge().SetDomain(desc); !errors.Is(err, core.ErrInvalidDomain) {
		t.Errorf("Descending bounds: expected ErrInvalidDomain, got %v", err)
	}
	bad := []Value{NewStringValue("x"), NewStringValue("y")}
	if err := newAge().SetDomain(bad); !errors.Is(err, core.ErrInvalidDomain) {
		t.Errorf("Uncoercible bounds: expected ErrInvalidDomain, got %v", err)
	}

	restored, err := FromPattern(newAge().ToPattern())
	if err != nil {
		t.Fatalf("FromPattern failed: %v", err)
	}
	pair := []Value{NewIntegerValue(0), NewIntegerValue(10)}
	if err := restored.SetDomain(pair); !errors.Is(err, core.ErrNoRawValues) {
		t.Errorf("Pattern-only override: expected ErrNoRawValues, got %v", err)
	}
}
