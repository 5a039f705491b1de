package attribute

import (
	"errors"
	"math"
	"testing"

	"gosynth/domain/core"
)

// TestEncode_OneHot verifies categorical encoding: one row per cell, one
// column per category, missing cells all-zero.
func TestEncode_OneHot(t *testing.T) {
	a := MustNew(SeriesFromStrings("sex", []string{"M", "F", "F", "M", "M"}), Options{})

	enc, err := a.Encode(nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(enc.Levels) != 2 || enc.Levels[0].Str() != "F" {
		t.Fatalf("Levels should mirror sorted categories, got %v", enc.Levels)
	}
	if len(enc.OneHot) != 5 {
		t.Fatalf("Expected 5 rows, got %d", len(enc.OneHot))
	}

	wantRows := [][]float64{{0, 1}, {1, 0}, {1, 0}, {0, 1}, {0, 1}}
	for i, want := range wantRows {
		for j := range want {
			if enc.OneHot[i][j] != want[j] {
				t.Errorf("Row %d mismatch: %v vs %v", i, enc.OneHot[i], want)
			}
		}
	}

	// Supplied cells encode against the same levels; unknown and missing
	// cells produce all-zero rows.
	cells := []Value{NewStringValue("F"), NewMissingValue(), NewStringValue("Z")}
	enc, err = a.Encode(cells)
	if err != nil {
		t.Fatalf("Encode of supplied cells failed: %v", err)
	}
	if enc.OneHot[0][0] != 1 {
		t.Errorf("Known category row mismatch: %v", enc.OneHot[0])
	}
	for _, row := range enc.OneHot[1:] {
		for _, v := range row {
			if v != 0 {
				t.Errorf("Missing/unknown cells should encode all-zero, got %v", row)
			}
		}
	}
}

// TestEncode_NormalizedCodes verifies interval encoding lands each value
// in [0, 1) as its truncated bin fraction.
func TestEncode_NormalizedCodes(t *testing.T) {
	a := MustNew(SeriesFromStrings("age", []string{"1", "2", "3"}), Options{})

	enc, err := a.Encode(nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := []float64{0, 0.45, 0.95}
	if len(enc.Codes) != len(want) {
		t.Fatalf("Expected %d codes, got %d", len(want), len(enc.Codes))
	}
	for i := range want {
		if enc.Codes[i] != want[i] {
			t.Errorf("Code %d mismatch: %v vs %v", i, enc.Codes[i], want[i])
		}
	}

	// Missing cells pass through as NaN.
	enc, err = a.Encode([]Value{NewIntegerValue(2), NewMissingValue()})
	if err != nil {
		t.Fatalf("Encode of supplied cells failed: %v", err)
	}
	if !math.IsNaN(enc.Codes[1]) {
		t.Errorf("Missing cell should encode as NaN, got %v", enc.Codes[1])
	}
}

func TestEncode_ZeroWidthDomain(t *testing.T) {
	a := MustNew(SeriesFromStrings("const", []string{"5", "5"}), Options{})

	enc, err := a.Encode(nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	for i, c := range enc.Codes {
		if c != 0 {
			t.Errorf("Zero-width domain should encode to 0, code %d = %v", i, c)
		}
	}
}

func TestEncode_StringNonCategorical(t *testing.T) {
	a := MustNew(SeriesFromStrings("id", []string{"alpha", "bravo", "charlie"}), Options{})

	_, err := a.Encode(nil)
	if !errors.Is(err, core.ErrStringEncode) {
		t.Errorf("Expected ErrStringEncode, got %v", err)
	}
}

func TestEncode_DatetimeCalendarStrings(t *testing.T) {
	raw := []string{"2020-01-01", "2020-06-15", "2020-12-31", "2020-06-15"}
	a := MustNew(SeriesFromStrings("day", raw), Options{Categorical: true})

	// Supplied cells may be calendar strings; they coerce onto the epoch
	// axis before matching.
	enc, err := a.Encode([]Value{NewStringValue("6/15/2020")})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if enc.OneHot[0][1] != 1 {
		t.Errorf("Calendar string should match its category: %v", enc.OneHot[0])
	}
}

func TestEncode_PatternOnly(t *testing.T) {
	a := MustNew(SeriesFromStrings("age", []string{"1", "2", "3"}), Options{})
	b, err := FromPattern(a.ToPattern())
	if err != nil {
		t.Fatalf("FromPattern failed: %v", err)
	}

	// Without raw cells only supplied values can be encoded.
	if _, err := b.Encode(nil); !errors.Is(err, core.ErrNoRawValues) {
		t.Errorf("Expected ErrNoRawValues, got %v", err)
	}
	enc, err := b.Encode([]Value{NewIntegerValue(2)})
	if err != nil {
		t.Fatalf("Encode of supplied cells failed: %v", err)
	}
	if enc.Codes[0] != 0.45 {
		t.Errorf("Code mismatch: %v vs 0.45", enc.Codes[0])
	}
}

// TestBinIndexes_ResidentCells verifies the resident cells map to
// ascending bin positions with the closed last bin.
func TestBinIndexes_ResidentCells(t *testing.T) {
	a := MustNew(SeriesFromStrings("age", []string{"1", "2", "2", "3", "3", "3"}), Options{})

	idx, err := a.BinIndexes()
	if err != nil {
		t.Fatalf("BinIndexes failed: %v", err)
	}
	want := []int{0, 10, 10, 19, 19, 19}
	for i := range want {
		if idx[i] != want[i] {
			t.Errorf("Index %d mismatch: %d vs %d", i, idx[i], want[i])
		}
	}
}

func TestIndexOf_Sentinel(t *testing.T) {
	a := MustNew(SeriesFromStrings("age", []string{"1", "2", "3"}), Options{})

	sentinel := a.NumBins()
	if got := a.IndexOf(NewMissingValue()); got != sentinel {
		t.Errorf("Missing cell: %d vs sentinel %d", got, sentinel)
	}
	if got := a.IndexOf(NewIntegerValue(99)); got != sentinel {
		t.Errorf("Above max: %d vs sentinel %d", got, sentinel)
	}
	if got := a.IndexOf(NewIntegerValue(0)); got != sentinel {
		t.Errorf("Below min: %d vs sentinel %d", got, sentinel)
	}

	c := MustNew(SeriesFromStrings("sex", []string{"M", "F", "F"}), Options{})
	if got := c.IndexOf(NewStringValue("Z")); got != c.NumBins() {
		t.Errorf("Unknown category: %d vs sentinel %d", got, c.NumBins())
	}
	if got := c.IndexOf(NewStringValue("M")); got != 1 {
		t.Errorf("Known category position mismatch: %d vs 1", got)
	}
}

func TestCategoryCounts_Percentages(t *testing.T) {
	a := MustNew(SeriesFromStrings("sex", []string{"M", "F", "F", "M", "M"}), Options{})

	cats := []Value{NewStringValue("F"), NewStringValue("M"), NewStringValue("X")}
	counts, err := a.CategoryCounts(cats, false)
	if err != nil {
		t.Fatalf("CategoryCounts failed: %v", err)
	}
	if counts[0] != 2 || counts[1] != 3 || counts[2] != 0 {
		t.Errorf("Counts mismatch: %v vs [2 3 0]", counts)
	}

	pct, err := a.CategoryCounts(cats, true)
	if err != nil {
		t.Fatalf("CategoryCounts failed: %v", err)
	}
	if pct[0] != 40 || pct[1] != 60 || pct[2] != 0 {
		t.Errorf("Percentages mismatch: %v vs [40 60 0]", pct)
	}

	if _, err := a.HistogramCounts([]float64{0, 1}, false); err == nil {
		t.Error("Histogram tabulation should reject categorical attributes")
	}
}

func TestHistogramCounts_GivenEdges(t *testing.T) {
	a := MustNew(SeriesFromStrings("age", []string{"1", "2", "2", "3", "3", "3"}), Options{})

	counts, err := a.HistogramCounts([]float64{1, 2, 3}, false)
	if err != nil {
		t.Fatalf("HistogramCounts failed: %v", err)
	}
	// [1,2) holds the 1; [2,3] holds the 2s and the closed-edge 3s.
	if counts[0] != 1 || counts[1] != 5 {
		t.Errorf("Counts mismatch: %v vs [1 5]", counts)
	}

	pct, err := a.HistogramCounts([]float64{1, 2, 3}, true)
	if err != nil {
		t.Fatalf("HistogramCounts failed: %v", err)
	}
	if pct[0] != 16.67 || pct[1] != 83.33 {
		t.Errorf("Percentages mismatch: %v vs [16.67 83.33]", pct)
	}

	// A single edge collapses to one all-inclusive bin.
	one, err := a.HistogramCounts([]float64{5}, false)
	if err != nil {
		t.Fatalf("HistogramCounts failed: %v", err)
	}
	if len(one) != 1 || one[0] != 6 {
		t.Errorf("Single-edge tabulation mismatch: %v vs [6]", one)
	}

	if _, err := a.HistogramCounts([]float64{3, 1}, false); err == nil {
		t.Error("Unsorted edges should be rejected")
	}
	if _, err := a.CategoryCounts([]Value{NewIntegerValue(1)}, false); err == nil {
		t.Error("Category tabulation should reject interval attributes")
	}
}
