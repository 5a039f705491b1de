package quality

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"gosynth/domain/core"
	"gosynth/domain/dataset"
)

func buildColumn(t *testing.T, name, column string, values []string) *dataset.Dataset {
	t.Helper()
	table := dataset.NewTable(name, []string{column})
	for _, v := range values {
		if err := table.AddRow([]string{v}); err != nil {
			t.Fatalf("AddRow failed: %v", err)
		}
	}
	ds, err := dataset.Build(context.Background(), table, dataset.BuildOptions{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return ds
}

func repeat(value string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// TestEvaluate_IdenticalColumns verifies that comparing a dataset against
// itself reports a perfect match on every metric.
func TestEvaluate_IdenticalColumns(t *testing.T) {
	values := append(repeat("a", 6), repeat("b", 4)...)
	src := buildColumn(t, "grades", "grade", values)
	syn := buildColumn(t, "grades", "grade", values)

	report, err := Evaluate(src, syn)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if len(report.Columns) != 1 {
		t.Fatalf("Expected 1 column, got %d", len(report.Columns))
	}
	cq := report.Columns[0]
	if cq.ChiSquare != 0 {
		t.Errorf("Expected chi-square 0 for identical columns, got %v", cq.ChiSquare)
	}
	if cq.PValue != 1 {
		t.Errorf("Expected p-value 1 for identical columns, got %v", cq.PValue)
	}
	if math.Abs(cq.KLDivergence) > 1e-9 {
		t.Errorf("Expected zero KL divergence, got %v", cq.KLDivergence)
	}
	if math.Abs(cq.JSDivergence) > 1e-9 {
		t.Errorf("Expected zero JS divergence, got %v", cq.JSDivergence)
	}
	if !cq.Pass {
		t.Errorf("Expected identical columns to pass")
	}
	if report.PassRate != 100 {
		t.Errorf("Expected pass rate 100, got %v", report.PassRate)
	}
}

// TestEvaluate_ShiftedDistribution verifies that inverting category
// frequencies fails the goodness-of-fit test.
func TestEvaluate_ShiftedDistribution(t *testing.T) {
	src := buildColumn(t, "grades", "grade", append(repeat("a", 90), repeat("b", 10)...))
	syn := buildColumn(t, "grades", "grade", append(repeat("a", 10), repeat("b", 90)...))

	report, err := Evaluate(src, syn)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	cq := report.Columns[0]
	if cq.ChiSquare <= 0 {
		t.Errorf("Expected positive chi-square, got %v", cq.ChiSquare)
	}
	if cq.PValue >= SignificanceLevel {
		t.Errorf("Expected p-value below %v, got %v", SignificanceLevel, cq.PValue)
	}
	if cq.Pass {
		t.Errorf("Expected shifted distribution to fail")
	}
	if cq.KLDivergence <= 0 {
		t.Errorf("Expected positive KL divergence, got %v", cq.KLDivergence)
	}
	if cq.JSDivergence <= 0 {
		t.Errorf("Expected positive JS divergence, got %v", cq.JSDivergence)
	}
	if report.PassRate != 0 {
		t.Errorf("Expected pass rate 0, got %v", report.PassRate)
	}
}

// TestEvaluate_NumericColumns verifies histogram-based comparison of
// non-categorical columns on the source bin edges.
func TestEvaluate_NumericColumns(t *testing.T) {
	srcValues := []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}
	src := buildColumn(t, "measures", "reading", srcValues)
	syn := buildColumn(t, "measures", "reading", srcValues)

	report, err := Evaluate(src, syn)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	cq := report.Columns[0]
	if cq.Categorical {
		t.Errorf("Expected non-categorical column")
	}
	if cq.Kind != "integer" {
		t.Errorf("Expected kind integer, got %s", cq.Kind)
	}
	if cq.PValue != 1 {
		t.Errorf("Expected p-value 1, got %v", cq.PValue)
	}
}

// TestEvaluate_MissingColumn verifies that a synthesized dataset missing
// a source column is rejected.
func TestEvaluate_MissingColumn(t *testing.T) {
	src := buildColumn(t, "grades", "grade", []string{"a", "a", "b", "b"})
	syn := buildColumn(t, "grades", "other", []string{"a", "a", "b", "b"})

	_, err := Evaluate(src, syn)
	if err == nil {
		t.Fatalf("Expected error for missing column")
	}
	if !errors.Is(err, core.ErrColumnNotFound) {
		t.Errorf("Expected ErrColumnNotFound, got %v", err)
	}
}

// TestEvaluate_FlagMismatch verifies that columns whose categorical flag
// diverges are reported without metrics instead of failing the run.
func TestEvaluate_FlagMismatch(t *testing.T) {
	src := buildColumn(t, "codes", "code", []string{"xx", "xx", "yy", "yy"})
	syn := buildColumn(t, "codes", "code", []string{"qq", "ww", "ee", "rr"})

	report, err := Evaluate(src, syn)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	cq := report.Columns[0]
	if cq.Note == "" {
		t.Errorf("Expected a mismatch note")
	}
	if cq.Pass {
		t.Errorf("Expected mismatched column not to pass")
	}
}

// TestReport_MarkdownAndHTML verifies the report rendering surfaces.
func TestReport_MarkdownAndHTML(t *testing.T) {
	values := append(repeat("a", 6), repeat("b", 4)...)
	src := buildColumn(t, "grades", "grade", values)
	syn := buildColumn(t, "grades", "grade", values)

	report, err := Evaluate(src, syn)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	md := report.Markdown()
	if !strings.Contains(md, "# Synthesis Quality Report: grades") {
		t.Errorf("Markdown missing title: %s", md)
	}
	if !strings.Contains(md, "| grade |") {
		t.Errorf("Markdown missing column row: %s", md)
	}

	page := string(report.HTML())
	if !strings.Contains(page, "<h1>") {
		t.Errorf("HTML missing heading: %s", page)
	}
	if !strings.Contains(page, "<table>") {
		t.Errorf("HTML missing metrics table: %s", page)
	}
}
