package app

import (
	"context"
	"path/filepath"
	"testing"

	"gosynth/adapters/tabular"
	"gosynth/domain/core"
	"gosynth/internal"
	"gosynth/internal/errors"
	"gosynth/internal/testkit"
)

func newTestService(t *testing.T) (*SynthesisService, *testkit.TestKit) {
	t.Helper()
	kit, err := testkit.NewTestKit()
	if err != nil {
		t.Fatalf("NewTestKit failed: %v", err)
	}
	svc := NewSynthesisService(
		tabular.NewReader(),
		kit.PatternSetRepository(),
		kit.RNGAdapter(),
		kit.Masker(),
		SynthesisDefaults{BaseSeed: 42, BinSize: 20},
		internal.NewLogger(internal.LogLevelError),
	)
	return svc, kit
}

// TestLearnPatterns_FromTable verifies modeling and persistence of an
// in-memory source table.
func TestLearnPatterns_FromTable(t *testing.T) {
	svc, kit := newTestService(t)
	ctx := context.Background()

	result, err := svc.LearnPatterns(ctx, LearnPatternsRequest{
		Table:   kit.SampleTable(),
		Persist: true,
	})
	if err != nil {
		t.Fatalf("LearnPatterns failed: %v", err)
	}
	if result.PatternSet == nil {
		t.Fatalf("Expected a pattern set")
	}
	if len(result.PatternSet.Patterns) != 5 {
		t.Errorf("Expected 5 patterns, got %d", len(result.PatternSet.Patterns))
	}
	if result.PatternSet.Name != "users" {
		t.Errorf("Expected name users, got %s", result.PatternSet.Name)
	}
	if !result.Persisted {
		t.Errorf("Expected pattern set to be persisted")
	}

	stored, err := svc.GetPatternSet(ctx, result.PatternSet.ID)
	if err != nil {
		t.Fatalf("GetPatternSet failed: %v", err)
	}
	if stored.Fingerprint != result.PatternSet.Fingerprint {
		t.Errorf("Fingerprint mismatch: %s vs %s", stored.Fingerprint, result.PatternSet.Fingerprint)
	}

	summaries, err := svc.ListPatternSets(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListPatternSets failed: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Columns != 5 {
		t.Errorf("Expected one summary with 5 columns, got %v", summaries)
	}
}

// TestLearnPatterns_FromFile verifies the path-based flow including
// format rejection.
func TestLearnPatterns_FromFile(t *testing.T) {
	svc, kit := newTestService(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "users.csv")
	if err := kit.WriteSampleCSV(path); err != nil {
		t.Fatalf("WriteSampleCSV failed: %v", err)
	}

	result, err := svc.LearnPatterns(ctx, LearnPatternsRequest{Path: path})
	if err != nil {
		t.Fatalf("LearnPatterns failed: %v", err)
	}
	if len(result.PatternSet.Patterns) != 5 {
		t.Errorf("Expected 5 patterns, got %d", len(result.PatternSet.Patterns))
	}
	if result.Persisted {
		t.Errorf("Expected no persistence without the flag")
	}

	_, err = svc.LearnPatterns(ctx, LearnPatternsRequest{Path: "notes.txt"})
	if err == nil {
		t.Fatalf("Expected error for unsupported format")
	}
	if errors.GetCode(err) != errors.CodeUnsupportedFormat {
		t.Errorf("Expected code %s, got %s", errors.CodeUnsupportedFormat, errors.GetCode(err))
	}
}

// TestSynthesize_FromStoredPatternSet verifies synthesis from a stored id
// and its run-level determinism.
func TestSynthesize_FromStoredPatternSet(t *testing.T) {
	svc, kit := newTestService(t)
	ctx := context.Background()

	learned, err := svc.LearnPatterns(ctx, LearnPatternsRequest{Table: kit.SampleTable(), Persist: true})
	if err != nil {
		t.Fatalf("LearnPatterns failed: %v", err)
	}

	req := SynthesizeRequest{
		PatternSetID: learned.PatternSet.ID,
		RunID:        core.RunID("run-1"),
		Seed:         7,
		Size:         8,
	}
	first, err := svc.Synthesize(ctx, req)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if first.Rows != 8 || first.Columns != 5 {
		t.Errorf("Expected 8x5 output, got %dx%d", first.Rows, first.Columns)
	}
	if first.RunID != "run-1" {
		t.Errorf("Expected run-1, got %s", first.RunID)
	}

	second, err := svc.Synthesize(ctx, req)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	for r := range first.Table.Rows {
		for c := range first.Table.Rows[r] {
			if first.Table.Rows[r][c] != second.Table.Rows[r][c] {
				t.Fatalf("Row %d col %d differs between identical runs: %s vs %s",
					r, c, first.Table.Rows[r][c], second.Table.Rows[r][c])
			}
		}
	}
}

// TestSynthesize_SourceStrategies verifies retain and pseudonym column
// strategies against a raw source table.
func TestSynthesize_SourceStrategies(t *testing.T) {
	svc, kit := newTestService(t)
	ctx := context.Background()

	table := kit.SampleTable()
	result, err := svc.Synthesize(ctx, SynthesizeRequest{
		SourceTable: table,
		RunID:       core.RunID("run-2"),
		Seed:        11,
		Retains:     []string{"age"},
		Pseudonyms:  []string{"id"},
	})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if result.Rows != table.RowCount() {
		t.Fatalf("Expected %d rows, got %d", table.RowCount(), result.Rows)
	}

	ageIdx, _ := result.Table.ColumnIndex("age")
	idIdx, _ := result.Table.ColumnIndex("id")
	masker := kit.Masker()
	for r, row := range result.Table.Rows {
		if row[ageIdx] != table.Rows[r][1] {
			t.Errorf("Row %d: retained age %s does not match source %s", r, row[ageIdx], table.Rows[r][1])
		}
		want := masker.Mask(table.Rows[r][0])
		if row[idIdx] != want {
			t.Errorf("Row %d: pseudonym %s does not match mask %s", r, row[idIdx], want)
		}
		if row[idIdx] == table.Rows[r][0] {
			t.Errorf("Row %d: id column left unmasked", r)
		}
	}
}

// TestSynthesize_PatternOnlyRejectsRetain verifies that retain requires
// resident raw values.
func TestSynthesize_PatternOnlyRejectsRetain(t *testing.T) {
	svc, kit := newTestService(t)
	ctx := context.Background()

	learned, err := svc.LearnPatterns(ctx, LearnPatternsRequest{Table: kit.SampleTable(), Persist: true})
	if err != nil {
		t.Fatalf("LearnPatterns failed: %v", err)
	}

	_, err = svc.Synthesize(ctx, SynthesizeRequest{
		PatternSetID: learned.PatternSet.ID,
		RunID:        core.RunID("run-3"),
		Size:         6,
		Retains:      []string{"age"},
	})
	if err == nil {
		t.Fatalf("Expected error for retain without raw values")
	}
	if !core.IsUnsupportedError(err) {
		t.Errorf("Expected an unsupported-operation error, got %v", err)
	}
}

// TestSynthesize_RequiresASource verifies input validation.
func TestSynthesize_RequiresASource(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Synthesize(context.Background(), SynthesizeRequest{})
	if err == nil {
		t.Fatalf("Expected error without any pattern source")
	}
	if errors.GetCode(err) != errors.CodeInvalidInput {
		t.Errorf("Expected code %s, got %s", errors.CodeInvalidInput, errors.GetCode(err))
	}
}

// TestPseudonymize_PreservesEqualityStructure verifies whole-table
// masking keeps equal source cells equal.
func TestPseudonymize_PreservesEqualityStructure(t *testing.T) {
	svc, kit := newTestService(t)
	ctx := context.Background()

	result, err := svc.Pseudonymize(ctx, PseudonymizeRequest{
		Table: kit.SampleTable(),
		RunID: core.RunID("run-4"),
	})
	if err != nil {
		t.Fatalf("Pseudonymize failed: %v", err)
	}

	ageIdx, _ := result.Table.ColumnIndex("age")
	// Source ages at rows 0, 2 and 5 are all 23
	if result.Table.Rows[0][ageIdx] != result.Table.Rows[2][ageIdx] {
		t.Errorf("Equal source ages masked to different values")
	}
	if result.Table.Rows[0][ageIdx] == result.Table.Rows[1][ageIdx] {
		t.Errorf("Distinct source ages masked to the same value")
	}
	if result.Table.Rows[0][ageIdx] == "23" {
		t.Errorf("Age column left unmasked")
	}
}

// TestDeletePatternSet verifies removal through the service.
func TestDeletePatternSet(t *testing.T) {
	svc, kit := newTestService(t)
	ctx := context.Background()

	learned, err := svc.LearnPatterns(ctx, LearnPatternsRequest{Table: kit.SampleTable(), Persist: true})
	if err != nil {
		t.Fatalf("LearnPatterns failed: %v", err)
	}
	if err := svc.DeletePatternSet(ctx, learned.PatternSet.ID); err != nil {
		t.Fatalf("DeletePatternSet failed: %v", err)
	}
	if _, err := svc.GetPatternSet(ctx, learned.PatternSet.ID); !core.IsNotFoundError(err) {
		t.Errorf("Expected not-found after delete, got %v", err)
	}
}

// TestQualityService_Evaluate verifies the end-to-end learn, synthesize,
// evaluate flow.
func TestQualityService_Evaluate(t *testing.T) {
	svc, kit := newTestService(t)
	ctx := context.Background()

	synth, err := svc.Synthesize(ctx, SynthesizeRequest{
		SourceTable: kit.SampleTable(),
		RunID:       core.RunID("run-5"),
		Seed:        13,
		Size:        60,
	})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	qsvc := NewQualityService(tabular.NewReader(), internal.NewLogger(internal.LogLevelError))
	result, err := qsvc.Evaluate(ctx, QualityReportRequest{
		SourceTable: kit.SampleTable(),
		SynthTable:  synth.Table,
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	report := result.Report
	if report.Dataset != "users" {
		t.Errorf("Expected dataset users, got %s", report.Dataset)
	}
	if len(report.Columns) != 5 {
		t.Fatalf("Expected 5 column reports, got %d", len(report.Columns))
	}
	if report.SourceRows != 6 || report.SynthRows != 60 {
		t.Errorf("Expected 6 source and 60 synth rows, got %d and %d", report.SourceRows, report.SynthRows)
	}
	for _, cq := range report.Columns {
		if cq.PValue < 0 || cq.PValue > 1 {
			t.Errorf("Column %s: p-value %v out of range", cq.Name, cq.PValue)
		}
		if cq.KLDivergence < 0 {
			t.Errorf("Column %s: negative KL divergence %v", cq.Name, cq.KLDivergence)
		}
	}
}
