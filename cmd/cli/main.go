package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gosynth/adapters/masking"
	"gosynth/adapters/tabular"
	"gosynth/app"
	"gosynth/domain/core"
	"gosynth/domain/dataset"
	"gosynth/internal"
	"gosynth/internal/quality"
	"gosynth/internal/testkit"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gosynth",
		Short: "Synthetic data CLI for pattern learning, synthesis and pseudonymization",
	}

	rootCmd.AddCommand(
		newPatternCmd(),
		newSynthesizeCmd(),
		newPseudonymizeCmd(),
		newReportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newPatternCmd() *cobra.Command {
	var name string
	var binSize int
	var categorical, exclude []string
	var out string

	cmd := &cobra.Command{
		Use:   "pattern [source-file]",
		Short: "Learn per-column patterns from a CSV or XLSX file",
		Long: `Model every column of a tabular file and write the portable pattern set.

The pattern set carries no raw data rows and can be shared or stored in
place of the source file.

Example: gosynth pattern users.csv --categorical sex --out users.patterns.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPattern(cmd.Context(), args[0], name, binSize, categorical, exclude, out)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Pattern set name (defaults to the file name)")
	cmd.Flags().IntVar(&binSize, "bin-size", 0, "Histogram bin count (0 keeps the default of 20)")
	cmd.Flags().StringSliceVar(&categorical, "categorical", nil, "Columns forced to categorical")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Columns left out of the pattern set")
	cmd.Flags().StringVar(&out, "out", "", "Output path for the pattern JSON (defaults to stdout)")

	return cmd
}

func newSynthesizeCmd() *cobra.Command {
	var patternsFile string
	var sourceFile string
	var size int
	var seed int64
	var runID string
	var binSize int
	var categorical, exclude, retains, pseudonyms, uniform []string
	var out string

	cmd := &cobra.Command{
		Use:   "synthesize",
		Short: "Generate synthetic rows from a pattern set or source file",
		Long: `Generate rows that follow the learned per-column distributions.

Exactly one of --patterns or --source is required. The retain and
pseudonym strategies need --source, since they use the raw values.

Example: gosynth synthesize --patterns users.patterns.json --size 1000 --seed 42 --out synth.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := app.SynthesizeRequest{
				SourcePath:  sourceFile,
				RunID:       core.RunID(runID),
				Seed:        seed,
				Size:        size,
				BinSize:     binSize,
				Categorical: categorical,
				Exclude:     exclude,
				Retains:     retains,
				Pseudonyms:  pseudonyms,
				Uniform:     uniform,
			}
			if patternsFile != "" {
				ps, err := loadPatternSet(patternsFile)
				if err != nil {
					return err
				}
				req.PatternSet = ps
			}
			return runSynthesize(cmd.Context(), req, out)
		},
	}

	cmd.Flags().StringVar(&patternsFile, "patterns", "", "Pattern set JSON to synthesize from")
	cmd.Flags().StringVar(&sourceFile, "source", "", "Source CSV/XLSX to model and synthesize from")
	cmd.Flags().IntVar(&size, "size", 0, "Rows to generate (0 keeps the source size)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic operations")
	cmd.Flags().StringVar(&runID, "run-id", "", "Run identifier for replayable output (random when empty)")
	cmd.Flags().IntVar(&binSize, "bin-size", 0, "Histogram bin count when modeling --source")
	cmd.Flags().StringSliceVar(&categorical, "categorical", nil, "Columns forced to categorical when modeling --source")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Columns left out when modeling --source")
	cmd.Flags().StringSliceVar(&retains, "retain", nil, "Columns copied through from the source unchanged")
	cmd.Flags().StringSliceVar(&pseudonyms, "pseudonym", nil, "Columns masked value-for-value")
	cmd.Flags().StringSliceVar(&uniform, "uniform", nil, "Columns drawn evenly across their domain")
	cmd.Flags().StringVar(&out, "out", "synth.csv", "Output table path (.csv or .xlsx)")

	return cmd
}

func newPseudonymizeCmd() *cobra.Command {
	var seed int64
	var runID string
	var out string

	cmd := &cobra.Command{
		Use:   "pseudonymize [source-file]",
		Short: "Mask every column of a file value-for-value",
		Long: `Replace every value with a deterministic mask, preserving the equality
structure of the data: equal source cells stay equal after masking.

Example: gosynth pseudonymize users.csv --out masked.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPseudonymize(cmd.Context(), args[0], runID, seed, out)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic operations")
	cmd.Flags().StringVar(&runID, "run-id", "", "Run identifier (random when empty)")
	cmd.Flags().StringVar(&out, "out", "masked.csv", "Output table path (.csv or .xlsx)")

	return cmd
}

func newReportCmd() *cobra.Command {
	var binSize int
	var categorical []string
	var format string
	var out string

	cmd := &cobra.Command{
		Use:   "report [source-file] [synth-file]",
		Short: "Evaluate synthesized output against its source",
		Long: `Compare per-column distributions of a synthesized file against the
source it was learned from and write a quality report.

Example: gosynth report users.csv synth.csv --format html --out report.html`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), args[0], args[1], binSize, categorical, format, out)
		},
	}

	cmd.Flags().IntVar(&binSize, "bin-size", 0, "Histogram bin count (0 keeps the default of 20)")
	cmd.Flags().StringSliceVar(&categorical, "categorical", nil, "Columns forced to categorical on both sides")
	cmd.Flags().StringVar(&format, "format", "markdown", "Report format: markdown, html or json")
	cmd.Flags().StringVar(&out, "out", "", "Output path (defaults to stdout)")

	return cmd
}

func newService() (*app.SynthesisService, error) {
	kit, err := testkit.NewTestKit()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test kit: %w", err)
	}
	logger := internal.NewDefaultLogger()
	return app.NewSynthesisService(
		tabular.NewReader(),
		kit.PatternSetRepository(),
		kit.RNGAdapter(),
		masking.NewHashMasker(masking.DefaultMaskLength),
		app.SynthesisDefaults{BaseSeed: 42, BinSize: 20},
		logger,
	), nil
}

func runPattern(ctx context.Context, path, name string, binSize int, categorical, exclude []string, out string) error {
	svc, err := newService()
	if err != nil {
		return err
	}

	result, err := svc.LearnPatterns(ctx, app.LearnPatternsRequest{
		Path:        path,
		Name:        name,
		BinSize:     binSize,
		Categorical: categorical,
		Exclude:     exclude,
	})
	if err != nil {
		return fmt.Errorf("pattern learning failed: %w", err)
	}

	data, err := json.MarshalIndent(result.PatternSet, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode pattern set: %w", err)
	}
	if err := writeOutput(out, append(data, '\n')); err != nil {
		return err
	}

	fmt.Printf("📦 Learned %d column patterns from %s in %dms\n",
		len(result.PatternSet.Patterns), path, result.RuntimeMs)
	fmt.Printf("   Fingerprint: %s\n", result.PatternSet.Fingerprint.Short(16))
	return nil
}

func runSynthesize(ctx context.Context, req app.SynthesizeRequest, out string) error {
	svc, err := newService()
	if err != nil {
		return err
	}

	result, err := svc.Synthesize(ctx, req)
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}
	if err := tabular.Write(result.Table, out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Printf("✅ Synthesized %d rows x %d columns to %s in %dms\n",
		result.Rows, result.Columns, out, result.RuntimeMs)
	fmt.Printf("   Run: %s (seed %d)\n", result.RunID, req.Seed)
	return nil
}

func runPseudonymize(ctx context.Context, path, runID string, seed int64, out string) error {
	svc, err := newService()
	if err != nil {
		return err
	}

	result, err := svc.Pseudonymize(ctx, app.PseudonymizeRequest{
		Path:  path,
		RunID: core.RunID(runID),
		Seed:  seed,
	})
	if err != nil {
		return fmt.Errorf("pseudonymization failed: %w", err)
	}
	if err := tabular.Write(result.Table, out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Printf("✅ Pseudonymized %d rows to %s in %dms\n", result.Rows, out, result.RuntimeMs)
	return nil
}

func runReport(ctx context.Context, sourcePath, synthPath string, binSize int, categorical []string, format, out string) error {
	qsvc := app.NewQualityService(tabular.NewReader(), internal.NewDefaultLogger())

	result, err := qsvc.Evaluate(ctx, app.QualityReportRequest{
		SourcePath:  sourcePath,
		SynthPath:   synthPath,
		BinSize:     binSize,
		Categorical: categorical,
	})
	if err != nil {
		return fmt.Errorf("quality evaluation failed: %w", err)
	}

	var data []byte
	switch format {
	case "html":
		data = result.Report.HTML()
	case "json":
		data, err = json.MarshalIndent(result.Report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		data = append(data, '\n')
	default:
		data = []byte(result.Report.Markdown())
	}
	if err := writeOutput(out, data); err != nil {
		return err
	}

	fmt.Printf("📊 Quality report: %.2f%% of columns passing (p > %.2f)\n",
		result.Report.PassRate, quality.SignificanceLevel)
	return nil
}

func loadPatternSet(path string) (*dataset.PatternSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern set: %w", err)
	}
	var ps dataset.PatternSet
	if err := json.Unmarshal(data, &ps); err != nil {
		return nil, fmt.Errorf("failed to decode pattern set: %w", err)
	}
	if err := ps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pattern set: %w", err)
	}
	return &ps, nil
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
