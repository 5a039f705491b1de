package app

import (
	"context"
	"math/rand"
	"time"

	"gosynth/domain/attribute"
	"gosynth/domain/core"
	"gosynth/domain/dataset"
	"gosynth/internal"
	"gosynth/internal/errors"
	"gosynth/ports"
)

// SynthesisDefaults supplies server-wide fallbacks for per-request knobs.
type SynthesisDefaults struct {
	BaseSeed int64
	BinSize  int
}

// SynthesisService orchestrates pattern learning, synthesis and
// pseudonymization over the reader, repository and RNG ports.
type SynthesisService struct {
	readerPort ports.TableReaderPort
	repository ports.PatternSetRepository
	rngPort    ports.RNGPort
	masker     attribute.Masker
	defaults   SynthesisDefaults
	logger     *internal.Logger
}

// NewSynthesisService creates a synthesis service
func NewSynthesisService(readerPort ports.TableReaderPort, repository ports.PatternSetRepository, rngPort ports.RNGPort, masker attribute.Masker, defaults SynthesisDefaults, logger *internal.Logger) *SynthesisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SynthesisService{
		readerPort: readerPort,
		repository: repository,
		rngPort:    rngPort,
		masker:     masker,
		defaults:   defaults,
		logger:     logger,
	}
}

// LearnPatternsRequest defines inputs for pattern learning. A zero
// BinSize selects the configured default.
type LearnPatternsRequest struct {
	Path        string
	Table       *dataset.Table
	Name        string
	BinSize     int
	Categorical []string
	Exclude     []string
	Persist     bool
}

// LearnPatternsResult contains the learned pattern set
type LearnPatternsResult struct {
	PatternSet *dataset.PatternSet
	Persisted  bool
	RuntimeMs  int64
}

// LearnPatterns models every column of a source table and assembles the
// portable pattern set, optionally persisting it.
func (s *SynthesisService) LearnPatterns(ctx context.Context, req LearnPatternsRequest) (*LearnPatternsResult, error) {
	startTime := time.Now()

	table, err := s.resolveTable(ctx, req.Table, req.Path)
	if err != nil {
		return nil, err
	}

	binSize := req.BinSize
	if binSize == 0 {
		binSize = s.defaults.BinSize
	}
	ds, err := dataset.Build(ctx, table, dataset.BuildOptions{
		BinSize:     binSize,
		Categorical: req.Categorical,
		Exclude:     req.Exclude,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to model source table")
	}

	ps, err := ds.ToPatternSet(req.Name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to assemble pattern set")
	}

	persisted := false
	if req.Persist {
		if s.repository == nil {
			return nil, errors.InvalidInput("no pattern repository configured")
		}
		if err := s.repository.Save(ctx, ps); err != nil {
			return nil, errors.Wrap(err, "failed to persist pattern set")
		}
		persisted = true
	}

	s.logger.Info("Learned %d column patterns from %s (fingerprint %s)",
		len(ps.Patterns), ps.Name, ps.Fingerprint.Short(12))

	return &LearnPatternsResult{
		PatternSet: ps,
		Persisted:  persisted,
		RuntimeMs:  time.Since(startTime).Milliseconds(),
	}, nil
}

// SynthesizeRequest defines inputs for synthesis. Exactly one pattern
// source is used: an inline pattern set, a stored pattern set id, or a
// raw source table/path that is modeled first. A zero Seed selects the
// configured base seed.
type SynthesizeRequest struct {
	PatternSet   *dataset.PatternSet
	PatternSetID core.PatternSetID
	SourcePath   string
	SourceTable  *dataset.Table
	RunID        core.RunID
	Seed         int64
	Size         int
	BinSize      int
	Categorical  []string
	Exclude      []string
	Retains      []string
	Pseudonyms   []string
	Uniform      []string
}

// SynthesizeResult contains the synthesized table
type SynthesizeResult struct {
	RunID     core.RunID
	Table     *dataset.Table
	Rows      int
	Columns   int
	RuntimeMs int64
}

// Synthesize generates rows that follow the learned per-column
// distributions. The same run id and seed always reproduce the same
// output regardless of column execution order.
func (s *SynthesisService) Synthesize(ctx context.Context, req SynthesizeRequest) (*SynthesizeResult, error) {
	startTime := time.Now()

	ds, err := s.resolveDataset(ctx, req)
	if err != nil {
		return nil, err
	}

	runID := req.RunID
	if runID == "" {
		runID = core.RunID(core.NewID())
	}
	seed := req.Seed
	if seed == 0 {
		seed = s.defaults.BaseSeed
	}

	table, err := ds.Synthesize(ctx, s.columnStreams(ctx, runID, seed), s.masker, dataset.SynthesisOptions{
		Size:       req.Size,
		Retains:    req.Retains,
		Pseudonyms: req.Pseudonyms,
		Uniform:    req.Uniform,
	})
	if err != nil {
		return nil, errors.Wrap(err, "synthesis failed")
	}

	s.logger.Info("Synthesized %d rows x %d columns for run %s",
		table.RowCount(), table.ColumnCount(), runID)

	return &SynthesizeResult{
		RunID:     runID,
		Table:     table,
		Rows:      table.RowCount(),
		Columns:   table.ColumnCount(),
		RuntimeMs: time.Since(startTime).Milliseconds(),
	}, nil
}

// PseudonymizeRequest defines inputs for whole-table pseudonymization
type PseudonymizeRequest struct {
	Path  string
	Table *dataset.Table
	RunID core.RunID
	Seed  int64
	Size  int
}

// PseudonymizeResult contains the masked table
type PseudonymizeResult struct {
	RunID     core.RunID
	Table     *dataset.Table
	Rows      int
	RuntimeMs int64
}

// Pseudonymize masks every column of a source table value-for-value,
// preserving the equality structure of the data.
func (s *SynthesisService) Pseudonymize(ctx context.Context, req PseudonymizeRequest) (*PseudonymizeResult, error) {
	startTime := time.Now()

	table, err := s.resolveTable(ctx, req.Table, req.Path)
	if err != nil {
		return nil, err
	}

	ds, err := dataset.Build(ctx, table, dataset.BuildOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to model source table")
	}

	runID := req.RunID
	if runID == "" {
		runID = core.RunID(core.NewID())
	}
	seed := req.Seed
	if seed == 0 {
		seed = s.defaults.BaseSeed
	}

	masked, err := ds.Pseudonymize(ctx, s.columnStreams(ctx, runID, seed), s.masker, req.Size)
	if err != nil {
		return nil, errors.Wrap(err, "pseudonymization failed")
	}

	s.logger.Info("Pseudonymized %d rows for run %s", masked.RowCount(), runID)

	return &PseudonymizeResult{
		RunID:     runID,
		Table:     masked,
		Rows:      masked.RowCount(),
		RuntimeMs: time.Since(startTime).Milliseconds(),
	}, nil
}

// GetPatternSet loads one stored pattern set
func (s *SynthesisService) GetPatternSet(ctx context.Context, id core.PatternSetID) (*dataset.PatternSet, error) {
	if s.repository == nil {
		return nil, errors.InvalidInput("no pattern repository configured")
	}
	return s.repository.GetByID(ctx, id)
}

// ListPatternSets returns stored pattern set summaries newest first
func (s *SynthesisService) ListPatternSets(ctx context.Context, limit, offset int) ([]ports.PatternSetSummary, error) {
	if s.repository == nil {
		return nil, errors.InvalidInput("no pattern repository configured")
	}
	return s.repository.List(ctx, limit, offset)
}

// DeletePatternSet removes one stored pattern set
func (s *SynthesisService) DeletePatternSet(ctx context.Context, id core.PatternSetID) error {
	if s.repository == nil {
		return errors.InvalidInput("no pattern repository configured")
	}
	return s.repository.Delete(ctx, id)
}

// resolveDataset picks the pattern source for a synthesis request.
func (s *SynthesisService) resolveDataset(ctx context.Context, req SynthesizeRequest) (*dataset.Dataset, error) {
	switch {
	case req.PatternSet != nil:
		return dataset.FromPatternSet(req.PatternSet)
	case req.PatternSetID != "":
		if s.repository == nil {
			return nil, errors.InvalidInput("no pattern repository configured")
		}
		ps, err := s.repository.GetByID(ctx, req.PatternSetID)
		if err != nil {
			return nil, err
		}
		return dataset.FromPatternSet(ps)
	case req.SourceTable != nil || req.SourcePath != "":
		table, err := s.resolveTable(ctx, req.SourceTable, req.SourcePath)
		if err != nil {
			return nil, err
		}
		binSize := req.BinSize
		if binSize == 0 {
			binSize = s.defaults.BinSize
		}
		ds, err := dataset.Build(ctx, table, dataset.BuildOptions{
			BinSize:     binSize,
			Categorical: req.Categorical,
			Exclude:     req.Exclude,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to model source table")
		}
		return ds, nil
	default:
		return nil, errors.InvalidInput("a pattern set, stored pattern set id, or source table is required")
	}
}

// resolveTable returns the in-memory table or reads one from disk.
func (s *SynthesisService) resolveTable(ctx context.Context, table *dataset.Table, path string) (*dataset.Table, error) {
	return resolveTable(ctx, s.readerPort, table, path)
}

func resolveTable(ctx context.Context, readerPort ports.TableReaderPort, table *dataset.Table, path string) (*dataset.Table, error) {
	if table != nil {
		if err := table.Validate(); err != nil {
			return nil, errors.Wrap(err, "invalid source table")
		}
		return table, nil
	}
	if path == "" {
		return nil, errors.InvalidInput("a source table or path is required")
	}
	if readerPort == nil {
		return nil, errors.InvalidInput("no table reader configured")
	}
	if !readerPort.Supports(path) {
		return nil, errors.UnsupportedFormat(path)
	}
	t, err := readerPort.Read(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return t, nil
}

// columnStreams adapts the RNG port to the per-column stream factory the
// dataset layer consumes.
func (s *SynthesisService) columnStreams(ctx context.Context, runID core.RunID, seed int64) dataset.Streams {
	return func(column string) *rand.Rand {
		stream, err := s.rngPort.ColumnStream(ctx, runID, column, seed)
		if err != nil {
			s.logger.Error("Failed to derive stream for column %s: %v", column, err)
			return nil
		}
		return stream
	}
}
