package app

import (
	"context"
	"time"

	"gosynth/domain/dataset"
	"gosynth/internal"
	"gosynth/internal/errors"
	"gosynth/internal/quality"
	"gosynth/ports"
)

// QualityService compares synthesized output against its source data
type QualityService struct {
	readerPort ports.TableReaderPort
	logger     *internal.Logger
}

// NewQualityService creates a quality service
func NewQualityService(readerPort ports.TableReaderPort, logger *internal.Logger) *QualityService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &QualityService{
		readerPort: readerPort,
		logger:     logger,
	}
}

// QualityReportRequest defines inputs for a quality evaluation
type QualityReportRequest struct {
	SourcePath  string
	SourceTable *dataset.Table
	SynthPath   string
	SynthTable  *dataset.Table
	BinSize     int
	Categorical []string
}

// QualityReportResult contains the evaluated report
type QualityReportResult struct {
	Report    *quality.Report
	RuntimeMs int64
}

// Evaluate models source and synthesized tables with identical options
// and reports how closely the synthesized distributions track the source.
func (s *QualityService) Evaluate(ctx context.Context, req QualityReportRequest) (*QualityReportResult, error) {
	startTime := time.Now()

	source, err := resolveTable(ctx, s.readerPort, req.SourceTable, req.SourcePath)
	if err != nil {
		return nil, err
	}
	synth, err := resolveTable(ctx, s.readerPort, req.SynthTable, req.SynthPath)
	if err != nil {
		return nil, err
	}

	opts := dataset.BuildOptions{
		BinSize:     req.BinSize,
		Categorical: req.Categorical,
	}
	sourceDS, err := dataset.Build(ctx, source, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to model source table")
	}
	synthDS, err := dataset.Build(ctx, synth, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to model synthesized table")
	}

	report, err := quality.Evaluate(sourceDS, synthDS)
	if err != nil {
		return nil, errors.Wrap(err, "quality evaluation failed")
	}

	s.logger.Info("Quality report for %s: %.2f%% of columns passing", report.Dataset, report.PassRate)

	return &QualityReportResult{
		Report:    report,
		RuntimeMs: time.Since(startTime).Milliseconds(),
	}, nil
}
