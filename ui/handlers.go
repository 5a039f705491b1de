package ui

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gosynth/app"
	"gosynth/domain/core"
	"gosynth/domain/dataset"
	"gosynth/internal/errors"
)

// tablePayload is the JSON form of a table crossing the API boundary
type tablePayload struct {
	Name    string     `json:"name"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

func (p *tablePayload) toTable() *dataset.Table {
	if p == nil {
		return nil
	}
	return &dataset.Table{Name: p.Name, Headers: p.Headers, Rows: p.Rows}
}

func fromTable(t *dataset.Table) tablePayload {
	return tablePayload{Name: t.Name, Headers: t.Headers, Rows: t.Rows}
}

// handleHealth reports service liveness
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleLearnPatterns models a source table and returns its pattern set
func (s *Server) handleLearnPatterns(c *gin.Context) {
	var req struct {
		Table       *tablePayload `json:"table"`
		Path        string        `json:"path"`
		Name        string        `json:"name"`
		BinSize     int           `json:"bin_size"`
		Categorical []string      `json:"categorical"`
		Exclude     []string      `json:"exclude"`
		Persist     bool          `json:"persist"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	result, err := s.synthesis.LearnPatterns(c.Request.Context(), app.LearnPatternsRequest{
		Table:       req.Table.toTable(),
		Path:        req.Path,
		Name:        req.Name,
		BinSize:     req.BinSize,
		Categorical: req.Categorical,
		Exclude:     req.Exclude,
		Persist:     req.Persist,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"pattern_set": result.PatternSet,
		"persisted":   result.Persisted,
		"runtime_ms":  result.RuntimeMs,
	})
}

// handleListPatternSets returns stored pattern set summaries
func (s *Server) handleListPatternSets(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	summaries, err := s.synthesis.ListPatternSets(c.Request.Context(), limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pattern_sets": summaries,
		"count":        len(summaries),
	})
}

// handleGetPatternSet returns one stored pattern set
func (s *Server) handleGetPatternSet(c *gin.Context) {
	id, err := core.ParsePatternSetID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Pattern set ID is required"})
		return
	}

	ps, err := s.synthesis.GetPatternSet(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ps)
}

// handleDeletePatternSet removes one stored pattern set
func (s *Server) handleDeletePatternSet(c *gin.Context) {
	id, err := core.ParsePatternSetID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Pattern set ID is required"})
		return
	}

	if err := s.synthesis.DeletePatternSet(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleSynthesize generates rows from a pattern set or source table
func (s *Server) handleSynthesize(c *gin.Context) {
	var req struct {
		PatternSetID string              `json:"pattern_set_id"`
		PatternSet   *dataset.PatternSet `json:"pattern_set"`
		Path         string              `json:"path"`
		Table        *tablePayload       `json:"table"`
		RunID        string              `json:"run_id"`
		Seed         int64               `json:"seed"`
		Size         int                 `json:"size"`
		BinSize      int                 `json:"bin_size"`
		Categorical  []string            `json:"categorical"`
		Exclude      []string            `json:"exclude"`
		Retains      []string            `json:"retains"`
		Pseudonyms   []string            `json:"pseudonyms"`
		Uniform      []string            `json:"uniform"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	result, err := s.synthesis.Synthesize(c.Request.Context(), app.SynthesizeRequest{
		PatternSetID: core.PatternSetID(req.PatternSetID),
		PatternSet:   req.PatternSet,
		SourcePath:   req.Path,
		SourceTable:  req.Table.toTable(),
		RunID:        core.RunID(req.RunID),
		Seed:         req.Seed,
		Size:         req.Size,
		BinSize:      req.BinSize,
		Categorical:  req.Categorical,
		Exclude:      req.Exclude,
		Retains:      req.Retains,
		Pseudonyms:   req.Pseudonyms,
		Uniform:      req.Uniform,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":     result.RunID,
		"table":      fromTable(result.Table),
		"rows":       result.Rows,
		"columns":    result.Columns,
		"runtime_ms": result.RuntimeMs,
	})
}

// handlePseudonymize masks a source table value-for-value
func (s *Server) handlePseudonymize(c *gin.Context) {
	var req struct {
		Path  string        `json:"path"`
		Table *tablePayload `json:"table"`
		RunID string        `json:"run_id"`
		Seed  int64         `json:"seed"`
		Size  int           `json:"size"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	result, err := s.synthesis.Pseudonymize(c.Request.Context(), app.PseudonymizeRequest{
		Path:  req.Path,
		Table: req.Table.toTable(),
		RunID: core.RunID(req.RunID),
		Seed:  req.Seed,
		Size:  req.Size,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":     result.RunID,
		"table":      fromTable(result.Table),
		"rows":       result.Rows,
		"runtime_ms": result.RuntimeMs,
	})
}

// handleQuality evaluates synthesized output against its source
func (s *Server) handleQuality(c *gin.Context) {
	var req struct {
		SourcePath  string        `json:"source_path"`
		SourceTable *tablePayload `json:"source_table"`
		SynthPath   string        `json:"synth_path"`
		SynthTable  *tablePayload `json:"synth_table"`
		BinSize     int           `json:"bin_size"`
		Categorical []string      `json:"categorical"`
		Format      string        `json:"format"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	result, err := s.quality.Evaluate(c.Request.Context(), app.QualityReportRequest{
		SourcePath:  req.SourcePath,
		SourceTable: req.SourceTable.toTable(),
		SynthPath:   req.SynthPath,
		SynthTable:  req.SynthTable.toTable(),
		BinSize:     req.BinSize,
		Categorical: req.Categorical,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	switch req.Format {
	case "html":
		c.Data(http.StatusOK, "text/html; charset=utf-8", result.Report.HTML())
	case "markdown":
		c.String(http.StatusOK, result.Report.Markdown())
	default:
		c.JSON(http.StatusOK, gin.H{
			"report":     result.Report,
			"runtime_ms": result.RuntimeMs,
		})
	}
}

// respondError maps service errors onto HTTP status codes
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case core.IsNotFoundError(err):
		status = http.StatusNotFound
	case core.IsValidationError(err) || core.IsUnsupportedError(err):
		status = http.StatusBadRequest
	default:
		switch errors.GetCode(err) {
		case errors.CodeInvalidInput, errors.CodeValidationError, errors.CodeUnsupportedFormat:
			status = http.StatusBadRequest
		case errors.CodeNotFound:
			status = http.StatusNotFound
		}
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed: %v", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
