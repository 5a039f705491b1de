package quality

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"gosynth/domain/attribute"
	"gosynth/domain/core"
	"gosynth/domain/dataset"
)

// SignificanceLevel is the p-value threshold below which a column is
// flagged as diverging from its source distribution.
const SignificanceLevel = 0.05

// smoothingEpsilon keeps divergence terms finite when one distribution
// has empty cells the other populates.
const smoothingEpsilon = 1e-10

// expectedFloor replaces zero expected cell counts so the chi-square
// statistic stays finite and JSON-safe.
const expectedFloor = 0.5

// ColumnQuality holds similarity metrics for one column, tabulated on
// the source attribute's categories or bin edges.
type ColumnQuality struct {
	Name         string  `json:"name"`
	Kind         string  `json:"type"`
	Categorical  bool    `json:"categorical"`
	ChiSquare    float64 `json:"chi_square"`
	PValue       float64 `json:"p_value"`
	KLDivergence float64 `json:"kl_divergence"`
	JSDivergence float64 `json:"js_divergence"`
	Pass         bool    `json:"pass"`
	Note         string  `json:"note,omitempty"`
}

// Report aggregates column quality metrics for one synthesis run.
type Report struct {
	Dataset    string          `json:"dataset"`
	SourceRows int             `json:"source_rows"`
	SynthRows  int             `json:"synth_rows"`
	Columns    []ColumnQuality `json:"columns"`
	PassRate   float64         `json:"pass_rate"`
	CreatedAt  core.Timestamp  `json:"created_at"`
}

// Evaluate compares a source dataset against a synthesized one column by
// column. Every source column must exist in the synthesized dataset and
// both sides must hold raw values. Columns are tabulated on the source
// attribute's axis, so the metrics measure how well the synthesis
// reproduced the source distribution.
func Evaluate(source, synth *dataset.Dataset) (*Report, error) {
	if source == nil || synth == nil {
		return nil, core.NewValidationError("datasets", "source and synthesized datasets are required")
	}

	report := &Report{
		Dataset:    source.Name(),
		SourceRows: source.Size(),
		SynthRows:  synth.Size(),
		CreatedAt:  core.Now(),
	}

	passed := 0
	for _, name := range source.ColumnNames() {
		src, _ := source.Column(name)
		syn, ok := synth.Column(name)
		if !ok {
			return nil, core.NewDomainError(name, core.ErrColumnNotFound)
		}

		cq, err := compareColumn(src, syn)
		if err != nil {
			return nil, fmt.Errorf("failed to compare column %s: %w", name, err)
		}
		if cq.Pass {
			passed++
		}
		report.Columns = append(report.Columns, cq)
	}

	if n := len(report.Columns); n > 0 {
		rate, err := stats.Round(float64(passed)/float64(n)*100, 2)
		if err != nil {
			return nil, err
		}
		report.PassRate = rate
	}
	return report, nil
}

func compareColumn(src, syn *attribute.Attribute) (ColumnQuality, error) {
	cq := ColumnQuality{
		Name:        src.Name(),
		Kind:        src.Kind().String(),
		Categorical: src.IsCategorical(),
	}

	if src.IsCategorical() != syn.IsCategorical() {
		// Re-modeled synthetic output lost or gained the categorical flag;
		// the distributions have no common axis to compare on.
		cq.Note = "categorical flag mismatch"
		return cq, nil
	}

	var observed, expected []float64
	var err error
	if src.IsCategorical() {
		cats := src.Categories()
		if observed, err = syn.CategoryCounts(cats, false); err != nil {
			return cq, err
		}
		if expected, err = src.CategoryCounts(cats, false); err != nil {
			return cq, err
		}
	} else {
		// Close the axis at the source max so the top bin is counted.
		edges := src.Bins()
		if top := src.Max(); len(edges) > 0 && top > edges[len(edges)-1] {
			edges = append(edges, top)
		}
		if observed, err = syn.HistogramCounts(edges, false); err != nil {
			return cq, err
		}
		if expected, err = src.HistogramCounts(edges, false); err != nil {
			return cq, err
		}
	}

	cq.ChiSquare, cq.PValue = chiSquareTest(observed, expected)
	cq.KLDivergence = stat.KullbackLeibler(toDistribution(expected), toDistribution(observed))
	cq.JSDivergence = stat.JensenShannon(toDistribution(expected), toDistribution(observed))
	cq.Pass = cq.PValue > SignificanceLevel
	return cq, nil
}

// chiSquareTest runs a goodness-of-fit test of the observed counts
// against expected counts rescaled to the observed total.
func chiSquareTest(observed, expected []float64) (statistic, pValue float64) {
	obsTotal, _ := stats.Sum(observed)
	expTotal, _ := stats.Sum(expected)
	if obsTotal == 0 || expTotal == 0 {
		return 0, 1
	}

	scaled := make([]float64, len(expected))
	for i, e := range expected {
		scaled[i] = e * obsTotal / expTotal
		if scaled[i] == 0 && observed[i] > 0 {
			scaled[i] = expectedFloor
		}
	}

	statistic = stat.ChiSquare(observed, scaled)

	degreesFreedom := float64(len(observed) - 1)
	if degreesFreedom < 1 {
		degreesFreedom = 1
	}
	chiDist := distuv.ChiSquared{K: degreesFreedom}
	pValue = 1 - chiDist.CDF(statistic)
	return statistic, pValue
}

// toDistribution converts raw counts into a smoothed probability
// distribution with no zero cells.
func toDistribution(counts []float64) []float64 {
	out := make([]float64, len(counts))
	total := 0.0
	for i, c := range counts {
		out[i] = c + smoothingEpsilon
		total += out[i]
	}
	for i := range out {
		out[i] /= total
	}
	return out
}

// Markdown renders the report as a Markdown document with one summary
// block and a per-column metrics table.
func (r *Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Synthesis Quality Report: %s\n\n", r.Dataset)
	fmt.Fprintf(&b, "Generated %s\n\n", r.CreatedAt.String())
	fmt.Fprintf(&b, "- Source rows: %d\n", r.SourceRows)
	fmt.Fprintf(&b, "- Synthesized rows: %d\n", r.SynthRows)
	fmt.Fprintf(&b, "- Columns passing (p > %.2f): %.2f%%\n\n", SignificanceLevel, r.PassRate)

	b.WriteString("| Column | Type | Categorical | Chi-square | p-value | KL | JS | Pass |\n")
	b.WriteString("|--------|------|-------------|------------|---------|----|----|------|\n")
	for _, c := range r.Columns {
		status := "no"
		if c.Pass {
			status = "yes"
		}
		if c.Note != "" {
			status = c.Note
		}
		fmt.Fprintf(&b, "| %s | %s | %t | %.4f | %.4f | %.4f | %.4f | %s |\n",
			c.Name, c.Kind, c.Categorical, c.ChiSquare, c.PValue, c.KLDivergence, c.JSDivergence, status)
	}
	return b.String()
}

// HTML converts the Markdown rendering into an HTML fragment.
func (r *Report) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse([]byte(r.Markdown()))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}
