package dataset

import (
	"context"
	"fmt"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"gosynth/domain/attribute"
	"gosynth/domain/core"
)

// maxColumnWorkers bounds per-column parallelism during builds and
// synthesis.
const maxColumnWorkers = 8

// Streams yields the column-scoped random stream one column's draws run
// on. Column-scoped streams keep each column's output independent of the
// others, so per-column work can run in any order or in parallel without
// changing results.
type Streams func(column string) *rand.Rand

// BuildOptions control how a table's columns are modeled.
type BuildOptions struct {
	// BinSize overrides the histogram resolution; 0 keeps the default.
	BinSize int
	// Categorical names the columns modeled as fixed category sets
	// regardless of what detection would decide.
	Categorical []string
	// Exclude names columns left out of the model entirely, such as
	// free-text fields no column statistic can represent.
	Exclude []string
}

// SynthesisOptions select the generation strategy per column. Columns not
// named in any list draw from their learned distribution.
type SynthesisOptions struct {
	// Size is the number of rows to generate; 0 means the source size.
	Size int
	// Retains are copied through from the source data unchanged.
	Retains []string
	// Pseudonyms are masked value-for-value instead of modeled.
	Pseudonyms []string
	// Uniform columns draw evenly across their domain, ignoring the
	// learned distribution.
	Uniform []string
}

// Dataset is a collection of modeled columns sharing one source table:
// the unit patterns are learned from, serialized as, and synthesized
// against. Column order follows the source header order.
type Dataset struct {
	name    string
	size    int
	order   []string
	columns map[string]*attribute.Attribute
}

// Build models every column of a table concurrently and assembles the
// result. Any column failing to model fails the build.
func Build(ctx context.Context, table *Table, opts BuildOptions) (*Dataset, error) {
	if table == nil {
		return nil, core.NewValidationError("table", "table is nil")
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if table.RowCount() == 0 {
		return nil, core.NewValidationError("table", "table has no data rows")
	}

	forced := toSet(opts.Categorical)
	excluded := toSet(opts.Exclude)
	headers := make([]string, 0, len(table.Headers))
	for _, name := range table.Headers {
		if !excluded[name] {
			headers = append(headers, name)
		}
	}
	if len(headers) == 0 {
		return nil, core.NewValidationError("exclude", "every column is excluded")
	}

	attrs := make([]*attribute.Attribute, len(headers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxColumnWorkers)
	for i := range headers {
		i := i
		name := headers[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cells, _ := table.Column(name)
			a, err := attribute.New(attribute.SeriesFromStrings(name, cells), attribute.Options{
				Categorical: forced[name],
				BinSize:     opts.BinSize,
			})
			if err != nil {
				return err
			}
			attrs[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := &Dataset{
		name:    table.Name,
		size:    table.RowCount(),
		order:   headers,
		columns: make(map[string]*attribute.Attribute, len(attrs)),
	}
	for i, a := range attrs {
		d.columns[d.order[i]] = a
	}
	return d, nil
}

// Name returns the source table name.
func (d *Dataset) Name() string { return d.name }

// Size returns the source row count; zero when restored from patterns.
func (d *Dataset) Size() int { return d.size }

// ColumnNames returns the column names in source order.
func (d *Dataset) ColumnNames() []string {
	return append([]string(nil), d.order...)
}

// NumColumns returns the number of modeled columns.
func (d *Dataset) NumColumns() int { return len(d.order) }

// Column returns the modeled attribute for a named column.
func (d *Dataset) Column(name string) (*attribute.Attribute, bool) {
	a, ok := d.columns[name]
	return a, ok
}

// Synthesize generates a table of the requested size, one strategy per
// column: retained columns copy through, pseudonym columns mask, uniform
// columns sweep their domain, everything else draws from its learned
// distribution. Columns run concurrently on their own streams.
func (d *Dataset) Synthesize(ctx context.Context, streams Streams, masker attribute.Masker, opts SynthesisOptions) (*Table, error) {
	if streams == nil {
		return nil, core.NewValidationError("streams", "stream factory is nil")
	}
	size := opts.Size
	if size <= 0 {
		size = d.size
	}
	if size <= 0 {
		return nil, core.NewValidationError("size", "no source rows to default to")
	}
	for _, name := range append(append(append([]string(nil), opts.Retains...), opts.Pseudonyms...), opts.Uniform...) {
		if _, ok := d.columns[name]; !ok {
			return nil, fmt.Errorf("%w: %s", core.ErrColumnNotFound, name)
		}
	}

	retain := toSet(opts.Retains)
	pseudo := toSet(opts.Pseudonyms)
	uniform := toSet(opts.Uniform)

	cols := make([][]string, len(d.order))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxColumnWorkers)
	for i := range d.order {
		i := i
		name := d.order[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a := d.columns[name]
			switch {
			case retain[name]:
				if size != d.size || !a.HasRawValues() {
					return core.NewDomainError(name, core.ErrNoRawValues)
				}
				values := a.Values()
				out := make([]string, size)
				for j, v := range values {
					out[j] = v.String()
				}
				cols[i] = out
			case pseudo[name]:
				out, err := a.Pseudonymize(streams(name), size, masker)
				if err != nil {
					return err
				}
				cols[i] = out
			case uniform[name]:
				values, err := a.Random(streams(name), size, masker)
				if err != nil {
					return err
				}
				cols[i] = displayColumn(values)
			default:
				values, err := a.Choice(streams(name), size, masker)
				if err != nil {
					return err
				}
				cols[i] = displayColumn(values)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := NewTable(d.name, d.order)
	out.Rows = make([][]string, size)
	for ri := 0; ri < size; ri++ {
		row := make([]string, len(d.order))
		for ci := range d.order {
			row[ci] = cols[ci][ri]
		}
		out.Rows[ri] = row
	}
	return out, nil
}

// Pseudonymize masks every column of the dataset, preserving the source
// equality structure row for row.
func (d *Dataset) Pseudonymize(ctx context.Context, streams Streams, masker attribute.Masker, size int) (*Table, error) {
	return d.Synthesize(ctx, streams, masker, SynthesisOptions{
		Size:       size,
		Pseudonyms: d.ColumnNames(),
	})
}

func displayColumn(values []attribute.Value) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
