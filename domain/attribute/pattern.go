package attribute

import (
	"encoding/json"
	"fmt"
	"sort"

	"gosynth/domain/core"
)

// Pattern is the portable summary of an attribute: a complete sufficient
// statistic for encoding and synthesis, reconstructible without the raw
// data. Bins hold numbers for non-categorical attributes (histogram left
// edges; epoch seconds for datetime) and kind-typed labels for categorical
// ones (datetime categories serialize as "M/D/YYYY" strings).
type Pattern struct {
	Name        string        `json:"name"`
	Kind        Kind          `json:"type"`
	Categorical bool          `json:"categorical"`
	Min         float64       `json:"min"`
	Max         float64       `json:"max"`
	Decimals    *int          `json:"decimals"`
	Bins        []interface{} `json:"bins"`
	Prs         []float64     `json:"prs"`
}

// ToPattern exports the attribute's derived state.
func (a *Attribute) ToPattern() Pattern {
	p := Pattern{
		Name:        a.name,
		Kind:        a.kind,
		Categorical: a.categorical,
		Min:         a.min,
		Max:         a.max,
		Prs:         a.Probabilities(),
	}
	if a.kind == KindFloat {
		d := a.decimals
		p.Decimals = &d
	}

	if a.categorical {
		bins := make([]interface{}, len(a.cats))
		for i, c := range a.cats {
			switch a.kind {
			case KindInteger:
				bins[i] = c.Int()
			case KindFloat:
				bins[i] = c.Float()
			case KindString:
				bins[i] = c.Str()
			case KindDatetime:
				bins[i] = FormatEpochDay(c.Seconds())
			}
		}
		p.Bins = bins
		return p
	}

	bins := make([]interface{}, len(a.bins))
	for i, b := range a.bins {
		bins[i] = b
	}
	p.Bins = bins
	return p
}

// FromPattern reconstructs an attribute from a serialized pattern. The
// result has no raw cells: encoding of supplied values and synthesis work,
// operations that re-read the source data do not.
func FromPattern(p Pattern) (*Attribute, error) {
	a := &Attribute{}
	if err := a.ApplyPattern(p); err != nil {
		return nil, err
	}
	return a, nil
}

// ApplyPattern installs a pattern on an attribute in the Unset state and
// latches it to Computed. Applying to an already-computed attribute is a
// no-op, making repeated installs idempotent.
func (a *Attribute) ApplyPattern(p Pattern) error {
	if a.state == PatternComputed {
		return nil
	}

	kind, err := ParseKind(string(p.Kind))
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidPattern, err)
	}
	if len(p.Bins) == 0 || len(p.Bins) != len(p.Prs) {
		return fmt.Errorf("%w: %d bins vs %d prs", core.ErrInvalidPattern, len(p.Bins), len(p.Prs))
	}
	for _, pr := range p.Prs {
		if pr < 0 {
			return fmt.Errorf("%w: negative probability", core.ErrInvalidPattern)
		}
	}

	a.name = p.Name
	a.kind = kind
	a.categorical = p.Categorical
	a.min = p.Min
	a.max = p.Max
	if kind == KindFloat && p.Decimals != nil {
		a.decimals = *p.Decimals
	}

	if p.Categorical {
		cats := make([]Value, len(p.Bins))
		index := make(map[string]int, len(p.Bins))
		for i, raw := range p.Bins {
			v, err := categoryFromPattern(kind, raw)
			if err != nil {
				return err
			}
			cats[i] = v
			index[v.key()] = i
		}
		a.cats = cats
		a.catIndex = index
		a.binSize = DefaultBinSize
	} else {
		bins := make([]float64, len(p.Bins))
		for i, raw := range p.Bins {
			f, ok := patternNumber(raw)
			if !ok {
				return fmt.Errorf("%w: non-numeric bin edge %v", core.ErrInvalidPattern, raw)
			}
			bins[i] = f
		}
		if !sort.Float64sAreSorted(bins) {
			return fmt.Errorf("%w: bin edges not ascending", core.ErrInvalidPattern)
		}
		a.bins = bins
		a.binSize = len(bins)
		a.step = (a.max - a.min) / float64(a.binSize)
	}

	a.prs = append([]float64(nil), p.Prs...)
	a.counts = nil
	a.state = PatternComputed
	return nil
}

// categoryFromPattern decodes one categorical bin label. Labels arrive
// either as the Go values ToPattern wrote or as the generic forms
// encoding/json produces.
func categoryFromPattern(kind Kind, raw interface{}) (Value, error) {
	switch kind {
	case KindInteger:
		if f, ok := patternNumber(raw); ok {
			return NewIntegerValue(int64(f)), nil
		}
	case KindFloat:
		if f, ok := patternNumber(raw); ok {
			return NewFloatValue(f), nil
		}
	case KindString:
		if s, ok := raw.(string); ok {
			return NewStringValue(s), nil
		}
	case KindDatetime:
		switch v := raw.(type) {
		case string:
			if t, ok := ParseDatetime(v); ok {
				return NewDatetimeValue(EpochSeconds(t)), nil
			}
		default:
			if f, ok := patternNumber(raw); ok {
				return NewDatetimeValue(int64(f)), nil
			}
		}
	}
	return Value{}, fmt.Errorf("%w: bad %s bin label %v", core.ErrInvalidPattern, kind, raw)
}

// patternNumber accepts the numeric forms a bin entry can take after a
// JSON round trip or direct construction.
func patternNumber(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}
