package attribute

// InferKind classifies a sequence of parsed cells into one of the four
// supported kinds, skipping missing cells:
//
//   - all integers                  -> integer
//   - numeric with at least a float -> float
//   - any non-numeric cell          -> string, unless every non-missing
//     cell is text that parses as a calendar date/time -> datetime
//
// A column with no observed cells defaults to string; callers guard the
// all-missing case before using the result.
func InferKind(cells []Value) Kind {
	ints, floats, texts := 0, 0, 0
	allDatetime := true
	for _, c := range cells {
		if c.IsMissing() {
			continue
		}
		switch c.Kind {
		case KindInteger:
			ints++
			allDatetime = false
		case KindFloat:
			floats++
			allDatetime = false
		default:
			texts++
			if allDatetime {
				if _, ok := ParseDatetime(c.Str()); !ok {
					allDatetime = false
				}
			}
		}
	}

	switch {
	case texts > 0:
		if allDatetime {
			return KindDatetime
		}
		return KindString
	case floats > 0:
		return KindFloat
	case ints > 0:
		return KindInteger
	default:
		return KindString
	}
}

// inferCategorical decides the categorical flag: a caller-supplied true
// always wins; otherwise only string columns with at least one repeated
// value qualify. The check runs after imputation, as imputed cells repeat
// the mode and legitimately count as duplicates.
func inferCategorical(kind Kind, filled []Value, forced bool) bool {
	if forced {
		return true
	}
	return kind == KindString && hasDuplicates(filled)
}
