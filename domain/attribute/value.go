package attribute

import (
	"strconv"
	"strings"
)

// Value is a single cell of a column: a tagged union over the four
// supported kinds plus an explicit missing marker. Exactly one payload
// field is meaningful, selected by Kind; a missing cell carries no payload
// at all.
type Value struct {
	Kind    Kind
	Missing bool

	intVal   int64
	floatVal float64
	strVal   string
	secVal   int64 // datetime payload: epoch seconds, midnight UTC
}

// NewIntegerValue creates an integer cell.
func NewIntegerValue(v int64) Value {
	return Value{Kind: KindInteger, intVal: v}
}

// NewFloatValue creates a float cell.
func NewFloatValue(v float64) Value {
	return Value{Kind: KindFloat, floatVal: v}
}

// NewStringValue creates a string cell.
func NewStringValue(v string) Value {
	return Value{Kind: KindString, strVal: v}
}

// NewDatetimeValue creates a datetime cell from epoch seconds.
func NewDatetimeValue(sec int64) Value {
	return Value{Kind: KindDatetime, secVal: sec}
}

// NewMissingValue creates a missing cell.
func NewMissingValue() Value {
	return Value{Missing: true}
}

// IsMissing reports whether the cell holds no value.
func (v Value) IsMissing() bool {
	return v.Missing
}

// Int returns the integer payload. Valid only for KindInteger.
func (v Value) Int() int64 {
	return v.intVal
}

// Float returns the float payload. Valid only for KindFloat.
func (v Value) Float() float64 {
	return v.floatVal
}

// Str returns the string payload. Valid only for KindString.
func (v Value) Str() string {
	return v.strVal
}

// Seconds returns the epoch-second payload. Valid only for KindDatetime.
func (v Value) Seconds() int64 {
	return v.secVal
}

// Float64 projects the cell onto the numeric axis used for binning:
// integers and floats as themselves, datetimes as epoch seconds, strings
// as their rune-counted length.
func (v Value) Float64() float64 {
	switch v.Kind {
	case KindInteger:
		return float64(v.intVal)
	case KindFloat:
		return v.floatVal
	case KindDatetime:
		return float64(v.secVal)
	case KindString:
		return float64(len([]rune(v.strVal)))
	}
	return 0
}

// String renders the cell in its display form: the form written to
// synthesized tables and pattern records. Datetime cells format as
// "M/D/YYYY"; floats use the shortest decimal representation.
func (v Value) String() string {
	if v.Missing {
		return ""
	}
	switch v.Kind {
	case KindInteger:
		return strconv.FormatInt(v.intVal, 10)
	case KindFloat:
		return strconv.FormatFloat(v.floatVal, 'f', -1, 64)
	case KindString:
		return v.strVal
	case KindDatetime:
		return FormatEpochDay(v.secVal)
	}
	return ""
}

// Equal reports whether two cells hold the same value. Missing cells are
// never equal to anything, including each other.
func (v Value) Equal(o Value) bool {
	if v.Missing || o.Missing || v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindInteger:
		return v.intVal == o.intVal
	case KindFloat:
		return v.floatVal == o.floatVal
	case KindString:
		return v.strVal == o.strVal
	case KindDatetime:
		return v.secVal == o.secVal
	}
	return false
}

// Less orders two cells of the same kind: numerically for integer, float
// and datetime, lexicographically for strings. It defines the canonical
// bin order of categorical attributes.
func (v Value) Less(o Value) bool {
	switch v.Kind {
	case KindInteger:
		return v.intVal < o.intVal
	case KindFloat:
		return v.floatVal < o.floatVal
	case KindString:
		return strings.Compare(v.strVal, o.strVal) < 0
	case KindDatetime:
		return v.secVal < o.secVal
	}
	return false
}

// key is a map-safe identity for tallies and lookups. Only comparable
// within one kind, which is all the callers need: a column is
// kind-homogeneous after normalization.
func (v Value) key() string {
	if v.Missing {
		return "\x00missing"
	}
	switch v.Kind {
	case KindInteger:
		return "i:" + strconv.FormatInt(v.intVal, 10)
	case KindFloat:
		return "f:" + strconv.FormatFloat(v.floatVal, 'g', -1, 64)
	case KindString:
		return "s:" + v.strVal
	case KindDatetime:
		return "d:" + strconv.FormatInt(v.secVal, 10)
	}
	return ""
}
