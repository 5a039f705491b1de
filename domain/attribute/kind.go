package attribute

import (
	"fmt"

	"gosynth/domain/core"
)

// Kind classifies the scalars an attribute holds. It is a closed set:
// every dispatch point in this package switches exhaustively over these
// four kinds, so adding a kind means visiting every switch.
type Kind string

const (
	KindInteger  Kind = "integer"
	KindFloat    Kind = "float"
	KindString   Kind = "string"
	KindDatetime Kind = "datetime"
)

// ParseKind validates a serialized kind label.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindInteger, KindFloat, KindString, KindDatetime:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnknownKind, s)
	}
}

// MustKind parses a kind label and panics on failure. Intended for tests
// and compile-time-known literals.
func MustKind(s string) Kind {
	k, err := ParseKind(s)
	if err != nil {
		panic(err)
	}
	return k
}

// String returns the serialized label.
func (k Kind) String() string {
	return string(k)
}

// IsNumerical reports whether values of this kind are numbers in their own
// right. Datetime is excluded: it is handled on its epoch-second
// projection, not as a number.
func (k Kind) IsNumerical() bool {
	return k == KindInteger || k == KindFloat
}

// IsValid reports whether k is one of the four supported kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindInteger, KindFloat, KindString, KindDatetime:
		return true
	}
	return false
}
