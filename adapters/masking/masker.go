package masking

import (
	"math/rand"

	"gosynth/domain/attribute"
	"gosynth/domain/core"
)

// DefaultMaskLength is the number of hex characters a mask keeps. Long
// enough that collisions are not a practical concern, short enough to stay
// readable in table output.
const DefaultMaskLength = 16

// alphabet is the character pool for synthesized strings.
const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var _ attribute.Masker = (*HashMasker)(nil)

// HashMasker masks values by hashing: the same input always produces the
// same mask, distinct inputs produce distinct masks, and the original
// value cannot be read back. It also supplies the random strings
// string-kind synthesis needs.
type HashMasker struct {
	length int
}

// NewHashMasker creates a masker keeping length hex characters per mask.
// Zero means DefaultMaskLength; the full digest is 64.
func NewHashMasker(length int) *HashMasker {
	if length <= 0 {
		length = DefaultMaskLength
	}
	if length > 64 {
		length = 64
	}
	return &HashMasker{length: length}
}

// Mask returns the truncated hex digest of the value.
func (m *HashMasker) Mask(value string) string {
	return core.HashString(value).Short(m.length)
}

// RandString draws length characters from the alphanumeric pool.
func (m *HashMasker) RandString(r *rand.Rand, length int) string {
	if length <= 0 {
		return ""
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(b)
}
