package hdl

import (
	"strconv"
	"strings"
)

// BinaryValue is the value of a signal together with its width.
type BinaryValue struct {
	Bits  uint64
	Width int
}

// Integer returns the value as an unsigned integer.
func (v BinaryValue) Integer() uint64 {
	return v.Bits
}

// String returns the value in binary, most significant bit first, padded to
// the width of the signal.
func (v BinaryValue) String() string {
	s := strconv.FormatUint(v.Bits, 2)
	if len(s) >= v.Width {
		return s
	}

	return strings.Repeat("0", v.Width-len(s)) + s
}

// Mask returns the largest value a signal of the given width can hold.
func Mask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}

	return (uint64(1) << uint(width)) - 1
}

// Fits reports whether v can be represented with width bits.
func Fits(v uint64, width int) bool {
	return v&^Mask(width) == 0
}
