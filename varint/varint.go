// Package varint implements unsigned LEB128 decoding for the 8-bit and 16-bit
// integer widths exercised by the benchmark, in a bounds-checked and an
// unchecked, pointer-advancing flavour.
package varint

import (
	"encoding/binary"
	"errors"
	"math"
	"math/bits"
	"unsafe"
)

// Padding is the number of readable bytes DecodeUnchecked requires at the
// cursor. Buffers handed to the unchecked path must carry at least this many
// bytes past the last encoded value.
const Padding = 16

var (
	// ErrTruncated is returned when the buffer ends before the terminating
	// byte of an encoding.
	ErrTruncated = errors.New("varint: truncated encoding")
	// ErrOverflow is returned when an encoding is longer than the width
	// allows or its value does not fit the width.
	ErrOverflow = errors.New("varint: value overflows width")
)

// Width selects the decoded integer size.
type Width uint8

const (
	// Narrow decodes 8-bit values (at most 2 encoded bytes).
	Narrow Width = iota
	// Wide decodes 16-bit values (at most 3 encoded bytes).
	Wide
)

func (w Width) String() string {
	switch w {
	case Narrow:
		return "u8"
	case Wide:
		return "u16"
	default:
		return "unknown"
	}
}

// MaxLen returns the longest valid encoding for the width.
func (w Width) MaxLen() int {
	if w == Wide {
		return 3
	}

	return 2
}

// Max returns the largest value representable in the width.
func (w Width) Max() uint64 {
	if w == Wide {
		return math.MaxUint16
	}

	return math.MaxUint8
}

// Decoder is the two-entry-point capability the harness benchmarks. Any
// implementation can be substituted as long as both methods agree on
// well-formed input.
type Decoder interface {
	// Width reports the integer width this decoder produces.
	Width() Width
	// Decode decodes one value from the start of b, validating that every
	// byte it touches lies within b.
	Decode(b []byte) (v uint64, n int, err error)
	// DecodeUnchecked decodes one value at p without bounds validation.
	// At least Padding bytes must be readable at p. The result is undefined
	// for malformed input.
	DecodeUnchecked(p unsafe.Pointer) (v uint64, n int)
}

type decoder struct {
	width  Width
	maxLen int
	max    uint64
}

var (
	u8  = &decoder{width: Narrow, maxLen: Narrow.MaxLen(), max: Narrow.Max()}
	u16 = &decoder{width: Wide, maxLen: Wide.MaxLen(), max: Wide.Max()}
)

// ForWidth returns the built-in decoder for w.
func ForWidth(w Width) Decoder {
	if w == Wide {
		return u16
	}

	return u8
}

func (d *decoder) Width() Width {
	return d.width
}

func (d *decoder) Decode(b []byte) (uint64, int, error) {
	var v uint64

	for i := 0; i < d.maxLen; i++ {
		if i >= len(b) {
			return 0, 0, ErrTruncated
		}

		c := b[i]
		v |= uint64(c&0x7f) << (7 * uint(i))

		if c < 0x80 {
			if v > d.max {
				return 0, 0, ErrOverflow
			}

			return v, i + 1, nil
		}
	}

	return 0, 0, ErrOverflow
}

func (d *decoder) DecodeUnchecked(p unsafe.Pointer) (uint64, int) {
	chunk := binary.LittleEndian.Uint64(unsafe.Slice((*byte)(p), 8))

	// The first byte with a clear high bit terminates the encoding.
	n := bits.TrailingZeros64(^chunk&0x8080808080808080)>>3 + 1
	if n > d.maxLen {
		n = d.maxLen
	}

	v := chunk&0x7f | (chunk>>8&0x7f)<<7 | (chunk>>16&0x7f)<<14
	v &= 1<<(7*uint(n)) - 1

	return v, n
}

// AppendUint appends the unsigned LEB128 encoding of v to dst.
func AppendUint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}

	return append(dst, byte(v))
}

// Len returns the number of bytes AppendUint would write for v.
func Len(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}

	return n
}
