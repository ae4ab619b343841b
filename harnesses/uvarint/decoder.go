package main

import (
	"encoding/binary"
	"unsafe"

	"github.com/weiihann/lebbench/varint"
)

// uvarintDecoder decodes with encoding/binary as a reference implementation
// behind the same two entry points as the built-in decoder.
type uvarintDecoder struct {
	width varint.Width
}

func (d uvarintDecoder) Width() varint.Width {
	return d.width
}

func (d uvarintDecoder) Decode(b []byte) (uint64, int, error) {
	v, n := binary.Uvarint(b)

	switch {
	case n == 0:
		return 0, 0, varint.ErrTruncated
	case n < 0, n > d.width.MaxLen(), v > d.width.Max():
		return 0, 0, varint.ErrOverflow
	}

	return v, n, nil
}

func (d uvarintDecoder) DecodeUnchecked(p unsafe.Pointer) (uint64, int) {
	v, n := binary.Uvarint(unsafe.Slice((*byte)(p), varint.Padding))
	if n <= 0 {
		return 0, 1
	}

	return v, n
}
