package varint

import (
	mrand "math/rand"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func padded(b ...byte) []byte {
	out := make([]byte, len(b)+Padding)
	copy(out, b)

	return out[:len(b)]
}

func TestDecodeWellFormed(t *testing.T) {
	tests := []struct {
		name  string
		width Width
		input []byte
		want  uint64
		n     int
	}{
		{"narrow zero", Narrow, []byte{0x00}, 0, 1},
		{"narrow 127", Narrow, []byte{0x7f}, 127, 1},
		{"narrow 128", Narrow, []byte{0x80, 0x01}, 128, 2},
		{"narrow 200", Narrow, []byte{0xc8, 0x01}, 200, 2},
		{"narrow max", Narrow, []byte{0xff, 0x01}, 255, 2},
		{"narrow non-canonical zero", Narrow, []byte{0x80, 0x00}, 0, 2},
		{"wide 300", Wide, []byte{0xac, 0x02}, 300, 2},
		{"wide 2047", Wide, []byte{0xff, 0x0f}, 2047, 2},
		{"wide 16384", Wide, []byte{0x80, 0x80, 0x01}, 16384, 3},
		{"wide max", Wide, []byte{0xff, 0xff, 0x03}, 65535, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := ForWidth(tt.width)
			buf := padded(tt.input...)

			v, n, err := dec.Decode(buf)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
			assert.Equal(t, tt.n, n)

			uv, un := dec.DecodeUnchecked(unsafe.Pointer(unsafe.SliceData(buf)))
			assert.Equal(t, tt.want, uv)
			assert.Equal(t, tt.n, un)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		width Width
		input []byte
		want  error
	}{
		{"empty", Narrow, nil, ErrTruncated},
		{"narrow continuation at end", Narrow, []byte{0x80}, ErrTruncated},
		{"wide continuation at end", Wide, []byte{0x80, 0x80}, ErrTruncated},
		{"narrow value too large", Narrow, []byte{0x80, 0x02}, ErrOverflow},
		{"narrow encoding too long", Narrow, []byte{0x80, 0x80, 0x01}, ErrOverflow},
		{"wide value too large", Wide, []byte{0xff, 0xff, 0x04}, ErrOverflow},
		{"wide encoding too long", Wide, []byte{0x80, 0x80, 0x80, 0x01}, ErrOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, n, err := ForWidth(tt.width).Decode(tt.input)
			require.ErrorIs(t, err, tt.want)
			assert.Zero(t, n)
		})
	}
}

func TestDecodeStrategiesAgree(t *testing.T) {
	for _, w := range []Width{Narrow, Wide} {
		t.Run(w.String(), func(t *testing.T) {
			rng := mrand.New(mrand.NewSource(7))
			dec := ForWidth(w)

			const count = 4096
			want := make([]uint64, count)

			var buf []byte
			for i := range want {
				want[i] = uint64(rng.Int63n(int64(w.Max()) + 1))
				buf = AppendUint(buf, want[i])
			}

			logical := len(buf)
			buf = append(buf, make([]byte, Padding)...)

			var (
				checked, unchecked       []uint64
				checkedLen, uncheckedLen []int
			)

			rest := buf[:logical]
			for range count {
				v, n, err := dec.Decode(rest)
				require.NoError(t, err)
				checked = append(checked, v)
				checkedLen = append(checkedLen, n)
				rest = rest[n:]
			}
			assert.Empty(t, rest)

			p := unsafe.Pointer(unsafe.SliceData(buf))
			consumed := 0
			for range count {
				v, n := dec.DecodeUnchecked(p)
				unchecked = append(unchecked, v)
				uncheckedLen = append(uncheckedLen, n)
				p = unsafe.Add(p, n)
				consumed += n
			}

			assert.Equal(t, want, checked)
			assert.Equal(t, checked, unchecked)
			assert.Equal(t, checkedLen, uncheckedLen)
			assert.Equal(t, logical, consumed)
		})
	}
}

func TestDecodeUncheckedCapsLength(t *testing.T) {
	buf := padded(0xff, 0xff, 0xff, 0xff, 0xff)

	_, n := ForWidth(Narrow).DecodeUnchecked(unsafe.Pointer(unsafe.SliceData(buf)))
	assert.Equal(t, Narrow.MaxLen(), n)

	_, n = ForWidth(Wide).DecodeUnchecked(unsafe.Pointer(unsafe.SliceData(buf)))
	assert.Equal(t, Wide.MaxLen(), n)
}

func TestAppendUint(t *testing.T) {
	tests := []struct {
		input uint64
		want  []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{255, []byte{0xff, 0x01}},
		{16383, []byte{0xff, 0x7f}},
		{16384, []byte{0x80, 0x80, 0x01}},
		{65535, []byte{0xff, 0xff, 0x03}},
	}

	for _, tt := range tests {
		got := AppendUint(nil, tt.input)
		assert.Equal(t, tt.want, got, "AppendUint(%d)", tt.input)
		assert.Equal(t, len(tt.want), Len(tt.input), "Len(%d)", tt.input)
	}
}

func TestWidth(t *testing.T) {
	assert.Equal(t, "u8", Narrow.String())
	assert.Equal(t, "u16", Wide.String())
	assert.Equal(t, Narrow, ForWidth(Narrow).Width())
	assert.Equal(t, Wide, ForWidth(Wide).Width())
}

func BenchmarkDecode(b *testing.B) {
	for _, w := range []Width{Narrow, Wide} {
		input := padded(AppendUint(nil, w.Max())...)
		dec := ForWidth(w)

		b.Run(w.String()+"/checked", func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(input)))

			for i := 0; i < b.N; i++ {
				if _, _, err := dec.Decode(input); err != nil {
					b.Fatal(err)
				}
			}
		})

		b.Run(w.String()+"/unchecked", func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(input)))

			p := unsafe.Pointer(unsafe.SliceData(input))
			for i := 0; i < b.N; i++ {
				dec.DecodeUnchecked(p)
			}
		})
	}
}
