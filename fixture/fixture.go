// Package fixture reads and writes the shared LEB128 stream files replayed by
// the benchmark. A fixture is an 8-byte little-endian value count followed by
// the concatenated encodings, with no trailing data on disk.
package fixture

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"

	"github.com/weiihann/lebbench/varint"
)

const (
	// HeaderSize is the length of the value-count header.
	HeaderSize = 8
	// Ext is the file extension of fixture files.
	Ext = ".bin"
)

// Stream is a loaded fixture. Data holds the payload followed by
// varint.Padding zero bytes; only the first Len bytes are logical data.
type Stream struct {
	Name   string
	Path   string
	Data   []byte
	Len    int
	Count  uint64
	Digest digest.Digest
}

// Payload returns the logical encoded bytes without padding.
func (s *Stream) Payload() []byte {
	return s.Data[:s.Len]
}

// Path returns the fixture path for a scenario name.
func Path(dir, name string) string {
	return filepath.Join(dir, name+Ext)
}

// Load reads the fixture for the named scenario from dir and pads it for the
// unchecked decode path.
func Load(dir, name string) (*Stream, error) {
	path := Path(dir, name)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf(
			"open data file %s for scenario %s: %w", path, name, err,
		)
	}
	defer f.Close()

	digester := digest.Canonical.Digester()
	r := io.TeeReader(f, digester.Hash())

	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf(
			"read header from %s for scenario %s: %w", path, name, err,
		)
	}

	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf(
			"read body from %s for scenario %s: %w", path, name, err,
		)
	}

	logical := len(payload)
	payload = append(payload, make([]byte, varint.Padding)...)

	return &Stream{
		Name:   name,
		Path:   path,
		Data:   payload,
		Len:    logical,
		Count:  binary.LittleEndian.Uint64(header[:]),
		Digest: digester.Digest(),
	}, nil
}

// Write writes a fixture with count values and the given encoded payload.
func Write(w io.Writer, count uint64, payload []byte) error {
	var header [HeaderSize]byte
	binary.LittleEndian.PutUint64(header[:], count)

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}

	return nil
}
