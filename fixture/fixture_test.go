package fixture

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/lebbench/varint"
)

func writeFixture(t *testing.T, dir, name string, count uint64, payload []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, count, payload))
	require.NoError(t, os.WriteFile(Path(dir, name), buf.Bytes(), 0o644))

	return buf.Bytes()
}

func TestLoadPadsStream(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	raw := writeFixture(t, dir, "u8_1b", 4, []byte{0, 1, 2, 3})

	s, err := Load(dir, "u8_1b")
	require.NoError(t, err)

	assert.Equal(t, "u8_1b", s.Name)
	assert.Equal(t, filepath.Join(dir, "u8_1b.bin"), s.Path)
	assert.Equal(t, uint64(4), s.Count)
	assert.Equal(t, 4, s.Len)
	assert.Len(t, s.Data, s.Len+varint.Padding)
	assert.Equal(t, []byte{0, 1, 2, 3}, s.Payload())
	assert.Equal(t, make([]byte, varint.Padding), s.Data[s.Len:])
	assert.Equal(t, digest.FromBytes(raw), s.Digest)
}

func TestLoadEmptyPayload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFixture(t, dir, "empty", 0, nil)

	s, err := Load(dir, "empty")
	require.NoError(t, err)

	assert.Zero(t, s.Count)
	assert.Zero(t, s.Len)
	assert.Len(t, s.Data, varint.Padding)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Load(dir, "u16_2b")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "u16_2b")
	assert.Contains(t, err.Error(), Path(dir, "u16_2b"))
}

func TestLoadTruncatedHeader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(Path(dir, "short"), []byte{1, 0, 0}, 0o644))

	_, err := Load(dir, "short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read header")
	assert.Contains(t, err.Error(), "short")
}

func TestWriteFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, 2, []byte{0x80, 0x01, 0xc8, 0x01}))

	want := []byte{
		2, 0, 0, 0, 0, 0, 0, 0,
		0x80, 0x01, 0xc8, 0x01,
	}
	assert.Equal(t, want, buf.Bytes())
}
