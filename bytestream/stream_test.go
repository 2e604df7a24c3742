package bytestream

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlainStreamReadWriteSeekTell(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")

	w, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Write([]byte("hello world")))
	require.NoError(t, w.Close())

	r, err := OpenRead(path)
	require.NoError(t, err)
	defer r.Close()

	buf := make([]byte, 5)
	require.NoError(t, r.Read(buf))
	require.Equal(t, "hello", string(buf))

	pos, err := r.Tell()
	require.NoError(t, err)
	require.Equal(t, int64(5), pos)

	require.NoError(t, r.Seek(6))
	buf2 := make([]byte, 5)
	require.NoError(t, r.Read(buf2))
	require.Equal(t, "world", string(buf2))

	n, err := r.TryRead(buf2)
	require.Equal(t, 0, n)
	require.ErrorIs(t, err, io.EOF)
}

func TestCreateRefusesExistingPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := Create(path)
	require.Error(t, err)
}

func TestGzipRoundTripAndSeek(t *testing.T) {
	dir := t.TempDir()
	plainPath := filepath.Join(dir, "data.bin")

	var payload []byte
	for i := 0; i < 10000; i++ {
		payload = append(payload, byte(i%251))
	}
	require.NoError(t, os.WriteFile(plainPath, payload, 0644))

	gzPath, err := GzipFileInPlace(plainPath)
	require.NoError(t, err)
	require.Equal(t, plainPath+".gz", gzPath)
	require.False(t, Exists(plainPath))

	st, err := OpenRead(gzPath)
	require.NoError(t, err)
	defer st.Close()

	buf := make([]byte, 100)
	require.NoError(t, st.Read(buf))
	require.Equal(t, payload[:100], buf)

	// forward seek (discard)
	require.NoError(t, st.Seek(5000))
	buf2 := make([]byte, 50)
	require.NoError(t, st.Read(buf2))
	require.Equal(t, payload[5000:5050], buf2)

	// backward seek (reopen + discard)
	require.NoError(t, st.Seek(100))
	buf3 := make([]byte, 50)
	require.NoError(t, st.Read(buf3))
	require.Equal(t, payload[100:150], buf3)
}

func TestReadWholeFileTextModeNormalizesNewlines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "text.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\r\nb\rc\n"), 0644))

	buf, err := ReadWholeFile(path, 1024, true)
	require.NoError(t, err)
	require.Equal(t, "a\nb\nc\n", string(buf))
}

func TestReadWholeFileRejectsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "text.txt")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0644))

	_, err := ReadWholeFile(path, 5, false)
	require.Error(t, err)
}

func TestSameFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.bin")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	same, err := SameFile(path, path)
	require.NoError(t, err)
	require.True(t, same)

	other := filepath.Join(dir, "b.bin")
	require.NoError(t, os.WriteFile(other, []byte("y"), 0644))
	same, err = SameFile(path, other)
	require.NoError(t, err)
	require.False(t, same)
}
