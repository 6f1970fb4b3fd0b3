package reader

import (
	"bytes"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// countingReader counts the reads that reach the underlying source.
type countingReader struct {
	*bytes.Reader
	reads int
}

func (r *countingReader) Read(p []byte) (int, error) {
	r.reads++
	return r.Reader.Read(p)
}

// testReadSeeker performs randomized seek+read trials against rs, checking
// every read against data.
func testReadSeeker(t *testing.T, data []byte, rs io.ReadSeeker) {
	const trials = 1000

	var buf [64]byte

	rng := rand.New(rand.NewSource(42))
	for i := range trials {
		offset := rng.Intn(len(data))
		readLen := max(1, min(rng.Intn(len(buf)), len(data)-offset))

		pos, err := rs.Seek(int64(offset), io.SeekStart)
		require.NoError(t, err, "trial %d", i)
		require.Equal(t, int64(offset), pos)

		n, err := io.ReadFull(rs, buf[:readLen])
		require.NoError(t, err, "trial %d", i)
		require.Equal(t, data[offset:offset+readLen], buf[:n], "trial %d: offset %d", i, offset)
	}
}

func randomBuffer(n int) []byte {
	b := make([]byte, n)
	rand.New(rand.NewSource(int64(n))).Read(b)
	return b
}

func TestBufferedReadSeekerRandomSeek(t *testing.T) {
	data := randomBuffer(10 * 1024)

	for _, size := range []int{1, 7, 64, 4096, 32 * 1024} {
		testReadSeeker(t, data, NewBufferedReadSeeker(bytes.NewReader(data), size))
	}
}

func TestBufferedReadSeekerSeekInsideBuffer(t *testing.T) {
	data := randomBuffer(1024)
	src := &countingReader{Reader: bytes.NewReader(data)}
	rs := NewBufferedReadSeeker(src, 512)

	var buf [16]byte
	_, err := io.ReadFull(rs, buf[:])
	require.NoError(t, err)
	require.Equal(t, 1, src.reads)

	for _, off := range []int64{100, 3, 400, 0} {
		_, err := rs.Seek(off, io.SeekStart)
		require.NoError(t, err)

		_, err = io.ReadFull(rs, buf[:])
		require.NoError(t, err)
		require.Equal(t, data[off:off+16], buf[:])
	}
	require.Equal(t, 1, src.reads)
}

func TestBufferedReadSeekerWhence(t *testing.T) {
	data := randomBuffer(300)
	rs := NewBufferedReadSeeker(bytes.NewReader(data), 64)

	pos, err := rs.Seek(-10, io.SeekEnd)
	require.NoError(t, err)
	require.Equal(t, int64(290), pos)

	b, err := io.ReadAll(rs)
	require.NoError(t, err)
	require.Equal(t, data[290:], b)

	_, err = rs.Seek(20, io.SeekStart)
	require.NoError(t, err)
	pos, err = rs.Seek(5, io.SeekCurrent)
	require.NoError(t, err)
	require.Equal(t, int64(25), pos)
	require.Equal(t, int64(25), rs.Offset())

	_, err = rs.Seek(-1, io.SeekStart)
	require.ErrorIs(t, err, ErrNegativeOffset)

	_, err = rs.Seek(0, 42)
	require.Error(t, err)
}
