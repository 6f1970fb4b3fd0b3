package gif

import (
	"bufio"
	"io"
)

// reader tracks how many bytes have been consumed from the underlying
// stream so that the parser can record the offset of each frame's data.
type reader struct {
	r *bufio.Reader

	n int64
}

func newReader(r io.Reader) *reader {
	return &reader{r: bufio.NewReader(r)}
}

func (r *reader) ReadByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err == nil {
		r.n++
	}
	return b, err
}

func (r *reader) Read(buf []byte) (int, error) {
	n, err := r.r.Read(buf)
	if n > 0 {
		r.n += int64(n)
	}
	return n, err
}

func (r *reader) Discard(n int) error {
	m, err := r.r.Discard(n)
	r.n += int64(m)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

func (r *reader) Offset() int64 {
	return r.n
}
