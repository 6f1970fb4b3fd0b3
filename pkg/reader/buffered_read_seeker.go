// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package reader

import (
	"errors"
	"fmt"
	"io"
)

var ErrNegativeOffset = errors.New("reader: negative offset")

// BufferedReadSeeker buffers reads from src. Seeks that land inside the
// buffered window are served without touching src, which keeps the repeated
// seek+read pattern of frame decoding cheap on plain files.
type BufferedReadSeeker struct {
	src  io.ReadSeeker
	buf  []byte
	base int64 // offset of buf[0] in src
	off  int   // read offset in buf
	size int   // number of valid bytes in buf
}

func NewBufferedReadSeeker(src io.ReadSeeker, bufSize int) *BufferedReadSeeker {
	return &BufferedReadSeeker{
		src: src,
		buf: make([]byte, bufSize),
	}
}

func (b *BufferedReadSeeker) fill() error {
	b.base += int64(b.size)
	b.off = 0

	n, err := b.src.Read(b.buf)
	b.size = n
	if err != nil && err != io.EOF {
		return err
	}
	return nil
}

func (b *BufferedReadSeeker) Read(p []byte) (int, error) {
	read := 0
	for read < len(p) {
		if b.off >= b.size {
			if err := b.fill(); err != nil {
				return read, err
			}
			if b.size == 0 {
				if read > 0 {
					return read, nil
				}
				return 0, io.EOF
			}
		}
		n := copy(p[read:], b.buf[b.off:b.size])
		b.off += n
		read += n
	}
	return read, nil
}

func (b *BufferedReadSeeker) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset += b.Offset()
	case io.SeekEnd:
		end, err := b.src.Seek(0, io.SeekEnd)
		if err != nil {
			return 0, err
		}
		offset += end
		// src has moved: drop the buffer.
		b.base, b.off, b.size = end, 0, 0
	default:
		return 0, fmt.Errorf("reader: invalid whence %d", whence)
	}

	if offset < 0 {
		return 0, ErrNegativeOffset
	}

	if offset >= b.base && offset < b.base+int64(b.size) {
		b.off = int(offset - b.base)
		return offset, nil
	}

	pos, err := b.src.Seek(offset, io.SeekStart)
	if err != nil {
		return 0, err
	}
	b.base, b.off, b.size = pos, 0, 0
	return pos, nil
}

// Offset returns the position of the next byte returned by Read.
func (b *BufferedReadSeeker) Offset() int64 {
	return b.base + int64(b.off)
}
