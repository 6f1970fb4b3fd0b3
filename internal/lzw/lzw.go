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

// Package lzw implements the variable-width LZW decompressor used by GIF
// image data. Codes are packed LSB-first inside length-prefixed sub-blocks.
package lzw

import (
	"errors"
	"fmt"
)

const (
	MaxWidth  = 12
	TableSize = 1 << MaxWidth

	noCode = 0xFFFF
)

var (
	ErrInvalidCode     = errors.New("lzw: invalid code")
	ErrInvalidLitWidth = errors.New("lzw: literal width out of range")
)

// entry describes the index sequence of a code as its prefix code plus one
// trailing index. first and length allow sequences to be expanded
// back-to-front without a stack.
type entry struct {
	prefix uint16
	suffix byte
	first  byte
	length uint16
}

// Decoder holds the code table. It can be reused for any number of
// streams but must not be shared between goroutines.
type Decoder struct {
	table [TableSize]entry
}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode expands the sub-block framed stream in src into dst and returns the
// number of indices written. Decoding stops at the end-of-information code,
// when src is exhausted, or when dst is full.
func (d *Decoder) Decode(src []byte, litWidth int, dst []byte) (int, error) {
	if litWidth < 2 || litWidth > 8 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLitWidth, litWidth)
	}

	clear := uint16(1) << litWidth
	eoi := clear + 1

	for i := uint16(0); i < clear; i++ {
		d.table[i] = entry{suffix: byte(i), first: byte(i), length: 1}
	}

	var (
		r     = blockReader{src: src}
		width = uint(litWidth + 1)
		next  = clear + 2
		prev  = uint16(noCode)
		n     = 0
	)

	for n < len(dst) {
		code, ok := r.readCode(width)
		if !ok {
			break
		}

		if code == clear {
			width = uint(litWidth + 1)
			next = clear + 2
			prev = noCode
			continue
		}
		if code == eoi {
			break
		}

		if prev == noCode {
			if code >= clear {
				return n, fmt.Errorf("%w: code %d follows a clear code", ErrInvalidCode, code)
			}
			dst[n] = byte(code)
			n++
			prev = code
			continue
		}

		var first byte
		switch {
		case code < next:
			first = d.table[code].first
			n = d.expand(code, dst, n)
		case code == next:
			// The code being defined by this very step: prev's sequence
			// followed by its own first index.
			first = d.table[prev].first
			n = d.expand(prev, dst, n)
			if n < len(dst) {
				dst[n] = first
				n++
			}
		default:
			return n, fmt.Errorf("%w: code %d, next free slot %d", ErrInvalidCode, code, next)
		}

		if next < TableSize {
			p := &d.table[prev]
			d.table[next] = entry{
				prefix: prev,
				suffix: first,
				first:  p.first,
				length: p.length + 1,
			}
			next++

			if next == 1<<width && width < MaxWidth {
				width++
			}
		}
		prev = code
	}
	return n, nil
}

// expand writes the sequence of code at dst[n:], dropping whatever does not
// fit, and returns the new output length.
func (d *Decoder) expand(code uint16, dst []byte, n int) int {
	end := n + int(d.table[code].length)
	for i := end - 1; i >= n; i-- {
		e := &d.table[code]
		if i < len(dst) {
			dst[i] = e.suffix
		}
		code = e.prefix
	}
	return min(end, len(dst))
}

// blockReader extracts codes from GIF sub-blocks: each block is a length
// byte followed by that many data bytes; a zero length ends the stream.
type blockReader struct {
	src   []byte
	pos   int
	left  int // data bytes left in the current sub-block
	bits  uint32
	nbits uint
	eof   bool
}

func (r *blockReader) readCode(width uint) (uint16, bool) {
	for r.nbits < width {
		b, ok := r.readByte()
		if !ok {
			return 0, false
		}
		r.bits |= uint32(b) << r.nbits
		r.nbits += 8
	}
	code := uint16(r.bits & (1<<width - 1))
	r.bits >>= width
	r.nbits -= width
	return code, true
}

func (r *blockReader) readByte() (byte, bool) {
	if r.eof {
		return 0, false
	}
	if r.left == 0 {
		if r.pos >= len(r.src) || r.src[r.pos] == 0 {
			r.eof = true
			return 0, false
		}
		r.left = int(r.src[r.pos])
		r.pos++
	}
	if r.pos >= len(r.src) {
		r.eof = true
		return 0, false
	}
	b := r.src[r.pos]
	r.pos++
	r.left--
	return b, true
}
