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
package fs

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ostafen/giflet/internal/mmap"
	"github.com/ostafen/giflet/pkg/reader"
)

const DefaultBufferSize = 64 * 1024

// File is a seekable GIF source.
type File interface {
	io.ReadSeeker
	io.Closer
	Name() string
	Size() int64
}

type Options struct {
	// UseMmap maps the file into memory. It falls back to buffered reads on
	// platforms without mmap support.
	UseMmap    bool
	BufferSize int
}

func Open(path string, opts Options) (File, error) {
	if opts.UseMmap {
		m, err := mmap.Open(path)
		if err == nil {
			return &mappedFile{File: m, name: path}, nil
		}
		if !errors.Is(err, mmap.ErrUnsupported) {
			return nil, err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to get file info for %q: %w", path, err)
	}
	if fi.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%q is a directory", path)
	}

	bufSize := opts.BufferSize
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	return &bufferedFile{
		BufferedReadSeeker: reader.NewBufferedReadSeeker(f, bufSize),
		file:               f,
		size:               fi.Size(),
	}, nil
}

type mappedFile struct {
	*mmap.File
	name string
}

func (f *mappedFile) Name() string { return f.name }
func (f *mappedFile) Size() int64  { return int64(len(f.Bytes())) }

type bufferedFile struct {
	*reader.BufferedReadSeeker
	file *os.File
	size int64
}

func (f *bufferedFile) Name() string { return f.file.Name() }
func (f *bufferedFile) Size() int64  { return f.size }
func (f *bufferedFile) Close() error { return f.file.Close() }
