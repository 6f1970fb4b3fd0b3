//go:build linux
// +build linux

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
package fuse

import (
	"context"
	"os"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
)

// FrameFS is a read-only directory holding one PNG file per frame.
type FrameFS struct {
	store   *FrameStore
	modTime time.Time
}

func (fsys *FrameFS) Root() (fs.Node, error) {
	return &Dir{fs: fsys}, nil
}

// Dir implements both fs.Node and fs.HandleReadDirAller
type Dir struct {
	fs *FrameFS
}

func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = 1
	a.Mode = os.ModeDir | 0555
	a.Mtime = d.fs.modTime
	return nil
}

func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	i, ok := d.fs.store.Lookup(name)
	if !ok {
		return nil, fuse.ENOENT
	}
	return &File{fs: d.fs, index: i}, nil
}

func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	n := d.fs.store.Len()

	entries := make([]fuse.Dirent, n)
	for i := range entries {
		entries[i] = fuse.Dirent{
			Inode: uint64(i + 2),
			Name:  d.fs.store.Name(i),
			Type:  fuse.DT_File,
		}
	}
	return entries, nil
}

// File implements both fs.Node and fs.HandleReader
type File struct {
	fs    *FrameFS
	index int
}

func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	data, err := f.fs.store.Frame(f.index)
	if err != nil {
		return fuse.EIO
	}

	a.Inode = uint64(f.index + 2)
	a.Mode = 0444
	a.Size = uint64(len(data))
	a.Mtime = f.fs.modTime
	return nil
}

func (f *File) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	data, err := f.fs.store.Frame(f.index)
	if err != nil {
		return fuse.EIO
	}

	if req.Offset >= int64(len(data)) {
		resp.Data = []byte{}
		return nil
	}
	end := min(req.Offset+int64(req.Size), int64(len(data)))
	resp.Data = data[req.Offset:end]
	return nil
}
