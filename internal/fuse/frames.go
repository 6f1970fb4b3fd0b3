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
	"bytes"
	"fmt"
	"image/png"
	"strconv"
	"strings"
	"sync"

	"github.com/ostafen/giflet/pkg/gif"
)

const (
	frameExt = ".png"

	// DefaultCacheSize is the number of encoded frames kept in memory.
	DefaultCacheSize = 16
)

// FrameStore serves the frames of a decoder as encoded PNG files. All
// decoder calls are serialized, since a gif.Decoder is not safe for
// concurrent use.
type FrameStore struct {
	mu      sync.Mutex
	dec     *gif.Decoder
	enc     png.Encoder
	cache   map[int][]byte
	order   []int // cached frames, oldest first
	maxSize int
}

func NewFrameStore(d *gif.Decoder, cacheSize int) *FrameStore {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	return &FrameStore{
		dec:     d,
		enc:     png.Encoder{CompressionLevel: png.BestSpeed},
		cache:   make(map[int][]byte, cacheSize),
		maxSize: cacheSize,
	}
}

func (s *FrameStore) Len() int {
	return s.dec.FrameCount()
}

// Name returns the file name of frame i.
func (s *FrameStore) Name(i int) string {
	return fmt.Sprintf("frame_%04d%s", i, frameExt)
}

// Lookup returns the index of the frame named name.
func (s *FrameStore) Lookup(name string) (int, bool) {
	num, ok := strings.CutPrefix(name, "frame_")
	if !ok {
		return 0, false
	}
	num, ok = strings.CutSuffix(num, frameExt)
	if !ok || len(num) < 4 {
		return 0, false
	}

	i, err := strconv.Atoi(num)
	if err != nil || i < 0 || i >= s.Len() || s.Name(i) != name {
		return 0, false
	}
	return i, true
}

// Frame returns frame i encoded as PNG. Frames may be requested in any
// order: going backwards replays the animation from the first frame.
func (s *FrameStore) Frame(i int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data, ok := s.cache[i]; ok {
		return data, nil
	}

	img, err := s.dec.FrameImage(i)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.enc.Encode(&buf, img); err != nil {
		return nil, err
	}

	s.put(i, buf.Bytes())
	return buf.Bytes(), nil
}

func (s *FrameStore) put(i int, data []byte) {
	if len(s.order) >= s.maxSize {
		delete(s.cache, s.order[0])
		s.order = s.order[1:]
	}
	s.cache[i] = data
	s.order = append(s.order, i)
}
