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
package gif

import (
	"fmt"
	"image"
	"io"
	"log/slog"
	"time"

	"github.com/ostafen/giflet/internal/lzw"
)

type Options struct {
	// Logger receives debug records for every decoded frame and a warning
	// for every frame that fails. Nil discards all records.
	Logger *slog.Logger
}

// Decoder renders the frames of one GIF into a persistent framebuffer,
// carrying the canvas from one frame to the next according to each frame's
// disposal method.
//
// A Decoder owns all of its buffers and is not safe for concurrent use.
type Decoder struct {
	desc   *Descriptor
	logger *slog.Logger
	lzw    *lzw.Decoder

	framebuffer []uint32
	backup      []uint32 // allocated on the first restore-to-previous frame
	output      []uint32 // last rendered picture, before disposal
	data        []byte
	indices     []byte

	background   uint32
	current      int
	lastRendered int
}

// Open parses the GIF read from src and returns a decoder for it.
func Open(src io.ReadSeeker, opts Options) (*Decoder, error) {
	desc, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return NewDecoder(desc, opts), nil
}

func NewDecoder(desc *Descriptor, opts Options) *Decoder {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	area := desc.Screen.Area()
	d := &Decoder{
		desc:         desc,
		logger:       logger,
		lzw:          lzw.NewDecoder(),
		framebuffer:  make([]uint32, area),
		output:       make([]uint32, area),
		data:         make([]byte, desc.MaxDataLength()),
		indices:      make([]byte, area),
		lastRendered: -1,
	}
	d.background = d.resolveBackground()
	return d
}

func (d *Decoder) resolveBackground() uint32 {
	for i := range d.desc.Frames {
		if d.desc.Frames[i].HasTransparency() {
			return Transparent
		}
	}
	ct := d.desc.GlobalColorTable
	if int(d.desc.BackgroundIndex) < len(ct) {
		return ct[d.desc.BackgroundIndex]
	}
	return Transparent
}

func (d *Decoder) Descriptor() *Descriptor {
	return d.desc
}

func (d *Decoder) FrameCount() int {
	return len(d.desc.Frames)
}

func (d *Decoder) Dimension() Dimension {
	return d.desc.Screen
}

// LoopCount returns nil when the GIF carries no loop information, 0 for an
// endless animation, and the number of repetitions otherwise.
func (d *Decoder) LoopCount() *int {
	return d.desc.LoopCount
}

// AspectRatio returns the pixel aspect ratio (width / height) encoded in the
// logical screen descriptor.
func (d *Decoder) AspectRatio() float64 {
	if d.desc.AspectRatio == 0 {
		return 1.0
	}
	return (float64(d.desc.AspectRatio) + 15) / 64.0
}

// BackgroundColor returns the color used by restore-to-background disposal.
// It is transparent whenever any frame uses transparency.
func (d *Decoder) BackgroundColor() uint32 {
	return d.background
}

func (d *Decoder) CurrentFrameIndex() int {
	return d.current
}

func (d *Decoder) CurrentDelay() time.Duration {
	return d.FrameDelay(d.current)
}

// FrameDelay returns the display time of frame i. Frames without a Graphic
// Control Extension and indices outside the frame list report 0.
func (d *Decoder) FrameDelay(i int) time.Duration {
	if i < 0 || i >= len(d.desc.Frames) {
		return 0
	}
	ctrl := d.desc.Frames[i].Control
	if ctrl == nil {
		return 0
	}
	return time.Duration(ctrl.Delay) * 10 * time.Millisecond
}

// AdvanceFrame moves to the next frame, wrapping at the end. Still images
// never advance.
func (d *Decoder) AdvanceFrame() {
	if n := len(d.desc.Frames); n > 1 {
		d.current = (d.current + 1) % n
	}
}

func (d *Decoder) RenderCurrentFrame() ([]uint32, error) {
	return d.RenderFrame(d.current)
}

// RenderFrame composites frame i over the current canvas and returns a copy
// of the result. Rendering the frame that was rendered last returns the same
// picture without decoding again: that is the frame as it was composited,
// before its disposal method was applied to the canvas.
//
// On failure the canvas is left exactly as it was, so the caller may skip
// the frame and go on with the next one.
func (d *Decoder) RenderFrame(i int) ([]uint32, error) {
	if i < 0 || i >= len(d.desc.Frames) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrFrameOutOfRange, i, len(d.desc.Frames))
	}
	if i == d.lastRendered {
		return d.copyOutput(), nil
	}

	frame := &d.desc.Frames[i]

	n, err := d.decode(frame)
	if err != nil {
		d.logger.Warn("unable to decode frame", "frame", i, "err", err)
		return nil, fmt.Errorf("%w: frame %d: %w", ErrFrameDecode, i, err)
	}

	disposal := frame.Disposal()
	if disposal == DisposalRestorePrevious {
		if d.backup == nil {
			d.backup = make([]uint32, len(d.framebuffer))
		}
		copy(d.backup, d.framebuffer)
	}

	fillPixels(d.framebuffer, d.indices, n, d.desc.ColorTableFor(i), d.desc.Screen, frame)
	copy(d.output, d.framebuffer)

	d.dispose(frame, disposal)
	d.lastRendered = i

	d.logger.Debug("frame rendered",
		"frame", i,
		"pixels", n,
		"interlaced", frame.Interlaced,
		"disposal", disposal.String(),
	)
	return d.copyOutput(), nil
}

// RenderUpTo renders every frame from the last rendered one (or from the
// first, when going backwards) up to frame i, and returns frame i. Frames in
// between that fail to decode are skipped.
func (d *Decoder) RenderUpTo(i int) ([]uint32, error) {
	if i < 0 || i >= len(d.desc.Frames) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrFrameOutOfRange, i, len(d.desc.Frames))
	}
	if i == d.lastRendered {
		return d.copyOutput(), nil
	}
	if i < d.lastRendered {
		d.Reset()
	}
	for j := d.lastRendered + 1; j < i; j++ {
		_, _ = d.RenderFrame(j)
	}
	return d.RenderFrame(i)
}

// FrameImage returns frame i fully composited as an image.
func (d *Decoder) FrameImage(i int) (*image.NRGBA, error) {
	pix, err := d.RenderUpTo(i)
	if err != nil {
		return nil, err
	}
	return ToImage(pix, d.desc.Screen), nil
}

// Reset clears the canvas and rewinds the animation to its first frame.
func (d *Decoder) Reset() {
	clear(d.framebuffer)
	d.current = 0
	d.lastRendered = -1
}

func (d *Decoder) decode(frame *ImageDescriptor) (int, error) {
	data := d.data[:frame.DataLength]

	src := d.desc.Source
	if _, err := src.Seek(frame.DataOffset, io.SeekStart); err != nil {
		return 0, err
	}
	if _, err := io.ReadFull(src, data); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, ErrFrameDataOutOfRange
		}
		return 0, err
	}
	return d.lzw.Decode(data, frame.LitWidth, d.indices[:frame.Dimension.Area()])
}

func (d *Decoder) dispose(frame *ImageDescriptor, disposal Disposal) {
	switch disposal {
	case DisposalNotSpecified, DisposalDoNotDispose:
	case DisposalRestorePrevious:
		copy(d.framebuffer, d.backup)
	case DisposalRestoreBackground:
		d.fillRect(frame.Bounds(), d.background)
	}
}

func (d *Decoder) fillRect(r image.Rectangle, c uint32) {
	w := d.desc.Screen.Width
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := d.framebuffer[y*w+r.Min.X : y*w+r.Max.X]
		for x := range row {
			row[x] = c
		}
	}
}

func (d *Decoder) copyOutput() []uint32 {
	out := make([]uint32, len(d.output))
	copy(out, d.output)
	return out
}

// ToImage converts a packed framebuffer into an image.
func ToImage(pix []uint32, dim Dimension) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, dim.Width, dim.Height))
	for i, c := range pix {
		img.Pix[4*i+0] = byte(c >> 16)
		img.Pix[4*i+1] = byte(c >> 8)
		img.Pix[4*i+2] = byte(c)
		img.Pix[4*i+3] = byte(c >> 24)
	}
	return img
}
