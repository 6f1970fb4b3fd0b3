package gif

import (
	"fmt"
	"image"
	"io"
)

// Disposal tells how the area covered by a frame is treated once the frame
// has been displayed.
type Disposal byte

const (
	DisposalNotSpecified Disposal = iota
	DisposalDoNotDispose
	DisposalRestoreBackground
	DisposalRestorePrevious
)

func (d Disposal) String() string {
	switch d {
	case DisposalNotSpecified:
		return "none"
	case DisposalDoNotDispose:
		return "keep"
	case DisposalRestoreBackground:
		return "background"
	case DisposalRestorePrevious:
		return "previous"
	default:
		return fmt.Sprintf("Disposal(%d)", byte(d))
	}
}

// Transparent is the packed value of a fully transparent pixel.
const Transparent uint32 = 0

// ColorTable maps palette indices to packed non-premultiplied 0xAARRGGBB
// colors.
type ColorTable []uint32

func PackRGB(r, g, b byte) uint32 {
	return 0xFF000000 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

type Point struct {
	X, Y int
}

type Dimension struct {
	Width, Height int
}

func (d Dimension) Area() int {
	return d.Width * d.Height
}

// GraphicControl holds the fields of a Graphic Control Extension.
type GraphicControl struct {
	Disposal         Disposal
	UserInput        bool
	HasTransparency  bool
	TransparentIndex byte
	Delay            uint16 // hundredths of a second
}

// ImageDescriptor describes one frame. The compressed data is not held in
// memory: DataOffset and DataLength address the sub-block stream (including
// its zero terminator) inside the descriptor's source.
type ImageDescriptor struct {
	Position        Point
	Dimension       Dimension
	Interlaced      bool
	LocalColorTable ColorTable
	Control         *GraphicControl
	LitWidth        int

	DataOffset int64
	DataLength int64
}

func (f *ImageDescriptor) Bounds() image.Rectangle {
	return image.Rect(
		f.Position.X,
		f.Position.Y,
		f.Position.X+f.Dimension.Width,
		f.Position.Y+f.Dimension.Height,
	)
}

func (f *ImageDescriptor) Disposal() Disposal {
	if f.Control == nil {
		return DisposalNotSpecified
	}
	return f.Control.Disposal
}

func (f *ImageDescriptor) HasTransparency() bool {
	return f.Control != nil && f.Control.HasTransparency
}

// Descriptor is the parsed structure of a GIF stream. It is never modified
// after Parse returns.
type Descriptor struct {
	Version          string
	Screen           Dimension
	GlobalColorTable ColorTable
	BackgroundIndex  byte
	AspectRatio      byte
	LoopCount        *int // nil when no NETSCAPE2.0 extension is present
	Frames           []ImageDescriptor

	Source io.ReadSeeker
}

// ColorTableFor returns the palette that applies to frame i, or nil when i
// does not name a frame.
func (d *Descriptor) ColorTableFor(i int) ColorTable {
	if i < 0 || i >= len(d.Frames) {
		return nil
	}
	if ct := d.Frames[i].LocalColorTable; ct != nil {
		return ct
	}
	return d.GlobalColorTable
}

// MaxDataLength returns the length of the largest compressed frame.
func (d *Descriptor) MaxDataLength() int64 {
	var m int64
	for i := range d.Frames {
		m = max(m, d.Frames[i].DataLength)
	}
	return m
}
