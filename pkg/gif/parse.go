package gif

import (
	"errors"
	"fmt"
	"io"
)

// Section indicators.
const (
	sExtension       = 0x21
	sImageDescriptor = 0x2C
	sTrailer         = 0x3B
)

// Extensions.
const (
	eText           = 0x01 // Plain Text
	eGraphicControl = 0xF9 // Graphic Control
	eComment        = 0xFE // Comment
	eApplication    = 0xFF // Application
)

// Masks
const (
	// Fields.
	fColorTable         = 1 << 7
	fInterlace          = 1 << 6
	fColorTableBitsMask = 7

	// Graphic control flags.
	gcTransparentColorSet = 1 << 0
	gcUserInputSet        = 1 << 1
	gcDisposalMethodMask  = 7 << 2
)

type parser struct {
	r    *reader
	base int64 // offset of the GIF signature within the source

	desc *Descriptor
	gce  *GraphicControl // pending control block for the next image

	tmp [1024]byte // must be at least 768 so we can read color table
}

// Parse reads the structure of the GIF stream starting at the current
// position of src. Image data is skipped: each frame records where its
// compressed data lives so that it can be decoded later through src.
func Parse(src io.ReadSeeker) (*Descriptor, error) {
	base, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}

	p := parser{
		r:    newReader(src),
		base: base,
		desc: &Descriptor{Source: src},
	}

	if err := p.readHeaderAndScreenDescriptor(); err != nil {
		return nil, err
	}

	for {
		c, err := readByte(p.r)
		if errors.Is(err, io.ErrUnexpectedEOF) && len(p.desc.Frames) > 0 {
			// Missing trailer: keep the frames read so far.
			return p.desc, nil
		}
		if err != nil {
			return nil, fmt.Errorf("gif: reading frames: %w", err)
		}

		switch c {
		case sExtension:
			err = p.readExtension()
		case sImageDescriptor:
			err = p.readImageDescriptor()
		case sTrailer:
			if len(p.desc.Frames) == 0 {
				return nil, ErrMissingImageData
			}
			return p.desc, nil
		default:
			return nil, fmt.Errorf("%w: 0x%.2x", ErrUnknownBlock, c)
		}

		if errors.Is(err, io.ErrUnexpectedEOF) && len(p.desc.Frames) > 0 {
			// Truncated file: drop the incomplete block.
			return p.desc, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *parser) readHeaderAndScreenDescriptor() error {
	err := readFull(p.r, p.tmp[:13])
	if err != nil {
		return fmt.Errorf("gif: reading header: %w", err)
	}
	version := string(p.tmp[:6])
	if version != "GIF87a" && version != "GIF89a" {
		return fmt.Errorf("%w: can't recognize format %q", ErrInvalidHeader, version)
	}

	d := p.desc
	d.Version = version
	d.Screen.Width = int(p.tmp[6]) + int(p.tmp[7])<<8
	d.Screen.Height = int(p.tmp[8]) + int(p.tmp[9])<<8
	if d.Screen.Width == 0 || d.Screen.Height == 0 {
		return ErrEmptyScreen
	}

	fields := p.tmp[10]
	d.BackgroundIndex = p.tmp[11]
	d.AspectRatio = p.tmp[12]

	if fields&fColorTable != 0 {
		ct, err := p.readColorTable(fields)
		if err != nil {
			return err
		}
		d.GlobalColorTable = ct
	}
	return nil
}

func (p *parser) readColorTable(fields byte) (ColorTable, error) {
	n := 1 << (1 + uint(fields&fColorTableBitsMask))
	err := readFull(p.r, p.tmp[:3*n])
	if err != nil {
		return nil, fmt.Errorf("gif: reading color table: %w", err)
	}

	ct := make(ColorTable, n)
	for i := range ct {
		ct[i] = PackRGB(p.tmp[3*i], p.tmp[3*i+1], p.tmp[3*i+2])
	}
	return ct, nil
}

func (p *parser) readExtension() error {
	extension, err := readByte(p.r)
	if err != nil {
		return fmt.Errorf("gif: reading extension: %w", err)
	}
	size := 0
	switch extension {
	case eText:
		size = 13
		// A pending control block applies to the text, not to the next image.
		p.gce = nil
	case eGraphicControl:
		return p.readGraphicControl()
	case eComment:
		// nothing to do but read the data.
	case eApplication:
		b, err := readByte(p.r)
		if err != nil {
			return fmt.Errorf("gif: reading extension: %w", err)
		}
		// GIF89a requires size be 11, but Adobe sometimes uses 10.
		size = int(b)
	default:
		// Unknown extensions are made of sub-blocks like every other one.
	}
	if size > 0 {
		if err := readFull(p.r, p.tmp[:size]); err != nil {
			return fmt.Errorf("gif: reading extension: %w", err)
		}
	}

	// Application Extension with "NETSCAPE2.0" as string and 1 in data means
	// this extension defines a loop count.
	if extension == eApplication && (string(p.tmp[:size]) == "NETSCAPE2.0" || string(p.tmp[:size]) == "ANIMEXTS1.0") {
		n, err := p.readBlock()
		if err != nil {
			return fmt.Errorf("gif: reading extension: %w", err)
		}
		if n == 0 {
			return nil
		}
		if n == 3 && p.tmp[0] == 1 {
			loopCount := int(p.tmp[1]) | int(p.tmp[2])<<8
			p.desc.LoopCount = &loopCount
		}
	}
	return p.skipBlocks()
}

func (p *parser) readGraphicControl() error {
	if err := readFull(p.r, p.tmp[:6]); err != nil {
		return fmt.Errorf("gif: can't read graphic control: %w", err)
	}
	if p.tmp[0] != 4 {
		return fmt.Errorf("%w: graphic control block size %d", ErrInvalidExtension, p.tmp[0])
	}
	if p.tmp[5] != 0 {
		return fmt.Errorf("%w: graphic control block terminator %d", ErrInvalidExtension, p.tmp[5])
	}

	flags := p.tmp[1]
	disposal := Disposal((flags & gcDisposalMethodMask) >> 2)
	if disposal > DisposalRestorePrevious {
		// Values 4-7 are reserved.
		disposal = DisposalNotSpecified
	}

	p.gce = &GraphicControl{
		Disposal:         disposal,
		UserInput:        flags&gcUserInputSet != 0,
		HasTransparency:  flags&gcTransparentColorSet != 0,
		TransparentIndex: p.tmp[4],
		Delay:            uint16(p.tmp[2]) | uint16(p.tmp[3])<<8,
	}
	return nil
}

func (p *parser) readImageDescriptor() error {
	if err := readFull(p.r, p.tmp[:9]); err != nil {
		return fmt.Errorf("gif: can't read image descriptor: %w", err)
	}

	frame := ImageDescriptor{
		Position: Point{
			X: int(p.tmp[0]) + int(p.tmp[1])<<8,
			Y: int(p.tmp[2]) + int(p.tmp[3])<<8,
		},
		Dimension: Dimension{
			Width:  int(p.tmp[4]) + int(p.tmp[5])<<8,
			Height: int(p.tmp[6]) + int(p.tmp[7])<<8,
		},
		Control: p.gce,
	}
	p.gce = nil
	fields := p.tmp[8]
	frame.Interlaced = fields&fInterlace != 0

	// GIF89a, Section 20 (Image Descriptor) says: "Each image must
	// fit within the boundaries of the Logical Screen, as defined in the
	// Logical Screen Descriptor."
	//
	// By construction the position is non-negative, so only the far corner
	// needs to be checked.
	screen := p.desc.Screen
	if frame.Position.X+frame.Dimension.Width > screen.Width || frame.Position.Y+frame.Dimension.Height > screen.Height {
		return ErrFrameOutOfBounds
	}

	if fields&fColorTable != 0 {
		ct, err := p.readColorTable(fields)
		if err != nil {
			return err
		}
		frame.LocalColorTable = ct
	} else if p.desc.GlobalColorTable == nil {
		return ErrNoColorTable
	}

	litWidth, err := readByte(p.r)
	if err != nil {
		return fmt.Errorf("gif: reading image data: %w", err)
	}
	if litWidth < 2 || litWidth > 8 {
		return fmt.Errorf("%w: %d", ErrInvalidLitWidth, litWidth)
	}
	frame.LitWidth = int(litWidth)

	frame.DataOffset = p.base + p.r.Offset()
	if err := p.skipBlocks(); err != nil {
		return fmt.Errorf("gif: reading image data: %w", err)
	}
	frame.DataLength = p.base + p.r.Offset() - frame.DataOffset

	p.desc.Frames = append(p.desc.Frames, frame)
	return nil
}

// skipBlocks discards sub-blocks up to and including the zero-length
// terminator.
func (p *parser) skipBlocks() error {
	for {
		size, err := readByte(p.r)
		if err != nil {
			return err
		}
		if size == 0 {
			return nil
		}
		if err := p.r.Discard(int(size)); err != nil {
			return err
		}
	}
}

func (p *parser) readBlock() (int, error) {
	n, err := readByte(p.r)
	if n == 0 || err != nil {
		return 0, err
	}
	if err := readFull(p.r, p.tmp[:n]); err != nil {
		return 0, err
	}
	return int(n), nil
}

func readByte(r io.ByteReader) (byte, error) {
	b, err := r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return 0, io.ErrUnexpectedEOF
		}
		return 0, fmt.Errorf("gif: reading byte: %w", err)
	}
	return b, nil
}

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}
