package gif

import (
	"bytes"
	"image"
	"image/color"
	stdgif "image/gif"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	g := testGIF{
		w: 10, h: 6,
		global: testPalette,
		bg:     3,
		aspect: 49,
		loop:   ptr(5),
		frames: []testFrame{
			{w: 10, h: 6, indices: solid(10, 6, 0), delay: 12},
			{
				x: 2, y: 1, w: 4, h: 3,
				indices:     solid(4, 3, 1),
				interlaced:  true,
				local:       ColorTable{white, blue},
				disposal:    DisposalRestorePrevious,
				transparent: ptr(byte(1)),
			},
			{w: 1, h: 1, indices: []byte{2}, noControl: true},
		},
	}
	data := g.encode(t)

	desc, err := Parse(bytes.NewReader(data))
	require.NoError(t, err)

	require.Equal(t, "GIF89a", desc.Version)
	require.Equal(t, Dimension{10, 6}, desc.Screen)
	require.Equal(t, testPalette, desc.GlobalColorTable)
	require.Equal(t, byte(3), desc.BackgroundIndex)
	require.Equal(t, byte(49), desc.AspectRatio)
	require.NotNil(t, desc.LoopCount)
	require.Equal(t, 5, *desc.LoopCount)
	require.Len(t, desc.Frames, 3)

	f0 := desc.Frames[0]
	require.Equal(t, Point{0, 0}, f0.Position)
	require.Equal(t, Dimension{10, 6}, f0.Dimension)
	require.False(t, f0.Interlaced)
	require.Nil(t, f0.LocalColorTable)
	require.Equal(t, uint16(12), f0.Control.Delay)
	require.Equal(t, DisposalNotSpecified, f0.Disposal())
	require.False(t, f0.HasTransparency())
	require.Equal(t, 2, f0.LitWidth)

	f1 := desc.Frames[1]
	require.Equal(t, Point{2, 1}, f1.Position)
	require.Equal(t, Dimension{4, 3}, f1.Dimension)
	require.True(t, f1.Interlaced)
	require.Equal(t, ColorTable{white, blue}, f1.LocalColorTable)
	require.Equal(t, ColorTable{white, blue}, desc.ColorTableFor(1))
	require.Equal(t, DisposalRestorePrevious, f1.Disposal())
	require.True(t, f1.HasTransparency())
	require.Equal(t, byte(1), f1.Control.TransparentIndex)

	f2 := desc.Frames[2]
	require.Nil(t, f2.Control)
	require.Equal(t, testPalette, desc.ColorTableFor(2))
	require.Nil(t, desc.ColorTableFor(-1))
	require.Nil(t, desc.ColorTableFor(3))

	// Every data range is a complete sub-block stream.
	for _, f := range desc.Frames {
		block := data[f.DataOffset : f.DataOffset+f.DataLength]
		require.Equal(t, byte(0), block[len(block)-1])
		require.Equal(t, byte(f.LitWidth), data[f.DataOffset-1])
	}
	require.Equal(t, desc.Frames[2].DataOffset+desc.Frames[2].DataLength+1, int64(len(data)))
}

func TestParseAtOffset(t *testing.T) {
	g := testGIF{
		w: 4, h: 4,
		global: testPalette,
		frames: []testFrame{{w: 4, h: 4, indices: solid(4, 4, 2)}},
	}
	prefix := []byte("some leading bytes")
	data := append(append([]byte{}, prefix...), g.encode(t)...)

	src := bytes.NewReader(data)
	_, err := src.Seek(int64(len(prefix)), io.SeekStart)
	require.NoError(t, err)

	d, err := Open(src, Options{})
	require.NoError(t, err)

	pix, err := d.RenderFrame(0)
	require.NoError(t, err)
	for _, c := range pix {
		require.Equal(t, blue, c)
	}
}

func TestParseStdlibEncoded(t *testing.T) {
	pal := color.Palette{
		color.RGBA{0, 0, 0, 0xFF},
		color.RGBA{0xFF, 0, 0, 0xFF},
		color.RGBA{0, 0xFF, 0, 0xFF},
		color.RGBA{0, 0, 0xFF, 0xFF},
	}

	frame := func(r image.Rectangle, idx uint8) *image.Paletted {
		img := image.NewPaletted(r, pal)
		for i := range img.Pix {
			img.Pix[i] = idx
		}
		return img
	}

	src := &stdgif.GIF{
		Image: []*image.Paletted{
			frame(image.Rect(0, 0, 16, 12), 1),
			frame(image.Rect(3, 2, 9, 7), 2),
			frame(image.Rect(10, 5, 16, 12), 3),
		},
		Delay:    []int{5, 10, 20},
		Disposal: []byte{stdgif.DisposalNone, stdgif.DisposalBackground, stdgif.DisposalPrevious},
		Config:   image.Config{ColorModel: pal, Width: 16, Height: 12},
	}

	var buf bytes.Buffer
	require.NoError(t, stdgif.EncodeAll(&buf, src))

	desc, err := Parse(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	require.Equal(t, Dimension{16, 12}, desc.Screen)
	require.NotNil(t, desc.LoopCount)
	require.Equal(t, 0, *desc.LoopCount)
	require.Len(t, desc.Frames, 3)

	wantDisposal := []Disposal{DisposalDoNotDispose, DisposalRestoreBackground, DisposalRestorePrevious}
	for i, f := range desc.Frames {
		b := src.Image[i].Bounds()
		require.Equal(t, Point{b.Min.X, b.Min.Y}, f.Position)
		require.Equal(t, Dimension{b.Dx(), b.Dy()}, f.Dimension)
		require.Equal(t, uint16(src.Delay[i]), f.Control.Delay)
		require.Equal(t, wantDisposal[i], f.Disposal())
	}
}

func TestParseMissingTrailer(t *testing.T) {
	g := testGIF{
		w: 2, h: 2,
		global:  testPalette,
		frames:  []testFrame{{w: 2, h: 2, indices: solid(2, 2, 1)}},
		noTrail: true,
	}

	desc, err := Parse(bytes.NewReader(g.encode(t)))
	require.NoError(t, err)
	require.Len(t, desc.Frames, 1)
}

func TestParseErrors(t *testing.T) {
	valid := testGIF{
		w: 4, h: 4,
		global: testPalette,
		frames: []testFrame{{w: 4, h: 4, indices: solid(4, 4, 0)}},
	}

	tests := []struct {
		name string
		data func(t *testing.T) []byte
		want error
	}{
		{
			name: "bad signature",
			data: func(t *testing.T) []byte {
				b := valid.encode(t)
				copy(b, "GIF90a")
				return b
			},
			want: ErrInvalidHeader,
		},
		{
			name: "empty screen",
			data: func(t *testing.T) []byte {
				g := valid
				g.w = 0
				return g.encode(t)
			},
			want: ErrEmptyScreen,
		},
		{
			name: "frame out of bounds",
			data: func(t *testing.T) []byte {
				g := valid
				g.frames = []testFrame{{x: 1, w: 4, h: 4, indices: solid(4, 4, 0)}}
				return g.encode(t)
			},
			want: ErrFrameOutOfBounds,
		},
		{
			name: "no color table",
			data: func(t *testing.T) []byte {
				g := valid
				g.global = nil
				g.frames = []testFrame{{w: 4, h: 4, indices: solid(4, 4, 0), raw: []byte{0}}}
				return g.encode(t)
			},
			want: ErrNoColorTable,
		},
		{
			name: "no frames",
			data: func(t *testing.T) []byte {
				g := valid
				g.frames = nil
				return g.encode(t)
			},
			want: ErrMissingImageData,
		},
		{
			name: "unknown block",
			data: func(t *testing.T) []byte {
				b := valid.encode(t)
				b[len(b)-1] = 0x42
				return b
			},
			want: ErrUnknownBlock,
		},
		{
			name: "truncated header",
			data: func(t *testing.T) []byte {
				return valid.encode(t)[:9]
			},
			want: io.ErrUnexpectedEOF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(bytes.NewReader(tt.data(t)))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseReservedDisposal(t *testing.T) {
	g := testGIF{
		w: 2, h: 2,
		global: testPalette,
		frames: []testFrame{{w: 2, h: 2, indices: solid(2, 2, 0), disposal: 6}},
	}

	desc, err := Parse(bytes.NewReader(g.encode(t)))
	require.NoError(t, err)
	require.Equal(t, DisposalNotSpecified, desc.Frames[0].Disposal())
}

func TestParseTruncatedFrame(t *testing.T) {
	g := testGIF{
		w: 4, h: 4,
		global: testPalette,
		frames: []testFrame{
			{w: 4, h: 4, indices: solid(4, 4, 1)},
			{w: 4, h: 4, indices: solid(4, 4, 2)},
		},
	}
	data := g.encode(t)

	desc, err := Parse(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, desc.Frames, 2)

	cut := data[:desc.Frames[1].DataOffset+2]
	desc, err = Parse(bytes.NewReader(cut))
	require.NoError(t, err)
	require.Len(t, desc.Frames, 1)

	d := NewDecoder(desc, Options{})
	pix, err := d.RenderFrame(0)
	require.NoError(t, err)
	require.Equal(t, filled(16, green), pix)

	// A truncated first frame leaves nothing to render.
	_, err = Parse(bytes.NewReader(data[:desc.Frames[0].DataOffset+2]))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
