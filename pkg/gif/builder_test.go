package gif

import (
	"bytes"
	"compress/lzw"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	red   = PackRGB(0xFF, 0, 0)
	green = PackRGB(0, 0xFF, 0)
	blue  = PackRGB(0, 0, 0xFF)
	white = PackRGB(0xFF, 0xFF, 0xFF)

	testPalette = ColorTable{red, green, blue, white}
)

type testFrame struct {
	x, y, w, h  int
	indices     []byte // visual row order
	interlaced  bool
	local       ColorTable
	noControl   bool
	disposal    Disposal
	transparent *byte
	delay       uint16
	raw         []byte // replaces the encoded sub-blocks when set
}

type testGIF struct {
	w, h    int
	global  ColorTable
	bg      byte
	aspect  byte
	loop    *int
	frames  []testFrame
	noTrail bool
}

func ptr[T any](v T) *T {
	return &v
}

func solid(w, h int, idx byte) []byte {
	return bytes.Repeat([]byte{idx}, w*h)
}

// tableBits returns the size field of a color table with n entries.
func tableBits(n int) byte {
	bits := byte(0)
	for 1<<(bits+1) < n {
		bits++
	}
	return bits
}

func writeTable(buf *bytes.Buffer, ct ColorTable) {
	size := 1 << (tableBits(len(ct)) + 1)
	for i := 0; i < size; i++ {
		var c uint32
		if i < len(ct) {
			c = ct[i]
		}
		buf.Write([]byte{byte(c >> 16), byte(c >> 8), byte(c)})
	}
}

func interlaceRows(indices []byte, w, h int) []byte {
	out := make([]byte, 0, len(indices))
	for _, pass := range interlacePasses {
		for y := pass.start; y < h; y += pass.step {
			out = append(out, indices[y*w:(y+1)*w]...)
		}
	}
	return out
}

func encodeBlocks(t *testing.T, indices []byte, litWidth int) []byte {
	t.Helper()

	var compressed bytes.Buffer
	lw := lzw.NewWriter(&compressed, lzw.LSB, litWidth)
	_, err := lw.Write(indices)
	require.NoError(t, err)
	require.NoError(t, lw.Close())

	var out bytes.Buffer
	data := compressed.Bytes()
	for len(data) > 0 {
		n := min(255, len(data))
		out.WriteByte(byte(n))
		out.Write(data[:n])
		data = data[n:]
	}
	out.WriteByte(0)
	return out.Bytes()
}

func (g testGIF) encode(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("GIF89a")
	_ = binary.Write(&buf, binary.LittleEndian, uint16(g.w))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(g.h))

	var fields byte
	if g.global != nil {
		fields = fColorTable | tableBits(len(g.global))
	}
	buf.Write([]byte{fields, g.bg, g.aspect})
	if g.global != nil {
		writeTable(&buf, g.global)
	}

	if g.loop != nil {
		buf.Write([]byte{sExtension, eApplication, 11})
		buf.WriteString("NETSCAPE2.0")
		buf.Write([]byte{3, 1, byte(*g.loop), byte(*g.loop >> 8), 0})
	}

	for _, f := range g.frames {
		if !f.noControl {
			flags := byte(f.disposal) << 2
			tidx := byte(0)
			if f.transparent != nil {
				flags |= gcTransparentColorSet
				tidx = *f.transparent
			}
			buf.Write([]byte{sExtension, eGraphicControl, 4, flags, byte(f.delay), byte(f.delay >> 8), tidx, 0})
		}

		buf.WriteByte(sImageDescriptor)
		for _, v := range []int{f.x, f.y, f.w, f.h} {
			_ = binary.Write(&buf, binary.LittleEndian, uint16(v))
		}

		var fields byte
		if f.interlaced {
			fields |= fInterlace
		}
		ct := g.global
		if f.local != nil {
			fields |= fColorTable | tableBits(len(f.local))
			ct = f.local
		}
		buf.WriteByte(fields)
		if f.local != nil {
			writeTable(&buf, f.local)
		}

		litWidth := max(2, int(tableBits(len(ct)))+1)
		buf.WriteByte(byte(litWidth))

		if f.raw != nil {
			buf.Write(f.raw)
			continue
		}

		indices := f.indices
		if f.interlaced {
			indices = interlaceRows(indices, f.w, f.h)
		}
		buf.Write(encodeBlocks(t, indices, litWidth))
	}

	if !g.noTrail {
		buf.WriteByte(sTrailer)
	}
	return buf.Bytes()
}

func (g testGIF) open(t *testing.T) *Decoder {
	t.Helper()

	d, err := Open(bytes.NewReader(g.encode(t)), Options{})
	require.NoError(t, err)
	return d
}

// countingSource counts the reads issued against the wrapped source.
type countingSource struct {
	*bytes.Reader
	reads int
}

func (s *countingSource) Read(p []byte) (int, error) {
	s.reads++
	return s.Reader.Read(p)
}

// expected builds the framebuffer obtained by painting indices over base.
func expected(base []uint32, screenW int, f testFrame, ct ColorTable) []uint32 {
	out := append([]uint32(nil), base...)
	for y := 0; y < f.h; y++ {
		for x := 0; x < f.w; x++ {
			idx := f.indices[y*f.w+x]
			if f.transparent != nil && idx == *f.transparent {
				continue
			}
			out[(f.y+y)*screenW+f.x+x] = ct[idx]
		}
	}
	return out
}
