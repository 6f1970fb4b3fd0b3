package fuse

import (
	"bytes"
	"image"
	"image/color"
	stdgif "image/gif"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ostafen/giflet/pkg/gif"
)

func newStore(t *testing.T, cacheSize int) *FrameStore {
	t.Helper()

	pal := color.Palette{
		color.RGBA{0, 0, 0, 0xFF},
		color.RGBA{0xFF, 0, 0, 0xFF},
		color.RGBA{0, 0xFF, 0, 0xFF},
		color.RGBA{0, 0, 0xFF, 0xFF},
	}

	anim := &stdgif.GIF{Config: image.Config{ColorModel: pal, Width: 8, Height: 8}}
	for i := 0; i < 3; i++ {
		img := image.NewPaletted(image.Rect(i*2, 0, i*2+2, 8), pal)
		for j := range img.Pix {
			img.Pix[j] = uint8(i + 1)
		}
		anim.Image = append(anim.Image, img)
		anim.Delay = append(anim.Delay, 5)
		anim.Disposal = append(anim.Disposal, stdgif.DisposalNone)
	}

	var buf bytes.Buffer
	require.NoError(t, stdgif.EncodeAll(&buf, anim))

	d, err := gif.Open(bytes.NewReader(buf.Bytes()), gif.Options{})
	require.NoError(t, err)
	return NewFrameStore(d, cacheSize)
}

func TestFrameStoreLookup(t *testing.T) {
	s := newStore(t, 0)
	require.Equal(t, 3, s.Len())

	for i := 0; i < s.Len(); i++ {
		idx, ok := s.Lookup(s.Name(i))
		require.True(t, ok)
		require.Equal(t, i, idx)
	}

	for _, name := range []string{"frame_0003.png", "frame_1.png", "frame_0001.bmp", "other", "frame_-001.png"} {
		_, ok := s.Lookup(name)
		require.False(t, ok, name)
	}
}

func TestFrameStoreRandomAccess(t *testing.T) {
	sequential := newStore(t, 1)

	want := make([][]byte, sequential.Len())
	for i := range want {
		data, err := sequential.Frame(i)
		require.NoError(t, err)
		want[i] = data
	}

	s := newStore(t, 1)
	for _, i := range []int{2, 0, 1, 2, 1, 0} {
		data, err := s.Frame(i)
		require.NoError(t, err)
		require.Equal(t, want[i], data, "frame %d", i)
	}
	require.Len(t, s.cache, 1)

	img, err := png.Decode(bytes.NewReader(want[2]))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())

	// Every frame is composited over its predecessors.
	require.Equal(t, color.NRGBA{0xFF, 0, 0, 0xFF}, color.NRGBAModel.Convert(img.At(0, 0)))
	require.Equal(t, color.NRGBA{0, 0, 0xFF, 0xFF}, color.NRGBAModel.Convert(img.At(5, 7)))
	require.Equal(t, color.NRGBA{}, color.NRGBAModel.Convert(img.At(7, 0)))
}

func TestFrameStoreOutOfRange(t *testing.T) {
	_, err := newStore(t, 0).Frame(3)
	require.ErrorIs(t, err, gif.ErrFrameOutOfRange)
}
