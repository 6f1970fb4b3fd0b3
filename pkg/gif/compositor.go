package gif

// Interlaced images store their rows in four passes.
var interlacePasses = [4]struct{ start, step int }{
	{0, 8}, // rows 0, 8, 16, ...
	{4, 8}, // rows 4, 12, 20, ...
	{2, 4}, // rows 2, 6, 10, ...
	{1, 2}, // rows 1, 3, 5, ...
}

// fillPixels writes the first n decoded indices of frame into fb. Pixels
// equal to the frame's transparent index, and pixels past n, keep their
// current value.
func fillPixels(fb []uint32, indices []byte, n int, colors ColorTable, screen Dimension, frame *ImageDescriptor) {
	width, height := frame.Dimension.Width, frame.Dimension.Height
	if width == 0 || height == 0 {
		return
	}

	transparent := -1
	if frame.HasTransparency() {
		transparent = int(frame.Control.TransparentIndex)
	}

	n = min(n, width*height, len(indices))

	writeRow := func(srcRow, dstRow int) {
		start := srcRow * width
		if start >= n {
			return
		}
		src := indices[start:min(start+width, n)]

		dst := fb[(dstRow+frame.Position.Y)*screen.Width+frame.Position.X:]
		for x, idx := range src {
			if int(idx) == transparent {
				continue
			}
			if int(idx) < len(colors) {
				dst[x] = colors[idx]
			} else {
				dst[x] = Transparent
			}
		}
	}

	if !frame.Interlaced {
		for y := 0; y < height; y++ {
			writeRow(y, y)
		}
		return
	}

	srcRow := 0
	for _, pass := range interlacePasses {
		for y := pass.start; y < height; y += pass.step {
			writeRow(srcRow, y)
			srcRow++
		}
	}
}
