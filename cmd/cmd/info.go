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
package cmd

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ostafen/giflet/pkg/gif"
	"github.com/ostafen/giflet/pkg/util/format"
)

func DefineInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Show the structure of a GIF file",
		Long: `The 'info' command parses a GIF file without decoding its frames and prints
the logical screen, the animation settings and the layout of every frame.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunInfo,
	}
}

func RunInfo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	src, err := openSource(args[0], cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	d, err := gif.Open(src, gif.Options{})
	if err != nil {
		return fmt.Errorf("failed to parse %q: %w", args[0], err)
	}
	return printInfo(cmd.OutOrStdout(), absPath(src.Name()), src.Size(), d)
}

func printInfo(out io.Writer, name string, size int64, d *gif.Decoder) error {
	desc := d.Descriptor()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "File:\t%s\n", name)
	fmt.Fprintf(w, "Size:\t%s\n", format.FormatBytes(size))
	fmt.Fprintf(w, "Version:\t%s\n", desc.Version)
	fmt.Fprintf(w, "Screen:\t%dx%d\n", desc.Screen.Width, desc.Screen.Height)
	fmt.Fprintf(w, "Aspect ratio:\t%.4f\n", d.AspectRatio())
	fmt.Fprintf(w, "Background:\t%s\n", format.FormatColor(d.BackgroundColor()))
	fmt.Fprintf(w, "Global colors:\t%d\n", len(desc.GlobalColorTable))
	fmt.Fprintf(w, "Loop:\t%s\n", loopString(d.LoopCount()))
	fmt.Fprintf(w, "Frames:\t%d\n", d.FrameCount())
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out)

	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FRAME\tPOSITION\tSIZE\tINTERLACED\tDISPOSAL\tDELAY\tTRANSPARENT\tCOLORS\tDATA")
	for i := range desc.Frames {
		f := &desc.Frames[i]

		transparent := "-"
		if f.HasTransparency() {
			transparent = strconv.Itoa(int(f.Control.TransparentIndex))
		}

		fmt.Fprintf(w, "%d\t%d,%d\t%dx%d\t%t\t%s\t%s\t%s\t%d\t%s\n",
			i,
			f.Position.X, f.Position.Y,
			f.Dimension.Width, f.Dimension.Height,
			f.Interlaced,
			f.Disposal(),
			d.FrameDelay(i),
			transparent,
			len(desc.ColorTableFor(i)),
			format.FormatBytes(f.DataLength),
		)
	}
	return w.Flush()
}

func loopString(n *int) string {
	switch {
	case n == nil:
		return "none"
	case *n == 0:
		return "infinite"
	default:
		return strconv.Itoa(*n)
	}
}
