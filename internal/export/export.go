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

// Package export renders every frame of a GIF to image files and records
// the run in an XML report.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/bmp"

	"github.com/ostafen/giflet/internal/env"
	"github.com/ostafen/giflet/internal/fs"
	"github.com/ostafen/giflet/internal/logger"
	"github.com/ostafen/giflet/pkg/gif"
	"github.com/ostafen/giflet/pkg/pbar"
	"github.com/ostafen/giflet/pkg/report"
	"github.com/ostafen/giflet/pkg/util/format"
	osutil "github.com/ostafen/giflet/pkg/util/os"
)

var ErrUnsupportedFormat = errors.New("export: unsupported output format")

type encodeFunc func(io.Writer, image.Image) error

var encoders = map[string]encodeFunc{
	"png": png.Encode,
	"bmp": bmp.Encode,
}

type Options struct {
	OutputDir string
	Format    string // png, bmp
	Report    string // relative to OutputDir unless absolute; empty disables it
	LogFile   string // relative to OutputDir unless absolute; empty disables it
	LogLevel  slog.Level

	Console  *logger.Logger // nil disables console messages
	Progress io.Writer      // nil disables the progress bar
}

type Result struct {
	Frames       int
	Failed       int
	BytesWritten int64
	ReportPath   string
	LogPath      string
	Duration     time.Duration
}

// FrameFileName returns the name of the file holding frame i.
func FrameFileName(i int, ext string) string {
	return fmt.Sprintf("frame_%04d.%s", i, ext)
}

// Export renders the frames of src in order, so that each one is composited
// over its predecessors. Frames that fail to decode are skipped and recorded
// in the report.
func Export(src fs.File, opts Options) (*Result, error) {
	encode, ok := encoders[opts.Format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
	}

	if _, err := osutil.EnsureDir(opts.OutputDir, false); err != nil {
		return nil, err
	}

	res := &Result{
		ReportPath: resolve(opts.OutputDir, opts.Report),
		LogPath:    resolve(opts.OutputDir, opts.LogFile),
	}

	log, logFile, err := setupLogger(res.LogPath, opts.LogLevel)
	if err != nil {
		return nil, err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	console := opts.Console
	if console == nil {
		console = logger.New(io.Discard, logger.ErrorLevel)
	}

	start := time.Now()

	d, err := gif.Open(src, gif.Options{Logger: log})
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", src.Name(), err)
	}
	desc := d.Descriptor()
	log.Info("gif parsed",
		"file", src.Name(),
		"version", desc.Version,
		"width", desc.Screen.Width,
		"height", desc.Screen.Height,
		"frames", d.FrameCount(),
	)

	var rw *report.Writer
	if res.ReportPath != "" {
		f, err := os.Create(res.ReportPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		rw = report.NewWriter(f)
		hdr := report.NewHeader(env.AppName, env.Version, env.CommitHash, report.Source{
			Filename:   src.Name(),
			FileSize:   src.Size(),
			GIFVersion: desc.Version,
			Width:      desc.Screen.Width,
			Height:     desc.Screen.Height,
			FrameCount: d.FrameCount(),
			LoopCount:  desc.LoopCount,
			Background: format.FormatColor(d.BackgroundColor()),
		})
		if err := rw.WriteHeader(hdr); err != nil {
			return nil, err
		}
		log.Debug("report started", "path", res.ReportPath, "run_id", hdr.RunID)
	}

	var pb *pbar.ProgressBar
	if opts.Progress != nil {
		pb = pbar.New(opts.Progress, d.FrameCount())
	}

	for i := 0; i < d.FrameCount(); i++ {
		entry := frameEntry(d, i)

		written, err := exportFrame(d, i, filepath.Join(opts.OutputDir, FrameFileName(i, opts.Format)), encode)
		if err != nil {
			if !errors.Is(err, gif.ErrFrameDecode) {
				return nil, err
			}
			console.Warnf("frame %d skipped: %s", i, err)
			entry.Error = err.Error()
			res.Failed++
		} else {
			entry.Filename = FrameFileName(i, opts.Format)
			res.BytesWritten += written
		}
		res.Frames++

		if rw != nil {
			if err := rw.WriteFrame(entry); err != nil {
				log.Error("unable to write report entry", "frame", i, "err", err)
			}
		}
		if pb != nil {
			pb.Add(written, err != nil)
			pb.Render(false)
		}
	}

	if pb != nil {
		pb.Finish()
	}
	if rw != nil {
		if err := rw.Close(); err != nil {
			return nil, err
		}
	}

	res.Duration = time.Since(start)
	log.Info("export completed",
		"frames", res.Frames,
		"failed", res.Failed,
		"bytes", res.BytesWritten,
		"duration", res.Duration,
	)
	return res, nil
}

func exportFrame(d *gif.Decoder, i int, path string, encode encodeFunc) (int64, error) {
	pix, err := d.RenderFrame(i)
	if err != nil {
		return 0, err
	}
	img := gif.ToImage(pix, d.Dimension())

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file %q: %w", path, err)
	}
	defer f.Close()

	cw := &countingWriter{w: f}
	w := bufio.NewWriterSize(cw, 256*1024)
	if err := encode(w, img); err != nil {
		return 0, fmt.Errorf("failed to encode frame %d: %w", i, err)
	}
	if err := w.Flush(); err != nil {
		return 0, err
	}
	return cw.n, f.Close()
}

func frameEntry(d *gif.Decoder, i int) report.Frame {
	frame := &d.Descriptor().Frames[i]
	return report.Frame{
		Index:       i,
		X:           frame.Position.X,
		Y:           frame.Position.Y,
		Width:       frame.Dimension.Width,
		Height:      frame.Dimension.Height,
		Interlaced:  frame.Interlaced,
		Disposal:    frame.Disposal().String(),
		DelayMS:     d.FrameDelay(i).Milliseconds(),
		Transparent: frame.HasTransparency(),
		DataOffset:  frame.DataOffset,
		DataLength:  frame.DataLength,
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

func resolve(dir, name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// setupLogger initializes a slog.Logger that writes to logFilePath, or
// discards output when the path is empty. The returned file, if not nil,
// must be closed by the caller.
func setupLogger(logFilePath string, minLevel slog.Level) (*slog.Logger, *os.File, error) {
	var writer io.Writer = io.Discard
	var file *os.File

	if logFilePath != "" {
		logDir := filepath.Dir(logFilePath)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %q: %w", logDir, err)
		}

		f, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %q: %w", logFilePath, err)
		}
		writer = f
		file = f
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level:     minLevel,
		AddSource: true,
	})
	return slog.New(handler), file, nil
}
