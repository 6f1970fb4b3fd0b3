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
package pbar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ostafen/giflet/pkg/util/format"
)

const (
	MinRefreshRate = time.Millisecond * 200
	barLength      = 20
)

// ProgressBar tracks the frames written by an export.
type ProgressBar struct {
	out            io.Writer
	Total          int
	Done           int
	Failed         int
	BytesWritten   int64
	StartTime      time.Time
	LastUpdateTime time.Time
}

func New(out io.Writer, total int) *ProgressBar {
	return &ProgressBar{
		out:       out,
		Total:     total,
		StartTime: time.Now(),
	}
}

// Add records one processed frame.
func (pb *ProgressBar) Add(written int64, failed bool) {
	pb.Done++
	pb.BytesWritten += written
	if failed {
		pb.Failed++
	}
}

// Render updates and prints the progress bar line, at most once every
// MinRefreshRate unless force is set.
func (pb *ProgressBar) Render(force bool) {
	if !force && time.Since(pb.LastUpdateTime) < MinRefreshRate {
		return
	}
	pb.LastUpdateTime = time.Now()

	fmt.Fprintf(pb.out, "\r[INFO] Progress: [%s] %3.0f%% (%d/%d frames) | Failed: %d | %s | %.1f frames/s    ",
		pb.bar(),
		pb.percentage(),
		pb.Done,
		pb.Total,
		pb.Failed,
		format.FormatBytes(pb.BytesWritten),
		pb.rate(),
	)
}

func (pb *ProgressBar) percentage() float64 {
	if pb.Total == 0 {
		return 100
	}
	return float64(pb.Done) / float64(pb.Total) * 100
}

func (pb *ProgressBar) bar() string {
	filled := int(barLength * pb.percentage() / 100)
	if filled >= barLength {
		return strings.Repeat("=", barLength)
	}
	return strings.Repeat("=", filled) + ">" + strings.Repeat(" ", barLength-filled-1)
}

func (pb *ProgressBar) rate() float64 {
	elapsed := time.Since(pb.StartTime).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(pb.Done) / elapsed
}

// Finish renders the final state and moves to the next line.
func (pb *ProgressBar) Finish() {
	pb.Render(true)
	fmt.Fprintln(pb.out)
}
