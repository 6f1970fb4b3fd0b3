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
package report

import (
	"encoding/xml"
	"io"
)

const rootElement = "giflet"

// Writer streams a report: a header, any number of frames, then Close.
type Writer struct {
	w   io.Writer
	enc *xml.Encoder
}

// NewWriter sets up the XML encoder to indent output with two spaces.
func NewWriter(w io.Writer) *Writer {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	return &Writer{
		w:   w,
		enc: enc,
	}
}

// WriteHeader writes the XML declaration, opens the root element and writes
// the creator and source sections.
func (w *Writer) WriteHeader(hdr Header) error {
	if _, err := io.WriteString(w.w, xml.Header); err != nil {
		return err
	}

	start := xml.StartElement{
		Name: xml.Name{Local: rootElement},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "version"}, Value: hdr.Version},
			{Name: xml.Name{Local: "run_id"}, Value: hdr.RunID},
		},
	}
	if err := w.enc.EncodeToken(start); err != nil {
		return err
	}
	if err := w.enc.Encode(hdr.Creator); err != nil {
		return err
	}
	return w.enc.Encode(hdr.Source)
}

func (w *Writer) WriteFrame(f Frame) error {
	return w.enc.Encode(f)
}

// Close closes the root element and flushes the encoder.
func (w *Writer) Close() error {
	if err := w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: rootElement}}); err != nil {
		return err
	}
	return w.enc.Flush()
}
