package report

import (
	"encoding/xml"
	"errors"
	"io"
)

var ErrNotAReport = errors.New("report: missing root element")

// Read parses a report written by Writer.
func Read(r io.Reader) (*Header, []Frame, error) {
	dec := xml.NewDecoder(r)

	var (
		hdr    *Header
		frames []Frame
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case rootElement:
			hdr = &Header{}
			for _, attr := range start.Attr {
				switch attr.Name.Local {
				case "version":
					hdr.Version = attr.Value
				case "run_id":
					hdr.RunID = attr.Value
				}
			}
		case "creator", "source", "frame":
			if hdr == nil {
				return nil, nil, ErrNotAReport
			}
			if err := decodeElement(dec, &start, hdr, &frames); err != nil {
				return nil, nil, err
			}
		}
	}

	if hdr == nil {
		return nil, nil, ErrNotAReport
	}
	return hdr, frames, nil
}

func decodeElement(dec *xml.Decoder, start *xml.StartElement, hdr *Header, frames *[]Frame) error {
	switch start.Name.Local {
	case "creator":
		return dec.DecodeElement(&hdr.Creator, start)
	case "source":
		return dec.DecodeElement(&hdr.Source, start)
	}

	var f Frame
	if err := dec.DecodeElement(&f, start); err != nil {
		return err
	}
	*frames = append(*frames, f)
	return nil
}
