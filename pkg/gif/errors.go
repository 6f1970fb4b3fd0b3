package gif

import "errors"

var (
	ErrInvalidHeader       = errors.New("gif: invalid header")
	ErrUnknownBlock        = errors.New("gif: unknown block type")
	ErrInvalidExtension    = errors.New("gif: invalid extension")
	ErrFrameOutOfBounds    = errors.New("gif: frame bounds larger than image bounds")
	ErrNoColorTable        = errors.New("gif: no color table")
	ErrInvalidLitWidth     = errors.New("gif: pixel size in decode out of range")
	ErrMissingImageData    = errors.New("gif: missing image data")
	ErrFrameOutOfRange     = errors.New("gif: frame index out of range")
	ErrFrameDecode         = errors.New("gif: frame decode failed")
	ErrEmptyScreen         = errors.New("gif: empty logical screen")
	ErrFrameDataOutOfRange = errors.New("gif: frame data exceeds source")
)
