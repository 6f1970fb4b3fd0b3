// Package mmap exposes files as read-only memory mappings.
package mmap

import "errors"

var (
	ErrEmptyFile   = errors.New("mmap: empty file")
	ErrUnsupported = errors.New("mmap: not supported on this platform")
)
