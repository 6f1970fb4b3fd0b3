//go:build !linux
// +build !linux

package fuse

import (
	"errors"

	"github.com/ostafen/giflet/internal/logger"
	"github.com/ostafen/giflet/pkg/gif"
)

var ErrUnsupported = errors.New("FUSE mount is only supported on Linux")

func Mount(mountpoint string, d *gif.Decoder, log *logger.Logger) error {
	return ErrUnsupported
}
