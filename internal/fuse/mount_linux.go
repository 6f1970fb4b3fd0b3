//go:build linux
// +build linux

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
package fuse

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"golang.org/x/sys/unix"

	"github.com/ostafen/giflet/internal/logger"
	"github.com/ostafen/giflet/pkg/gif"
	osutil "github.com/ostafen/giflet/pkg/util/os"
)

const maxUnmountRetries = 3

// Mount exposes the frames of d under mountpoint and blocks until the
// filesystem is unmounted by a termination signal.
func Mount(mountpoint string, d *gif.Decoder, log *logger.Logger) error {
	created, err := osutil.EnsureDir(mountpoint, true)
	if err != nil {
		return err
	}
	if created {
		defer os.Remove(mountpoint)
	}

	c, err := fuse.Mount(mountpoint, fuse.ReadOnly(), fuse.FSName("giflet"), fuse.Subtype("giflet"))
	if err != nil {
		return err
	}
	defer c.Close()

	fsys := &FrameFS{
		store:   NewFrameStore(d, DefaultCacheSize),
		modTime: time.Now(),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- fusefs.New(c, nil).Serve(fsys)
	}()

	log.Infof("Mounted %d frames at %s", d.FrameCount(), mountpoint)
	return waitForUmount(mountpoint, serveErr, log)
}

func waitForUmount(mountpoint string, serveErr <-chan error, log *logger.Logger) error {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, unix.SIGTERM)
	defer signal.Stop(sigc)

	log.Info("Waiting for termination signal...")

	attempts := 0
	for {
		select {
		case err := <-serveErr:
			if err != nil {
				return fmt.Errorf("serve error: %w", err)
			}
			return nil
		case sig := <-sigc:
			log.Infof("Signal received: %v.", sig)

			if attempts >= maxUnmountRetries {
				return fmt.Errorf("unable to unmount %s after %d attempts", mountpoint, maxUnmountRetries)
			}
			attempts++

			log.Infof("Attempting unmount of %s (attempt %d/%d)...", mountpoint, attempts, maxUnmountRetries)
			if err := fuse.Unmount(mountpoint); err != nil {
				log.Warnf("Unmount failed: %v. Waiting for another signal to retry...", err)
				continue
			}
			log.Info("Unmounted successfully, exiting.")
			return nil
		}
	}
}
