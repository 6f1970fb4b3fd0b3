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
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ostafen/giflet/internal/fuse"
	"github.com/ostafen/giflet/pkg/gif"
)

func DefineMountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mount <file>",
		Short: "Mount the frames of a GIF as a read-only directory",
		Long: `The 'mount' command exposes every frame of a GIF as a PNG file inside a
read-only FUSE filesystem. Frames are rendered on first access. The filesystem
is unmounted on SIGINT or SIGTERM. Only supported on Linux.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunMount,
	}

	cmd.Flags().StringP("mountpoint", "m", "", "directory where the filesystem will be mounted. If not specified, a default will be generated.")
	return cmd
}

func RunMount(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cmd, cfg)

	src, err := openSource(args[0], cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	d, err := gif.Open(src, gif.Options{})
	if err != nil {
		return fmt.Errorf("failed to parse %q: %w", args[0], err)
	}

	mountpoint := cfg.Mount.Mountpoint
	if mountpoint == "" {
		mountpoint = getMountpoint(args[0])
	}
	return fuse.Mount(mountpoint, d, log)
}

// getMountpoint generates a mountpoint name from a file name by stripping
// the extension. If the extension is empty, "_mnt" is added.
func getMountpoint(fileName string) string {
	baseName := filepath.Base(fileName)
	ext := filepath.Ext(baseName)
	mountpoint := strings.TrimSuffix(baseName, ext)
	if ext == "" {
		mountpoint += "_mnt"
	}
	return mountpoint
}
