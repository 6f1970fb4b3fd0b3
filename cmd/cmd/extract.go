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

	"github.com/spf13/cobra"

	"github.com/ostafen/giflet/internal/export"
	"github.com/ostafen/giflet/pkg/util/format"
)

func DefineExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Render every frame of a GIF to image files",
		Long: `The 'extract' command decodes all the frames of a GIF in order and writes each
fully composited frame to the output directory. Frames that cannot be decoded
are skipped and recorded in the report.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunExtract,
	}

	cmd.Flags().StringP("output-dir", "o", "frames", "directory where frames are written")
	cmd.Flags().StringP("format", "f", "png", "output image format (png, bmp)")
	cmd.Flags().String("report", "report.xml", "report file name, relative to the output directory; empty disables it")
	cmd.Flags().String("log-file", "", "write a detailed decode log to this file, relative to the output directory")
	cmd.Flags().Bool("no-progress", false, "disable the progress bar")
	return cmd
}

func RunExtract(cmd *cobra.Command, args []string) error {
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

	log.Info("Starting extraction...")
	log.Infof("Source: \t%s (%s)", absPath(src.Name()), format.FormatBytes(src.Size()))
	log.Infof("Destination: \t%s", absPath(cfg.Extract.OutputDir))
	log.Infof("Format: \t%s", cfg.Extract.Format)

	opts := export.Options{
		OutputDir: cfg.Extract.OutputDir,
		Format:    cfg.Extract.Format,
		Report:    cfg.Extract.Report,
		LogFile:   cfg.Extract.LogFile,
		LogLevel:  log.Level().Slog(),
		Console:   log,
	}
	if noProgress, _ := cmd.Flags().GetBool("no-progress"); !noProgress {
		opts.Progress = cmd.OutOrStdout()
	}

	res, err := export.Export(src, opts)
	if err != nil {
		return err
	}

	log.Info("Extraction completed!")
	log.Infof("Frames: \t%d (%d failed)", res.Frames, res.Failed)
	log.Infof("Total data: \t%s", format.FormatBytes(res.BytesWritten))
	log.Infof("Duration: \t%s", format.FormatDurationHMS(res.Duration))
	if res.ReportPath != "" {
		log.Infof("Report saved to: \t%s", absPath(res.ReportPath))
	}
	if res.LogPath != "" {
		log.Infof("Detailed decode log: \t%s", absPath(res.LogPath))
	}

	if res.Failed > 0 && res.Failed == res.Frames {
		return fmt.Errorf("no frame of %q could be decoded", args[0])
	}
	return nil
}
