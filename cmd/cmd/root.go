package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ostafen/giflet/internal/config"
	"github.com/ostafen/giflet/internal/env"
	"github.com/ostafen/giflet/internal/fs"
	"github.com/ostafen/giflet/internal/logger"
)

const AppName = env.AppName

func Execute() error {
	return NewRootCommand().Execute()
}

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   AppName,
		Short: AppName + " - GIF frame decoder and extractor",
	}

	rootCmd.PersistentFlags().String("config", "", "path to a YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "info", "console log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("no-mmap", false, "read the GIF through a buffered file instead of a memory mapping")

	rootCmd.AddCommand(
		DefineInfoCommand(),
		DefineExtractCommand(),
		DefineMountCommand(),
	)
	return rootCmd
}

// loadConfig returns the configuration file values, or the defaults, with
// every explicitly set flag applied on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("no-mmap") {
		noMmap, _ := flags.GetBool("no-mmap")
		cfg.UseMmap = !noMmap
	}

	stringFlags := map[string]*string{
		"output-dir": &cfg.Extract.OutputDir,
		"format":     &cfg.Extract.Format,
		"report":     &cfg.Extract.Report,
		"log-file":   &cfg.Extract.LogFile,
		"mountpoint": &cfg.Mount.Mountpoint,
	}
	for name, dst := range stringFlags {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *logger.Logger {
	// Validate has already checked the level.
	level, _ := logger.ParseLevel(cfg.LogLevel)
	return logger.New(cmd.ErrOrStderr(), level)
}

func openSource(path string, cfg *config.Config) (fs.File, error) {
	return fs.Open(path, fs.Options{UseMmap: cfg.UseMmap})
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
