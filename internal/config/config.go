package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ostafen/giflet/internal/logger"
)

const (
	FormatPNG = "png"
	FormatBMP = "bmp"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the options shared by all commands. Command line flags that
// are explicitly set take precedence over the values loaded here.
type Config struct {
	LogLevel string        `yaml:"log_level"`
	UseMmap  bool          `yaml:"use_mmap"`
	Extract  ExtractConfig `yaml:"extract"`
	Mount    MountConfig   `yaml:"mount"`
}

type ExtractConfig struct {
	OutputDir string `yaml:"output_dir"`
	Format    string `yaml:"format"`   // png, bmp
	Report    string `yaml:"report"`   // file name inside output_dir, empty disables the report
	LogFile   string `yaml:"log_file"` // detailed decode log, empty disables it
}

type MountConfig struct {
	Mountpoint string `yaml:"mountpoint"`
}

func Default() *Config {
	return &Config{
		LogLevel: "info",
		UseMmap:  true,
		Extract: ExtractConfig{
			OutputDir: "frames",
			Format:    FormatPNG,
			Report:    "report.xml",
		},
	}
}

// Load reads a YAML configuration file. Fields missing from the file keep
// their default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Validate(cfg *Config) error {
	if _, err := logger.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	switch cfg.Extract.Format {
	case FormatPNG, FormatBMP:
	default:
		return fmt.Errorf("%w: unsupported output format %q", ErrInvalidConfig, cfg.Extract.Format)
	}

	if cfg.Extract.OutputDir == "" {
		return fmt.Errorf("%w: extract.output_dir is required", ErrInvalidConfig)
	}
	return nil
}
