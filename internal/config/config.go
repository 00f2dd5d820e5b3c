package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aliskhannn/cover-normalizer/internal/model"
)

// DefaultPath is where the configuration file is looked up by default.
const DefaultPath = "./config/config.yml"

// Config holds the main configuration for the application.
type Config struct {
	Root      string    `mapstructure:"root"`      // Directory tree to normalize
	Workers   int       `mapstructure:"workers"`   // Worker pool size, 0 for GOMAXPROCS
	LogLevel  string    `mapstructure:"log_level"` // zerolog level name
	Convert   Convert   `mapstructure:"convert"`
	Discovery Discovery `mapstructure:"discovery"`
}

// Convert holds thumbnail generation settings.
type Convert struct {
	TargetSize int `mapstructure:"target_size"` // Edge of the square thumbnail
}

// Discovery holds candidate selection settings.
type Discovery struct {
	Prefix        string `mapstructure:"prefix"`         // Required file name prefix
	SkipThreshold int    `mapstructure:"skip_threshold"` // Max edge of an output that is kept as is
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"root":           "root",
	"workers":        "workers",
	"log-level":      "log_level",
	"target-size":    "convert.target_size",
	"skip-threshold": "discovery.skip_threshold",
}

// NewFlagSet defines the command-line flags understood by Load.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)

	fs.StringP("config", "c", DefaultPath, "path to the YAML configuration file")
	fs.StringP("root", "r", "", "root directory to scan for cover art")
	fs.IntP("workers", "w", 0, "number of parallel workers (0 = number of CPUs)")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.Int("target-size", model.DefaultTargetSize, "edge length of produced thumbnails")
	fs.Int("skip-threshold", model.DefaultSkipThreshold, "existing thumbnails up to this size are kept")

	return fs
}

// Load reads the configuration from the YAML file at path, then applies
// COVER_* environment variables and changed flags on top of it.
// A missing file is not an error as long as the root is set elsewhere.
// An unusable root yields an error wrapping model.ErrRootUnavailable.
func Load(fsys afero.Fs, path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetFs(fsys)

	v.SetDefault("root", "")
	v.SetDefault("workers", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("convert.target_size", model.DefaultTargetSize)
	v.SetDefault("discovery.prefix", model.CoverPrefix)
	v.SetDefault("discovery.skip_threshold", model.DefaultSkipThreshold)

	v.SetEnvPrefix("cover")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Root = strings.TrimSpace(cfg.Root)

	if err := cfg.validate(fsys); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate(fsys afero.Fs) error {
	if c.Root == "" {
		return fmt.Errorf("%w: root is not set", model.ErrRootUnavailable)
	}

	isDir, err := afero.IsDir(fsys, c.Root)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrRootUnavailable, err)
	}
	if !isDir {
		return fmt.Errorf("%w: %s is not a directory", model.ErrRootUnavailable, c.Root)
	}

	if c.Convert.TargetSize <= 0 {
		return fmt.Errorf("invalid convert.target_size: %d", c.Convert.TargetSize)
	}
	if c.Discovery.SkipThreshold <= 0 {
		return fmt.Errorf("invalid discovery.skip_threshold: %d", c.Discovery.SkipThreshold)
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers: %d", c.Workers)
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	return nil
}

// Level returns the configured zerolog level.
func (c *Config) Level() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}

	return lvl, nil
}
