package config

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/aliskhannn/cover-normalizer/internal/model"
)

func newFs(t *testing.T, yaml string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/music", 0o755); err != nil {
		t.Fatal(err)
	}
	if yaml != "" {
		if err := afero.WriteFile(fs, "/etc/cover/config.yml", []byte(yaml), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return fs
}

func TestLoad_FromFile(t *testing.T) {
	fs := newFs(t, `
root: "/music"
workers: 3
log_level: debug
convert:
  target_size: 256
discovery:
  skip_threshold: 320
`)

	cfg, err := Load(fs, "/etc/cover/config.yml", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Root != "/music" || cfg.Workers != 3 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Convert.TargetSize != 256 || cfg.Discovery.SkipThreshold != 320 {
		t.Fatalf("unexpected sizes %+v", cfg)
	}
	if cfg.Discovery.Prefix != model.CoverPrefix {
		t.Fatalf("expected default prefix, got %q", cfg.Discovery.Prefix)
	}
	if lvl, _ := cfg.Level(); lvl != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %v", lvl)
	}
}

func TestLoad_Defaults(t *testing.T) {
	fs := newFs(t, "root: /music\n")

	cfg, err := Load(fs, "/etc/cover/config.yml", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Convert.TargetSize != model.DefaultTargetSize {
		t.Fatalf("expected target size %d, got %d", model.DefaultTargetSize, cfg.Convert.TargetSize)
	}
	if cfg.Discovery.SkipThreshold != model.DefaultSkipThreshold {
		t.Fatalf("expected threshold %d, got %d", model.DefaultSkipThreshold, cfg.Discovery.SkipThreshold)
	}
	if cfg.Workers != 0 {
		t.Fatalf("expected workers 0, got %d", cfg.Workers)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	fs := newFs(t, "root: /elsewhere\n")
	if err := fs.MkdirAll("/from-env", 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("COVER_ROOT", "/from-env")
	t.Setenv("COVER_CONVERT_TARGET_SIZE", "128")

	cfg, err := Load(fs, "/etc/cover/config.yml", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Root != "/from-env" || cfg.Convert.TargetSize != 128 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoad_FlagsWithoutFile(t *testing.T) {
	fs := newFs(t, "")
	flags := NewFlagSet("test")
	if err := flags.Parse([]string{"--root", " /music ", "--workers", "5", "--skip-threshold", "700"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(fs, "/etc/cover/missing.yml", flags)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Root != "/music" || cfg.Workers != 5 || cfg.Discovery.SkipThreshold != 700 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Convert.TargetSize != model.DefaultTargetSize {
		t.Fatalf("unchanged flag must not override default, got %d", cfg.Convert.TargetSize)
	}
}

func TestLoad_RootUnavailable(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unset", "workers: 1\n"},
		{"missing", "root: /nope\n"},
		{"file", "root: /etc/cover/config.yml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newFs(t, tt.yaml), "/etc/cover/config.yml", nil)
			if !errors.Is(err, model.ErrRootUnavailable) {
				t.Fatalf("expected ErrRootUnavailable, got %v", err)
			}
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero size", "root: /music\nconvert:\n  target_size: 0\n"},
		{"negative threshold", "root: /music\ndiscovery:\n  skip_threshold: -1\n"},
		{"negative workers", "root: /music\nworkers: -2\n"},
		{"bad level", "root: /music\nlog_level: loud\n"},
		{"bad yaml", "root: [unclosed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newFs(t, tt.yaml), "/etc/cover/config.yml", nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.Is(err, model.ErrRootUnavailable) {
				t.Fatalf("root is fine, got %v", err)
			}
		})
	}
}
