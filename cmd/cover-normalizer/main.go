package main

import (
	"errors"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/cover-normalizer/internal/config"
	"github.com/aliskhannn/cover-normalizer/internal/discovery"
	"github.com/aliskhannn/cover-normalizer/internal/processor"
	covsvc "github.com/aliskhannn/cover-normalizer/internal/service/cover"
	"github.com/aliskhannn/cover-normalizer/internal/storage/file"
)

func main() {
	// Initialize logger and load application configuration.
	zlog.Init()

	flags := config.NewFlagSet(os.Args[0])
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		zlog.Logger.Fatal().Err(err).Msg("failed to parse flags")
	}

	path, _ := flags.GetString("config")

	osFs := afero.NewOsFs()
	cfg, err := config.Load(osFs, path, flags)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to load config")
	}

	lvl, _ := cfg.Level()
	zerolog.SetGlobalLevel(lvl)

	// Storage, codec, discovery and the orchestrating service.
	storage := file.NewStorage(osFs)
	imageProcessor := processor.New(storage, cfg.Convert.TargetSize)
	discoverer := discovery.New(storage, imageProcessor, discovery.Policy{
		Prefix:        cfg.Discovery.Prefix,
		SkipThreshold: cfg.Discovery.SkipThreshold,
	}, cfg.Workers)
	service := covsvc.NewService(discoverer, imageProcessor, cfg.Workers, os.Stdout)

	report := service.Run(cfg.Root)

	if report.Failed > 0 {
		os.Exit(1)
	}
}
