package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmagro/nft-image-urls/internal/adapter"
	"github.com/dmagro/nft-image-urls/internal/config"
	"github.com/dmagro/nft-image-urls/internal/env"
	"github.com/dmagro/nft-image-urls/internal/logger"
	"github.com/dmagro/nft-image-urls/internal/metadata"
	"github.com/dmagro/nft-image-urls/internal/output"
	"github.com/dmagro/nft-image-urls/internal/rpc"
)

// setup loads .env and the config file named by --config, then initializes
// the logger. Every subcommand starts here.
func setup(cmd *cobra.Command) (*config.Config, error) {
	if err := env.Load(); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
	debug, _ := cmd.Root().PersistentFlags().GetBool("debug")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if debug {
		cfg.Logging.Debug = true
	}

	if err := logger.Initialize(logger.Config{
		Debug:     cfg.Logging.Debug,
		SentryDSN: cfg.Logging.SentryDSN,
		Tags:      map[string]string{"contract": cfg.Contract},
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if !output.IsTerminal() {
		output.DisableColors()
	}

	return cfg, nil
}

// newResolver wires the endpoint fallback and metadata fetcher for cfg.
func newResolver(cfg *config.Config) (*rpc.Fallback, metadata.Resolver) {
	caller := rpc.NewFallback(cfg.Endpoints)
	httpClient := adapter.NewHTTPClient(cfg.Defaults.Timeout)
	return caller, metadata.NewResolver(caller, httpClient, cfg)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func checkFormat(format string) error {
	switch format {
	case "terminal":
		return nil
	case "json":
		output.DisableColors()
		return nil
	default:
		return fmt.Errorf("unknown format %q (expected terminal or json)", format)
	}
}
