package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmagro/nft-image-urls/internal/output"
	"github.com/dmagro/nft-image-urls/internal/provider"
)

func endpointsCmd() *cobra.Command {
	var (
		samples int
		format  string
	)

	cmd := &cobra.Command{
		Use:   "endpoints",
		Short: "Probe and rank the configured RPC endpoints",
		Long: `Sample eth_blockNumber on every configured endpoint concurrently and
rank them by success rate, p95 latency and block freshness.

Ranking is informational: fetches always try endpoints in configured order.

Example:
  imageurls endpoints --samples 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEndpoints(cmd, samples, format)
		},
	}

	cmd.Flags().IntVar(&samples, "samples", 0, "Samples per endpoint (0 = defaults.probe_samples)")
	cmd.Flags().StringVar(&format, "format", "terminal", "Output format: terminal|json")

	return cmd
}

func runEndpoints(cmd *cobra.Command, samples int, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	if samples <= 0 {
		samples = cfg.Defaults.ProbeSamples
	}

	ctx, stop := signalContext()
	defer stop()

	ranked, err := provider.Probe(ctx, cfg.Endpoints, samples)
	if err != nil {
		return fmt.Errorf("endpoint probe failed: %w", err)
	}

	if format == "json" {
		return output.RenderJSON(cmd.OutOrStdout(), ranked)
	}
	output.RenderEndpointsTerminal(cmd.OutOrStdout(), ranked, samples)
	return nil
}
