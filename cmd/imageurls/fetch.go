package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmagro/nft-image-urls/internal/fetcher"
	"github.com/dmagro/nft-image-urls/internal/output"
	"github.com/dmagro/nft-image-urls/internal/report"
	"github.com/dmagro/nft-image-urls/internal/rpc"
)

func fetchCmd() *cobra.Command {
	var writeReport bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Resolve and save every missing image URL",
		Long: `Resolve image URLs for all token ids missing from the output file.

Ids are processed in chunks (chunk_size, default 50) that run concurrently;
the output file is rewritten after every chunk. Ids that fail are left out
and retried on the next run. Ctrl+C stops after the current chunk is saved.

Example:
  imageurls fetch --report`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, writeReport)
		},
	}

	cmd.Flags().BoolVar(&writeReport, "report", false, "Write a JSON run report to reports/")

	return cmd
}

func runFetch(cmd *cobra.Command, writeReport bool) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Contract: %s (%d tokens)\n", rpc.ChecksumAddress(cfg.Contract), cfg.TotalSupply)

	caller, resolver := newResolver(cfg)
	progress := output.NewConsoleProgress(w)

	summary, runErr := fetcher.NewDriver(cfg, resolver, progress).Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if runErr != nil {
		progress.Interrupted(summary)
	}

	usage := output.ConvertUsage(caller.Usage())
	output.RenderFetchSummary(w, summary, usage)

	if writeReport {
		path, err := report.WriteJSON(report.NewFetchReport(cfg.Contract, summary, usage), "fetch")
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Fprintf(w, "Report saved: %s\n", path)
	}

	return runErr
}
