package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmagro/nft-image-urls/internal/output"
	"github.com/dmagro/nft-image-urls/internal/store"
)

func statusCmd() *cobra.Command {
	var (
		missing int
		format  string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show how many image URLs are saved",
		Long: `Read the output file and report saved and missing token ids.
No network calls are made.

Example:
  imageurls status --missing 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, missing, format)
		},
	}

	cmd.Flags().IntVar(&missing, "missing", 20, "Number of missing ids to list")
	cmd.Flags().StringVar(&format, "format", "terminal", "Output format: terminal|json")

	return cmd
}

func runStatus(cmd *cobra.Command, missing int, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	_, statErr := os.Stat(cfg.Output)
	exists := !errors.Is(statErr, fs.ErrNotExist)

	results, err := store.Load(cfg.Output)
	if err != nil {
		return err
	}

	rep := output.NewStatusReport(cfg.Output, exists, results, cfg.TotalSupply, missing)
	if format == "json" {
		return output.RenderJSON(cmd.OutOrStdout(), rep)
	}
	output.RenderStatusTerminal(cmd.OutOrStdout(), rep)
	return nil
}
