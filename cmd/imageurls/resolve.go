package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dmagro/nft-image-urls/internal/output"
)

func resolveCmd() *cobra.Command {
	var (
		raw    bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "resolve <token-id>",
		Short: "Resolve the image URL of one token id",
		Long: `Resolve a single token id and print the result. Nothing is saved.

Examples:
  imageurls resolve 42
  imageurls resolve 42 --raw
  imageurls resolve 42 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, args[0], raw, format)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print only the image URL")
	cmd.Flags().StringVar(&format, "format", "terminal", "Output format: terminal|json")

	return cmd
}

func runResolve(cmd *cobra.Command, arg string, raw bool, format string) error {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 0 {
		return fmt.Errorf("invalid token id %q", arg)
	}
	if err := checkFormat(format); err != nil {
		return err
	}

	cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	caller, resolver := newResolver(cfg)
	out := resolver.Resolve(ctx, id)

	endpoint := ""
	for _, u := range caller.Usage() {
		if u.Successes > 0 {
			endpoint = u.Name
			break
		}
	}
	rep := output.NewResolveReport(out, endpoint)

	if format == "json" {
		if err := output.RenderJSON(cmd.OutOrStdout(), rep); err != nil {
			return err
		}
	} else {
		output.RenderResolveTerminal(cmd.OutOrStdout(), rep, raw)
	}

	if !out.Resolved() {
		return fmt.Errorf("token %d unresolved at %s", id, out.Stage)
	}
	return nil
}
