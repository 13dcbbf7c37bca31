// Command imageurls resolves the image URL of every token in an ERC-721
// collection and saves them to a JSON file keyed by token id.
//
// Usage:
//
//	imageurls                    resolve all missing ids (same as fetch)
//	imageurls fetch --report     ... and write reports/fetch-*.json
//	imageurls resolve 42         resolve one id without saving
//	imageurls status             show progress of the saved file
//	imageurls endpoints          probe and rank the RPC endpoints
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmagro/nft-image-urls/internal/config"
	"github.com/dmagro/nft-image-urls/internal/logger"
)

func main() {
	err := rootCmd().Execute()
	logger.Flush(2 * time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imageurls",
		Short: "Resolve NFT image URLs from on-chain tokenURI",
		Long: `Resolve the image URL of every token id in an ERC-721 collection.

For each id the tool calls tokenURI(uint256) over JSON-RPC, loads the metadata
document it points at (inline data: JSON, IPFS via a gateway, or HTTP) and
saves the "image" field. Progress is saved after every chunk, so an
interrupted run resumes where it stopped.

Running without a subcommand is the same as "imageurls fetch".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, false)
		},
	}

	cmd.PersistentFlags().String("config", config.DefaultPath, "Config file path (built-in defaults if missing)")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging, including per-token failures")

	cmd.AddCommand(fetchCmd(), resolveCmd(), statusCmd(), endpointsCmd())
	return cmd
}
