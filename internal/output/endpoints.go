package output

import (
	"fmt"
	"io"

	"github.com/dmagro/nft-image-urls/internal/provider"
)

// RenderEndpointsTerminal prints probe results, best first.
func RenderEndpointsTerminal(w io.Writer, ranked provider.Ranked, samples int) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", bold("Endpoint Health"), dim(fmt.Sprintf("(%d samples each)", samples)))

	tbl := newTable(w, "#", "Endpoint", "Status", "Success", "p50", "p95", "Max", "Block", "Delta", "Score")
	for _, h := range ranked {
		tbl.AddRow(
			h.Order+1,
			h.Name,
			formatStatus(h.Status),
			formatSuccessRate(h.SuccessRate),
			formatDuration(h.Latency.P50),
			formatDuration(h.Latency.P95),
			formatDuration(h.Latency.Max),
			h.BlockHeight,
			h.BlockDelta,
			fmt.Sprintf("%.2f", h.Score),
		)
	}
	tbl.Print()
	fmt.Fprintln(w)

	for _, h := range ranked {
		if h.LastError != "" {
			fmt.Fprintf(w, "  %s %s: %s\n", red("✗"), h.Name, h.LastError)
		}
	}

	best, err := ranked.Best()
	if err != nil {
		fmt.Fprintf(w, "  %s %s\n", yellow("⚠"), err.Error())
	} else {
		fmt.Fprintf(w, "  %s %s: %s\n", green("✓"), bold("Fastest"), best.Name)
	}
	fmt.Fprintf(w, "  %s\n", dim("Fetches always try endpoints in the configured order (#)."))
	fmt.Fprintln(w)
}
