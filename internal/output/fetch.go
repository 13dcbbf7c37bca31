package output

import (
	"fmt"
	"io"

	"github.com/dmagro/nft-image-urls/internal/fetcher"
	"github.com/dmagro/nft-image-urls/internal/rpc"
	"github.com/dmagro/nft-image-urls/internal/stats"
)

// EndpointUsage is the JSON form of per-endpoint call counts for one run.
type EndpointUsage struct {
	Name        string            `json:"name"`
	Attempts    int               `json:"attempts"`
	Successes   int               `json:"successes"`
	Failures    int               `json:"failures"`
	SuccessRate float64           `json:"success_rate"`
	Latency     stats.TailLatency `json:"latency"`
}

// ConvertUsage summarizes Fallback usage for rendering.
func ConvertUsage(usage []rpc.EndpointUsage) []EndpointUsage {
	out := make([]EndpointUsage, 0, len(usage))
	for _, u := range usage {
		eu := EndpointUsage{
			Name:      u.Name,
			Attempts:  u.Attempts,
			Successes: u.Successes,
			Failures:  u.Failures,
			Latency:   stats.CalculateTailLatency(u.Latencies),
		}
		if u.Attempts > 0 {
			eu.SuccessRate = float64(u.Successes) / float64(u.Attempts) * 100
		}
		out = append(out, eu)
	}
	return out
}

// RenderFetchSummary prints the end-of-run tables.
func RenderFetchSummary(w io.Writer, s fetcher.Summary, usage []EndpointUsage) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, bold("Fetch Summary"))
	fmt.Fprintf(w, "  Previously saved: %d\n", s.PreviouslyResolved)
	fmt.Fprintf(w, "  Attempted:        %d\n", s.Attempted)
	fmt.Fprintf(w, "  Newly resolved:   %s\n", green(s.NewlyResolved))
	fmt.Fprintf(w, "  Saved:            %d/%d\n", s.Resolved, s.TotalSupply)
	if n := len(s.Unresolved); n > 0 {
		fmt.Fprintf(w, "  Unresolved:       %s %s\n", red(n), dim("(retried on the next run)"))
	}
	fmt.Fprintf(w, "  Duration:         %s\n", formatDuration(s.Duration))
	fmt.Fprintln(w)

	if len(s.Metrics.Kinds) > 0 {
		fmt.Fprintln(w, bold("Token URI Forms"))
		tbl := newTable(w, "Form", "Attempted", "Resolved", "Success")
		for _, k := range s.Metrics.Kinds {
			tbl.AddRow(k.Kind, k.Attempted, k.Resolved, formatSuccessRate(k.SuccessRate))
		}
		tbl.Print()
		fmt.Fprintln(w)
	}

	if len(s.Metrics.Stages) > 0 {
		fmt.Fprintln(w, bold("Unresolved By Stage"))
		tbl := newTable(w, "Stage", "Count")
		for _, st := range s.Metrics.Stages {
			tbl.AddRow(st.Stage, formatErrorCount(st.Count))
		}
		tbl.Print()
		fmt.Fprintln(w)

		fmt.Fprintln(w, bold("Error Breakdown"))
		tbl = newTable(w, "Type", "Count")
		for _, e := range s.Metrics.Errors {
			tbl.AddRow(string(e.Type), formatErrorCount(e.Count))
		}
		tbl.Print()
		fmt.Fprintln(w)
	}

	RenderEndpointUsage(w, usage)
}

// RenderEndpointUsage prints per-endpoint call counts in fallback order.
func RenderEndpointUsage(w io.Writer, usage []EndpointUsage) {
	called := false
	for _, u := range usage {
		if u.Attempts > 0 {
			called = true
			break
		}
	}
	if !called {
		return
	}

	fmt.Fprintln(w, bold("RPC Endpoints"))
	tbl := newTable(w, "Endpoint", "Calls", "Failures", "Success", "p50", "p95", "Max")
	for _, u := range usage {
		tbl.AddRow(
			u.Name,
			u.Attempts,
			formatErrorCount(u.Failures),
			formatSuccessRate(u.SuccessRate),
			formatDuration(u.Latency.P50),
			formatDuration(u.Latency.P95),
			formatDuration(u.Latency.Max),
		)
	}
	tbl.Print()
	fmt.Fprintln(w)
}
