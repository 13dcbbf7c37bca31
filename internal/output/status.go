package output

import (
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/dmagro/nft-image-urls/internal/store"
)

// StatusReport describes the saved mapping against the id space.
type StatusReport struct {
	Output       string  `json:"output"`
	Exists       bool    `json:"exists"`
	TotalSupply  int     `json:"total_supply"`
	Resolved     int     `json:"resolved"`
	MissingCount int     `json:"missing_count"`
	Missing      []int   `json:"missing"`
	Percent      float64 `json:"percent"`
	Hosts        []Host  `json:"hosts"`
}

// Host counts saved image URLs by host.
type Host struct {
	Host  string `json:"host"`
	Count int    `json:"count"`
}

// NewStatusReport builds a StatusReport for results, listing at most
// missingLimit missing ids.
func NewStatusReport(path string, exists bool, results store.Results, total, missingLimit int) StatusReport {
	pending := results.Pending(total)
	r := StatusReport{
		Output:       path,
		Exists:       exists,
		TotalSupply:  total,
		Resolved:     total - len(pending),
		MissingCount: len(pending),
		Missing:      []int{},
	}
	if total > 0 {
		r.Percent = float64(r.Resolved) / float64(total) * 100
	}
	if missingLimit > len(pending) {
		missingLimit = len(pending)
	}
	if missingLimit > 0 {
		r.Missing = pending[:missingLimit]
	}

	counts := make(map[string]int)
	for id, raw := range results {
		if id >= total {
			continue
		}
		host := "(invalid)"
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			host = u.Host
		}
		counts[host]++
	}
	for host, n := range counts {
		r.Hosts = append(r.Hosts, Host{Host: host, Count: n})
	}
	sort.Slice(r.Hosts, func(i, j int) bool {
		if r.Hosts[i].Count != r.Hosts[j].Count {
			return r.Hosts[i].Count > r.Hosts[j].Count
		}
		return r.Hosts[i].Host < r.Hosts[j].Host
	})
	return r
}

// RenderStatusTerminal prints the progress of the saved mapping.
func RenderStatusTerminal(w io.Writer, r StatusReport) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, bold("Image URL Status"))
	if !r.Exists {
		fmt.Fprintf(w, "  %s %s does not exist yet\n", yellow("⚠"), r.Output)
	} else {
		fmt.Fprintf(w, "  File:     %s\n", r.Output)
	}

	pct := fmt.Sprintf("%.2f%%", r.Percent)
	switch {
	case r.MissingCount == 0:
		pct = green(pct)
	case r.Resolved == 0:
		pct = red(pct)
	default:
		pct = yellow(pct)
	}
	fmt.Fprintf(w, "  Saved:    %d/%d (%s)\n", r.Resolved, r.TotalSupply, pct)
	fmt.Fprintf(w, "  Missing:  %d\n", r.MissingCount)

	if len(r.Missing) > 0 {
		ids := make([]string, len(r.Missing))
		for i, id := range r.Missing {
			ids[i] = fmt.Sprintf("%d", id)
		}
		more := ""
		if r.MissingCount > len(r.Missing) {
			more = dim(fmt.Sprintf(" (+%d more)", r.MissingCount-len(r.Missing)))
		}
		fmt.Fprintf(w, "  Next ids: %s%s\n", strings.Join(ids, ", "), more)
	}
	fmt.Fprintln(w)

	if len(r.Hosts) > 0 {
		fmt.Fprintln(w, bold("Image Hosts"))
		tbl := newTable(w, "Host", "Count")
		for _, h := range r.Hosts {
			tbl.AddRow(h.Host, h.Count)
		}
		tbl.Print()
		fmt.Fprintln(w)
	}
}
