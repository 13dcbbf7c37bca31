package output

import (
	"fmt"
	"io"

	"github.com/dmagro/nft-image-urls/internal/metadata"
)

// ResolveReport is the result of resolving a single token id.
type ResolveReport struct {
	ID       int    `json:"id"`
	Resolved bool   `json:"resolved"`
	URL      string `json:"url,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Stage    string `json:"stage,omitempty"`
	Error    string `json:"error,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

// NewResolveReport converts an outcome for rendering.
func NewResolveReport(out metadata.Outcome, endpoint string) ResolveReport {
	r := ResolveReport{
		ID:       out.ID,
		Resolved: out.Resolved(),
		URL:      out.URL,
		Kind:     string(out.Kind),
		Stage:    string(out.Stage),
		Endpoint: endpoint,
	}
	if out.Err != nil {
		r.Error = out.Err.Error()
	}
	return r
}

// RenderResolveTerminal prints a single resolution. With raw set only the
// URL is printed, for use in scripts.
func RenderResolveTerminal(w io.Writer, r ResolveReport, raw bool) {
	if raw {
		if r.Resolved {
			fmt.Fprintln(w, r.URL)
		}
		return
	}

	if !r.Resolved {
		fmt.Fprintf(w, "%s token %d unresolved at %s\n", red("✗"), r.ID, bold(r.Stage))
		if r.Kind != "" {
			fmt.Fprintf(w, "  Token URI form: %s\n", r.Kind)
		}
		if r.Error != "" {
			fmt.Fprintf(w, "  Error: %s\n", r.Error)
		}
		return
	}

	fmt.Fprintf(w, "%s token %d\n", green("✓"), r.ID)
	fmt.Fprintf(w, "  Token URI form: %s\n", r.Kind)
	if r.Endpoint != "" {
		fmt.Fprintf(w, "  Endpoint:       %s\n", r.Endpoint)
	}
	fmt.Fprintf(w, "  Image:          %s\n", cyan(r.URL))
}
