package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/dmagro/nft-image-urls/internal/fetcher"
)

// ConsoleProgress prints fetch progress. The percentage line is redrawn in
// place with a carriage return.
type ConsoleProgress struct {
	w     io.Writer
	mu    sync.Mutex
	dirty bool // a \r line is pending its newline
}

// NewConsoleProgress creates a ConsoleProgress writing to w.
func NewConsoleProgress(w io.Writer) *ConsoleProgress {
	return &ConsoleProgress{w: w}
}

func (p *ConsoleProgress) Resumed(previously, remaining int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if previously > 0 {
		fmt.Fprintf(p.w, "Resuming: %s image URLs already saved\n", cyan(previously))
	}
	fmt.Fprintf(p.w, "Remaining: %s tokens\n", cyan(remaining))
}

func (p *ConsoleProgress) ChunkDone(processed, remaining int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pct := 100.0
	if remaining > 0 {
		pct = float64(processed) / float64(remaining) * 100
	}
	fmt.Fprintf(p.w, "\rProgress: %6.2f%% (%d/%d)", pct, processed, remaining)
	p.dirty = true
}

func (p *ConsoleProgress) Completed(s fetcher.Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dirty {
		fmt.Fprintln(p.w)
		p.dirty = false
	}
	fmt.Fprintf(p.w, "%s Done: %d/%d image URLs saved to %s\n",
		green("✓"), s.Resolved, s.TotalSupply, s.Output)
}

// Interrupted terminates a pending progress line after a cancelled run.
func (p *ConsoleProgress) Interrupted(s fetcher.Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dirty {
		fmt.Fprintln(p.w)
		p.dirty = false
	}
	fmt.Fprintf(p.w, "%s Interrupted: %d/%d image URLs saved to %s\n",
		yellow("⚠"), s.Resolved, s.TotalSupply, s.Output)
}
