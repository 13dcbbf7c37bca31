// Package fetcher drives resolution of the whole id space: it resumes from
// the persisted mapping, resolves missing ids chunk by chunk and persists
// after every chunk.
package fetcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dmagro/nft-image-urls/internal/config"
	"github.com/dmagro/nft-image-urls/internal/logger"
	"github.com/dmagro/nft-image-urls/internal/metadata"
	"github.com/dmagro/nft-image-urls/internal/metrics"
	"github.com/dmagro/nft-image-urls/internal/store"
)

// Progress receives console progress events from Run.
type Progress interface {
	// Resumed reports how many ids were already resolved and how many remain.
	Resumed(previously, remaining int)
	// ChunkDone reports cumulative work after a chunk has been persisted.
	ChunkDone(processed, remaining int)
	Completed(s Summary)
}

// Unresolved identifies an id left out of the mapping and where it stopped.
type Unresolved struct {
	ID    int            `json:"id"`
	Stage metadata.Stage `json:"stage"`
	Kind  metadata.Kind  `json:"kind,omitempty"`
	Error string         `json:"error,omitempty"`
}

// Summary describes one Run.
type Summary struct {
	Output             string           `json:"output"`
	TotalSupply        int              `json:"total_supply"`
	PreviouslyResolved int              `json:"previously_resolved"`
	Attempted          int              `json:"attempted"`
	NewlyResolved      int              `json:"newly_resolved"`
	Resolved           int              `json:"resolved"`
	Unresolved         []Unresolved     `json:"unresolved"`
	Metrics            metrics.Snapshot `json:"metrics"`
	Duration           time.Duration    `json:"duration_ns"`
	Interrupted        bool             `json:"interrupted"`
}

// Driver resolves every id in [0, TotalSupply) that the output file lacks.
type Driver struct {
	output    string
	total     int
	chunkSize int
	resolver  metadata.Resolver
	progress  Progress
	metrics   *metrics.Collector
}

// NewDriver creates a Driver. progress may be nil.
func NewDriver(cfg *config.Config, resolver metadata.Resolver, progress Progress) *Driver {
	if progress == nil {
		progress = nopProgress{}
	}
	return &Driver{
		output:    cfg.Output,
		total:     cfg.TotalSupply,
		chunkSize: cfg.ChunkSize,
		resolver:  resolver,
		progress:  progress,
		metrics:   metrics.NewCollector(),
	}
}

// Run loads the prior mapping, resolves pending ids in sequential chunks and
// rewrites the output file after each chunk. When ctx is cancelled Run stops
// before the next chunk and returns the context error alongside the summary
// of the work persisted so far.
func (d *Driver) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	summary := Summary{Output: d.output, TotalSupply: d.total}

	if err := os.MkdirAll(filepath.Dir(d.output), 0o755); err != nil {
		return summary, fmt.Errorf("failed to create output directory: %w", err)
	}

	results, err := store.Load(d.output)
	if err != nil {
		return summary, err
	}

	pending := results.Pending(d.total)
	summary.PreviouslyResolved = len(results)
	d.progress.Resumed(len(results), len(pending))

	logger.Info("starting fetch",
		zap.String("output", d.output),
		zap.Int("previously_resolved", len(results)),
		zap.Int("pending", len(pending)),
		zap.Int("chunk_size", d.chunkSize))

	finish := func() Summary {
		summary.Resolved = len(results)
		summary.Metrics = d.metrics.Snapshot()
		summary.Duration = time.Since(start)
		return summary
	}

	for lo := 0; lo < len(pending); lo += d.chunkSize {
		if err := ctx.Err(); err != nil {
			summary.Interrupted = true
			return finish(), err
		}

		hi := min(lo+d.chunkSize, len(pending))
		var outcomes []metadata.Outcome
		var added int
		results, outcomes, added = d.processChunk(ctx, results, pending[lo:hi])

		summary.Attempted += len(outcomes)
		summary.NewlyResolved += added
		for _, out := range outcomes {
			d.metrics.Add(out)
			if !out.Resolved() {
				summary.Unresolved = append(summary.Unresolved, unresolvedFrom(out))
			}
		}

		if err := results.Save(d.output); err != nil {
			return finish(), fmt.Errorf("failed to persist results: %w", err)
		}
		d.progress.ChunkDone(hi, len(pending))
	}

	s := finish()
	d.progress.Completed(s)
	logger.Info("fetch complete",
		zap.Int("attempted", s.Attempted),
		zap.Int("newly_resolved", s.NewlyResolved),
		zap.Int("resolved", s.Resolved),
		zap.Duration("duration", s.Duration))
	return s, nil
}

// processChunk resolves ids concurrently, waits for all of them and merges
// the resolved ones into acc, which it returns together with the outcomes in
// id order and the number of entries added.
func (d *Driver) processChunk(ctx context.Context, acc store.Results, ids []int) (store.Results, []metadata.Outcome, int) {
	outcomes := make([]metadata.Outcome, len(ids))

	var g errgroup.Group
	g.SetLimit(len(ids))
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			outcomes[i] = d.resolver.Resolve(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	added := acc.Merge(outcomes)
	return acc, outcomes, added
}

func unresolvedFrom(out metadata.Outcome) Unresolved {
	u := Unresolved{ID: out.ID, Stage: out.Stage, Kind: out.Kind}
	if out.Err != nil {
		u.Error = out.Err.Error()
	}
	return u
}

type nopProgress struct{}

func (nopProgress) Resumed(int, int)   {}
func (nopProgress) ChunkDone(int, int) {}
func (nopProgress) Completed(Summary)  {}
