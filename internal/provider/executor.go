// Package provider fans operations out across the configured RPC endpoints
// and ranks them by probe results. Fetching itself always walks endpoints in
// configured order; ranking is informational.
package provider

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dmagro/nft-image-urls/internal/config"
)

// Result wraps an endpoint response with metadata.
type Result[T any] struct {
	Endpoint string
	Index    int
	Value    T
	Err      error
}

// ExecuteAll runs fn concurrently for each endpoint, at most limit at a time
// (limit <= 0 means no bound), and returns one Result per endpoint in
// configured order. Errors never cancel the other endpoints.
func ExecuteAll[T any](
	ctx context.Context,
	endpoints []config.Endpoint,
	limit int,
	fn func(ctx context.Context, e config.Endpoint) (T, error),
) []Result[T] {
	results := make([]Result[T], len(endpoints))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, e := range endpoints {
		i, e := i, e
		g.Go(func() error {
			val, err := fn(ctx, e)
			results[i] = Result[T]{Endpoint: e.Name, Index: i, Value: val, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
