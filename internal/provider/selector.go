package provider

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dmagro/nft-image-urls/internal/config"
	"github.com/dmagro/nft-image-urls/internal/rpc"
	"github.com/dmagro/nft-image-urls/internal/stats"
)

// Endpoint health states
const (
	StatusUp       = "UP"
	StatusSlow     = "SLOW"
	StatusDegraded = "DEGRADED"
	StatusDown     = "DOWN"
)

// sampleInterval spaces consecutive probes to the same endpoint.
var sampleInterval = 50 * time.Millisecond

// Sample is one eth_blockNumber probe.
type Sample struct {
	Latency time.Duration
	Height  uint64
	Err     error
}

// EndpointHealth holds probe results for an endpoint
type EndpointHealth struct {
	Name        string            `json:"name"`
	URL         string            `json:"-"`
	Order       int               `json:"order"` // position in the fallback list
	Status      string            `json:"status"`
	SuccessRate float64           `json:"success_rate"`
	Latency     stats.TailLatency `json:"latency"`
	BlockHeight uint64            `json:"block_height"`
	BlockDelta  int               `json:"block_delta"`
	Score       float64           `json:"score"`
	Samples     int               `json:"samples"`
	LastError   string            `json:"last_error,omitempty"`
}

// Ranked is a list of endpoints sorted by score, best first.
type Ranked []EndpointHealth

// Probe samples every endpoint concurrently with eth_blockNumber and ranks them.
func Probe(ctx context.Context, endpoints []config.Endpoint, samples int) (Ranked, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("no endpoints configured")
	}
	if samples <= 0 {
		samples = 5
	}

	results := ExecuteAll(ctx, endpoints, 0, func(ctx context.Context, e config.Endpoint) ([]Sample, error) {
		client := rpc.NewClient(e.Name, e.URL, e.Timeout)
		out := make([]Sample, 0, samples)
		for i := 0; i < samples; i++ {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			height, latency, err := client.BlockNumber(ctx)
			out = append(out, Sample{Latency: latency, Height: height, Err: err})

			if i < samples-1 {
				select {
				case <-ctx.Done():
					return out, ctx.Err()
				case <-time.After(sampleInterval):
				}
			}
		}
		return out, nil
	})

	health := make([]EndpointHealth, len(results))
	for i, r := range results {
		health[i] = summarize(endpoints[i], i, r.Value)
	}
	return Rank(health), nil
}

func summarize(e config.Endpoint, order int, samples []Sample) EndpointHealth {
	h := EndpointHealth{Name: e.Name, URL: e.URL, Order: order, Samples: len(samples)}

	var latencies []time.Duration
	for _, s := range samples {
		if s.Err != nil {
			h.LastError = s.Err.Error()
			continue
		}
		latencies = append(latencies, s.Latency)
		h.BlockHeight = s.Height
	}
	if len(samples) > 0 {
		h.SuccessRate = float64(len(latencies)) / float64(len(samples)) * 100
	}
	h.Latency = stats.CalculateTailLatency(latencies)
	return h
}

// Rank fills in block delta, status and score for each endpoint and sorts
// them best first. Ties keep the configured order.
func Rank(health []EndpointHealth) Ranked {
	var maxHeight uint64
	for _, h := range health {
		if h.BlockHeight > maxHeight {
			maxHeight = h.BlockHeight
		}
	}

	ranked := make(Ranked, len(health))
	for i, h := range health {
		if h.SuccessRate > 0 {
			h.BlockDelta = int(maxHeight - h.BlockHeight)
		}
		h.Status = classify(h)
		h.Score = calculateScore(h)
		ranked[i] = h
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Order < ranked[j].Order
	})
	return ranked
}

// Best returns the highest ranked endpoint that is not DOWN
func (r Ranked) Best() (EndpointHealth, error) {
	for _, h := range r {
		if h.Status != StatusDown {
			return h, nil
		}
	}
	return EndpointHealth{}, fmt.Errorf("no endpoints available")
}

func classify(h EndpointHealth) string {
	switch {
	case h.Samples == 0 || h.SuccessRate < 50:
		return StatusDown
	case h.SuccessRate < 90:
		return StatusDegraded
	case h.Latency.P95 > 500*time.Millisecond:
		return StatusSlow
	default:
		return StatusUp
	}
}

func calculateScore(h EndpointHealth) float64 {
	if h.SuccessRate == 0 {
		return 0
	}
	successScore := h.SuccessRate / 100.0

	latencyMs := float64(h.Latency.P95.Milliseconds())
	latencyScore := 1.0 - (latencyMs / 1000.0)
	if latencyScore < 0 {
		latencyScore = 0
	}

	freshnessScore := 1.0 - (float64(h.BlockDelta) / 10.0)
	if freshnessScore < 0 {
		freshnessScore = 0
	}

	return (successScore * 0.5) + (latencyScore * 0.3) + (freshnessScore * 0.2)
}
