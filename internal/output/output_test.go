package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmagro/nft-image-urls/internal/fetcher"
	"github.com/dmagro/nft-image-urls/internal/metadata"
	"github.com/dmagro/nft-image-urls/internal/metrics"
	"github.com/dmagro/nft-image-urls/internal/provider"
	"github.com/dmagro/nft-image-urls/internal/rpc"
	"github.com/dmagro/nft-image-urls/internal/stats"
	"github.com/dmagro/nft-image-urls/internal/store"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestConsoleProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewConsoleProgress(&buf)

	p.Resumed(10, 40)
	p.ChunkDone(20, 40)
	p.ChunkDone(40, 40)
	p.Completed(fetcher.Summary{Resolved: 48, TotalSupply: 50, Output: "public/image-urls.json"})

	assert.Equal(t,
		"Resuming: 10 image URLs already saved\n"+
			"Remaining: 40 tokens\n"+
			"\rProgress:  50.00% (20/40)"+
			"\rProgress: 100.00% (40/40)\n"+
			"✓ Done: 48/50 image URLs saved to public/image-urls.json\n",
		buf.String())
}

func TestConsoleProgressFreshRun(t *testing.T) {
	var buf bytes.Buffer
	p := NewConsoleProgress(&buf)

	p.Resumed(0, 0)
	p.Interrupted(fetcher.Summary{TotalSupply: 1, Output: "x.json"})

	assert.Equal(t, "Remaining: 0 tokens\n⚠ Interrupted: 0/1 image URLs saved to x.json\n", buf.String())
}

func TestRenderFetchSummary(t *testing.T) {
	var buf bytes.Buffer
	summary := fetcher.Summary{
		TotalSupply:   10,
		Attempted:     10,
		NewlyResolved: 9,
		Resolved:      9,
		Unresolved:    []fetcher.Unresolved{{ID: 4, Stage: metadata.StageRPC}},
		Metrics: metrics.Snapshot{
			Kinds:  []metrics.KindMetrics{{Kind: "ipfs", Attempted: 9, Resolved: 9, SuccessRate: 100}},
			Stages: []metrics.StageMetrics{{Stage: "rpc", Count: 1}},
			Errors: []metrics.ErrorMetrics{{Type: metrics.ErrorTypeTimeout, Count: 1}},
		},
	}
	usage := ConvertUsage([]rpc.EndpointUsage{
		{Name: "llamarpc", Attempts: 11, Successes: 9, Failures: 2, Latencies: []time.Duration{20 * time.Millisecond}},
		{Name: "ankr", Attempts: 2, Failures: 2},
	})

	RenderFetchSummary(&buf, summary, usage)
	out := buf.String()

	assert.Contains(t, out, "Newly resolved:   9")
	assert.Contains(t, out, "Unresolved:       1")
	assert.Contains(t, out, "Token URI Forms")
	assert.Contains(t, out, "ipfs")
	assert.Contains(t, out, "Unresolved By Stage")
	assert.Contains(t, out, "timeout")
	assert.Contains(t, out, "llamarpc")
	assert.Contains(t, out, "20ms")

	require.Len(t, usage, 2)
	assert.InDelta(t, 81.82, usage[0].SuccessRate, 0.01)
	assert.Zero(t, usage[1].SuccessRate)
}

func TestRenderEndpointUsageSkipsUnused(t *testing.T) {
	var buf bytes.Buffer
	RenderEndpointUsage(&buf, ConvertUsage([]rpc.EndpointUsage{{Name: "idle"}}))
	assert.Empty(t, buf.String())
}

func TestNewStatusReport(t *testing.T) {
	results := store.Results{
		0:  "https://cloudflare-ipfs.com/ipfs/a",
		1:  "https://cloudflare-ipfs.com/ipfs/b",
		3:  "https://img.example/3.png",
		99: "https://outside/99.png",
	}

	r := NewStatusReport("out.json", true, results, 6, 2)
	assert.Equal(t, 3, r.Resolved)
	assert.Equal(t, 3, r.MissingCount)
	assert.Equal(t, []int{2, 4}, r.Missing)
	assert.InDelta(t, 50.0, r.Percent, 0.001)
	assert.Equal(t, []Host{{Host: "cloudflare-ipfs.com", Count: 2}, {Host: "img.example", Count: 1}}, r.Hosts)

	var buf bytes.Buffer
	RenderStatusTerminal(&buf, r)
	assert.Contains(t, buf.String(), "Saved:    3/6 (50.00%)")
	assert.Contains(t, buf.String(), "Next ids: 2, 4 (+1 more)")
}

func TestNewStatusReportEmpty(t *testing.T) {
	r := NewStatusReport("out.json", false, store.Results{}, 3, 0)
	assert.Equal(t, []int{}, r.Missing)

	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, r))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, false, decoded["exists"])
	assert.Equal(t, []interface{}{}, decoded["missing"])
}

func TestRenderResolve(t *testing.T) {
	ok := NewResolveReport(metadata.Outcome{ID: 1, URL: "https://x/1.png", Kind: metadata.KindHTTP}, "llamarpc")
	failed := NewResolveReport(metadata.Outcome{ID: 2, Stage: metadata.StageMetadata, Kind: metadata.KindIPFS, Err: errors.New("504")}, "")

	var buf bytes.Buffer
	RenderResolveTerminal(&buf, ok, true)
	assert.Equal(t, "https://x/1.png\n", buf.String())

	buf.Reset()
	RenderResolveTerminal(&buf, failed, true)
	assert.Empty(t, buf.String())

	buf.Reset()
	RenderResolveTerminal(&buf, failed, false)
	assert.Contains(t, buf.String(), "token 2 unresolved at metadata")
	assert.Contains(t, buf.String(), "Error: 504")

	buf.Reset()
	RenderResolveTerminal(&buf, ok, false)
	assert.Contains(t, buf.String(), "Endpoint:       llamarpc")
}

func TestRenderEndpointsTerminal(t *testing.T) {
	ranked := provider.Rank([]provider.EndpointHealth{
		{Name: "ankr", Order: 1, Samples: 3, SuccessRate: 100, BlockHeight: 5, Latency: stats.TailLatency{P95: 30 * time.Millisecond}},
		{Name: "llamarpc", Order: 0, Samples: 3, LastError: "HTTP 503"},
	})

	var buf bytes.Buffer
	RenderEndpointsTerminal(&buf, ranked, 3)
	out := buf.String()

	assert.Contains(t, out, "Endpoint Health")
	assert.Contains(t, out, "✗ DOWN")
	assert.Contains(t, out, "llamarpc: HTTP 503")
	assert.Contains(t, out, "Fastest: ankr")
}
