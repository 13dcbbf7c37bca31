package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sort"
	"sync"

	"github.com/dmagro/nft-image-urls/internal/adapter"
	"github.com/dmagro/nft-image-urls/internal/metadata"
	"github.com/dmagro/nft-image-urls/internal/rpc"
)

// ErrorType categorizes the cause of an unresolved outcome
type ErrorType string

const (
	ErrorTypeTimeout     ErrorType = "timeout"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeClientError ErrorType = "client_error"
	ErrorTypeParseError  ErrorType = "parse_error"
	ErrorTypeRPCError    ErrorType = "rpc_error"
	ErrorTypeOther       ErrorType = "other"
)

// KindMetrics counts outcomes for one token URI form
type KindMetrics struct {
	Kind        string  `json:"kind"`
	Attempted   int     `json:"attempted"`
	Resolved    int     `json:"resolved"`
	SuccessRate float64 `json:"success_rate"`
}

// StageMetrics counts unresolved outcomes that stopped at one stage
type StageMetrics struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// ErrorMetrics counts unresolved outcomes by error category
type ErrorMetrics struct {
	Type  ErrorType `json:"type"`
	Count int       `json:"count"`
}

// Snapshot is a point-in-time copy of the collector, with rows sorted for display.
type Snapshot struct {
	Attempted   int            `json:"attempted"`
	Resolved    int            `json:"resolved"`
	Unresolved  int            `json:"unresolved"`
	SuccessRate float64        `json:"success_rate"`
	Kinds       []KindMetrics  `json:"kinds"`
	Stages      []StageMetrics `json:"stages"`
	Errors      []ErrorMetrics `json:"errors"`
}

type kindCount struct {
	attempted int
	resolved  int
}

// Collector aggregates resolution outcomes. It is safe for concurrent use.
type Collector struct {
	mu       sync.Mutex
	attempts int
	resolved int
	kinds    map[metadata.Kind]*kindCount
	stages   map[metadata.Stage]int
	errors   map[ErrorType]int
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{
		kinds:  make(map[metadata.Kind]*kindCount),
		stages: make(map[metadata.Stage]int),
		errors: make(map[ErrorType]int),
	}
}

// Add records one outcome
func (c *Collector) Add(out metadata.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.attempts++
	if out.Resolved() {
		c.resolved++
	} else {
		c.stages[out.Stage]++
		c.errors[ClassifyError(out.Err)]++
	}

	// Outcomes that failed before the token URI was read have no kind.
	if out.Kind == "" {
		return
	}
	kc, ok := c.kinds[out.Kind]
	if !ok {
		kc = &kindCount{}
		c.kinds[out.Kind] = kc
	}
	kc.attempted++
	if out.Resolved() {
		kc.resolved++
	}
}

// Snapshot returns the current tallies
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Attempted:   c.attempts,
		Resolved:    c.resolved,
		Unresolved:  c.attempts - c.resolved,
		SuccessRate: successRate(c.resolved, c.attempts),
	}

	for kind, kc := range c.kinds {
		s.Kinds = append(s.Kinds, KindMetrics{
			Kind:        string(kind),
			Attempted:   kc.attempted,
			Resolved:    kc.resolved,
			SuccessRate: successRate(kc.resolved, kc.attempted),
		})
	}
	sort.Slice(s.Kinds, func(i, j int) bool {
		if s.Kinds[i].Attempted != s.Kinds[j].Attempted {
			return s.Kinds[i].Attempted > s.Kinds[j].Attempted
		}
		return s.Kinds[i].Kind < s.Kinds[j].Kind
	})

	for stage, n := range c.stages {
		s.Stages = append(s.Stages, StageMetrics{Stage: string(stage), Count: n})
	}
	sort.Slice(s.Stages, func(i, j int) bool {
		if s.Stages[i].Count != s.Stages[j].Count {
			return s.Stages[i].Count > s.Stages[j].Count
		}
		return s.Stages[i].Stage < s.Stages[j].Stage
	})

	for t, n := range c.errors {
		s.Errors = append(s.Errors, ErrorMetrics{Type: t, Count: n})
	}
	sort.Slice(s.Errors, func(i, j int) bool {
		if s.Errors[i].Count != s.Errors[j].Count {
			return s.Errors[i].Count > s.Errors[j].Count
		}
		return s.Errors[i].Type < s.Errors[j].Type
	})

	return s
}

// ClassifyError maps an outcome error to a category. Errors wrapping
// rpc.ErrEndpointsExhausted are classified by the last endpoint's failure.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeOther
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return ErrorTypeTimeout
	}

	status := 0
	var rpcHTTP *rpc.HTTPError
	var fetchHTTP *adapter.StatusError
	switch {
	case errors.As(err, &rpcHTTP):
		status = rpcHTTP.StatusCode
	case errors.As(err, &fetchHTTP):
		status = fetchHTTP.StatusCode
	}
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case status >= 500:
		return ErrorTypeServerError
	case status >= 400:
		return ErrorTypeClientError
	}

	var rpcErr *rpc.RPCError
	if errors.As(err, &rpcErr) {
		return ErrorTypeRPCError
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return ErrorTypeParseError
	}

	return ErrorTypeOther
}

func successRate(ok, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(ok) / float64(total) * 100
}
