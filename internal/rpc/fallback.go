package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dmagro/nft-image-urls/internal/config"
	"github.com/dmagro/nft-image-urls/internal/logger"
)

// ErrEndpointsExhausted is returned when no endpoint produced a usable result.
var ErrEndpointsExhausted = errors.New("all RPC endpoints exhausted")

// Attempt is one callable in an ordered fallback list.
type Attempt[T any] func(ctx context.Context) (T, error)

// FirstSuccess runs attempts in order and returns the first successful value.
// Later attempts are not started once one succeeds. If every attempt fails
// the returned error wraps ErrEndpointsExhausted and the last failure.
func FirstSuccess[T any](ctx context.Context, attempts []Attempt[T]) (T, error) {
	var zero T
	var lastErr error

	for _, attempt := range attempts {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		v, err := attempt(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
	}

	if lastErr == nil {
		return zero, ErrEndpointsExhausted
	}
	return zero, fmt.Errorf("%w: %w", ErrEndpointsExhausted, lastErr)
}

// EndpointUsage is the per-endpoint tally kept by Fallback.
type EndpointUsage struct {
	Name      string
	URL       string
	Attempts  int
	Successes int
	Failures  int
	Latencies []time.Duration // successful calls only
}

// Fallback delivers a call to the configured endpoints in their fixed order
// and stops at the first one that returns a truthy result.
type Fallback struct {
	clients []*Client

	mu    sync.Mutex
	usage []EndpointUsage
}

// NewFallback builds one Client per configured endpoint, preserving order.
func NewFallback(endpoints []config.Endpoint) *Fallback {
	clients := make([]*Client, 0, len(endpoints))
	for _, e := range endpoints {
		clients = append(clients, NewClient(e.Name, e.URL, e.Timeout))
	}
	return NewFallbackFromClients(clients...)
}

func NewFallbackFromClients(clients ...*Client) *Fallback {
	usage := make([]EndpointUsage, len(clients))
	for i, c := range clients {
		usage[i] = EndpointUsage{Name: c.Name(), URL: c.URL()}
	}
	return &Fallback{clients: clients, usage: usage}
}

// Call sends method/params to each endpoint in turn. A transport error, an
// RPC error or a falsy result all move on to the next endpoint silently.
func (f *Fallback) Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	attempts := make([]Attempt[json.RawMessage], len(f.clients))
	for i, c := range f.clients {
		i, c := i, c
		attempts[i] = func(ctx context.Context) (json.RawMessage, error) {
			result, latency, err := c.Call(ctx, method, params...)
			if err == nil && !isTruthy(result) {
				err = fmt.Errorf("endpoint %s returned empty result", c.Name())
			}
			f.record(i, latency, err)
			if err != nil {
				logger.Debug("RPC endpoint failed, trying next",
					zap.String("endpoint", c.Name()),
					zap.String("method", method),
					zap.Error(err))
				return nil, err
			}
			return result, nil
		}
	}

	return FirstSuccess(ctx, attempts)
}

// Usage returns a copy of the per-endpoint tallies in configured order.
func (f *Fallback) Usage() []EndpointUsage {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]EndpointUsage, len(f.usage))
	for i, u := range f.usage {
		u.Latencies = append([]time.Duration(nil), u.Latencies...)
		out[i] = u
	}
	return out
}

func (f *Fallback) record(i int, latency time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u := &f.usage[i]
	u.Attempts++
	if err != nil {
		u.Failures++
		return
	}
	u.Successes++
	u.Latencies = append(u.Latencies, latency)
}

// isTruthy mirrors the loose check applied to the result member: absent,
// null, false, 0 and "" all count as "no usable result".
func isTruthy(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	switch string(trimmed) {
	case "null", "false", `""`:
		return false
	}

	if trimmed[0] == '"' {
		return true
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err == nil {
		if f, err := n.Float64(); err == nil && f == 0 {
			return false
		}
	}
	return true
}
