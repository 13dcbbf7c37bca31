// =============================================================================
// FILE: internal/rpc/types.go
// ROLE: JSON-RPC 2.0 wire envelope shared by the single-endpoint Client and
//       the ordered Fallback caller.
// =============================================================================
//
// Every exchange with an Ethereum node looks like this:
//
//	Client ──[ {"jsonrpc":"2.0","method":"eth_call","params":[...],"id":1} ]──▶ Node
//	Client ◀──[ {"jsonrpc":"2.0","id":1,"result":"0x..."} ]────────────────── Node
//
// The request id is constant (1): one HTTP request carries exactly one call,
// so there is nothing to correlate.
// =============================================================================

package rpc

import (
	"encoding/json"
	"fmt"
)

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string        `json:"jsonrpc"` // Always "2.0"
	Method  string        `json:"method"`  // e.g. "eth_call"
	Params  []interface{} `json:"params"`  // Method arguments; never null on the wire
	ID      int           `json:"id"`      // Always 1
}

// Response is a JSON-RPC 2.0 response envelope.
//
// Result stays a json.RawMessage because its shape depends on the method:
// eth_call returns a hex string, eth_blockNumber a hex quantity. Callers
// decode it once they know what they asked for.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"` // nil when the call succeeded
}

// RPCError is the error member of a JSON-RPC response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// CallMsg is the transaction object passed as the first eth_call parameter.
type CallMsg struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// BlockTagLatest is the block tag every contract read is issued against.
const BlockTagLatest = "latest"

// HTTPError is returned when an endpoint answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}
