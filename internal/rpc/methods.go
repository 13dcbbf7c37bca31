package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// TokenURI calls tokenURI(tokenID) on contract at the latest block and
// returns the raw hex result, still ABI encoded.
func (f *Fallback) TokenURI(ctx context.Context, contract string, tokenID uint64) (string, error) {
	msg := CallMsg{
		To:   contract,
		Data: EncodeTokenURICalldata(tokenID),
	}

	raw, err := f.Call(ctx, "eth_call", msg, BlockTagLatest)
	if err != nil {
		return "", err
	}

	var hexResult string
	if err := json.Unmarshal(raw, &hexResult); err != nil {
		return "", fmt.Errorf("eth_call result is not a hex string: %w", err)
	}
	return hexResult, nil
}

// BlockNumber calls eth_blockNumber and returns the current block height
func (c *Client) BlockNumber(ctx context.Context) (uint64, time.Duration, error) {
	raw, latency, err := c.Call(ctx, "eth_blockNumber")
	if err != nil {
		return 0, latency, err
	}

	var hexStr string
	if err := json.Unmarshal(raw, &hexStr); err != nil {
		return 0, latency, fmt.Errorf("failed to parse block number: %w", err)
	}

	num, err := ParseHexUint64(hexStr)
	return num, latency, err
}

// ParseHexUint64 converts a hex string (with or without 0x prefix) to uint64
func ParseHexUint64(hex string) (uint64, error) {
	hex = strings.TrimPrefix(hex, "0x")
	if hex == "" {
		return 0, nil
	}

	val := new(big.Int)
	if _, ok := val.SetString(hex, 16); !ok {
		return 0, fmt.Errorf("invalid hex string: %s", hex)
	}
	if !val.IsUint64() {
		return 0, fmt.Errorf("value overflows uint64: %s", hex)
	}
	return val.Uint64(), nil
}
