package rpc

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// TokenURISignature is the one contract method this tool ever calls.
const TokenURISignature = "tokenURI(uint256)"

// minStringResultHex is the shortest hex payload that carries both the
// offset word and the length word of an ABI-encoded dynamic string.
const minStringResultHex = 128

// FunctionSelector computes the 4-byte function selector from a signature
// e.g., "tokenURI(uint256)" -> 0xc87b56dd
func FunctionSelector(signature string) []byte {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(signature))
	return hasher.Sum(nil)[:4]
}

// EncodeUint256 renders n as a 32-byte big-endian word.
func EncodeUint256(n uint64) []byte {
	return common.LeftPadBytes(new(big.Int).SetUint64(n).Bytes(), 32)
}

// EncodeTokenURICalldata creates the calldata for tokenURI(uint256):
// 0x + 8 selector hex chars + 64 hex chars of zero-padded token id.
func EncodeTokenURICalldata(tokenID uint64) string {
	calldata := append(FunctionSelector(TokenURISignature), EncodeUint256(tokenID)...)
	return "0x" + hex.EncodeToString(calldata)
}

// DecodeUint256 parses a hex string result into a big.Int
func DecodeUint256(hexResult string) (*big.Int, error) {
	hexResult = strings.TrimPrefix(hexResult, "0x")
	hexResult = strings.TrimLeft(hexResult, "0")
	if hexResult == "" {
		return big.NewInt(0), nil
	}

	result := new(big.Int)
	if _, ok := result.SetString(hexResult, 16); !ok {
		return nil, fmt.Errorf("failed to parse hex result: %s", hexResult)
	}
	return result, nil
}

// DecodeString decodes an ABI-encoded dynamic string returned by eth_call.
//
// Layout (hex chars): [0,64) offset word, ignored; [64,128) byte length;
// [128, 128+2*length) UTF-8 payload. Payloads shorter than 128 hex chars
// decode to "no value" (ok == false) without an error. A length word that
// runs past the payload, or non-hex input, is an error.
func DecodeString(hexResult string) (s string, ok bool, err error) {
	hexResult = strings.TrimPrefix(hexResult, "0x")
	if len(hexResult) < minStringResultHex {
		return "", false, nil
	}

	length, err := DecodeUint256(hexResult[64:128])
	if err != nil {
		return "", false, fmt.Errorf("invalid string length word: %w", err)
	}

	available := int64(len(hexResult)-minStringResultHex) / 2
	if !length.IsInt64() || length.Int64() > available {
		return "", false, fmt.Errorf("string length %s exceeds payload of %d bytes", length, available)
	}

	end := minStringResultHex + 2*int(length.Int64())
	payload, err := hex.DecodeString(hexResult[minStringResultHex:end])
	if err != nil {
		return "", false, fmt.Errorf("invalid string payload: %w", err)
	}

	return strings.ToValidUTF8(string(payload), "\uFFFD"), true, nil
}

// ValidateAddress checks if a string is a valid Ethereum address
func ValidateAddress(addr string) error {
	if !common.IsHexAddress(addr) {
		return fmt.Errorf("invalid address %q: expected 40 hex chars (with or without 0x prefix)", addr)
	}
	return nil
}

// ChecksumAddress returns the EIP-55 form of a valid address.
func ChecksumAddress(addr string) string {
	return common.HexToAddress(addr).Hex()
}
