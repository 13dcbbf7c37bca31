package metadata

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	base64JSONPrefix  = "data:application/json;base64,"
	percentJSONPrefix = "data:application/json,"
	ipfsPrefix        = "ipfs://"
)

// DefaultIPFSGateway is used when no gateway is configured.
const DefaultIPFSGateway = "https://cloudflare-ipfs.com"

// ErrUnsupportedTokenURI is returned by ParseTokenURI for URIs that are not
// inline JSON and must be fetched instead.
var ErrUnsupportedTokenURI = errors.New("token URI is not inline JSON")

// Kind is the form of a token URI.
type Kind string

const (
	KindBase64  Kind = "base64"
	KindPercent Kind = "percent"
	KindIPFS    Kind = "ipfs"
	KindHTTP    Kind = "http"
)

// ClassifyTokenURI picks the form of uri by prefix. Anything that is not a
// known data: or ipfs:// prefix is treated as an HTTP(S) URL.
func ClassifyTokenURI(uri string) Kind {
	switch {
	case strings.HasPrefix(uri, base64JSONPrefix):
		return KindBase64
	case strings.HasPrefix(uri, percentJSONPrefix):
		return KindPercent
	case strings.HasPrefix(uri, ipfsPrefix):
		return KindIPFS
	default:
		return KindHTTP
	}
}

// ParseTokenURI decodes an inline data:application/json token URI into its
// metadata document.
func ParseTokenURI(uri string) (map[string]interface{}, error) {
	// Both data: prefixes end in a comma, so the payload starts after the first one.
	_, payload, _ := strings.Cut(uri, ",")

	var raw []byte
	switch ClassifyTokenURI(uri) {
	case KindBase64:
		decoded, err := decodeBase64(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64: %w", err)
		}
		raw = decoded
	case KindPercent:
		decoded, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to percent-decode: %w", err)
		}
		raw = []byte(decoded)
	default:
		return nil, ErrUnsupportedTokenURI
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse metadata JSON: %w", err)
	}
	return doc, nil
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if decoded, err := base64.StdEncoding.DecodeString(s); err == nil {
		return decoded, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}

// GatewayURL rewrites ipfs://<path> to <gateway>/ipfs/<path>. Other URIs are
// returned unchanged.
func GatewayURL(gateway, uri string) string {
	path, ok := strings.CutPrefix(uri, ipfsPrefix)
	if !ok {
		return uri
	}
	if gateway == "" {
		gateway = DefaultIPFSGateway
	}
	return fmt.Sprintf("%s/ipfs/%s", strings.TrimRight(gateway, "/"), path)
}

// ImageFromMetadata returns the string "image" field, falling back to the
// string "image_url" field, or "" when neither is present.
func ImageFromMetadata(doc map[string]interface{}) string {
	if image, ok := doc["image"].(string); ok && image != "" {
		return image
	}
	if image, ok := doc["image_url"].(string); ok {
		return image
	}
	return ""
}
