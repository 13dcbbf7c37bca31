// Package metadata turns a token id into an image URL: it reads the token URI
// on chain, loads the metadata document it points at and extracts the image.
package metadata

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dmagro/nft-image-urls/internal/adapter"
	"github.com/dmagro/nft-image-urls/internal/config"
	"github.com/dmagro/nft-image-urls/internal/logger"
	"github.com/dmagro/nft-image-urls/internal/rpc"
)

var (
	errNoTokenURI = errors.New("tokenURI returned no value")
	errEmptyURI   = errors.New("tokenURI is empty")
	errEmptyImage = errors.New("metadata has no image")
)

// TokenURICaller reads the raw, ABI-encoded tokenURI result for an id.
// *rpc.Fallback implements it.
type TokenURICaller interface {
	TokenURI(ctx context.Context, contract string, tokenID uint64) (string, error)
}

// Resolver defines the interface for resolving a token's image URL
type Resolver interface {
	// Resolve never returns an error; failures come back as an unresolved Outcome.
	Resolve(ctx context.Context, id int) Outcome
}

type resolver struct {
	caller     TokenURICaller
	httpClient adapter.HTTPClient
	contract   string
	gateway    string
}

// NewResolver creates a Resolver reading cfg.Contract through caller and
// fetching off-chain metadata with httpClient.
func NewResolver(caller TokenURICaller, httpClient adapter.HTTPClient, cfg *config.Config) Resolver {
	gateway := cfg.IPFSGateway
	if gateway == "" {
		gateway = DefaultIPFSGateway
	}
	return &resolver{
		caller:     caller,
		httpClient: httpClient,
		contract:   cfg.Contract,
		gateway:    gateway,
	}
}

func (r *resolver) Resolve(ctx context.Context, id int) Outcome {
	out := r.resolve(ctx, id)
	if !out.Resolved() {
		logger.Debug("token unresolved",
			zap.Int("token_id", id),
			zap.String("stage", string(out.Stage)),
			zap.String("kind", string(out.Kind)),
			zap.Error(out.Err))
	}
	return out
}

func (r *resolver) resolve(ctx context.Context, id int) Outcome {
	out := Outcome{ID: id}
	fail := func(stage Stage, err error) Outcome {
		out.Stage = stage
		out.Err = err
		return out
	}

	hexResult, err := r.caller.TokenURI(ctx, r.contract, uint64(id))
	if err != nil {
		return fail(StageRPC, err)
	}

	uri, ok, err := rpc.DecodeString(hexResult)
	if err != nil {
		return fail(StageDecode, err)
	}
	if !ok {
		return fail(StageDecode, errNoTokenURI)
	}
	if uri == "" {
		return fail(StageEmptyURI, errEmptyURI)
	}

	out.Kind = ClassifyTokenURI(uri)
	doc, err := r.fetchMetadata(ctx, out.Kind, uri)
	if err != nil {
		return fail(StageMetadata, err)
	}

	image := ImageFromMetadata(doc)
	if image == "" {
		return fail(StageEmptyImage, errEmptyImage)
	}

	out.URL = GatewayURL(r.gateway, image)
	return out
}

func (r *resolver) fetchMetadata(ctx context.Context, kind Kind, uri string) (map[string]interface{}, error) {
	switch kind {
	case KindBase64, KindPercent:
		return ParseTokenURI(uri)
	case KindIPFS:
		return r.fetchFromHTTP(ctx, GatewayURL(r.gateway, uri))
	default:
		return r.fetchFromHTTP(ctx, uri)
	}
}

func (r *resolver) fetchFromHTTP(ctx context.Context, url string) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := r.httpClient.Get(ctx, url, &doc); err != nil {
		return nil, fmt.Errorf("failed to fetch metadata from %s: %w", url, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("metadata at %s is not a JSON object", url)
	}
	return doc, nil
}
