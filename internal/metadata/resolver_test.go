package metadata

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmagro/nft-image-urls/internal/adapter"
	"github.com/dmagro/nft-image-urls/internal/config"
	"github.com/dmagro/nft-image-urls/internal/rpc"
)

// abiString encodes s the way eth_call returns a single string.
func abiString(s string) string {
	payload := []byte(s)
	padded := make([]byte, (len(payload)+31)/32*32)
	copy(padded, payload)

	out := append(rpc.EncodeUint256(32), rpc.EncodeUint256(uint64(len(payload)))...)
	out = append(out, padded...)
	return "0x" + hex.EncodeToString(out)
}

type fakeCaller struct {
	results map[uint64]string
	err     error
	calls   []uint64
}

func (f *fakeCaller) TokenURI(_ context.Context, _ string, id uint64) (string, error) {
	f.calls = append(f.calls, id)
	if f.err != nil {
		return "", f.err
	}
	return f.results[id], nil
}

// constCaller returns the same token URI for every id.
func constCaller(uri string) *fakeCaller {
	return &fakeCaller{results: map[uint64]string{0: abiString(uri), 1: abiString(uri), 7: abiString(uri)}}
}

type failingHTTP struct{}

func (failingHTTP) Get(context.Context, string, interface{}) error {
	return errors.New("network disabled")
}

func testConfig(gateway string) *config.Config {
	cfg := config.Default()
	cfg.IPFSGateway = gateway
	return cfg
}

// metadataServer serves {"image": image} at the IPFS gateway path and at a plain HTTP path.
func metadataServer(t *testing.T, image string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ipfs/meta/7", "/token/7":
			_, _ = io.WriteString(w, `{"image":"`+image+`"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveFourForms(t *testing.T) {
	forms := []struct {
		kind Kind
		uri  func(base, doc string) string
	}{
		{KindBase64, func(_, doc string) string {
			return "data:application/json;base64," + base64.StdEncoding.EncodeToString([]byte(doc))
		}},
		{KindPercent, func(_, doc string) string { return "data:application/json," + url.PathEscape(doc) }},
		{KindIPFS, func(string, string) string { return "ipfs://meta/7" }},
		{KindHTTP, func(base, _ string) string { return base + "/token/7" }},
	}

	images := []struct {
		image   string
		gateway bool // want is relative to the gateway
		want    string
	}{
		{"https://img.example/7.png", false, "https://img.example/7.png"},
		{"ipfs://QmImage/7.png", true, "/ipfs/QmImage/7.png"},
	}

	for _, form := range forms {
		for _, img := range images {
			t.Run(string(form.kind)+" "+img.image, func(t *testing.T) {
				srv := metadataServer(t, img.image)
				caller := constCaller(form.uri(srv.URL, `{"image":"`+img.image+`"}`))
				r := NewResolver(caller, adapter.NewHTTPClient(time.Second), testConfig(srv.URL))

				want := img.want
				if img.gateway {
					want = srv.URL + img.want
				}

				out := r.Resolve(context.Background(), 7)
				require.True(t, out.Resolved(), out.String())
				assert.Equal(t, want, out.URL)
				assert.Equal(t, form.kind, out.Kind)
				assert.Equal(t, 7, out.ID)
				assert.NoError(t, out.Err)
			})
		}
	}
}

func TestResolveDefaultGateway(t *testing.T) {
	doc := base64.StdEncoding.EncodeToString([]byte(`{"image":"ipfs://abc"}`))
	cfg := testConfig("")
	r := NewResolver(constCaller("data:application/json;base64,"+doc), failingHTTP{}, cfg)

	out := r.Resolve(context.Background(), 1)
	assert.Equal(t, "https://cloudflare-ipfs.com/ipfs/abc", out.URL)
}

func TestResolveUsesContractAndID(t *testing.T) {
	caller := constCaller(`data:application/json,{"image":"X"}`)
	cfg := testConfig("https://ipfs.io")
	r := NewResolver(caller, failingHTTP{}, cfg)

	out := r.Resolve(context.Background(), 7)
	assert.Equal(t, "X", out.URL)
	assert.Equal(t, []uint64{7}, caller.calls)
}

func TestResolveUnresolvedStages(t *testing.T) {
	tests := []struct {
		name   string
		caller *fakeCaller
		stage  Stage
		kind   Kind
	}{
		{"rpc exhausted", &fakeCaller{err: rpc.ErrEndpointsExhausted}, StageRPC, ""},
		{"no value", &fakeCaller{results: map[uint64]string{1: "0x"}}, StageDecode, ""},
		{"malformed length", &fakeCaller{results: map[uint64]string{1: "0x" + hex.EncodeToString(append(rpc.EncodeUint256(32), rpc.EncodeUint256(500)...))}}, StageDecode, ""},
		{"empty uri", constCaller(""), StageEmptyURI, ""},
		{"blank uri is fetched", constCaller("   "), StageMetadata, KindHTTP},
		{"bad inline json", constCaller("data:application/json,{oops"), StageMetadata, KindPercent},
		{"http failure", constCaller("https://meta.example/1"), StageMetadata, KindHTTP},
		{"ipfs failure", constCaller("ipfs://meta/1"), StageMetadata, KindIPFS},
		{"no image", constCaller(`data:application/json,{"name":"x"}`), StageEmptyImage, KindPercent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.caller, failingHTTP{}, testConfig("https://ipfs.io"))

			out := r.Resolve(context.Background(), 1)
			assert.False(t, out.Resolved())
			assert.Empty(t, out.URL)
			assert.Equal(t, tt.stage, out.Stage)
			assert.Equal(t, tt.kind, out.Kind)
			assert.Error(t, out.Err)
		})
	}
}

func TestResolveRPCErrorIsWrapped(t *testing.T) {
	r := NewResolver(&fakeCaller{err: rpc.ErrEndpointsExhausted}, failingHTTP{}, testConfig(""))

	out := r.Resolve(context.Background(), 3)
	assert.ErrorIs(t, out.Err, rpc.ErrEndpointsExhausted)
	assert.Contains(t, out.String(), "unresolved at rpc")
}

func TestResolveMetadataNotObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `null`)
	}))
	defer srv.Close()

	r := NewResolver(constCaller(srv.URL+"/1"), adapter.NewHTTPClient(time.Second), testConfig(""))
	out := r.Resolve(context.Background(), 1)
	assert.Equal(t, StageMetadata, out.Stage)
}

func TestResolveClassifiesRawURI(t *testing.T) {
	doc := base64.StdEncoding.EncodeToString([]byte(`{"image":"X"}`))
	r := NewResolver(constCaller(" data:application/json;base64,"+doc), failingHTTP{}, testConfig(""))

	out := r.Resolve(context.Background(), 1)
	assert.False(t, out.Resolved())
	assert.Empty(t, out.URL)
	assert.Equal(t, KindHTTP, out.Kind)
	assert.Equal(t, StageMetadata, out.Stage)
}
