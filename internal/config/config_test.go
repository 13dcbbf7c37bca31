package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "imageurls.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 10000, cfg.TotalSupply)
	assert.Equal(t, 50, cfg.ChunkSize)
	assert.Equal(t, "./public/image-urls.json", cfg.Output)
	assert.Equal(t, "https://cloudflare-ipfs.com", cfg.IPFSGateway)
	require.Len(t, cfg.Endpoints, 3)
	assert.Equal(t, "https://eth.llamarpc.com", cfg.Endpoints[0].URL)
	assert.Equal(t, 30*time.Second, cfg.Endpoints[0].Timeout)
}

func TestLoadOverridesAndExpandsEnv(t *testing.T) {
	t.Setenv("TEST_RPC_URL", "https://rpc.example/v2/key")

	path := writeConfig(t, `
total_supply: 20
chunk_size: 5
output: out/urls.json
ipfs_gateway: https://ipfs.io/
endpoints:
  - url: ${TEST_RPC_URL}
  - name: slow
    url: http://localhost:8545
    timeout: 2s
defaults:
  timeout: 10s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.TotalSupply)
	assert.Equal(t, 5, cfg.ChunkSize)
	assert.Equal(t, "out/urls.json", cfg.Output)
	assert.Equal(t, "https://ipfs.io", cfg.IPFSGateway)
	assert.Equal(t, "0xBC4CA0EdA7647A8aB7C2061c2E118A18a936f13D", cfg.Contract)
	assert.Equal(t, 5, cfg.Defaults.ProbeSamples)

	require.Len(t, cfg.Endpoints, 2)
	assert.Equal(t, "rpc.example", cfg.Endpoints[0].Name)
	assert.Equal(t, "https://rpc.example/v2/key", cfg.Endpoints[0].URL)
	assert.Equal(t, 10*time.Second, cfg.Endpoints[0].Timeout)
	assert.Equal(t, "slow", cfg.Endpoints[1].Name)
	assert.Equal(t, 2*time.Second, cfg.Endpoints[1].Timeout)
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "endpoints: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad contract", func(c *Config) { c.Contract = "0x1234" }},
		{"zero supply", func(c *Config) { c.TotalSupply = 0 }},
		{"zero chunk", func(c *Config) { c.ChunkSize = 0 }},
		{"empty output", func(c *Config) { c.Output = " " }},
		{"no timeout", func(c *Config) { c.Defaults.Timeout = 0 }},
		{"no probe samples", func(c *Config) { c.Defaults.ProbeSamples = 0 }},
		{"no endpoints", func(c *Config) { c.Endpoints = nil }},
		{"gateway scheme", func(c *Config) { c.IPFSGateway = "ipfs://gateway" }},
		{"endpoint missing url", func(c *Config) { c.Endpoints[0].URL = "" }},
		{"endpoint bad scheme", func(c *Config) { c.Endpoints[1].URL = "ws://node:8546" }},
		{"endpoint missing host", func(c *Config) { c.Endpoints[2].URL = "https://" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
