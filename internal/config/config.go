// Package config provides YAML configuration loading and validation.
// A missing config file is not an error: the built-in defaults describe the
// collection, endpoints and output path the tool was written for.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for a config file unless --config is given.
const DefaultPath = "config/imageurls.yaml"

// Config represents the root configuration structure loaded from YAML.
type Config struct {
	Contract    string     `yaml:"contract"`     // ERC-721 contract queried with tokenURI(uint256)
	TotalSupply int        `yaml:"total_supply"` // Ids resolved are [0, total_supply)
	ChunkSize   int        `yaml:"chunk_size"`   // Ids resolved concurrently per persisted chunk
	Output      string     `yaml:"output"`       // Result mapping file
	IPFSGateway string     `yaml:"ipfs_gateway"` // ipfs://<path> becomes <gateway>/ipfs/<path>
	Endpoints   []Endpoint `yaml:"endpoints"`    // JSON-RPC endpoints, tried in this order
	Defaults    Defaults   `yaml:"defaults"`
	Logging     Logging    `yaml:"logging"`
}

// Endpoint is a single Ethereum JSON-RPC URL in the fallback list.
type Endpoint struct {
	Name    string        `yaml:"name"`              // Display name; derived from the URL host when empty
	URL     string        `yaml:"url"`               // Supports ${VAR} env expansion
	Timeout time.Duration `yaml:"timeout,omitempty"` // Uses Defaults.Timeout if not set
}

// Defaults contains values shared by every endpoint and HTTP fetch.
type Defaults struct {
	Timeout      time.Duration `yaml:"timeout"`       // HTTP timeout for RPC calls and metadata fetches
	ProbeSamples int           `yaml:"probe_samples"` // Samples per endpoint for the endpoints command
}

// Logging configures the zap logger and optional Sentry reporting.
type Logging struct {
	Debug     bool   `yaml:"debug"`
	SentryDSN string `yaml:"sentry_dsn"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Contract:    "0xBC4CA0EdA7647A8aB7C2061c2E118A18a936f13D",
		TotalSupply: 10000,
		ChunkSize:   50,
		Output:      "./public/image-urls.json",
		IPFSGateway: "https://cloudflare-ipfs.com",
		Endpoints: []Endpoint{
			{Name: "llamarpc", URL: "https://eth.llamarpc.com"},
			{Name: "ankr", URL: "https://rpc.ankr.com/eth"},
			{Name: "cloudflare", URL: "https://cloudflare-eth.com"},
		},
		Defaults: Defaults{
			Timeout:      30 * time.Second,
			ProbeSamples: 5,
		},
	}
}

// Validate validates the configuration and applies defaults where appropriate.
// It may emit warnings (to stderr) for suspicious values but does not fail on warnings.
func (c *Config) Validate() error {
	if !common.IsHexAddress(c.Contract) {
		return fmt.Errorf("contract %q is not a valid address", c.Contract)
	}
	if c.TotalSupply <= 0 {
		return fmt.Errorf("total_supply must be > 0")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be > 0")
	}
	if strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("output is required")
	}
	if c.Defaults.Timeout <= 0 {
		return fmt.Errorf("defaults.timeout is required")
	}
	if c.Defaults.ProbeSamples <= 0 {
		return fmt.Errorf("defaults.probe_samples must be > 0")
	}
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("at least one endpoint is required")
	}

	if _, err := parseHTTPURL(c.IPFSGateway); err != nil {
		return fmt.Errorf("ipfs_gateway: %w", err)
	}
	c.IPFSGateway = strings.TrimRight(c.IPFSGateway, "/")

	warnTimeout := func(scope string, d time.Duration) {
		const low = 500 * time.Millisecond
		const high = 2 * time.Minute
		if d > 0 && d < low {
			fmt.Fprintf(os.Stderr, "Warning: %s timeout is very low (%s); requests may fail under normal network jitter\n", scope, d)
		}
		if d > high {
			fmt.Fprintf(os.Stderr, "Warning: %s timeout is very high (%s); a stalled endpoint will hold up its whole chunk\n", scope, d)
		}
	}
	warnTimeout("defaults", c.Defaults.Timeout)

	for i := range c.Endpoints {
		e := &c.Endpoints[i]
		if e.URL == "" {
			return fmt.Errorf("endpoint %d (%s): url is required", i, e.Name)
		}
		u, err := parseHTTPURL(e.URL)
		if err != nil {
			return fmt.Errorf("endpoint %d (%s): %w", i, e.Name, err)
		}
		if e.Name == "" {
			e.Name = u.Host
		}
		if e.Timeout == 0 {
			e.Timeout = c.Defaults.Timeout
		}
		warnTimeout(fmt.Sprintf("endpoint %s", e.Name), e.Timeout)
	}

	return nil
}

func parseHTTPURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid url %q (missing scheme or host)", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid url scheme %q (expected http or https)", u.Scheme)
	}
	return u, nil
}

// Load reads a YAML configuration file over the built-in defaults, expanding
// ${VAR} references, and validates the result. An empty path or a file that
// does not exist yields the validated defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// defaults only
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			expanded := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
