package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// ApplicationConfiguration is the client configuration.
type ApplicationConfiguration struct {
	// Nodes is the list of node RPC endpoints, http(s) or ws(s) URLs. The
	// first one is used for single-node queries.
	Nodes []string `yaml:"Nodes"`
	// ChainID is the chain id to use in transactions, it's requested from
	// the node if not set.
	ChainID *uint32 `yaml:"ChainID"`
	// PrivateKey is the hex-encoded key used to sign transactions.
	PrivateKey string `yaml:"PrivateKey"`

	LogLevel string `yaml:"LogLevel"`
	LogPath  string `yaml:"LogPath"`

	DialTimeout           time.Duration `yaml:"DialTimeout"`
	RequestTimeout        time.Duration `yaml:"RequestTimeout"`
	MaxConnsPerHost       int           `yaml:"MaxConnsPerHost"`
	MaxConcurrentRequests int           `yaml:"MaxConcurrentRequests"`
	BlockCacheSize        int           `yaml:"BlockCacheSize"`
}

// Validate checks ApplicationConfiguration for internal consistency and
// returns an error if any invalid settings are found.
func (a *ApplicationConfiguration) Validate() error {
	for _, n := range a.Nodes {
		u, err := url.Parse(n)
		if err != nil {
			return fmt.Errorf("invalid node address %q: %w", n, err)
		}
		switch u.Scheme {
		case "http", "https", "ws", "wss":
		default:
			return fmt.Errorf("invalid node address %q: unsupported scheme %q", n, u.Scheme)
		}
		if len(u.Host) == 0 {
			return fmt.Errorf("invalid node address %q: no host", n)
		}
	}
	if a.DialTimeout < 0 || a.RequestTimeout < 0 {
		return errors.New("negative timeout")
	}
	if a.MaxConnsPerHost < 0 {
		return fmt.Errorf("negative MaxConnsPerHost: %d", a.MaxConnsPerHost)
	}
	if a.MaxConcurrentRequests < 0 {
		return fmt.Errorf("negative MaxConcurrentRequests: %d", a.MaxConcurrentRequests)
	}
	if a.BlockCacheSize < 0 {
		return fmt.Errorf("negative BlockCacheSize: %d", a.BlockCacheSize)
	}
	return nil
}

// WebSocket returns true if nodes are to be accessed via websocket. Mixing
// websocket and HTTP endpoints is not supported, the first node decides.
func (a *ApplicationConfiguration) WebSocket() bool {
	if len(a.Nodes) == 0 {
		return false
	}
	u, err := url.Parse(a.Nodes[0])
	return err == nil && (u.Scheme == "ws" || u.Scheme == "wss")
}
