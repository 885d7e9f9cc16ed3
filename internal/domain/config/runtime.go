package config

import (
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string

	// Context settings
	Namespace string   // Maps to foundry profile
	Network   *Network // nil if not specified

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool
	Timeout        time.Duration

	// Resolved configurations
	FoundryConfig *FoundryConfig
	Deploy        DeployConfig // Profile-specific deploy settings, flag overrides applied
}

// Network represents network configuration
type Network struct {
	ChainID     uint64 `json:"chainId"`
	Name        string `json:"name"`
	RPCURL      string `json:"rpcUrl"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
	APIKey      string `json:"-"`
}

// IsLocal reports whether the network is a local development chain
func (n *Network) IsLocal() bool {
	if n == nil {
		return false
	}
	switch n.ChainID {
	case 31337, 1337, 260:
		return true
	}
	return false
}
