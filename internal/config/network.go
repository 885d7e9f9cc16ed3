package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
)

const (
	chainIDTimeout = 10 * time.Second

	// ChainIDCacheFile stores resolved chain ids in the project data dir
	ChainIDCacheFile = "chain-ids.json"
)

// explorerURLs are the public explorers for chains without an [etherscan] url
var explorerURLs = map[uint64]string{
	324:      "https://explorer.zksync.io",
	300:      "https://sepolia.explorer.zksync.io",
	1:        "https://etherscan.io",
	11155111: "https://sepolia.etherscan.io",
	10:       "https://optimistic.etherscan.io",
	8453:     "https://basescan.org",
	42161:    "https://arbiscan.io",
	59144:    "https://lineascan.build",
	534352:   "https://scrollscan.com",
}

// chainIDCache remembers which chain an endpoint serves. Entries are keyed by
// RPC URL so editing an endpoint in foundry.toml invalidates its entry.
type chainIDCache struct {
	Endpoints map[string]uint64 `json:"endpoints"`
}

// NetworkResolver resolves [rpc_endpoints] names to networks, asking each
// endpoint for its chain id once per project
type NetworkResolver struct {
	foundryConfig *config.FoundryConfig
	cachePath     string
	dial          func(ctx context.Context, rpcURL string) (uint64, error)

	mu    sync.Mutex
	cache chainIDCache
}

// NewNetworkResolver creates a new network resolver
func NewNetworkResolver(projectRoot string, foundryConfig *config.FoundryConfig) *NetworkResolver {
	r := &NetworkResolver{
		foundryConfig: foundryConfig,
		cachePath:     filepath.Join(projectRoot, DataDirName, ChainIDCacheFile),
		dial:          queryChainID,
		cache:         chainIDCache{Endpoints: make(map[string]uint64)},
	}
	r.loadCache()
	return r
}

// GetNetworks returns the configured network names in sorted order
func (r *NetworkResolver) GetNetworks() []string {
	names := make([]string, 0, len(r.foundryConfig.RpcEndpoints))
	for name := range r.foundryConfig.RpcEndpoints {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Resolve resolves a network name to its configuration
func (r *NetworkResolver) Resolve(networkName string) (*config.Network, error) {
	rpcURL, exists := r.foundryConfig.RpcEndpoints[networkName]
	if !exists {
		return nil, fmt.Errorf("network '%s' not found in foundry.toml [rpc_endpoints]", networkName)
	}
	if rpcURL == "" {
		envVar := rpcEnvVar(networkName, r.foundryConfig.RawRpcEndpoints[networkName])
		return nil, fmt.Errorf("RPC URL for network '%s' is empty, set %s in your environment or .env", networkName, envVar)
	}

	chainID, err := r.chainID(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chain ID for network %s: %w", networkName, err)
	}

	network := &config.Network{
		Name:        networkName,
		RPCURL:      rpcURL,
		ChainID:     chainID,
		ExplorerURL: explorerURLs[chainID],
	}
	if etherscan, ok := r.foundryConfig.Etherscan[networkName]; ok {
		network.APIKey = etherscan.Key
		if etherscan.URL != "" {
			network.ExplorerURL = etherscan.URL
		}
	}

	return network, nil
}

// chainID returns the cached chain id for an endpoint or asks the endpoint
func (r *NetworkResolver) chainID(rpcURL string) (uint64, error) {
	r.mu.Lock()
	chainID, cached := r.cache.Endpoints[rpcURL]
	r.mu.Unlock()
	if cached {
		return chainID, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), chainIDTimeout)
	defer cancel()

	chainID, err := r.dial(ctx, rpcURL)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Endpoints[rpcURL] = chainID
	// A lost cache write only costs another eth_chainId call
	_ = r.saveCache()

	return chainID, nil
}

func queryChainID(ctx context.Context, rpcURL string) (uint64, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to RPC: %w", err)
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to query eth_chainId: %w", err)
	}
	if !chainID.IsUint64() {
		return 0, fmt.Errorf("chain ID %s out of range", chainID)
	}
	return chainID.Uint64(), nil
}

func (r *NetworkResolver) loadCache() {
	data, err := os.ReadFile(r.cachePath)
	if err != nil {
		return
	}

	var cache chainIDCache
	if err := json.Unmarshal(data, &cache); err != nil || cache.Endpoints == nil {
		return
	}
	r.cache = cache
}

// saveCache writes the cache. Callers hold mu.
func (r *NetworkResolver) saveCache() error {
	if err := os.MkdirAll(filepath.Dir(r.cachePath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(r.cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.cachePath, data, 0644)
}
