package usecase

import (
	"context"
	"sync"
)

// ListNetworksResult holds one status per [rpc_endpoints] entry, in name order
type ListNetworksResult struct {
	Networks []NetworkStatus
}

// NetworkStatus is a configured network and whether its endpoint answered
type NetworkStatus struct {
	Name        string
	ChainID     uint64
	ExplorerURL string
	Local       bool
	Error       error
}

// ListNetworks resolves every configured network
type ListNetworks struct {
	resolver NetworkResolver
}

// NewListNetworks creates a new ListNetworks use case
func NewListNetworks(resolver NetworkResolver) *ListNetworks {
	return &ListNetworks{resolver: resolver}
}

// Run asks all endpoints for their chain id in parallel. An unreachable
// endpoint is reported on its own row and does not fail the listing.
func (uc *ListNetworks) Run(ctx context.Context) (*ListNetworksResult, error) {
	names := uc.resolver.GetNetworks(ctx)
	statuses := make([]NetworkStatus, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			statuses[i] = uc.status(ctx, name)
		}()
	}
	wg.Wait()

	return &ListNetworksResult{Networks: statuses}, nil
}

func (uc *ListNetworks) status(ctx context.Context, name string) NetworkStatus {
	network, err := uc.resolver.ResolveNetwork(ctx, name)
	if err != nil {
		return NetworkStatus{Name: name, Error: err}
	}
	return NetworkStatus{
		Name:        name,
		ChainID:     network.ChainID,
		ExplorerURL: network.ExplorerURL,
		Local:       network.IsLocal(),
	}
}
