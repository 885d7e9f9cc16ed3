package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
)

// resolveDeployment finds a record by id, address or contract name.
// Names resolve to the most recent matching record.
func resolveDeployment(ctx context.Context, repo DeploymentRepository, query domain.DeploymentQuery) (*models.Deployment, error) {
	identifier := strings.TrimSpace(query.Reference)
	if identifier == "" {
		return nil, fmt.Errorf("deployment identifier is required")
	}

	if common.IsHexAddress(identifier) {
		if query.ChainID == 0 {
			return nil, fmt.Errorf("--network is required when looking up by address")
		}
		deployment, err := repo.GetDeploymentByAddress(ctx, query.ChainID, identifier)
		if err != nil {
			return nil, fmt.Errorf("deployment not found at address %s on chain %d: %w", identifier, query.ChainID, err)
		}
		return deployment, nil
	}

	deployment, err := repo.GetDeployment(ctx, identifier)
	if err == nil {
		return deployment, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	filter := domain.DeploymentFilter{ChainID: query.ChainID}
	contractName := identifier
	// <chainId>/<Contract> narrows the search to one chain
	if parts := strings.SplitN(identifier, "/", 2); len(parts) == 2 {
		if chainID, err := strconv.ParseUint(parts[0], 10, 64); err == nil {
			filter.ChainID = chainID
			contractName = parts[1]
		}
	}
	filter.ContractName = contractName

	matches, err := repo.ListDeployments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no deployments found matching '%s': %w", identifier, domain.ErrNotFound)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches[0], nil
}
