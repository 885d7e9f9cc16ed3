package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

func TestListDeployments(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	deployments := []*models.Deployment{
		{
			ID:           "324/Greeter/bbbbbbbb",
			ChainID:      324,
			ContractName: "Greeter",
			Verification: models.VerificationInfo{Status: models.VerificationStatusVerified},
			CreatedAt:    now,
		},
		{
			ID:           "300/TestContract/aaaaaaaa",
			ChainID:      300,
			ContractName: "TestContract",
			Verification: models.VerificationInfo{Status: models.VerificationStatusFailed},
			CreatedAt:    now,
		},
		{
			ID:           "300/Greeter/cccccccc",
			ChainID:      300,
			ContractName: "Greeter",
			Verification: models.VerificationInfo{Status: models.VerificationStatusVerified},
			CreatedAt:    now.Add(-time.Minute),
		},
	}

	t.Run("list all deployments", func(t *testing.T) {
		repo := new(MockDeploymentRepository)
		progress := &recordingProgress{}
		repo.On("ListDeployments", ctx, domain.DeploymentFilter{}).Return(deployments, nil)

		uc := usecase.NewListDeployments(&config.RuntimeConfig{}, repo, progress)
		result, err := uc.Run(ctx, usecase.ListDeploymentsParams{})
		require.NoError(t, err)

		require.Len(t, result.Deployments, 3)
		assert.Equal(t, "300/Greeter/cccccccc", result.Deployments[0].ID)
		assert.Equal(t, "300/TestContract/aaaaaaaa", result.Deployments[1].ID)
		assert.Equal(t, "324/Greeter/bbbbbbbb", result.Deployments[2].ID)

		assert.Equal(t, 3, result.Summary.Total)
		assert.Equal(t, 2, result.Summary.ByChain[300])
		assert.Equal(t, 2, result.Summary.ByStatus[models.VerificationStatusVerified])
		assert.Equal(t, []string{"loading", "complete"}, progress.stages)
	})

	t.Run("network narrows to its chain", func(t *testing.T) {
		repo := new(MockDeploymentRepository)
		filter := domain.DeploymentFilter{ChainID: 300, ContractName: "Greeter"}
		repo.On("ListDeployments", ctx, filter).Return(deployments[2:], nil)

		cfg := &config.RuntimeConfig{Network: &config.Network{Name: "zksync-sepolia", ChainID: 300}}
		uc := usecase.NewListDeployments(cfg, repo, usecase.NopProgress{})
		result, err := uc.Run(ctx, usecase.ListDeploymentsParams{ContractName: "Greeter"})
		require.NoError(t, err)
		assert.Len(t, result.Deployments, 1)
		repo.AssertExpectations(t)
	})

	t.Run("store error", func(t *testing.T) {
		repo := new(MockDeploymentRepository)
		repo.On("ListDeployments", ctx, mock.Anything).Return(nil, errors.New("registry corrupted"))

		uc := usecase.NewListDeployments(&config.RuntimeConfig{}, repo, usecase.NopProgress{})
		_, err := uc.Run(ctx, usecase.ListDeploymentsParams{})
		assert.EqualError(t, err, "registry corrupted")
	})
}

func TestShowDeployment(t *testing.T) {
	ctx := context.Background()
	deployment := newRecordedDeployment()

	repo := new(MockDeploymentRepository)
	repo.On("GetDeployment", mock.Anything, deployment.ID).Return(deployment, nil)

	uc := usecase.NewShowDeployment(&config.RuntimeConfig{}, repo, usecase.NopProgress{})
	got, err := uc.Run(ctx, usecase.ShowDeploymentParams{Identifier: deployment.ID})
	require.NoError(t, err)
	assert.Same(t, deployment, got)

	_, err = uc.Run(ctx, usecase.ShowDeploymentParams{Identifier: testAddress.Hex()})
	assert.ErrorContains(t, err, "--network is required")
}

func TestListNetworks(t *testing.T) {
	ctx := context.Background()
	resolver := new(MockNetworkResolver)
	resolver.On("GetNetworks", ctx).Return([]string{"in-memory-node", "zksync-sepolia"})
	resolver.On("ResolveNetwork", ctx, "in-memory-node").Return(&config.Network{Name: "in-memory-node", ChainID: 260}, nil)
	resolver.On("ResolveNetwork", ctx, "zksync-sepolia").Return(nil, errors.New("connection refused"))

	result, err := usecase.NewListNetworks(resolver).Run(ctx)
	require.NoError(t, err)

	require.Len(t, result.Networks, 2)
	assert.Equal(t, uint64(260), result.Networks[0].ChainID)
	assert.True(t, result.Networks[0].Local)
	assert.EqualError(t, result.Networks[1].Error, "connection refused")
}
