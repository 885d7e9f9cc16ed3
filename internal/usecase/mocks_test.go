package usecase_test

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

type MockWalletFactory struct {
	mock.Mock
}

func (m *MockWalletFactory) NewSigner(ctx context.Context, chainID *big.Int) (*models.SigningIdentity, error) {
	args := m.Called(ctx, chainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SigningIdentity), args.Error(1)
}

type MockArtifactRepository struct {
	mock.Mock
}

func (m *MockArtifactRepository) GetContract(ctx context.Context, query domain.ContractQuery) (*models.Contract, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contract), args.Error(1)
}

func (m *MockArtifactRepository) ListContracts(ctx context.Context) ([]*models.Contract, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Contract), args.Error(1)
}

type MockConstructorEncoder struct {
	mock.Mock
}

func (m *MockConstructorEncoder) ParseABI(artifact *models.Artifact) (*abi.ABI, error) {
	args := m.Called(artifact)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*abi.ABI), args.Error(1)
}

func (m *MockConstructorEncoder) EncodeConstructorArgs(contractABI *abi.ABI, values []string) ([]byte, error) {
	args := m.Called(contractABI, values)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockConstructorEncoder) DecodeConstructorArgs(contractABI *abi.ABI, data []byte) ([]any, error) {
	args := m.Called(contractABI, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]any), args.Error(1)
}

type MockFeeEstimator struct {
	mock.Mock
}

func (m *MockFeeEstimator) EstimateDeployFee(ctx context.Context, from common.Address, creationCode []byte) (*models.FeeEstimate, error) {
	args := m.Called(ctx, from, creationCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FeeEstimate), args.Error(1)
}

type MockContractDeployer struct {
	mock.Mock
}

func (m *MockContractDeployer) Deploy(ctx context.Context, signer *models.SigningIdentity, req usecase.DeployRequest) (*models.DeployedContract, error) {
	args := m.Called(ctx, signer, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeployedContract), args.Error(1)
}

type MockContractVerifier struct {
	mock.Mock
}

func (m *MockContractVerifier) Verify(ctx context.Context, req usecase.VerificationRequest) (*usecase.VerificationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.VerificationResult), args.Error(1)
}

// MockDeploymentRepository is a mock implementation of DeploymentRepository
type MockDeploymentRepository struct {
	mock.Mock
}

func (m *MockDeploymentRepository) GetDeployment(ctx context.Context, id string) (*models.Deployment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deployment), args.Error(1)
}

func (m *MockDeploymentRepository) GetDeploymentByAddress(ctx context.Context, chainID uint64, address string) (*models.Deployment, error) {
	args := m.Called(ctx, chainID, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deployment), args.Error(1)
}

func (m *MockDeploymentRepository) ListDeployments(ctx context.Context, filter domain.DeploymentFilter) ([]*models.Deployment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Deployment), args.Error(1)
}

func (m *MockDeploymentRepository) SaveDeployment(ctx context.Context, deployment *models.Deployment) error {
	args := m.Called(ctx, deployment)
	return args.Error(0)
}

type MockNetworkResolver struct {
	mock.Mock
}

func (m *MockNetworkResolver) GetNetworks(ctx context.Context) []string {
	args := m.Called(ctx)
	return args.Get(0).([]string)
}

func (m *MockNetworkResolver) ResolveNetwork(ctx context.Context, networkName string) (*config.Network, error) {
	args := m.Called(ctx, networkName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*config.Network), args.Error(1)
}

type MockConfirmer struct {
	mock.Mock
}

func (m *MockConfirmer) Confirm(ctx context.Context, message string) (bool, error) {
	args := m.Called(ctx, message)
	return args.Bool(0), args.Error(1)
}

type MockContractSelector struct {
	mock.Mock
}

func (m *MockContractSelector) SelectContract(ctx context.Context, prompt string, options []string) (string, error) {
	args := m.Called(ctx, prompt, options)
	return args.String(0), args.Error(1)
}

type MockContractBuilder struct {
	mock.Mock
}

func (m *MockContractBuilder) Build(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// recordingProgress keeps the user-facing lines in the order they were emitted
type recordingProgress struct {
	lines  []string
	errors []string
	stages []string
}

func (p *recordingProgress) OnProgress(_ context.Context, event usecase.ProgressEvent) {
	p.stages = append(p.stages, event.Stage)
}

func (p *recordingProgress) Info(message string) {
	p.lines = append(p.lines, message)
}

func (p *recordingProgress) Error(message string) {
	p.errors = append(p.errors, message)
}
