package usecase

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
)

// WalletFactory builds the signing identity from the configured credential
type WalletFactory interface {
	NewSigner(ctx context.Context, chainID *big.Int) (*models.SigningIdentity, error)
}

// ArtifactRepository provides access to compiled contracts
type ArtifactRepository interface {
	GetContract(ctx context.Context, query domain.ContractQuery) (*models.Contract, error)
	ListContracts(ctx context.Context) ([]*models.Contract, error)
}

// ConstructorEncoder parses artifact ABIs and packs constructor arguments
type ConstructorEncoder interface {
	ParseABI(artifact *models.Artifact) (*abi.ABI, error)
	EncodeConstructorArgs(contractABI *abi.ABI, args []string) ([]byte, error)
	DecodeConstructorArgs(contractABI *abi.ABI, data []byte) ([]any, error)
}

// FeeEstimator predicts the cost of a contract creation transaction
type FeeEstimator interface {
	EstimateDeployFee(ctx context.Context, from common.Address, creationCode []byte) (*models.FeeEstimate, error)
}

// ContractDeployer submits a creation transaction and waits for its receipt
type ContractDeployer interface {
	Deploy(ctx context.Context, signer *models.SigningIdentity, req DeployRequest) (*models.DeployedContract, error)
}

// DeployRequest is the input of a single contract creation
type DeployRequest struct {
	ABI             *abi.ABI
	Bytecode        []byte
	ConstructorArgs []byte
	GasLimit        uint64 // 0 lets the node estimate
}

// ContractVerifier submits deployed contracts to a verification backend
type ContractVerifier interface {
	Verify(ctx context.Context, req VerificationRequest) (*VerificationResult, error)
}

// VerificationRequest carries everything a verifier needs to match source to bytecode
type VerificationRequest struct {
	Address            common.Address
	FullyQualifiedName string // e.g. "contracts/zkSync.sol:TestContract"
	ConstructorArgs    []byte
	Bytecode           []byte // creation bytecode from the artifact
	Contract           *models.Contract
	Network            *config.Network
	CompilerVersion    string
	Wait               bool // poll until the backend reaches a final status
}

// VerificationResult is the outcome reported by a verification backend
type VerificationResult struct {
	Verifier       string
	VerificationID string
	URL            string
	Status         models.VerificationStatus
}

// DeploymentRepository handles persistence of deployment records
type DeploymentRepository interface {
	GetDeployment(ctx context.Context, id string) (*models.Deployment, error)
	GetDeploymentByAddress(ctx context.Context, chainID uint64, address string) (*models.Deployment, error)
	ListDeployments(ctx context.Context, filter domain.DeploymentFilter) ([]*models.Deployment, error)
	SaveDeployment(ctx context.Context, deployment *models.Deployment) error
}

// NetworkResolver handles network configuration resolution
type NetworkResolver interface {
	GetNetworks(ctx context.Context) []string
	ResolveNetwork(ctx context.Context, networkName string) (*config.Network, error)
}

// Confirmer asks the user to approve an action
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// ContractSelector asks the user to pick one of several matching contracts
type ContractSelector interface {
	SelectContract(ctx context.Context, prompt string, options []string) (string, error)
}

// ContractBuilder compiles the project before artifacts are read
type ContractBuilder interface {
	Build(ctx context.Context) error
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// DeployStage names the stages reported while deploying
type DeployStage string

const (
	StageSigner     DeployStage = "Signer"
	StageArtifact   DeployStage = "Artifact"
	StageEstimating DeployStage = "Estimating"
	StageDeploying  DeployStage = "Deploying"
	StageRecording  DeployStage = "Recording"
	StageVerifying  DeployStage = "Verifying"
	StageCompleted  DeployStage = "Completed"
)
