package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
)

// VerifyDeployment re-runs verification for a recorded deployment
type VerifyDeployment struct {
	config    *config.RuntimeConfig
	repo      DeploymentRepository
	artifacts ArtifactRepository
	verifier  ContractVerifier
	networks  NetworkResolver
	progress  ProgressSink
	log       *slog.Logger
}

// NewVerifyDeployment creates a new verify deployment use case
func NewVerifyDeployment(
	cfg *config.RuntimeConfig,
	repo DeploymentRepository,
	artifacts ArtifactRepository,
	verifier ContractVerifier,
	networks NetworkResolver,
	progress ProgressSink,
	log *slog.Logger,
) *VerifyDeployment {
	return &VerifyDeployment{
		config:    cfg,
		repo:      repo,
		artifacts: artifacts,
		verifier:  verifier,
		networks:  networks,
		progress:  progress,
		log:       log.With("component", "VerifyDeployment"),
	}
}

// VerifyOptions contains options for verification
type VerifyOptions struct {
	Force bool // Re-verify even if already verified
	Wait  bool // Poll the verifier until a final status
}

// VerifyResult contains the result of verification
type VerifyResult struct {
	Deployment   *models.Deployment
	Verification *VerificationResult
	Skipped      bool
	Reason       string
}

// Run verifies the deployment matching identifier (record id, address or contract name)
func (uc *VerifyDeployment) Run(ctx context.Context, identifier string, options VerifyOptions) (*VerifyResult, error) {
	query := domain.DeploymentQuery{Reference: identifier}
	if uc.config.Network != nil {
		query.ChainID = uc.config.Network.ChainID
	}

	deployment, err := resolveDeployment(ctx, uc.repo, query)
	if err != nil {
		return nil, err
	}

	if deployment.IsVerified() && !options.Force {
		return &VerifyResult{
			Deployment: deployment,
			Skipped:    true,
			Reason:     "Already verified. Use --force to re-verify.",
		}, nil
	}

	network, err := uc.networkFor(ctx, deployment)
	if err != nil {
		return nil, err
	}

	contract, err := uc.artifacts.GetContract(ctx, domain.ContractQuery{Reference: deployment.Artifact.FullyQualifiedName})
	if err != nil {
		return nil, &domain.StepError{Step: domain.StepArtifact, Err: err}
	}

	bytecode, err := contract.Artifact.Bytecode.Bytes()
	if err != nil {
		return nil, &domain.StepError{Step: domain.StepArtifact, Err: fmt.Errorf("failed to decode bytecode of %s: %w", contract.Name, err)}
	}
	if hash, err := contract.Artifact.Bytecode.Hash(); err == nil && deployment.Artifact.BytecodeHash != "" && hash.Hex() != deployment.Artifact.BytecodeHash {
		uc.log.Warn("artifact bytecode changed since deployment", "id", deployment.ID, "contract", contract.FullyQualifiedName())
	}

	var constructorArgs []byte
	if deployment.ConstructorArgs != "" {
		constructorArgs, err = hexutil.Decode(deployment.ConstructorArgs)
		if err != nil {
			return nil, fmt.Errorf("invalid constructor args in record %s: %w", deployment.ID, err)
		}
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   string(StageVerifying),
		Message: fmt.Sprintf("Verifying %s", deployment.Artifact.FullyQualifiedName),
		Spinner: true,
	})

	verification, err := uc.verifier.Verify(ctx, VerificationRequest{
		Address:            common.HexToAddress(deployment.Address),
		FullyQualifiedName: deployment.Artifact.FullyQualifiedName,
		ConstructorArgs:    constructorArgs,
		Bytecode:           bytecode,
		Contract:           contract,
		Network:            network,
		CompilerVersion:    compilerVersion(uc.config.Deploy, contract),
		Wait:               options.Wait,
	})
	applyVerification(deployment, verification, err)

	if saveErr := uc.repo.SaveDeployment(ctx, deployment); saveErr != nil {
		return nil, fmt.Errorf("failed to update registry: %w", saveErr)
	}

	if err != nil {
		return &VerifyResult{Deployment: deployment, Verification: verification}, &domain.StepError{Step: domain.StepVerify, Err: err}
	}

	uc.progress.Info(fmt.Sprintf("%s verified! VerificationId: %s", deployment.Artifact.FullyQualifiedName, verification.VerificationID))

	return &VerifyResult{
		Deployment:   deployment,
		Verification: verification,
	}, nil
}

// networkFor returns the network a record was deployed to
func (uc *VerifyDeployment) networkFor(ctx context.Context, deployment *models.Deployment) (*config.Network, error) {
	if network := uc.config.Network; network != nil {
		if network.ChainID != deployment.ChainID {
			return nil, fmt.Errorf("%w: deployment is on chain %d, --network %s is chain %d",
				domain.ErrNetworkMismatch, deployment.ChainID, network.Name, network.ChainID)
		}
		return network, nil
	}

	network, err := uc.networks.ResolveNetwork(ctx, deployment.Network)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve network %s: %w", deployment.Network, err)
	}
	if network.ChainID != deployment.ChainID {
		return nil, fmt.Errorf("%w: network %s is now chain %d, deployment is on chain %d",
			domain.ErrNetworkMismatch, network.Name, network.ChainID, deployment.ChainID)
	}
	return network, nil
}
