package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
)

// EstimateDeploymentParams contains parameters for a fee estimate
type EstimateDeploymentParams struct {
	ContractRef string
	Args        []string
}

// EstimateDeploymentResult contains the estimated cost of a deployment
type EstimateDeploymentResult struct {
	Contract        *models.Contract
	Deployer        common.Address
	Network         *config.Network
	Fee             *models.FeeEstimate
	ConstructorArgs []byte
}

// EstimateDeployment runs the deploy workflow up to the fee estimate
type EstimateDeployment struct {
	config    *config.RuntimeConfig
	preparer  *deploymentPreparer
	estimator FeeEstimator
	progress  ProgressSink
}

// NewEstimateDeployment creates a new EstimateDeployment use case
func NewEstimateDeployment(
	cfg *config.RuntimeConfig,
	wallets WalletFactory,
	artifacts ArtifactRepository,
	encoder ConstructorEncoder,
	estimator FeeEstimator,
	selector ContractSelector,
	progress ProgressSink,
) *EstimateDeployment {
	return &EstimateDeployment{
		config: cfg,
		preparer: &deploymentPreparer{
			wallets:     wallets,
			artifacts:   artifacts,
			encoder:     encoder,
			selector:    selector,
			interactive: !cfg.NonInteractive,
			progress:    progress,
		},
		estimator: estimator,
		progress:  progress,
	}
}

// Run executes the estimate
func (uc *EstimateDeployment) Run(ctx context.Context, params EstimateDeploymentParams) (*EstimateDeploymentResult, error) {
	prepared, err := uc.preparer.prepare(ctx, uc.config.Network, params.ContractRef, params.Args)
	if err != nil {
		return nil, err
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   string(StageEstimating),
		Message: "Estimating deployment fee",
		Spinner: true,
	})

	fee, err := uc.estimator.EstimateDeployFee(ctx, prepared.Signer.Address, prepared.CreationCode())
	if err != nil {
		return nil, &domain.StepError{Step: domain.StepEstimate, Err: err}
	}
	uc.progress.Info(fmt.Sprintf("The deployment is estimated to cost %s ETH", fee.Ether()))

	return &EstimateDeploymentResult{
		Contract:        prepared.Contract,
		Deployer:        prepared.Signer.Address,
		Network:         uc.config.Network,
		Fee:             fee,
		ConstructorArgs: prepared.ConstructorArgs,
	}, nil
}
