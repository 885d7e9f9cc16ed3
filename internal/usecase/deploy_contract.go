package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
)

// DeployContractParams contains parameters for a single deployment
type DeployContractParams struct {
	ContractRef string   // "Name" or "path/File.sol:Name"
	Args        []string // constructor arguments, parsed against the ABI
	GasLimit    uint64   // overrides deploy.gas_limit when set
	SkipVerify  bool
	Build       bool // run the compiler before resolving the artifact
	Yes         bool // skip the confirmation prompt
	Wait        bool // wait for the verifier to reach a final status
}

// DeployResult contains the outcome of a deployment.
// It is returned alongside a verification error so the record stays reachable.
type DeployResult struct {
	Deployment   *models.Deployment
	Contract     *models.Contract
	Fee          *models.FeeEstimate
	Deployed     *models.DeployedContract
	Verification *VerificationResult
}

// DeployContract deploys one compiled contract and submits it for verification
type DeployContract struct {
	config    *config.RuntimeConfig
	preparer  *deploymentPreparer
	estimator FeeEstimator
	deployer  ContractDeployer
	verifier  ContractVerifier
	repo      DeploymentRepository
	confirmer Confirmer
	builder   ContractBuilder
	progress  ProgressSink
	log       *slog.Logger
}

// NewDeployContract creates a new DeployContract use case
func NewDeployContract(
	cfg *config.RuntimeConfig,
	wallets WalletFactory,
	artifacts ArtifactRepository,
	encoder ConstructorEncoder,
	estimator FeeEstimator,
	deployer ContractDeployer,
	verifier ContractVerifier,
	repo DeploymentRepository,
	confirmer Confirmer,
	selector ContractSelector,
	builder ContractBuilder,
	progress ProgressSink,
	log *slog.Logger,
) *DeployContract {
	return &DeployContract{
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
		deployer:  deployer,
		verifier:  verifier,
		repo:      repo,
		confirmer: confirmer,
		builder:   builder,
		progress:  progress,
		log:       log.With("component", "DeployContract"),
	}
}

// Run executes the deploy workflow, stopping at the first failing step
func (uc *DeployContract) Run(ctx context.Context, params DeployContractParams) (*DeployResult, error) {
	network := uc.config.Network
	if network == nil {
		return nil, domain.ErrNetworkRequired
	}

	uc.progress.Info(fmt.Sprintf("Running deploy script for the %s contract", contractDisplayName(params.ContractRef)))

	if params.Build {
		uc.progress.OnProgress(ctx, ProgressEvent{Stage: "Building", Message: "Compiling contracts", Spinner: true})
		if err := uc.builder.Build(ctx); err != nil {
			return nil, &domain.StepError{Step: domain.StepArtifact, Err: fmt.Errorf("failed to build contracts: %w", err)}
		}
	}

	prepared, err := uc.preparer.prepare(ctx, network, params.ContractRef, params.Args)
	if err != nil {
		return nil, err
	}
	uc.log.Debug("prepared deployment",
		"contract", prepared.Contract.FullyQualifiedName(),
		"deployer", prepared.Signer.Address.Hex(),
		"source", prepared.Signer.Source)

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

	if err := uc.confirm(ctx, network, prepared.Contract, params); err != nil {
		return nil, err
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   string(StageDeploying),
		Message: fmt.Sprintf("Deploying %s to %s", prepared.Contract.Name, network.Name),
		Spinner: true,
	})

	gasLimit := params.GasLimit
	if gasLimit == 0 {
		gasLimit = uc.config.Deploy.GasLimit
	}

	deployed, err := uc.deployer.Deploy(ctx, prepared.Signer, DeployRequest{
		ABI:             prepared.ABI,
		Bytecode:        prepared.Bytecode,
		ConstructorArgs: prepared.ConstructorArgs,
		GasLimit:        gasLimit,
	})
	if err != nil {
		return nil, &domain.StepError{Step: domain.StepDeploy, Err: err}
	}

	uc.progress.Info(fmt.Sprintf("constructor args:%s", deployed.EncodedConstructorArgs()))
	uc.progress.Info(fmt.Sprintf("%s was deployed to %s", prepared.Contract.Name, deployed.Address.Hex()))

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   string(StageRecording),
		Message: "Saving deployment record",
		Spinner: true,
	})

	record := uc.buildRecord(network, prepared, fee, deployed)
	result := &DeployResult{
		Deployment: record,
		Contract:   prepared.Contract,
		Fee:        fee,
		Deployed:   deployed,
	}

	// The contract is already on chain, so the result goes back even when the save fails
	if err := uc.repo.SaveDeployment(ctx, record); err != nil {
		return result, &domain.StepError{Step: domain.StepRecord, Err: err}
	}

	if params.SkipVerify || uc.config.Deploy.Verifier == config.VerifierNone {
		record.Verification.Status = models.VerificationStatusSkipped
		if err := uc.repo.SaveDeployment(ctx, record); err != nil {
			return result, &domain.StepError{Step: domain.StepRecord, Err: err}
		}
		uc.progress.OnProgress(ctx, ProgressEvent{Stage: string(StageCompleted), Message: "Deployment complete"})
		return result, nil
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   string(StageVerifying),
		Message: fmt.Sprintf("Verifying %s", prepared.Contract.FullyQualifiedName()),
		Spinner: true,
	})

	verification, err := uc.verifier.Verify(ctx, VerificationRequest{
		Address:            deployed.Address,
		FullyQualifiedName: prepared.Contract.FullyQualifiedName(),
		ConstructorArgs:    deployed.ConstructorArgs,
		Bytecode:           prepared.Bytecode,
		Contract:           prepared.Contract,
		Network:            network,
		CompilerVersion:    compilerVersion(uc.config.Deploy, prepared.Contract),
		Wait:               params.Wait,
	})
	applyVerification(record, verification, err)
	result.Verification = verification

	if saveErr := uc.repo.SaveDeployment(ctx, record); saveErr != nil {
		uc.log.Warn("failed to save verification status", "id", record.ID, "error", saveErr)
	}

	if err != nil {
		return result, &domain.StepError{Step: domain.StepVerify, Err: err}
	}

	uc.progress.Info(fmt.Sprintf("%s verified! VerificationId: %s", prepared.Contract.FullyQualifiedName(), verification.VerificationID))
	uc.progress.OnProgress(ctx, ProgressEvent{Stage: string(StageCompleted), Message: "Deployment complete"})

	return result, nil
}

// confirm asks before spending funds on a non-local network
func (uc *DeployContract) confirm(ctx context.Context, network *config.Network, contract *models.Contract, params DeployContractParams) error {
	if params.Yes || uc.config.NonInteractive || network.IsLocal() {
		return nil
	}

	ok, err := uc.confirmer.Confirm(ctx, fmt.Sprintf("Deploy %s to %s (chain %d)?", contract.Name, network.Name, network.ChainID))
	if err != nil {
		return fmt.Errorf("failed to confirm deployment: %w", err)
	}
	if !ok {
		return domain.ErrAborted
	}
	return nil
}

func (uc *DeployContract) buildRecord(
	network *config.Network,
	prepared *preparedDeployment,
	fee *models.FeeEstimate,
	deployed *models.DeployedContract,
) *models.Deployment {
	now := time.Now()

	record := &models.Deployment{
		Network:         network.Name,
		ChainID:         network.ChainID,
		ContractName:    prepared.Contract.Name,
		Address:         deployed.Address.Hex(),
		TransactionHash: deployed.TransactionHash.Hex(),
		BlockNumber:     deployed.BlockNumber,
		GasUsed:         deployed.GasUsed,
		Deployer:        prepared.Signer.Address.Hex(),
		Artifact: models.ArtifactInfo{
			FullyQualifiedName: prepared.Contract.FullyQualifiedName(),
			Path:               prepared.Contract.ArtifactPath,
			CompilerVersion:    prepared.Contract.Artifact.CompilerVersion(),
		},
		Verification: models.VerificationInfo{
			Status: models.VerificationStatusUnverified,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if len(deployed.ConstructorArgs) > 0 {
		record.ConstructorArgs = hexutil.Encode(deployed.ConstructorArgs)
	}
	if fee != nil && fee.Fee != nil {
		record.EstimatedFeeWei = fee.Fee.String()
	}
	if hash, err := prepared.Contract.Artifact.Bytecode.Hash(); err == nil {
		record.Artifact.BytecodeHash = hash.Hex()
	}

	return record
}

// applyVerification copies a verifier outcome onto the record
func applyVerification(record *models.Deployment, result *VerificationResult, err error) {
	record.UpdatedAt = time.Now()

	if err != nil {
		record.Verification.Status = models.VerificationStatusFailed
		record.Verification.Reason = err.Error()
		if result != nil {
			record.Verification.Verifier = result.Verifier
		}
		return
	}

	record.Verification.Status = result.Status
	if record.Verification.Status == "" {
		record.Verification.Status = models.VerificationStatusSubmitted
	}
	record.Verification.Verifier = result.Verifier
	record.Verification.VerificationID = result.VerificationID
	record.Verification.URL = result.URL
	record.Verification.Reason = ""
	if record.Verification.Status == models.VerificationStatusVerified {
		verifiedAt := record.UpdatedAt
		record.Verification.VerifiedAt = &verifiedAt
	}
}

// compilerVersion prefers the version recorded in the artifact over config
func compilerVersion(deploy config.DeployConfig, contract *models.Contract) string {
	if contract != nil && contract.Artifact != nil {
		if version := contract.Artifact.CompilerVersion(); version != "" {
			return version
		}
	}
	return deploy.CompilerVersion
}
