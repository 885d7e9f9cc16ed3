package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
)

// deploymentPreparer runs the steps shared by estimate and deploy:
// signer construction, artifact resolution and constructor encoding.
type deploymentPreparer struct {
	wallets     WalletFactory
	artifacts   ArtifactRepository
	encoder     ConstructorEncoder
	selector    ContractSelector
	interactive bool
	progress    ProgressSink
}

// preparedDeployment holds the values produced by the signer and artifact steps
type preparedDeployment struct {
	Signer          *models.SigningIdentity
	Contract        *models.Contract
	ABI             *abi.ABI
	Bytecode        []byte
	ConstructorArgs []byte
}

// CreationCode returns bytecode followed by the encoded constructor arguments
func (p *preparedDeployment) CreationCode() []byte {
	code := make([]byte, 0, len(p.Bytecode)+len(p.ConstructorArgs))
	code = append(code, p.Bytecode...)
	return append(code, p.ConstructorArgs...)
}

func (p *deploymentPreparer) prepare(ctx context.Context, network *config.Network, contractRef string, args []string) (*preparedDeployment, error) {
	if network == nil {
		return nil, domain.ErrNetworkRequired
	}

	p.progress.OnProgress(ctx, ProgressEvent{
		Stage:   string(StageSigner),
		Message: "Loading deployer key",
		Spinner: true,
	})

	signer, err := p.wallets.NewSigner(ctx, new(big.Int).SetUint64(network.ChainID))
	if err != nil {
		return nil, &domain.StepError{Step: domain.StepSigner, Err: err}
	}

	p.progress.OnProgress(ctx, ProgressEvent{
		Stage:   string(StageArtifact),
		Message: fmt.Sprintf("Loading artifact for %s", contractRef),
		Spinner: true,
	})

	contract, err := p.resolveContract(ctx, contractRef)
	if err != nil {
		return nil, &domain.StepError{Step: domain.StepArtifact, Err: err}
	}

	if contract.Format == models.ArtifactFormatZkSolc || contract.Artifact.IsZkSolc() {
		return nil, &domain.StepError{
			Step: domain.StepArtifact,
			Err: fmt.Errorf("%w: %s was compiled by zksolc (%s) and needs an EIP-712 deployment through the zkSync ContractDeployer, compile it with solc instead",
				domain.ErrUnsupportedArtifact, contract.FullyQualifiedName(), contract.ArtifactPath),
		}
	}

	if !contract.Artifact.Bytecode.IsLinked() {
		return nil, &domain.StepError{
			Step: domain.StepArtifact,
			Err:  fmt.Errorf("%s has unlinked library references, link libraries before deploying", contract.Name),
		}
	}

	bytecode, err := contract.Artifact.Bytecode.Bytes()
	if err != nil {
		return nil, &domain.StepError{Step: domain.StepArtifact, Err: fmt.Errorf("failed to decode bytecode of %s: %w", contract.Name, err)}
	}

	contractABI, err := p.encoder.ParseABI(contract.Artifact)
	if err != nil {
		return nil, &domain.StepError{Step: domain.StepArtifact, Err: err}
	}

	encodedArgs, err := p.encoder.EncodeConstructorArgs(contractABI, args)
	if err != nil {
		return nil, &domain.StepError{Step: domain.StepArtifact, Err: err}
	}

	return &preparedDeployment{
		Signer:          signer,
		Contract:        contract,
		ABI:             contractABI,
		Bytecode:        bytecode,
		ConstructorArgs: encodedArgs,
	}, nil
}

// resolveContract looks up the artifact, letting the user disambiguate in interactive mode
func (p *deploymentPreparer) resolveContract(ctx context.Context, contractRef string) (*models.Contract, error) {
	contract, err := p.artifacts.GetContract(ctx, domain.ContractQuery{Reference: contractRef})
	if err == nil {
		return contract, nil
	}

	var ambiguous domain.AmbiguousArtifactError
	if !errors.As(err, &ambiguous) || !p.interactive || p.selector == nil {
		return nil, err
	}

	options := make([]string, len(ambiguous.Matches))
	copy(options, ambiguous.Matches)
	sort.Strings(options)

	selected, err := p.selector.SelectContract(ctx, fmt.Sprintf("Multiple contracts found for '%s'. Select one:", contractRef), options)
	if err != nil {
		return nil, fmt.Errorf("contract selection failed: %w", err)
	}
	return p.artifacts.GetContract(ctx, domain.ContractQuery{Reference: selected})
}

// contractDisplayName strips the source path from a "path:Name" reference
func contractDisplayName(contractRef string) string {
	if idx := strings.LastIndex(contractRef, ":"); idx != -1 {
		return contractRef[idx+1:]
	}
	return contractRef
}
