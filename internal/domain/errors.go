package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")

	// ErrNetworkMismatch is returned when network configurations don't match
	ErrNetworkMismatch = errors.New("network mismatch")

	// ErrNetworkRequired is returned when a command needs --network and none was given
	ErrNetworkRequired = errors.New("network not specified, use --network")

	// ErrInvalidCredential is returned when a signing identity cannot be constructed
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrContractNotFound is returned when a contract can't be found
	ErrContractNotFound = errors.New("contract not found")

	// ErrUnsupportedArtifact is returned for artifacts that cannot be deployed with an EVM creation transaction
	ErrUnsupportedArtifact = errors.New("unsupported artifact")

	// ErrConstructorArgs is returned when constructor arguments don't match the ABI
	ErrConstructorArgs = errors.New("invalid constructor arguments")

	// ErrDeploymentReverted is returned when the creation transaction was mined with status 0
	ErrDeploymentReverted = errors.New("deployment reverted")

	// ErrVerificationFailed is returned when contract verification fails
	ErrVerificationFailed = errors.New("verification failed")

	// ErrAborted is returned when the user declines a confirmation prompt
	ErrAborted = errors.New("aborted by user")
)

// Step names a stage of the deploy workflow.
type Step string

const (
	StepSigner   Step = "signer"
	StepArtifact Step = "artifact"
	StepEstimate Step = "estimate"
	StepDeploy   Step = "deploy"
	StepRecord   Step = "record"
	StepVerify   Step = "verify"
)

// StepError attaches the failing workflow step to an error.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// FailedStep returns the workflow step an error originated from, if any.
func FailedStep(err error) (Step, bool) {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step, true
	}
	return "", false
}

// CredentialError is returned when the signing identity can't be built from the
// configured credential.
type CredentialError struct {
	Source string // e.g. "env:DEPLOYER_PRIVATE_KEY" or "keystore:/path"
	Err    error
}

func (e *CredentialError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid credential from %s", e.Source)
	}
	return fmt.Sprintf("invalid credential from %s: %v", e.Source, e.Err)
}

func (e *CredentialError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidCredential}
	}
	return []error{ErrInvalidCredential, e.Err}
}

// ArtifactNotFoundError is returned when no compiled artifact matches a reference.
type ArtifactNotFoundError struct {
	Reference   string
	Suggestions []string
}

func (e *ArtifactNotFoundError) Error() string {
	msg := fmt.Sprintf("no compiled artifact found for %q", e.Reference)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e *ArtifactNotFoundError) Unwrap() error { return ErrContractNotFound }

// AmbiguousArtifactError is returned when a bare contract name matches several sources.
type AmbiguousArtifactError struct {
	Reference string
	Matches   []string // fully-qualified names
}

func (e AmbiguousArtifactError) Error() string {
	sorted := make([]string, len(e.Matches))
	copy(sorted, e.Matches)
	sort.Strings(sorted)

	var suggestions []string
	for _, match := range sorted {
		suggestions = append(suggestions, "  - "+match)
	}

	return fmt.Sprintf("multiple contracts found matching %s - use full path:contract format to disambiguate:\n%s",
		e.Reference, strings.Join(suggestions, "\n"))
}

func (e AmbiguousArtifactError) Unwrap() error { return ErrContractNotFound }

// DeploymentRevertedError is returned when the creation transaction was included but failed.
type DeploymentRevertedError struct {
	TxHash      string
	BlockNumber uint64
	GasUsed     uint64
}

func (e *DeploymentRevertedError) Error() string {
	return fmt.Sprintf("deployment transaction %s reverted in block %d (gas used %d)", e.TxHash, e.BlockNumber, e.GasUsed)
}

func (e *DeploymentRevertedError) Unwrap() error { return ErrDeploymentReverted }

// VerificationRejectedError is returned when a verification backend refuses a request.
type VerificationRejectedError struct {
	Verifier string
	Reason   string
}

func (e *VerificationRejectedError) Error() string {
	return fmt.Sprintf("%s rejected verification: %s", e.Verifier, e.Reason)
}

func (e *VerificationRejectedError) Unwrap() error { return ErrVerificationFailed }
