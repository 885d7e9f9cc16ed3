package models

import (
	"fmt"
	"time"
)

// VerificationStatus represents the verification status
type VerificationStatus string

const (
	VerificationStatusUnverified VerificationStatus = "UNVERIFIED"
	VerificationStatusSubmitted  VerificationStatus = "SUBMITTED"
	VerificationStatusVerified   VerificationStatus = "VERIFIED"
	VerificationStatusFailed     VerificationStatus = "FAILED"
	VerificationStatusSkipped    VerificationStatus = "SKIPPED"
)

// Deployment is the persisted record of a single contract deployment
type Deployment struct {
	// Core identification
	ID           string `json:"id"` // e.g., "324/TestContract/1a2b3c4d"
	Network      string `json:"network"`
	ChainID      uint64 `json:"chainId"`
	ContractName string `json:"contractName"`
	Address      string `json:"address"`

	// Transaction details
	TransactionHash string `json:"transactionHash"`
	BlockNumber     uint64 `json:"blockNumber"`
	GasUsed         uint64 `json:"gasUsed"`
	Deployer        string `json:"deployer"`

	// Deployment inputs
	ConstructorArgs string `json:"constructorArgs,omitempty"` // Hex encoded
	EstimatedFeeWei string `json:"estimatedFeeWei,omitempty"`

	// Contract artifact information
	Artifact ArtifactInfo `json:"artifact"`

	// Verification information
	Verification VerificationInfo `json:"verification"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ArtifactInfo contains contract artifact information
type ArtifactInfo struct {
	FullyQualifiedName string `json:"fullyQualifiedName"` // e.g., "contracts/zkSync.sol:TestContract"
	Path               string `json:"path"`               // artifact file relative to project root
	CompilerVersion    string `json:"compilerVersion,omitempty"`
	BytecodeHash       string `json:"bytecodeHash"`
}

// VerificationInfo contains verification details
type VerificationInfo struct {
	Status         VerificationStatus `json:"status"`
	Verifier       string             `json:"verifier,omitempty"`
	VerificationID string             `json:"verificationId,omitempty"`
	URL            string             `json:"url,omitempty"`
	Reason         string             `json:"reason,omitempty"`
	VerifiedAt     *time.Time         `json:"verifiedAt,omitempty"`
}

// GetDisplayName returns a human-friendly name for the deployment
func (d *Deployment) GetDisplayName() string {
	return fmt.Sprintf("%s@%s", d.ContractName, d.Address)
}

// IsVerified reports whether a verifier accepted the deployment
func (d *Deployment) IsVerified() bool {
	return d.Verification.Status == VerificationStatusVerified
}
