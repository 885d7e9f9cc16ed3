package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
	"gopkg.in/yaml.v3"
)

// OutputFormat selects how a single deployment is printed
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

// DeploymentRenderer renders detailed information about a single deployment
type DeploymentRenderer struct {
	out io.Writer
}

// NewDeploymentRenderer creates a new deployment renderer
func NewDeploymentRenderer(out io.Writer) *DeploymentRenderer {
	return &DeploymentRenderer{out: out}
}

// Render prints the deployment in the requested format
func (r *DeploymentRenderer) Render(deployment *models.Deployment, format OutputFormat) error {
	switch format {
	case OutputJSON:
		encoder := json.NewEncoder(r.out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(deployment)
	case OutputYAML:
		return r.renderYAML(deployment)
	default:
		return r.RenderDeployment(deployment)
	}
}

// renderYAML goes through the JSON tags so field names match the registry file
func (r *DeploymentRenderer) renderYAML(deployment *models.Deployment) error {
	data, err := json.Marshal(deployment)
	if err != nil {
		return fmt.Errorf("failed to encode deployment: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to encode deployment: %w", err)
	}

	encoder := yaml.NewEncoder(r.out)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(doc)
}

// RenderDeployment renders detailed deployment information
func (r *DeploymentRenderer) RenderDeployment(deployment *models.Deployment) error {
	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "Deployment: %s\n", deployment.ID)
	fmt.Fprintln(r.out, strings.Repeat("=", 80))

	fmt.Fprintln(r.out, "\nBasic Information:")
	fmt.Fprintf(r.out, "  Contract: %s\n", color.New(color.FgYellow).Sprint(deployment.ContractName))
	fmt.Fprintf(r.out, "  Address: %s\n", deployment.Address)
	fmt.Fprintf(r.out, "  Network: %s (chain %d)\n", deployment.Network, deployment.ChainID)
	fmt.Fprintf(r.out, "  Deployer: %s\n", deployment.Deployer)
	if deployment.ConstructorArgs != "" {
		fmt.Fprintf(r.out, "  Constructor Args: %s\n", deployment.ConstructorArgs)
	}

	fmt.Fprintln(r.out, "\nTransaction Information:")
	fmt.Fprintf(r.out, "  Hash: %s\n", deployment.TransactionHash)
	if deployment.BlockNumber > 0 {
		fmt.Fprintf(r.out, "  Block: %d\n", deployment.BlockNumber)
	}
	if deployment.GasUsed > 0 {
		fmt.Fprintf(r.out, "  Gas Used: %d\n", deployment.GasUsed)
	}
	if deployment.EstimatedFeeWei != "" {
		fmt.Fprintf(r.out, "  Estimated Fee: %s wei\n", deployment.EstimatedFeeWei)
	}

	fmt.Fprintln(r.out, "\nArtifact Information:")
	fmt.Fprintf(r.out, "  Source: %s\n", deployment.Artifact.FullyQualifiedName)
	fmt.Fprintf(r.out, "  Path: %s\n", deployment.Artifact.Path)
	if deployment.Artifact.CompilerVersion != "" {
		fmt.Fprintf(r.out, "  Compiler: %s\n", deployment.Artifact.CompilerVersion)
	}
	if deployment.Artifact.BytecodeHash != "" {
		fmt.Fprintf(r.out, "  Bytecode Hash: %s\n", deployment.Artifact.BytecodeHash)
	}

	verification := deployment.Verification
	fmt.Fprintln(r.out, "\nVerification Status:")
	fmt.Fprintf(r.out, "  Status: %s\n", FormatStatus(verification.Status))
	if verification.Verifier != "" {
		fmt.Fprintf(r.out, "  Verifier: %s\n", verification.Verifier)
	}
	if verification.VerificationID != "" {
		fmt.Fprintf(r.out, "  Verification ID: %s\n", verification.VerificationID)
	}
	if verification.URL != "" {
		fmt.Fprintf(r.out, "  URL: %s\n", verification.URL)
	}
	if verification.Reason != "" {
		fmt.Fprintf(r.out, "  Reason: %s\n", verification.Reason)
	}
	if verification.VerifiedAt != nil {
		fmt.Fprintf(r.out, "  Verified At: %s\n", verification.VerifiedAt.Format("2006-01-02 15:04:05"))
	}

	fmt.Fprintln(r.out, "\nTimestamps:")
	fmt.Fprintf(r.out, "  Created: %s\n", deployment.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(r.out, "  Updated: %s\n", deployment.UpdatedAt.Format("2006-01-02 15:04:05"))

	return nil
}
