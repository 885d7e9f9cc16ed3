package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/fatih/color"
	"github.com/trebuchet-org/treb-deploy/internal/adapters/abi"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// DeployRenderer prints the summary after the deploy workflow's progress lines
type DeployRenderer struct {
	out io.Writer
}

// NewDeployRenderer creates a new deploy renderer
func NewDeployRenderer(out io.Writer) *DeployRenderer {
	return &DeployRenderer{out: out}
}

// RenderDeployResult renders the recorded deployment. Called with partial results too,
// so a failed verification still shows how to retry it.
func (r *DeployRenderer) RenderDeployResult(result *usecase.DeployResult) error {
	if result == nil || result.Deployment == nil {
		return nil
	}
	deployment := result.Deployment

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Deployed %s", deployment.Artifact.FullyQualifiedName)))
	fmt.Fprintf(r.out, "  Address:      %s\n", color.New(color.FgWhite, color.Bold).Sprint(deployment.Address))
	fmt.Fprintf(r.out, "  Transaction:  %s\n", deployment.TransactionHash)
	fmt.Fprintf(r.out, "  Network:      %s (chain %d)\n", deployment.Network, deployment.ChainID)
	fmt.Fprintf(r.out, "  Verification: %s\n", FormatStatus(deployment.Verification.Status))
	if deployment.ID == "" {
		fmt.Fprintln(r.out, FormatWarning("Deployment record was not saved, keep the address and transaction above"))
		return nil
	}
	fmt.Fprintf(r.out, "  Record:       %s\n", color.New(color.FgCyan).Sprint(deployment.ID))
	if deployment.ConstructorArgs != "" && deployment.ConstructorArgs != "0x" {
		if data, err := hexutil.Decode(deployment.ConstructorArgs); err == nil {
			r.renderConstructorArgs("  Args:         ", result.Contract, data)
		}
	}

	switch deployment.Verification.Status {
	case models.VerificationStatusFailed, models.VerificationStatusUnverified:
		fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("Retry verification with: treb-deploy verify %s", deployment.ID)))
	}
	return nil
}

// RenderEstimate renders a fee estimate without deploying
func (r *DeployRenderer) RenderEstimate(result *usecase.EstimateDeploymentResult) error {
	fmt.Fprintf(r.out, "Contract:  %s\n", result.Contract.FullyQualifiedName())
	fmt.Fprintf(r.out, "Network:   %s (chain %d)\n", result.Network.Name, result.Network.ChainID)
	fmt.Fprintf(r.out, "Deployer:  %s\n", result.Deployer.Hex())
	fmt.Fprintf(r.out, "Gas:       %d\n", result.Fee.Gas)
	fmt.Fprintf(r.out, "Gas price: %s wei\n", result.Fee.GasPrice)
	fmt.Fprintf(r.out, "Fee:       %s\n", color.New(color.FgGreen, color.Bold).Sprintf("%s ETH", result.Fee.Ether()))
	if len(result.ConstructorArgs) > 0 {
		r.renderConstructorArgs("Args:      ", result.Contract, result.ConstructorArgs)
	}
	return nil
}

// renderConstructorArgs prints decoded arguments one per line, or the raw hex when the ABI does not decode them
func (r *DeployRenderer) renderConstructorArgs(label string, contract *models.Contract, data []byte) {
	encoder := abi.NewConstructorEncoder()

	var artifact *models.Artifact
	if contract != nil {
		artifact = contract.Artifact
	}
	contractABI, err := encoder.ParseABI(artifact)
	if err != nil {
		fmt.Fprintf(r.out, "%s%s\n", label, hexutil.Encode(data))
		return
	}
	values, err := encoder.DecodeConstructorArgs(contractABI, data)
	if err != nil || len(values) == 0 {
		fmt.Fprintf(r.out, "%s%s\n", label, hexutil.Encode(data))
		return
	}

	for i, input := range abi.NameValues(contractABI.Constructor.Inputs, values) {
		prefix := label
		if i > 0 {
			prefix = strings.Repeat(" ", len(label))
		}
		name := input.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		fmt.Fprintf(r.out, "%s%s %s = %s\n", prefix, color.New(color.Faint).Sprint(input.Type), name, abi.FormatValue(input.Value))
	}
}
