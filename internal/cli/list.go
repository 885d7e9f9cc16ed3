package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-deploy/internal/cli/render"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var (
		contractName string
		status       string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List deployments from the registry",
		Long: `List the recorded deployments grouped by chain.

The list can be narrowed to one network with --network, or by contract name and
verification status.`,
		Example: `  # List all deployments
  treb-deploy list

  # List TestContract deployments on zkSync Sepolia
  treb-deploy list --contract TestContract -n zksync-sepolia

  # List deployments whose verification failed
  treb-deploy list --status failed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			verificationStatus, err := parseVerificationStatus(status)
			if err != nil {
				return err
			}

			result, err := app.ListDeployments.Run(cmd.Context(), usecase.ListDeploymentsParams{
				ContractName: contractName,
				Status:       verificationStatus,
			})
			if err != nil {
				return err
			}

			return render.NewDeploymentsRenderer(cmd.OutOrStdout()).RenderDeploymentList(result)
		},
	}

	cmd.Flags().StringVar(&contractName, "contract", "", "Filter by contract name")
	cmd.Flags().StringVar(&status, "status", "", "Filter by verification status (unverified, submitted, verified, failed, skipped)")

	return cmd
}

// parseVerificationStatus accepts a status in any case; empty means no filter
func parseVerificationStatus(s string) (models.VerificationStatus, error) {
	if s == "" {
		return "", nil
	}

	status := models.VerificationStatus(strings.ToUpper(s))
	switch status {
	case models.VerificationStatusUnverified,
		models.VerificationStatusSubmitted,
		models.VerificationStatusVerified,
		models.VerificationStatusFailed,
		models.VerificationStatusSkipped:
		return status, nil
	}
	return "", fmt.Errorf("invalid verification status: %s (valid: unverified, submitted, verified, failed, skipped)", s)
}
