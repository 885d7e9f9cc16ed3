package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-deploy/internal/cli/render"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// NewEstimateCmd creates the estimate command
func NewEstimateCmd() *cobra.Command {
	var constructorArgs []string

	cmd := &cobra.Command{
		Use:   "estimate <contract>",
		Short: "Estimate the fee of deploying a contract",
		Long: `Build the deployer identity, load the artifact and estimate the deployment fee
without sending a transaction.`,
		Example: `  treb-deploy estimate TestContract --network zksync-sepolia`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{progressAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.EstimateDeployment.Run(cmd.Context(), usecase.EstimateDeploymentParams{
				ContractRef: args[0],
				Args:        constructorArgs,
			})
			stopProgress(app)
			if err != nil {
				return err
			}

			return render.NewDeployRenderer(cmd.OutOrStdout()).RenderEstimate(result)
		},
	}

	cmd.Flags().StringArrayVar(&constructorArgs, "arg", nil, "Constructor argument, repeat in declaration order")
	cmd.Flags().String("private-key-env", "", "Environment variable holding the deployer key")

	return cmd
}
