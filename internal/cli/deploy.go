package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-deploy/internal/cli/render"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	var (
		constructorArgs []string
		gasLimit        uint64
		skipVerify      bool
		build           bool
		yes             bool
		wait            bool
	)

	cmd := &cobra.Command{
		Use:   "deploy <contract>",
		Short: "Deploy a compiled contract and verify it",
		Long: `Deploy a compiled contract with the deployer key, wait for the transaction to be
included, record the deployment and submit the source for verification.

The contract can be given by name or as path:Name when several sources define it.
The deployer key is read from DEPLOYER_PRIVATE_KEY unless the profile configures
another variable or a keystore.`,
		Example: `  # Deploy to zkSync Sepolia
  treb-deploy deploy TestContract --network zksync-sepolia

  # Pass constructor arguments and skip verification
  treb-deploy deploy src/Greeter.sol:Greeter -n zksync-sepolia --arg "hello" --skip-verify

  # Compile first and wait for the verifier's final answer
  treb-deploy deploy TestContract -n zksync --build --wait`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{progressAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.DeployContractParams{
				ContractRef: args[0],
				Args:        constructorArgs,
				GasLimit:    gasLimit,
				SkipVerify:  skipVerify,
				Build:       build,
				Yes:         yes,
				Wait:        wait,
			}

			result, err := app.DeployContract.Run(cmd.Context(), params)
			stopProgress(app)

			// A failed verification still returns the recorded deployment
			if renderErr := render.NewDeployRenderer(cmd.OutOrStdout()).RenderDeployResult(result); renderErr != nil {
				return renderErr
			}
			return err
		},
	}

	cmd.Flags().StringArrayVar(&constructorArgs, "arg", nil, "Constructor argument, repeat in declaration order")
	cmd.Flags().Uint64Var(&gasLimit, "gas-limit", 0, "Gas limit for the creation transaction (default: estimated)")
	cmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "Deploy without submitting for verification")
	cmd.Flags().String("verifier", "", "Verification backend: forge, explorer or none")
	cmd.Flags().String("verifier-url", "", "Verification API URL")
	cmd.Flags().String("private-key-env", "", "Environment variable holding the deployer key")
	cmd.Flags().BoolVar(&build, "build", false, "Run forge build before loading the artifact")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the deployment confirmation")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait until the verifier reports a final status")

	return cmd
}
