package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-deploy/internal/cli/render"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		yamlOutput bool
	)

	cmd := &cobra.Command{
		Use:   "show <deployment>",
		Short: "Show detailed deployment information from the registry",
		Long: `Show detailed information about a recorded deployment.

You can specify deployments using:
- Record ID: "300/TestContract/1a2b3c4d"
- Chain/contract: "300/TestContract"
- Contract name: "TestContract" (the latest record, narrowed by --network)
- Contract address: "0x1234..." (requires --network)`,
		Example: `  treb-deploy show 300/TestContract/1a2b3c4d
  treb-deploy show TestContract -n zksync-sepolia --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput && yamlOutput {
				return fmt.Errorf("--json and --yaml are mutually exclusive")
			}

			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			deployment, err := app.ShowDeployment.Run(cmd.Context(), usecase.ShowDeploymentParams{Identifier: args[0]})
			if err != nil {
				return fmt.Errorf("failed to resolve deployment: %w", err)
			}

			format := render.OutputText
			switch {
			case jsonOutput:
				format = render.OutputJSON
			case yamlOutput:
				format = render.OutputYAML
			}

			return render.NewDeploymentRenderer(cmd.OutOrStdout()).Render(deployment, format)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the record as JSON")
	cmd.Flags().BoolVar(&yamlOutput, "yaml", false, "Output the record as YAML")

	return cmd
}
