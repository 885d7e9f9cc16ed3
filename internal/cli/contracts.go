package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-deploy/internal/cli/render"
)

// NewContractsCmd creates the contracts command
func NewContractsCmd() *cobra.Command {
	var build bool

	cmd := &cobra.Command{
		Use:   "contracts",
		Short: "List deployable contracts in the build output",
		Long: `List the compiled contracts that can be passed to deploy. Interfaces and abstract
contracts have no bytecode and are left out.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			if build {
				if err := app.Builder.Build(cmd.Context()); err != nil {
					return err
				}
			}

			contracts, err := app.Artifacts.ListContracts(cmd.Context())
			if err != nil {
				return err
			}

			return render.NewContractsRenderer(cmd.OutOrStdout()).RenderContracts(contracts)
		},
	}

	cmd.Flags().BoolVar(&build, "build", false, "Run forge build first")

	return cmd
}
