package cli

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-deploy/internal/app"
	"github.com/trebuchet-org/treb-deploy/internal/cli/render"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	var (
		allFlag   bool
		forceFlag bool
		waitFlag  bool
	)

	cmd := &cobra.Command{
		Use:   "verify [deployment-id|address|contract]",
		Short: "Submit recorded deployments for source verification",
		Long: `Submit a recorded deployment for source verification and update its status in
the registry. Without an argument an interactive picker lists the unverified
deployments.`,
		Example: `  treb-deploy verify 300/TestContract/1a2b3c4d          # Verify by record id
  treb-deploy verify TestContract -n zksync-sepolia        # Latest TestContract on a network
  treb-deploy verify 0x1234... --network zksync-sepolia    # Verify by address (requires --network)
  treb-deploy verify --all                                 # Verify every unverified deployment
  treb-deploy verify TestContract --force --wait           # Re-verify and wait for the result`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{progressAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			options := usecase.VerifyOptions{Force: forceFlag, Wait: waitFlag}

			if len(args) == 1 {
				result, err := a.VerifyDeployment.Run(cmd.Context(), args[0], options)
				stopProgress(a)
				if result != nil {
					if renderErr := render.NewVerifyRenderer(cmd.OutOrStdout()).RenderVerifyResult(result); renderErr != nil {
						return renderErr
					}
				}
				return err
			}

			if !allFlag && a.Config.NonInteractive {
				return fmt.Errorf("please provide a deployment identifier or use --all")
			}

			candidates, err := verifyCandidates(cmd, a, forceFlag)
			if err != nil {
				return err
			}

			if !allFlag && len(candidates) > 0 {
				candidates, err = selectDeployments(candidates, "Select deployments to verify")
				if err != nil {
					return err
				}
			}

			outcomes := make([]render.VerifyOutcome, 0, len(candidates))
			for _, dep := range candidates {
				result, err := a.VerifyDeployment.Run(cmd.Context(), dep.ID, options)
				outcomes = append(outcomes, render.VerifyOutcome{Deployment: dep, Result: result, Err: err})
			}
			stopProgress(a)

			if err := render.NewVerifyRenderer(cmd.OutOrStdout()).RenderBatch(outcomes); err != nil {
				return err
			}

			failed := lo.CountBy(outcomes, func(o render.VerifyOutcome) bool { return o.Err != nil })
			if failed > 0 {
				return fmt.Errorf("%d of %d verifications failed", failed, len(outcomes))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&allFlag, "all", false, "Verify every unverified deployment")
	cmd.Flags().BoolVar(&forceFlag, "force", false, "Re-verify even if already verified")
	cmd.Flags().BoolVar(&waitFlag, "wait", false, "Wait until the verifier reports a final status")
	cmd.Flags().String("verifier", "", "Verification backend: forge, explorer or none")
	cmd.Flags().String("verifier-url", "", "Verification API URL")

	return cmd
}

// verifyCandidates lists the records a batch verification should cover
func verifyCandidates(cmd *cobra.Command, a *app.App, force bool) ([]*models.Deployment, error) {
	listed, err := a.ListDeployments.Run(cmd.Context(), usecase.ListDeploymentsParams{})
	if err != nil {
		return nil, err
	}
	stopProgress(a)

	if force {
		return listed.Deployments, nil
	}
	return lo.Filter(listed.Deployments, func(dep *models.Deployment, _ int) bool {
		return !dep.IsVerified()
	}), nil
}
