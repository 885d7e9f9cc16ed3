package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/treb-deploy/internal/adapters/progress"
	"github.com/trebuchet-org/treb-deploy/internal/app"
	"github.com/trebuchet-org/treb-deploy/internal/config"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"

	// progressAnnotation marks commands that report workflow progress on stdout
	progressAnnotation = "progress"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "treb-deploy",
		Short: "Deploy and verify compiled contracts on zkSync and EVM networks",
		Long: `treb-deploy deploys a compiled contract artifact with a key from the environment,
waits for the transaction to be included, records the deployment and submits the
contract for source verification.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipsApp(cmd) {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			v := config.SetupViper(projectRoot, cmd)
			// Without a terminal there is no one to answer a prompt
			if !isInteractive(v) {
				v.Set("non-interactive", true)
			}
			sink := newProgressSink(cmd, v)

			appInstance, err := app.InitApp(v, sink)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(withCommandTimeout(ctx, appInstance.Config.Timeout))
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().StringP("namespace", "s", "", "Foundry profile to read settings from (defaults to 'default')")
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network from [rpc_endpoints] (e.g., zksync-sepolia)")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	// Main commands
	for _, cmd := range []*cobra.Command{
		NewDeployCmd(),
		NewEstimateCmd(),
		NewVerifyCmd(),
	} {
		cmd.GroupID = "main"
		rootCmd.AddCommand(cmd)
	}

	// Management commands
	for _, cmd := range []*cobra.Command{
		NewListCmd(),
		NewShowCmd(),
		NewContractsCmd(),
		NewNetworksCmd(),
	} {
		cmd.GroupID = "management"
		rootCmd.AddCommand(cmd)
	}

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// skipsApp reports whether the command runs without a project
func skipsApp(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion":
		return true
	}
	return false
}

// newProgressSink picks the progress reporter for the command
func newProgressSink(cmd *cobra.Command, v *viper.Viper) usecase.ProgressSink {
	if cmd.Annotations[progressAnnotation] != "true" {
		return progress.NewNopSink()
	}
	return progress.NewDeployProgress(cmd.OutOrStdout(), isInteractive(v))
}

// isInteractive reports whether prompts and spinners can be shown
func isInteractive(v *viper.Viper) bool {
	return !v.GetBool("non-interactive") && !isNonInteractiveEnv() && !color.NoColor
}

// isNonInteractiveEnv checks if the environment is non-interactive
func isNonInteractiveEnv() bool {
	return os.Getenv("CI") == "true" || os.Getenv("NO_COLOR") != ""
}

// stopProgress halts a running spinner before the command prints its own output
func stopProgress(a *app.App) {
	if stopper, ok := a.Progress.(interface{ Stop() }); ok {
		stopper.Stop()
	}
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	a, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return a, nil
}

// withCommandTimeout bounds ctx by timeout. Cobra skips post-run hooks when a
// command fails, so the timer is released when parent is done instead.
func withCommandTimeout(parent context.Context, timeout time.Duration) context.Context {
	if timeout <= 0 {
		return parent
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	context.AfterFunc(parent, cancel)
	return ctx
}
