package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
)

const (
	// DataDirName is the per-project directory holding the registry and local overrides
	DataDirName = ".treb-deploy"

	// DefaultPrivateKey is the credential reference used when no profile sets one
	DefaultPrivateKey = "${DEPLOYER_PRIVATE_KEY}" //nolint:gosec // env var reference

	defaultArtifactsDir = "out"
)

// projectMarkers identify the root of a contracts project
var projectMarkers = []string{
	"foundry.toml",
	"hardhat.config.ts",
	"hardhat.config.js",
}

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		DataDir:        filepath.Join(projectRoot, DataDirName),
		Namespace:      v.GetString("namespace"),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non-interactive"),
		JSON:           v.GetBool("json"),
		Timeout:        v.GetDuration("timeout"),
	}

	foundryConfig, err := loadFoundryConfig(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load foundry config: %w", err)
	}
	cfg.FoundryConfig = foundryConfig

	// Namespace maps to a foundry profile; default profile values are the base
	cfg.Deploy = resolveDeployConfig(foundryConfig, cfg.Namespace)
	applyDeployOverrides(&cfg.Deploy, v)

	if networkName := v.GetString("network"); networkName != "" {
		networkResolver := NewNetworkResolver(projectRoot, foundryConfig)
		network, err := networkResolver.Resolve(networkName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve network %s: %w", networkName, err)
		}
		cfg.Network = network
	}

	return cfg, nil
}

// resolveDeployConfig layers [profile.default] and [profile.<namespace>] deploy settings
func resolveDeployConfig(foundryConfig *config.FoundryConfig, namespace string) config.DeployConfig {
	deploy := config.DeployConfig{
		PrivateKey:   DefaultPrivateKey,
		ArtifactsDir: defaultArtifactsDir,
		Verifier:     config.VerifierForge,
	}

	profiles := []string{"default"}
	if namespace != "" && namespace != "default" {
		profiles = append(profiles, namespace)
	}

	for _, name := range profiles {
		profile, ok := foundryConfig.Profile[name]
		if !ok {
			continue
		}
		if profile.OutPath != "" {
			deploy.ArtifactsDir = profile.OutPath
		}
		if profile.SolcVersion != "" && deploy.CompilerVersion == "" {
			deploy.CompilerVersion = profile.SolcVersion
		}
		if profile.Deploy != nil {
			mergeDeployConfig(&deploy, profile.Deploy)
		}
	}

	return deploy
}

// mergeDeployConfig copies every field set in src over dst
func mergeDeployConfig(dst *config.DeployConfig, src *config.DeployConfig) {
	if src.PrivateKey != "" {
		dst.PrivateKey = src.PrivateKey
	}
	if src.Keystore != "" {
		dst.Keystore = src.Keystore
		// A keystore in a more specific profile wins over an inherited key reference
		if src.PrivateKey == "" {
			dst.PrivateKey = ""
		}
	}
	if src.PasswordEnv != "" {
		dst.PasswordEnv = src.PasswordEnv
	}
	if src.ArtifactsDir != "" {
		dst.ArtifactsDir = src.ArtifactsDir
	}
	if src.Verifier != "" {
		dst.Verifier = src.Verifier
	}
	if src.VerifierURL != "" {
		dst.VerifierURL = src.VerifierURL
	}
	if src.ForgeVerifier != "" {
		dst.ForgeVerifier = src.ForgeVerifier
	}
	if src.CompilerVersion != "" {
		dst.CompilerVersion = src.CompilerVersion
	}
	if src.GasLimit != 0 {
		dst.GasLimit = src.GasLimit
	}
}

// applyDeployOverrides applies command line flags and TREB_DEPLOY_* env vars
func applyDeployOverrides(deploy *config.DeployConfig, v *viper.Viper) {
	if envVar := v.GetString("private-key-env"); envVar != "" {
		deploy.PrivateKey = fmt.Sprintf("${%s}", envVar)
		deploy.Keystore = ""
	}
	if verifier := v.GetString("verifier"); verifier != "" {
		deploy.Verifier = config.VerifierKind(strings.ToLower(verifier))
	}
	if url := v.GetString("verifier-url"); url != "" {
		deploy.VerifierURL = url
	}
	if gasLimit := v.GetUint64("gas-limit"); gasLimit != 0 {
		deploy.GasLimit = gasLimit
	}
}

// FindProjectRoot walks up from current directory to find foundry.toml or a hardhat config
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a contracts project (foundry.toml or hardhat.config not found)")
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	v.SetConfigName("config.local")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, DataDirName))

	v.SetEnvPrefix("TREB_DEPLOY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	v.SetDefault("namespace", "default")
	v.SetDefault("timeout", "10m")
	v.SetDefault("debug", false)
	v.SetDefault("non-interactive", false)
	v.SetDefault("project_root", projectRoot)

	// Try to read config file (ignore error if not found)
	_ = v.ReadInConfig()

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		err := v.BindPFlag(f.Name, f)
		if err != nil {
			panic(err)
		}
	})

	return v
}

// ProvideNetworkResolver creates a NetworkResolver for Wire dependency injection
func ProvideNetworkResolver(cfg *config.RuntimeConfig) *NetworkResolver {
	return NewNetworkResolver(cfg.ProjectRoot, cfg.FoundryConfig)
}
