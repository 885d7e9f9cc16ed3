package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
)

// loadFoundryConfig loads and parses foundry.toml.
// Hardhat-only projects have no foundry.toml and get an empty config.
func loadFoundryConfig(projectRoot string) (*config.FoundryConfig, error) {
	// Load .env files first for variable expansion
	envFiles := []string{
		filepath.Join(projectRoot, ".env"),
		filepath.Join(projectRoot, ".env.local"),
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
			}
		}
	}

	cfg := &config.FoundryConfig{}

	foundryPath := filepath.Join(projectRoot, "foundry.toml")
	if _, err := toml.DecodeFile(foundryPath, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to parse foundry.toml: %w", err)
	}

	if cfg.Profile == nil {
		cfg.Profile = make(map[string]config.ProfileConfig)
	}
	if cfg.RpcEndpoints == nil {
		cfg.RpcEndpoints = make(map[string]string)
	}
	if cfg.Etherscan == nil {
		cfg.Etherscan = make(map[string]config.EtherscanConfig)
	}

	cfg.RawRpcEndpoints = make(map[string]string, len(cfg.RpcEndpoints))
	for name, url := range cfg.RpcEndpoints {
		cfg.RawRpcEndpoints[name] = url
		cfg.RpcEndpoints[name] = os.ExpandEnv(url)
	}

	for network, ec := range cfg.Etherscan {
		ec.Key = os.ExpandEnv(ec.Key)
		ec.URL = os.ExpandEnv(ec.URL)
		cfg.Etherscan[network] = ec
	}

	// private_key stays unexpanded so the wallet can name its source
	for name, profile := range cfg.Profile {
		if profile.Deploy != nil {
			profile.Deploy.Keystore = os.ExpandEnv(profile.Deploy.Keystore)
			profile.Deploy.VerifierURL = os.ExpandEnv(profile.Deploy.VerifierURL)
			cfg.Profile[name] = profile
		}
	}

	return cfg, nil
}
