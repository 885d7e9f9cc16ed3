package config

// FoundryConfig represents the parts of foundry.toml this tool reads
type FoundryConfig struct {
	Profile      map[string]ProfileConfig   `toml:"profile"`
	RpcEndpoints map[string]string          `toml:"rpc_endpoints"`
	Etherscan    map[string]EtherscanConfig `toml:"etherscan,omitempty"`

	// RawRpcEndpoints keeps the endpoint values as written, before ${VAR} expansion
	RawRpcEndpoints map[string]string `toml:"-"`
}

// EtherscanConfig represents Etherscan configuration for a network
// This matches Foundry's expected structure
type EtherscanConfig struct {
	Key string `toml:"key,omitempty"` // API key for verification
	URL string `toml:"url,omitempty"` // API URL (for custom explorers)
}

// ProfileConfig represents a profile's foundry configuration
type ProfileConfig struct {
	SrcPath     string        `toml:"src,omitempty"`
	OutPath     string        `toml:"out,omitempty"`
	SolcVersion string        `toml:"solc_version,omitempty"`
	Deploy      *DeployConfig `toml:"deploy,omitempty"`
}

// VerifierKind selects the verification backend
type VerifierKind string

const (
	VerifierForge    VerifierKind = "forge"
	VerifierExplorer VerifierKind = "explorer"
	VerifierNone     VerifierKind = "none"
)

// DeployConfig holds the [profile.<name>.deploy] section
type DeployConfig struct {
	// Signer
	PrivateKey  string `toml:"private_key,omitempty"` //nolint:gosec // holds env var reference, not a literal secret
	Keystore    string `toml:"keystore,omitempty"`
	PasswordEnv string `toml:"password_env,omitempty"`

	// Artifacts
	ArtifactsDir string `toml:"artifacts,omitempty"` // overrides the profile out dir, e.g. "artifacts" for hardhat output

	// Verification
	Verifier        VerifierKind `toml:"verifier,omitempty"`
	VerifierURL     string       `toml:"verifier_url,omitempty"`
	ForgeVerifier   string       `toml:"forge_verifier,omitempty"` // forge --verifier value: etherscan, sourcify, zksync...
	CompilerVersion string       `toml:"compiler_version,omitempty"`

	// Transaction
	GasLimit uint64 `toml:"gas_limit,omitempty"`
}
