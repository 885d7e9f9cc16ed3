package config

import (
	"regexp"
	"strings"
)

// envRefPattern matches a value that is exactly ${VAR_NAME}
var envRefPattern = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)\}$`)

// EnvReference returns the variable named by a "${VAR}" value.
// Values with any other text around the reference are not references.
func EnvReference(value string) (string, bool) {
	matches := envRefPattern.FindStringSubmatch(strings.TrimSpace(value))
	if len(matches) != 2 {
		return "", false
	}
	return matches[1], true
}

// rpcEnvVar names the variable that should hold a network's RPC URL:
// the one foundry.toml references, or <NETWORK>_RPC_URL.
func rpcEnvVar(networkName, rawEndpoint string) string {
	if name, ok := EnvReference(rawEndpoint); ok {
		return name
	}
	name := strings.NewReplacer("-", "_", ".", "_").Replace(strings.ToUpper(networkName))
	return name + "_RPC_URL"
}
