package config

// Build information, set with -ldflags "-X github.com/trebuchet-org/treb-deploy/internal/config.Version=..."
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
