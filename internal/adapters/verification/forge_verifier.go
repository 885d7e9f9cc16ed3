package verification

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

var (
	guidPattern           = regexp.MustCompile("GUID:\\s*`?([A-Za-z0-9-]+)`?")
	verificationIDPattern = regexp.MustCompile("(?i)verification id:\\s*`?([A-Za-z0-9-]+)`?")
	urlPattern            = regexp.MustCompile("URL:\\s*`?(https?://[^\\s`]+)`?")
)

// CommandRunner runs an external command in dir and returns its combined output
type CommandRunner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// ForgeVerifier verifies contracts with `forge verify-contract`
type ForgeVerifier struct {
	projectRoot string
	deploy      config.DeployConfig
	run         CommandRunner
	log         *slog.Logger
}

// NewForgeVerifier creates a verifier backed by the forge binary
func NewForgeVerifier(cfg *config.RuntimeConfig, log *slog.Logger) *ForgeVerifier {
	return &ForgeVerifier{
		projectRoot: cfg.ProjectRoot,
		deploy:      cfg.Deploy,
		run:         execRunner,
		log:         log.With("component", "ForgeVerifier"),
	}
}

// Verify runs forge verify-contract and extracts the submission id from its output
func (v *ForgeVerifier) Verify(ctx context.Context, req usecase.VerificationRequest) (*usecase.VerificationResult, error) {
	args := v.buildVerifyArgs(req)
	v.log.Debug("running forge", "command", v.DumpVerifyCommand(req))

	output, err := v.run(ctx, v.projectRoot, "forge", args...)
	out := strings.TrimSpace(string(output))

	result := &usecase.VerificationResult{
		Verifier:       string(config.VerifierForge),
		VerificationID: extract(guidPattern, out),
		URL:            extract(urlPattern, out),
	}
	if result.VerificationID == "" {
		result.VerificationID = extract(verificationIDPattern, out)
	}

	if isAlreadyVerified(out) {
		result.Status = models.VerificationStatusVerified
		if result.VerificationID == "" {
			result.VerificationID = "already-verified"
		}
		return result, nil
	}

	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("forge verify-contract interrupted: %w", ctx.Err())
		}
		if out == "" {
			return nil, fmt.Errorf("failed to run forge verify-contract: %w", err)
		}
		return nil, &domain.VerificationRejectedError{Verifier: result.Verifier, Reason: lastLine(out)}
	}

	switch {
	case strings.Contains(out, "successfully verified"), strings.Contains(out, "Pass - Verified"):
		result.Status = models.VerificationStatusVerified
	case result.VerificationID != "":
		result.Status = models.VerificationStatusSubmitted
	default:
		return nil, &domain.VerificationRejectedError{Verifier: result.Verifier, Reason: "verification status unclear: " + lastLine(out)}
	}

	if result.VerificationID == "" {
		result.VerificationID = result.URL
	}
	return result, nil
}

// buildVerifyArgs builds the forge verify-contract arguments for a request
func (v *ForgeVerifier) buildVerifyArgs(req usecase.VerificationRequest) []string {
	args := []string{
		"verify-contract",
		req.Address.Hex(),
		req.FullyQualifiedName,
		"--chain-id", strconv.FormatUint(req.Network.ChainID, 10),
		"--watch",
	}

	if v.deploy.ForgeVerifier != "" {
		args = append(args, "--verifier", v.deploy.ForgeVerifier)
		if v.deploy.ForgeVerifier == "zksync" {
			args = append(args, "--zksync")
		}
	}
	if v.deploy.VerifierURL != "" {
		args = append(args, "--verifier-url", v.deploy.VerifierURL)
	}
	if req.Network.APIKey != "" {
		args = append(args, "--etherscan-api-key", req.Network.APIKey)
	}
	if req.CompilerVersion != "" {
		args = append(args, "--compiler-version", req.CompilerVersion)
	}
	if len(req.ConstructorArgs) > 0 {
		args = append(args, "--constructor-args", strings.TrimPrefix(hexutil.Encode(req.ConstructorArgs), "0x"))
	}

	return args
}

// DumpVerifyCommand returns the forge command that would be run for a request
func (v *ForgeVerifier) DumpVerifyCommand(req usecase.VerificationRequest) string {
	return "forge " + strings.Join(v.buildVerifyArgs(req), " ")
}

func isAlreadyVerified(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "already verified")
}

func extract(pattern *regexp.Regexp, output string) string {
	if m := pattern.FindStringSubmatch(output); len(m) == 2 {
		return m[1]
	}
	return ""
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return output
}

var _ usecase.ContractVerifier = (*ForgeVerifier)(nil)
