package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

const (
	verificationPath    = "/contract_verification"
	standardJSONFormat  = "solidity-standard-json-input"
	defaultPollInterval = 5 * time.Second
)

// VerificationAPIURLs maps chain IDs to block explorer verification APIs
var VerificationAPIURLs = map[uint64]string{
	324: "https://zksync2-mainnet-explorer.zksync.io",
	300: "https://explorer.sepolia.era.zksync.dev",
}

// verificationRequest is the body accepted by the block explorer verification API
type verificationRequest struct {
	ContractAddress       string          `json:"contractAddress"`
	SourceCode            json.RawMessage `json:"sourceCode"`
	CodeFormat            string          `json:"codeFormat"`
	ContractName          string          `json:"contractName"`
	CompilerSolcVersion   string          `json:"compilerSolcVersion"`
	CompilerZksolcVersion string          `json:"compilerZksolcVersion,omitempty"`
	OptimizationUsed      bool            `json:"optimizationUsed"`
	ConstructorArguments  string          `json:"constructorArguments"`
}

// verificationStatus is the body returned when polling a verification request
type verificationStatus struct {
	Status            string   `json:"status"` // queued, in_progress, successful, failed
	Error             string   `json:"error,omitempty"`
	CompilationErrors []string `json:"compilationErrors,omitempty"`
}

// ExplorerVerifier submits standard JSON input to a block explorer verification API
type ExplorerVerifier struct {
	projectRoot  string
	deploy       config.DeployConfig
	httpClient   *http.Client
	pollInterval time.Duration
	log          *slog.Logger
}

// NewExplorerVerifier creates a verifier that talks to the explorer API over HTTP
func NewExplorerVerifier(cfg *config.RuntimeConfig, log *slog.Logger) *ExplorerVerifier {
	return &ExplorerVerifier{
		projectRoot: cfg.ProjectRoot,
		deploy:      cfg.Deploy,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		pollInterval: defaultPollInterval,
		log:          log.With("component", "ExplorerVerifier"),
	}
}

// Verify submits the contract and, when req.Wait is set, polls until the explorer reaches a final status
func (v *ExplorerVerifier) Verify(ctx context.Context, req usecase.VerificationRequest) (*usecase.VerificationResult, error) {
	endpoint, err := v.endpoint(req.Network)
	if err != nil {
		return nil, err
	}

	body, err := v.buildRequest(req)
	if err != nil {
		return nil, err
	}

	id, err := v.submit(ctx, endpoint, body)
	if err != nil {
		return nil, err
	}

	result := &usecase.VerificationResult{
		Verifier:       string(config.VerifierExplorer),
		VerificationID: id,
		URL:            explorerContractURL(req.Network, req.Address.Hex()),
		Status:         models.VerificationStatusSubmitted,
	}

	if !req.Wait {
		return result, nil
	}

	status, err := v.waitForStatus(ctx, endpoint, id)
	if err != nil {
		return nil, err
	}
	if status.Status == "failed" {
		reason := status.Error
		if len(status.CompilationErrors) > 0 {
			reason = strings.Join(status.CompilationErrors, "; ")
		}
		return nil, &domain.VerificationRejectedError{Verifier: result.Verifier, Reason: reason}
	}

	result.Status = models.VerificationStatusVerified
	return result, nil
}

// endpoint returns the verification API URL ending in /contract_verification
func (v *ExplorerVerifier) endpoint(network *config.Network) (string, error) {
	base := v.deploy.VerifierURL
	if base == "" {
		base = VerificationAPIURLs[network.ChainID]
	}
	if base == "" {
		return "", fmt.Errorf("no verifier URL configured for network %s (chain %d), set deploy.verifier_url or pass --verifier-url",
			network.Name, network.ChainID)
	}

	base = strings.TrimRight(base, "/")
	if !strings.HasSuffix(base, verificationPath) {
		base += verificationPath
	}
	return base, nil
}

func (v *ExplorerVerifier) buildRequest(req usecase.VerificationRequest) (*verificationRequest, error) {
	if req.Contract == nil {
		return nil, fmt.Errorf("no artifact for %s", req.FullyQualifiedName)
	}

	dirs := []string{filepath.Join(v.projectRoot, v.deploy.ArtifactsDir)}
	if req.Contract.ArtifactPath != "" {
		// <artifacts dir>/<source path>/<Name>.json
		dirs = append(dirs, filepath.Join(v.projectRoot, artifactsRoot(req.Contract.ArtifactPath, req.Contract.Path)))
	}

	info, path, exact, err := findBuildInfo(dirs, req.Contract.Path, req.Contract.Name, req.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("failed to locate compiler input for %s: %w", req.FullyQualifiedName, err)
	}
	if !exact {
		v.log.Warn("no build-info matches the deployed bytecode, using the newest one", "contract", req.FullyQualifiedName, "buildInfo", path)
	}
	v.log.Debug("using build-info", "path", path)

	solcVersion := info.SolcLongVersion
	if solcVersion == "" {
		solcVersion = info.SolcVersion
	}
	if solcVersion == "" {
		solcVersion = req.CompilerVersion
	}

	return &verificationRequest{
		ContractAddress:       req.Address.Hex(),
		SourceCode:            info.Input,
		CodeFormat:            standardJSONFormat,
		ContractName:          req.FullyQualifiedName,
		CompilerSolcVersion:   stripCommit(solcVersion),
		CompilerZksolcVersion: info.ZksolcVersion,
		OptimizationUsed:      info.optimizationUsed(),
		ConstructorArguments:  hexutil.Encode(req.ConstructorArgs),
	}, nil
}

// submit posts the request and returns the verification id from the response
func (v *ExplorerVerifier) submit(ctx context.Context, endpoint string, body *verificationRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode verification request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	v.log.Debug("submitting verification", "url", endpoint, "contract", body.ContractName)

	resp, err := v.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to submit verification: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if err := v.checkStatus(resp.StatusCode, respBody); err != nil {
		return "", err
	}

	// The API answers with a bare id, either as a JSON number or a string
	id := strings.Trim(strings.TrimSpace(string(respBody)), `"`)
	if id == "" {
		return "", fmt.Errorf("verification API returned an empty id")
	}
	return id, nil
}

func (v *ExplorerVerifier) getStatus(ctx context.Context, endpoint, id string) (*verificationStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := v.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to get verification status: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if err := v.checkStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	var status verificationStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &status, nil
}

// waitForStatus polls until the request is successful or failed
func (v *ExplorerVerifier) waitForStatus(ctx context.Context, endpoint, id string) (*verificationStatus, error) {
	ticker := time.NewTicker(v.pollInterval)
	defer ticker.Stop()

	for {
		status, err := v.getStatus(ctx, endpoint, id)
		if err != nil {
			return nil, err
		}
		v.log.Debug("verification status", "id", id, "status", status.Status)

		switch status.Status {
		case "successful", "failed":
			return status, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("verification %s still %s: %w", id, status.Status, ctx.Err())
		case <-ticker.C:
		}
	}
}

// checkStatus maps client errors to rejections and server errors to plain failures
func (v *ExplorerVerifier) checkStatus(code int, body []byte) error {
	if code >= 200 && code < 300 {
		return nil
	}

	reason := strings.TrimSpace(string(body))
	var apiErr struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &apiErr) == nil {
		if apiErr.Message != "" {
			reason = apiErr.Message
		} else if apiErr.Error != "" {
			reason = apiErr.Error
		}
	}

	if code >= 400 && code < 500 {
		return &domain.VerificationRejectedError{Verifier: string(config.VerifierExplorer), Reason: reason}
	}
	return fmt.Errorf("API error (status %d): %s", code, reason)
}

// artifactsRoot strips "<source path>/<Name>.json" from an artifact path.
// Foundry flattens the source path to its base name, Hardhat keeps it whole.
func artifactsRoot(artifactPath, sourcePath string) string {
	dir := filepath.Dir(artifactPath)
	for _, suffix := range []string{filepath.FromSlash(sourcePath), filepath.Base(sourcePath)} {
		if strings.HasSuffix(dir, suffix) {
			return filepath.Clean(strings.TrimSuffix(dir, suffix))
		}
	}
	return filepath.Dir(dir)
}

func explorerContractURL(network *config.Network, address string) string {
	if network == nil || network.ExplorerURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/address/%s#contract", strings.TrimRight(network.ExplorerURL, "/"), address)
}

var _ usecase.ContractVerifier = (*ExplorerVerifier)(nil)
