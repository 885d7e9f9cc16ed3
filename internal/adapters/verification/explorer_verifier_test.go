package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

const testBytecode = "0x6001600c60003960016000f300"

const testBuildInfo = `{
  "id": "%s",
  "solcVersion": "0.8.24",
  "solcLongVersion": "0.8.24+commit.e11b9ed9",
  "input": {
    "language": "Solidity",
    "sources": {"contracts/zkSync.sol": {"content": "contract TestContract {}"}},
    "settings": {"optimizer": {"enabled": true, "runs": 200}}
  },
  "output": {
    "contracts": {
      "contracts/zkSync.sol": {
        "TestContract": {"evm": {"bytecode": {"object": "%s"}}}
      }
    }
  }
}`

func writeBuildInfo(t *testing.T, root, id, bytecode string, modTime time.Time) {
	t.Helper()
	dir := filepath.Join(root, "out", "build-info")
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, id+".json")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(testBuildInfo, id, bytecode)), 0644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func explorerRequest(wait bool) usecase.VerificationRequest {
	req := testRequest()
	req.Bytecode = hexutil.MustDecode(testBytecode)
	req.Wait = wait
	req.Contract = &models.Contract{
		Name:         "TestContract",
		Path:         "contracts/zkSync.sol",
		ArtifactPath: filepath.Join("out", "contracts", "zkSync.sol", "TestContract.json"),
	}
	return req
}

type explorerAPI struct {
	server    *httptest.Server
	submitted atomic.Pointer[verificationRequest]
	polls     atomic.Int32
}

// newExplorerAPI serves the verification API, answering "queued" until pollsUntilFinal polls have happened
func newExplorerAPI(t *testing.T, submitStatus int, submitBody string, pollsUntilFinal int32, final verificationStatus) *explorerAPI {
	t.Helper()
	api := &explorerAPI{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /contract_verification", func(w http.ResponseWriter, r *http.Request) {
		var body verificationRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		api.submitted.Store(&body)
		w.WriteHeader(submitStatus)
		_, _ = w.Write([]byte(submitBody))
	})
	mux.HandleFunc("GET /contract_verification/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "28513" {
			http.NotFound(w, r)
			return
		}
		status := verificationStatus{Status: "queued"}
		if api.polls.Add(1) >= pollsUntilFinal {
			status = final
		}
		_ = json.NewEncoder(w).Encode(status)
	})

	api.server = httptest.NewServer(mux)
	t.Cleanup(api.server.Close)
	return api
}

func newTestExplorerVerifier(root, verifierURL string) *ExplorerVerifier {
	v := NewExplorerVerifier(&config.RuntimeConfig{
		ProjectRoot: root,
		Deploy:      config.DeployConfig{ArtifactsDir: "out", VerifierURL: verifierURL},
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	v.pollInterval = 10 * time.Millisecond
	return v
}

func TestExplorerVerifier_Submit(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	writeBuildInfo(t, root, "matching", testBytecode, now.Add(-time.Hour))
	writeBuildInfo(t, root, "stale", "0xdeadbeef", now)

	api := newExplorerAPI(t, http.StatusOK, "28513", 1, verificationStatus{Status: "successful"})
	v := newTestExplorerVerifier(root, api.server.URL)

	result, err := v.Verify(context.Background(), explorerRequest(false))
	require.NoError(t, err)

	assert.Equal(t, "explorer", result.Verifier)
	assert.Equal(t, "28513", result.VerificationID)
	assert.Equal(t, models.VerificationStatusSubmitted, result.Status)
	assert.Equal(t, "https://sepolia.explorer.zksync.io/address/"+testAddress.Hex()+"#contract", result.URL)
	assert.Zero(t, api.polls.Load())

	body := api.submitted.Load()
	require.NotNil(t, body)
	assert.Equal(t, testAddress.Hex(), body.ContractAddress)
	assert.Equal(t, "contracts/zkSync.sol:TestContract", body.ContractName)
	assert.Equal(t, "solidity-standard-json-input", body.CodeFormat)
	assert.Equal(t, "0.8.24", body.CompilerSolcVersion)
	assert.True(t, body.OptimizationUsed)
	assert.Equal(t, "0x", body.ConstructorArguments)
	assert.Contains(t, string(body.SourceCode), "contract TestContract {}")
}

func TestExplorerVerifier_Wait(t *testing.T) {
	root := t.TempDir()
	writeBuildInfo(t, root, "matching", testBytecode, time.Now())

	t.Run("successful after polling", func(t *testing.T) {
		api := newExplorerAPI(t, http.StatusOK, "28513\n", 3, verificationStatus{Status: "successful"})
		v := newTestExplorerVerifier(root, api.server.URL+"/contract_verification")

		result, err := v.Verify(context.Background(), explorerRequest(true))
		require.NoError(t, err)
		assert.Equal(t, models.VerificationStatusVerified, result.Status)
		assert.Equal(t, "28513", result.VerificationID)
		assert.Equal(t, int32(3), api.polls.Load())
	})

	t.Run("failed with compilation errors", func(t *testing.T) {
		api := newExplorerAPI(t, http.StatusOK, "28513", 1, verificationStatus{
			Status:            "failed",
			Error:             "Compilation error",
			CompilationErrors: []string{"ParserError: Expected ';'"},
		})
		v := newTestExplorerVerifier(root, api.server.URL)

		_, err := v.Verify(context.Background(), explorerRequest(true))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrVerificationFailed)

		var rejected *domain.VerificationRejectedError
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, "ParserError: Expected ';'", rejected.Reason)
	})

	t.Run("context cancelled while queued", func(t *testing.T) {
		api := newExplorerAPI(t, http.StatusOK, "28513", 1000, verificationStatus{Status: "successful"})
		v := newTestExplorerVerifier(root, api.server.URL)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := v.Verify(ctx, explorerRequest(true))
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestExplorerVerifier_Errors(t *testing.T) {
	root := t.TempDir()
	writeBuildInfo(t, root, "matching", testBytecode, time.Now())

	t.Run("client error is a rejection", func(t *testing.T) {
		api := newExplorerAPI(t, http.StatusBadRequest, `{"message":"Contract is already verified"}`, 1, verificationStatus{})
		v := newTestExplorerVerifier(root, api.server.URL)

		_, err := v.Verify(context.Background(), explorerRequest(false))
		assert.ErrorIs(t, err, domain.ErrVerificationFailed)
		assert.Contains(t, err.Error(), "Contract is already verified")
	})

	t.Run("server error is not a rejection", func(t *testing.T) {
		api := newExplorerAPI(t, http.StatusBadGateway, "bad gateway", 1, verificationStatus{})
		v := newTestExplorerVerifier(root, api.server.URL)

		_, err := v.Verify(context.Background(), explorerRequest(false))
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrVerificationFailed)
		assert.Contains(t, err.Error(), "status 502")
	})

	t.Run("no verifier url for chain", func(t *testing.T) {
		v := newTestExplorerVerifier(root, "")
		req := explorerRequest(false)
		req.Network = &config.Network{Name: "in-memory-node", ChainID: 260}

		_, err := v.Verify(context.Background(), req)
		assert.ErrorContains(t, err, "no verifier URL configured for network in-memory-node")
	})

	t.Run("no build info", func(t *testing.T) {
		v := newTestExplorerVerifier(t.TempDir(), "http://127.0.0.1:1")

		_, err := v.Verify(context.Background(), explorerRequest(false))
		assert.ErrorContains(t, err, "no build-info files found")
	})
}

func TestExplorerVerifier_Endpoint(t *testing.T) {
	tests := []struct {
		name        string
		verifierURL string
		chainID     uint64
		want        string
	}{
		{name: "base url", verifierURL: "https://explorer.example", chainID: 1, want: "https://explorer.example/contract_verification"},
		{name: "trailing slash", verifierURL: "https://explorer.example/", chainID: 1, want: "https://explorer.example/contract_verification"},
		{name: "full url", verifierURL: "https://explorer.example/contract_verification", chainID: 1, want: "https://explorer.example/contract_verification"},
		{name: "zksync sepolia default", chainID: 300, want: "https://explorer.sepolia.era.zksync.dev/contract_verification"},
		{name: "zksync mainnet default", chainID: 324, want: "https://zksync2-mainnet-explorer.zksync.io/contract_verification"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestExplorerVerifier(t.TempDir(), tt.verifierURL)
			got, err := v.endpoint(&config.Network{Name: "test", ChainID: tt.chainID})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArtifactsRoot(t *testing.T) {
	assert.Equal(t, "out", artifactsRoot(filepath.Join("out", "contracts", "zkSync.sol", "TestContract.json"), "contracts/zkSync.sol"))
	assert.Equal(t, "out", artifactsRoot(filepath.Join("out", "zkSync.sol", "TestContract.json"), "contracts/zkSync.sol"))
	assert.Equal(t, "artifacts", artifactsRoot(filepath.Join("artifacts", "contracts", "zkSync.sol", "TestContract.json"), "contracts/zkSync.sol"))
}
