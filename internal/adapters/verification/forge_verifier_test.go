package verification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

var testAddress = common.HexToAddress("0x111C3E89Ce80e62EE88318C2804920D4c96f92bb")

func testRequest() usecase.VerificationRequest {
	return usecase.VerificationRequest{
		Address:            testAddress,
		FullyQualifiedName: "contracts/zkSync.sol:TestContract",
		Network:            &config.Network{Name: "zksync-sepolia", ChainID: 300, ExplorerURL: "https://sepolia.explorer.zksync.io"},
		CompilerVersion:    "0.8.24",
	}
}

type fakeRunner struct {
	output []byte
	err    error
	dir    string
	name   string
	args   []string
}

func (f *fakeRunner) run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	f.dir, f.name, f.args = dir, name, args
	return f.output, f.err
}

func newTestForgeVerifier(deploy config.DeployConfig, runner *fakeRunner) *ForgeVerifier {
	v := NewForgeVerifier(&config.RuntimeConfig{ProjectRoot: "/project", Deploy: deploy}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	v.run = runner.run
	return v
}

func TestForgeVerifier_BuildArgs(t *testing.T) {
	v := newTestForgeVerifier(config.DeployConfig{
		ForgeVerifier: "zksync",
		VerifierURL:   "https://explorer.sepolia.era.zksync.dev/contract_verification",
	}, &fakeRunner{})

	req := testRequest()
	req.ConstructorArgs = common.LeftPadBytes([]byte{0x2a}, 32)
	req.Network.APIKey = "KEY"

	args := v.buildVerifyArgs(req)
	assert.Equal(t, []string{
		"verify-contract",
		testAddress.Hex(),
		"contracts/zkSync.sol:TestContract",
		"--chain-id", "300",
		"--watch",
		"--verifier", "zksync",
		"--zksync",
		"--verifier-url", "https://explorer.sepolia.era.zksync.dev/contract_verification",
		"--etherscan-api-key", "KEY",
		"--compiler-version", "0.8.24",
		"--constructor-args", "000000000000000000000000000000000000000000000000000000000000002a",
	}, args)

	assert.Contains(t, v.DumpVerifyCommand(req), "forge verify-contract "+testAddress.Hex())
}

func TestForgeVerifier_Verify(t *testing.T) {
	tests := []struct {
		name       string
		output     string
		err        error
		wantID     string
		wantURL    string
		wantStatus models.VerificationStatus
		wantErr    error
		errMessage string
	}{
		{
			name: "etherscan guid with watch",
			output: "Start verifying contract `0x111C3E89Ce80e62EE88318C2804920D4c96f92bb` deployed on zksync-sepolia\n\n" +
				"Submitting verification for [contracts/zkSync.sol:TestContract] 0x111C3E89Ce80e62EE88318C2804920D4c96f92bb.\n" +
				"Submitted contract for verification:\n\tResponse: `OK`\n\tGUID: `wqbkz1xw3cxbmm8vwbqefnyfxhkjfufhx1cqhkcwmvu1xnq8fk`\n" +
				"\tURL: https://sepolia.explorer.zksync.io/address/0x111c3e89ce80e62ee88318c2804920d4c96f92bb\n" +
				"Contract verification status:\nResponse: `OK`\nDetails: `Pass - Verified`\nContract successfully verified\n",
			wantID:     "wqbkz1xw3cxbmm8vwbqefnyfxhkjfufhx1cqhkcwmvu1xnq8fk",
			wantURL:    "https://sepolia.explorer.zksync.io/address/0x111c3e89ce80e62ee88318c2804920d4c96f92bb",
			wantStatus: models.VerificationStatusVerified,
		},
		{
			name:       "zksync verification id",
			output:     "Verification submitted successfully. Verification ID: 28513\nContract successfully verified\n",
			wantID:     "28513",
			wantStatus: models.VerificationStatusVerified,
		},
		{
			name:       "submitted without final status",
			output:     "Submitted contract for verification:\n\tGUID: `abc-123`\n",
			wantID:     "abc-123",
			wantStatus: models.VerificationStatusSubmitted,
		},
		{
			name:       "already verified exits non-zero",
			output:     "Contract [contracts/zkSync.sol:TestContract] \"0x111C...\" is already verified. Skipping verification.",
			err:        errors.New("exit status 1"),
			wantID:     "already-verified",
			wantStatus: models.VerificationStatusVerified,
		},
		{
			name:       "rejected",
			output:     "Error: Verification failed\nFail - Unable to verify. Compiled contract deployment bytecode does NOT match",
			err:        errors.New("exit status 1"),
			wantErr:    domain.ErrVerificationFailed,
			errMessage: "Compiled contract deployment bytecode does NOT match",
		},
		{
			name:       "forge missing",
			err:        errors.New(`exec: "forge": executable file not found in $PATH`),
			errMessage: "failed to run forge verify-contract",
		},
		{
			name:       "unclear output",
			output:     "something unexpected",
			wantErr:    domain.ErrVerificationFailed,
			errMessage: "verification status unclear",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{output: []byte(tt.output), err: tt.err}
			v := newTestForgeVerifier(config.DeployConfig{}, runner)

			result, err := v.Verify(context.Background(), testRequest())

			assert.Equal(t, "/project", runner.dir)
			assert.Equal(t, "forge", runner.name)

			if tt.errMessage != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMessage)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "forge", result.Verifier)
			assert.Equal(t, tt.wantID, result.VerificationID)
			assert.Equal(t, tt.wantStatus, result.Status)
			if tt.wantURL != "" {
				assert.Equal(t, tt.wantURL, result.URL)
			}
		})
	}
}
