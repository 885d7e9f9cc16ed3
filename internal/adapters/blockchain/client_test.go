package blockchain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// Copies one byte of runtime code (0x00) and returns it.
const storeOneByte = "0x6001600c60003960016000f300"

// Reverts unconditionally.
const alwaysReverts = "0x60006000fd"

type testChain struct {
	sim    *simulated.Backend
	signer *models.SigningIdentity
	client *Client
}

func newTestChain(t *testing.T, network *config.Network) *testChain {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	from := crypto.PubkeyToAddress(key.PublicKey)

	sim := simulated.NewBackend(types.GenesisAlloc{
		from: {Balance: new(big.Int).Mul(big.NewInt(100), big.NewInt(params.Ether))},
	})

	// WaitMined polls for receipts, so keep producing blocks in the background.
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				sim.Commit()
			}
		}
	}()
	t.Cleanup(func() {
		close(done)
		_ = sim.Close()
	})

	chainID := big.NewInt(1337)
	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	require.NoError(t, err)

	dial := func(context.Context, string) (Backend, error) {
		return sim.Client(), nil
	}

	return &testChain{
		sim:    sim,
		signer: &models.SigningIdentity{Address: from, ChainID: chainID, Source: "test", Opts: opts},
		client: NewClientWithDialer(network, time.Minute, dial, slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
}

func localNetwork() *config.Network {
	return &config.Network{Name: "in-memory-node", ChainID: 1337, RPCURL: "simulated"}
}

func TestClient_EstimateDeployFee(t *testing.T) {
	chain := newTestChain(t, localNetwork())

	estimate, err := chain.client.EstimateDeployFee(context.Background(), chain.signer.Address, hexutil.MustDecode(storeOneByte))
	require.NoError(t, err)

	assert.Greater(t, estimate.Gas, uint64(21000))
	require.NotNil(t, estimate.GasPrice)
	assert.Positive(t, estimate.GasPrice.Sign())
	assert.Equal(t, new(big.Int).Mul(new(big.Int).SetUint64(estimate.Gas), estimate.GasPrice), estimate.Fee)
	assert.NotEqual(t, "0.0", estimate.Ether())
}

func TestClient_Deploy(t *testing.T) {
	chain := newTestChain(t, localNetwork())
	ctx := context.Background()

	first, err := chain.client.Deploy(ctx, chain.signer, usecase.DeployRequest{Bytecode: hexutil.MustDecode(storeOneByte)})
	require.NoError(t, err)

	assert.NotEqual(t, common.Address{}, first.Address)
	assert.NotEqual(t, common.Hash{}, first.TransactionHash)
	assert.Positive(t, first.BlockNumber)
	assert.Positive(t, first.GasUsed)
	assert.Equal(t, "0x", first.EncodedConstructorArgs())

	code, err := chain.sim.Client().CodeAt(ctx, first.Address, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, code)

	second, err := chain.client.Deploy(ctx, chain.signer, usecase.DeployRequest{Bytecode: hexutil.MustDecode(storeOneByte)})
	require.NoError(t, err)
	assert.NotEqual(t, first.Address, second.Address)
	assert.Equal(t, crypto.CreateAddress(chain.signer.Address, 1), second.Address)
}

func TestClient_DeployWithConstructorArgs(t *testing.T) {
	chain := newTestChain(t, localNetwork())

	args := common.LeftPadBytes([]byte{0x2a}, 32)
	deployed, err := chain.client.Deploy(context.Background(), chain.signer, usecase.DeployRequest{
		Bytecode:        hexutil.MustDecode(storeOneByte),
		ConstructorArgs: args,
	})
	require.NoError(t, err)

	tx, _, err := chain.sim.Client().TransactionByHash(context.Background(), deployed.TransactionHash)
	require.NoError(t, err)
	assert.Equal(t, append(hexutil.MustDecode(storeOneByte), args...), tx.Data())
	assert.Equal(t, hexutil.Encode(args), deployed.EncodedConstructorArgs())
}

func TestClient_DeployReverted(t *testing.T) {
	chain := newTestChain(t, localNetwork())

	_, err := chain.client.Deploy(context.Background(), chain.signer, usecase.DeployRequest{
		Bytecode: hexutil.MustDecode(alwaysReverts),
		GasLimit: 100_000,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDeploymentReverted)

	var reverted *domain.DeploymentRevertedError
	require.ErrorAs(t, err, &reverted)
	assert.NotEmpty(t, reverted.TxHash)
	assert.Positive(t, reverted.BlockNumber)
}

func TestClient_Connect(t *testing.T) {
	t.Run("chain id mismatch", func(t *testing.T) {
		chain := newTestChain(t, &config.Network{Name: "zksync-sepolia", ChainID: 300, RPCURL: "simulated"})

		_, err := chain.client.EstimateDeployFee(context.Background(), chain.signer.Address, hexutil.MustDecode(storeOneByte))
		assert.ErrorIs(t, err, domain.ErrNetworkMismatch)
		assert.Contains(t, err.Error(), "RPC reports 1337")
	})

	t.Run("no network", func(t *testing.T) {
		client := NewClient(&config.RuntimeConfig{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

		_, err := client.EstimateDeployFee(context.Background(), common.Address{}, nil)
		assert.ErrorIs(t, err, domain.ErrNetworkRequired)
	})

	t.Run("dial failure", func(t *testing.T) {
		dialErr := errors.New("connection refused")
		client := NewClientWithDialer(localNetwork(), 0, func(context.Context, string) (Backend, error) {
			return nil, dialErr
		}, slog.New(slog.NewTextHandler(io.Discard, nil)))

		_, err := client.EstimateDeployFee(context.Background(), common.Address{}, nil)
		assert.ErrorIs(t, err, dialErr)
		assert.Contains(t, err.Error(), "failed to connect to RPC")
	})

	t.Run("dials once", func(t *testing.T) {
		chain := newTestChain(t, localNetwork())
		calls := 0
		inner := chain.client.dial
		chain.client.dial = func(ctx context.Context, url string) (Backend, error) {
			calls++
			return inner(ctx, url)
		}

		for range 2 {
			_, err := chain.client.EstimateDeployFee(context.Background(), chain.signer.Address, hexutil.MustDecode(storeOneByte))
			require.NoError(t, err)
		}
		assert.Equal(t, 1, calls)
	})
}
