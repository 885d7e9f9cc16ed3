package blockchain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// Backend is the subset of an RPC client the deployer needs
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

// DialFunc opens a backend for an RPC URL
type DialFunc func(ctx context.Context, rpcURL string) (Backend, error)

func dialEthclient(ctx context.Context, rpcURL string) (Backend, error) {
	return ethclient.DialContext(ctx, rpcURL)
}

// Client estimates and submits contract creations on the selected network.
// The connection is opened on first use and checked against the configured chain id.
type Client struct {
	network *config.Network
	timeout time.Duration
	dial    DialFunc
	log     *slog.Logger

	mu      sync.Mutex
	backend Backend
}

// NewClient creates a client for the network in the runtime config
func NewClient(cfg *config.RuntimeConfig, log *slog.Logger) *Client {
	return &Client{
		network: cfg.Network,
		timeout: cfg.Timeout,
		dial:    dialEthclient,
		log:     log.With("component", "BlockchainClient"),
	}
}

// NewClientWithDialer creates a client that opens its backend with dial
func NewClientWithDialer(network *config.Network, timeout time.Duration, dial DialFunc, log *slog.Logger) *Client {
	return &Client{
		network: network,
		timeout: timeout,
		dial:    dial,
		log:     log.With("component", "BlockchainClient"),
	}
}

// connect dials the RPC and verifies the chain id matches the network
func (c *Client) connect(ctx context.Context) (Backend, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.backend != nil {
		return c.backend, nil
	}
	if c.network == nil {
		return nil, domain.ErrNetworkRequired
	}

	backend, err := c.dial(ctx, c.network.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	if c.network.ChainID != 0 && chainID.Uint64() != c.network.ChainID {
		return nil, fmt.Errorf("%w: %s expects chain %d, RPC reports %d",
			domain.ErrNetworkMismatch, c.network.Name, c.network.ChainID, chainID.Uint64())
	}

	c.log.Debug("connected", "network", c.network.Name, "chainId", chainID.Uint64())
	c.backend = backend
	return backend, nil
}

// EstimateDeployFee estimates gas for the creation transaction and prices it at the current gas price
func (c *Client) EstimateDeployFee(ctx context.Context, from common.Address, creationCode []byte) (*models.FeeEstimate, error) {
	backend, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}

	gas, err := backend.EstimateGas(ctx, ethereum.CallMsg{From: from, Data: creationCode})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}

	gasPrice, err := backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	fee := new(big.Int).Mul(new(big.Int).SetUint64(gas), gasPrice)
	c.log.Debug("estimated deployment", "gas", gas, "gasPrice", gasPrice, "fee", fee)

	return &models.FeeEstimate{Gas: gas, GasPrice: gasPrice, Fee: fee}, nil
}

// Deploy sends the creation transaction and blocks until it is mined
func (c *Client) Deploy(ctx context.Context, signer *models.SigningIdentity, req usecase.DeployRequest) (*models.DeployedContract, error) {
	backend, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	opts := *signer.Opts
	opts.Context = ctx
	if req.GasLimit > 0 {
		opts.GasLimit = req.GasLimit
	}

	// Arguments are already packed, so the creation code goes out as-is.
	code := make([]byte, 0, len(req.Bytecode)+len(req.ConstructorArgs))
	code = append(code, req.Bytecode...)
	code = append(code, req.ConstructorArgs...)

	address, tx, _, err := bind.DeployContract(&opts, abi.ABI{}, code, backend)
	if err != nil {
		return nil, fmt.Errorf("failed to send deployment transaction: %w", err)
	}
	c.log.Debug("deployment sent", "tx", tx.Hash().Hex(), "nonce", tx.Nonce(), "gas", tx.Gas())

	receipt, err := bind.WaitMined(ctx, backend, tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for transaction %s: %w", tx.Hash().Hex(), err)
	}

	if receipt.Status == types.ReceiptStatusFailed {
		return nil, &domain.DeploymentRevertedError{
			TxHash:      tx.Hash().Hex(),
			BlockNumber: receipt.BlockNumber.Uint64(),
			GasUsed:     receipt.GasUsed,
		}
	}

	// zkSync derives creation addresses differently, the receipt is authoritative.
	if receipt.ContractAddress != (common.Address{}) {
		address = receipt.ContractAddress
	}

	return &models.DeployedContract{
		Address:         address,
		TransactionHash: tx.Hash(),
		BlockNumber:     receipt.BlockNumber.Uint64(),
		GasUsed:         receipt.GasUsed,
		ConstructorArgs: req.ConstructorArgs,
		ABI:             req.ABI,
	}, nil
}

var (
	_ usecase.FeeEstimator     = (*Client)(nil)
	_ usecase.ContractDeployer = (*Client)(nil)
)
