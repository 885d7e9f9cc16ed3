package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	internalconfig "github.com/trebuchet-org/treb-deploy/internal/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// Factory builds signing identities from an environment key or an encrypted keystore
type Factory struct {
	projectRoot string
	deploy      config.DeployConfig
	lookupEnv   func(string) (string, bool)
	log         *slog.Logger
}

// NewFactory creates a new wallet factory
func NewFactory(cfg *config.RuntimeConfig, log *slog.Logger) *Factory {
	return &Factory{
		projectRoot: cfg.ProjectRoot,
		deploy:      cfg.Deploy,
		lookupEnv:   os.LookupEnv,
		log:         log.With("component", "WalletFactory"),
	}
}

// NewSigner loads the deployer key and wraps it in a transactor for chainID
func (f *Factory) NewSigner(ctx context.Context, chainID *big.Int) (*models.SigningIdentity, error) {
	key, source, err := f.loadKey()
	if err != nil {
		return nil, err
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, &domain.CredentialError{Source: source, Err: err}
	}
	opts.Context = ctx

	address := crypto.PubkeyToAddress(key.PublicKey)
	f.log.Debug("loaded signer", "address", address.Hex(), "source", source)

	return &models.SigningIdentity{
		Address: address,
		ChainID: chainID,
		Source:  source,
		Opts:    opts,
	}, nil
}

func (f *Factory) loadKey() (*ecdsa.PrivateKey, string, error) {
	if f.deploy.Keystore != "" {
		return f.loadKeystore()
	}

	ref := f.deploy.PrivateKey
	if ref == "" {
		ref = internalconfig.DefaultPrivateKey
	}

	envVar, ok := internalconfig.EnvReference(ref)
	if !ok {
		return nil, "config", &domain.CredentialError{
			Source: "config",
			Err:    fmt.Errorf("deploy.private_key must reference an environment variable, e.g. %s", internalconfig.DefaultPrivateKey),
		}
	}

	source := "env:" + envVar
	value, ok := f.lookupEnv(envVar)
	if !ok || strings.TrimSpace(value) == "" {
		return nil, source, &domain.CredentialError{Source: source, Err: fmt.Errorf("%s is not set", envVar)}
	}

	key, err := parsePrivateKey(value)
	if err != nil {
		return nil, source, &domain.CredentialError{Source: source, Err: err}
	}
	return key, source, nil
}

func (f *Factory) loadKeystore() (*ecdsa.PrivateKey, string, error) {
	path := f.deploy.Keystore
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.projectRoot, path)
	}
	source := "keystore:" + f.deploy.Keystore

	data, err := os.ReadFile(path) //nolint:gosec // configured keystore path
	if err != nil {
		return nil, source, &domain.CredentialError{Source: source, Err: err}
	}

	var password string
	if f.deploy.PasswordEnv != "" {
		value, ok := f.lookupEnv(f.deploy.PasswordEnv)
		if !ok {
			return nil, source, &domain.CredentialError{Source: source, Err: fmt.Errorf("%s is not set", f.deploy.PasswordEnv)}
		}
		password = value
	}

	key, err := keystore.DecryptKey(data, password)
	if err != nil {
		return nil, source, &domain.CredentialError{Source: source, Err: err}
	}
	return key.PrivateKey, source, nil
}

// parsePrivateKey parses a hex private key with or without 0x prefix
func parsePrivateKey(value string) (*ecdsa.PrivateKey, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "0x")
	key, err := crypto.HexToECDSA(value)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

var _ usecase.WalletFactory = (*Factory)(nil)
