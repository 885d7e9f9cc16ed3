package verification

import (
	"context"
	"fmt"

	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// Router dispatches verification to the backend selected by deploy.verifier
type Router struct {
	kind     config.VerifierKind
	forge    usecase.ContractVerifier
	explorer usecase.ContractVerifier
}

// NewRouter creates a router over the forge and explorer verifiers
func NewRouter(cfg *config.RuntimeConfig, forge *ForgeVerifier, explorer *ExplorerVerifier) *Router {
	return &Router{
		kind:     cfg.Deploy.Verifier,
		forge:    forge,
		explorer: explorer,
	}
}

// Verify hands the request to the configured backend
func (r *Router) Verify(ctx context.Context, req usecase.VerificationRequest) (*usecase.VerificationResult, error) {
	switch r.kind {
	case config.VerifierForge, "":
		return r.forge.Verify(ctx, req)
	case config.VerifierExplorer:
		return r.explorer.Verify(ctx, req)
	case config.VerifierNone:
		return nil, fmt.Errorf("verification is disabled (deploy.verifier = %q)", r.kind)
	default:
		return nil, fmt.Errorf("unknown verifier %q, expected forge, explorer or none", r.kind)
	}
}

var _ usecase.ContractVerifier = (*Router)(nil)
