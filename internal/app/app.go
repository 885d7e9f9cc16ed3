package app

import (
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig

	// Shared dependencies
	Progress  usecase.ProgressSink
	Artifacts usecase.ArtifactRepository
	Builder   usecase.ContractBuilder

	// Use cases
	DeployContract     *usecase.DeployContract
	EstimateDeployment *usecase.EstimateDeployment
	VerifyDeployment   *usecase.VerifyDeployment
	ListDeployments    *usecase.ListDeployments
	ShowDeployment     *usecase.ShowDeployment
	ListNetworks       *usecase.ListNetworks
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	progress usecase.ProgressSink,
	artifacts usecase.ArtifactRepository,
	builder usecase.ContractBuilder,
	deployContract *usecase.DeployContract,
	estimateDeployment *usecase.EstimateDeployment,
	verifyDeployment *usecase.VerifyDeployment,
	listDeployments *usecase.ListDeployments,
	showDeployment *usecase.ShowDeployment,
	listNetworks *usecase.ListNetworks,
) (*App, error) {
	return &App{
		Config:             cfg,
		Progress:           progress,
		Artifacts:          artifacts,
		Builder:            builder,
		DeployContract:     deployContract,
		EstimateDeployment: estimateDeployment,
		VerifyDeployment:   verifyDeployment,
		ListDeployments:    listDeployments,
		ShowDeployment:     showDeployment,
		ListNetworks:       listNetworks,
	}, nil
}
