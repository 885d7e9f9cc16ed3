package adapters

import (
	"github.com/google/wire"
	"github.com/trebuchet-org/treb-deploy/internal/adapters/abi"
	"github.com/trebuchet-org/treb-deploy/internal/adapters/blockchain"
	internalconfig "github.com/trebuchet-org/treb-deploy/internal/adapters/config"
	"github.com/trebuchet-org/treb-deploy/internal/adapters/forge"
	"github.com/trebuchet-org/treb-deploy/internal/adapters/interactive"
	"github.com/trebuchet-org/treb-deploy/internal/adapters/repository/contracts"
	"github.com/trebuchet-org/treb-deploy/internal/adapters/repository/deployments"
	"github.com/trebuchet-org/treb-deploy/internal/adapters/verification"
	"github.com/trebuchet-org/treb-deploy/internal/adapters/wallet"
	"github.com/trebuchet-org/treb-deploy/internal/config"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// RepositorySet provides the artifact and deployment repositories
var RepositorySet = wire.NewSet(
	contracts.NewRepository,
	wire.Bind(new(usecase.ArtifactRepository), new(*contracts.Repository)),

	deployments.NewFileRepositoryFromConfig,
	wire.Bind(new(usecase.DeploymentRepository), new(*deployments.FileRepository)),
)

// WalletSet provides the signer factory
var WalletSet = wire.NewSet(
	wallet.NewFactory,
	wire.Bind(new(usecase.WalletFactory), new(*wallet.Factory)),
)

// ABISet provides constructor argument encoding
var ABISet = wire.NewSet(
	abi.NewConstructorEncoder,
	wire.Bind(new(usecase.ConstructorEncoder), new(*abi.ConstructorEncoder)),
)

// BlockchainSet provides the RPC client used for estimates and deployments
var BlockchainSet = wire.NewSet(
	blockchain.NewClient,
	wire.Bind(new(usecase.FeeEstimator), new(*blockchain.Client)),
	wire.Bind(new(usecase.ContractDeployer), new(*blockchain.Client)),
)

// VerificationSet provides the verifier backends behind a router
var VerificationSet = wire.NewSet(
	verification.NewForgeVerifier,
	verification.NewExplorerVerifier,
	verification.NewRouter,
	wire.Bind(new(usecase.ContractVerifier), new(*verification.Router)),
)

// ForgeSet provides forge-based implementations
var ForgeSet = wire.NewSet(
	forge.NewBuilder,
	wire.Bind(new(usecase.ContractBuilder), new(*forge.Builder)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewPrompter,
	wire.Bind(new(usecase.Confirmer), new(*interactive.Prompter)),
	wire.Bind(new(usecase.ContractSelector), new(*interactive.Prompter)),
)

// ConfigSet provides configuration-based implementations
var ConfigSet = wire.NewSet(
	config.ProvideNetworkResolver,
	internalconfig.NewNetworkResolverAdapter,
	wire.Bind(new(usecase.NetworkResolver), new(*internalconfig.NetworkResolverAdapter)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	RepositorySet,
	WalletSet,
	ABISet,
	BlockchainSet,
	VerificationSet,
	ForgeSet,
	InteractiveSet,
	ConfigSet,
)
