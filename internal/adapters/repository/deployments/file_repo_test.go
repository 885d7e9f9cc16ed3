package deployments

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
)

func testDeployment(chainID uint64, name, address string) *models.Deployment {
	return &models.Deployment{
		Network:         "zksync-sepolia",
		ChainID:         chainID,
		ContractName:    name,
		Address:         address,
		TransactionHash: "0x9a1e6b0c6f0f3f7a3d3a1c2e5b4f6a7d8c9b0a1f2e3d4c5b6a7f8e9d0c1b2a3f",
		BlockNumber:     42,
		Deployer:        "0x36615Cf349d7F6344891B1e7CA7C72883F5dc049",
		Artifact: models.ArtifactInfo{
			FullyQualifiedName: "contracts/zkSync.sol:" + name,
			Path:               "artifacts/contracts/zkSync.sol/" + name + ".json",
		},
		Verification: models.VerificationInfo{Status: models.VerificationStatusUnverified},
	}
}

func TestFileRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("save assigns id and timestamps", func(t *testing.T) {
		repo, err := NewFileRepository(t.TempDir())
		require.NoError(t, err)

		dep := testDeployment(300, "TestContract", "0x111C3E89Ce80e62EE88318C2804920D4c96f92bb")
		require.NoError(t, repo.SaveDeployment(ctx, dep))

		assert.Regexp(t, regexp.MustCompile(`^300/TestContract/[0-9a-f]{8}$`), dep.ID)
		assert.False(t, dep.CreatedAt.IsZero())
		assert.Equal(t, dep.CreatedAt, dep.UpdatedAt)

		got, err := repo.GetDeployment(ctx, dep.ID)
		require.NoError(t, err)
		assert.Equal(t, dep.Address, got.Address)
		assert.Equal(t, "contracts/zkSync.sol:TestContract", got.Artifact.FullyQualifiedName)
	})

	t.Run("persists across instances", func(t *testing.T) {
		dir := t.TempDir()
		repo, err := NewFileRepository(dir)
		require.NoError(t, err)

		dep := testDeployment(300, "TestContract", "0x111C3E89Ce80e62EE88318C2804920D4c96f92bb")
		require.NoError(t, repo.SaveDeployment(ctx, dep))

		assert.FileExists(t, filepath.Join(dir, DeploymentsFile))
		assert.NoFileExists(t, filepath.Join(dir, DeploymentsFile+".tmp"))

		reopened, err := NewFileRepository(dir)
		require.NoError(t, err)

		got, err := reopened.GetDeploymentByAddress(ctx, 300, dep.Address)
		require.NoError(t, err)
		assert.Equal(t, dep.ID, got.ID)
		assert.Equal(t, uint64(42), got.BlockNumber)
	})

	t.Run("update keeps created at", func(t *testing.T) {
		repo, err := NewFileRepository(t.TempDir())
		require.NoError(t, err)

		created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		repo.now = func() time.Time { return created }

		dep := testDeployment(300, "TestContract", "0x111C3E89Ce80e62EE88318C2804920D4c96f92bb")
		require.NoError(t, repo.SaveDeployment(ctx, dep))

		repo.now = func() time.Time { return created.Add(time.Minute) }
		dep.Verification = models.VerificationInfo{
			Status:         models.VerificationStatusVerified,
			Verifier:       "explorer",
			VerificationID: "1234",
		}
		require.NoError(t, repo.SaveDeployment(ctx, dep))

		got, err := repo.GetDeployment(ctx, dep.ID)
		require.NoError(t, err)
		assert.True(t, got.IsVerified())
		assert.Equal(t, "1234", got.Verification.VerificationID)
		assert.Equal(t, created, got.CreatedAt)
		assert.Equal(t, created.Add(time.Minute), got.UpdatedAt)

		all, err := repo.ListDeployments(ctx, domain.DeploymentFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("returned records are copies", func(t *testing.T) {
		repo, err := NewFileRepository(t.TempDir())
		require.NoError(t, err)

		dep := testDeployment(300, "TestContract", "0x111C3E89Ce80e62EE88318C2804920D4c96f92bb")
		require.NoError(t, repo.SaveDeployment(ctx, dep))

		dep.Address = "0x0000000000000000000000000000000000000001"
		got, err := repo.GetDeployment(ctx, dep.ID)
		require.NoError(t, err)
		assert.Equal(t, "0x111C3E89Ce80e62EE88318C2804920D4c96f92bb", got.Address)
	})

	t.Run("lookup by address is case insensitive", func(t *testing.T) {
		repo, err := NewFileRepository(t.TempDir())
		require.NoError(t, err)

		dep := testDeployment(300, "TestContract", "0x111C3E89Ce80e62EE88318C2804920D4c96f92bb")
		require.NoError(t, repo.SaveDeployment(ctx, dep))

		got, err := repo.GetDeploymentByAddress(ctx, 300, "0x111c3e89ce80e62ee88318c2804920d4c96f92bb")
		require.NoError(t, err)
		assert.Equal(t, dep.ID, got.ID)

		_, err = repo.GetDeploymentByAddress(ctx, 324, dep.Address)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("missing id", func(t *testing.T) {
		repo, err := NewFileRepository(t.TempDir())
		require.NoError(t, err)

		_, err = repo.GetDeployment(ctx, "300/Missing/deadbeef")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("corrupt file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, DeploymentsFile), []byte("{not json"), 0644))

		_, err := NewFileRepository(dir)
		assert.ErrorContains(t, err, "failed to load registry")
	})
}

func TestFileRepository_ListDeployments(t *testing.T) {
	ctx := context.Background()
	repo, err := NewFileRepository(t.TempDir())
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	first := testDeployment(300, "TestContract", "0x1000000000000000000000000000000000000001")
	second := testDeployment(300, "Greeter", "0x1000000000000000000000000000000000000002")
	second.Verification.Status = models.VerificationStatusVerified
	third := testDeployment(324, "TestContract", "0x1000000000000000000000000000000000000003")
	third.Network = "zksync"

	for _, dep := range []*models.Deployment{first, second, third} {
		require.NoError(t, repo.SaveDeployment(ctx, dep))
	}

	tests := []struct {
		name   string
		filter domain.DeploymentFilter
		want   []string
	}{
		{name: "all oldest first", filter: domain.DeploymentFilter{}, want: []string{first.ID, second.ID, third.ID}},
		{name: "by chain", filter: domain.DeploymentFilter{ChainID: 300}, want: []string{first.ID, second.ID}},
		{name: "by network", filter: domain.DeploymentFilter{Network: "zksync"}, want: []string{third.ID}},
		{name: "by contract", filter: domain.DeploymentFilter{ContractName: "TestContract"}, want: []string{first.ID, third.ID}},
		{name: "by status", filter: domain.DeploymentFilter{Status: models.VerificationStatusVerified}, want: []string{second.ID}},
		{name: "no match", filter: domain.DeploymentFilter{ChainID: 1}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListDeployments(ctx, tt.filter)
			require.NoError(t, err)

			ids := make([]string, 0, len(got))
			for _, dep := range got {
				ids = append(ids, dep.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFileRepository_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := NewFileRepository(dir)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dep := testDeployment(300, "TestContract", "0x100000000000000000000000000000000000000"+string(rune('a'+i%6)))
			assert.NoError(t, repo.SaveDeployment(ctx, dep))
		}(i)
	}
	wg.Wait()

	reopened, err := NewFileRepository(dir)
	require.NoError(t, err)
	all, err := reopened.ListDeployments(ctx, domain.DeploymentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 10)
}

func TestNewFileRepositoryFromConfig(t *testing.T) {
	root := t.TempDir()

	repo, err := NewFileRepositoryFromConfig(&config.RuntimeConfig{ProjectRoot: root})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".treb-deploy", DeploymentsFile), repo.Path())
	assert.DirExists(t, filepath.Join(root, ".treb-deploy"))
}
