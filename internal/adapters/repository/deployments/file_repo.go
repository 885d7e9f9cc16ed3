package deployments

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	internalconfig "github.com/trebuchet-org/treb-deploy/internal/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

const DeploymentsFile = "deployments.json"

// FileRepository stores deployment records in a JSON file under the project data dir
type FileRepository struct {
	dataDir     string
	mu          sync.RWMutex
	deployments map[string]*models.Deployment
	byAddress   map[uint64]map[string]string // chainID -> lowercase address -> id
	now         func() time.Time
}

// NewFileRepository opens the registry in dataDir, creating the directory if needed
func NewFileRepository(dataDir string) (*FileRepository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", dataDir, err)
	}

	m := &FileRepository{
		dataDir:     dataDir,
		deployments: make(map[string]*models.Deployment),
		byAddress:   make(map[uint64]map[string]string),
		now:         time.Now,
	}

	if err := m.load(); err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	return m, nil
}

// NewFileRepositoryFromConfig creates a new FileRepository from RuntimeConfig
func NewFileRepositoryFromConfig(cfg *config.RuntimeConfig) (*FileRepository, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(cfg.ProjectRoot, internalconfig.DataDirName)
	}
	return NewFileRepository(dataDir)
}

// Path returns the registry file location
func (m *FileRepository) Path() string {
	return filepath.Join(m.dataDir, DeploymentsFile)
}

func (m *FileRepository) load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := json.Unmarshal(data, &m.deployments); err != nil {
		return fmt.Errorf("failed to parse %s: %w", m.Path(), err)
	}
	if m.deployments == nil {
		m.deployments = make(map[string]*models.Deployment)
	}

	m.rebuildLookups()
	return nil
}

// save writes the registry atomically. Callers hold the write lock.
func (m *FileRepository) save() error {
	data, err := json.MarshalIndent(m.deployments, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := m.Path() + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmpPath, m.Path())
}

func (m *FileRepository) rebuildLookups() {
	m.byAddress = make(map[uint64]map[string]string)

	for id, dep := range m.deployments {
		if dep.Address == "" {
			continue
		}
		if m.byAddress[dep.ChainID] == nil {
			m.byAddress[dep.ChainID] = make(map[string]string)
		}
		m.byAddress[dep.ChainID][strings.ToLower(dep.Address)] = id
	}
}

// GetDeployment retrieves a deployment by ID
func (m *FileRepository) GetDeployment(ctx context.Context, id string) (*models.Deployment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dep, exists := m.deployments[id]
	if !exists {
		return nil, fmt.Errorf("deployment %s: %w", id, domain.ErrNotFound)
	}

	clone := *dep
	return &clone, nil
}

// GetDeploymentByAddress retrieves a deployment by chain ID and address
func (m *FileRepository) GetDeploymentByAddress(ctx context.Context, chainID uint64, address string) (*models.Deployment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, exists := m.byAddress[chainID][strings.ToLower(address)]
	if !exists {
		return nil, fmt.Errorf("deployment at address %s on chain %d: %w", address, chainID, domain.ErrNotFound)
	}

	dep, exists := m.deployments[id]
	if !exists {
		return nil, domain.ErrNotFound
	}

	clone := *dep
	return &clone, nil
}

// ListDeployments retrieves deployments matching the filter, oldest first
func (m *FileRepository) ListDeployments(ctx context.Context, filter domain.DeploymentFilter) ([]*models.Deployment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*models.Deployment, 0, len(m.deployments))
	for _, dep := range m.deployments {
		if !filter.Matches(dep) {
			continue
		}
		clone := *dep
		result = append(result, &clone)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// SaveDeployment saves or updates a deployment.
// Records without an ID get "<chainId>/<Contract>/<short uuid>".
func (m *FileRepository) SaveDeployment(ctx context.Context, deployment *models.Deployment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if deployment.ID == "" {
		deployment.ID = m.newID(deployment)
	}

	now := m.now()
	if deployment.CreatedAt.IsZero() {
		deployment.CreatedAt = now
	}
	deployment.UpdatedAt = now

	clone := *deployment
	m.deployments[deployment.ID] = &clone
	m.rebuildLookups()

	if err := m.save(); err != nil {
		return fmt.Errorf("failed to save deployments: %w", err)
	}
	return nil
}

func (m *FileRepository) newID(deployment *models.Deployment) string {
	for {
		id := fmt.Sprintf("%d/%s/%s", deployment.ChainID, deployment.ContractName, uuid.NewString()[:8])
		if _, taken := m.deployments[id]; !taken {
			return id
		}
	}
}

var _ usecase.DeploymentRepository = (*FileRepository)(nil)
