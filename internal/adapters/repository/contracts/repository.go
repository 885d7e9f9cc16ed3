package contracts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-deploy/internal/domain"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// maxSuggestions caps the "did you mean" list
const maxSuggestions = 3

// fallbackDirs are tried when the configured artifacts directory does not exist
var fallbackDirs = []string{"out", "artifacts"}

// Repository discovers and indexes compiled contract artifacts
type Repository struct {
	projectRoot   string
	artifactsDir  string
	contracts     map[string]*models.Contract   // key: "path:contractName"
	contractNames map[string][]*models.Contract // key: contract name, value: all contracts with that name
	log           *slog.Logger
	mu            sync.RWMutex
	indexed       bool
}

// NewRepository creates a new artifact repository
func NewRepository(cfg *config.RuntimeConfig, log *slog.Logger) *Repository {
	return &Repository{
		projectRoot:   cfg.ProjectRoot,
		artifactsDir:  cfg.Deploy.ArtifactsDir,
		log:           log.With("component", "ArtifactRepository"),
		contracts:     make(map[string]*models.Contract),
		contractNames: make(map[string][]*models.Contract),
	}
}

// Reset drops the index so the next lookup walks the build output again
func (r *Repository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexed = false
}

// Index discovers all artifacts in the build output directory
func (r *Repository) Index() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexed {
		return nil
	}

	r.contracts = make(map[string]*models.Contract)
	r.contractNames = make(map[string][]*models.Contract)

	outDir, err := r.findArtifactsDir()
	if err != nil {
		return err
	}
	r.log.Debug("indexing artifacts", "dir", outDir)

	err = filepath.WalkDir(outDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".json" || strings.HasSuffix(path, ".dbg.json") {
			return nil
		}
		return r.processArtifact(path)
	})
	if err != nil {
		return fmt.Errorf("failed to index artifacts in %s: %w", outDir, err)
	}

	r.indexed = true
	return nil
}

func (r *Repository) findArtifactsDir() (string, error) {
	candidates := []string{r.artifactsDir}
	candidates = append(candidates, fallbackDirs...)
	candidates = lo.Uniq(lo.Compact(candidates))

	for _, candidate := range candidates {
		dir := candidate
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(r.projectRoot, dir)
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}

	return "", fmt.Errorf("%w: no build output found (looked for %s), compile first or pass --build",
		domain.ErrContractNotFound, strings.Join(candidates, ", "))
}

// processArtifact parses a single artifact file and adds it to the index
func (r *Repository) processArtifact(artifactPath string) error {
	data, err := os.ReadFile(artifactPath) //nolint:gosec // walking the build output
	if err != nil {
		return err
	}

	var artifact models.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		// Not every JSON file in the output is an artifact
		r.log.Debug("skipping unparsable artifact", "path", artifactPath, "error", err)
		return nil
	}

	// Abstract contracts and interfaces have no code to deploy
	if artifact.Bytecode.IsEmpty() {
		return nil
	}

	contractName, sourceName, format := identify(&artifact)
	if contractName == "" || sourceName == "" {
		return nil
	}

	relArtifactPath, _ := filepath.Rel(r.projectRoot, artifactPath)

	info := &models.Contract{
		Name:         contractName,
		Path:         sourceName,
		ArtifactPath: relArtifactPath,
		Format:       format,
		Artifact:     &artifact,
	}

	fullKey := info.FullyQualifiedName()
	if _, exists := r.contracts[fullKey]; exists {
		return nil
	}
	r.contracts[fullKey] = info
	r.contractNames[info.Name] = append(r.contractNames[info.Name], info)

	return nil
}

// identify extracts the contract and source names from either artifact format
func identify(artifact *models.Artifact) (contractName, sourceName string, format models.ArtifactFormat) {
	for source, contract := range artifact.Metadata.Settings.CompilationTarget {
		return contract, source, models.ArtifactFormatFoundry
	}
	if artifact.ContractName != "" && artifact.SourceName != "" {
		if artifact.IsZkSolc() {
			return artifact.ContractName, artifact.SourceName, models.ArtifactFormatZkSolc
		}
		return artifact.ContractName, artifact.SourceName, models.ArtifactFormatHardhat
	}
	return "", "", ""
}

// GetContract resolves a bare name or a "path:Name" reference to exactly one artifact
func (r *Repository) GetContract(ctx context.Context, query domain.ContractQuery) (*models.Contract, error) {
	if err := r.Index(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	ref := strings.TrimSpace(query.Reference)

	if query.IsFullyQualified() {
		if contract, exists := r.contracts[ref]; exists {
			return contract, nil
		}
		return nil, &domain.ArtifactNotFoundError{Reference: ref, Suggestions: r.suggest(ref, lo.Keys(r.contracts))}
	}

	matches := r.contractNames[ref]
	switch len(matches) {
	case 0:
		return nil, &domain.ArtifactNotFoundError{Reference: ref, Suggestions: r.suggest(ref, lo.Keys(r.contractNames))}
	case 1:
		return matches[0], nil
	default:
		return nil, domain.AmbiguousArtifactError{
			Reference: ref,
			Matches:   lo.Map(matches, func(c *models.Contract, _ int) string { return c.FullyQualifiedName() }),
		}
	}
}

// suggest returns the closest candidates for an unknown reference
func (r *Repository) suggest(ref string, candidates []string) []string {
	sort.Strings(candidates)

	var suggestions []string
	for _, match := range fuzzy.Find(ref, candidates) {
		suggestions = append(suggestions, match.Str)
		if len(suggestions) == maxSuggestions {
			return suggestions
		}
	}

	// Fall back to case-insensitive substring matches, e.g. "greeter" -> "Greeter"
	lower := strings.ToLower(ref)
	for _, candidate := range candidates {
		if len(suggestions) == maxSuggestions {
			break
		}
		if lo.Contains(suggestions, candidate) {
			continue
		}
		lc := strings.ToLower(candidate)
		if strings.Contains(lc, lower) || strings.Contains(lower, lc) {
			suggestions = append(suggestions, candidate)
		}
	}
	return suggestions
}

// ListContracts returns every deployable artifact ordered by fully-qualified name
func (r *Repository) ListContracts(ctx context.Context) ([]*models.Contract, error) {
	if err := r.Index(); err != nil {
		if errors.Is(err, domain.ErrContractNotFound) {
			return []*models.Contract{}, nil
		}
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	contracts := lo.Filter(lo.Values(r.contracts), func(c *models.Contract, _ int) bool {
		return c.Format != models.ArtifactFormatZkSolc
	})
	sort.Slice(contracts, func(i, j int) bool {
		return contracts[i].FullyQualifiedName() < contracts[j].FullyQualifiedName()
	})
	return contracts, nil
}

// Ensure the adapter implements the interface
var _ usecase.ArtifactRepository = (*Repository)(nil)
