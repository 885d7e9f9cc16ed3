package verification

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// buildInfo is the subset of a Foundry or Hardhat build-info file needed for verification
type buildInfo struct {
	ID              string          `json:"id"`
	SolcVersion     string          `json:"solcVersion"`
	SolcLongVersion string          `json:"solcLongVersion"`
	ZksolcVersion   string          `json:"zksolcVersion,omitempty"`
	Input           json.RawMessage `json:"input"`
	Output          struct {
		Contracts map[string]map[string]struct {
			EVM struct {
				Bytecode struct {
					Object string `json:"object"`
				} `json:"bytecode"`
			} `json:"evm"`
		} `json:"contracts"`
	} `json:"output"`
}

// compilerInput is the part of the standard JSON input read back for the request
type compilerInput struct {
	Settings struct {
		Optimizer struct {
			Enabled bool `json:"enabled"`
		} `json:"optimizer"`
	} `json:"settings"`
}

func (b *buildInfo) bytecode(source, name string) (string, bool) {
	contracts, ok := b.Output.Contracts[source]
	if !ok {
		return "", false
	}
	contract, ok := contracts[name]
	if !ok {
		return "", false
	}
	return normalizeHex(contract.EVM.Bytecode.Object), true
}

func (b *buildInfo) optimizationUsed() bool {
	var input compilerInput
	if err := json.Unmarshal(b.Input, &input); err != nil {
		return false
	}
	return input.Settings.Optimizer.Enabled
}

// findBuildInfo returns the build-info whose compiled bytecode for source:name matches bytecode.
// When no file matches exactly, the newest one that compiled the contract is used.
func findBuildInfo(dirs []string, source, name string, bytecode []byte) (info *buildInfo, path string, exact bool, err error) {
	var files []string
	for _, dir := range lo.Uniq(lo.Compact(dirs)) {
		matches, err := filepath.Glob(filepath.Join(dir, "build-info", "*.json"))
		if err != nil {
			return nil, "", false, err
		}
		files = append(files, matches...)
	}
	files = lo.Filter(files, func(f string, _ int) bool { return !strings.HasSuffix(f, ".dbg.json") })
	if len(files) == 0 {
		return nil, "", false, fmt.Errorf("no build-info files found in %s, compile with build_info = true", strings.Join(dirs, ", "))
	}

	// Newest first
	sort.Slice(files, func(i, j int) bool {
		return modTime(files[i]) > modTime(files[j])
	})

	want := normalizeHex(fmt.Sprintf("%x", bytecode))

	var fallback *buildInfo
	var fallbackPath string
	for _, file := range files {
		data, readErr := os.ReadFile(file) //nolint:gosec // build output
		if readErr != nil {
			return nil, "", false, readErr
		}

		var candidate buildInfo
		if json.Unmarshal(data, &candidate) != nil {
			continue
		}

		object, ok := candidate.bytecode(source, name)
		if !ok {
			continue
		}
		if object == want {
			return &candidate, file, true, nil
		}
		if fallback == nil {
			fallback, fallbackPath = &candidate, file
		}
	}

	if fallback != nil {
		return fallback, fallbackPath, false, nil
	}
	return nil, "", false, fmt.Errorf("no build-info contains %s:%s", source, name)
}

func modTime(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.ModTime().UnixNano()
}

func normalizeHex(s string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
}

// stripCommit turns "0.8.24+commit.e11b9ed9" into "0.8.24"
func stripCommit(version string) string {
	version = strings.TrimPrefix(version, "v")
	if i := strings.Index(version, "+"); i >= 0 {
		return version[:i]
	}
	return version
}
