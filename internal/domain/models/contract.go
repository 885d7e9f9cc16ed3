package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ArtifactFormat identifies the build tool that produced an artifact
type ArtifactFormat string

const (
	ArtifactFormatFoundry ArtifactFormat = "foundry"
	ArtifactFormatHardhat ArtifactFormat = "hardhat"
	// ArtifactFormatZkSolc is hardhat-zksync output. Its bytecode targets the
	// zkSync Era VM and is only deployable through the ContractDeployer system
	// contract, so it is indexed but never deployed.
	ArtifactFormatZkSolc ArtifactFormat = "zksolc"
)

// Contract represents a compiled contract discovered in the build output
type Contract struct {
	Name         string         `json:"name"`
	Path         string         `json:"path"` // source path, e.g. "contracts/zkSync.sol"
	ArtifactPath string         `json:"artifactPath,omitempty"`
	Format       ArtifactFormat `json:"format"`
	Artifact     *Artifact      `json:"artifact,omitempty"`
}

// FullyQualifiedName returns "path:Name", the form verifiers expect
func (c *Contract) FullyQualifiedName() string {
	return fmt.Sprintf("%s:%s", c.Path, c.Name)
}

// BytecodeObject represents bytecode in either artifact format.
// Foundry writes {"object": "0x..."}, Hardhat writes a bare hex string.
type BytecodeObject struct {
	Object         string         `json:"object"`
	SourceMap      string         `json:"sourceMap,omitempty"`
	LinkReferences map[string]any `json:"linkReferences,omitempty"`
}

// UnmarshalJSON accepts both the object and the bare string form
func (b *BytecodeObject) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &b.Object)
	}

	type plain BytecodeObject
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*b = BytecodeObject(p)
	return nil
}

// IsEmpty reports whether there is no code (abstract contracts and interfaces)
func (b BytecodeObject) IsEmpty() bool {
	return b.Object == "" || b.Object == "0x"
}

// IsLinked reports whether all library placeholders have been resolved
func (b BytecodeObject) IsLinked() bool {
	return !strings.Contains(b.Object, "__$")
}

// Bytes decodes the hex object
func (b BytecodeObject) Bytes() ([]byte, error) {
	object := b.Object
	if !strings.HasPrefix(object, "0x") {
		object = "0x" + object
	}
	return hexutil.Decode(object)
}

// Hash returns the keccak256 hash of the decoded bytecode
func (b BytecodeObject) Hash() (common.Hash, error) {
	code, err := b.Bytes()
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(code), nil
}

// Artifact represents a compilation artifact (Foundry or Hardhat)
type Artifact struct {
	ABI              json.RawMessage  `json:"abi"`
	Bytecode         BytecodeObject   `json:"bytecode"`
	DeployedBytecode BytecodeObject   `json:"deployedBytecode"`
	Metadata         ArtifactMetadata `json:"metadata"`

	// Hardhat fields
	BuildFormat  string            `json:"_format,omitempty"` // e.g. "hh-sol-artifact-1", "hh-zksolc-artifact-1"
	ContractName string            `json:"contractName,omitempty"`
	SourceName   string            `json:"sourceName,omitempty"`
	FactoryDeps  map[string]string `json:"factoryDeps,omitempty"`
}

// IsZkSolc reports whether the artifact was compiled by zksolc
func (a *Artifact) IsZkSolc() bool {
	return strings.HasPrefix(a.BuildFormat, "hh-zksolc") || len(a.FactoryDeps) > 0
}

// CompilerVersion returns the solc version recorded in the artifact metadata
func (a *Artifact) CompilerVersion() string {
	return a.Metadata.Compiler.Version
}

// ArtifactMetadata represents the metadata section of a Foundry artifact
type ArtifactMetadata struct {
	Compiler struct {
		Version string `json:"version"`
	} `json:"compiler"`
	Language string `json:"language"`
	Settings struct {
		CompilationTarget map[string]string `json:"compilationTarget"`
	} `json:"settings"`
}

// UnmarshalJSON tolerates Hardhat artifacts, which have no metadata object
func (m *ArtifactMetadata) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil
	}

	type plain ArtifactMetadata
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = ArtifactMetadata(p)
	return nil
}
