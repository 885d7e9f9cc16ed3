package domain

import "strings"

// ContractQuery represents a query for finding a compiled contract
type ContractQuery struct {
	// Reference is a bare name ("Counter") or a fully-qualified name ("src/Counter.sol:Counter")
	Reference string
}

// IsFullyQualified reports whether the reference names a source path as well as a contract
func (cq ContractQuery) IsFullyQualified() bool {
	return strings.Contains(cq.Reference, ":")
}

// String returns a string representation of the query
func (cq ContractQuery) String() string {
	if cq.Reference == "" {
		return "<all contracts>"
	}
	return cq.Reference
}

// DeploymentQuery represents a query for finding a deployment record
type DeploymentQuery struct {
	// Reference is the record ID, a deployed address, or a contract name
	Reference string
	// Optional: Chain ID for filtering
	ChainID uint64
}
