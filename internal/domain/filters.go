package domain

import (
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
)

// DeploymentFilter defines filtering options for deployment records
type DeploymentFilter struct {
	ChainID      uint64
	Network      string
	ContractName string
	Status       models.VerificationStatus
}

// Matches reports whether a deployment satisfies every set field of the filter
func (f DeploymentFilter) Matches(d *models.Deployment) bool {
	if f.ChainID != 0 && d.ChainID != f.ChainID {
		return false
	}
	if f.Network != "" && d.Network != f.Network {
		return false
	}
	if f.ContractName != "" && d.ContractName != f.ContractName {
		return false
	}
	if f.Status != "" && d.Verification.Status != f.Status {
		return false
	}
	return true
}
