package models

import (
	"time"

	"github.com/upb/capability-resolver/services/catalog"
)

// ProviderCandidate is one concrete analysis endpoint that can be bound to a capability
type ProviderCandidate struct {
	ID           int64                 `json:"id" db:"id" yaml:"id" validate:"required,gt=0"`
	Family       string                `json:"provider_type" db:"provider_type" yaml:"provider_type" validate:"required"`
	ModelID      string                `json:"model_id" db:"model_id" yaml:"model_id" validate:"required"`
	Capabilities catalog.CapabilitySet `json:"capabilities" db:"capabilities" yaml:"capabilities"`
	Active       bool                  `json:"active" db:"active" yaml:"active"`
	CreatedAt    time.Time             `json:"created_at" db:"created_at" yaml:"-"`
	UpdatedAt    time.Time             `json:"updated_at" db:"updated_at" yaml:"-"`
}

// NewProviderCandidate creates an active candidate
func NewProviderCandidate(id int64, family, modelID string, capabilities ...catalog.Capability) *ProviderCandidate {
	now := time.Now()
	return &ProviderCandidate{
		ID:           id,
		Family:       family,
		ModelID:      modelID,
		Capabilities: catalog.NewCapabilitySet(capabilities...),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Supports reports whether the candidate advertises every capability in required
func (p ProviderCandidate) Supports(required catalog.CapabilitySet) bool {
	return p.Capabilities.ContainsAll(required)
}

// DuplicateID returns the first id carried by more than one provider in the list
func DuplicateID(providers []*ProviderCandidate) (int64, bool) {
	seen := make(map[int64]struct{}, len(providers))
	for _, p := range providers {
		if p == nil {
			continue
		}
		if _, ok := seen[p.ID]; ok {
			return p.ID, true
		}
		seen[p.ID] = struct{}{}
	}
	return 0, false
}

// ToCandidates indexes providers by id, skipping nil and inactive entries.
// Ids must be unique; callers check with DuplicateID first.
func ToCandidates(providers []*ProviderCandidate) map[int64]ProviderCandidate {
	out := make(map[int64]ProviderCandidate, len(providers))
	for _, p := range providers {
		if p == nil || !p.Active {
			continue
		}
		out[p.ID] = *p
	}
	return out
}
