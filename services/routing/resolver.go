// Package routing binds required capabilities to analysis providers.
package routing

import (
	"fmt"
	"strings"

	"github.com/upb/capability-resolver/models"
	"github.com/upb/capability-resolver/services"
	"github.com/upb/capability-resolver/services/catalog"
	"github.com/upb/capability-resolver/services/requirements"
)

// Strategy defines how capabilities are distributed across providers
type Strategy string

const (
	// StrategyMultimodal consolidates every capability onto one broad provider
	StrategyMultimodal Strategy = "multimodal"

	// StrategyCostEfficient binds each capability to the narrowest provider covering it
	StrategyCostEfficient Strategy = "cost_efficient"

	// StrategyQuality selects the most capable single provider.
	// It currently ranks exactly like StrategyMultimodal.
	StrategyQuality Strategy = "quality"
)

// strategyAliases maps accepted spellings to their canonical strategy
var strategyAliases = map[string]Strategy{
	"multimodal":     StrategyMultimodal,
	"consolidate":    StrategyMultimodal,
	"cost_efficient": StrategyCostEfficient,
	"quality":        StrategyQuality,
}

// Strategies returns the canonical strategies
func Strategies() []Strategy {
	return []Strategy{StrategyMultimodal, StrategyCostEfficient, StrategyQuality}
}

// ParseStrategy converts user input into a Strategy
func ParseStrategy(s string) (Strategy, error) {
	if strategy, ok := strategyAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return strategy, nil
	}
	return "", fmt.Errorf("%w: %q", services.ErrInvalidStrategy, s)
}

// IsValid reports whether s is one of the canonical strategies
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyMultimodal, StrategyCostEfficient, StrategyQuality:
		return true
	}
	return false
}

// ResolutionEntry is the provider bound to one capability
type ResolutionEntry struct {
	ProviderID   int64                 `json:"provider_id"`
	Family       string                `json:"provider_type"`
	ModelID      string                `json:"model_id"`
	Capabilities catalog.CapabilitySet `json:"capabilities"`
}

func entryFor(c models.ProviderCandidate) ResolutionEntry {
	return ResolutionEntry{
		ProviderID:   c.ID,
		Family:       c.Family,
		ModelID:      c.ModelID,
		Capabilities: c.Capabilities.Clone(),
	}
}

// ResolutionMap maps each satisfied capability to its provider.
// A capability without a key could not be served by any candidate.
type ResolutionMap map[catalog.Capability]ResolutionEntry

// Missing returns the required capabilities that have no binding, in canonical order
func (m ResolutionMap) Missing(reqs requirements.Requirements) []catalog.Capability {
	missing := []catalog.Capability{}
	for _, c := range reqs.Capabilities() {
		if _, ok := m[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// Resolve derives the requirements of categories and binds them to candidates
func Resolve(categories []string, candidates map[int64]models.ProviderCandidate, strategy Strategy) ResolutionMap {
	return ResolveRequirements(requirements.Derive(categories), candidates, strategy)
}

// ResolveRequirements binds already derived requirements to candidates.
// The primary pass follows strategy; a fallback pass then tries every capability
// still unbound on its own. An unrecognised strategy runs the fallback pass only.
func ResolveRequirements(reqs requirements.Requirements, candidates map[int64]models.ProviderCandidate, strategy Strategy) ResolutionMap {
	result := make(ResolutionMap, len(reqs))
	required := reqs.Capabilities()

	switch strategy {
	case StrategyMultimodal, StrategyQuality:
		bindAll(result, required, candidates)
	case StrategyCostEfficient:
		bindEach(result, required, candidates)
	}

	bindEach(result, required, candidates)
	return result
}

// bindAll binds one broad candidate covering the union of required to every capability
func bindAll(result ResolutionMap, required []catalog.Capability, candidates map[int64]models.ProviderCandidate) {
	best, ok := Select(catalog.NewCapabilitySet(required...), candidates, true)
	if !ok {
		return
	}
	entry := entryFor(best)
	for _, c := range required {
		result[c] = entry
	}
}

// bindEach binds the narrowest candidate to each capability not yet bound
func bindEach(result ResolutionMap, required []catalog.Capability, candidates map[int64]models.ProviderCandidate) {
	for _, c := range required {
		if _, ok := result[c]; ok {
			continue
		}
		if best, ok := Select(catalog.NewCapabilitySet(c), candidates, false); ok {
			result[c] = entryFor(best)
		}
	}
}
