package catalog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/upb/capability-resolver/utils"
)

// CustomFamily is the provider family unknown families resolve to
const CustomFamily = "custom"

// ModelDescriptor describes one model variant offered by a provider family
type ModelDescriptor struct {
	// Family is the provider family the model belongs to
	Family string `json:"family" yaml:"-"`

	// ID is the model identifier (e.g., "gpt-4o")
	ID string `json:"id" yaml:"id" validate:"required"`

	// DisplayName is the human-readable name
	DisplayName string `json:"display_name" yaml:"display_name"`

	// Capabilities supported by the model, in declaration order
	Capabilities []Capability `json:"capabilities" yaml:"capabilities"`

	// MaxContext is the maximum context size
	MaxContext int `json:"max_context" yaml:"max_context" validate:"gte=0"`

	// CostPerUnit is the price per 1k tokens (or equivalent unit)
	CostPerUnit float64 `json:"cost_per_unit" yaml:"cost_per_unit" validate:"gte=0"`

	// Description of the model
	Description string `json:"description" yaml:"description"`
}

// Supports reports whether the model supports c
func (m ModelDescriptor) Supports(c Capability) bool {
	for _, have := range m.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// CapabilitySet returns the model capabilities as a set
func (m ModelDescriptor) CapabilitySet() CapabilitySet {
	return NewCapabilitySet(m.Capabilities...)
}

func (m ModelDescriptor) clone() ModelDescriptor {
	caps := make([]Capability, len(m.Capabilities))
	copy(caps, m.Capabilities)
	m.Capabilities = caps
	return m
}

// ProviderConfig holds the static description of a provider family
type ProviderConfig struct {
	Family        string            `json:"family" yaml:"family" validate:"required"`
	DisplayName   string            `json:"display_name" yaml:"display_name"`
	EndpointURL   string            `json:"endpoint_url" yaml:"endpoint_url" validate:"omitempty,url"`
	CredentialEnv string            `json:"credential_env" yaml:"credential_env"`
	Models        []ModelDescriptor `json:"models" yaml:"models" validate:"dive"`
}

func (p ProviderConfig) clone() ProviderConfig {
	models := make([]ModelDescriptor, len(p.Models))
	for i, m := range p.Models {
		models[i] = m.clone()
	}
	p.Models = models
	return p
}

// Catalog is a read-only registry of provider families and their models.
// A Catalog is never mutated after NewCatalog returns, so it is safe for
// concurrent use without locking.
type Catalog struct {
	families  []string
	providers map[string]ProviderConfig
}

// NewCatalog validates the given configs and builds an immutable catalog.
// A "custom" entry with no models is added when the configs do not declare one.
func NewCatalog(configs []ProviderConfig) (*Catalog, error) {
	c := &Catalog{
		families:  make([]string, 0, len(configs)+1),
		providers: make(map[string]ProviderConfig, len(configs)+1),
	}

	for i, cfg := range configs {
		if err := utils.ValidateStruct(cfg); err != nil {
			return nil, fmt.Errorf("provider[%d]: %w", i, err)
		}

		family := strings.ToLower(strings.TrimSpace(cfg.Family))
		if _, exists := c.providers[family]; exists {
			return nil, fmt.Errorf("duplicate provider family: %s", family)
		}

		entry := cfg.clone()
		entry.Family = family

		seen := make(map[string]struct{}, len(entry.Models))
		for j := range entry.Models {
			model := &entry.Models[j]
			if _, dup := seen[model.ID]; dup {
				return nil, fmt.Errorf("provider %s: duplicate model id %s", family, model.ID)
			}
			seen[model.ID] = struct{}{}

			model.Family = family
			caps, err := normalizeCapabilities(model.Capabilities)
			if err != nil {
				return nil, fmt.Errorf("provider %s model %s: %w", family, model.ID, err)
			}
			model.Capabilities = caps
		}

		c.families = append(c.families, family)
		c.providers[family] = entry
	}

	if _, ok := c.providers[CustomFamily]; !ok {
		c.families = append(c.families, CustomFamily)
		c.providers[CustomFamily] = customProvider()
	}

	return c, nil
}

// normalizeCapabilities parses declared tags and removes duplicates, keeping declaration order
func normalizeCapabilities(declared []Capability) ([]Capability, error) {
	out := make([]Capability, 0, len(declared))
	seen := make(CapabilitySet, len(declared))
	for _, raw := range declared {
		c, ok := ParseCapability(string(raw))
		if !ok {
			return nil, fmt.Errorf("unknown capability %q", raw)
		}
		if seen.Has(c) {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

func customProvider() ProviderConfig {
	return ProviderConfig{
		Family:        CustomFamily,
		DisplayName:   "Custom Provider",
		CredentialEnv: "CUSTOM_API_KEY",
		Models:        []ModelDescriptor{},
	}
}

var (
	defaultCatalog *Catalog
	catalogOnce    sync.Once
)

// Default returns the process-wide catalog built from the built-in provider table
func Default() *Catalog {
	catalogOnce.Do(func() {
		c, err := NewCatalog(builtinProviders())
		if err != nil {
			panic(fmt.Sprintf("catalog: invalid built-in provider table: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Families returns the registered provider families in catalog order
func (c *Catalog) Families() []string {
	out := make([]string, len(c.families))
	copy(out, c.families)
	return out
}

// lookup resolves a family tag, falling back to the custom entry
func (c *Catalog) lookup(family string) ProviderConfig {
	if cfg, ok := c.providers[strings.ToLower(strings.TrimSpace(family))]; ok {
		return cfg
	}
	return c.providers[CustomFamily]
}

// ProviderConfig returns the configuration for a family.
// Unknown families resolve to the custom entry.
func (c *Catalog) ProviderConfig(family string) ProviderConfig {
	return c.lookup(family).clone()
}

// AvailableModels returns the models of a family keyed by model id
func (c *Catalog) AvailableModels(family string) map[string]ModelDescriptor {
	cfg := c.lookup(family)
	out := make(map[string]ModelDescriptor, len(cfg.Models))
	for _, m := range cfg.Models {
		out[m.ID] = m.clone()
	}
	return out
}

// ModelInfo returns the descriptor for (family, modelID)
func (c *Catalog) ModelInfo(family, modelID string) (ModelDescriptor, bool) {
	for _, m := range c.lookup(family).Models {
		if m.ID == modelID {
			return m.clone(), true
		}
	}
	return ModelDescriptor{}, false
}

// ModelsByCapability returns the ids of the family's models supporting capability, in catalog order
func (c *Catalog) ModelsByCapability(family string, capability Capability) []string {
	ids := []string{}
	if !capability.IsValid() {
		return ids
	}
	for _, m := range c.lookup(family).Models {
		if m.Supports(capability) {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// ModelsByCapabilityName is ModelsByCapability for a textual tag.
// A tag that does not parse yields an empty list.
func (c *Catalog) ModelsByCapabilityName(family, capability string) []string {
	parsed, ok := ParseCapability(capability)
	if !ok {
		return []string{}
	}
	return c.ModelsByCapability(family, parsed)
}

// CheapestModelForText returns the lowest-cost text model of a family.
// Ties go to the model declared first in the catalog.
func (c *Catalog) CheapestModelForText(family string) (string, bool) {
	var (
		best     string
		bestCost float64
		found    bool
	)
	for _, m := range c.lookup(family).Models {
		if !m.Supports(CapabilityText) {
			continue
		}
		if !found || m.CostPerUnit < bestCost {
			best, bestCost, found = m.ID, m.CostPerUnit, true
		}
	}
	return best, found
}

// MultimodalModels returns, per family, the models that support image or video.
// Families without such models are omitted.
func (c *Catalog) MultimodalModels() map[string][]string {
	out := make(map[string][]string)
	for _, family := range c.families {
		for _, m := range c.providers[family].Models {
			if m.Supports(CapabilityImage) || m.Supports(CapabilityVideo) {
				out[family] = append(out[family], m.ID)
			}
		}
	}
	return out
}
