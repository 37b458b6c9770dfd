package catalog

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// Capability is a discrete processing skill a provider may support
type Capability string

const (
	// CapabilityText covers posts, comments and other textual content
	CapabilityText Capability = "text"

	// CapabilityImage covers photos and image-based stories
	CapabilityImage Capability = "image"

	// CapabilityVideo covers short and long form video
	CapabilityVideo Capability = "video"

	// CapabilityAudio covers voice notes and podcasts
	CapabilityAudio Capability = "audio"
)

// allCapabilities is the canonical ordering used for listings and reports
var allCapabilities = []Capability{
	CapabilityText,
	CapabilityImage,
	CapabilityVideo,
	CapabilityAudio,
}

// AllCapabilities returns every known capability in canonical order
func AllCapabilities() []Capability {
	out := make([]Capability, len(allCapabilities))
	copy(out, allCapabilities)
	return out
}

// String returns the textual form of the capability
func (c Capability) String() string {
	return string(c)
}

// IsValid reports whether c is a known capability
func (c Capability) IsValid() bool {
	switch c {
	case CapabilityText, CapabilityImage, CapabilityVideo, CapabilityAudio:
		return true
	}
	return false
}

// ParseCapability normalizes a textual capability tag.
// The second return value is false when s names no known capability.
func ParseCapability(s string) (Capability, bool) {
	c := Capability(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", false
	}
	return c, true
}

// CapabilitySet is an unordered set of capabilities
type CapabilitySet map[Capability]struct{}

// NewCapabilitySet builds a set from the given capabilities, ignoring unknown tags
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		if c.IsValid() {
			set[c] = struct{}{}
		}
	}
	return set
}

// ParseCapabilitySet builds a set from textual tags, dropping the ones that do not parse
func ParseCapabilitySet(tags ...string) CapabilitySet {
	set := make(CapabilitySet, len(tags))
	for _, tag := range tags {
		if c, ok := ParseCapability(tag); ok {
			set[c] = struct{}{}
		}
	}
	return set
}

// Has reports whether c is in the set
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// ContainsAll reports whether s is a superset of other
func (s CapabilitySet) ContainsAll(other CapabilitySet) bool {
	for c := range other {
		if !s.Has(c) {
			return false
		}
	}
	return true
}

// Len returns the number of capabilities in the set
func (s CapabilitySet) Len() int {
	return len(s)
}

// Sorted returns the members in canonical order
func (s CapabilitySet) Sorted() []Capability {
	out := make([]Capability, 0, len(s))
	for _, c := range allCapabilities {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Strings returns the members as strings in canonical order
func (s CapabilitySet) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, c := range sorted {
		out[i] = c.String()
	}
	return out
}

// Clone returns an independent copy of the set
func (s CapabilitySet) Clone() CapabilitySet {
	out := make(CapabilitySet, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}

// MarshalJSON encodes the set as a sorted list of tags
func (s CapabilitySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

// UnmarshalJSON decodes a list of tags; unknown tags are dropped
func (s *CapabilitySet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	*s = ParseCapabilitySet(tags...)
	return nil
}

// UnmarshalYAML decodes a YAML sequence of tags; unknown tags are dropped
func (s *CapabilitySet) UnmarshalYAML(value *yaml.Node) error {
	var tags []string
	if err := value.Decode(&tags); err != nil {
		return err
	}
	*s = ParseCapabilitySet(tags...)
	return nil
}
