// Package requirements maps content categories to the capabilities needed to analyze them.
package requirements

import (
	"strings"

	"github.com/upb/capability-resolver/services/catalog"
)

// ContentCategory is a class of input content to be analyzed
type ContentCategory string

const (
	CategoryPosts       ContentCategory = "posts"
	CategoryComments    ContentCategory = "comments"
	CategoryMessages    ContentCategory = "messages"
	CategoryProfiles    ContentCategory = "profiles"
	CategoryPhotos      ContentCategory = "photos"
	CategoryStories     ContentCategory = "stories"
	CategoryVideos      ContentCategory = "videos"
	CategoryReels       ContentCategory = "reels"
	CategoryLiveStreams ContentCategory = "live_streams"
	CategoryVoiceNotes  ContentCategory = "voice_notes"
	CategoryPodcasts    ContentCategory = "podcasts"
)

// primaryCapability maps each category to the one capability it requires
var primaryCapability = map[ContentCategory]catalog.Capability{
	CategoryPosts:       catalog.CapabilityText,
	CategoryComments:    catalog.CapabilityText,
	CategoryMessages:    catalog.CapabilityText,
	CategoryProfiles:    catalog.CapabilityText,
	CategoryPhotos:      catalog.CapabilityImage,
	CategoryStories:     catalog.CapabilityImage,
	CategoryVideos:      catalog.CapabilityVideo,
	CategoryReels:       catalog.CapabilityVideo,
	CategoryLiveStreams: catalog.CapabilityVideo,
	CategoryVoiceNotes:  catalog.CapabilityAudio,
	CategoryPodcasts:    catalog.CapabilityAudio,
}

// knownCategories lists the categories in a stable order for listings
var knownCategories = []ContentCategory{
	CategoryPosts,
	CategoryComments,
	CategoryMessages,
	CategoryProfiles,
	CategoryPhotos,
	CategoryStories,
	CategoryVideos,
	CategoryReels,
	CategoryLiveStreams,
	CategoryVoiceNotes,
	CategoryPodcasts,
}

// KnownCategories returns every category that has a capability mapping
func KnownCategories() []ContentCategory {
	out := make([]ContentCategory, len(knownCategories))
	copy(out, knownCategories)
	return out
}

// CapabilityFor returns the primary capability of a category
func CapabilityFor(category string) (catalog.Capability, bool) {
	c, ok := primaryCapability[normalize(category)]
	return c, ok
}

func normalize(category string) ContentCategory {
	return ContentCategory(strings.ToLower(strings.TrimSpace(category)))
}

// Requirements maps each required capability to the categories that need it,
// in the order the categories were first seen
type Requirements map[catalog.Capability][]string

// Derive computes the capability requirements of a list of content categories.
// Unknown categories are dropped and a category is recorded at most once per bucket.
func Derive(categories []string) Requirements {
	reqs := make(Requirements)
	for _, raw := range categories {
		category := normalize(raw)
		capability, ok := primaryCapability[category]
		if !ok {
			continue
		}
		if contains(reqs[capability], string(category)) {
			continue
		}
		reqs[capability] = append(reqs[capability], string(category))
	}
	return reqs
}

func contains(bucket []string, category string) bool {
	for _, existing := range bucket {
		if existing == category {
			return true
		}
	}
	return false
}

// Capabilities returns the required capabilities in canonical order
func (r Requirements) Capabilities() []catalog.Capability {
	return r.CapabilitySet().Sorted()
}

// CapabilitySet returns the required capabilities as a set
func (r Requirements) CapabilitySet() catalog.CapabilitySet {
	set := make(catalog.CapabilitySet, len(r))
	for c := range r {
		set[c] = struct{}{}
	}
	return set
}

// Categories returns the categories driving capability c
func (r Requirements) Categories(c catalog.Capability) []string {
	return r[c]
}
