package routing

import (
	"sort"

	"github.com/upb/capability-resolver/models"
	"github.com/upb/capability-resolver/services/catalog"
)

// Select picks the best candidate covering every capability in required.
// Survivors are ranked by capability-set size (largest first when preferBroad,
// smallest first otherwise) and then by lowest id, so the result does not
// depend on map iteration order.
func Select(required catalog.CapabilitySet, candidates map[int64]models.ProviderCandidate, preferBroad bool) (models.ProviderCandidate, bool) {
	if required.Len() == 0 || len(candidates) == 0 {
		return models.ProviderCandidate{}, false
	}

	survivors := make([]models.ProviderCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Supports(required) {
			survivors = append(survivors, c)
		}
	}
	if len(survivors) == 0 {
		return models.ProviderCandidate{}, false
	}

	sort.Slice(survivors, func(i, j int) bool {
		si, sj := survivors[i].Capabilities.Len(), survivors[j].Capabilities.Len()
		if si != sj {
			if preferBroad {
				return si > sj
			}
			return si < sj
		}
		return survivors[i].ID < survivors[j].ID
	})

	return survivors[0], true
}
