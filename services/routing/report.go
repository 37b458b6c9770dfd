package routing

import (
	"fmt"
	"strings"

	"github.com/upb/capability-resolver/services/catalog"
	"github.com/upb/capability-resolver/services/requirements"
)

// FormatReport renders requirements and their resolution as diagnostic text.
// Costs come from cat; models the catalog does not know are reported without a price.
func FormatReport(reqs requirements.Requirements, result ResolutionMap, cat *catalog.Catalog) string {
	var b strings.Builder

	required := reqs.Capabilities()
	if len(required) == 0 {
		b.WriteString("No capabilities required: none of the requested content categories is recognised.\n")
		return b.String()
	}

	b.WriteString("Capability requirements:\n")
	for _, c := range required {
		fmt.Fprintf(&b, "  - %s: %s\n", c, strings.Join(reqs.Categories(c), ", "))
	}

	b.WriteString("\nResolution:\n")
	type pair struct{ family, model string }
	seen := make(map[pair]bool)
	var total float64
	priced := 0
	for _, c := range required {
		entry, ok := result[c]
		if !ok {
			fmt.Fprintf(&b, "  - %s: UNRESOLVED, no active provider supports this capability\n", c)
			continue
		}

		note := "cost unknown"
		info, known := cat.ModelInfo(entry.Family, entry.ModelID)
		if known {
			note = fmt.Sprintf("$%.6f per unit", info.CostPerUnit)
		}
		fmt.Fprintf(&b, "  - %s: %s/%s (provider %d), %s\n", c, entry.Family, entry.ModelID, entry.ProviderID, note)

		p := pair{entry.Family, entry.ModelID}
		if seen[p] {
			continue
		}
		seen[p] = true
		if known {
			total += info.CostPerUnit
			priced++
		}
	}

	missing := result.Missing(reqs)
	if len(missing) > 0 {
		names := make([]string, len(missing))
		for i, c := range missing {
			names[i] = c.String()
		}
		fmt.Fprintf(&b, "\nWarning: %d capability(ies) unresolved: %s\n", len(missing), strings.Join(names, ", "))
	}

	fmt.Fprintf(&b, "\nEstimated cost per unit across %d distinct model(s): $%.6f\n", priced, total)
	return b.String()
}
