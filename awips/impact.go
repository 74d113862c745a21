package awips

import "strings"

// ThreatCategory is the damage threat tag of an impact based warning.
type ThreatCategory int

const (
	ThreatCategoryBase ThreatCategory = iota
	ThreatCategorySignificant
	ThreatCategoryConsiderable
	ThreatCategoryDestructive
	ThreatCategoryCatastrophic
	ThreatCategoryUnknown
)

var threatCategoryNames = map[ThreatCategory]string{
	ThreatCategoryBase:         "Base",
	ThreatCategorySignificant:  "Significant",
	ThreatCategoryConsiderable: "Considerable",
	ThreatCategoryDestructive:  "Destructive",
	ThreatCategoryCatastrophic: "Catastrophic",
	ThreatCategoryUnknown:      "?",
}

// GetThreatCategory looks up a category by name, ignoring case.
func GetThreatCategory(name string) ThreatCategory {
	for c, n := range threatCategoryNames {
		if strings.EqualFold(n, name) {
			return c
		}
	}
	return ThreatCategoryUnknown
}

func (c ThreatCategory) String() string {
	if n, ok := threatCategoryNames[c]; ok {
		return n
	}
	return threatCategoryNames[ThreatCategoryUnknown]
}

// ImpactTags are the tags at the bottom of an impact based warning segment:
//
//	TORNADO...RADAR INDICATED
//	TORNADO DAMAGE THREAT...CONSIDERABLE
//	HAIL...1.00IN
type ImpactTags struct {
	ThreatCategory  ThreatCategory
	Tornado         string // OBSERVED, RADAR INDICATED or POSSIBLE
	TornadoPossible bool
	Observed        bool
}

const damageThreatTag = "DAMAGE THREAT..."

// parseImpactTags scans segment content for impact tags. A segment without a
// damage threat tag is a base warning.
func parseImpactTags(content []string) ImpactTags {
	tags := ImpactTags{ThreatCategory: ThreatCategoryBase}
	for _, line := range content {
		line = strings.TrimSpace(line)
		switch {
		case strings.Contains(line, damageThreatTag):
			value := line[strings.Index(line, damageThreatTag)+len(damageThreatTag):]
			tags.ThreatCategory = GetThreatCategory(strings.TrimSpace(value))
		case strings.HasPrefix(line, "TORNADO..."):
			tags.Tornado = strings.TrimPrefix(line, "TORNADO...")
			tags.TornadoPossible = tags.Tornado == "POSSIBLE"
			tags.Observed = tags.Tornado == "OBSERVED"
		case strings.HasPrefix(line, "FLASH FLOOD...OBSERVED"), strings.HasPrefix(line, "WATERSPOUT...OBSERVED"):
			tags.Observed = true
		}
	}
	return tags
}
