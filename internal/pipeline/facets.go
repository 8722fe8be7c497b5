package pipeline

import (
	"slices"
	"strings"

	"startupmap/internal"
)

var sectorPlaceholders = map[string]struct{}{
	"Unknown": {},
	"none":    {},
}

// BuildFacets derives the option lists for the sector, stage and company type
// controls. Stages and company types start with the "All" option.
func BuildFacets(records []internal.Startup) internal.Facets {
	sectors := map[string]struct{}{}
	stages := map[string]struct{}{}
	companyTypes := map[string]struct{}{}

	for _, s := range records {
		if isRealSector(s.Sector) {
			sectors[s.Sector] = struct{}{}
		}
		if s.Stage != "" {
			stages[s.Stage] = struct{}{}
		}
		if ct := strings.ToUpper(s.CompanyType); ct != "" {
			companyTypes[ct] = struct{}{}
		}
	}

	return internal.Facets{
		Sectors:      sortedKeys(sectors),
		Stages:       append([]string{internal.AllOption}, sortedKeys(stages)...),
		CompanyTypes: append([]string{internal.AllOption}, sortedKeys(companyTypes)...),
	}
}

func isRealSector(sector string) bool {
	if sector == "" {
		return false
	}
	if _, placeholder := sectorPlaceholders[sector]; placeholder {
		return false
	}
	trimmed := strings.TrimSpace(sector)
	return trimmed != "" && trimmed != "N/A"
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
