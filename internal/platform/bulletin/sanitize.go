package bulletin

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	partsOfPattern  = regexp.MustCompile(`(?i)\b(Parts?\s+of|Whole\s+of)\b`)
	regionWordPattern = regexp.MustCompile(`(?i)\bRegion\b`)
	countyWordPattern = regexp.MustCompile(`(?i)\bCounty\b`)

	// phasePattern matches "<Name> Phase 3, 4 & 5" style shorthand.
	phasePattern = regexp.MustCompile(`(?i)^(.*?)\s*Phase\s+([0-9,&\s]+)$`)
)

// sanitizeRegion strips the filler words spec.md §4.1's post-processing
// names from a region/county/area/location name.
func sanitizeRegion(name string) string {
	name = partsOfPattern.ReplaceAllString(name, "")
	name = regionWordPattern.ReplaceAllString(name, "")
	name = countyWordPattern.ReplaceAllString(name, "")
	return normalizeSpace(name)
}

// expandPhases turns "Dandora Phase 3, 4 & 5" into
// ["Dandora Phase 3", "Dandora Phase 4", "Dandora Phase 5"]. A name with no
// phase shorthand expands to itself.
func expandPhases(name string) []string {
	m := phasePattern.FindStringSubmatch(name)
	if m == nil {
		return []string{name}
	}
	base := strings.TrimSpace(m[1])
	numbers := strings.FieldsFunc(m[2], func(r rune) bool {
		return r == ',' || r == '&'
	})
	var out []string
	for _, n := range numbers {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, err := strconv.Atoi(n); err != nil {
			return []string{name}
		}
		out = append(out, base+" Phase "+n)
	}
	if len(out) == 0 {
		return []string{name}
	}
	return out
}
