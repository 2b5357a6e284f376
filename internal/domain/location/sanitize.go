package location

import (
	"regexp"
	"strings"
)

var acronymPattern = regexp.MustCompile(`(?i)\b(` + acronymKeysPattern() + `)\b`)

func acronymKeysPattern() string {
	keys := make([]string, 0, len(acronymTable))
	for k := range acronymTable {
		keys = append(keys, regexp.QuoteMeta(k))
	}
	return strings.Join(keys, "|")
}

// Sanitize expands the fixed acronym table against a raw address, yielding
// the SanitizedAddress field used by textual matching.
func Sanitize(address string) string {
	return acronymPattern.ReplaceAllStringFunc(address, func(match string) string {
		if expanded, ok := acronymTable[strings.ToLower(match)]; ok {
			return expanded
		}
		return match
	})
}
