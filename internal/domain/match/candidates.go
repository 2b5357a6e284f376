// Package match implements the Match Engine (C6): candidate generation
// over "&"-joined line/area names, and the direct/potential classification
// of a subscriber's resolved location against upcoming outages.
package match

import "strings"

// SearchCandidates generates the searchable variants of a raw line or area
// name. A name with no "&" is its own sole candidate; a name containing
// "&" is split into semantically reasonable noun phrases via six pattern
// matchers, deduplicated, and deduplicated again within each candidate's
// own word sequence.
func SearchCandidates(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	before, after, hasAmpersand := strings.Cut(trimmed, "&")
	if !hasAmpersand {
		return []string{trimmed}
	}
	before = strings.TrimSpace(before)
	after = strings.TrimSpace(after)

	var candidates []string
	candidates = append(candidates, split1(before, after)...)
	candidates = append(candidates, split2(before, after)...)
	candidates = append(candidates, split3(before, after)...)
	candidates = append(candidates, split4(before, after)...)
	candidates = append(candidates, split5(before, after)...)
	candidates = append(candidates, split6(before, after)...)

	seen := map[string]bool{}
	var unique []string
	for _, c := range candidates {
		c = uniqueWords(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		unique = append(unique, c)
	}
	return unique
}

// AreaCandidates splits a comma-separated area-name field into its
// individual area tokens ("Comma-separated area names expand to multiple
// area tokens").
func AreaCandidates(area string) []string {
	parts := strings.Split(area, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

func uniqueWords(s string) string {
	words := strings.Fields(s)
	seen := map[string]bool{}
	var out []string
	for _, w := range words {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return strings.Join(out, " ")
}

// Split Shell & Total Petrol Stns Kiambu Road into
// [Shell Petrol Stns Kiambu Road, Total Petrol Stns Kiambu Road].
func split1(before, after string) []string {
	afterWords := strings.Fields(after)
	if len(afterWords) == 1 {
		return nil
	}
	first, rest := afterWords[0], strings.Join(afterWords[1:], " ")
	return []string{before + " " + rest, first + " " + rest}
}

// Split Kawangware DC & DO Offices into
// [Kawangware DC Offices, Kawangware DO Offices].
func split2(before, after string) []string {
	beforeWords := strings.Fields(before)
	if len(beforeWords) == 1 {
		return nil
	}
	var result []string
	result = append(result, beforeWords[0]+" "+after)

	afterWords := strings.Fields(after)
	if len(afterWords) == 1 {
		return nil
	}
	last := afterWords[len(afterWords)-1]
	result = append(result, before+" "+last)
	return result
}

// Split Makueni Boys & Girls into [Makueni Boys, Makueni Girls].
func split3(before, after string) []string {
	beforeWords := strings.Fields(before)
	if len(beforeWords) == 1 {
		return nil
	}
	return []string{before, beforeWords[0] + " " + after}
}

// Split Warai South & Warai North Road into [Warai South Road, Warai North Road].
func split4(before, after string) []string {
	afterWords := strings.Fields(after)
	result := []string{after}
	if len(afterWords) == 1 || len(strings.Fields(before)) == 1 {
		return nil
	}
	last := afterWords[len(afterWords)-1]
	result = append(result, before+" "+last)
	return result
}

// Split St Lwanga Catholic Church & School into
// [St Lwanga Catholic Church, St Lwanga Catholic School].
func split5(before, after string) []string {
	beforeWords := strings.Fields(before)
	if len(beforeWords) == 1 {
		return nil
	}
	restBefore := strings.Join(beforeWords[:len(beforeWords)-1], " ")
	return []string{before, restBefore + " " + after}
}

// Split GSU & AP into [GSU, AP], only when the unsplit phrase is exactly
// two words.
func split6(before, after string) []string {
	if len(strings.Fields(before+" "+after)) == 2 {
		return []string{before, after}
	}
	return nil
}
