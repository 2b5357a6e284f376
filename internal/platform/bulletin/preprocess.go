package bulletin

import "regexp"

// nairobiRegionHeading matches the literal heading that bulletins omit a
// following county heading for.
var nairobiRegionHeading = regexp.MustCompile(`(?i)NAIROBI\s+REGION`)

// nairobiCountyFollowup detects whether a county heading already follows
// the NAIROBI REGION heading within the next short run of text.
var nairobiCountyFollowup = regexp.MustCompile(`(?i)^\s*[^\n]{0,80}COUNTY`)

// adjacentCustomersPattern matches spec.md §4.1's "(& | and) adjacent
// customers.?" sentinel trigger, case-insensitive and whitespace-tolerant.
var adjacentCustomersPattern = regexp.MustCompile(`(?i)(&|and)\s+adjacent\s+customers\.?`)

const syntheticNairobiCounty = "PARTS OF NAIROBI COUNTY"

// Preprocess applies spec.md §4.1's pre-processing step: synthesize the
// missing Nairobi county heading, and replace the "adjacent customers"
// trailer with the ENDOFLOCATIONS sentinel the scanner recognizes as the
// end of an area's location list.
func Preprocess(text string) string {
	text = injectNairobiCounty(text)
	text = adjacentCustomersPattern.ReplaceAllString(text, " ENDOFLOCATIONS ")
	return text
}

func injectNairobiCounty(text string) string {
	loc := nairobiRegionHeading.FindStringIndex(text)
	if loc == nil {
		return text
	}
	rest := text[loc[1]:]
	if nairobiCountyFollowup.MatchString(rest) {
		return text
	}
	return text[:loc[1]] + "\n" + syntheticNairobiCounty + "\n" + rest
}
