package bulletin

import "regexp"

// commentFilter is one anchor-phrase pair: every run of text from opener to
// closer (inclusive) is dropped, but only if both anchors are present — an
// opener with no matching closer is a no-op for that pass.
type commentFilter struct {
	opener *regexp.Regexp
	closer *regexp.Regexp
}

var commentFilters = []commentFilter{
	{
		opener: regexp.MustCompile(`(?is)For further information,\s*contact`),
		closer: regexp.MustCompile(`(?is)Interruption notices may be viewed at www\.kplc\.co\.ke`),
	},
	{
		opener: regexp.MustCompile(`(?is)Interruption of Electricity Supply`),
		closer: regexp.MustCompile(`(?is)road construction, etc\.\)`),
	},
}

// StripComments removes both anchor-phrase comment blocks from text, per
// spec.md §4.1's comment-stripping stage.
func StripComments(text string) string {
	for _, f := range commentFilters {
		text = stripOne(text, f)
	}
	return text
}

func stripOne(text string, f commentFilter) string {
	openLoc := f.opener.FindStringIndex(text)
	if openLoc == nil {
		return text
	}
	closeLoc := f.closer.FindStringIndex(text[openLoc[0]:])
	if closeLoc == nil {
		return text
	}
	closeEnd := openLoc[0] + closeLoc[1]
	return text[:openLoc[0]] + text[closeEnd:]
}
