package bulletin

import (
	"strconv"
	"strings"

	"regexp"

	"github.com/kplc/bulletin-notify/internal/domain/location"
)

var (
	regionLinePattern = regexp.MustCompile(`(?i)^(.*?)\s*REGION\s*[:.]?$`)
	countyLinePattern = regexp.MustCompile(`(?i)^(.*?)\s*COUNTY\s*[:.]?$`)
	areaLinePattern   = regexp.MustCompile(`(?i)^AREA\s*[:;]`)
	dateLinePattern   = regexp.MustCompile(`(?i)^DATE\s*[:;]`)
	timeLinePattern   = regexp.MustCompile(`(?i)^TIME\s*[:;]`)

	areaPrefixPattern = regexp.MustCompile(`(?i)^AREA\s*[:;]\s*`)
	partOfPrefix      = regexp.MustCompile(`(?i)^(PARTS?\s+OF)\s+`)

	dateValuePattern = regexp.MustCompile(`(?i)^DATE\s*[:;]\s*([A-Za-z]+)\s+(\d{1,2})\.(\d{1,2})\.(\d{4})`)
	timeValuePattern = regexp.MustCompile(`(?i)^TIME\s*[:;]\s*(\d{1,2}[.:]\d{2}\s*[AP]\.?M\.?)\s*[-–—]\s*(\d{1,2}[.:]\d{2}\s*[AP]\.?M\.?)`)
)

const endOfLocationsSentinel = "ENDOFLOCATIONS"

// Scan tokenizes a preprocessed, comment-stripped bulletin into the stream
// the parser consumes. It is line-oriented: each logical bulletin field
// (region heading, county heading, area heading, date, time, location
// list) occupies its own line or contiguous run of lines.
func Scan(text string) ([]Token, error) {
	lines := strings.Split(text, "\n")
	var tokens []Token

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			i++
			continue
		}

		switch {
		case regionLinePattern.MatchString(line):
			name := regionLinePattern.FindStringSubmatch(line)[1]
			tokens = append(tokens, Token{Type: TokenRegion, Text: strings.TrimSpace(name)})
			i++

		case countyLinePattern.MatchString(line):
			name := countyLinePattern.FindStringSubmatch(line)[1]
			tokens = append(tokens, Token{Type: TokenCounty, Text: strings.TrimSpace(name)})
			i++

		case areaLinePattern.MatchString(line):
			var sb strings.Builder
			sb.WriteString(areaPrefixPattern.ReplaceAllString(line, ""))
			i++
			for i < len(lines) {
				next := strings.TrimSpace(lines[i])
				if next == "" {
					i++
					continue
				}
				if dateLinePattern.MatchString(next) {
					break
				}
				sb.WriteString(" ")
				sb.WriteString(next)
				i++
			}
			name := strings.TrimSpace(sb.String())
			name = partOfPrefix.ReplaceAllString(name, "")
			tokens = append(tokens, Token{Type: TokenArea, Text: name})

		case dateLinePattern.MatchString(line):
			tok, err := scanDateLine(line)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i++

		case timeLinePattern.MatchString(line):
			tok, err := scanTimeLine(line)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i++

		default:
			tokens = append(tokens, scanLocationLine(line)...)
			i++
		}
	}

	tokens = append(tokens, Token{Type: TokenEOF})
	return tokens, nil
}

func scanDateLine(line string) (Token, error) {
	m := dateValuePattern.FindStringSubmatch(line)
	if m == nil {
		return Token{}, &ErrValidation{Context: "malformed DATE line: " + line}
	}
	day, _ := strconv.Atoi(m[2])
	month, _ := strconv.Atoi(m[3])
	year, _ := strconv.Atoi(m[4])
	return Token{
		Type:      TokenDate,
		DayOfWeek: strings.ToUpper(m[1]),
		Day:       day,
		Month:     month,
		Year:      year,
	}, nil
}

func scanTimeLine(line string) (Token, error) {
	m := timeValuePattern.FindStringSubmatch(line)
	if m == nil {
		return Token{}, &ErrValidation{Context: "malformed TIME line: " + line}
	}
	return Token{Type: TokenTime, StartRaw: normalizeSpace(m[1]), EndRaw: normalizeSpace(m[2])}, nil
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// scanLocationLine splits a free-text location list line into Identifier
// and Comma tokens, normalizing known acronyms inside each identifier via
// the same acronym table the Match Engine's address sanitizer (C6) uses.
// A bare ENDOFLOCATIONS sentinel, synthesized during pre-processing or
// appearing verbatim, closes the area's location buffer.
func scanLocationLine(line string) []Token {
	var tokens []Token
	before, _, hasSentinel := strings.Cut(line, endOfLocationsSentinel)
	segments := strings.Split(before, ",")
	for idx, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg != "" {
			tokens = append(tokens, Token{Type: TokenIdentifier, Text: location.Sanitize(seg)})
		}
		if idx < len(segments)-1 {
			tokens = append(tokens, Token{Type: TokenComma})
		}
	}
	if hasSentinel {
		tokens = append(tokens, Token{Type: TokenEndOfAreaLocations})
	}
	return tokens
}
