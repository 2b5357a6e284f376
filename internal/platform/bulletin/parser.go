// Package bulletin implements the Bulletin Parser (C1): PDF-extracted text
// in, an ordered list of normalized outage areas out.
package bulletin

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kplc/bulletin-notify/internal/domain/outage"
)

var clockPattern = regexp.MustCompile(`^(\d{1,2})[.:](\d{2})\s*([AP])\.?M\.?$`)
var digitPattern = regexp.MustCompile(`^\d+$`)

var nairobi = mustLoadNairobi()

func mustLoadNairobi() *time.Location {
	loc, err := time.LoadLocation("Africa/Nairobi")
	if err != nil {
		return time.UTC
	}
	return loc
}

// Parse runs the full C1 pipeline over raw PDF-extracted text: pre-
// processing, comment stripping, scanning, recursive-descent parsing, and
// post-processing (including date/time resolution against now). now is
// expected in Africa/Nairobi or convertible to it.
func Parse(text string, now time.Time) ([]outage.ParsedArea, error) {
	pre := Preprocess(text)
	stripped := StripComments(pre)
	tokens, err := Scan(stripped)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens, now: now.In(nairobi)}
	return p.parseBulletin()
}

type parser struct {
	tokens []Token
	pos    int
	now    time.Time
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(tt TokenType) (Token, error) {
	if p.peek().Type != tt {
		if p.peek().Type == TokenEOF {
			return Token{}, &ErrUnexpectedEOF{Context: tt.String()}
		}
		return Token{}, &ErrUnexpectedToken{Found: p.peek().Type, Expected: tt}
	}
	return p.next(), nil
}

// Bulletin := Region+
func (p *parser) parseBulletin() ([]outage.ParsedArea, error) {
	if p.peek().Type != TokenRegion {
		return nil, &ErrUnexpectedToken{Found: p.peek().Type, Expected: TokenRegion}
	}
	var areas []outage.ParsedArea
	for p.peek().Type == TokenRegion {
		regionAreas, err := p.parseRegion()
		if err != nil {
			return nil, err
		}
		areas = append(areas, regionAreas...)
	}
	return areas, nil
}

// Region := Region(name) County+
func (p *parser) parseRegion() ([]outage.ParsedArea, error) {
	if _, err := p.expect(TokenRegion); err != nil {
		return nil, err
	}
	if p.peek().Type != TokenCounty {
		return nil, &ErrUnexpectedToken{Found: p.peek().Type, Expected: TokenCounty}
	}
	var areas []outage.ParsedArea
	for p.peek().Type == TokenCounty {
		countyAreas, err := p.parseCounty()
		if err != nil {
			return nil, err
		}
		areas = append(areas, countyAreas...)
	}
	return areas, nil
}

// County := County(name) Area+
func (p *parser) parseCounty() ([]outage.ParsedArea, error) {
	countyTok, err := p.expect(TokenCounty)
	if err != nil {
		return nil, err
	}
	countyName := sanitizeRegion(countyTok.Text)

	if p.peek().Type != TokenArea {
		return nil, &ErrUnexpectedToken{Found: p.peek().Type, Expected: TokenArea}
	}
	var areas []outage.ParsedArea
	for p.peek().Type == TokenArea {
		parsed, err := p.parseArea(countyName)
		if err != nil {
			return nil, err
		}
		areas = append(areas, parsed...)
	}
	return areas, nil
}

// Area := Area(name) Date Time Location* EndOfAreaLocations
func (p *parser) parseArea(countyName string) ([]outage.ParsedArea, error) {
	areaTok, err := p.expect(TokenArea)
	if err != nil {
		return nil, err
	}
	dateTok, err := p.expect(TokenDate)
	if err != nil {
		return nil, err
	}
	timeTok, err := p.expect(TokenTime)
	if err != nil {
		return nil, err
	}

	locations, err := p.parseLocations()
	if err != nil {
		return nil, err
	}

	from, to, err := resolveWindow(dateTok, timeTok)
	if err != nil {
		return nil, err
	}
	if !to.After(p.now) {
		// A rejected area (window already elapsed) is dropped, not an error.
		return nil, nil
	}

	areaName := sanitizeRegion(areaTok.Text)
	var lineNames []string
	for _, loc := range locations {
		lineNames = append(lineNames, expandPhases(sanitizeRegion(loc))...)
	}

	var out []outage.ParsedArea
	for _, expanded := range expandPhases(areaName) {
		out = append(out, outage.ParsedArea{
			CountyName: countyName,
			AreaName:   expanded,
			LineNames:  lineNames,
			From:       from,
			To:         to,
		})
	}
	return out, nil
}

// parseLocations accumulates Identifier tokens into a buffer that resets
// on Comma, unless the token after the comma is a pure digit (so
// "Phase 1, 2" stays together), flushing on the closing sentinel.
func (p *parser) parseLocations() ([]string, error) {
	var locations []string
	var buf []string
	flush := func() {
		if len(buf) > 0 {
			locations = append(locations, strings.Join(buf, " "))
			buf = nil
		}
	}

	for {
		switch p.peek().Type {
		case TokenIdentifier:
			buf = append(buf, p.next().Text)
		case TokenComma:
			p.next()
			if p.peek().Type == TokenIdentifier && digitPattern.MatchString(p.peek().Text) {
				continue
			}
			flush()
		case TokenEndOfAreaLocations:
			p.next()
			flush()
			return locations, nil
		case TokenEOF:
			return nil, &ErrUnexpectedEOF{Context: "area locations"}
		default:
			// Next area/county/region heading begins without an explicit
			// sentinel; treat it as the end of this area's locations.
			flush()
			return locations, nil
		}
	}
}

func resolveWindow(dateTok, timeTok Token) (time.Time, time.Time, error) {
	startH, startM, err := parseClockTime(timeTok.StartRaw)
	if err != nil {
		return time.Time{}, time.Time{}, &ErrValidation{Context: "start time: " + err.Error()}
	}
	endH, endM, err := parseClockTime(timeTok.EndRaw)
	if err != nil {
		return time.Time{}, time.Time{}, &ErrValidation{Context: "end time: " + err.Error()}
	}

	from := time.Date(dateTok.Year, time.Month(dateTok.Month), dateTok.Day, startH, startM, 0, 0, nairobi)
	to := time.Date(dateTok.Year, time.Month(dateTok.Month), dateTok.Day, endH, endM, 0, 0, nairobi)
	if !to.After(from) {
		return time.Time{}, time.Time{}, &ErrValidation{Context: "end time must be after start time"}
	}
	return from, to, nil
}

func parseClockTime(raw string) (int, int, error) {
	m := clockPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(raw)))
	if m == nil {
		return 0, 0, &ErrValidation{Context: "unparsable clock time " + raw}
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour == 12 {
		hour = 0
	}
	if m[3] == "P" {
		hour += 12
	}
	return hour, minute, nil
}
