// Package sourcescrape scrapes the utility's bulletin listing page for the
// Source Registry (C2).
package sourcescrape

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/net/html"

	"github.com/kplc/bulletin-notify/pkg/apperr"
)

// bulletinURLPattern is spec.md §4.2's acceptance pattern for a scraped
// bulletin link.
var bulletinURLPattern = regexp.MustCompile(`^https://(www\.)?kplc\.co\.ke/img/full/.*\.pdf$`)

// Scraper fetches the listing page and extracts candidate bulletin URLs.
type Scraper struct {
	listingURL string
	httpClient *http.Client
	now        func() time.Time
}

func NewScraper(listingURL string) *Scraper {
	return &Scraper{
		listingURL: listingURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		now:        time.Now,
	}
}

// Scrape returns every bulletin URL on the listing page matching the
// utility's PDF naming convention and dated within the current calendar
// year.
func (s *Scraper) Scrape(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.listingURL, nil)
	if err != nil {
		return nil, apperr.Unexpected("build listing page request", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Unexpected("fetch listing page", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, apperr.Unexpected(fmt.Sprintf("listing page returned %d", resp.StatusCode), nil)
	}
	if resp.StatusCode >= 400 {
		return nil, apperr.Expected(fmt.Sprintf("listing page returned %d", resp.StatusCode), nil)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, apperr.Unexpected("parse listing page html", err)
	}

	year := strconv.Itoa(s.now().Year())
	return FilterCandidates(ExtractLinks(doc), year), nil
}

// ExtractLinks walks the DOM tree for every anchor's href attribute.
func ExtractLinks(doc *html.Node) []string {
	var hrefs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					hrefs = append(hrefs, attr.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return hrefs
}

// FilterCandidates keeps only links matching the bulletin URL pattern and
// containing year as a substring, the cheapest proxy for "dated within the
// current calendar year" available without downloading each PDF.
func FilterCandidates(hrefs []string, year string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, href := range hrefs {
		if !bulletinURLPattern.MatchString(href) {
			continue
		}
		if !containsYear(href, year) {
			continue
		}
		if seen[href] {
			continue
		}
		seen[href] = true
		out = append(out, href)
	}
	return out
}

func containsYear(url, year string) bool {
	for i := 0; i+len(year) <= len(url); i++ {
		if url[i:i+len(year)] == year {
			return true
		}
	}
	return false
}
