// Package navigator scrapes the static college-navigator site: search
// results for identity resolution and per-school detail pages for the
// numeric enrichment columns.
package navigator

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"college-scraper/models"
)

// BaseURL is the root of the college-navigator site. A variable so
// tests can point the pipeline at a local server.
var BaseURL = "https://nces.ed.gov/collegenavigator/"

const resultsTableID = "ctl00_cphCollegeNavBody_ucResultsMain_tblResults"

// BuildSearchURL returns the search-results URL for a school name.
func BuildSearchURL(name string) string {
	return BaseURL + "?q=" + url.QueryEscape(name)
}

// ParseSearchResults extracts candidate rows from a search-results page.
// Rows that cannot be parsed are skipped, never fatal; an absent results
// table yields an empty slice.
func ParseSearchResults(doc *goquery.Document) []*models.RawCandidate {
	var results []*models.RawCandidate

	table := doc.Find("table#" + resultsTableID)
	if table.Length() == 0 {
		return results
	}

	table.Find("tr").FilterFunction(func(_ int, row *goquery.Selection) bool {
		class, _ := row.Attr("class")
		return strings.HasPrefix(class, "results")
	}).Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a").FilterFunction(func(_ int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			return strings.Contains(href, "id=")
		}).First()
		if link.Length() == 0 {
			return
		}

		href, _ := link.Attr("href")
		cand := &models.RawCandidate{
			Name:       strings.TrimSpace(link.Text()),
			ExternalID: idFromHref(href),
			URL:        resolveURL(href),
		}

		// The containing cell lists the name and then "City, State" as
		// separate text chunks; the last comma-bearing chunk is the
		// location line.
		lines := textChunks(link.Closest("td"))
		if len(lines) >= 2 {
			last := lines[len(lines)-1]
			if city, state, ok := strings.Cut(last, ","); ok {
				cand.City = strings.TrimSpace(city)
				cand.State = strings.TrimSpace(state)
				cand.Location = strings.TrimSpace(last)
			}
		}

		results = append(results, cand)
	})

	return results
}

func idFromHref(href string) string {
	_, after, ok := strings.Cut(href, "id=")
	if !ok {
		return ""
	}
	id, _, _ := strings.Cut(after, "&")
	return id
}

func resolveURL(href string) string {
	base, err := url.Parse(BaseURL)
	if err != nil {
		return href
	}
	rel, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(rel).String()
}

// textChunks collects every non-empty text node under the selection, in
// document order, each trimmed. Mirrors a get-text-with-separators walk
// so multi-line table cells can be split without caring about markup.
func textChunks(sel *goquery.Selection) []string {
	var chunks []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				chunks = append(chunks, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return chunks
}
