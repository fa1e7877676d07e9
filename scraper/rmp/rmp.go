// Package rmp scrapes the JavaScript-rendered school ratings site, in
// two modes: a dense ID-range sweep over detail pages, and a directed
// crawl driven by the local college roster (search, identity match,
// ratings, paginated reviews).
package rmp

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// pageSession is the slice of browser.Session the drivers consume.
// Narrowing to an interface here lets driver control flow be exercised
// without a live browser process.
type pageSession interface {
	Navigate(url string) error
	Location() (string, error)
	WaitVisible(selector string, timeout time.Duration) error
	Text(selector string, timeout time.Duration) (string, error)
	Evaluate(js string, out interface{}) error
	Close()
}

const (
	baseURL   = "https://www.ratemyprofessors.com"
	schoolFmt = baseURL + "/school/%d"
	searchFmt = baseURL + "/search/schools?q=%s"
)

// Selectors for the site's obfuscated-but-stable class name fragments.
const (
	selPageMarker   = `div[class*="MiniStickyHeader__MiniNameWrapper"]`
	selSchoolName   = `div[class*="MiniStickyHeader__MiniNameWrapper"]`
	selSearchCard   = `a[class*="SchoolCard__StyledSchoolCard"]`
	selReviewHolder = `div[class*="SchoolRatingContainer"]`
)

// SchoolURL returns the detail-page URL for a numeric school ID.
func SchoolURL(id int) string {
	return fmt.Sprintf(schoolFmt, id)
}

// SearchURL returns the school-search URL for a query string.
func SearchURL(query string) string {
	return fmt.Sprintf(searchFmt, url.QueryEscape(query))
}

// SchoolIDFromURL extracts the numeric id from a detail-page URL like
// https://.../school/1299, or "" when the URL is not a school page.
func SchoolIDFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	var parts []string
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) >= 2 && parts[0] == "school" {
		return parts[1]
	}
	return ""
}

// IsSchoolPage reports whether the (post-redirect) URL still points at a
// school detail page. Invalid IDs redirect elsewhere.
func IsSchoolPage(rawURL string) bool {
	return strings.Contains(rawURL, "/school/")
}
