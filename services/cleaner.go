package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"college-scraper/models"
	"college-scraper/utils"
)

var (
	// scoreRegexp captures a numeric rating in the 0.0–5.0 range
	scoreRegexp = regexp.MustCompile(`\b([0-5](?:\.\d{1,2})?)\b`)
)

// Cleaner normalises harvested reviews before they hit the sinks.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean normalises a batch of reviews and drops the unusable ones.
// A review survives when it carries a date or a score; a bare comment
// with neither is almost always a stray page element.
func (c *Cleaner) Clean(raw []*models.ReviewRecord) []*models.ReviewRecord {
	result := make([]*models.ReviewRecord, 0, len(raw))

	for _, r := range raw {
		rev := &models.ReviewRecord{
			SchoolName: r.SchoolName,
			Date:       normaliseText(r.Date),
			Score:      c.parseScore(r.Score),
			Comment:    normaliseText(r.Comment),
		}
		if rev.Date == "" && rev.Score == "" {
			c.logger.Debug("[cleaner] Dropping review with no date or score: %.40q", r.Comment)
			continue
		}
		result = append(result, rev)
	}

	if dropped := len(raw) - len(result); dropped > 0 {
		c.logger.Debug("[cleaner] Cleaned %d → %d reviews (dropped %d)",
			len(raw), len(result), dropped)
	}
	return result
}

// parseScore extracts a 0.0–5.0 numeric rating and re-renders it in a
// canonical form. Unparsable scores come back empty.
func (c *Cleaner) parseScore(raw string) string {
	match := scoreRegexp.FindStringSubmatch(raw)
	if len(match) < 2 {
		return ""
	}
	val, err := strconv.ParseFloat(match[1], 64)
	if err != nil || val < 0 || val > 5 {
		return ""
	}
	return strconv.FormatFloat(val, 'f', -1, 64)
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
