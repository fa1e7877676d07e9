package rmp

import (
	"fmt"
	"strconv"
	"strings"

	"college-scraper/models"
)

// Raw payloads pulled out of the page with one Evaluate call each,
// following the extract-as-JSON pattern: the JavaScript side only reads
// text out of the DOM; all parsing to typed values happens here, where a
// bad field degrades to nil instead of failing the record.

type pagePayload struct {
	Name       string            `json:"name"`
	Location   string            `json:"location"`
	Overall    string            `json:"overall"`
	NumRatings string            `json:"numRatings"`
	Categories []categoryPayload `json:"categories"`
}

type categoryPayload struct {
	Title string `json:"title"`
	Grade string `json:"grade"`
}

type cardPayload struct {
	Name     string `json:"name"`
	Reviews  string `json:"reviews"`
	URL      string `json:"url"`
	Location string `json:"location"`
}

type reviewPayload struct {
	Date    string `json:"date"`
	Score   string `json:"score"`
	Comment string `json:"comment"`
}

const pagePayloadJS = `
	(function() {
		function text(sel) {
			var el = document.querySelector(sel);
			return el ? el.textContent.trim() : '';
		}
		var cats = [];
		var containers = document.querySelectorAll('div[class*="CategoryGradeContainer"]');
		for (var i = 0; i < containers.length; i++) {
			var title = containers[i].querySelector('div[class*="CategoryTitle"]');
			var grade = containers[i].querySelector('div[class*="GradeSquare"]');
			if (title && grade) {
				cats.push({title: title.textContent.trim(), grade: grade.textContent.trim()});
			}
		}
		return {
			name: text('div[class*="MiniStickyHeader__MiniNameWrapper"]'),
			location: text('div[class*="MiniStickyHeader__MiniLocationWrapper"]') ||
			          text('span[class*="HeaderDescription__StyledCityState"]'),
			overall: text('div[class*="OverallRating__Number"]'),
			numRatings: text('div[class*="SchoolRatingsContainer__SchoolRatingsCount"]'),
			categories: cats
		};
	})()
`

const searchCardsJS = `
	(function() {
		var out = [];
		var cards = document.querySelectorAll('a[class*="SchoolCard__StyledSchoolCard"]');
		for (var i = 0; i < cards.length; i++) {
			var card = cards[i];
			var label = card.getAttribute('aria-label') || '';
			var count = card.querySelector('div[class*="CardNumRating__CardNumRatingCount"]');
			var loc = card.querySelector('div[class*="CardSchoolLocation"]');
			out.push({
				name: label.replace('Link to school page for ', ''),
				reviews: count ? count.textContent.trim() : '',
				url: card.href || '',
				location: loc ? loc.textContent.trim() : ''
			});
		}
		return out;
	})()
`

// reviewsFromJS extracts review containers starting at the given index,
// so containers already harvested before a "show more" click are not
// re-read.
func reviewsFromJS(start int) string {
	return fmt.Sprintf(`
	(function(start) {
		function text(root, sel) {
			var el = root.querySelector(sel);
			return el ? el.textContent.trim() : '';
		}
		var out = [];
		var containers = document.querySelectorAll('div[class*="SchoolRatingContainer"]');
		for (var i = start; i < containers.length; i++) {
			var c = containers[i];
			var score = text(c, 'div[class*="GradeSquare"]');
			var comment = text(c, 'div[class*="RatingComment"]');
			if (!score) {
				score = text(c, 'div[class*="CardNumRating__CardNumRatingNumber"]');
				comment = text(c, 'div[class*="Comments__StyledComments"]');
			}
			out.push({
				date: text(c, 'div[class*="TimeStamp"]'),
				score: score,
				comment: comment
			});
		}
		return out;
	})(%d)
`, start)
}

const reviewCountJS = `document.querySelectorAll('div[class*="SchoolRatingContainer"]').length`

const closePopupJS = `
	(function() {
		var btn = document.querySelector('button[class*="StyledCloseButton"]');
		if (btn) { btn.click(); return true; }
		return false;
	})()
`

const showMoreJS = `
	(function() {
		var btns = document.querySelectorAll('button');
		for (var i = 0; i < btns.length; i++) {
			if (btns[i].textContent.trim() === 'Show More') {
				btns[i].click();
				return true;
			}
		}
		return false;
	})()
`

// ParseSchoolPage turns a raw page payload into a typed record. Every
// field parses independently; a missing or garbled field is nil.
func ParseSchoolPage(id string, p pagePayload) *models.SchoolRecord {
	rec := &models.SchoolRecord{
		ID:             id,
		Name:           strings.TrimSpace(p.Name),
		State:          ParseCityStateLine(p.Location),
		OverallRating:  parseRating(p.Overall),
		CategoryGrades: make(map[string]*float64),
	}

	rec.NumberOfRatings = parseRatingCount(p.NumRatings)

	known := make(map[string]struct{}, len(models.Categories))
	for _, cat := range models.Categories {
		known[cat] = struct{}{}
	}
	for _, c := range p.Categories {
		title := strings.ToLower(strings.TrimSpace(c.Title))
		if _, ok := known[title]; !ok {
			continue
		}
		if grade := parseRating(c.Grade); grade != nil {
			rec.CategoryGrades[title] = grade
		}
	}

	return rec
}

// ParseCityStateLine validates a "City, ST" location line and returns it
// trimmed, or "" when the trailing part is not a two-letter state code.
func ParseCityStateLine(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var parts []string
	for _, p := range strings.Split(text, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return ""
	}

	last := parts[len(parts)-1]
	if len(last) != 2 || !isAlpha(last) {
		return ""
	}
	return text
}

// ParseSearchCards converts raw card payloads into candidates. Cards
// missing a name, URL or parseable review count are skipped.
func ParseSearchCards(cards []cardPayload) []*models.RawCandidate {
	var out []*models.RawCandidate
	for _, c := range cards {
		if c.Name == "" || c.URL == "" {
			continue
		}
		count, ok := parseReviewCount(c.Reviews)
		if !ok {
			continue
		}
		out = append(out, &models.RawCandidate{
			ExternalID:  SchoolIDFromURL(c.URL),
			Name:        c.Name,
			URL:         c.URL,
			Location:    c.Location,
			ReviewCount: count,
		})
	}
	return out
}

// ParseReviews converts raw review payloads, dropping entries where both
// the date and score came back empty (a half-rendered container).
func ParseReviews(schoolName string, payloads []reviewPayload) []*models.ReviewRecord {
	var out []*models.ReviewRecord
	for _, p := range payloads {
		if strings.TrimSpace(p.Date) == "" && strings.TrimSpace(p.Score) == "" {
			continue
		}
		out = append(out, &models.ReviewRecord{
			SchoolName: schoolName,
			Date:       strings.TrimSpace(p.Date),
			Score:      strings.TrimSpace(p.Score),
			Comment:    strings.TrimSpace(p.Comment),
		})
	}
	return out
}

func parseRating(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return models.Float(v)
}

// parseRatingCount handles strings like "1,234 Ratings".
func parseRatingCount(s string) *int {
	s = strings.ReplaceAll(s, ",", "")
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return nil
	}
	v, err := strconv.Atoi(b.String())
	if err != nil {
		return nil
	}
	return models.Int(v)
}

// parseReviewCount handles search-card strings like "1,234 ratings".
func parseReviewCount(s string) (int, bool) {
	v := parseRatingCount(s)
	if v == nil {
		return 0, false
	}
	return *v, true
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}
