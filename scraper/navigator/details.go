package navigator

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"college-scraper/models"
)

// Every extractor in this file follows the same contract: locate the
// labeled region, read the raw text, parse to a typed value, and return
// nil on any lookup or parse failure. A missing field degrades to nil,
// never fails the record.

var (
	digitRun       = regexp.MustCompile(`[\d,]+`)
	floatRun       = regexp.MustCompile(`[\d.]+`)
	undergradRun   = regexp.MustCompile(`(?i)\(([\d,]+)\s*undergraduate`)
	ratioRun       = regexp.MustCompile(`([\d.]+)\s*to\s*1`)
	chartDataSplit = regexp.MustCompile(`(?i)%3b|;`)
)

var campusSettings = []string{"Small", "Midsize", "Large", "Remote"}

// ExtractDetails parses one school detail page into a record. The
// caller fills in the identity columns.
func ExtractDetails(doc *goquery.Document) *models.SchoolDetailRecord {
	rec := &models.SchoolDetailRecord{}

	rec.CampusSetting = ExtractCampusSetting(doc)
	rec.StudentPopulationTotal, rec.StudentPopulationUndergrad = ExtractStudentPopulation(doc)
	rec.StudentFacultyRatio = ExtractFacultyRatio(doc)
	rec.RetentionRateAvg = ExtractRetentionAvg(doc)
	rec.AcceptanceRate = ExtractAcceptanceRate(doc)
	rec.SATMedianTotal, rec.ACTMedianComposite = ExtractTestScores(doc)
	rec.GradRate4yr = ExtractGradRate4yr(doc)
	rec.AvgAidAwarded = ExtractAvgAidAwarded(doc)
	rec.TotalExpensesInState, rec.TotalExpensesOutState = ExtractTotalExpenses(doc)

	return rec
}

// labeledValue finds the first cell matching the selector whose text
// contains the label (case-insensitive) and returns the text of the
// adjacent sibling cell. First match wins.
func labeledValue(doc *goquery.Document, selector, label string) string {
	labelLower := strings.ToLower(label)
	cell := doc.Find(selector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		// Leaf cells only, so a wrapping layout cell that happens to
		// contain the label text deeper down never wins.
		return s.Find("td").Length() == 0 &&
			strings.Contains(strings.ToLower(s.Text()), labelLower)
	}).First()
	if cell.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(cell.NextFiltered("td").Text())
}

// ExtractCampusSetting maps the "Campus setting:" row onto the closed
// Small/Midsize/Large/Remote set.
func ExtractCampusSetting(doc *goquery.Document) *string {
	raw := labeledValue(doc, "td.srb", "Campus setting:")
	if raw == "" {
		return nil
	}
	rawLower := strings.ToLower(raw)
	for _, setting := range campusSettings {
		if strings.Contains(rawLower, strings.ToLower(setting)) {
			return models.String(setting)
		}
	}
	return nil
}

// ExtractStudentPopulation reads total and undergraduate enrollment from
// the "Student population:" row.
func ExtractStudentPopulation(doc *goquery.Document) (total, undergrad *int) {
	raw := labeledValue(doc, "td.srb", "Student population:")
	if raw == "" {
		return nil, nil
	}

	total = parseIntLoose(digitRun.FindString(raw))
	if m := undergradRun.FindStringSubmatch(raw); len(m) == 2 {
		undergrad = parseIntLoose(m[1])
	}
	return total, undergrad
}

// ExtractFacultyRatio parses the "Student-to-faculty ratio:" row, e.g.
// "16 to 1" → 16.
func ExtractFacultyRatio(doc *goquery.Document) *float64 {
	raw := labeledValue(doc, "td.srb", "Student-to-faculty ratio:")
	if raw == "" {
		return nil
	}
	m := ratioRun.FindStringSubmatch(raw)
	if len(m) != 2 {
		return nil
	}
	return parseFloatLoose(m[1])
}

// ExtractRetentionAvg reads the retention rates chart. The values are
// encoded as a semicolon-separated "data" query parameter on the chart
// image URL: full-time rate first, part-time second. The result is the
// mean of both when both are present, else whichever one is.
func ExtractRetentionAvg(doc *goquery.Document) *float64 {
	header := doc.Find("th").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), "Retention Rates")
	}).First()
	if header.Length() == 0 {
		return nil
	}

	parts := chartDataValues(header.Closest("table"))
	var fullTime, partTime *int
	if len(parts) >= 1 {
		fullTime = parseStrictInt(parts[0])
	}
	if len(parts) >= 2 {
		partTime = parseStrictInt(parts[1])
	}

	switch {
	case fullTime != nil && partTime != nil:
		return models.Float(float64(*fullTime+*partTime) / 2)
	case fullTime != nil:
		return models.Float(float64(*fullTime))
	case partTime != nil:
		return models.Float(float64(*partTime))
	}
	return nil
}

// ExtractAcceptanceRate parses the "Percent admitted" table row.
func ExtractAcceptanceRate(doc *goquery.Document) *float64 {
	raw := labeledValue(doc, "td", "Percent admitted")
	if raw == "" {
		return nil
	}
	return parseFloatLoose(floatRun.FindString(raw))
}

// ExtractTestScores reads the admissions "Test Scores" table and returns
// the combined SAT median and the ACT composite median. The SAT total is
// EBRW + Math only when both components are present; no partial sums.
func ExtractTestScores(doc *goquery.Document) (satTotal, actComposite *int) {
	var satEBRW, satMath *int

	doc.Find("div#admsns table.tabular").Each(func(_ int, table *goquery.Selection) {
		if !strings.Contains(table.Find("thead").Text(), "Test Scores") {
			return
		}

		table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
			tds := tr.Find("td")
			if tds.Length() < 4 {
				return
			}
			label := strings.ToLower(strings.TrimSpace(tds.Eq(0).Text()))
			median := parseIntLoose(tds.Eq(2).Text())
			if median == nil {
				return
			}

			switch {
			case strings.Contains(label, "reading"):
				satEBRW = median
			case strings.Contains(label, "sat math"):
				satMath = median
			case strings.Contains(label, "act composite"):
				actComposite = median
			}
		})
	})

	if satEBRW != nil && satMath != nil {
		satTotal = models.Int(*satEBRW + *satMath)
	}
	return satTotal, actComposite
}

// ExtractGradRate4yr reads the bachelor's graduation rates chart; the
// first positional value of the chart data is the 4-year rate.
func ExtractGradRate4yr(doc *goquery.Document) *float64 {
	header := doc.Find("div.tablenames").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), "Bachelor's Degree Graduation Rates")
	}).First()
	if header.Length() == 0 {
		return nil
	}

	table := header.NextAllFiltered("table.graphtabs").First()
	if table.Length() == 0 {
		table = header.Parent().Find("table.graphtabs").First()
	}

	parts := chartDataValues(table)
	if len(parts) == 0 {
		return nil
	}
	if v := parseStrictInt(parts[0]); v != nil {
		return models.Float(float64(*v))
	}
	return nil
}

// ExtractAvgAidAwarded averages every dollar amount in the last column of
// the financial-aid tables, rounded to cents.
func ExtractAvgAidAwarded(doc *goquery.Document) *float64 {
	var amounts []int

	doc.Find("div#finaid table.tabular tr").Each(func(_ int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() < 5 {
			return
		}
		text := strings.TrimSpace(tds.Eq(tds.Length() - 1).Text())
		if !strings.Contains(text, "$") {
			return
		}
		if v := parseIntLoose(text); v != nil {
			amounts = append(amounts, *v)
		}
	})

	if len(amounts) == 0 {
		return nil
	}
	var sum int
	for _, v := range amounts {
		sum += v
	}
	avg := float64(sum) / float64(len(amounts))
	return models.Float(math.Round(avg*100) / 100)
}

// ExtractTotalExpenses reads the on-campus "Total Expenses" figures for
// the most recent year, in-state and out-of-state. The table interleaves
// "In-state" / "Out-of-state" section rows with per-residence rows.
func ExtractTotalExpenses(doc *goquery.Document) (inState, outState *int) {
	section := doc.Find("div#expenses")
	if section.Length() == 0 {
		return nil, nil
	}

	headerCell := section.Find("td").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), "Total Expenses")
	}).First()
	if headerCell.Length() == 0 {
		return nil, nil
	}

	headerRow := headerCell.Parent()
	// Last column is a spacer; the most recent year sits one before it.
	lastYearIdx := headerRow.Find("td").Length() - 2
	if lastYearIdx < 0 {
		return nil, nil
	}

	mode := ""
	headerRow.NextAll().Each(func(_ int, tr *goquery.Selection) {
		first := tr.Find("td").First()
		if first.Length() == 0 {
			return
		}

		switch strings.TrimSpace(first.Text()) {
		case "In-state":
			mode = "in"
			return
		case "Out-of-state":
			mode = "out"
			return
		case "On Campus":
			if mode == "" {
				return
			}
			tds := tr.Find("td")
			if tds.Length() <= lastYearIdx {
				mode = ""
				return
			}
			v := parseIntLoose(tds.Eq(lastYearIdx).Text())
			if v != nil {
				if mode == "in" {
					inState = v
				} else {
					outState = v
				}
			}
			mode = ""
		}
	})

	return inState, outState
}

// chartDataValues pulls the positional values out of a chart image URL
// inside the table: the "data" query parameter, split on literal or
// percent-encoded semicolons.
func chartDataValues(table *goquery.Selection) []string {
	if table == nil || table.Length() == 0 {
		return nil
	}

	img := table.Find("img").FilterFunction(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		return strings.Contains(src, "data=")
	}).First()
	if img.Length() == 0 {
		return nil
	}

	src, _ := img.Attr("src")
	u, err := url.Parse(src)
	if err != nil {
		return nil
	}
	data := u.Query().Get("data")
	if data == "" {
		return nil
	}
	return chartDataSplit.Split(data, -1)
}

// parseIntLoose strips every non-digit character and parses what is
// left. Text with no digits parses to nil, not zero.
func parseIntLoose(s string) *int {
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

// parseStrictInt parses a string that must be entirely digits.
func parseStrictInt(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return models.Int(v)
}

// parseFloatLoose parses the first decimal-looking run in the string.
func parseFloatLoose(s string) *float64 {
	m := floatRun.FindString(s)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.Trim(m, "."), 64)
	if err != nil {
		return nil
	}
	return models.Float(v)
}
