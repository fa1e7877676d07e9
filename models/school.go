package models

import "strconv"

// Missing is the marker written to CSV for any field that could not be
// scraped. Consumers rely on every row carrying the full column set, so
// absent values are written as this marker, never as a dropped column.
const Missing = "N/A"

// Categories is the closed set of per-category grade columns on a school
// ratings page, in output column order. Unrecognized page categories are
// ignored during extraction.
var Categories = []string{
	"facilities",
	"location",
	"happiness",
	"opportunities",
	"clubs",
	"social",
	"safety",
	"reputation",
	"food",
	"internet",
}

// SchoolIdentity is one school as known to the local input dataset.
// Loaded once per run and read-only afterwards.
type SchoolIdentity struct {
	Name  string
	City  string
	State string
}

// RawCandidate is one unconfirmed search-result entry from a remote site.
// Created per search, consumed by the matcher, then dropped.
type RawCandidate struct {
	ExternalID  string
	Name        string
	City        string
	State       string
	URL         string
	Location    string // raw location text from a search card, when not split into city/state
	ReviewCount int
}

// SchoolRecord is the confirmed, persisted per-school rating snapshot.
// Optional fields are nil when the page did not expose them.
type SchoolRecord struct {
	ID              string
	Name            string
	State           string
	OverallRating   *float64
	NumberOfRatings *int
	CategoryGrades  map[string]*float64
}

// ReviewRecord is one review entry from a school page.
type ReviewRecord struct {
	SchoolName string
	Date       string
	Score      string
	Comment    string
}

// SchoolDetailRecord is one enrichment row from the college-navigator
// site. Every scraped field is independently optional.
type SchoolDetailRecord struct {
	SchoolName                 string
	City                       string
	State                      string
	CampusSetting              *string // Small, Midsize, Large or Remote
	StudentPopulationTotal     *int
	StudentPopulationUndergrad *int
	StudentFacultyRatio        *float64
	RetentionRateAvg           *float64
	AcceptanceRate             *float64
	SATMedianTotal             *int
	ACTMedianComposite         *int
	GradRate4yr                *float64
	AvgAidAwarded              *float64
	TotalExpensesInState       *int
	TotalExpensesOutState      *int
}

// RatingsColumns is the column contract of school_ratings.csv.
var RatingsColumns = append([]string{
	"id", "school_name", "state", "overall_rating", "number_of_ratings",
}, Categories...)

// SchoolIDColumns is the column contract of school_ids.csv.
var SchoolIDColumns = []string{"id", "school_name", "state"}

// ReviewColumns is the column contract of school_reviews.csv.
var ReviewColumns = []string{"school_name", "date", "review_score", "review_comment"}

// DetailColumns is the column contract of school_numeric.csv.
var DetailColumns = []string{
	"school_name", "city", "state",
	"campus_setting",
	"student_population_total",
	"student_population_undergrad",
	"student_to_faculty_ratio",
	"retention_rate_avg",
	"acceptance_rate",
	"sat_median_total",
	"act_median_composite",
	"grad_rate_4yr",
	"avg_aid_awarded",
	"total_expenses_in_state",
	"total_expenses_out_state",
}

// Row renders the record in RatingsColumns order.
func (r *SchoolRecord) Row() []string {
	row := []string{
		orMissing(r.ID),
		orMissing(r.Name),
		orMissing(r.State),
		floatCell(r.OverallRating),
		intCell(r.NumberOfRatings),
	}
	for _, cat := range Categories {
		row = append(row, floatCell(r.CategoryGrades[cat]))
	}
	return row
}

// IDRow renders the identity-mapping row in SchoolIDColumns order.
func (r *SchoolRecord) IDRow() []string {
	return []string{orMissing(r.ID), orMissing(r.Name), orMissing(r.State)}
}

// Row renders the record in ReviewColumns order.
func (r *ReviewRecord) Row() []string {
	return []string{
		orMissing(r.SchoolName),
		orMissing(r.Date),
		orMissing(r.Score),
		orMissing(r.Comment),
	}
}

// Row renders the record in DetailColumns order.
func (r *SchoolDetailRecord) Row() []string {
	return []string{
		orMissing(r.SchoolName),
		orMissing(r.City),
		orMissing(r.State),
		stringCell(r.CampusSetting),
		intCell(r.StudentPopulationTotal),
		intCell(r.StudentPopulationUndergrad),
		floatCell(r.StudentFacultyRatio),
		floatCell(r.RetentionRateAvg),
		floatCell(r.AcceptanceRate),
		intCell(r.SATMedianTotal),
		intCell(r.ACTMedianComposite),
		floatCell(r.GradRate4yr),
		floatCell(r.AvgAidAwarded),
		intCell(r.TotalExpensesInState),
		intCell(r.TotalExpensesOutState),
	}
}

func orMissing(s string) string {
	if s == "" {
		return Missing
	}
	return s
}

func stringCell(v *string) string {
	if v == nil || *v == "" {
		return Missing
	}
	return *v
}

func intCell(v *int) string {
	if v == nil {
		return Missing
	}
	return strconv.Itoa(*v)
}

func floatCell(v *float64) string {
	if v == nil {
		return Missing
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Ptr helpers used by extractors and tests.

func String(s string) *string  { return &s }
func Int(v int) *int           { return &v }
func Float(v float64) *float64 { return &v }
