package models

// InsightReport holds the aggregates computed over the confirmed school
// records after a run.
type InsightReport struct {
	TotalSchools     int
	RatedSchools     int
	AverageOverall   float64
	AverageHappiness float64
	TopOverall       []*SchoolRecord
	SchoolsByState   map[string]int
}
