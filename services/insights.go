package services

import (
	"fmt"
	"sort"
	"strings"

	"college-scraper/models"
	"college-scraper/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(records []*models.SchoolRecord) *models.InsightReport {
	report := &models.InsightReport{
		SchoolsByState: make(map[string]int),
	}

	if len(records) == 0 {
		return report
	}

	report.TotalSchools = len(records)

	var rated []*models.SchoolRecord
	var overallSum float64
	var happinessSum float64
	var happinessCount int

	for _, rec := range records {
		if rec.OverallRating != nil {
			rated = append(rated, rec)
			overallSum += *rec.OverallRating
		}
		if h := rec.CategoryGrades["happiness"]; h != nil {
			happinessSum += *h
			happinessCount++
		}
		if rec.State != "" {
			report.SchoolsByState[rec.State]++
		}
	}

	report.RatedSchools = len(rated)
	if len(rated) > 0 {
		report.AverageOverall = round2(overallSum / float64(len(rated)))
	}
	if happinessCount > 0 {
		report.AverageHappiness = round2(happinessSum / float64(happinessCount))
	}

	// Top 5 by overall rating
	sort.Slice(rated, func(i, j int) bool {
		return *rated[i].OverallRating > *rated[j].OverallRating
	})
	if len(rated) > 5 {
		report.TopOverall = rated[:5]
	} else {
		report.TopOverall = rated
	}

	return report
}

func (s *InsightService) Print(r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 SCHOOL SCRAPE INSIGHTS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Schools scraped : \033[1m%d\033[0m\n", r.TotalSchools)
	fmt.Printf("  With a rating   : \033[1m%d\033[0m\n", r.RatedSchools)
	fmt.Println()

	// Rating stats
	fmt.Printf("\033[1;33m  Rating Statistics\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.RatedSchools > 0 {
		fmt.Printf("  Average overall   : \033[1;32m%.2f\033[0m\n", r.AverageOverall)
		if r.AverageHappiness > 0 {
			fmt.Printf("  Average happiness : \033[1;32m%.2f\033[0m\n", r.AverageHappiness)
		}
	} else {
		fmt.Printf("  No rating data available\n")
	}
	fmt.Println()

	// Top rated
	fmt.Printf("\033[1;33m  Top 5 Rated Schools\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.TopOverall) == 0 {
		fmt.Printf("  No rated schools found\n")
	} else {
		for i, rec := range r.TopOverall {
			name := truncate(rec.Name, 38)
			fmt.Printf("  \033[1m%d.\033[0m %-40s \033[1;32m%.2f ★\033[0m\n",
				i+1, name, *rec.OverallRating)
		}
	}
	fmt.Println()

	// Schools by state
	fmt.Printf("\033[1;33m  Schools by State\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.SchoolsByState) == 0 {
		fmt.Printf("  No state data\n")
	} else {
		type stateCount struct {
			state string
			count int
		}
		var states []stateCount
		for state, cnt := range r.SchoolsByState {
			states = append(states, stateCount{state, cnt})
		}
		sort.Slice(states, func(i, j int) bool {
			if states[i].count != states[j].count {
				return states[i].count > states[j].count
			}
			return states[i].state < states[j].state
		})
		for _, sc := range states {
			bar := strings.Repeat("█", sc.count)
			fmt.Printf("  %-30s %s (%d)\n", truncate(sc.state, 28), bar, sc.count)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
