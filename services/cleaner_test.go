package services

import (
	"testing"

	"college-scraper/models"
	"college-scraper/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger() }

func TestCleanerParseScore(t *testing.T) {
	c := NewCleaner(newTestLogger())

	tests := []struct {
		raw  string
		want string
	}{
		{"4.85", "4.85"},
		{"5.0", "5"},
		{"3.5 out of 5", "3.5"},
		{"", ""},
		{"Awesome", ""},
		{"6.0", ""},
	}

	for _, tt := range tests {
		got := c.parseScore(tt.raw)
		if got != tt.want {
			t.Errorf("parseScore(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestCleanerDropsBareComments(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.ReviewRecord{
		{SchoolName: "Troy University", Comment: "stray footer text"},
		{SchoolName: "Troy University", Date: "Jan 5th, 2023", Score: "4.0", Comment: "Great campus"},
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 review after dropping bare comment, got %d", len(cleaned))
	}
	if cleaned[0].Score != "4" {
		t.Errorf("score not canonicalised: got %q", cleaned[0].Score)
	}
}

func TestCleanerCollapsesWhitespace(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.ReviewRecord{
		{SchoolName: "X", Date: " May 1st,  2022 ", Score: "3.5", Comment: "line one\n\t line two"},
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 review, got %d", len(cleaned))
	}
	if cleaned[0].Date != "May 1st, 2022" {
		t.Errorf("date = %q", cleaned[0].Date)
	}
	if cleaned[0].Comment != "line one line two" {
		t.Errorf("comment = %q", cleaned[0].Comment)
	}
}
