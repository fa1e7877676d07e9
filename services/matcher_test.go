package services

import (
	"testing"

	"college-scraper/models"
)

func TestNameTokens(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"Troy University", []string{"troy"}},
		{"University of Alabama at Birmingham", []string{"alabama", "birmingham"}},
		{"Texas A&M University", []string{"texas", "a", "m"}},
		{"St. John's College", []string{"st", "johns"}},
		{"", nil},
	}

	for _, tt := range tests {
		got := NameTokens(tt.name)
		if len(got) != len(tt.want) {
			t.Errorf("NameTokens(%q) = %v; want tokens %v", tt.name, got, tt.want)
			continue
		}
		for _, tok := range tt.want {
			if _, ok := got[tok]; !ok {
				t.Errorf("NameTokens(%q) missing token %q", tt.name, tok)
			}
		}
	}
}

func TestJaccard(t *testing.T) {
	a := NameTokens("Troy University")
	b := NameTokens("Troy University")
	if Jaccard(a, b) != 1.0 {
		t.Errorf("identical sets: got %.2f, want 1.0", Jaccard(a, b))
	}

	c := NameTokens("Auburn University")
	if Jaccard(a, c) != 0 {
		t.Errorf("disjoint sets: got %.2f, want 0", Jaccard(a, c))
	}

	if Jaccard(nil, nil) != 0 {
		t.Error("two empty sets should score 0, not NaN")
	}
}

func TestNamesMatch(t *testing.T) {
	tests := []struct {
		local     string
		candidate string
		want      bool
	}{
		{"Troy University", "Troy University", true},
		{"Troy University", "University of Troy", true},
		// local tokens a subset of the candidate's
		{"University at Albany", "University at Albany - SUNY", true},
		// explicit aliases in both directions
		{"Virginia Polytechnic Institute and State University", "Virginia Tech", true},
		{"Virginia Tech", "Virginia Polytechnic Institute", true},
		{"Troy University", "Auburn University", false},
		{"", "Troy University", false},
		{"Troy University", "", false},
		// stopword-only names have nothing left to compare
		{"The University", "State College", false},
	}

	for _, tt := range tests {
		if got := NamesMatch(tt.local, tt.candidate); got != tt.want {
			t.Errorf("NamesMatch(%q, %q) = %v; want %v", tt.local, tt.candidate, got, tt.want)
		}
	}
}

func TestCityMatches(t *testing.T) {
	tests := []struct {
		local     string
		candidate string
		want      bool
	}{
		{"Troy", "Troy", true},
		{"Troy", "  troy ", true},
		{"Troy", "Albany", false},
		{"", "", false},
		{"", "Troy", false},
	}

	for _, tt := range tests {
		if got := CityMatches(tt.local, tt.candidate); got != tt.want {
			t.Errorf("CityMatches(%q, %q) = %v; want %v", tt.local, tt.candidate, got, tt.want)
		}
	}
}

func TestLocationMatchesState(t *testing.T) {
	tests := []struct {
		state string
		loc   string
		want  bool
	}{
		{"Alabama", "Troy, AL", true},
		{"Alabama", "Troy, Alabama", true},
		{"Alabama", "Bayamon, PR", false},
		{"New York", "Albany, NY", true},
		{"", "Troy, AL", false},
		{"Alabama", "", false},
	}

	for _, tt := range tests {
		if got := LocationMatchesState(tt.state, tt.loc); got != tt.want {
			t.Errorf("LocationMatchesState(%q, %q) = %v; want %v", tt.state, tt.loc, got, tt.want)
		}
	}
}

func TestFilterByStateFallsBackToAll(t *testing.T) {
	m := NewMatcher(newTestLogger())
	identity := models.SchoolIdentity{Name: "Troy University", State: "Alabama"}
	candidates := []*models.RawCandidate{
		{Name: "Troy University", Location: "San Juan, PR"},
		{Name: "Troy College", Location: "Lima, Peru"},
	}

	pool := m.FilterByState(identity, candidates)
	if len(pool) != 2 {
		t.Errorf("empty filter result should fall back to the full pool, got %d", len(pool))
	}
}

func TestFilterByStateKeepsMatches(t *testing.T) {
	m := NewMatcher(newTestLogger())
	identity := models.SchoolIdentity{Name: "Troy University", State: "Alabama"}
	candidates := []*models.RawCandidate{
		{Name: "Troy University", Location: "Troy, AL"},
		{Name: "Troy College", Location: "Lima, Peru"},
	}

	pool := m.FilterByState(identity, candidates)
	if len(pool) != 1 || pool[0].Location != "Troy, AL" {
		t.Errorf("expected only the Alabama candidate, got %v", pool)
	}
}

func TestOrderCandidates(t *testing.T) {
	m := NewMatcher(newTestLogger())
	identity := models.SchoolIdentity{Name: "Troy University"}
	candidates := []*models.RawCandidate{
		{Name: "Troy Community College", ReviewCount: 12},
		{Name: "Troy University", ReviewCount: 900},
		{Name: "Troy University Online", ReviewCount: 900},
		{Name: "Troy Institute", ReviewCount: 400},
	}

	m.OrderCandidates(identity, candidates)

	if candidates[0].Name != "Troy University" {
		t.Errorf("review-count tie should break toward the closer name, got %q first", candidates[0].Name)
	}
	for i := 1; i < len(candidates); i++ {
		if candidates[i].ReviewCount > candidates[i-1].ReviewCount {
			t.Errorf("candidates not sorted by descending review count at %d", i)
		}
	}
}

func TestMatchByCity(t *testing.T) {
	m := NewMatcher(newTestLogger())
	identity := models.SchoolIdentity{Name: "Troy University", City: "Troy"}
	candidates := []*models.RawCandidate{
		{Name: "Troy University - Dothan", City: "Dothan"},
		{Name: "Troy University", City: "Troy"},
	}

	got := m.MatchByCity(identity, candidates)
	if got == nil || got.City != "Troy" {
		t.Fatalf("expected the exact-city candidate, got %v", got)
	}
}

func TestMatchByCitySingleResultFallback(t *testing.T) {
	m := NewMatcher(newTestLogger())
	identity := models.SchoolIdentity{Name: "Troy University", City: "Troy"}

	only := []*models.RawCandidate{{Name: "Troy University", City: "Montgomery"}}
	if got := m.MatchByCity(identity, only); got == nil {
		t.Error("a single candidate should be accepted even without a city match")
	}

	several := []*models.RawCandidate{
		{Name: "A", City: "Montgomery"},
		{Name: "B", City: "Dothan"},
	}
	if got := m.MatchByCity(identity, several); got != nil {
		t.Errorf("multiple candidates with no city match should yield nil, got %v", got)
	}
}
