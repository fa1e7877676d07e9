package services

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "colleges.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRoster(t *testing.T) {
	path := writeRoster(t, "Name of Institution,City,State Name\n"+
		"Troy University,Troy,Alabama\n"+
		"University at Albany,Albany,New York\n"+
		",,\n")

	roster, err := LoadRoster(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(roster) != 2 {
		t.Fatalf("expected 2 schools (blank row skipped), got %d", len(roster))
	}
	if roster[0].Name != "Troy University" || roster[0].City != "Troy" || roster[0].State != "Alabama" {
		t.Errorf("first identity wrong: %+v", roster[0])
	}
}

func TestLoadRosterAltStateColumn(t *testing.T) {
	path := writeRoster(t, "Name of Institution,State\nTroy University,Alabama\n")

	roster, err := LoadRoster(path)
	if err != nil {
		t.Fatal(err)
	}
	if roster[0].State != "Alabama" {
		t.Errorf("State: got %q, want Alabama", roster[0].State)
	}
	if roster[0].City != "" {
		t.Errorf("City should be empty when the column is absent, got %q", roster[0].City)
	}
}

func TestLoadRosterMissingNameColumn(t *testing.T) {
	path := writeRoster(t, "Institution,State\nTroy University,Alabama\n")

	if _, err := LoadRoster(path); err == nil {
		t.Error("expected an error for a roster without the name column")
	}
}

func TestLoadRosterNoSchools(t *testing.T) {
	path := writeRoster(t, "Name of Institution,State Name\n")

	if _, err := LoadRoster(path); err == nil {
		t.Error("expected an error for a header-only roster")
	}
}
