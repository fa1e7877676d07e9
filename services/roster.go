package services

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"college-scraper/models"
)

// LoadRoster reads the local college list. The file must have a
// "Name of Institution" column; the state column may be named either
// "State Name" or "State", and a "City" column is used when present.
// The returned identities are the run's read-only source of truth.
func LoadRoster(path string) ([]models.SchoolIdentity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("roster: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("roster: read %q: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("roster: %q is empty", path)
	}

	nameIdx, stateIdx, cityIdx := -1, -1, -1
	for i, col := range rows[0] {
		switch strings.TrimSpace(col) {
		case "Name of Institution":
			nameIdx = i
		case "State Name", "State":
			if stateIdx == -1 {
				stateIdx = i
			}
		case "City":
			cityIdx = i
		}
	}
	if nameIdx == -1 {
		return nil, fmt.Errorf("roster: %q must contain a 'Name of Institution' column", path)
	}
	if stateIdx == -1 {
		return nil, fmt.Errorf("roster: %q must contain a state column named 'State Name' or 'State'", path)
	}

	var roster []models.SchoolIdentity
	for _, row := range rows[1:] {
		if nameIdx >= len(row) {
			continue
		}
		name := strings.TrimSpace(row[nameIdx])
		if name == "" {
			continue
		}

		identity := models.SchoolIdentity{Name: name}
		if stateIdx < len(row) {
			identity.State = strings.TrimSpace(row[stateIdx])
		}
		if cityIdx >= 0 && cityIdx < len(row) {
			identity.City = strings.TrimSpace(row[cityIdx])
		}
		roster = append(roster, identity)
	}

	if len(roster) == 0 {
		return nil, fmt.Errorf("roster: no schools found in %q", path)
	}
	return roster, nil
}
