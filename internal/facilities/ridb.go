package facilities

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

type ridbExport struct {
	RecData []ridbFacility `json:"RECDATA"`
}

type ridbFacility struct {
	// exports are inconsistent about quoting ids
	FacilityID   json.Number `json:"FacilityID"`
	FacilityName string      `json:"FacilityName"`
}

// ParseRIDB reads a facilities export from the Recreation Information
// Database. Entries without a name are skipped.
func ParseRIDB(r io.Reader) ([]Facility, error) {
	var export ridbExport
	err := json.NewDecoder(r).Decode(&export)
	if err != nil {
		return nil, fmt.Errorf("decode facilities export: %w", err)
	}
	if export.RecData == nil {
		return nil, fmt.Errorf("facilities export has no RECDATA")
	}

	result := make([]Facility, 0, len(export.RecData))
	for _, entry := range export.RecData {
		name := strings.TrimSpace(entry.FacilityName)
		if name == "" {
			continue
		}
		id, err := entry.FacilityID.Int64()
		if err != nil {
			return nil, fmt.Errorf("facility %q has invalid id %q: %w", name, entry.FacilityID, err)
		}
		result = append(result, Facility{ID: id, Name: name})
	}
	return result, nil
}
