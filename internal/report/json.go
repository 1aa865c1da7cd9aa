package report

import (
	"encoding/json"

	"campcheck/internal/availability"
	"campcheck/internal/checker"
)

// JSON renders a mapping of park id to the ranges of each available site,
// parks without availability are left out.
func JSON(results []checker.ParkResult) (string, bool, error) {
	out := make(map[int64]map[availability.SiteID][]availability.ConsecutiveRange)
	for _, result := range results {
		if result.Report.Available == 0 {
			continue
		}
		out[result.ParkID] = result.Report.Ranges
	}

	buff, err := json.Marshal(out)
	if err != nil {
		return "", false, err
	}
	return string(buff), len(out) > 0, nil
}
