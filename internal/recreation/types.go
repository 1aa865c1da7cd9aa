package recreation

import (
	"fmt"
	"strconv"

	"campcheck/internal/availability"
)

// the JSON returned by /api/camps/availability/campground/{park_id}/month
type monthResponse struct {
	Campsites map[string]campsiteResponse `json:"campsites"`
}

type campsiteResponse struct {
	CampsiteID     string            `json:"campsite_id"`
	CampsiteType   string            `json:"campsite_type"`
	Availabilities map[string]string `json:"availabilities"`
}

// the JSON returned by /api/camps/campgrounds/{park_id}
type campgroundResponse struct {
	Campground struct {
		FacilityName string `json:"facility_name"`
	} `json:"campground"`
}

// MalformedResponseError is returned when the API responds with a payload
// that cannot be turned into typed availability.
type MalformedResponseError struct {
	ParkID int64
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response for park %d: %s", e.ParkID, e.Reason)
}

func (r monthResponse) toRaw(parkID int64, month availability.Date) (availability.RawMonthlyResponse, error) {
	raw := availability.RawMonthlyResponse{
		Month:     month,
		Campsites: make(map[availability.SiteID]availability.Campsite, len(r.Campsites)),
	}

	for key, site := range r.Campsites {
		idText := key
		if site.CampsiteID != "" {
			idText = site.CampsiteID
		}
		id, err := strconv.ParseInt(idText, 10, 64)
		if err != nil {
			return availability.RawMonthlyResponse{}, &MalformedResponseError{
				ParkID: parkID,
				Reason: fmt.Sprintf("campsite id %q is not a number", idText),
			}
		}

		days := make(map[availability.Date]availability.Status, len(site.Availabilities))
		for dateText, status := range site.Availabilities {
			date, err := availability.ParseDate(availability.LayoutResponse, dateText)
			if err != nil {
				return availability.RawMonthlyResponse{}, &MalformedResponseError{
					ParkID: parkID,
					Reason: fmt.Sprintf("campsite %d has invalid date %q", id, dateText),
				}
			}
			days[date] = availability.Status(status)
		}

		raw.Campsites[availability.SiteID(id)] = availability.Campsite{
			ID:             availability.SiteID(id),
			Type:           site.CampsiteType,
			Availabilities: days,
		}
	}

	return raw, nil
}
