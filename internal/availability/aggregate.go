package availability

import (
	"slices"
)

// SiteID identifies a single bookable campsite.
type SiteID int64

// Status is the availability status the reservation API reports for a
// campsite on a given day.
type Status string

// StatusAvailable is the only status that means a site is free, every other
// value ("Reserved", "Not Reservable", "Open", ...) is treated as not free.
const StatusAvailable Status = "Available"

// Campsite is a single site's availability for one month.
type Campsite struct {
	ID             SiteID
	Type           string
	Availabilities map[Date]Status
}

// RawMonthlyResponse is the availability of every site in a campground for
// a single calendar month.
type RawMonthlyResponse struct {
	Month     Date
	Campsites map[SiteID]Campsite
}

// SiteAvailability maps a site to the days on which it is free, the days of
// each site are sorted and unique.
type SiteAvailability map[SiteID][]Date

// Filter restricts which sites are considered during aggregation, zero
// values disable the respective filter.
type Filter struct {
	// SiteType must equal the campsite type exactly (case-sensitive).
	SiteType string
	// SiteIDs is an allowlist of sites.
	SiteIDs []SiteID
}

func (f Filter) allows(site Campsite) bool {
	if f.SiteType != "" && f.SiteType != site.Type {
		return false
	}
	if len(f.SiteIDs) > 0 && !slices.Contains(f.SiteIDs, site.ID) {
		return false
	}
	return true
}

// Aggregate merges the monthly responses of a campground into a single
// SiteAvailability. Sites without any free day are omitted. The result does
// not depend on the order of responses.
func Aggregate(responses []RawMonthlyResponse, filter Filter) SiteAvailability {
	seen := make(map[SiteID]map[Date]struct{})
	for _, month := range responses {
		for _, site := range month.Campsites {
			if !filter.allows(site) {
				continue
			}
			for date, status := range site.Availabilities {
				if status != StatusAvailable {
					continue
				}
				days, ok := seen[site.ID]
				if !ok {
					days = make(map[Date]struct{})
					seen[site.ID] = days
				}
				days[date] = struct{}{}
			}
		}
	}

	result := make(SiteAvailability, len(seen))
	for id, days := range seen {
		dates := make([]Date, 0, len(days))
		for d := range days {
			dates = append(dates, d)
		}
		slices.Sort(dates)
		result[id] = dates
	}
	return result
}

// CountSites returns the number of distinct sites present in the responses,
// regardless of their availability, leaving out excluded sites.
func CountSites(responses []RawMonthlyResponse, excluded []SiteID) int {
	ids := make(map[SiteID]struct{})
	for _, month := range responses {
		for id := range month.Campsites {
			if slices.Contains(excluded, id) {
				continue
			}
			ids[id] = struct{}{}
		}
	}
	return len(ids)
}

// Without returns a copy of sites that excludes the given sites.
func (s SiteAvailability) Without(excluded []SiteID) SiteAvailability {
	result := make(SiteAvailability, len(s))
	for id, dates := range s {
		if slices.Contains(excluded, id) {
			continue
		}
		result[id] = dates
	}
	return result
}
