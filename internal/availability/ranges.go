package availability

import (
	"slices"
)

// ConsecutiveRange is a stay starting the night of Start, End is the day of
// departure.
type ConsecutiveRange struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

func (r ConsecutiveRange) Nights() int {
	return int(r.End - r.Start)
}

// Report summarizes which sites of a campground can host the requested stay.
type Report struct {
	// Available is the number of sites with at least one qualifying range.
	Available int
	// Total is the number of sites considered.
	Total int
	// Ranges holds the qualifying ranges of each available site in the
	// order they were found.
	Ranges map[SiteID][]ConsecutiveRange
}

// ResolveNights returns nights if it is a valid stay length for the window,
// otherwise the number of nights in the whole window.
func ResolveNights(window DateWindow, nights int) int {
	span := window.Nights()
	if nights < 1 || nights > span {
		return span
	}
	return nights
}

// SelectRanges finds, for every site, each range of `nights` consecutive free
// nights inside window. A nights value of 0 (or any invalid value) asks for
// the whole window.
//
// Runs are detected over calendar-adjacent days of the full window first,
// when weekendsOnly is set the ranges containing a night other than Friday
// or Saturday are discarded afterwards.
func SelectRanges(sites SiteAvailability, window DateWindow, nights int, weekendsOnly bool) Report {
	report := Report{
		Total:  len(sites),
		Ranges: make(map[SiteID][]ConsecutiveRange),
	}
	if !window.Valid() {
		return report
	}
	nights = ResolveNights(window, nights)

	for site, dates := range sites {
		desired := inWindow(dates, window)
		if len(desired) == 0 {
			continue
		}

		ranges := ConsecutiveNights(desired, nights)
		if weekendsOnly {
			ranges = slices.DeleteFunc(ranges, func(r ConsecutiveRange) bool {
				return !allWeekendNights(r)
			})
		}
		if len(ranges) == 0 {
			continue
		}

		report.Available++
		report.Ranges[site] = ranges
	}

	return report
}

func inWindow(dates []Date, window DateWindow) []Date {
	var result []Date
	for _, d := range dates {
		if window.Contains(d) {
			result = append(result, d)
		}
	}
	slices.Sort(result)
	return slices.Compact(result)
}

func allWeekendNights(r ConsecutiveRange) bool {
	for d := r.Start; d < r.End; d++ {
		if !d.IsWeekendNight() {
			return false
		}
	}
	return true
}

// ConsecutiveNights splits sorted, unique dates into runs of calendar-adjacent
// days and returns every range of exactly `nights` nights that fits in a run.
// A run of length L yields L-nights+1 overlapping ranges.
func ConsecutiveNights(dates []Date, nights int) []ConsecutiveRange {
	if nights < 1 {
		return nil
	}

	var result []ConsecutiveRange
	runStart := 0
	for i := 1; i <= len(dates); i++ {
		if i < len(dates) && dates[i] == dates[i-1]+1 {
			continue
		}

		run := dates[runStart:i]
		runStart = i
		for offset := 0; offset+nights <= len(run); offset++ {
			start := run[offset]
			result = append(result, ConsecutiveRange{
				Start: start,
				End:   start.AddDays(nights),
			})
		}
	}
	return result
}
