package report

import (
	"fmt"
	"slices"
	"strings"

	"campcheck/internal/availability"
	"campcheck/internal/checker"
)

const (
	EmojiSuccess = "🏕"
	EmojiFailure = "❌"
)

// Human renders a summary line for each park, optionally followed by the
// qualifying ranges of every available site. The second return value
// reports whether any park had availability.
func Human(results []checker.ParkResult, window availability.DateWindow, showSites bool) (string, bool) {
	var lines []string
	hasAvailability := false

	for _, result := range results {
		emoji := EmojiFailure
		if result.Report.Available > 0 {
			emoji = EmojiSuccess
			hasAvailability = true
		}

		lines = append(lines, fmt.Sprintf(
			"%s %s (%d): %d site(s) available out of %d site(s)",
			emoji,
			result.Name,
			result.ParkID,
			result.Report.Available,
			result.Report.Total,
		))

		if !showSites {
			continue
		}
		for _, site := range sortedSites(result.Report.Ranges) {
			lines = append(lines, fmt.Sprintf("  * Site %d is available on the following dates:", site))
			for _, r := range result.Report.Ranges[site] {
				lines = append(lines, fmt.Sprintf("    * %s -> %s", r.Start, r.End))
			}
		}
	}

	header := "There are no campsites available :("
	if hasAvailability {
		header = fmt.Sprintf(
			"there are campsites available from %s to %s!!!",
			window.Start, window.End,
		)
	}

	return strings.Join(append([]string{header}, lines...), "\n"), hasAvailability
}

func sortedSites(ranges map[availability.SiteID][]availability.ConsecutiveRange) []availability.SiteID {
	sites := make([]availability.SiteID, 0, len(ranges))
	for site := range ranges {
		sites = append(sites, site)
	}
	slices.Sort(sites)
	return sites
}
