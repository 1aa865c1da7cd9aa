package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"campcheck/internal/availability"
	"campcheck/internal/checker"

	"github.com/spf13/cobra"
)

// UsageError is an invalid flag or combination of flags.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

func usagef(format string, args ...any) error {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

type outputMode int

const (
	outputHuman outputMode = iota
	outputJSON
	outputTable
)

// checkFlags are the flags shared by every command that runs a check.
type checkFlags struct {
	startDate     string
	endDate       string
	nights        int
	campsiteIDs   []int64
	campsiteType  string
	parks         []int64
	stdin         bool
	weekendsOnly  bool
	exclusionFile string
	showSites     bool
	jsonOutput    bool
	tableOutput   bool
}

func (f *checkFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.startDate, "start-date", "", "Start date [YYYY-MM-DD].")
	flags.StringVar(&f.endDate, "end-date", "", "End date [YYYY-MM-DD]. You expect to leave this day, not stay the night.")
	flags.IntVar(&f.nights, "nights", 0, "Number of consecutive nights (default is all nights in the given range).")
	flags.Int64SliceVar(&f.campsiteIDs, "campsite-ids", nil, "Only consider these campsite ids, requires a single park.")
	flags.StringVar(&f.campsiteType, "campsite-type", "", `Only consider campsites of this type, ex. "STANDARD NONELECTRIC".`)
	flags.Int64SliceVar(&f.parks, "parks", nil, "Park id(s) to check.")
	flags.BoolVar(&f.stdin, "stdin", false, "Read park id(s) from stdin instead, one per line.")
	flags.BoolVar(&f.weekendsOnly, "weekends-only", false, "Only consider Friday and Saturday nights.")
	flags.StringVar(&f.exclusionFile, "exclusion-file", "", "File with campsite ids to ignore, one per line.")
	flags.BoolVar(&f.showSites, "show-campsite-info", false, "Display the available dates of every campsite.")
	flags.BoolVar(&f.jsonOutput, "json-output", false, "Output JSON with the available ranges of every campsite.")
	flags.BoolVar(&f.tableOutput, "table-output", false, "Output a table with the available ranges of every campsite.")
}

// CheckRequest is a validated check.
type CheckRequest struct {
	Parks     []int64
	Options   checker.Options
	ShowSites bool
	Output    outputMode
}

func parseDate(flag, value string) (availability.Date, error) {
	if value == "" {
		return 0, usagef("--%s is required", flag)
	}
	date, err := availability.ParseDate(availability.LayoutInput, value)
	if err != nil {
		return 0, usagef("--%s: not a valid date: '%s'", flag, value)
	}
	return date, nil
}

// ReadParks reads park ids separated by whitespace, blank lines are skipped.
func ReadParks(r io.Reader) ([]int64, error) {
	var parks []int64
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		id, err := strconv.ParseInt(scanner.Text(), 10, 64)
		if err != nil {
			return nil, usagef("not a valid park id: '%s'", scanner.Text())
		}
		parks = append(parks, id)
	}
	return parks, scanner.Err()
}

// ReadExclusions reads campsite ids one per line, everything after a '#' is
// a comment.
func ReadExclusions(r io.Reader) ([]availability.SiteID, error) {
	var result []availability.SiteID
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text, _, _ := strings.Cut(scanner.Text(), "#")
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		id, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: not a valid campsite id: '%s'", line, text)
		}
		result = append(result, availability.SiteID(id))
	}
	return result, scanner.Err()
}

// resolve validates the flags, park ids are read from stdin when --stdin
// is given.
func (f checkFlags) resolve(stdin io.Reader, nightsChanged bool) (CheckRequest, error) {
	start, err := parseDate("start-date", f.startDate)
	if err != nil {
		return CheckRequest{}, err
	}
	end, err := parseDate("end-date", f.endDate)
	if err != nil {
		return CheckRequest{}, err
	}
	window := availability.DateWindow{Start: start, End: end}
	if !window.Valid() {
		return CheckRequest{}, usagef("--end-date %s must be after --start-date %s", end, start)
	}

	if nightsChanged && f.nights <= 0 {
		return CheckRequest{}, usagef("not a valid number of nights: %d", f.nights)
	}

	if f.stdin == (len(f.parks) > 0) {
		return CheckRequest{}, usagef("exactly one of --parks or --stdin must be given")
	}
	parks := f.parks
	if f.stdin {
		parks, err = ReadParks(stdin)
		if err != nil {
			return CheckRequest{}, err
		}
		if len(parks) == 0 {
			return CheckRequest{}, usagef("no park ids were given on stdin")
		}
	}

	if len(parks) > 1 && len(f.campsiteIDs) > 0 {
		return CheckRequest{}, usagef("--campsite-ids can only be used with a single park ID")
	}

	var exclude []availability.SiteID
	if f.exclusionFile != "" {
		file, err := os.Open(f.exclusionFile)
		if err != nil {
			return CheckRequest{}, usagef("--exclusion-file: %s", err.Error())
		}
		defer file.Close()
		exclude, err = ReadExclusions(file)
		if err != nil {
			return CheckRequest{}, usagef("--exclusion-file %s: %s", f.exclusionFile, err.Error())
		}
	}

	siteIDs := make([]availability.SiteID, len(f.campsiteIDs))
	for i, id := range f.campsiteIDs {
		siteIDs[i] = availability.SiteID(id)
	}

	output := outputHuman
	switch {
	case f.jsonOutput && f.tableOutput:
		return CheckRequest{}, usagef("--json-output and --table-output cannot be combined")
	case f.jsonOutput:
		output = outputJSON
	case f.tableOutput:
		output = outputTable
	}

	return CheckRequest{
		Parks: parks,
		Options: checker.Options{
			Window:       window,
			Nights:       f.nights,
			WeekendsOnly: f.weekendsOnly,
			Filter: availability.Filter{
				SiteType: f.campsiteType,
				SiteIDs:  siteIDs,
			},
			Exclude: exclude,
		},
		ShowSites: f.showSites,
		Output:    output,
	}, nil
}

// usageArgs reports positional argument errors as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		err := validate(cmd, args)
		if err != nil {
			return &UsageError{Message: err.Error()}
		}
		return nil
	}
}
