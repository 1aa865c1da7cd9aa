package checker

import (
	"context"
	"fmt"
	"sync"

	"campcheck/internal/availability"
	"campcheck/internal/components/assert"
	"campcheck/internal/components/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	report_checker_check_park   = "check-park"
	report_checker_get_name     = "get-name"
	report_checker_remember     = "remember-name"
	report_checker_available    = "available-sites"
	report_checker_site_details = "site-details"
)

var tracer = otel.Tracer("campcheck.checker")
var meter = otel.Meter("campcheck.checker")
var availableGauge, _ = meter.Int64Gauge(
	"available_sites",
	metric.WithDescription("campsites with at least one qualifying range, per park"),
)

// Source provides raw availability and park names.
type Source interface {
	GetAvailability(ctx context.Context, parkID int64, month availability.Date) (availability.RawMonthlyResponse, error)
	GetParkName(ctx context.Context, parkID int64) (string, error)
}

// NameCache remembers park names so they need not be fetched every run.
type NameCache interface {
	Lookup(ctx context.Context, parkID int64) (string, bool, error)
	Remember(ctx context.Context, parkID int64, name string) error
}

type Options struct {
	Window availability.DateWindow
	// Nights is clamped to the window, 0 means "every night of the window".
	Nights       int
	WeekendsOnly bool
	Filter       availability.Filter
	// Exclude lists sites that are dropped after aggregation, they do not
	// count towards the total either.
	Exclude []availability.SiteID
	// ParallelMonths fetches every month of a park concurrently.
	ParallelMonths bool
}

// ParkResult is the outcome of checking a single park.
type ParkResult struct {
	ParkID int64
	Name   string
	Report availability.Report
}

// Checker fetches availability for parks and selects qualifying ranges.
type Checker struct {
	source Source
	names  NameCache
	tel    telemetry.API
}

// NewChecker creates a Checker, names may be nil in which case park names
// are always fetched from the source.
func NewChecker(source Source, names NameCache, tel telemetry.API) Checker {
	assert.NotNil(source)
	assert.NotNil(tel)
	return Checker{
		source: source,
		names:  names,
		tel:    telemetry.NewScopedAPI("checker", tel),
	}
}

// Months returns the first day of every month touched by the window, the
// month containing the end date is included.
func Months(window availability.DateWindow) []availability.Date {
	var months []availability.Date
	last := window.End.FirstOfMonth()
	for month := window.Start.FirstOfMonth(); month <= last; month = month.AddMonths(1) {
		months = append(months, month)
	}
	return months
}

func (c Checker) fetchMonths(ctx context.Context, parkID int64, months []availability.Date, parallel bool) ([]availability.RawMonthlyResponse, error) {
	results := make([]availability.RawMonthlyResponse, len(months))
	errs := make([]error, len(months))

	if parallel {
		wg := sync.WaitGroup{}
		for i, month := range months {
			wg.Add(1)
			go func(i int, month availability.Date) {
				defer wg.Done()
				results[i], errs[i] = c.source.GetAvailability(ctx, parkID, month)
			}(i, month)
		}
		wg.Wait()
	} else {
		for i, month := range months {
			results[i], errs[i] = c.source.GetAvailability(ctx, parkID, month)
			if errs[i] != nil {
				break
			}
		}
	}

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("park %d month %s: %w", parkID, months[i], err)
		}
	}
	return results, nil
}

func (c Checker) parkName(ctx context.Context, parkID int64) (string, error) {
	if c.names != nil {
		name, ok, err := c.names.Lookup(ctx, parkID)
		if err != nil {
			c.tel.ReportWarning(report_checker_get_name, err, parkID)
		}
		if ok {
			return name, nil
		}
	}

	name, err := c.source.GetParkName(ctx, parkID)
	if err != nil {
		return "", fmt.Errorf("park %d name: %w", parkID, err)
	}

	if c.names != nil {
		err = c.names.Remember(ctx, parkID, name)
		if err != nil {
			c.tel.ReportWarning(report_checker_remember, err, parkID)
		}
	}
	return name, nil
}

// CheckPark fetches every month of the window for a park and reports which
// sites have enough consecutive free nights. A failed month aborts the park.
func (c Checker) CheckPark(ctx context.Context, parkID int64, opts Options) (ParkResult, error) {
	ctx, span := tracer.Start(ctx, "CheckPark")
	defer span.End()
	span.SetAttributes(attribute.Int64("park_id", parkID))

	raw, err := c.fetchMonths(ctx, parkID, Months(opts.Window), opts.ParallelMonths)
	if err != nil {
		c.tel.ReportBroken(report_checker_check_park, err, parkID)
		return ParkResult{}, err
	}

	sites := availability.Aggregate(raw, opts.Filter).Without(opts.Exclude)
	c.tel.ReportDebug(report_checker_site_details, parkID, len(sites))

	report := availability.SelectRanges(sites, opts.Window, opts.Nights, opts.WeekendsOnly)
	report.Total = availability.CountSites(raw, opts.Exclude)

	name, err := c.parkName(ctx, parkID)
	if err != nil {
		c.tel.ReportBroken(report_checker_check_park, err, parkID)
		return ParkResult{}, err
	}

	c.tel.ReportCount(report_checker_available, int64(report.Available))
	availableGauge.Record(ctx, int64(report.Available), metric.WithAttributes(
		attribute.Int64("park_id", parkID),
	))

	return ParkResult{
		ParkID: parkID,
		Name:   name,
		Report: report,
	}, nil
}

// CheckParks checks each park in order, the first failure is returned.
func (c Checker) CheckParks(ctx context.Context, parkIDs []int64, opts Options) ([]ParkResult, error) {
	results := make([]ParkResult, 0, len(parkIDs))
	for _, parkID := range parkIDs {
		result, err := c.CheckPark(ctx, parkID, opts)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// HasAvailability reports whether any park has at least one available site.
func HasAvailability(results []ParkResult) bool {
	for _, r := range results {
		if r.Report.Available > 0 {
			return true
		}
	}
	return false
}
