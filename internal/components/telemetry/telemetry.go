package telemetry

import (
	"fmt"
)

// API is how components log and count things. Production code uses SlogAPI,
// tests use a Recorder and assert on what was reported.
type API interface {
	// ReportBroken is for failures someone should look at, ex. recreation.gov
	// answering with a non-200 status.
	//
	// `id` names the failing operation (`client.get-availability`,
	// `store.import`), lowercase with dashes. The error and any identifying
	// values (park id, month) go in params.
	ReportBroken(id string, params ...any)

	// ReportWarning is for degraded but working states, ex. the facility
	// directory failing so park names are fetched from the API instead.
	ReportWarning(id string, params ...any)

	// ReportDebug is only visible with --debug.
	ReportDebug(msg string, params ...any)

	// ReportCount records a gauge-like value such as the number of available
	// sites of a park, it is not a running total.
	ReportCount(id string, count int64)
}

// ScopedAPI attaches a namespace to every report of the inner API.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(fmt.Sprintf("%s: %s", s.namespace, msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(fmt.Sprintf("%s: %s", s.namespace, id), count)
}
