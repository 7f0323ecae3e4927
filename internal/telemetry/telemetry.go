// Package telemetry is how every rosterlink component reports what it did.
// Components take an API instead of logging directly so tests can record and
// assert on reports.
package telemetry

import (
	"fmt"
)

// API receives the reports of a component.
//
// Ids name the component that reported, such as "fetcher.profile", never the
// line that failed. They are lowercase, with dots between a component and its
// parts and dashes inside multi-word parts. Details go in params.
type API interface {
	// ReportBroken is for a failure that lost work, like an output that was
	// not written.
	ReportBroken(id string, params ...any)

	// ReportWarning is for a failure the run recovered from, like a skipped
	// document or a missing avatar.
	ReportWarning(id string, params ...any)

	// ReportProgress marks a completed unit of work.
	ReportProgress(msg string, params ...any)

	// ReportDebug is only shown with --verbose.
	ReportDebug(msg string, params ...any)

	// ReportCount records a total at the time of the call.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id and message with a namespace before handing the
// report to inner.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scope(id string) string {
	return fmt.Sprintf("%s: %s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.scope(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.scope(id), params...)
}

func (s ScopedAPI) ReportProgress(msg string, params ...any) {
	s.inner.ReportProgress(s.scope(msg), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.scope(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.scope(id), count)
}
