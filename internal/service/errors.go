package service

import "errors"

// Business errors returned by the core. All of them are recoverable; nothing
// in this package is fatal to the host process. Rate-limit denials are not
// errors at all — they travel as model.RateDecision values.
var (
	// ErrNotFound marks an unknown report, contributor, or product reference.
	ErrNotFound = errors.New("not found")

	// ErrReportClosed marks a confirm/flag attempt on an expired or rejected
	// report. Retrying is idempotent and yields the same result.
	ErrReportClosed = errors.New("report is expired or rejected")

	// ErrOwnReport marks a contributor trying to confirm or flag their own
	// report.
	ErrOwnReport = errors.New("cannot act on own report")
)
