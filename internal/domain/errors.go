package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy for reconciliation and valuation flows.
//
// "No match" and row-level parse problems are expected outcomes, not
// faults: batch callers map them to "unresolved" or skip the row. Only
// ErrSourceUnreadable aborts a ledger-processing run, and re-upload is
// always a safe recovery because every write is an idempotent upsert.
var (
	// ErrNoMatch indicates similarity stayed below the acceptance threshold.
	ErrNoMatch = errors.New("no catalog match above threshold")

	// ErrUpstreamUnavailable indicates an external API call failed after
	// exhausting its retry budget. Callers treat it as "not found".
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrSourceUnreadable indicates an uploaded document could not be
	// loaded at all. Fatal for that processing run only.
	ErrSourceUnreadable = errors.New("document source unreadable")

	// ErrGameNotFound indicates a catalog lookup by ID found nothing.
	ErrGameNotFound = errors.New("game not found")

	// ErrUserNotFound indicates a user lookup by ID found nothing.
	ErrUserNotFound = errors.New("user not found")
)

// RowParseError reports a single unusable ledger row. It is row-level and
// non-fatal: the reconciler logs it and continues with the next row.
type RowParseError struct {
	Row    int
	Reason string
}

func (e *RowParseError) Error() string {
	return fmt.Sprintf("ledger row %d: %s", e.Row, e.Reason)
}
