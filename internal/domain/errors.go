package domain

import "errors"

var (
	// ErrSourceFetch marks a failed listing or saved-search fetch. It aborts
	// the whole match cycle; the cursor stays put and the window is
	// re-covered on the next tick.
	ErrSourceFetch = errors.New("source fetch failed")

	// ErrMalformedPredicate is returned when a saved search's filter JSON
	// does not decode against its category schema. Only that search is
	// skipped; the cycle continues.
	ErrMalformedPredicate = errors.New("malformed filter predicate")

	// ErrNotificationExists is returned when an insert hits the unique
	// index backstop: another dispatch worker already created the
	// notification for the same (user, listing, search) triple.
	ErrNotificationExists = errors.New("notification already exists")

	// ErrNotificationNotFound is returned by read/mark operations for an
	// unknown notification id.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrCycleInFlight is returned by a manual trigger while a scheduled
	// cycle is still executing. Cycles never overlap.
	ErrCycleInFlight = errors.New("match cycle already in flight")
)
