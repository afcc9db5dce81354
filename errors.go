package pondwatch

import "errors"

// Failure modes the alerting pipeline tolerates. None of these are fatal:
// the worst user-visible outcome is a stale or incomplete notification list.
var (
	// ErrStoreUnavailable means the backing store cannot be reached.
	// Callers log and keep the last known state.
	ErrStoreUnavailable = errors.New("notification store unavailable")

	// ErrMalformedRecord marks a stored record with an unusable shape
	// (e.g. missing created_at). Such records are skipped, never surfaced.
	ErrMalformedRecord = errors.New("malformed alert record")

	// ErrPermissionDenied is returned by the desktop sink when native
	// notifications are not permitted. The in-app list is unaffected.
	ErrPermissionDenied = errors.New("desktop notifications not permitted")
)
