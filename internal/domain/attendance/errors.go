package attendance

import "errors"

// Attendance domain errors
var (
	// Store errors
	ErrDuplicateRecord = errors.New("attendance already recorded for this member on this date")
	ErrRecordNotFound  = errors.New("attendance record not found")

	// ErrMalformedInput marks persisted JSON that could not be decoded. Reads
	// log it and carry on with an empty list; writes fail with it.
	ErrMalformedInput = errors.New("malformed persisted attendance data")

	// General errors
	ErrWorkspaceRequired = errors.New("workspace_id claim is missing or invalid")
)
