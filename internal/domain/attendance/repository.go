package attendance

import (
	"context"
)

// AttendanceRepository is the per-workspace attendance log.
// All methods include workspaceID to keep workspaces isolated.
type AttendanceRepository interface {
	// ListByDate returns the records of one day in insertion order
	ListByDate(ctx context.Context, workspaceID string, date string) ([]Record, error)

	// FindByMemberAndDate returns nil when the member has no record that day
	FindByMemberAndDate(ctx context.Context, workspaceID string, memberID string, date string) (*Record, error)

	// Append stores a new record, failing with ErrDuplicateRecord when the
	// (member, date) pair is already taken
	Append(ctx context.Context, workspaceID string, record Record) (Record, error)

	// Update edits a record by ID, failing with ErrRecordNotFound for unknown IDs
	Update(ctx context.Context, workspaceID string, id string, patch Patch) (Record, error)

	// List returns records matching the filter in insertion order
	List(ctx context.Context, workspaceID string, filter AttendanceFilter) ([]Record, error)
}
