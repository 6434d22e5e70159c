package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// MarkAttendance records attendance entered by a manager
	MarkAttendance(ctx context.Context, req MarkAttendanceRequest) (AttendanceResponse, error)

	// QuickMark records today's attendance with the current time as check-in
	QuickMark(ctx context.Context, req QuickMarkRequest) (AttendanceResponse, error)

	// UpdateAttendance edits an existing record
	UpdateAttendance(ctx context.Context, req UpdateAttendanceRequest) (AttendanceResponse, error)

	// ListByDate returns every record of one day
	ListByDate(ctx context.Context, date string) (ListAttendanceResponse, error)

	// ListAttendance returns records matching the filter
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)
}
