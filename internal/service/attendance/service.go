package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analytics/internal/domain/member"
	"github.com/cmlabs-hris/attendance-analytics/internal/pkg/sse"
	"github.com/go-chi/jwtauth/v5"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	member.RosterRepository
	hub *sse.Hub
	now func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	rosterRepo member.RosterRepository,
	hub *sse.Hub,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		RosterRepository:     rosterRepo,
		hub:                  hub,
		now:                  time.Now,
	}
}

// getWorkspaceIDFromContext extracts workspace_id from JWT claims
func getWorkspaceIDFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	workspaceID, ok := claims["workspace_id"].(string)
	if !ok || workspaceID == "" {
		return "", attendance.ErrWorkspaceRequired
	}

	return workspaceID, nil
}

// MarkAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) MarkAttendance(ctx context.Context, req attendance.MarkAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	workspaceID, err := getWorkspaceIDFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, err := a.create(ctx, workspaceID, req.MemberID, attendance.NewRecordParams{
		Date:     req.Date,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Status:   attendance.Status(req.Status),
		Method:   attendance.Method(req.Method),
		Notes:    req.Notes,
		Location: req.Location,
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return attendance.NewAttendanceResponse(record), nil
}

// QuickMark implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) QuickMark(ctx context.Context, req attendance.QuickMarkRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	workspaceID, err := getWorkspaceIDFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.now()
	params := attendance.NewRecordParams{
		Date:   now.Format(attendance.DateLayout),
		Status: attendance.Status(req.Status),
		Method: attendance.Method(req.Method),
	}
	// Absence and leave carry no check-in time
	if params.Status != attendance.StatusAbsent && params.Status != attendance.StatusLeave {
		params.CheckIn = now.Format(attendance.ClockLayout)
	}

	record, err := a.create(ctx, workspaceID, req.MemberID, params)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return attendance.NewAttendanceResponse(record), nil
}

// create resolves the member, checks the day is free and appends the record
func (a *AttendanceServiceImpl) create(ctx context.Context, workspaceID, memberID string, params attendance.NewRecordParams) (attendance.Record, error) {
	m, err := a.RosterRepository.GetByID(ctx, workspaceID, memberID)
	if err != nil {
		if errors.Is(err, member.ErrMemberNotFound) {
			return attendance.Record{}, err
		}
		return attendance.Record{}, fmt.Errorf("failed to get team member: %w", err)
	}

	existing, err := a.AttendanceRepository.FindByMemberAndDate(ctx, workspaceID, m.ID, params.Date)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to check existing attendance: %w", err)
	}
	if existing != nil {
		return attendance.Record{}, attendance.ErrDuplicateRecord
	}

	params.MemberID = m.ID
	params.MemberName = m.Name
	record, err := a.AttendanceRepository.Append(ctx, workspaceID, attendance.NewRecord(params))
	if err != nil {
		if errors.Is(err, attendance.ErrDuplicateRecord) {
			return attendance.Record{}, err
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	a.publishChange(workspaceID, record)
	return record, nil
}

// UpdateAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) UpdateAttendance(ctx context.Context, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	workspaceID, err := getWorkspaceIDFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, err := a.AttendanceRepository.Update(ctx, workspaceID, req.ID, req.ToPatch())
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) || errors.Is(err, attendance.ErrDuplicateRecord) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	if record.WorkHours < 0 {
		slog.Warn("Attendance record has checkout before check-in",
			"workspace_id", workspaceID,
			"attendance_id", record.ID,
			"work_hours", record.WorkHours)
	}

	a.publishChange(workspaceID, record)
	return attendance.NewAttendanceResponse(record), nil
}

// ListByDate implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListByDate(ctx context.Context, date string) (attendance.ListAttendanceResponse, error) {
	filter := attendance.AttendanceFilter{Date: &date}
	if date == "" {
		today := a.now().Format(attendance.DateLayout)
		filter.Date = &today
	}
	return a.ListAttendance(ctx, filter)
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	workspaceID, err := getWorkspaceIDFromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, err := a.AttendanceRepository.List(ctx, workspaceID, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	return attendance.NewListAttendanceResponse(records), nil
}

func (a *AttendanceServiceImpl) publishChange(workspaceID string, record attendance.Record) {
	a.hub.Publish(workspaceID, sse.Event{
		Event: sse.EventAttendanceChanged,
		Data: map[string]interface{}{
			"attendance_id": record.ID,
			"member_id":     record.MemberID,
			"date":          record.Date,
			"method":        record.Method,
		},
	})
}
