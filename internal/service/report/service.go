package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analytics/internal/domain/member"
	"github.com/cmlabs-hris/attendance-analytics/internal/domain/report"
	"github.com/cmlabs-hris/attendance-analytics/internal/domain/transaction"
	"github.com/go-chi/jwtauth/v5"
)

type ReportServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	rosterRepo     member.RosterRepository
	feedRepo       transaction.FeedRepository
	now            func() time.Time
}

func NewReportService(
	attendanceRepo attendance.AttendanceRepository,
	rosterRepo member.RosterRepository,
	feedRepo transaction.FeedRepository,
) report.ReportService {
	return &ReportServiceImpl{
		attendanceRepo: attendanceRepo,
		rosterRepo:     rosterRepo,
		feedRepo:       feedRepo,
		now:            time.Now,
	}
}

// getWorkspaceIDFromContext extracts workspace_id from JWT claims
func (s *ReportServiceImpl) getWorkspaceIDFromContext(ctx context.Context) (string, error) {
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

// GenerateTeamReport implements report.ReportService.
func (s *ReportServiceImpl) GenerateTeamReport(ctx context.Context, req report.TeamReportRequest) (report.TeamReport, error) {
	if err := req.Validate(); err != nil {
		return report.TeamReport{}, err
	}

	workspaceID, err := s.getWorkspaceIDFromContext(ctx)
	if err != nil {
		return report.TeamReport{}, err
	}

	// Each source degrades to empty on failure so the report always completes
	roster, err := s.rosterRepo.List(ctx, workspaceID)
	if err != nil {
		slog.Warn("Team report: roster unavailable, using empty roster",
			"workspace_id", workspaceID, "error", err)
		roster = []member.Member{}
	}

	records, err := s.attendanceRepo.List(ctx, workspaceID, attendance.AttendanceFilter{
		StartDate: &req.StartDate,
		EndDate:   &req.EndDate,
	})
	if err != nil {
		slog.Warn("Team report: attendance unavailable, using empty log",
			"workspace_id", workspaceID, "error", err)
		records = []attendance.Record{}
	}

	transactions, err := s.feedRepo.List(ctx)
	if err != nil {
		slog.Warn("Team report: transaction feed unavailable, using empty feed",
			"workspace_id", workspaceID, "error", err)
		transactions = []transaction.PurchaseTransaction{}
	}

	members, team := Aggregate(report.DateRange{Start: req.StartDate, End: req.EndDate}, roster, records, transactions)

	return report.TeamReport{
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		GeneratedAt: s.now().Format(time.RFC3339),
		Members:     members,
		Team:        team,
	}, nil
}
