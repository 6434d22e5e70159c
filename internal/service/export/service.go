package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analytics/internal/domain/report"
	"github.com/cmlabs-hris/attendance-analytics/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-analytics/internal/service/file"
	"github.com/go-chi/jwtauth/v5"
)

// File is a rendered export ready to be sent to the client
type File struct {
	Name        string
	ContentType string
	Data        []byte
	// ArchivePath is empty when archiving is disabled or failed
	ArchivePath string
}

type ExportService interface {
	DailyAttendanceCSV(ctx context.Context, date string) (File, error)
	TeamReportCSV(ctx context.Context, req report.TeamReportRequest) (File, error)
	TeamReportXLSX(ctx context.Context, req report.TeamReportRequest) (File, error)
}

type exportServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	reportService  report.ReportService
	fileService    file.FileService
}

// NewExportService wires the export formats. fileService may be nil, in which
// case exports are only returned and never archived.
func NewExportService(
	attendanceRepo attendance.AttendanceRepository,
	reportService report.ReportService,
	fileService file.FileService,
) ExportService {
	return &exportServiceImpl{
		attendanceRepo: attendanceRepo,
		reportService:  reportService,
		fileService:    fileService,
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

// DailyAttendanceCSV implements ExportService.
func (s *exportServiceImpl) DailyAttendanceCSV(ctx context.Context, date string) (File, error) {
	if _, valid := validator.IsValidDate(date); !valid {
		return File{}, validator.ValidationErrors{{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		}}
	}

	workspaceID, err := getWorkspaceIDFromContext(ctx)
	if err != nil {
		return File{}, err
	}

	records, err := s.attendanceRepo.ListByDate(ctx, workspaceID, date)
	if err != nil {
		return File{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	out := File{
		Name:        DailyFileName(date),
		ContentType: ContentTypeCSV,
		Data:        EncodeCSV(DailyCSVRows(records)),
	}
	out.ArchivePath = s.archive(ctx, workspaceID, out)
	return out, nil
}

// TeamReportCSV implements ExportService.
func (s *exportServiceImpl) TeamReportCSV(ctx context.Context, req report.TeamReportRequest) (File, error) {
	rep, workspaceID, err := s.teamReport(ctx, req)
	if err != nil {
		return File{}, err
	}

	out := File{
		Name:        TeamReportFileName(rep.StartDate, rep.EndDate, ".csv"),
		ContentType: ContentTypeCSV,
		Data:        EncodeCSV(ToCSVRows(rep.Members)),
	}
	out.ArchivePath = s.archive(ctx, workspaceID, out)
	return out, nil
}

// TeamReportXLSX implements ExportService.
func (s *exportServiceImpl) TeamReportXLSX(ctx context.Context, req report.TeamReportRequest) (File, error) {
	rep, workspaceID, err := s.teamReport(ctx, req)
	if err != nil {
		return File{}, err
	}

	data, err := WriteTeamWorkbook(rep)
	if err != nil {
		return File{}, fmt.Errorf("failed to render team workbook: %w", err)
	}

	out := File{
		Name:        TeamReportFileName(rep.StartDate, rep.EndDate, ".xlsx"),
		ContentType: ContentTypeXLSX,
		Data:        data,
	}
	out.ArchivePath = s.archive(ctx, workspaceID, out)
	return out, nil
}

func (s *exportServiceImpl) teamReport(ctx context.Context, req report.TeamReportRequest) (report.TeamReport, string, error) {
	rep, err := s.reportService.GenerateTeamReport(ctx, req)
	if err != nil {
		return report.TeamReport{}, "", err
	}
	workspaceID, err := getWorkspaceIDFromContext(ctx)
	if err != nil {
		return report.TeamReport{}, "", err
	}
	return rep, workspaceID, nil
}

// archive keeps a copy of the export; a failure never blocks the download
func (s *exportServiceImpl) archive(ctx context.Context, workspaceID string, f File) string {
	if s.fileService == nil {
		return ""
	}
	archivePath, err := s.fileService.ArchiveExport(ctx, workspaceID, f.Name, f.ContentType, f.Data)
	if err != nil {
		slog.Warn("Failed to archive export",
			"workspace_id", workspaceID,
			"file", f.Name,
			"error", err)
		return ""
	}
	return archivePath
}
