package report

import "context"

// ReportService defines the interface for report generation
type ReportService interface {
	// GenerateTeamReport computes member and team statistics for a date range.
	// Missing or unreadable source data yields zeroed statistics, not an error.
	GenerateTeamReport(ctx context.Context, req TeamReportRequest) (TeamReport, error)
}
