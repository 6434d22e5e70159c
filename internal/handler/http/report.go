package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-analytics/internal/domain/report"
	"github.com/cmlabs-hris/attendance-analytics/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-analytics/internal/service/export"
)

type ReportHandler interface {
	// Team performance report
	GetTeamReport(w http.ResponseWriter, r *http.Request)

	// Team performance report downloads
	ExportTeamReportCSV(w http.ResponseWriter, r *http.Request)
	ExportTeamReportXLSX(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
	exportService export.ExportService
}

func NewReportHandler(reportService report.ReportService, exportService export.ExportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
		exportService: exportService,
	}
}

func teamReportRequest(r *http.Request) report.TeamReportRequest {
	return report.TeamReportRequest{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}
}

// GetTeamReport handles GET /reports/team
func (h *reportHandlerImpl) GetTeamReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.GenerateTeamReport(r.Context(), teamReportRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportTeamReportCSV handles GET /reports/team/export.csv
func (h *reportHandlerImpl) ExportTeamReportCSV(w http.ResponseWriter, r *http.Request) {
	file, err := h.exportService.TeamReportCSV(r.Context(), teamReportRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeExport(w, file)
}

// ExportTeamReportXLSX handles GET /reports/team/export.xlsx
func (h *reportHandlerImpl) ExportTeamReportXLSX(w http.ResponseWriter, r *http.Request) {
	file, err := h.exportService.TeamReportXLSX(r.Context(), teamReportRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeExport(w, file)
}
