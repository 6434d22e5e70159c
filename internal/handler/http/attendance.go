package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analytics/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-analytics/internal/service/export"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	ListByDate(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Mark(w http.ResponseWriter, r *http.Request)
	QuickMark(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	exportService     export.ExportService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, exportService export.ExportService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		exportService:     exportService,
	}
}

// ListByDate handles GET /attendance?date=YYYY-MM-DD (defaults to today)
func (h *attendanceHandlerImpl) ListByDate(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.ListByDate(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: result.TotalCount})
}

// List handles GET /attendance/records
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := attendance.AttendanceFilter{}

	// Member filter
	if memberID := r.URL.Query().Get("member_id"); memberID != "" {
		filter.MemberID = &memberID
	}

	// Date filters
	if date := r.URL.Query().Get("date"); date != "" {
		filter.Date = &date
	}
	if startDate := r.URL.Query().Get("start_date"); startDate != "" {
		filter.StartDate = &startDate
	}
	if endDate := r.URL.Query().Get("end_date"); endDate != "" {
		filter.EndDate = &endDate
	}

	// Status filter
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = &status
	}

	result, err := h.attendanceService.ListAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: result.TotalCount})
}

// Mark handles POST /attendance
func (h *attendanceHandlerImpl) Mark(w http.ResponseWriter, r *http.Request) {
	var req attendance.MarkAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("Failed to decode mark attendance request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.MarkAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance recorded successfully", result)
}

// QuickMark handles POST /attendance/quick-mark
func (h *attendanceHandlerImpl) QuickMark(w http.ResponseWriter, r *http.Request) {
	var req attendance.QuickMarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("Failed to decode quick mark request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.QuickMark(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance recorded successfully", result)
}

// Update handles PATCH /attendance/{id}
func (h *attendanceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req attendance.UpdateAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("Failed to decode update attendance request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = id

	result, err := h.attendanceService.UpdateAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance updated successfully", result)
}

// Export handles GET /attendance/export?date=YYYY-MM-DD
func (h *attendanceHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	file, err := h.exportService.DailyAttendanceCSV(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeExport(w, file)
}

func writeExport(w http.ResponseWriter, file export.File) {
	if file.ArchivePath != "" {
		w.Header().Set("X-Archive-Path", file.ArchivePath)
	}
	response.Attachment(w, file.Name, file.ContentType, file.Data)
}
