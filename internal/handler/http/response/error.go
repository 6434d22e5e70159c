package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analytics/internal/domain/member"
	"github.com/cmlabs-hris/attendance-analytics/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	// Request body errors
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		BadRequest(w, "Invalid request format", nil)

	// Workspace scoping
	case errors.Is(err, attendance.ErrWorkspaceRequired):
		Forbidden(w, "Workspace access required")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrDuplicateRecord):
		Conflict(w, "Attendance already recorded for this member and date")
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrMalformedInput):
		slog.Error("Stored attendance log is unreadable", "error", err)
		InternalServerError(w, "Stored attendance data is unreadable")

	// Roster errors
	case errors.Is(err, member.ErrMemberNotFound):
		NotFound(w, "Team member not found")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
