package attendance

import (
	"strings"

	"github.com/cmlabs-hris/attendance-analytics/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

// MarkAttendanceRequest is a manager entering a full attendance record
type MarkAttendanceRequest struct {
	MemberID string  `json:"member_id"`
	Date     string  `json:"date"`      // YYYY-MM-DD
	CheckIn  string  `json:"check_in"`  // HH:MM
	CheckOut string  `json:"check_out"` // HH:MM
	Status   string  `json:"status"`
	Method   string  `json:"method"`
	Notes    *string `json:"notes,omitempty"`
	Location *string `json:"location,omitempty"`
}

func (r *MarkAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.MemberID) {
		errs = append(errs, validator.ValidationError{
			Field:   "member_id",
			Message: "member_id is required",
		})
	}

	if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	errs = append(errs, validateClock("check_in", r.CheckIn)...)
	errs = append(errs, validateClock("check_out", r.CheckOut)...)

	if !validator.IsInSlice(r.Status, ValidStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(ValidStatuses, ", "),
		})
	}

	if r.Method == "" {
		r.Method = string(MethodManual)
	} else if !validator.IsInSlice(r.Method, ValidMethods) {
		errs = append(errs, validator.ValidationError{
			Field:   "method",
			Message: "method must be one of: " + strings.Join(ValidMethods, ", "),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// QuickMarkRequest marks today's attendance with the current time as check-in
type QuickMarkRequest struct {
	MemberID string `json:"member_id"`
	Status   string `json:"status"`
	Method   string `json:"method"`
}

func (r *QuickMarkRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.MemberID) {
		errs = append(errs, validator.ValidationError{
			Field:   "member_id",
			Message: "member_id is required",
		})
	}

	if r.Status == "" {
		r.Status = string(StatusPresent)
	} else if !validator.IsInSlice(r.Status, ValidStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(ValidStatuses, ", "),
		})
	}

	if r.Method == "" {
		r.Method = string(MethodManual)
	} else if !validator.IsInSlice(r.Method, ValidMethods) {
		errs = append(errs, validator.ValidationError{
			Field:   "method",
			Message: "method must be one of: " + strings.Join(ValidMethods, ", "),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateAttendanceRequest edits an existing record. Nil fields are left unchanged,
// an empty check_out reopens the record.
type UpdateAttendanceRequest struct {
	ID        string   `json:"-"`
	Date      *string  `json:"date,omitempty"`
	CheckIn   *string  `json:"check_in,omitempty"`
	CheckOut  *string  `json:"check_out,omitempty"`
	Status    *string  `json:"status,omitempty"`
	Method    *string  `json:"method,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
	Location  *string  `json:"location,omitempty"`
	WorkHours *float64 `json:"work_hours,omitempty"`
}

func (r *UpdateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.Date != nil {
		if _, valid := validator.IsValidDate(*r.Date); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if r.CheckIn != nil {
		errs = append(errs, validateClock("check_in", *r.CheckIn)...)
	}
	if r.CheckOut != nil {
		errs = append(errs, validateClock("check_out", *r.CheckOut)...)
	}

	if r.Status != nil && !validator.IsInSlice(*r.Status, ValidStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(ValidStatuses, ", "),
		})
	}

	if r.Method != nil && !validator.IsInSlice(*r.Method, ValidMethods) {
		errs = append(errs, validator.ValidationError{
			Field:   "method",
			Message: "method must be one of: " + strings.Join(ValidMethods, ", "),
		})
	}

	if r.WorkHours != nil && *r.WorkHours < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "work_hours",
			Message: "work_hours must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ToPatch converts the request into a store patch
func (r *UpdateAttendanceRequest) ToPatch() Patch {
	p := Patch{
		Date:      r.Date,
		CheckIn:   r.CheckIn,
		CheckOut:  r.CheckOut,
		Notes:     r.Notes,
		Location:  r.Location,
		WorkHours: r.WorkHours,
	}
	if r.Status != nil {
		s := Status(*r.Status)
		p.Status = &s
	}
	if r.Method != nil {
		m := Method(*r.Method)
		p.Method = &m
	}
	return p
}

type AttendanceFilter struct {
	MemberID  *string `json:"member_id,omitempty"`
	Date      *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status    *string `json:"status,omitempty"`
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !validator.IsInSlice(*f.Status, ValidStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(ValidStatuses, ", "),
		})
	}

	if f.Date != nil && *f.Date != "" {
		if _, valid := validator.IsValidDate(*f.Date); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Matches reports whether a record passes the filter. Dates compare as
// YYYY-MM-DD strings, which sort chronologically.
func (f AttendanceFilter) Matches(r Record) bool {
	if f.MemberID != nil && *f.MemberID != "" && r.MemberID != *f.MemberID {
		return false
	}
	if f.Date != nil && *f.Date != "" && r.Date != *f.Date {
		return false
	}
	if f.StartDate != nil && *f.StartDate != "" && r.Date < *f.StartDate {
		return false
	}
	if f.EndDate != nil && *f.EndDate != "" && r.Date > *f.EndDate {
		return false
	}
	if f.Status != nil && *f.Status != "" && string(r.Status) != *f.Status {
		return false
	}
	return true
}

type AttendanceResponse struct {
	ID         string  `json:"id"`
	MemberID   string  `json:"member_id"`
	MemberName string  `json:"member_name"`
	Date       string  `json:"date"`
	CheckIn    string  `json:"check_in"`
	CheckOut   string  `json:"check_out"`
	Status     string  `json:"status"`
	Method     string  `json:"method"`
	Notes      *string `json:"notes,omitempty"`
	Location   *string `json:"location,omitempty"`
	WorkHours  float64 `json:"work_hours"`
}

func NewAttendanceResponse(r Record) AttendanceResponse {
	return AttendanceResponse{
		ID:         r.ID,
		MemberID:   r.MemberID,
		MemberName: r.MemberName,
		Date:       r.Date,
		CheckIn:    r.CheckIn,
		CheckOut:   r.CheckOut,
		Status:     string(r.Status),
		Method:     string(r.Method),
		Notes:      r.Notes,
		Location:   r.Location,
		WorkHours:  r.WorkHours,
	}
}

type ListAttendanceResponse struct {
	TotalCount  int                  `json:"total_count"`
	Attendances []AttendanceResponse `json:"attendances"`
}

func NewListAttendanceResponse(records []Record) ListAttendanceResponse {
	items := make([]AttendanceResponse, 0, len(records))
	for _, r := range records {
		items = append(items, NewAttendanceResponse(r))
	}
	return ListAttendanceResponse{
		TotalCount:  len(items),
		Attendances: items,
	}
}

func validateClock(field, value string) validator.ValidationErrors {
	if value == "" || validator.IsValidClock(value) {
		return nil
	}
	return validator.ValidationErrors{{
		Field:   field,
		Message: field + " must be in HH:MM format",
	}}
}
