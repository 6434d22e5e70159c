package report

import (
	"github.com/cmlabs-hris/attendance-analytics/internal/pkg/validator"
)

// ========================================
// TEAM PERFORMANCE REPORT
// ========================================

type TeamReportRequest struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

func (r *TeamReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, valid := validator.IsValidDate(r.StartDate); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	if _, valid := validator.IsValidDate(r.EndDate); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) == 0 && !validator.IsValidDateRange(r.StartDate, r.EndDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: ErrInvalidDateRange.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DateRange is an inclusive range of YYYY-MM-DD days
type DateRange struct {
	Start string
	End   string
}

// Contains compares YYYY-MM-DD strings, which sort chronologically
func (d DateRange) Contains(day string) bool {
	return day >= d.Start && day <= d.End
}

type TeamReport struct {
	StartDate   string        `json:"start_date"`
	EndDate     string        `json:"end_date"`
	GeneratedAt string        `json:"generated_at"`
	Members     []MemberStats `json:"members"`
	Team        *TeamStats    `json:"team"`
}

// MemberStats is derived on every aggregation and never persisted
type MemberStats struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`

	// Attendance
	TotalDays      int     `json:"total_days"`
	PresentDays    int     `json:"present_days"`
	AbsentDays     int     `json:"absent_days"`
	LateDays       int     `json:"late_days"`
	LeaveDays      int     `json:"leave_days"`
	AttendanceRate float64 `json:"attendance_rate"`
	AvgWorkHours   float64 `json:"avg_work_hours"`
	TotalWorkHours float64 `json:"total_work_hours"`

	PerformanceScore int `json:"performance_score"`

	// Sales
	TotalSales          int     `json:"total_sales"`
	TotalRevenue        float64 `json:"total_revenue"`
	ServicesCompleted   int     `json:"services_completed"`
	TotalTips           float64 `json:"total_tips"`
	AvgTipPerService    float64 `json:"avg_tip_per_service"`
	Commission          float64 `json:"commission"`
	CustomerCount       int     `json:"customer_count"`
	AvgTransactionValue float64 `json:"avg_transaction_value"`
}

type TeamStats struct {
	TotalMembers        int           `json:"total_members"`
	AvgAttendanceRate   float64       `json:"avg_attendance_rate"`
	AvgWorkHours        float64       `json:"avg_work_hours"`
	AvgPerformanceScore float64       `json:"avg_performance_score"`
	TotalPresent        int           `json:"total_present"`
	TotalAbsent         int           `json:"total_absent"`
	TotalLate           int           `json:"total_late"`
	TopPerformers       []MemberStats `json:"top_performers"`
	NeedsAttention      []MemberStats `json:"needs_attention"`
}
