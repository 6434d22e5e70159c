package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/attendance-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analytics/internal/domain/report"
)

const ContentTypeCSV = "text/csv; charset=utf-8"

var teamReportHeader = []string{
	"Name", "Role", "Department", "Total Days", "Present", "Absent",
	"Late", "Leave", "Attendance Rate (%)", "Avg Hours", "Performance Score",
}

var dailyAttendanceHeader = []string{
	"Name", "Date", "Check In", "Check Out", "Status", "Method",
	"Work Hours", "Location", "Notes",
}

// ToCSVRows renders member statistics as a header row plus one row per member.
// Rates and hours carry one decimal, counts and the score are integers.
func ToCSVRows(stats []report.MemberStats) [][]string {
	rows := make([][]string, 0, len(stats)+1)
	rows = append(rows, append([]string(nil), teamReportHeader...))
	for _, s := range stats {
		rows = append(rows, []string{
			s.Name,
			s.Role,
			s.Department,
			strconv.Itoa(s.TotalDays),
			strconv.Itoa(s.PresentDays),
			strconv.Itoa(s.AbsentDays),
			strconv.Itoa(s.LateDays),
			strconv.Itoa(s.LeaveDays),
			oneDecimal(s.AttendanceRate),
			oneDecimal(s.AvgWorkHours),
			strconv.Itoa(s.PerformanceScore),
		})
	}
	return rows
}

// DailyCSVRows renders one day's attendance log
func DailyCSVRows(records []attendance.Record) [][]string {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, append([]string(nil), dailyAttendanceHeader...))
	for _, r := range records {
		rows = append(rows, []string{
			r.MemberName,
			r.Date,
			r.CheckIn,
			r.CheckOut,
			string(r.Status),
			string(r.Method),
			oneDecimal(r.WorkHours),
			deref(r.Location),
			deref(r.Notes),
		})
	}
	return rows
}

// EncodeCSV writes rows as UTF-8 CSV with every field double-quoted and
// embedded quotes doubled. Lines end with CRLF.
func EncodeCSV(rows [][]string) []byte {
	var buf bytes.Buffer
	for _, row := range rows {
		for i, field := range row {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
			buf.WriteByte('"')
		}
		buf.WriteString("\r\n")
	}
	return buf.Bytes()
}

// DailyFileName is the download name of a day's attendance log
func DailyFileName(date string) string {
	return fmt.Sprintf("attendance_%s.csv", date)
}

// TeamReportFileName is the download name of a team report; ext includes the dot
func TeamReportFileName(start, end, ext string) string {
	return fmt.Sprintf("team_report_%s_%s%s", start, end, ext)
}

func oneDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
