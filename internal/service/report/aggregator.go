package report

import (
	"math"
	"sort"

	"github.com/cmlabs-hris/attendance-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analytics/internal/domain/member"
	"github.com/cmlabs-hris/attendance-analytics/internal/domain/report"
	"github.com/cmlabs-hris/attendance-analytics/internal/domain/transaction"
)

const (
	// TipRate is the share of a qualifying transaction credited as tips
	TipRate = 0.05
	// CommissionRate is the share of service revenue paid as commission
	CommissionRate = 0.05

	// StandardWorkDayHours is the day length the work-hours term is measured against
	StandardWorkDayHours = 8.0

	TopPerformersLimit = 5

	AttentionAttendanceRate   = 80.0
	AttentionPerformanceScore = 60

	weightAttendance   = 0.4
	weightWorkHours    = 0.2
	weightPunctuality  = 0.1
	weightProductivity = 0.3

	// productivityScale maps services per day onto 0..100
	productivityScale = 10.0
)

// Aggregate computes per-member and team statistics for the inclusive date range.
// It does no I/O and never fails; team is nil when the roster is empty.
func Aggregate(
	dateRange report.DateRange,
	roster []member.Member,
	records []attendance.Record,
	transactions []transaction.PurchaseTransaction,
) ([]report.MemberStats, *report.TeamStats) {
	inRange := make([]transaction.PurchaseTransaction, 0, len(transactions))
	for _, tx := range transactions {
		if dateRange.Contains(tx.Day()) {
			inRange = append(inRange, tx)
		}
	}

	members := make([]report.MemberStats, 0, len(roster))
	for _, m := range roster {
		members = append(members, memberStats(dateRange, m, records, inRange))
	}

	return members, teamStats(members)
}

func memberStats(
	dateRange report.DateRange,
	m member.Member,
	records []attendance.Record,
	transactions []transaction.PurchaseTransaction,
) report.MemberStats {
	stats := report.MemberStats{
		ID:         m.ID,
		Name:       m.Name,
		Role:       m.Role,
		Department: m.Department,
	}

	workedDays := 0
	for _, r := range records {
		if r.MemberID != m.ID || !dateRange.Contains(r.Date) {
			continue
		}
		stats.TotalDays++
		if r.Status.CountsAsPresent() {
			stats.PresentDays++
		}
		switch r.Status {
		case attendance.StatusAbsent:
			stats.AbsentDays++
		case attendance.StatusLate:
			stats.LateDays++
		case attendance.StatusLeave:
			stats.LeaveDays++
		}
		if r.WorkHours > 0 {
			stats.TotalWorkHours += r.WorkHours
			workedDays++
		}
	}

	if stats.TotalDays > 0 {
		stats.AttendanceRate = float64(stats.PresentDays) / float64(stats.TotalDays) * 100
	}
	if workedDays > 0 {
		stats.AvgWorkHours = stats.TotalWorkHours / float64(workedDays)
	}

	for _, tx := range transactions {
		qualifies := false
		if isStaff(tx, m) {
			stats.TotalSales++
			stats.CustomerCount++
			qualifies = true
		}
		for _, item := range tx.Items {
			if !isAssigned(item, m) {
				continue
			}
			qty := item.Quantity()
			stats.ServicesCompleted += qty
			stats.TotalRevenue += item.Price * float64(qty)
			qualifies = true
		}
		if qualifies {
			stats.TotalTips += roundHalfUp(tx.Amount * TipRate)
		}
	}

	if stats.ServicesCompleted > 0 {
		stats.AvgTipPerService = stats.TotalTips / float64(stats.ServicesCompleted)
	}
	if stats.TotalSales > 0 {
		stats.AvgTransactionValue = stats.TotalRevenue / float64(stats.TotalSales)
	}
	stats.Commission = roundHalfUp(stats.TotalRevenue * CommissionRate)
	stats.PerformanceScore = PerformanceScore(stats)

	return stats
}

// PerformanceScore weighs attendance, work hours, punctuality and productivity
// into an integer in [0, 100].
func PerformanceScore(s report.MemberStats) int {
	days := float64(max(s.TotalDays, 1))

	workHoursRatio := math.Min(100, s.AvgWorkHours/StandardWorkDayHours*100)
	punctuality := (1 - float64(s.LateDays)/days) * 100
	productivity := math.Min(100, float64(s.ServicesCompleted)/days*productivityScale)

	raw := weightAttendance*s.AttendanceRate +
		weightWorkHours*workHoursRatio +
		weightPunctuality*punctuality +
		weightProductivity*productivity

	score := int(roundHalfUp(raw))
	return min(max(score, 0), 100)
}

func teamStats(members []report.MemberStats) *report.TeamStats {
	if len(members) == 0 {
		return nil
	}

	team := &report.TeamStats{TotalMembers: len(members)}
	var rateSum, hoursSum, scoreSum float64
	for _, s := range members {
		rateSum += s.AttendanceRate
		hoursSum += s.AvgWorkHours
		scoreSum += float64(s.PerformanceScore)
		team.TotalPresent += s.PresentDays
		team.TotalAbsent += s.AbsentDays
		team.TotalLate += s.LateDays
	}
	n := float64(len(members))
	team.AvgAttendanceRate = rateSum / n
	team.AvgWorkHours = hoursSum / n
	team.AvgPerformanceScore = scoreSum / n

	ranked := append([]report.MemberStats(nil), members...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PerformanceScore > ranked[j].PerformanceScore
	})
	team.TopPerformers = ranked[:min(TopPerformersLimit, len(ranked))]

	team.NeedsAttention = make([]report.MemberStats, 0)
	for _, s := range members {
		if s.AttendanceRate < AttentionAttendanceRate || s.PerformanceScore < AttentionPerformanceScore {
			team.NeedsAttention = append(team.NeedsAttention, s)
		}
	}

	return team
}

// isStaff joins on staffId when the transaction carries one. The name match is
// a fallback for older transactions and is exact: no trimming or case folding.
func isStaff(tx transaction.PurchaseTransaction, m member.Member) bool {
	if tx.StaffID != "" {
		return tx.StaffID == m.ID
	}
	return tx.Staff != "" && tx.Staff == m.Name
}

func isAssigned(item transaction.LineItem, m member.Member) bool {
	if item.AssignedPersonID != "" {
		return item.AssignedPersonID == m.ID
	}
	return item.AssignedPerson != "" && item.AssignedPerson == m.Name
}

func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
