package export

import (
	"bytes"
	"fmt"

	"github.com/cmlabs-hris/attendance-analytics/internal/domain/report"
	"github.com/xuri/excelize/v2"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	membersSheet = "Members"
	summarySheet = "Team Summary"
)

// WriteTeamWorkbook renders a team report as an XLSX workbook with a member
// sheet laid out like the CSV export and a summary sheet of team averages.
func WriteTeamWorkbook(rep report.TeamReport) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), membersSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, row := range ToCSVRows(rep.Members) {
		if err := setRow(f, membersSheet, i+1, row); err != nil {
			return nil, err
		}
	}
	if err := styleHeader(f, membersSheet, len(teamReportHeader), headerStyle); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	for i, row := range summaryRows(rep) {
		if err := setRow(f, summarySheet, i+1, row); err != nil {
			return nil, err
		}
	}
	if err := styleHeader(f, summarySheet, 2, headerStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

func summaryRows(rep report.TeamReport) [][]string {
	rows := [][]string{
		{"Metric", "Value"},
		{"Start Date", rep.StartDate},
		{"End Date", rep.EndDate},
		{"Generated At", rep.GeneratedAt},
	}
	if rep.Team == nil {
		return append(rows, []string{"Total Members", "0"})
	}

	t := rep.Team
	rows = append(rows,
		[]string{"Total Members", fmt.Sprintf("%d", t.TotalMembers)},
		[]string{"Avg Attendance Rate (%)", oneDecimal(t.AvgAttendanceRate)},
		[]string{"Avg Work Hours", oneDecimal(t.AvgWorkHours)},
		[]string{"Avg Performance Score", oneDecimal(t.AvgPerformanceScore)},
		[]string{"Total Present", fmt.Sprintf("%d", t.TotalPresent)},
		[]string{"Total Absent", fmt.Sprintf("%d", t.TotalAbsent)},
		[]string{"Total Late", fmt.Sprintf("%d", t.TotalLate)},
	)
	for i, s := range t.TopPerformers {
		rows = append(rows, []string{fmt.Sprintf("Top Performer %d", i+1), fmt.Sprintf("%s (%d)", s.Name, s.PerformanceScore)})
	}
	for _, s := range t.NeedsAttention {
		rows = append(rows, []string{"Needs Attention", s.Name})
	}
	return rows
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, columns, style int) error {
	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}
