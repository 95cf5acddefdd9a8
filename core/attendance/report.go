package attendance

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/trezcool/comatt/core"
)

// reportDateFormat is the date format of report row labels.
const reportDateFormat = "01-02-2006"

type (
	// ReportColumn labels one column of a student report; Accessor is the row
	// map key holding the column's cell value.
	ReportColumn struct {
		Label    string `json:"label"`
		Accessor string `json:"accessor"`
	}

	// Report is a date x period pivot of one student's attendance history,
	// ready for rendering: an ordered column list and one row per date.
	Report struct {
		Columns []ReportColumn      `json:"columns"`
		Rows    []map[string]string `json:"rows"`
	}
)

// TermRate computes the overall attendance rate of the given term rows as a
// percentage rounded to 2 decimals. Rows without an attendance fact (periods
// whose attendance was never captured) do not count; no facts at all is 0,
// not an error.
func TermRate(rows []TermAttendance) float64 {
	var present, total int
	for _, row := range rows {
		if !row.HasFact() {
			continue
		}
		total++
		if row.Status.Bool {
			present++
		}
	}
	if total == 0 {
		return 0
	}
	return round2(float64(present) / float64(total) * 100)
}

// CurrentWindowRate computes the attendance rate of the nearest upcoming
// Sunday-anchored reporting cycle: among rows dated strictly after `today`,
// the earliest date falling on a Sunday defines the window, and the rate
// covers every row on that date. No future Sunday-dated row means an empty
// window and a 0 rate.
func CurrentWindowRate(rows []TermAttendance, today time.Time) float64 {
	today = core.Date(today)

	var window time.Time
	for _, row := range rows {
		if !row.HasFact() {
			continue
		}
		d := core.Date(row.Date)
		if !d.After(today) || d.Weekday() != time.Sunday {
			continue
		}
		if window.IsZero() || d.Before(window) {
			window = d
		}
	}
	if window.IsZero() {
		return 0
	}

	var present, total int
	for _, row := range rows {
		if row.HasFact() && core.SameDay(row.Date, window) {
			total++
			if row.Status.Bool {
				present++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return round2(float64(present) / float64(total) * 100)
}

// StudentReport pivots the student's term rows into one row per date with one
// column per period number observed across the student's history. A cell with
// no backing record reads "N/A". The column set is recomputed per report, not
// a fixed schema.
func StudentReport(rows []TermAttendance, studentID int) Report {
	type fact struct {
		periodNumber int
		status       bool
	}
	byDate := make(map[time.Time][]fact)
	periodNumbers := make(map[int]struct{})

	for _, row := range rows {
		if !row.HasFact() || row.StudentID.Int != studentID {
			continue
		}
		d := core.Date(row.Date)
		byDate[d] = append(byDate[d], fact{row.PeriodNumber, row.Status.Bool})
		periodNumbers[row.PeriodNumber] = struct{}{}
	}

	columns := []ReportColumn{{Label: "Date", Accessor: "date"}}
	numbers := make([]int, 0, len(periodNumbers))
	for n := range periodNumbers {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	for _, n := range numbers {
		columns = append(columns, ReportColumn{
			Label:    fmt.Sprintf("Period %d", n),
			Accessor: fmt.Sprintf("period%d", n),
		})
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	reportRows := make([]map[string]string, 0, len(dates))
	for _, d := range dates {
		row := map[string]string{"date": d.Format(reportDateFormat)}
		for _, col := range columns[1:] {
			row[col.Accessor] = "N/A"
		}
		for _, f := range byDate[d] {
			cell := "Absent"
			if f.status {
				cell = "Present"
			}
			row[fmt.Sprintf("period%d", f.periodNumber)] = cell
		}
		reportRows = append(reportRows, row)
	}
	return Report{Columns: columns, Rows: reportRows}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
