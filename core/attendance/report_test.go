package attendance

import (
	"reflect"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fact builds a term row carrying an attendance fact.
func fact(studentID, periodNumber int, day time.Time, present bool) TermAttendance {
	return TermAttendance{
		AttendanceID: null.IntFrom(studentID*1000 + periodNumber),
		StudentID:    null.IntFrom(studentID),
		Status:       null.BoolFrom(present),
		PeriodNumber: periodNumber,
		Date:         day,
	}
}

// untaken builds a term row for a period whose attendance was never captured.
func untaken(periodNumber int, day time.Time) TermAttendance {
	return TermAttendance{
		PeriodNumber: periodNumber,
		Date:         day,
	}
}

func TestTermRate(t *testing.T) {
	mon := date(2026, time.January, 5)

	tests := []struct {
		name string
		rows []TermAttendance
		want float64
	}{
		{name: "no rows", want: 0},
		{name: "only untaken periods", rows: []TermAttendance{untaken(1, mon), untaken(2, mon)}, want: 0},
		{
			name: "3 of 4 present",
			rows: []TermAttendance{
				fact(1, 1, mon, true),
				fact(2, 1, mon, true),
				fact(3, 1, mon, true),
				fact(4, 1, mon, false),
			},
			want: 75,
		},
		{
			name: "untaken periods do not dilute the rate",
			rows: []TermAttendance{
				fact(1, 1, mon, true),
				fact(2, 1, mon, false),
				untaken(2, mon),
				untaken(3, mon),
			},
			want: 50,
		},
		{
			name: "rounded to 2 decimals",
			rows: []TermAttendance{
				fact(1, 1, mon, true),
				fact(2, 1, mon, false),
				fact(3, 1, mon, false),
			},
			want: 33.33,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TermRate(tt.rows); got != tt.want {
				t.Errorf("TermRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCurrentWindowRate(t *testing.T) {
	today := date(2026, time.January, 5) // Monday
	sun1 := date(2026, time.January, 11)
	sun2 := date(2026, time.January, 18)

	tests := []struct {
		name string
		rows []TermAttendance
		want float64
	}{
		{name: "no rows", want: 0},
		{
			name: "no upcoming Sunday facts",
			rows: []TermAttendance{
				fact(1, 1, today, true),
				fact(1, 1, date(2026, time.January, 6), false),
				untaken(1, sun1),
			},
			want: 0,
		},
		{
			name: "nearest Sunday wins",
			rows: []TermAttendance{
				fact(1, 1, sun1, true),
				fact(2, 1, sun1, false),
				fact(1, 1, sun2, false),
				fact(2, 1, sun2, false),
			},
			want: 50,
		},
		{
			name: "past Sundays are ignored",
			rows: []TermAttendance{
				fact(1, 1, date(2026, time.January, 4), false), // Sunday before today
				fact(1, 1, sun1, true),
			},
			want: 100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurrentWindowRate(tt.rows, today); got != tt.want {
				t.Errorf("CurrentWindowRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStudentReport(t *testing.T) {
	day1 := date(2026, time.January, 5)
	day2 := date(2026, time.January, 6)

	rows := []TermAttendance{
		fact(7, 1, day1, true),
		fact(7, 2, day1, false),
		fact(7, 2, day2, true), // period 1 not captured on day2
		fact(8, 1, day1, false),
		untaken(3, day1),
	}

	report := StudentReport(rows, 7)

	wantColumns := []ReportColumn{
		{Label: "Date", Accessor: "date"},
		{Label: "Period 1", Accessor: "period1"},
		{Label: "Period 2", Accessor: "period2"},
	}
	if !reflect.DeepEqual(report.Columns, wantColumns) {
		t.Errorf("StudentReport() columns = %v, want %v", report.Columns, wantColumns)
	}

	wantRows := []map[string]string{
		{"date": "01-05-2026", "period1": "Present", "period2": "Absent"},
		{"date": "01-06-2026", "period1": "N/A", "period2": "Present"},
	}
	if !reflect.DeepEqual(report.Rows, wantRows) {
		t.Errorf("StudentReport() rows = %v, want %v", report.Rows, wantRows)
	}
}

func TestStudentReport_noHistory(t *testing.T) {
	report := StudentReport(nil, 7)
	if len(report.Rows) != 0 {
		t.Errorf("StudentReport() rows = %v, want none", report.Rows)
	}
	if len(report.Columns) != 1 {
		t.Errorf("StudentReport() columns = %v, want Date only", report.Columns)
	}
}
