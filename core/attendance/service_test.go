package attendance_test

import (
	"testing"
	"time"

	"github.com/trezcool/comatt/core"
	"github.com/trezcool/comatt/core/attendance"
	"github.com/trezcool/comatt/core/period"
	"github.com/trezcool/comatt/core/school"
	dummydb "github.com/trezcool/comatt/storage/database/dummy"
)

type testEnv struct {
	svc     attendance.Service
	periods period.Repository
	school  school.Repository
	term    school.Term
	group   school.Group
	subject school.Subject
	alice   school.Student
	bob     school.Student
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("failed to open DB: %v", err)
	}
	schoolRepo := dummydb.NewSchoolRepository(db)
	periodRepo := dummydb.NewPeriodRepository(db)
	attRepo := dummydb.NewAttendanceRepository(db)

	term, err := schoolRepo.CreateTerm(school.Term{
		Name:      "term 1",
		StartDate: date(2026, time.January, 1),
		EndDate:   date(2026, time.March, 31),
	})
	if err != nil {
		t.Fatalf("failed to create term: %v", err)
	}
	subject, err := schoolRepo.CreateSubject(school.Subject{Name: "mathematics", TeacherUsername: "jdoe"})
	if err != nil {
		t.Fatalf("failed to create subject: %v", err)
	}
	group, err := schoolRepo.CreateGroup(school.Group{Name: "grade 6"})
	if err != nil {
		t.Fatalf("failed to create group: %v", err)
	}
	alice, err := schoolRepo.CreateStudent(school.Student{GroupID: group.ID, FirstName: "Alice", LastName: "Adams"})
	if err != nil {
		t.Fatalf("failed to create student: %v", err)
	}
	bob, err := schoolRepo.CreateStudent(school.Student{GroupID: group.ID, FirstName: "Bob", LastName: "Brown"})
	if err != nil {
		t.Fatalf("failed to create student: %v", err)
	}
	return &testEnv{
		svc:     attendance.NewService(attRepo, periodRepo),
		periods: periodRepo,
		school:  schoolRepo,
		term:    term,
		group:   group,
		subject: subject,
		alice:   alice,
		bob:     bob,
	}
}

func (env *testEnv) createPeriod(t *testing.T, number int, day time.Time) period.Period {
	t.Helper()
	p, err := env.periods.CreatePeriod(period.Period{
		PeriodNumber: number,
		SubjectID:    env.subject.ID,
		GroupID:      env.group.ID,
		TermID:       env.term.ID,
		Date:         day,
	})
	if err != nil {
		t.Fatalf("failed to create period: %v", err)
	}
	return p
}

func TestService_Create(t *testing.T) {
	env := setup(t)
	p := env.createPeriod(t, 1, date(2026, time.January, 5))

	a, err := env.svc.Create(attendance.NewAttendance{
		StudentID: env.alice.ID,
		PeriodID:  p.ID,
		Date:      "2026-01-05",
		Status:    true,
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if a.ID == 0 {
		t.Error("Create() did not assign an ID")
	}
	if !a.Status {
		t.Error("Create() status = false, want true")
	}
	if !core.SameDay(a.Date, date(2026, time.January, 5)) {
		t.Errorf("Create() date = %v, want 2026-01-05", a.Date)
	}

	na := attendance.NewAttendance{StudentID: env.alice.ID, PeriodID: 999, Date: "2026-01-05"}
	if _, err = env.svc.Create(na); !core.IsValidationError(err) {
		t.Errorf("Create() with unknown period: error = %v, want a validation error", err)
	}
}

func TestService_RecordForPeriod(t *testing.T) {
	env := setup(t)
	p := env.createPeriod(t, 1, date(2026, time.January, 5))

	pa := attendance.PeriodAttendance{
		Date: "2026-01-05",
		Entries: []attendance.Entry{
			{StudentID: env.alice.ID, Status: true},
			{StudentID: env.bob.ID, Status: false},
		},
	}
	if err := env.svc.RecordForPeriod(p.ID, pa); err != nil {
		t.Fatalf("RecordForPeriod() failed: %v", err)
	}

	rows, err := env.svc.ByPeriod(p.ID)
	if err != nil {
		t.Fatalf("ByPeriod() failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("RecordForPeriod() wrote %d rows, want 2", len(rows))
	}
	if rows[0].StudentID != env.alice.ID || !rows[0].Status {
		t.Errorf("RecordForPeriod() row = %+v, want present record for student %d", rows[0], env.alice.ID)
	}
	if rows[1].StudentID != env.bob.ID || rows[1].Status {
		t.Errorf("RecordForPeriod() row = %+v, want absent record for student %d", rows[1], env.bob.ID)
	}

	taken, err := env.periods.GetPeriodByID(p.ID)
	if err != nil {
		t.Fatalf("GetPeriodByID() failed: %v", err)
	}
	if !taken.AttendanceTaken {
		t.Error("RecordForPeriod() did not mark the period taken")
	}

	// a second capture is a correction, not a record
	if err = env.svc.RecordForPeriod(p.ID, pa); !core.IsValidationError(err) {
		t.Errorf("RecordForPeriod() on a taken period: error = %v, want a validation error", err)
	}

	if err = env.svc.RecordForPeriod(999, pa); err != period.ErrNotFound {
		t.Errorf("RecordForPeriod() unknown period: error = %v, want %v", err, period.ErrNotFound)
	}
}

func TestService_CorrectForPeriod(t *testing.T) {
	env := setup(t)
	p := env.createPeriod(t, 1, date(2026, time.January, 5))

	record := attendance.PeriodAttendance{
		Date: "2026-01-05",
		Entries: []attendance.Entry{
			{StudentID: env.alice.ID, Status: true},
			{StudentID: env.bob.ID, Status: false},
		},
	}
	if err := env.svc.RecordForPeriod(p.ID, record); err != nil {
		t.Fatalf("RecordForPeriod() failed: %v", err)
	}

	// flip bob to present; alice untouched
	correction := attendance.PeriodAttendance{
		Date:    "2026-01-05",
		Entries: []attendance.Entry{{StudentID: env.bob.ID, Status: true}},
	}
	if err := env.svc.CorrectForPeriod(p.ID, correction); err != nil {
		t.Fatalf("CorrectForPeriod() failed: %v", err)
	}

	rows, err := env.svc.ByPeriod(p.ID)
	if err != nil {
		t.Fatalf("ByPeriod() failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("CorrectForPeriod() should amend in place; got %d rows, want 2", len(rows))
	}
	for _, row := range rows {
		if !row.Status {
			t.Errorf("CorrectForPeriod() row = %+v, want present", row)
		}
	}

	// a student with no prior row gets one inserted
	carl, err := env.school.CreateStudent(school.Student{GroupID: env.group.ID, FirstName: "Carl", LastName: "Cole"})
	if err != nil {
		t.Fatalf("failed to create student: %v", err)
	}
	late := attendance.PeriodAttendance{
		Date:    "2026-01-05",
		Entries: []attendance.Entry{{StudentID: carl.ID, Status: false}},
	}
	if err = env.svc.CorrectForPeriod(p.ID, late); err != nil {
		t.Fatalf("CorrectForPeriod() failed: %v", err)
	}
	rows, err = env.svc.ByPeriod(p.ID)
	if err != nil {
		t.Fatalf("ByPeriod() failed: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("CorrectForPeriod() should insert missing rows; got %d rows, want 3", len(rows))
	}

	if err = env.svc.CorrectForPeriod(999, correction); err != period.ErrNotFound {
		t.Errorf("CorrectForPeriod() unknown period: error = %v, want %v", err, period.ErrNotFound)
	}
}

func TestService_CurrentTerm(t *testing.T) {
	restore := attendance.SetNowFunc(func() time.Time { return date(2026, time.January, 6) })
	defer restore()

	env := setup(t)
	p1 := env.createPeriod(t, 1, date(2026, time.January, 5))
	env.createPeriod(t, 2, date(2026, time.January, 5)) // never captured

	// a period outside the current term must not surface
	past, err := env.school.CreateTerm(school.Term{
		Name:      "term 0",
		StartDate: date(2025, time.September, 1),
		EndDate:   date(2025, time.December, 20),
	})
	if err != nil {
		t.Fatalf("failed to create term: %v", err)
	}
	if _, err = env.periods.CreatePeriod(period.Period{
		PeriodNumber: 1, SubjectID: env.subject.ID, GroupID: env.group.ID, TermID: past.ID,
		Date: date(2025, time.October, 1),
	}); err != nil {
		t.Fatalf("failed to create period: %v", err)
	}

	pa := attendance.PeriodAttendance{
		Date: "2026-01-05",
		Entries: []attendance.Entry{
			{StudentID: env.alice.ID, Status: true},
			{StudentID: env.bob.ID, Status: false},
		},
	}
	if err := env.svc.RecordForPeriod(p1.ID, pa); err != nil {
		t.Fatalf("RecordForPeriod() failed: %v", err)
	}

	rows, err := env.svc.CurrentTerm()
	if err != nil {
		t.Fatalf("CurrentTerm() failed: %v", err)
	}
	if len(rows) != 3 { // 2 facts + 1 bare row for the uncaptured period
		t.Fatalf("CurrentTerm() returned %d rows, want 3", len(rows))
	}
	var facts, bare int
	for _, row := range rows {
		if row.TermID != env.term.ID {
			t.Errorf("CurrentTerm() row from term %d, want only term %d", row.TermID, env.term.ID)
		}
		if row.HasFact() {
			facts++
		} else {
			bare++
		}
	}
	if facts != 2 || bare != 1 {
		t.Errorf("CurrentTerm() facts = %d, bare = %d; want 2 and 1", facts, bare)
	}
}

func TestService_TermRate(t *testing.T) {
	restore := attendance.SetNowFunc(func() time.Time { return date(2026, time.January, 6) })
	defer restore()

	env := setup(t)
	p := env.createPeriod(t, 1, date(2026, time.January, 5))
	env.createPeriod(t, 2, date(2026, time.January, 5)) // uncaptured, must not dilute

	pa := attendance.PeriodAttendance{
		Date: "2026-01-05",
		Entries: []attendance.Entry{
			{StudentID: env.alice.ID, Status: true},
			{StudentID: env.bob.ID, Status: false},
		},
	}
	if err := env.svc.RecordForPeriod(p.ID, pa); err != nil {
		t.Fatalf("RecordForPeriod() failed: %v", err)
	}

	rate, err := env.svc.TermRate()
	if err != nil {
		t.Fatalf("TermRate() failed: %v", err)
	}
	if rate != 50 {
		t.Errorf("TermRate() = %v, want 50", rate)
	}
}

func TestService_StudentReport(t *testing.T) {
	restore := attendance.SetNowFunc(func() time.Time { return date(2026, time.January, 6) })
	defer restore()

	env := setup(t)
	p := env.createPeriod(t, 1, date(2026, time.January, 5))

	pa := attendance.PeriodAttendance{
		Date: "2026-01-05",
		Entries: []attendance.Entry{
			{StudentID: env.alice.ID, Status: true},
			{StudentID: env.bob.ID, Status: false},
		},
	}
	if err := env.svc.RecordForPeriod(p.ID, pa); err != nil {
		t.Fatalf("RecordForPeriod() failed: %v", err)
	}

	report, err := env.svc.StudentReport(env.alice.ID)
	if err != nil {
		t.Fatalf("StudentReport() failed: %v", err)
	}
	if len(report.Rows) != 1 {
		t.Fatalf("StudentReport() returned %d rows, want 1", len(report.Rows))
	}
	if got := report.Rows[0]["period1"]; got != "Present" {
		t.Errorf("StudentReport() period1 = %q, want \"Present\"", got)
	}
	if got := report.Rows[0]["date"]; got != "01-05-2026" {
		t.Errorf("StudentReport() date = %q, want \"01-05-2026\"", got)
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
