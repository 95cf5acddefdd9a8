package attendance

import (
	"errors"
	"time"

	"github.com/trezcool/comatt/core"
	"github.com/trezcool/comatt/core/period"
)

var (
	// errors
	ErrNotFound     = errors.New("attendance not found")
	ErrAlreadyTaken = errors.New("attendance has already been taken for this period")
)

// nowFunc returns the current time; a package var so tests can pin "today".
var nowFunc = time.Now

type (
	// Repository persists Attendance facts. RecordForPeriod and
	// UpsertForPeriod are all-or-nothing: every per-student write and the
	// period's attendanceTaken flip commit together or not at all.
	Repository interface {
		CreateAttendance(a Attendance) (Attendance, error)
		QueryAllAttendances() ([]Attendance, error)
		GetAttendanceByID(id int) (Attendance, error)
		UpdateAttendance(id int, ua UpdateAttendance) (Attendance, error)
		DeleteAttendance(id int) error
		GetAttendancesByPeriodID(periodID int) ([]Attendance, error)
		// QueryCurrentTerm returns the outer-joined term rows for the term
		// whose date range covers `today`.
		QueryCurrentTerm(today time.Time) ([]TermAttendance, error)
		// RecordForPeriod inserts one row per entry and marks the period taken.
		RecordForPeriod(periodID int, date time.Time, entries []Entry) error
		// UpsertForPeriod updates each entry's existing row to the new status
		// and date, inserting rows for students that have none.
		UpsertForPeriod(periodID int, date time.Time, entries []Entry) error
	}

	Service interface {
		Create(na NewAttendance) (Attendance, error)
		QueryAll() ([]Attendance, error)
		GetByID(id int) (Attendance, error)
		Update(id int, ua UpdateAttendance) (Attendance, error)
		Delete(id int) error
		ByPeriod(periodID int) ([]Attendance, error)
		CurrentTerm() ([]TermAttendance, error)
		RecordForPeriod(periodID int, pa PeriodAttendance) error
		CorrectForPeriod(periodID int, pa PeriodAttendance) error

		TermRate() (float64, error)
		CurrentWindowRate() (float64, error)
		StudentReport(studentID int) (Report, error)
	}

	service struct {
		repo    Repository
		periods period.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, periods period.Repository) Service {
	return &service{repo: repo, periods: periods}
}

func (svc *service) Create(na NewAttendance) (Attendance, error) {
	if _, err := svc.periods.GetPeriodByID(na.PeriodID); err != nil {
		if err == period.ErrNotFound {
			return Attendance{}, core.NewValidationError(err, core.FieldError{Field: "periodId", Error: err.Error()})
		}
		return Attendance{}, err
	}
	date, _ := time.Parse(core.DateFormat, na.Date)
	return svc.repo.CreateAttendance(Attendance{
		StudentID: na.StudentID,
		PeriodID:  na.PeriodID,
		Date:      core.Date(date),
		Status:    na.Status,
	})
}

func (svc *service) QueryAll() ([]Attendance, error) {
	return svc.repo.QueryAllAttendances()
}

func (svc *service) GetByID(id int) (Attendance, error) {
	return svc.repo.GetAttendanceByID(id)
}

func (svc *service) Update(id int, ua UpdateAttendance) (Attendance, error) {
	if ua.IsEmpty() {
		return Attendance{}, core.NewValidationError(errors.New("no fields to update"))
	}
	return svc.repo.UpdateAttendance(id, ua)
}

func (svc *service) Delete(id int) error {
	return svc.repo.DeleteAttendance(id)
}

func (svc *service) ByPeriod(periodID int) ([]Attendance, error) {
	if _, err := svc.periods.GetPeriodByID(periodID); err != nil {
		return nil, err
	}
	return svc.repo.GetAttendancesByPeriodID(periodID)
}

func (svc *service) CurrentTerm() ([]TermAttendance, error) {
	return svc.repo.QueryCurrentTerm(core.Date(nowFunc()))
}

// RecordForPeriod captures a period's attendance for the first time: exactly
// one row per submitted student, then the period is marked taken, all within
// one transaction. A period already marked taken is rejected; corrections go
// through CorrectForPeriod.
func (svc *service) RecordForPeriod(periodID int, pa PeriodAttendance) error {
	p, err := svc.periods.GetPeriodByID(periodID)
	if err != nil {
		return err
	}
	if p.AttendanceTaken {
		return core.NewValidationError(ErrAlreadyTaken)
	}
	date, _ := time.Parse(core.DateFormat, pa.Date)
	return svc.repo.RecordForPeriod(periodID, core.Date(date), pa.Entries)
}

// CorrectForPeriod amends a previously captured period: each submitted
// student's row is set to the new status and date. A student with no prior
// row gets one inserted rather than being silently dropped.
func (svc *service) CorrectForPeriod(periodID int, pa PeriodAttendance) error {
	if _, err := svc.periods.GetPeriodByID(periodID); err != nil {
		return err
	}
	date, _ := time.Parse(core.DateFormat, pa.Date)
	return svc.repo.UpsertForPeriod(periodID, core.Date(date), pa.Entries)
}

func (svc *service) TermRate() (float64, error) {
	rows, err := svc.CurrentTerm()
	if err != nil {
		return 0, err
	}
	return TermRate(rows), nil
}

func (svc *service) CurrentWindowRate() (float64, error) {
	rows, err := svc.CurrentTerm()
	if err != nil {
		return 0, err
	}
	return CurrentWindowRate(rows, core.Date(nowFunc())), nil
}

func (svc *service) StudentReport(studentID int) (Report, error) {
	rows, err := svc.CurrentTerm()
	if err != nil {
		return Report{}, err
	}
	return StudentReport(rows, studentID), nil
}
