package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/comatt/core"
)

// Attendance is the present/absent fact for one Student in one Period.
// At most one record exists per (Student, Period) pair.
type Attendance struct {
	ID        int       `json:"attendanceId" db:"attendance_id"`
	StudentID int       `json:"studentId" db:"student_id"`
	PeriodID  int       `json:"periodId" db:"period_id"`
	Date      time.Time `json:"date" db:"date"`
	Status    bool      `json:"status" db:"status"` // true = present
}

// Entry is one student's outcome in a bulk capture/correction.
type Entry struct {
	StudentID int  `json:"studentId" validate:"required,min=1"`
	Status    bool `json:"status"`
}

// TermAttendance is a Period of the term covering today, enriched with its
// Term metadata and, when attendance was captured, the per-student fact.
// The join is an outer one: a term with periods but no attendance yet still
// surfaces rows, with the attendance fields unset.
type TermAttendance struct {
	AttendanceID null.Int  `json:"attendanceId" db:"attendance_id"`
	StudentID    null.Int  `json:"studentId" db:"student_id"`
	Status       null.Bool `json:"status" db:"status"`
	PeriodID     int       `json:"periodId" db:"period_id"`
	PeriodNumber int       `json:"periodNumber" db:"period_number"`
	SubjectID    int       `json:"subjectId" db:"subject_id"`
	GroupID      int       `json:"groupId" db:"group_id"`
	Date         time.Time `json:"date" db:"date"`
	TermID       int       `json:"termId" db:"term_id"`
	TermName     string    `json:"termName" db:"term_name"`
	StartDate    time.Time `json:"startDate" db:"start_date"`
	EndDate      time.Time `json:"endDate" db:"end_date"`
}

// HasFact reports whether an attendance record backs this row.
func (ta TermAttendance) HasFact() bool {
	return ta.AttendanceID.Valid
}

// NewAttendance contains information needed to create a single Attendance
// record (manual administration; the bulk flows do not use it).
type NewAttendance struct {
	StudentID int    `json:"studentId" validate:"required,min=1"`
	PeriodID  int    `json:"periodId" validate:"required,min=1"`
	Date      string `json:"date" validate:"required,date_"`
	Status    bool   `json:"status"`
}

func (na *NewAttendance) Validate(validate *validator.Validate) error {
	return validate.Struct(na)
}

// UpdateAttendance defines what information may be provided to modify an
// existing Attendance record; absent fields are left untouched.
type UpdateAttendance struct {
	StudentID null.Int    `json:"studentId" validate:"omitempty,min=1"`
	PeriodID  null.Int    `json:"periodId" validate:"omitempty,min=1"`
	Date      null.String `json:"date" validate:"omitempty,date_"`
	Status    null.Bool   `json:"status"`
}

func (ua *UpdateAttendance) Validate(validate *validator.Validate) error {
	if err := validate.Struct(ua); err != nil {
		return err
	}
	var flds []core.FieldError
	flds = core.CheckPositive(flds, "studentId", ua.StudentID)
	flds = core.CheckPositive(flds, "periodId", ua.PeriodID)
	flds = core.CheckDate(flds, "date", ua.Date)
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

// IsEmpty reports whether the patch carries no field at all.
func (ua UpdateAttendance) IsEmpty() bool {
	return !(ua.StudentID.Valid || ua.PeriodID.Valid || ua.Date.Valid || ua.Status.Valid)
}

// PeriodAttendance is the bulk capture/correction payload for one period.
type PeriodAttendance struct {
	Date    string  `json:"date" validate:"required,date_"`
	Entries []Entry `json:"attendances" validate:"dive"`
}

func (pa *PeriodAttendance) Validate(validate *validator.Validate) error {
	return validate.Struct(pa)
}
