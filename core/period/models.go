package period

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/comatt/core"
)

// Period is one scheduled class session for a Group/Subject/Term on a specific
// date, with a slot number within the day.
type Period struct {
	ID              int       `json:"periodId" db:"period_id"`
	PeriodNumber    int       `json:"periodNumber" db:"period_number"`
	SubjectID       int       `json:"subjectId" db:"subject_id"`
	GroupID         int       `json:"groupId" db:"group_id"`
	TermID          int       `json:"termId" db:"term_id"`
	Date            time.Time `json:"date" db:"date"`
	AttendanceTaken bool      `json:"attendanceTaken" db:"attendance_taken"`
}

// ScheduleEntry is a Period enriched with its Subject and Group names,
// as surfaced on a teacher's schedule.
type ScheduleEntry struct {
	Period
	SubjectName string `json:"subjectName" db:"subject_name"`
	GroupName   string `json:"groupName" db:"group_name"`
}

// RosterEntry is one student on a period's roster. The roster is derived
// transitively through the period's group; it is not stored per period.
type RosterEntry struct {
	StudentID int    `json:"studentId" db:"student_id"`
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`
}

// NewPeriod contains information needed to schedule a new Period.
type NewPeriod struct {
	PeriodNumber int    `json:"periodNumber" validate:"required,min=1"`
	SubjectID    int    `json:"subjectId" validate:"required,min=1"`
	GroupID      int    `json:"groupId" validate:"required,min=1"`
	TermID       int    `json:"termId" validate:"required,min=1"`
	Date         string `json:"date" validate:"required,date_"`
}

func (np *NewPeriod) Validate(validate *validator.Validate) error {
	return validate.Struct(np)
}

// UpdatePeriod defines what information may be provided to modify an existing
// Period; absent fields are left untouched.
type UpdatePeriod struct {
	PeriodNumber    null.Int    `json:"periodNumber" validate:"omitempty,min=1"`
	SubjectID       null.Int    `json:"subjectId" validate:"omitempty,min=1"`
	GroupID         null.Int    `json:"groupId" validate:"omitempty,min=1"`
	TermID          null.Int    `json:"termId" validate:"omitempty,min=1"`
	Date            null.String `json:"date" validate:"omitempty,date_"`
	AttendanceTaken null.Bool   `json:"attendanceTaken"`
}

func (up *UpdatePeriod) Validate(validate *validator.Validate) error {
	if err := validate.Struct(up); err != nil {
		return err
	}
	var flds []core.FieldError
	flds = core.CheckPositive(flds, "periodNumber", up.PeriodNumber)
	flds = core.CheckPositive(flds, "subjectId", up.SubjectID)
	flds = core.CheckPositive(flds, "groupId", up.GroupID)
	flds = core.CheckPositive(flds, "termId", up.TermID)
	flds = core.CheckDate(flds, "date", up.Date)
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

// IsEmpty reports whether the patch carries no field at all.
func (up UpdatePeriod) IsEmpty() bool {
	return !(up.PeriodNumber.Valid || up.SubjectID.Valid || up.GroupID.Valid ||
		up.TermID.Valid || up.Date.Valid || up.AttendanceTaken.Valid)
}

// CopySchedule identifies a source day whose periods are to be replicated onto
// a target day.
type CopySchedule struct {
	SourceDate string `json:"sourceDate" validate:"required,date_"`
	TargetDate string `json:"targetDate" validate:"required,date_"`
}

// Validate also rejects sourceDate == targetDate: copying a day onto
// itself would only duplicate its schedule in place.
func (cs *CopySchedule) Validate(validate *validator.Validate) error {
	if err := validate.Struct(cs); err != nil {
		return err
	}
	if cs.SourceDate == cs.TargetDate {
		return core.NewValidationError(nil, core.FieldError{Field: "targetDate", Error: "targetDate must differ from sourceDate"})
	}
	return nil
}

// QueryFilter restricts Query results; zero values mean "no restriction".
type QueryFilter struct {
	TermID int    `query:"termId"`
	Date   string `query:"date"`
}
