package school

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/comatt/core"
)

// Term is a bounded, inclusive date range within which Periods are scheduled.
type Term struct {
	ID        int       `json:"termId" db:"term_id"`
	Name      string    `json:"termName" db:"term_name"`
	StartDate time.Time `json:"startDate" db:"start_date"`
	EndDate   time.Time `json:"endDate" db:"end_date"`
}

// Contains reports whether `t` covers the given day (inclusive on both ends).
func (t Term) Contains(day time.Time) bool {
	day = core.Date(day)
	return !day.Before(core.Date(t.StartDate)) && !day.After(core.Date(t.EndDate))
}

// Subject is a taught discipline owned by a teacher.
type Subject struct {
	ID              int    `json:"subjectId" db:"subject_id"`
	Name            string `json:"subjectName" db:"subject_name"`
	TeacherUsername string `json:"teacherId" db:"teacher_username"`
}

// Group is a roster container; each Student belongs to exactly one Group.
type Group struct {
	ID   int    `json:"groupId" db:"group_id"`
	Name string `json:"groupName" db:"group_name"`
}

type Student struct {
	ID              int    `json:"studentId" db:"student_id"`
	GroupID         int    `json:"groupId" db:"group_id"`
	FirstName       string `json:"firstName" db:"first_name"`
	LastName        string `json:"lastName" db:"last_name"`
	Age             int    `json:"age" db:"age"`
	ParentFirstName string `json:"parentFirstName" db:"parent_first_name"`
	ParentLastName  string `json:"parentLastName" db:"parent_last_name"`
	ParentPhone     string `json:"parentPhone" db:"parent_phone"`
	ParentEmail     string `json:"parentEmail" db:"parent_email"`
}

// NewTerm contains information needed to create a new Term.
type NewTerm struct {
	Name      string `json:"termName" validate:"required"`
	StartDate string `json:"startDate" validate:"required,date_"`
	EndDate   string `json:"endDate" validate:"required,date_"`
}

func (nt *NewTerm) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	if err := validate.Struct(nt); err != nil {
		return err
	}
	start, _ := time.Parse(core.DateFormat, nt.StartDate)
	end, _ := time.Parse(core.DateFormat, nt.EndDate)
	if end.Before(start) {
		return core.NewValidationError(nil, core.FieldError{Field: "endDate", Error: "endDate cannot be before startDate"})
	}
	return nil
}

type NewSubject struct {
	Name            string `json:"subjectName" validate:"required"`
	TeacherUsername string `json:"teacherId" validate:"required"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.TeacherUsername = core.CleanString(ns.TeacherUsername, true /* lower */)
	return validate.Struct(ns)
}

type NewGroup struct {
	Name string `json:"groupName" validate:"required"`
}

func (ng *NewGroup) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	return validate.Struct(ng)
}

type NewStudent struct {
	GroupID         int    `json:"groupId" validate:"required,min=1"`
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Age             int    `json:"age" validate:"omitempty,min=1"`
	ParentFirstName string `json:"parentFirstName"`
	ParentLastName  string `json:"parentLastName"`
	ParentPhone     string `json:"parentPhone"`
	ParentEmail     string `json:"parentEmail" validate:"omitempty,email"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.ParentEmail = core.CleanString(ns.ParentEmail, true /* lower */)
	return validate.Struct(ns)
}

// Patch structs; absent fields are left untouched.

type UpdateTerm struct {
	Name      null.String `json:"termName"`
	StartDate null.String `json:"startDate" validate:"omitempty,date_"`
	EndDate   null.String `json:"endDate" validate:"omitempty,date_"`
}

func (ut *UpdateTerm) Validate(validate *validator.Validate) error {
	if err := validate.Struct(ut); err != nil {
		return err
	}
	var flds []core.FieldError
	flds = core.CheckDate(flds, "startDate", ut.StartDate)
	flds = core.CheckDate(flds, "endDate", ut.EndDate)
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

type UpdateSubject struct {
	Name            null.String `json:"subjectName"`
	TeacherUsername null.String `json:"teacherId"`
}

func (us *UpdateSubject) Validate(validate *validator.Validate) error {
	return validate.Struct(us)
}

type UpdateGroup struct {
	Name null.String `json:"groupName"`
}

func (ug *UpdateGroup) Validate(validate *validator.Validate) error {
	return validate.Struct(ug)
}

type UpdateStudent struct {
	GroupID         null.Int    `json:"groupId"`
	FirstName       null.String `json:"firstName"`
	LastName        null.String `json:"lastName"`
	Age             null.Int    `json:"age" validate:"omitempty,min=1"`
	ParentFirstName null.String `json:"parentFirstName"`
	ParentLastName  null.String `json:"parentLastName"`
	ParentPhone     null.String `json:"parentPhone"`
	ParentEmail     null.String `json:"parentEmail" validate:"omitempty,email"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	return validate.Struct(us)
}
