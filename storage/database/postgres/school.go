package pgrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/comatt/core/school"
)

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sqlx.DB) *schoolRepository {
	return &schoolRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to the entity's ErrNotFound
func (repo schoolRepository) trapNoRowsErr(err, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// trapNoneAffected maps a no-op DELETE/UPDATE to the entity's ErrNotFound
func (repo schoolRepository) trapNoneAffected(res sql.Result, notFound error) error {
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound
	}
	return nil
}

// ------------------------------------------------------------------ Terms

func (repo schoolRepository) CreateTerm(t school.Term) (school.Term, error) {
	err := repo.db.QueryRow(
		"INSERT INTO terms (term_name, start_date, end_date) VALUES ($1, $2, $3) RETURNING term_id",
		t.Name, t.StartDate, t.EndDate,
	).Scan(&t.ID)
	if err != nil {
		return school.Term{}, errors.Wrap(err, "inserting term")
	}
	return t, nil
}

func (repo schoolRepository) QueryAllTerms() ([]school.Term, error) {
	var terms []school.Term
	if err := repo.db.Select(&terms, "SELECT * FROM terms ORDER BY start_date"); err != nil {
		return nil, errors.Wrap(err, "querying terms")
	}
	return terms, nil
}

func (repo schoolRepository) GetTermByID(id int) (school.Term, error) {
	var t school.Term
	if err := repo.db.Get(&t, "SELECT * FROM terms WHERE term_id = $1", id); err != nil {
		return school.Term{}, repo.trapNoRowsErr(err, school.ErrTermNotFound, "finding term")
	}
	return t, nil
}

func (repo schoolRepository) UpdateTerm(id int, ut school.UpdateTerm) (school.Term, error) {
	var p patch
	if ut.Name.Valid {
		p.set("term_name", ut.Name.String)
	}
	if ut.StartDate.Valid {
		date, err := parseDate(ut.StartDate.String)
		if err != nil {
			return school.Term{}, err
		}
		p.set("start_date", date)
	}
	if ut.EndDate.Valid {
		date, err := parseDate(ut.EndDate.String)
		if err != nil {
			return school.Term{}, err
		}
		p.set("end_date", date)
	}
	if p.empty() {
		return repo.GetTermByID(id)
	}

	setClause, next := p.setClause()
	query := "UPDATE terms SET " + setClause + " WHERE term_id = $" + itoa(next) + " RETURNING *"

	var t school.Term
	err := repo.db.Get(&t, query, append(p.args, id)...)
	if err != nil {
		return school.Term{}, repo.trapNoRowsErr(err, school.ErrTermNotFound, "updating term")
	}
	return t, nil
}

func (repo schoolRepository) DeleteTerm(id int) error {
	res, err := repo.db.Exec("DELETE FROM terms WHERE term_id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting term")
	}
	return repo.trapNoneAffected(res, school.ErrTermNotFound)
}

// ------------------------------------------------------------------ Subjects

func (repo schoolRepository) CreateSubject(s school.Subject) (school.Subject, error) {
	err := repo.db.QueryRow(
		"INSERT INTO subjects (subject_name, teacher_username) VALUES ($1, $2) RETURNING subject_id",
		s.Name, s.TeacherUsername,
	).Scan(&s.ID)
	if err != nil {
		return school.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return s, nil
}

func (repo schoolRepository) QueryAllSubjects() ([]school.Subject, error) {
	var subjects []school.Subject
	if err := repo.db.Select(&subjects, "SELECT * FROM subjects ORDER BY subject_name"); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	return subjects, nil
}

func (repo schoolRepository) GetSubjectByID(id int) (school.Subject, error) {
	var s school.Subject
	if err := repo.db.Get(&s, "SELECT * FROM subjects WHERE subject_id = $1", id); err != nil {
		return school.Subject{}, repo.trapNoRowsErr(err, school.ErrSubjectNotFound, "finding subject")
	}
	return s, nil
}

func (repo schoolRepository) UpdateSubject(id int, us school.UpdateSubject) (school.Subject, error) {
	var p patch
	if us.Name.Valid {
		p.set("subject_name", us.Name.String)
	}
	if us.TeacherUsername.Valid {
		p.set("teacher_username", us.TeacherUsername.String)
	}
	if p.empty() {
		return repo.GetSubjectByID(id)
	}

	setClause, next := p.setClause()
	query := "UPDATE subjects SET " + setClause + " WHERE subject_id = $" + itoa(next) + " RETURNING *"

	var s school.Subject
	err := repo.db.Get(&s, query, append(p.args, id)...)
	if err != nil {
		return school.Subject{}, repo.trapNoRowsErr(err, school.ErrSubjectNotFound, "updating subject")
	}
	return s, nil
}

func (repo schoolRepository) DeleteSubject(id int) error {
	res, err := repo.db.Exec("DELETE FROM subjects WHERE subject_id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return repo.trapNoneAffected(res, school.ErrSubjectNotFound)
}

// ------------------------------------------------------------------ Groups

func (repo schoolRepository) CreateGroup(g school.Group) (school.Group, error) {
	err := repo.db.QueryRow(
		"INSERT INTO groups (group_name) VALUES ($1) RETURNING group_id", g.Name,
	).Scan(&g.ID)
	if err != nil {
		return school.Group{}, errors.Wrap(err, "inserting group")
	}
	return g, nil
}

func (repo schoolRepository) QueryAllGroups() ([]school.Group, error) {
	var groups []school.Group
	if err := repo.db.Select(&groups, "SELECT * FROM groups ORDER BY group_name"); err != nil {
		return nil, errors.Wrap(err, "querying groups")
	}
	return groups, nil
}

func (repo schoolRepository) GetGroupByID(id int) (school.Group, error) {
	var g school.Group
	if err := repo.db.Get(&g, "SELECT * FROM groups WHERE group_id = $1", id); err != nil {
		return school.Group{}, repo.trapNoRowsErr(err, school.ErrGroupNotFound, "finding group")
	}
	return g, nil
}

func (repo schoolRepository) UpdateGroup(id int, ug school.UpdateGroup) (school.Group, error) {
	if !ug.Name.Valid {
		return repo.GetGroupByID(id)
	}
	var g school.Group
	err := repo.db.Get(&g, "UPDATE groups SET group_name = $1 WHERE group_id = $2 RETURNING *", ug.Name.String, id)
	if err != nil {
		return school.Group{}, repo.trapNoRowsErr(err, school.ErrGroupNotFound, "updating group")
	}
	return g, nil
}

func (repo schoolRepository) DeleteGroup(id int) error {
	res, err := repo.db.Exec("DELETE FROM groups WHERE group_id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting group")
	}
	return repo.trapNoneAffected(res, school.ErrGroupNotFound)
}

// ------------------------------------------------------------------ Students

func (repo schoolRepository) CreateStudent(s school.Student) (school.Student, error) {
	err := repo.db.QueryRow(`
		INSERT INTO students (group_id, first_name, last_name, age, parent_first_name, parent_last_name, parent_phone, parent_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING student_id`,
		s.GroupID, s.FirstName, s.LastName, s.Age, s.ParentFirstName, s.ParentLastName, s.ParentPhone, s.ParentEmail,
	).Scan(&s.ID)
	if err != nil {
		return school.Student{}, errors.Wrap(err, "inserting student")
	}
	return s, nil
}

func (repo schoolRepository) QueryAllStudents() ([]school.Student, error) {
	var students []school.Student
	if err := repo.db.Select(&students, "SELECT * FROM students ORDER BY last_name, first_name"); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return students, nil
}

func (repo schoolRepository) GetStudentByID(id int) (school.Student, error) {
	var s school.Student
	if err := repo.db.Get(&s, "SELECT * FROM students WHERE student_id = $1", id); err != nil {
		return school.Student{}, repo.trapNoRowsErr(err, school.ErrStudentNotFound, "finding student")
	}
	return s, nil
}

func (repo schoolRepository) GetStudentsByGroupID(groupID int) ([]school.Student, error) {
	var students []school.Student
	err := repo.db.Select(&students,
		"SELECT * FROM students WHERE group_id = $1 ORDER BY last_name, first_name", groupID)
	if err != nil {
		return nil, errors.Wrap(err, "querying group students")
	}
	return students, nil
}

func (repo schoolRepository) UpdateStudent(id int, us school.UpdateStudent) (school.Student, error) {
	var p patch
	if us.GroupID.Valid {
		p.set("group_id", us.GroupID.Int)
	}
	if us.FirstName.Valid {
		p.set("first_name", us.FirstName.String)
	}
	if us.LastName.Valid {
		p.set("last_name", us.LastName.String)
	}
	if us.Age.Valid {
		p.set("age", us.Age.Int)
	}
	if us.ParentFirstName.Valid {
		p.set("parent_first_name", us.ParentFirstName.String)
	}
	if us.ParentLastName.Valid {
		p.set("parent_last_name", us.ParentLastName.String)
	}
	if us.ParentPhone.Valid {
		p.set("parent_phone", us.ParentPhone.String)
	}
	if us.ParentEmail.Valid {
		p.set("parent_email", us.ParentEmail.String)
	}
	if p.empty() {
		return repo.GetStudentByID(id)
	}

	setClause, next := p.setClause()
	query := "UPDATE students SET " + setClause + " WHERE student_id = $" + itoa(next) + " RETURNING *"

	var s school.Student
	err := repo.db.Get(&s, query, append(p.args, id)...)
	if err != nil {
		return school.Student{}, repo.trapNoRowsErr(err, school.ErrStudentNotFound, "updating student")
	}
	return s, nil
}

func (repo schoolRepository) DeleteStudent(id int) error {
	res, err := repo.db.Exec("DELETE FROM students WHERE student_id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return repo.trapNoneAffected(res, school.ErrStudentNotFound)
}
