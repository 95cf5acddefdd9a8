package dummydb

import (
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/comatt/core"
	"github.com/trezcool/comatt/core/school"
)

type schoolRepository struct {
	db *DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db}
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(core.DateFormat, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parsing date %q", s)
	}
	return core.Date(t), nil
}

// ------------------------------------------------------------------ Terms

func (repo *schoolRepository) CreateTerm(t school.Term) (school.Term, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.termPK++
	t.ID = repo.db.termPK
	repo.db.terms[t.ID] = &t
	return t, nil
}

func (repo *schoolRepository) QueryAllTerms() ([]school.Term, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	terms := make([]school.Term, 0, len(repo.db.terms))
	for _, t := range repo.db.terms {
		terms = append(terms, *t)
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].StartDate.Before(terms[j].StartDate) })
	return terms, nil
}

func (repo *schoolRepository) GetTermByID(id int) (school.Term, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if t, ok := repo.db.terms[id]; ok {
		return *t, nil
	}
	return school.Term{}, school.ErrTermNotFound
}

func (repo *schoolRepository) UpdateTerm(id int, ut school.UpdateTerm) (school.Term, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	t, ok := repo.db.terms[id]
	if !ok {
		return school.Term{}, school.ErrTermNotFound
	}
	if ut.Name.Valid {
		t.Name = ut.Name.String
	}
	if ut.StartDate.Valid {
		date, err := parseDate(ut.StartDate.String)
		if err != nil {
			return school.Term{}, err
		}
		t.StartDate = date
	}
	if ut.EndDate.Valid {
		date, err := parseDate(ut.EndDate.String)
		if err != nil {
			return school.Term{}, err
		}
		t.EndDate = date
	}
	return *t, nil
}

func (repo *schoolRepository) DeleteTerm(id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.terms[id]; !ok {
		return school.ErrTermNotFound
	}
	delete(repo.db.terms, id)
	return nil
}

// ------------------------------------------------------------------ Subjects

func (repo *schoolRepository) CreateSubject(s school.Subject) (school.Subject, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.subjectPK++
	s.ID = repo.db.subjectPK
	repo.db.subjects[s.ID] = &s
	return s, nil
}

func (repo *schoolRepository) QueryAllSubjects() ([]school.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	subjects := make([]school.Subject, 0, len(repo.db.subjects))
	for _, s := range repo.db.subjects {
		subjects = append(subjects, *s)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

func (repo *schoolRepository) GetSubjectByID(id int) (school.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if s, ok := repo.db.subjects[id]; ok {
		return *s, nil
	}
	return school.Subject{}, school.ErrSubjectNotFound
}

func (repo *schoolRepository) UpdateSubject(id int, us school.UpdateSubject) (school.Subject, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	s, ok := repo.db.subjects[id]
	if !ok {
		return school.Subject{}, school.ErrSubjectNotFound
	}
	if us.Name.Valid {
		s.Name = us.Name.String
	}
	if us.TeacherUsername.Valid {
		s.TeacherUsername = us.TeacherUsername.String
	}
	return *s, nil
}

func (repo *schoolRepository) DeleteSubject(id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.subjects[id]; !ok {
		return school.ErrSubjectNotFound
	}
	delete(repo.db.subjects, id)
	return nil
}

// ------------------------------------------------------------------ Groups

func (repo *schoolRepository) CreateGroup(g school.Group) (school.Group, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.groupPK++
	g.ID = repo.db.groupPK
	repo.db.groups[g.ID] = &g
	return g, nil
}

func (repo *schoolRepository) QueryAllGroups() ([]school.Group, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	groups := make([]school.Group, 0, len(repo.db.groups))
	for _, g := range repo.db.groups {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

func (repo *schoolRepository) GetGroupByID(id int) (school.Group, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if g, ok := repo.db.groups[id]; ok {
		return *g, nil
	}
	return school.Group{}, school.ErrGroupNotFound
}

func (repo *schoolRepository) UpdateGroup(id int, ug school.UpdateGroup) (school.Group, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	g, ok := repo.db.groups[id]
	if !ok {
		return school.Group{}, school.ErrGroupNotFound
	}
	if ug.Name.Valid {
		g.Name = ug.Name.String
	}
	return *g, nil
}

func (repo *schoolRepository) DeleteGroup(id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.groups[id]; !ok {
		return school.ErrGroupNotFound
	}
	delete(repo.db.groups, id)
	return nil
}

// ------------------------------------------------------------------ Students

func (repo *schoolRepository) CreateStudent(s school.Student) (school.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.studentPK++
	s.ID = repo.db.studentPK
	repo.db.students[s.ID] = &s
	return s, nil
}

func (repo *schoolRepository) queryStudents(groupID int) []school.Student {
	students := make([]school.Student, 0, len(repo.db.students))
	for _, s := range repo.db.students {
		if groupID > 0 && s.GroupID != groupID {
			continue
		}
		students = append(students, *s)
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].LastName != students[j].LastName {
			return students[i].LastName < students[j].LastName
		}
		return students[i].FirstName < students[j].FirstName
	})
	return students
}

func (repo *schoolRepository) QueryAllStudents() ([]school.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.queryStudents(0), nil
}

func (repo *schoolRepository) GetStudentByID(id int) (school.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if s, ok := repo.db.students[id]; ok {
		return *s, nil
	}
	return school.Student{}, school.ErrStudentNotFound
}

func (repo *schoolRepository) GetStudentsByGroupID(groupID int) ([]school.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.queryStudents(groupID), nil
}

func (repo *schoolRepository) UpdateStudent(id int, us school.UpdateStudent) (school.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	s, ok := repo.db.students[id]
	if !ok {
		return school.Student{}, school.ErrStudentNotFound
	}
	if us.GroupID.Valid {
		s.GroupID = us.GroupID.Int
	}
	if us.FirstName.Valid {
		s.FirstName = us.FirstName.String
	}
	if us.LastName.Valid {
		s.LastName = us.LastName.String
	}
	if us.Age.Valid {
		s.Age = us.Age.Int
	}
	if us.ParentFirstName.Valid {
		s.ParentFirstName = us.ParentFirstName.String
	}
	if us.ParentLastName.Valid {
		s.ParentLastName = us.ParentLastName.String
	}
	if us.ParentPhone.Valid {
		s.ParentPhone = us.ParentPhone.String
	}
	if us.ParentEmail.Valid {
		s.ParentEmail = us.ParentEmail.String
	}
	return *s, nil
}

func (repo *schoolRepository) DeleteStudent(id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.students[id]; !ok {
		return school.ErrStudentNotFound
	}
	delete(repo.db.students, id)
	return nil
}
