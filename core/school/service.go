package school

import (
	"errors"
	"time"

	"github.com/trezcool/comatt/core"
)

var (
	// errors
	ErrTermNotFound    = errors.New("term not found")
	ErrSubjectNotFound = errors.New("subject not found")
	ErrGroupNotFound   = errors.New("group not found")
	ErrStudentNotFound = errors.New("student not found")
)

type (
	// Repository persists the directory entities: Term, Subject, Group and Student.
	Repository interface {
		CreateTerm(t Term) (Term, error)
		QueryAllTerms() ([]Term, error)
		GetTermByID(id int) (Term, error)
		UpdateTerm(id int, ut UpdateTerm) (Term, error)
		DeleteTerm(id int) error

		CreateSubject(s Subject) (Subject, error)
		QueryAllSubjects() ([]Subject, error)
		GetSubjectByID(id int) (Subject, error)
		UpdateSubject(id int, us UpdateSubject) (Subject, error)
		DeleteSubject(id int) error

		CreateGroup(g Group) (Group, error)
		QueryAllGroups() ([]Group, error)
		GetGroupByID(id int) (Group, error)
		UpdateGroup(id int, ug UpdateGroup) (Group, error)
		DeleteGroup(id int) error

		CreateStudent(s Student) (Student, error)
		QueryAllStudents() ([]Student, error)
		GetStudentByID(id int) (Student, error)
		GetStudentsByGroupID(groupID int) ([]Student, error)
		UpdateStudent(id int, us UpdateStudent) (Student, error)
		DeleteStudent(id int) error
	}

	Service interface {
		CreateTerm(nt NewTerm) (Term, error)
		QueryAllTerms() ([]Term, error)
		GetTermByID(id int) (Term, error)
		UpdateTerm(id int, ut UpdateTerm) (Term, error)
		DeleteTerm(id int) error

		CreateSubject(ns NewSubject) (Subject, error)
		QueryAllSubjects() ([]Subject, error)
		GetSubjectByID(id int) (Subject, error)
		UpdateSubject(id int, us UpdateSubject) (Subject, error)
		DeleteSubject(id int) error

		CreateGroup(ng NewGroup) (Group, error)
		QueryAllGroups() ([]Group, error)
		GetGroupByID(id int) (Group, error)
		UpdateGroup(id int, ug UpdateGroup) (Group, error)
		DeleteGroup(id int) error

		CreateStudent(ns NewStudent) (Student, error)
		QueryAllStudents() ([]Student, error)
		GetStudentByID(id int) (Student, error)
		GetStudentsByGroupID(groupID int) ([]Student, error)
		UpdateStudent(id int, us UpdateStudent) (Student, error)
		DeleteStudent(id int) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CreateTerm(nt NewTerm) (Term, error) {
	start, _ := time.Parse(core.DateFormat, nt.StartDate)
	end, _ := time.Parse(core.DateFormat, nt.EndDate)
	return svc.repo.CreateTerm(Term{
		Name:      nt.Name,
		StartDate: core.Date(start),
		EndDate:   core.Date(end),
	})
}

func (svc *service) QueryAllTerms() ([]Term, error) { return svc.repo.QueryAllTerms() }
func (svc *service) GetTermByID(id int) (Term, error) { return svc.repo.GetTermByID(id) }
func (svc *service) DeleteTerm(id int) error { return svc.repo.DeleteTerm(id) }

func (svc *service) UpdateTerm(id int, ut UpdateTerm) (Term, error) {
	return svc.repo.UpdateTerm(id, ut)
}

func (svc *service) CreateSubject(ns NewSubject) (Subject, error) {
	return svc.repo.CreateSubject(Subject{Name: ns.Name, TeacherUsername: ns.TeacherUsername})
}

func (svc *service) QueryAllSubjects() ([]Subject, error) { return svc.repo.QueryAllSubjects() }
func (svc *service) GetSubjectByID(id int) (Subject, error) { return svc.repo.GetSubjectByID(id) }
func (svc *service) DeleteSubject(id int) error { return svc.repo.DeleteSubject(id) }

func (svc *service) UpdateSubject(id int, us UpdateSubject) (Subject, error) {
	return svc.repo.UpdateSubject(id, us)
}

func (svc *service) CreateGroup(ng NewGroup) (Group, error) {
	return svc.repo.CreateGroup(Group{Name: ng.Name})
}

func (svc *service) QueryAllGroups() ([]Group, error) { return svc.repo.QueryAllGroups() }
func (svc *service) GetGroupByID(id int) (Group, error) { return svc.repo.GetGroupByID(id) }
func (svc *service) DeleteGroup(id int) error           { return svc.repo.DeleteGroup(id) }

func (svc *service) UpdateGroup(id int, ug UpdateGroup) (Group, error) {
	return svc.repo.UpdateGroup(id, ug)
}

func (svc *service) CreateStudent(ns NewStudent) (Student, error) {
	if _, err := svc.repo.GetGroupByID(ns.GroupID); err != nil {
		if err == ErrGroupNotFound {
			return Student{}, core.NewValidationError(err, core.FieldError{Field: "groupId", Error: err.Error()})
		}
		return Student{}, err
	}
	return svc.repo.CreateStudent(Student{
		GroupID:         ns.GroupID,
		FirstName:       ns.FirstName,
		LastName:        ns.LastName,
		Age:             ns.Age,
		ParentFirstName: ns.ParentFirstName,
		ParentLastName:  ns.ParentLastName,
		ParentPhone:     ns.ParentPhone,
		ParentEmail:     ns.ParentEmail,
	})
}

func (svc *service) QueryAllStudents() ([]Student, error) { return svc.repo.QueryAllStudents() }
func (svc *service) GetStudentByID(id int) (Student, error) {
	return svc.repo.GetStudentByID(id)
}
func (svc *service) GetStudentsByGroupID(groupID int) ([]Student, error) {
	return svc.repo.GetStudentsByGroupID(groupID)
}
func (svc *service) DeleteStudent(id int) error { return svc.repo.DeleteStudent(id) }

func (svc *service) UpdateStudent(id int, us UpdateStudent) (Student, error) {
	if us.GroupID.Valid {
		if _, err := svc.repo.GetGroupByID(us.GroupID.Int); err != nil {
			if err == ErrGroupNotFound {
				return Student{}, core.NewValidationError(err, core.FieldError{Field: "groupId", Error: err.Error()})
			}
			return Student{}, err
		}
	}
	return svc.repo.UpdateStudent(id, us)
}
