package period

import (
	"errors"
	"sort"
	"time"

	"github.com/trezcool/comatt/core"
	"github.com/trezcool/comatt/core/school"
)

var (
	// errors
	ErrNotFound        = errors.New("period not found")
	ErrNoSourcePeriods = errors.New("no periods scheduled on the source date")
)

// nowFunc returns the current time; a package var so tests can pin "today".
var nowFunc = time.Now

type (
	// Repository persists Periods. CopyPeriods is all-or-nothing: either every
	// period of the source day is replicated onto the target day or none is.
	Repository interface {
		CreatePeriod(p Period) (Period, error)
		QueryPeriods(filter *QueryFilter, ordering []core.DBOrdering) ([]Period, error)
		GetPeriodByID(id int) (Period, error)
		UpdatePeriod(id int, up UpdatePeriod) (Period, error)
		DeletePeriod(id int) error
		CopyPeriods(sourceDate, targetDate time.Time) ([]Period, error)
		// TeacherPeriodsFrom returns every period of the subjects taught by
		// `username` dated `from` or later, enriched with subject and group
		// names, ordered by ascending (date, periodNumber).
		TeacherPeriodsFrom(username string, from time.Time) ([]ScheduleEntry, error)
	}

	Service interface {
		Create(np NewPeriod) (Period, error)
		Query(filter *QueryFilter, ordering []core.DBOrdering) ([]Period, error)
		GetByID(id int) (Period, error)
		Update(id int, up UpdatePeriod) (Period, error)
		Delete(id int) error
		CopySchedule(cs CopySchedule) ([]Period, error)
		TeacherUpcomingSchedule(username string) ([]ScheduleEntry, error)
		Students(periodID int) ([]RosterEntry, error)
	}

	service struct {
		repo      Repository
		directory school.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, directory school.Repository) Service {
	return &service{repo: repo, directory: directory}
}

// checkRefs verifies that the provided foreign keys reference existing
// directory entities; a dangling reference is a validation failure, not a 500.
func (svc *service) checkRefs(subjectID, groupID, termID *int) error {
	if subjectID != nil {
		if _, err := svc.directory.GetSubjectByID(*subjectID); err != nil {
			if err == school.ErrSubjectNotFound {
				return core.NewValidationError(err, core.FieldError{Field: "subjectId", Error: err.Error()})
			}
			return err
		}
	}
	if groupID != nil {
		if _, err := svc.directory.GetGroupByID(*groupID); err != nil {
			if err == school.ErrGroupNotFound {
				return core.NewValidationError(err, core.FieldError{Field: "groupId", Error: err.Error()})
			}
			return err
		}
	}
	if termID != nil {
		if _, err := svc.directory.GetTermByID(*termID); err != nil {
			if err == school.ErrTermNotFound {
				return core.NewValidationError(err, core.FieldError{Field: "termId", Error: err.Error()})
			}
			return err
		}
	}
	return nil
}

func (svc *service) Create(np NewPeriod) (Period, error) {
	if err := svc.checkRefs(&np.SubjectID, &np.GroupID, &np.TermID); err != nil {
		return Period{}, err
	}
	date, _ := time.Parse(core.DateFormat, np.Date)
	return svc.repo.CreatePeriod(Period{
		PeriodNumber: np.PeriodNumber,
		SubjectID:    np.SubjectID,
		GroupID:      np.GroupID,
		TermID:       np.TermID,
		Date:         core.Date(date),
	})
}

func (svc *service) Query(filter *QueryFilter, ordering []core.DBOrdering) ([]Period, error) {
	return svc.repo.QueryPeriods(filter, ordering)
}

func (svc *service) GetByID(id int) (Period, error) {
	return svc.repo.GetPeriodByID(id)
}

func (svc *service) Update(id int, up UpdatePeriod) (Period, error) {
	if up.IsEmpty() {
		return Period{}, core.NewValidationError(errors.New("no fields to update"))
	}
	if err := svc.checkRefs(up.SubjectID.Ptr(), up.GroupID.Ptr(), up.TermID.Ptr()); err != nil {
		return Period{}, err
	}
	return svc.repo.UpdatePeriod(id, up)
}

func (svc *service) Delete(id int) error {
	return svc.repo.DeletePeriod(id)
}

// CopySchedule replicates every period of the source day onto the target day,
// preserving slot/subject/group/term. It is additive: pre-existing periods on
// the target day are not touched. New periods always start with
// attendanceTaken=false.
func (svc *service) CopySchedule(cs CopySchedule) ([]Period, error) {
	sourceDate, _ := time.Parse(core.DateFormat, cs.SourceDate)
	targetDate, _ := time.Parse(core.DateFormat, cs.TargetDate)

	source, err := svc.repo.QueryPeriods(&QueryFilter{Date: cs.SourceDate}, nil)
	if err != nil {
		return nil, err
	}
	if len(source) == 0 {
		return nil, core.NewValidationError(ErrNoSourcePeriods,
			core.FieldError{Field: "sourceDate", Error: ErrNoSourcePeriods.Error()})
	}
	return svc.repo.CopyPeriods(core.Date(sourceDate), core.Date(targetDate))
}

// TeacherUpcomingSchedule resolves the teacher's next applicable teaching day:
// among the teacher's periods dated today or later, the single earliest date
// is the next school day; every period between today and that date inclusive
// is returned, ordered by ascending periodNumber. A teacher with nothing
// scheduled from today on gets an empty schedule.
func (svc *service) TeacherUpcomingSchedule(username string) ([]ScheduleEntry, error) {
	today := core.Date(nowFunc())
	entries, err := svc.repo.TeacherPeriodsFrom(core.CleanString(username, true /* lower */), today)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []ScheduleEntry{}, nil
	}

	// entries are ordered by date; the first one carries the nearest day
	nearest := core.Date(entries[0].Date)
	schedule := make([]ScheduleEntry, 0, len(entries))
	for _, e := range entries {
		if core.Date(e.Date).After(nearest) {
			break
		}
		schedule = append(schedule, e)
	}
	sort.SliceStable(schedule, func(i, j int) bool {
		return schedule[i].PeriodNumber < schedule[j].PeriodNumber
	})
	return schedule, nil
}

func (svc *service) Students(periodID int) ([]RosterEntry, error) {
	p, err := svc.repo.GetPeriodByID(periodID)
	if err != nil {
		return nil, err
	}
	students, err := svc.directory.GetStudentsByGroupID(p.GroupID)
	if err != nil {
		return nil, err
	}
	roster := make([]RosterEntry, 0, len(students))
	for _, s := range students {
		roster = append(roster, RosterEntry{StudentID: s.ID, FirstName: s.FirstName, LastName: s.LastName})
	}
	return roster, nil
}
