package dummydb

import (
	"sort"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/comatt/core"
	"github.com/trezcool/comatt/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) query() []attendance.Attendance {
	atts := make([]attendance.Attendance, 0, len(repo.db.attendances))
	for _, a := range repo.db.attendances {
		atts = append(atts, *a)
	}
	sort.Slice(atts, func(i, j int) bool { return atts[i].ID < atts[j].ID })
	return atts
}

func (repo *attendanceRepository) CreateAttendance(a attendance.Attendance) (attendance.Attendance, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.attendancePK++
	a.ID = repo.db.attendancePK
	repo.db.attendances[a.ID] = &a
	return a, nil
}

func (repo *attendanceRepository) QueryAllAttendances() ([]attendance.Attendance, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.query(), nil
}

func (repo *attendanceRepository) GetAttendanceByID(id int) (attendance.Attendance, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if a, ok := repo.db.attendances[id]; ok {
		return *a, nil
	}
	return attendance.Attendance{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) UpdateAttendance(id int, ua attendance.UpdateAttendance) (attendance.Attendance, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	a, ok := repo.db.attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrNotFound
	}
	if ua.StudentID.Valid {
		a.StudentID = ua.StudentID.Int
	}
	if ua.PeriodID.Valid {
		a.PeriodID = ua.PeriodID.Int
	}
	if ua.Date.Valid {
		date, err := parseDate(ua.Date.String)
		if err != nil {
			return attendance.Attendance{}, err
		}
		a.Date = date
	}
	if ua.Status.Valid {
		a.Status = ua.Status.Bool
	}
	return *a, nil
}

func (repo *attendanceRepository) DeleteAttendance(id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.attendances[id]; !ok {
		return attendance.ErrNotFound
	}
	delete(repo.db.attendances, id)
	return nil
}

func (repo *attendanceRepository) GetAttendancesByPeriodID(periodID int) ([]attendance.Attendance, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var atts []attendance.Attendance
	for _, a := range repo.query() {
		if a.PeriodID == periodID {
			atts = append(atts, a)
		}
	}
	sort.Slice(atts, func(i, j int) bool { return atts[i].StudentID < atts[j].StudentID })
	return atts, nil
}

func (repo *attendanceRepository) QueryCurrentTerm(today time.Time) ([]attendance.TermAttendance, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var rows []attendance.TermAttendance
	for _, p := range repo.db.periods {
		t, ok := repo.db.terms[p.TermID]
		if !ok || !t.Contains(today) {
			continue
		}

		base := attendance.TermAttendance{
			PeriodID:     p.ID,
			PeriodNumber: p.PeriodNumber,
			SubjectID:    p.SubjectID,
			GroupID:      p.GroupID,
			Date:         p.Date,
			TermID:       t.ID,
			TermName:     t.Name,
			StartDate:    t.StartDate,
			EndDate:      t.EndDate,
		}

		var matched bool
		for _, a := range repo.query() {
			if a.PeriodID != p.ID {
				continue
			}
			row := base
			row.AttendanceID = null.IntFrom(a.ID)
			row.StudentID = null.IntFrom(a.StudentID)
			row.Status = null.BoolFrom(a.Status)
			rows = append(rows, row)
			matched = true
		}
		if !matched {
			rows = append(rows, base)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		if rows[i].PeriodNumber != rows[j].PeriodNumber {
			return rows[i].PeriodNumber < rows[j].PeriodNumber
		}
		return rows[i].StudentID.Int < rows[j].StudentID.Int
	})
	return rows, nil
}

func (repo *attendanceRepository) RecordForPeriod(periodID int, date time.Time, entries []attendance.Entry) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, e := range entries {
		repo.db.attendancePK++
		a := attendance.Attendance{
			ID:        repo.db.attendancePK,
			StudentID: e.StudentID,
			PeriodID:  periodID,
			Date:      core.Date(date),
			Status:    e.Status,
		}
		repo.db.attendances[a.ID] = &a
	}
	repo.markTaken(periodID)
	return nil
}

func (repo *attendanceRepository) UpsertForPeriod(periodID int, date time.Time, entries []attendance.Entry) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, e := range entries {
		var existing *attendance.Attendance
		for _, a := range repo.db.attendances {
			if a.PeriodID == periodID && a.StudentID == e.StudentID {
				existing = a
				break
			}
		}
		if existing != nil {
			existing.Status = e.Status
			existing.Date = core.Date(date)
			continue
		}
		repo.db.attendancePK++
		a := attendance.Attendance{
			ID:        repo.db.attendancePK,
			StudentID: e.StudentID,
			PeriodID:  periodID,
			Date:      core.Date(date),
			Status:    e.Status,
		}
		repo.db.attendances[a.ID] = &a
	}
	repo.markTaken(periodID)
	return nil
}

// markTaken flips the period's attendanceTaken flag; caller must hold the lock.
func (repo *attendanceRepository) markTaken(periodID int) {
	if p, ok := repo.db.periods[periodID]; ok {
		p.AttendanceTaken = true
	}
}
