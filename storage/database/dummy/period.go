package dummydb

import (
	"sort"
	"time"

	"github.com/trezcool/comatt/core"
	"github.com/trezcool/comatt/core/period"
)

type periodRepository struct {
	db *DB
}

var _ period.Repository = (*periodRepository)(nil) // interface compliance check

func NewPeriodRepository(db *DB) period.Repository {
	return &periodRepository{db: db}
}

func (repo *periodRepository) sortPeriods(periods []period.Period) {
	sort.Slice(periods, func(i, j int) bool {
		if !periods[i].Date.Equal(periods[j].Date) {
			return periods[i].Date.Before(periods[j].Date)
		}
		return periods[i].PeriodNumber < periods[j].PeriodNumber
	})
}

func (repo *periodRepository) CreatePeriod(p period.Period) (period.Period, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.periodPK++
	p.ID = repo.db.periodPK
	repo.db.periods[p.ID] = &p
	return p, nil
}

func (repo *periodRepository) QueryPeriods(filter *period.QueryFilter, ordering []core.DBOrdering) ([]period.Period, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var filterDate time.Time
	if filter != nil && filter.Date != "" {
		var err error
		if filterDate, err = parseDate(filter.Date); err != nil {
			return nil, err
		}
	}

	periods := make([]period.Period, 0, len(repo.db.periods))
	for _, p := range repo.db.periods {
		if filter != nil {
			if filter.TermID > 0 && p.TermID != filter.TermID {
				continue
			}
			if !filterDate.IsZero() && !core.SameDay(p.Date, filterDate) {
				continue
			}
		}
		periods = append(periods, *p)
	}
	repo.sortPeriods(periods)
	return periods, nil
}

func (repo *periodRepository) GetPeriodByID(id int) (period.Period, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if p, ok := repo.db.periods[id]; ok {
		return *p, nil
	}
	return period.Period{}, period.ErrNotFound
}

func (repo *periodRepository) UpdatePeriod(id int, up period.UpdatePeriod) (period.Period, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p, ok := repo.db.periods[id]
	if !ok {
		return period.Period{}, period.ErrNotFound
	}
	if up.PeriodNumber.Valid {
		p.PeriodNumber = up.PeriodNumber.Int
	}
	if up.SubjectID.Valid {
		p.SubjectID = up.SubjectID.Int
	}
	if up.GroupID.Valid {
		p.GroupID = up.GroupID.Int
	}
	if up.TermID.Valid {
		p.TermID = up.TermID.Int
	}
	if up.Date.Valid {
		date, err := parseDate(up.Date.String)
		if err != nil {
			return period.Period{}, err
		}
		p.Date = date
	}
	if up.AttendanceTaken.Valid {
		p.AttendanceTaken = up.AttendanceTaken.Bool
	}
	return *p, nil
}

func (repo *periodRepository) DeletePeriod(id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.periods[id]; !ok {
		return period.ErrNotFound
	}
	delete(repo.db.periods, id)
	return nil
}

func (repo *periodRepository) CopyPeriods(sourceDate, targetDate time.Time) ([]period.Period, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var sources []period.Period
	for _, p := range repo.db.periods {
		if core.SameDay(p.Date, sourceDate) {
			sources = append(sources, *p)
		}
	}
	repo.sortPeriods(sources)

	copies := make([]period.Period, 0, len(sources))
	for _, src := range sources {
		repo.db.periodPK++
		cp := period.Period{
			ID:           repo.db.periodPK,
			PeriodNumber: src.PeriodNumber,
			SubjectID:    src.SubjectID,
			GroupID:      src.GroupID,
			TermID:       src.TermID,
			Date:         core.Date(targetDate),
		}
		repo.db.periods[cp.ID] = &cp
		copies = append(copies, cp)
	}
	return copies, nil
}

func (repo *periodRepository) TeacherPeriodsFrom(username string, from time.Time) ([]period.ScheduleEntry, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	taught := make(map[int]string) // subjectID -> name
	for _, s := range repo.db.subjects {
		if s.TeacherUsername == username {
			taught[s.ID] = s.Name
		}
	}

	var entries []period.ScheduleEntry
	for _, p := range repo.db.periods {
		subjectName, ok := taught[p.SubjectID]
		if !ok || p.Date.Before(from) {
			continue
		}
		entry := period.ScheduleEntry{Period: *p, SubjectName: subjectName}
		if g, ok := repo.db.groups[p.GroupID]; ok {
			entry.GroupName = g.Name
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		return entries[i].PeriodNumber < entries[j].PeriodNumber
	})
	return entries, nil
}
