package pgrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/comatt/core"
	"github.com/trezcool/comatt/core/period"
)

type periodRepository struct {
	db *sqlx.DB
}

var _ period.Repository = (*periodRepository)(nil) // interface compliance check

func NewPeriodRepository(db *sqlx.DB) *periodRepository {
	return &periodRepository{db: db}
}

var periodOrderingFields = map[string]bool{
	"period_id":     true,
	"period_number": true,
	"date":          true,
	"term_id":       true,
	"subject_id":    true,
	"group_id":      true,
}

// trapNoRowsErr maps psql "no rows" err to period.ErrNotFound
func (repo periodRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return period.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo periodRepository) CreatePeriod(p period.Period) (period.Period, error) {
	err := repo.db.QueryRow(`
		INSERT INTO periods (period_number, subject_id, group_id, term_id, date, attendance_taken)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING period_id`,
		p.PeriodNumber, p.SubjectID, p.GroupID, p.TermID, p.Date, p.AttendanceTaken,
	).Scan(&p.ID)
	if err != nil {
		return period.Period{}, errors.Wrap(err, "inserting period")
	}
	return p, nil
}

func (repo periodRepository) QueryPeriods(filter *period.QueryFilter, ordering []core.DBOrdering) ([]period.Period, error) {
	query := "SELECT * FROM periods"
	var where patch

	if filter != nil {
		if filter.TermID > 0 {
			where.set("term_id", filter.TermID)
		}
		if filter.Date != "" {
			date, err := parseDate(filter.Date)
			if err != nil {
				return nil, err
			}
			where.set("date", date)
		}
	}
	if !where.empty() {
		query += " WHERE " + where.whereClause()
	}

	if ord := orderBy(ordering, periodOrderingFields); ord != "" {
		query += ord
	} else {
		query += " ORDER BY date, period_number"
	}

	var periods []period.Period
	if err := repo.db.Select(&periods, query, where.args...); err != nil {
		return nil, errors.Wrap(err, "querying periods")
	}
	return periods, nil
}

func (repo periodRepository) GetPeriodByID(id int) (period.Period, error) {
	var p period.Period
	if err := repo.db.Get(&p, "SELECT * FROM periods WHERE period_id = $1", id); err != nil {
		return period.Period{}, repo.trapNoRowsErr(err, "finding period")
	}
	return p, nil
}

func (repo periodRepository) UpdatePeriod(id int, up period.UpdatePeriod) (period.Period, error) {
	var p patch
	if up.PeriodNumber.Valid {
		p.set("period_number", up.PeriodNumber.Int)
	}
	if up.SubjectID.Valid {
		p.set("subject_id", up.SubjectID.Int)
	}
	if up.GroupID.Valid {
		p.set("group_id", up.GroupID.Int)
	}
	if up.TermID.Valid {
		p.set("term_id", up.TermID.Int)
	}
	if up.Date.Valid {
		date, err := parseDate(up.Date.String)
		if err != nil {
			return period.Period{}, err
		}
		p.set("date", date)
	}
	if up.AttendanceTaken.Valid {
		p.set("attendance_taken", up.AttendanceTaken.Bool)
	}
	if p.empty() {
		return repo.GetPeriodByID(id)
	}

	setClause, next := p.setClause()
	query := "UPDATE periods SET " + setClause + " WHERE period_id = $" + itoa(next) + " RETURNING *"

	var prd period.Period
	err := repo.db.Get(&prd, query, append(p.args, id)...)
	if err != nil {
		return period.Period{}, repo.trapNoRowsErr(err, "updating period")
	}
	return prd, nil
}

func (repo periodRepository) DeletePeriod(id int) error {
	res, err := repo.db.Exec("DELETE FROM periods WHERE period_id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting period")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return period.ErrNotFound
	}
	return nil
}

// CopyPeriods replicates the source day's schedule onto the target day in a
// single INSERT..SELECT, so the copy is atomic. Copies never carry over the
// attendanceTaken flag.
func (repo periodRepository) CopyPeriods(sourceDate, targetDate time.Time) ([]period.Period, error) {
	var periods []period.Period
	err := repo.db.Select(&periods, `
		INSERT INTO periods (period_number, subject_id, group_id, term_id, date)
		SELECT period_number, subject_id, group_id, term_id, $2
		FROM periods
		WHERE date = $1
		RETURNING *`,
		sourceDate, targetDate,
	)
	if err != nil {
		return nil, errors.Wrap(err, "copying periods")
	}
	return periods, nil
}

func (repo periodRepository) TeacherPeriodsFrom(username string, from time.Time) ([]period.ScheduleEntry, error) {
	var entries []period.ScheduleEntry
	err := repo.db.Select(&entries, `
		SELECT p.*, s.subject_name, g.group_name
		FROM periods p
		JOIN subjects s ON s.subject_id = p.subject_id
		JOIN groups g ON g.group_id = p.group_id
		WHERE s.teacher_username = $1 AND p.date >= $2
		ORDER BY p.date, p.period_number`,
		username, from,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying teacher periods")
	}
	return entries, nil
}
