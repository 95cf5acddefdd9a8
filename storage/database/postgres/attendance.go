package pgrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/comatt/core/attendance"
)

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to attendance.ErrNotFound
func (repo attendanceRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return attendance.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// atomically runs fn inside a transaction, rolling back on error.
func (repo attendanceRepository) atomically(fn func(tx *sqlx.Tx) error) error {
	tx, err := repo.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func (repo attendanceRepository) CreateAttendance(a attendance.Attendance) (attendance.Attendance, error) {
	err := repo.db.QueryRow(`
		INSERT INTO attendances (student_id, period_id, date, status)
		VALUES ($1, $2, $3, $4) RETURNING attendance_id`,
		a.StudentID, a.PeriodID, a.Date, a.Status,
	).Scan(&a.ID)
	if err != nil {
		return attendance.Attendance{}, errors.Wrap(err, "inserting attendance")
	}
	return a, nil
}

func (repo attendanceRepository) QueryAllAttendances() ([]attendance.Attendance, error) {
	var atts []attendance.Attendance
	if err := repo.db.Select(&atts, "SELECT * FROM attendances ORDER BY attendance_id"); err != nil {
		return nil, errors.Wrap(err, "querying attendances")
	}
	return atts, nil
}

func (repo attendanceRepository) GetAttendanceByID(id int) (attendance.Attendance, error) {
	var a attendance.Attendance
	if err := repo.db.Get(&a, "SELECT * FROM attendances WHERE attendance_id = $1", id); err != nil {
		return attendance.Attendance{}, repo.trapNoRowsErr(err, "finding attendance")
	}
	return a, nil
}

func (repo attendanceRepository) UpdateAttendance(id int, ua attendance.UpdateAttendance) (attendance.Attendance, error) {
	var p patch
	if ua.StudentID.Valid {
		p.set("student_id", ua.StudentID.Int)
	}
	if ua.PeriodID.Valid {
		p.set("period_id", ua.PeriodID.Int)
	}
	if ua.Date.Valid {
		date, err := parseDate(ua.Date.String)
		if err != nil {
			return attendance.Attendance{}, err
		}
		p.set("date", date)
	}
	if ua.Status.Valid {
		p.set("status", ua.Status.Bool)
	}
	if p.empty() {
		return repo.GetAttendanceByID(id)
	}

	setClause, next := p.setClause()
	query := "UPDATE attendances SET " + setClause + " WHERE attendance_id = $" + itoa(next) + " RETURNING *"

	var a attendance.Attendance
	err := repo.db.Get(&a, query, append(p.args, id)...)
	if err != nil {
		return attendance.Attendance{}, repo.trapNoRowsErr(err, "updating attendance")
	}
	return a, nil
}

func (repo attendanceRepository) DeleteAttendance(id int) error {
	res, err := repo.db.Exec("DELETE FROM attendances WHERE attendance_id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting attendance")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return attendance.ErrNotFound
	}
	return nil
}

func (repo attendanceRepository) GetAttendancesByPeriodID(periodID int) ([]attendance.Attendance, error) {
	var atts []attendance.Attendance
	err := repo.db.Select(&atts,
		"SELECT * FROM attendances WHERE period_id = $1 ORDER BY student_id", periodID)
	if err != nil {
		return nil, errors.Wrap(err, "querying period attendances")
	}
	return atts, nil
}

// QueryCurrentTerm outer-joins recorded attendances onto every period of the
// term covering `today`; periods that were never taken come back with null
// attendance facts.
func (repo attendanceRepository) QueryCurrentTerm(today time.Time) ([]attendance.TermAttendance, error) {
	var rows []attendance.TermAttendance
	err := repo.db.Select(&rows, `
		SELECT a.attendance_id, a.student_id, a.status,
		       p.period_id, p.period_number, p.subject_id, p.group_id, p.date,
		       t.term_id, t.term_name, t.start_date, t.end_date
		FROM periods p
		JOIN terms t ON t.term_id = p.term_id
		LEFT JOIN attendances a ON a.period_id = p.period_id
		WHERE t.start_date <= $1 AND t.end_date >= $1
		ORDER BY p.date, p.period_number, a.student_id`,
		today,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying current term attendances")
	}
	return rows, nil
}

func (repo attendanceRepository) RecordForPeriod(periodID int, date time.Time, entries []attendance.Entry) error {
	return repo.atomically(func(tx *sqlx.Tx) error {
		for _, e := range entries {
			_, err := tx.Exec(
				"INSERT INTO attendances (student_id, period_id, date, status) VALUES ($1, $2, $3, $4)",
				e.StudentID, periodID, date, e.Status,
			)
			if err != nil {
				return errors.Wrap(err, "inserting attendance")
			}
		}
		_, err := tx.Exec("UPDATE periods SET attendance_taken = TRUE WHERE period_id = $1", periodID)
		return errors.Wrap(err, "marking period taken")
	})
}

func (repo attendanceRepository) UpsertForPeriod(periodID int, date time.Time, entries []attendance.Entry) error {
	return repo.atomically(func(tx *sqlx.Tx) error {
		for _, e := range entries {
			_, err := tx.Exec(`
				INSERT INTO attendances (student_id, period_id, date, status)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (student_id, period_id)
				DO UPDATE SET status = EXCLUDED.status, date = EXCLUDED.date`,
				e.StudentID, periodID, date, e.Status,
			)
			if err != nil {
				return errors.Wrap(err, "upserting attendance")
			}
		}
		_, err := tx.Exec("UPDATE periods SET attendance_taken = TRUE WHERE period_id = $1", periodID)
		return errors.Wrap(err, "marking period taken")
	})
}
