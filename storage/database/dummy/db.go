// Package dummydb provides in-memory repositories for tests and local hacking.
// A single lock guards the whole store so multi-table operations stay atomic.
package dummydb

import (
	"sync"

	"github.com/trezcool/comatt/core/attendance"
	"github.com/trezcool/comatt/core/period"
	"github.com/trezcool/comatt/core/school"
	"github.com/trezcool/comatt/core/user"
)

type DB struct {
	mu sync.RWMutex

	users       map[string]*user.User
	terms       map[int]*school.Term
	subjects    map[int]*school.Subject
	groups      map[int]*school.Group
	students    map[int]*school.Student
	periods     map[int]*period.Period
	attendances map[int]*attendance.Attendance

	termPK       int
	subjectPK    int
	groupPK      int
	studentPK    int
	periodPK     int
	attendancePK int
}

func Open() (*DB, error) {
	db := &DB{
		users:       make(map[string]*user.User),
		terms:       make(map[int]*school.Term),
		subjects:    make(map[int]*school.Subject),
		groups:      make(map[int]*school.Group),
		students:    make(map[int]*school.Student),
		periods:     make(map[int]*period.Period),
		attendances: make(map[int]*attendance.Attendance),
	}
	return db, nil
}
