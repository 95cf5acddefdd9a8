package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/comatt/core/period"
	"github.com/trezcool/comatt/core/school"
)

func periodFixtures(t *testing.T, teacherUsername string) (school.Term, school.Subject, school.Group) {
	t.Helper()
	term, err := schoolRepo.CreateTerm(school.Term{
		Name:      "Winter 2030",
		StartDate: time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2030, time.March, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateTerm(): %v", err)
	}
	subject, err := schoolRepo.CreateSubject(school.Subject{Name: "Mathematics", TeacherUsername: teacherUsername})
	if err != nil {
		t.Fatalf("CreateSubject(): %v", err)
	}
	group, err := schoolRepo.CreateGroup(school.Group{Name: "Grade 6B"})
	if err != nil {
		t.Fatalf("CreateGroup(): %v", err)
	}
	return term, subject, group
}

func createPeriod(t *testing.T, number, subjectID, groupID, termID int, day time.Time) period.Period {
	t.Helper()
	p, err := periodRepo.CreatePeriod(period.Period{
		PeriodNumber: number,
		SubjectID:    subjectID,
		GroupID:      groupID,
		TermID:       termID,
		Date:         day,
	})
	if err != nil {
		t.Fatalf("CreatePeriod(): %v", err)
	}
	return p
}

func Test_periodApi_create(t *testing.T) {
	adminToken := getToken(t, admin)
	teacherToken := getToken(t, teacherUsr)
	term, subject, group := periodFixtures(t, "m.curie")

	np := period.NewPeriod{PeriodNumber: 1, SubjectID: subject.ID, GroupID: group.ID, TermID: term.ID, Date: "2030-01-07"}

	// only admins schedule periods
	req, rec := newAuthRequest(http.MethodPost, "/v1/periods", teacherToken, marchallObj(t, np))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied)}, rec)

	req, rec = newAuthRequest(http.MethodPost, "/v1/periods", adminToken, marchallObj(t, np))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
	}
	var p period.Period
	decodeBody(t, rec, &p)
	if p.ID == 0 {
		t.Error("failed! no period ID assigned")
	}
	if p.AttendanceTaken {
		t.Error("failed! new period marked taken")
	}

	// dangling refs are validation errors, not 500s
	bad := np
	bad.SubjectID = 999
	req, rec = newAuthRequest(http.MethodPost, "/v1/periods", adminToken, marchallObj(t, bad))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{"subjectId": school.ErrSubjectNotFound.Error()}),
	}, rec)
}

func Test_periodApi_update(t *testing.T) {
	adminToken := getToken(t, admin)
	term, subject, group := periodFixtures(t, "g.hopper")
	p := createPeriod(t, 1, subject.ID, group.ID, term.ID, time.Date(2030, time.January, 21, 0, 0, 0, 0, time.UTC))
	path := "/v1/periods/" + itoa(p.ID)

	// bad patches never reach the store
	req, rec := newAuthRequest(http.MethodPatch, path, adminToken, []byte(`{"date": "not-a-date", "periodNumber": -7}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
	}

	req, rec = newAuthRequest(http.MethodPatch, path, adminToken, []byte(`{"date": "21/01/2030"}`))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{"date": "invalid date; YYYY-MM-DD expected"}),
	}, rec)

	req, rec = newAuthRequest(http.MethodPatch, path, adminToken, []byte(`{"periodNumber": 0}`))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{"periodNumber": "must be a positive integer"}),
	}, rec)

	stored, err := periodRepo.GetPeriodByID(p.ID)
	if err != nil {
		t.Fatalf("GetPeriodByID(): %v", err)
	}
	if stored != p {
		t.Errorf("failed! rejected patches altered the period: got %+v; want %+v", stored, p)
	}

	// a sound patch still goes through
	req, rec = newAuthRequest(http.MethodPatch, path, adminToken, []byte(`{"periodNumber": 3}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
	}
	var updated period.Period
	decodeBody(t, rec, &updated)
	if updated.PeriodNumber != 3 {
		t.Errorf("failed! periodNumber = %d; want 3", updated.PeriodNumber)
	}
}

func Test_periodApi_copySchedule(t *testing.T) {
	adminToken := getToken(t, admin)
	term, subject, group := periodFixtures(t, "a.turing")

	src := time.Date(2030, time.February, 4, 0, 0, 0, 0, time.UTC)
	createPeriod(t, 1, subject.ID, group.ID, term.ID, src)
	createPeriod(t, 2, subject.ID, group.ID, term.ID, src)

	body := marchallObj(t, period.CopySchedule{SourceDate: "2030-02-04", TargetDate: "2030-02-11"})
	req, rec := newAuthRequest(http.MethodPost, "/v1/periods/copy-schedule", adminToken, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
	}
	var copies []period.Period
	decodeBody(t, rec, &copies)
	if len(copies) != 2 {
		t.Fatalf("failed! copied %d periods; want 2", len(copies))
	}
	for _, c := range copies {
		if c.AttendanceTaken {
			t.Error("failed! copy marked taken")
		}
	}

	// source and target must differ
	body = marchallObj(t, period.CopySchedule{SourceDate: "2030-02-04", TargetDate: "2030-02-04"})
	req, rec = newAuthRequest(http.MethodPost, "/v1/periods/copy-schedule", adminToken, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
	}

	// nothing to copy
	body = marchallObj(t, period.CopySchedule{SourceDate: "2030-02-05", TargetDate: "2030-02-12"})
	req, rec = newAuthRequest(http.MethodPost, "/v1/periods/copy-schedule", adminToken, body)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{"sourceDate": period.ErrNoSourcePeriods.Error()}),
	}, rec)
}

func Test_periodApi_students(t *testing.T) {
	teacherToken := getToken(t, teacherUsr)
	plainToken := getToken(t, plainUsr)
	term, subject, group := periodFixtures(t, "g.hopper")

	s1, err := schoolRepo.CreateStudent(school.Student{GroupID: group.ID, FirstName: "Cleo", LastName: "Diallo"})
	if err != nil {
		t.Fatalf("CreateStudent(): %v", err)
	}
	p := createPeriod(t, 1, subject.ID, group.ID, term.ID, time.Date(2030, time.March, 4, 0, 0, 0, 0, time.UTC))

	req, rec := newAuthRequest(http.MethodGet, "/v1/periods/"+itoa(p.ID)+"/students", teacherToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, []period.RosterEntry{{StudentID: s1.ID, FirstName: s1.FirstName, LastName: s1.LastName}}),
	}, rec)

	// roleless users have no portal
	req, rec = newAuthRequest(http.MethodGet, "/v1/periods/"+itoa(p.ID)+"/students", plainToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied)}, rec)
}

func Test_periodApi_upcomingSchedule(t *testing.T) {
	adminToken := getToken(t, admin)
	teacherToken := getToken(t, teacherUsr)
	term, subject, group := periodFixtures(t, teacherUsr.Username)

	day1 := time.Date(2030, time.January, 14, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2030, time.January, 15, 0, 0, 0, 0, time.UTC)
	second := createPeriod(t, 2, subject.ID, group.ID, term.ID, day1)
	first := createPeriod(t, 1, subject.ID, group.ID, term.ID, day1)
	createPeriod(t, 1, subject.ID, group.ID, term.ID, day2) // beyond the nearest day

	path := "/v1/teachers/" + teacherUsr.Username + "/upcoming-schedule"
	req, rec := newAuthRequest(http.MethodGet, path, teacherToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
	}
	var schedule []period.ScheduleEntry
	decodeBody(t, rec, &schedule)
	if len(schedule) != 2 {
		t.Fatalf("failed! got %d entries; want 2", len(schedule))
	}
	if schedule[0].ID != first.ID || schedule[1].ID != second.ID {
		t.Errorf("failed! order = [%d %d]; want [%d %d]", schedule[0].ID, schedule[1].ID, first.ID, second.ID)
	}
	if schedule[0].SubjectName != subject.Name || schedule[0].GroupName != group.Name {
		t.Errorf("failed! entry not enriched: %+v", schedule[0])
	}

	// teachers cannot peek at each other's schedules; admins can
	req, rec = newAuthRequest(http.MethodGet, "/v1/teachers/m.curie/upcoming-schedule", teacherToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied)}, rec)

	req, rec = newAuthRequest(http.MethodGet, "/v1/teachers/m.curie/upcoming-schedule", adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
	}
}
