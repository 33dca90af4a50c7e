package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/yungbote/coursehub-backend/internal/data/repos/testutil"
)

func TestSemesterCreateRequiresOrderedDates(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSemesterService(env.db, env.log, env.semesters)
	admin := testutil.SeedAdmin(t, env.db, "a@example.com")
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Create(as(admin), SemesterInput{Name: "Fall", StartDate: start, EndDate: start})
	wantStatus(t, err, http.StatusBadRequest)
	_, err = svc.Create(as(admin), SemesterInput{Name: "Fall", StartDate: start, EndDate: start.Add(-time.Hour)})
	wantStatus(t, err, http.StatusBadRequest)
	_, err = svc.Create(as(admin), SemesterInput{Name: " ", StartDate: start, EndDate: start.AddDate(0, 4, 0)})
	wantStatus(t, err, http.StatusBadRequest)

	sem, err := svc.Create(as(admin), SemesterInput{Name: " Fall 2026 ", StartDate: start, EndDate: start.AddDate(0, 4, 0)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sem.Name != "Fall 2026" {
		t.Fatalf("name: got=%q", sem.Name)
	}

	early := start.AddDate(0, 5, 0)
	_, err = svc.Update(as(admin), sem.ID, SemesterUpdate{StartDate: &early})
	wantStatus(t, err, http.StatusBadRequest)

	list, err := svc.List(as(admin))
	if err != nil || len(list) != 1 {
		t.Fatalf("List: err=%v len=%d", err, len(list))
	}
}

func TestSemesterAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSemesterService(env.db, env.log, env.semesters)
	tu, _ := testutil.SeedTeacher(t, env.db, "t@example.com")
	start := time.Now()

	_, err := svc.Create(as(tu), SemesterInput{Name: "Fall", StartDate: start, EndDate: start.AddDate(0, 4, 0)})
	wantStatus(t, err, http.StatusForbidden)

	sem := testutil.SeedSemester(t, env.db)
	wantStatus(t, svc.Delete(as(tu), sem.ID), http.StatusForbidden)
}

func TestSemesterDeleteInUseConflicts(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSemesterService(env.db, env.log, env.semesters)
	admin := testutil.SeedAdmin(t, env.db, "a@example.com")
	_, teacher := testutil.SeedTeacher(t, env.db, "t@example.com")

	used := testutil.SeedSemester(t, env.db)
	testutil.SeedCourse(t, env.db, teacher, used)
	wantStatus(t, svc.Delete(as(admin), used.ID), http.StatusConflict)

	free := testutil.SeedSemester(t, env.db)
	if err := svc.Delete(as(admin), free.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	wantStatus(t, svc.Delete(as(admin), free.ID), http.StatusNotFound)
	_, err := svc.Get(as(admin), free.ID)
	wantStatus(t, err, http.StatusNotFound)
}
