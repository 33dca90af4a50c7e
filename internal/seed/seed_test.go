package seed

import (
	"strings"
	"testing"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	"github.com/yungbote/coursehub-backend/internal/data/repos/testutil"
	"github.com/yungbote/coursehub-backend/internal/services"
)

const fixturesYAML = `
admin:
  name: Root
  email: root@example.com
  password: changeme123
users:
  - name: Grace Hopper
    email: grace@example.com
    password: password1
    role: teacher
  - name: Ada
    email: ada@example.com
    password: password1
    role: student
    teacher_email: grace@example.com
semesters:
  - name: Fall 2026
    start_date: 2026-09-01
    end_date: 2026-12-20
events:
  - name: Orientation
    description: Welcome week
    date: 2026-09-02
    time: "10:00"
    location: Main hall
    link: https://example.com/orientation
`

func newSeeder(t *testing.T) *Seeder {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	userRepo := repos.NewUserRepo(db, log)
	teacherRepo := repos.NewTeacherRepo(db, log)
	studentRepo := repos.NewStudentRepo(db, log)
	users := services.NewUserService(db, log, userRepo, teacherRepo, studentRepo,
		repos.NewCourseRepo(db, log), repos.NewEnrollmentRepo(db, log), nil)
	semesters := services.NewSemesterService(db, log, repos.NewSemesterRepo(db, log))
	events := services.NewEventService(db, log, repos.NewEventRepo(db, log), services.NewMediaStore(log, nil, 1<<20))
	return NewSeeder(log, users, semesters, events)
}

func TestApplyIsRerunnable(t *testing.T) {
	f, err := Load(strings.NewReader(fixturesYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := newSeeder(t)

	rep, err := s.Apply(t.Context(), f)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !rep.AdminCreated || rep.UsersCreated != 2 || rep.SemestersCreated != 1 || rep.EventsCreated != 1 {
		t.Fatalf("first run: %+v", rep)
	}

	rep, err = s.Apply(t.Context(), f)
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if rep.AdminCreated || rep.UsersCreated != 0 || rep.UsersSkipped != 2 ||
		rep.SemestersSkipped != 1 || rep.EventsSkipped != 1 {
		t.Fatalf("second run should only skip: %+v", rep)
	}
}

func TestLoadRejectsBadFixtures(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"unknown key": "admin:\n  email: a@example.com\nsemester: []\n",
		"no admin":    "semesters: []\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(doc)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestApplyStopsOnInvalidSemester(t *testing.T) {
	f, err := Load(strings.NewReader(`
admin: {name: Root, email: root@example.com, password: changeme123}
semesters:
  - {name: Backwards, start_date: 2026-12-01, end_date: 2026-09-01}
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := newSeeder(t).Apply(t.Context(), f); err == nil || !strings.Contains(err.Error(), "Backwards") {
		t.Fatalf("expected semester error, got %v", err)
	}
}
