package learning

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/coursehub-backend/internal/data/repos/testutil"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
)

func TestLectureRepoReviewOverdue(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewLectureRepo(db, testutil.Logger(t))

	_, teacher := testutil.SeedTeacher(t, db, "t@example.com")
	course := testutil.SeedCourse(t, db, teacher, testutil.SeedSemester(t, db))
	other := testutil.SeedCourse(t, db, teacher, testutil.SeedSemester(t, db))

	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	exact := now
	future := now.Add(time.Hour)

	overdue := testutil.SeedLecture(t, db, course, false, &past)
	atDeadline := testutil.SeedLecture(t, db, course, false, &exact)
	pending := testutil.SeedLecture(t, db, course, false, &future)
	testutil.SeedLecture(t, db, course, false, nil)
	testutil.SeedLecture(t, db, other, false, &past)

	n, err := repo.ReviewOverdue(dbc, course.ID, now)
	if err != nil {
		t.Fatalf("ReviewOverdue: %v", err)
	}
	if n != 2 {
		t.Fatalf("ReviewOverdue count: want=2 got=%d", n)
	}

	check := func(name string, want bool, got bool) {
		t.Helper()
		if got != want {
			t.Fatalf("%s: is_reviewed want=%v got=%v", name, want, got)
		}
	}
	l, _ := repo.GetByID(dbc, course.ID, overdue.ID)
	check("overdue", true, l.IsReviewed)
	l, _ = repo.GetByID(dbc, course.ID, atDeadline.ID)
	check("at deadline", true, l.IsReviewed)
	l, _ = repo.GetByID(dbc, course.ID, pending.ID)
	check("pending", false, l.IsReviewed)

	reviewed, err := repo.ListByCourseID(dbc, course.ID, true)
	if err != nil || len(reviewed) != 2 {
		t.Fatalf("ListByCourseID reviewed: err=%v len=%d", err, len(reviewed))
	}
	all, err := repo.ListByCourseID(dbc, course.ID, false)
	if err != nil || len(all) != 4 {
		t.Fatalf("ListByCourseID all: err=%v len=%d", err, len(all))
	}

	if n, err := repo.ReviewOverdue(dbc, course.ID, now); err != nil || n != 0 {
		t.Fatalf("second sweep should change nothing: err=%v n=%d", err, n)
	}
}
