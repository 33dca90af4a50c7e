package coursework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
)

func TestSubmissionRepoUniquePerStudent(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewSubmissionRepo(db, testutil.Logger(t))

	_, teacher := testutil.SeedTeacher(t, db, "t@example.com")
	_, s := testutil.SeedStudent(t, db, "s@example.com", teacher)
	course := testutil.SeedCourse(t, db, teacher, testutil.SeedSemester(t, db))
	a := testutil.SeedAssignment(t, db, course, time.Now().Add(time.Hour), 10)

	if got, err := repo.GetByAssignmentAndStudent(dbc, a.ID, s.ID); err != nil || got != nil {
		t.Fatalf("no submission yet: err=%v got=%v", err, got)
	}

	mk := func() *types.Submission {
		return &types.Submission{
			AssignmentID:   a.ID,
			StudentID:      s.ID,
			SubmissionDate: time.Now().UTC(),
			SubmissionFile: "https://cdn/sub.pdf",
			FileKey:        "submissions/sub.pdf",
			Status:         types.SubmissionSubmitted,
		}
	}
	first, err := repo.Create(dbc, mk())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(dbc, mk()); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("second row: want ErrDuplicatedKey, got %v", err)
	}

	if err := repo.UpdateFields(dbc, first.ID, map[string]any{"status": types.SubmissionGraded, "grade": 7.5}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err := repo.GetByID(dbc, first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != types.SubmissionGraded || got.Grade == nil || *got.Grade != 7.5 {
		t.Fatalf("grade not stored: %+v", got)
	}

	keys, err := repo.ListFileKeysByCourseID(dbc, course.ID)
	if err != nil || len(keys) != 1 || keys[0] != "submissions/sub.pdf" {
		t.Fatalf("ListFileKeysByCourseID: err=%v keys=%v", err, keys)
	}

	list, err := repo.ListByAssignmentID(dbc, a.ID)
	if err != nil || len(list) != 1 || list[0].Student == nil || list[0].Student.User == nil {
		t.Fatalf("ListByAssignmentID: err=%v list=%+v", err, list)
	}
}

func TestAssignmentRepoAttachments(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewAssignmentRepo(db, testutil.Logger(t))

	_, teacher := testutil.SeedTeacher(t, db, "t@example.com")
	course := testutil.SeedCourse(t, db, teacher, testutil.SeedSemester(t, db))
	a := testutil.SeedAssignment(t, db, course, time.Now().Add(time.Hour), 10)

	rows, err := repo.CreateAttachments(dbc, []*types.AssignmentAttachment{
		{AssignmentID: a.ID, Name: "brief.pdf", URL: "u1", Key: "k1"},
		{AssignmentID: a.ID, Name: "data.zip", URL: "u2", Key: "k2"},
	})
	if err != nil {
		t.Fatalf("CreateAttachments: %v", err)
	}

	got, err := repo.GetByID(dbc, a.ID)
	if err != nil || len(got.Attachments) != 2 {
		t.Fatalf("GetByID attachments: err=%v got=%+v", err, got)
	}
	if n, err := repo.DeleteAttachmentsByIDs(dbc, []uuid.UUID{rows[0].ID}); err != nil || n != 1 {
		t.Fatalf("DeleteAttachmentsByIDs: err=%v n=%d", err, n)
	}
	keys, err := repo.ListAttachmentKeysByCourseID(dbc, course.ID)
	if err != nil || len(keys) != 1 || keys[0] != "k2" {
		t.Fatalf("ListAttachmentKeysByCourseID: err=%v keys=%v", err, keys)
	}

	if n, err := repo.DeleteByID(dbc, a.ID); err != nil || n != 1 {
		t.Fatalf("DeleteByID: err=%v n=%d", err, n)
	}
	if left, err := repo.ListAttachments(dbc, a.ID); err != nil || len(left) != 0 {
		t.Fatalf("attachments should cascade: err=%v left=%d", err, len(left))
	}
}
