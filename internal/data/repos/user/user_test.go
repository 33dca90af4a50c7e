package user

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewUserRepo(db, testutil.Logger(t))

	u := &types.User{Name: "Ada", Email: "ada@example.com", Password: "hash", Role: types.RoleStudent}
	if _, err := repo.Create(dbc, []*types.User{u}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == uuid.Nil {
		t.Fatalf("expected id assigned on create")
	}

	if got, err := repo.GetByEmail(dbc, "ada@example.com"); err != nil || got.ID != u.ID {
		t.Fatalf("GetByEmail: err=%v got=%v", err, got)
	}
	if exists, err := repo.EmailExists(dbc, "ada@example.com"); err != nil || !exists {
		t.Fatalf("EmailExists: err=%v exists=%v", err, exists)
	}
	if _, err := repo.GetByEmail(dbc, "nobody@example.com"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetByEmail missing: want ErrRecordNotFound, got %v", err)
	}

	dup := &types.User{Name: "Ada 2", Email: "ada@example.com", Password: "hash", Role: types.RoleStudent}
	if _, err := repo.Create(dbc, []*types.User{dup}); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("duplicate email: want ErrDuplicatedKey, got %v", err)
	}

	if err := repo.UpdateAvatarFields(dbc, u.ID, "avatars/a.png", "https://cdn/avatars/a.png"); err != nil {
		t.Fatalf("UpdateAvatarFields: %v", err)
	}
	got, err := repo.GetByID(dbc, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.AvatarBucketKey != "avatars/a.png" || got.AvatarURL != "https://cdn/avatars/a.png" {
		t.Fatalf("avatar fields not updated: %+v", got)
	}
}

func TestStudentRepoAssignTeacher(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewStudentRepo(db, testutil.Logger(t))

	_, teacher := testutil.SeedTeacher(t, db, "teacher@example.com")
	_, s := testutil.SeedStudent(t, db, "student@example.com", nil)

	unassigned, err := repo.ListUnassigned(dbc)
	if err != nil || len(unassigned) != 1 {
		t.Fatalf("ListUnassigned: err=%v len=%d", err, len(unassigned))
	}

	if err := repo.AssignTeacher(dbc, s.ID, teacher.ID, teacher.Email); err != nil {
		t.Fatalf("AssignTeacher: %v", err)
	}
	mine, err := repo.ListByTeacherID(dbc, teacher.ID)
	if err != nil || len(mine) != 1 {
		t.Fatalf("ListByTeacherID: err=%v len=%d", err, len(mine))
	}
	if mine[0].TeacherEmail != teacher.Email || mine[0].User == nil {
		t.Fatalf("unexpected student row: %+v", mine[0])
	}
	if err := repo.AssignTeacher(dbc, uuid.New(), teacher.ID, teacher.Email); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("AssignTeacher missing: want ErrRecordNotFound, got %v", err)
	}
}

func TestDeletingTeacherDetachesStudents(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewStudentRepo(db, testutil.Logger(t))

	_, byProfile := testutil.SeedTeacher(t, db, "profile@example.com")
	byUserAccount, _ := testutil.SeedTeacher(t, db, "account@example.com")
	_, kept := testutil.SeedTeacher(t, db, "kept@example.com")
	_, s1 := testutil.SeedStudent(t, db, "s1@example.com", byProfile)
	s2User, _ := testutil.SeedStudent(t, db, "s2@example.com", nil)
	_, s3 := testutil.SeedStudent(t, db, "s3@example.com", kept)

	s2, err := repo.GetByUserID(dbc, s2User.ID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	accountTeacher := &types.Teacher{}
	if err := db.Where("user_id = ?", byUserAccount.ID).First(accountTeacher).Error; err != nil {
		t.Fatalf("load teacher: %v", err)
	}
	if err := repo.AssignTeacher(dbc, s2.ID, accountTeacher.ID, accountTeacher.Email); err != nil {
		t.Fatalf("AssignTeacher: %v", err)
	}

	if err := db.Delete(byProfile).Error; err != nil {
		t.Fatalf("delete teacher: %v", err)
	}
	if err := db.Delete(byUserAccount).Error; err != nil {
		t.Fatalf("delete teacher user: %v", err)
	}

	for _, id := range []uuid.UUID{s1.ID, s2.ID} {
		got, err := repo.GetByID(dbc, id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.TeacherID != nil || got.TeacherEmail != "" {
			t.Fatalf("student %s should be unassigned: teacher_id=%v teacher_email=%q", id, got.TeacherID, got.TeacherEmail)
		}
	}
	got, err := repo.GetByID(dbc, s3.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.TeacherID == nil || got.TeacherEmail != kept.Email {
		t.Fatalf("unrelated assignment should stay: %+v", got)
	}
	unassigned, err := repo.ListUnassigned(dbc)
	if err != nil || len(unassigned) != 2 {
		t.Fatalf("ListUnassigned: err=%v len=%d", err, len(unassigned))
	}
}
