package services

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/yungbote/coursehub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
)

func studentWorkbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	header := []interface{}{"name", "email", "password", "program", "semester", "teacher_email"}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatalf("header: %v", err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		r := row
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("row %d: %v", i, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf
}

func countEnrollments(t *testing.T, env *testEnv, student *types.Student) int64 {
	t.Helper()
	var n int64
	if err := env.db.Model(&types.StudentCourse{}).Where("student_id = ?", student.ID).Count(&n).Error; err != nil {
		t.Fatalf("count enrollments: %v", err)
	}
	return n
}

func TestRegisterStudentWithTeacherAutoEnrolls(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()

	_, teacher := testutil.SeedTeacher(t, env.db, "t@example.com")
	testutil.SeedCourse(t, env.db, teacher, testutil.SeedSemester(t, env.db))

	p, err := svc.Register(dbctx.Context{Ctx: t.Context()}, AccountInput{
		Name:         " Ada ",
		Email:        "ADA@Example.com",
		Password:     "password1",
		TeacherEmail: "T@example.com",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if p.User.Role != types.RoleStudent || p.User.Email != "ada@example.com" || p.User.Name != "Ada" {
		t.Fatalf("user: %+v", p.User)
	}
	if p.Student == nil || p.Student.TeacherID == nil || *p.Student.TeacherID != teacher.ID {
		t.Fatalf("student should be assigned to the teacher: %+v", p.Student)
	}
	if p.User.Password == "password1" {
		t.Fatalf("password must be stored hashed")
	}
	if n := countEnrollments(t, env, p.Student); n != 1 {
		t.Fatalf("auto enrollments: want=1 got=%d", n)
	}
}

func TestRegisterRejections(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	dbc := dbctx.Context{Ctx: t.Context()}
	testutil.SeedTeacher(t, env.db, "taken@example.com")

	cases := []struct {
		name   string
		in     AccountInput
		status int
	}{
		{"admin", AccountInput{Name: "A", Email: "a@example.com", Password: "password1", Role: types.RoleAdmin}, http.StatusBadRequest},
		{"short password", AccountInput{Name: "A", Email: "a@example.com", Password: "short"}, http.StatusBadRequest},
		{"bad email", AccountInput{Name: "A", Email: "nope", Password: "password1"}, http.StatusBadRequest},
		{"teacher email on teacher", AccountInput{Name: "A", Email: "a@example.com", Password: "password1", Role: types.RoleTeacher, TeacherEmail: "taken@example.com"}, http.StatusBadRequest},
		{"unknown teacher", AccountInput{Name: "A", Email: "a@example.com", Password: "password1", TeacherEmail: "ghost@example.com"}, http.StatusNotFound},
		{"duplicate", AccountInput{Name: "A", Email: "taken@example.com", Password: "password1"}, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(dbc, tc.in)
			wantStatus(t, err, tc.status)
		})
	}
}

func TestCreateUserRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	admin := testutil.SeedAdmin(t, env.db, "admin@example.com")
	tu, _ := testutil.SeedTeacher(t, env.db, "t@example.com")

	in := AccountInput{Name: "Grace", Email: "grace@example.com", Password: "password1", Role: types.RoleTeacher}
	_, err := svc.CreateUser(as(tu), in)
	wantStatus(t, err, http.StatusForbidden)

	p, err := svc.CreateUser(as(admin), in)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if p.Teacher == nil || p.Teacher.Email != "grace@example.com" {
		t.Fatalf("teacher profile: %+v", p.Teacher)
	}
	teachers, err := svc.ListTeachers(as(admin))
	if err != nil {
		t.Fatalf("ListTeachers: %v", err)
	}
	if len(teachers) != 2 {
		t.Fatalf("teachers: want=2 got=%d", len(teachers))
	}
}

func TestImportStudents(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	admin := testutil.SeedAdmin(t, env.db, "admin@example.com")
	tu, teacher := testutil.SeedTeacher(t, env.db, "t@example.com")

	wb := studentWorkbook(t,
		[]interface{}{"Ada", "ada@example.com", "password1", "BSc", "1", "t@example.com"},
		[]interface{}{"", "", "", "", "", ""},
		[]interface{}{"Linus", "linus@example.com", "password2", "BSc", "2", ""},
	)
	res, err := svc.ImportStudents(as(admin), wb)
	if err != nil {
		t.Fatalf("ImportStudents: %v", err)
	}
	if res.Created != 2 {
		t.Fatalf("created: want=2 got=%d", res.Created)
	}

	mine, err := svc.ListMyStudents(as(tu))
	if err != nil {
		t.Fatalf("ListMyStudents: %v", err)
	}
	if len(mine) != 1 || mine[0].TeacherEmail != teacher.Email {
		t.Fatalf("assigned students: %+v", mine)
	}
	free, err := svc.ListUnassignedStudents(as(tu))
	if err != nil {
		t.Fatalf("ListUnassignedStudents: %v", err)
	}
	if len(free) != 1 {
		t.Fatalf("unassigned: want=1 got=%d", len(free))
	}
}

func TestImportStudentsIsAllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	admin := testutil.SeedAdmin(t, env.db, "admin@example.com")

	wb := studentWorkbook(t,
		[]interface{}{"Ada", "ada@example.com", "password1", "", "", ""},
		[]interface{}{"Ada Again", "ADA@example.com", "password1", "", "", ""},
	)
	_, err := svc.ImportStudents(as(admin), wb)
	wantStatus(t, err, http.StatusConflict)
	if !strings.Contains(err.Error(), "row 3") {
		t.Fatalf("error should name the spreadsheet row: %v", err)
	}
	var n int64
	env.db.Model(&types.User{}).Where("email = ?", "ada@example.com").Count(&n)
	if n != 0 {
		t.Fatalf("failed import must not leave rows behind")
	}

	_, err = svc.ImportStudents(as(admin), strings.NewReader("not a workbook"))
	wantStatus(t, err, http.StatusBadRequest)
}

func TestBootstrapAdminIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	dbc := dbctx.Context{Ctx: t.Context()}
	in := AccountInput{Name: "Root", Email: "root@example.com", Password: "password1"}

	first, created, err := svc.BootstrapAdmin(dbc, in)
	if err != nil || !created {
		t.Fatalf("first BootstrapAdmin: created=%v err=%v", created, err)
	}
	if first.Role != types.RoleAdmin {
		t.Fatalf("role: got=%s", first.Role)
	}
	again, created, err := svc.BootstrapAdmin(dbc, in)
	if err != nil || created {
		t.Fatalf("second BootstrapAdmin: created=%v err=%v", created, err)
	}
	if again.ID != first.ID {
		t.Fatalf("should return the existing admin")
	}

	testutil.SeedTeacher(t, env.db, "t@example.com")
	_, _, err = svc.BootstrapAdmin(dbc, AccountInput{Name: "T", Email: "t@example.com", Password: "password1"})
	wantStatus(t, err, http.StatusConflict)
}

func TestImportStudentsRollbackRemovesAvatars(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userServiceWithAvatars(t)
	admin := testutil.SeedAdmin(t, env.db, "admin@example.com")

	wb := studentWorkbook(t,
		[]interface{}{"Ada", "ada@example.com", "password1", "", "", ""},
		[]interface{}{"Linus", "linus@example.com", "password2", "", "", "nobody@example.com"},
	)
	_, err := svc.ImportStudents(as(admin), wb)
	wantStatus(t, err, http.StatusNotFound)
	if n := env.bucket.count(); n != 0 {
		t.Fatalf("avatars uploaded before the failing row should be removed, %d left", n)
	}
	if len(env.bucket.deleted) != 1 {
		t.Fatalf("deleted keys: %v", env.bucket.deleted)
	}

	ok := studentWorkbook(t,
		[]interface{}{"Ada", "ada@example.com", "password1", "", "", ""},
	)
	res, err := svc.ImportStudents(as(admin), ok)
	if err != nil {
		t.Fatalf("ImportStudents: %v", err)
	}
	u, err := env.users.GetByID(as(admin), res.Students[0].UserID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !env.bucket.has(u.AvatarBucketKey) {
		t.Fatalf("committed import should keep its avatar %q", u.AvatarBucketKey)
	}
}
