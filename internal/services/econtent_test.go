package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/coursehub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursehub-backend/internal/domain"
)

func TestEContentAddModule(t *testing.T) {
	env := newTestEnv(t)
	svc := env.econtentService()

	tu, teacher := testutil.SeedTeacher(t, env.db, "t@example.com")
	course := testutil.SeedCourse(t, env.db, teacher, testutil.SeedSemester(t, env.db))

	m, err := svc.AddModule(as(tu), course.ID, ModuleInput{
		ModuleNumber: 1,
		Title:        "Intro",
		Files: []FileUpload{
			pdfUpload("week1.pdf"),
			upload("slides.pptx", []byte("PK\x03\x04 not really a deck")),
			upload("notes.md", []byte("# notes")),
		},
	})
	if err != nil {
		t.Fatalf("AddModule: %v", err)
	}
	want := []types.EContentFileType{types.EContentFilePDF, types.EContentFilePPTX, types.EContentFileOther}
	if len(m.Files) != len(want) {
		t.Fatalf("files: want=%d got=%d", len(want), len(m.Files))
	}
	for i, f := range m.Files {
		if f.FileType != want[i] {
			t.Fatalf("file %d type: want=%q got=%q", i, want[i], f.FileType)
		}
	}

	_, err = svc.AddModule(as(tu), course.ID, ModuleInput{ModuleNumber: 1, Title: "Again", Files: []FileUpload{pdfUpload("x.pdf")}})
	wantStatus(t, err, http.StatusConflict)
	if env.bucket.count() != 3 {
		t.Fatalf("duplicate module must not leave blobs, have %d", env.bucket.count())
	}

	_, err = svc.AddModule(as(tu), course.ID, ModuleInput{ModuleNumber: 0, Title: "Zero"})
	wantStatus(t, err, http.StatusBadRequest)
}

func TestEContentAccessAndDeletes(t *testing.T) {
	env := newTestEnv(t)
	svc := env.econtentService()

	tu, teacher := testutil.SeedTeacher(t, env.db, "t@example.com")
	su, student := testutil.SeedStudent(t, env.db, "s@example.com", teacher)
	outsider, _ := testutil.SeedStudent(t, env.db, "o@example.com", teacher)
	course := testutil.SeedCourse(t, env.db, teacher, testutil.SeedSemester(t, env.db))
	testutil.SeedEnrollment(t, env.db, student, course, time.Now())

	empty, err := svc.Get(as(su), course.ID)
	if err != nil || len(empty.Modules) != 0 {
		t.Fatalf("Get before any module: err=%v", err)
	}
	_, err = svc.Get(as(outsider), course.ID)
	wantStatus(t, err, http.StatusForbidden)
	_, err = svc.AddModule(as(su), course.ID, ModuleInput{ModuleNumber: 1, Title: "x"})
	wantStatus(t, err, http.StatusForbidden)

	m, err := svc.AddModule(as(tu), course.ID, ModuleInput{
		ModuleNumber: 2, Title: "Trees",
		Files: []FileUpload{pdfUpload("a.pdf"), pdfUpload("b.pdf")},
	})
	if err != nil {
		t.Fatalf("AddModule: %v", err)
	}

	wantStatus(t, svc.DeleteFile(as(tu), course.ID, m.ID, uuid.New()), http.StatusNotFound)
	if err := svc.DeleteFile(as(tu), course.ID, m.ID, m.Files[0].ID); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if env.bucket.has(m.Files[0].FileKey) || !env.bucket.has(m.Files[1].FileKey) {
		t.Fatalf("only the deleted file's blob should go")
	}

	if err := svc.DeleteModule(as(tu), course.ID, m.ID); err != nil {
		t.Fatalf("DeleteModule: %v", err)
	}
	if env.bucket.count() != 0 {
		t.Fatalf("module blobs should be removed, %d left", env.bucket.count())
	}
	got, err := svc.Get(as(su), course.ID)
	if err != nil || len(got.Modules) != 0 {
		t.Fatalf("Get after delete: err=%v modules=%d", err, len(got.Modules))
	}
}
