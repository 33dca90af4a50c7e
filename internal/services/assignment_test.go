package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/coursehub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursehub-backend/internal/domain"
)

func TestAssignmentCreateValidatesAndStoresAttachments(t *testing.T) {
	env := newTestEnv(t)
	svc := env.assignmentService()

	tu, teacher := testutil.SeedTeacher(t, env.db, "t@example.com")
	course := testutil.SeedCourse(t, env.db, teacher, testutil.SeedSemester(t, env.db))
	due := time.Now().Add(24 * time.Hour)

	_, err := svc.Create(as(tu), course.ID, AssignmentInput{Title: "hw", DueDate: due, TotalPoints: 0})
	wantStatus(t, err, http.StatusBadRequest)

	_, err = svc.Create(as(tu), course.ID, AssignmentInput{
		Title: "hw", DueDate: due, TotalPoints: 10,
		Attachments: []FileUpload{pdfUpload("ok.pdf"), upload("run.exe", []byte("MZ\x90\x00binary"))},
	})
	wantStatus(t, err, http.StatusBadRequest)
	if env.bucket.count() != 0 {
		t.Fatalf("partial uploads must be removed, %d left", env.bucket.count())
	}

	a, err := svc.Create(as(tu), course.ID, AssignmentInput{
		Title: "hw", DueDate: due, TotalPoints: 10,
		Attachments: []FileUpload{pdfUpload("brief.pdf")},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !a.IsActive || len(a.Attachments) != 1 || a.Attachments[0].Name != "brief.pdf" {
		t.Fatalf("assignment: %+v", a)
	}
	if !env.bucket.has(a.Attachments[0].Key) {
		t.Fatalf("attachment blob missing")
	}
}

func TestAssignmentUpdateAttachments(t *testing.T) {
	env := newTestEnv(t)
	svc := env.assignmentService()

	tu, teacher := testutil.SeedTeacher(t, env.db, "t@example.com")
	course := testutil.SeedCourse(t, env.db, teacher, testutil.SeedSemester(t, env.db))
	a, err := svc.Create(as(tu), course.ID, AssignmentInput{
		Title: "hw", DueDate: time.Now().Add(time.Hour), TotalPoints: 10,
		Attachments: []FileUpload{pdfUpload("a.pdf"), pdfUpload("b.pdf")},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	first, second := a.Attachments[0], a.Attachments[1]

	got, err := svc.Update(as(tu), a.ID, AssignmentUpdate{RemoveAttachmentIDs: []uuid.UUID{first.ID}})
	if err != nil {
		t.Fatalf("remove one: %v", err)
	}
	if len(got.Attachments) != 1 || got.Attachments[0].ID != second.ID {
		t.Fatalf("after remove: %+v", got.Attachments)
	}
	if env.bucket.has(first.Key) {
		t.Fatalf("removed attachment blob should be deleted")
	}

	got, err = svc.Update(as(tu), a.ID, AssignmentUpdate{
		ReplaceAttachments: true,
		Attachments:        []FileUpload{pdfUpload("c.pdf")},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(got.Attachments) != 1 || got.Attachments[0].Name != "c.pdf" {
		t.Fatalf("after replace: %+v", got.Attachments)
	}
	if env.bucket.has(second.Key) {
		t.Fatalf("replaced attachment blob should be deleted")
	}

	if err := svc.DeleteAttachment(as(tu), a.ID, got.Attachments[0].ID); err != nil {
		t.Fatalf("DeleteAttachment: %v", err)
	}
	err = svc.DeleteAttachment(as(tu), a.ID, got.Attachments[0].ID)
	wantStatus(t, err, http.StatusNotFound)
}

func TestSubmitOneMinuteLateIsLate(t *testing.T) {
	env := newTestEnv(t)
	svc := env.assignmentService()
	due := time.Date(2026, 10, 10, 23, 59, 0, 0, time.UTC)

	_, teacher := testutil.SeedTeacher(t, env.db, "t@example.com")
	su, student := testutil.SeedStudent(t, env.db, "s@example.com", teacher)
	course := testutil.SeedCourse(t, env.db, teacher, testutil.SeedSemester(t, env.db))
	testutil.SeedEnrollment(t, env.db, student, course, due.Add(-72*time.Hour))
	a := testutil.SeedAssignment(t, env.db, course, due, 20)

	svc.now = func() time.Time { return due }
	onTime, err := svc.Submit(as(su), a.ID, pdfUpload("v1.pdf"))
	if err != nil {
		t.Fatalf("Submit at deadline: %v", err)
	}
	if onTime.IsLate {
		t.Fatalf("submission exactly at the deadline is on time")
	}

	svc.now = func() time.Time { return due.Add(time.Minute) }
	late, err := svc.Submit(as(su), a.ID, pdfUpload("v2.pdf"))
	if err != nil {
		t.Fatalf("late Submit: %v", err)
	}
	if !late.IsLate {
		t.Fatalf("submission one minute after due must be late")
	}
	if late.ID != onTime.ID {
		t.Fatalf("resubmission must overwrite in place: %s != %s", late.ID, onTime.ID)
	}
	if env.bucket.has(onTime.FileKey) || !env.bucket.has(late.FileKey) {
		t.Fatalf("old blob should be replaced by the new one")
	}
	if env.notifier.received != 2 {
		t.Fatalf("received notifications: want=2 got=%d", env.notifier.received)
	}
}

func TestResubmissionKeepsSingleRowAndGrade(t *testing.T) {
	env := newTestEnv(t)
	svc := env.assignmentService()

	tu, teacher := testutil.SeedTeacher(t, env.db, "t@example.com")
	su, student := testutil.SeedStudent(t, env.db, "s@example.com", teacher)
	course := testutil.SeedCourse(t, env.db, teacher, testutil.SeedSemester(t, env.db))
	testutil.SeedEnrollment(t, env.db, student, course, time.Now())
	a := testutil.SeedAssignment(t, env.db, course, time.Now().Add(time.Hour), 10)

	sub, err := svc.Submit(as(su), a.ID, pdfUpload("v1.pdf"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := svc.Grade(as(tu), a.ID, sub.ID, 8, "good"); err != nil {
		t.Fatalf("Grade: %v", err)
	}
	again, err := svc.Submit(as(su), a.ID, pdfUpload("v2.pdf"))
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if again.Status != types.SubmissionSubmitted {
		t.Fatalf("resubmission resets status, got %q", again.Status)
	}
	if again.Grade == nil || *again.Grade != 8 || again.Feedback != "good" {
		t.Fatalf("grade and feedback must survive resubmission: %+v", again)
	}
	var n int64
	env.db.Model(&types.Submission{}).Where("assignment_id = ?", a.ID).Count(&n)
	if n != 1 {
		t.Fatalf("one row per student and assignment, got %d", n)
	}
}

func TestSubmitGuards(t *testing.T) {
	env := newTestEnv(t)
	svc := env.assignmentService()

	tu, teacher := testutil.SeedTeacher(t, env.db, "t@example.com")
	su, student := testutil.SeedStudent(t, env.db, "s@example.com", teacher)
	stranger, _ := testutil.SeedStudent(t, env.db, "x@example.com", teacher)
	course := testutil.SeedCourse(t, env.db, teacher, testutil.SeedSemester(t, env.db))
	testutil.SeedEnrollment(t, env.db, student, course, time.Now())
	a := testutil.SeedAssignment(t, env.db, course, time.Now().Add(time.Hour), 10)

	_, err := svc.Submit(as(stranger), a.ID, pdfUpload("a.pdf"))
	wantStatus(t, err, http.StatusForbidden)

	_, err = svc.Submit(as(tu), a.ID, pdfUpload("a.pdf"))
	wantStatus(t, err, http.StatusForbidden)

	_, err = svc.Submit(as(su), a.ID, upload("notes.exe", []byte("MZ\x90\x00")))
	wantStatus(t, err, http.StatusBadRequest)
	_, err = svc.Submit(as(su), a.ID, upload("empty.pdf", nil))
	wantStatus(t, err, http.StatusBadRequest)

	inactive := false
	if _, err := svc.Update(as(tu), a.ID, AssignmentUpdate{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	_, err = svc.Submit(as(su), a.ID, pdfUpload("a.pdf"))
	wantStatus(t, err, http.StatusBadRequest)

	_, err = svc.MySubmission(as(su), a.ID)
	wantStatus(t, err, http.StatusNotFound)
	if env.bucket.count() != 0 {
		t.Fatalf("rejected submissions must not leave blobs")
	}
}

func TestGradeRangeAndOwnership(t *testing.T) {
	env := newTestEnv(t)
	svc := env.assignmentService()

	tu, teacher := testutil.SeedTeacher(t, env.db, "t@example.com")
	su, student := testutil.SeedStudent(t, env.db, "s@example.com", teacher)
	course := testutil.SeedCourse(t, env.db, teacher, testutil.SeedSemester(t, env.db))
	testutil.SeedEnrollment(t, env.db, student, course, time.Now())
	a := testutil.SeedAssignment(t, env.db, course, time.Now().Add(time.Hour), 10)
	other := testutil.SeedAssignment(t, env.db, course, time.Now().Add(time.Hour), 10)

	sub, err := svc.Submit(as(su), a.ID, pdfUpload("a.pdf"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	for _, g := range []float64{-1, 10.5} {
		_, err := svc.Grade(as(tu), a.ID, sub.ID, g, "")
		wantStatus(t, err, http.StatusBadRequest)
	}
	_, err = svc.Grade(as(tu), other.ID, sub.ID, 5, "")
	wantStatus(t, err, http.StatusNotFound)
	_, err = svc.Grade(as(su), a.ID, sub.ID, 5, "")
	wantStatus(t, err, http.StatusForbidden)

	for _, g := range []float64{0, 10} {
		graded, err := svc.Grade(as(tu), a.ID, sub.ID, g, " ok ")
		if err != nil {
			t.Fatalf("Grade %v: %v", g, err)
		}
		if graded.Status != types.SubmissionGraded || graded.Grade == nil || *graded.Grade != g || graded.Feedback != "ok" {
			t.Fatalf("graded submission: %+v", graded)
		}
	}
	if len(env.notifier.graded) != 2 || env.notifier.graded[0] == nil || env.notifier.graded[0].Email != "s@example.com" {
		t.Fatalf("grade notifications: %+v", env.notifier.graded)
	}

	mine, err := svc.MySubmission(as(su), a.ID)
	if err != nil || mine.ID != sub.ID {
		t.Fatalf("MySubmission: err=%v sub=%+v", err, mine)
	}
	list, err := svc.ListSubmissions(as(tu), a.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListSubmissions: err=%v len=%d", err, len(list))
	}
	_, err = svc.ListSubmissions(as(su), a.ID)
	wantStatus(t, err, http.StatusForbidden)
}

func TestAssignmentDeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	svc := env.assignmentService()

	tu, teacher := testutil.SeedTeacher(t, env.db, "t@example.com")
	su, student := testutil.SeedStudent(t, env.db, "s@example.com", teacher)
	course := testutil.SeedCourse(t, env.db, teacher, testutil.SeedSemester(t, env.db))
	testutil.SeedEnrollment(t, env.db, student, course, time.Now())
	a, err := svc.Create(as(tu), course.ID, AssignmentInput{
		Title: "hw", DueDate: time.Now().Add(time.Hour), TotalPoints: 5,
		Attachments: []FileUpload{pdfUpload("brief.pdf")},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Submit(as(su), a.ID, pdfUpload("answer.pdf")); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if err := svc.Delete(as(tu), a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if env.bucket.count() != 0 {
		t.Fatalf("attachment and submission blobs should be removed, %d left", env.bucket.count())
	}
	_, err = svc.Get(as(su), a.ID)
	wantStatus(t, err, http.StatusNotFound)
	list, err := svc.ListByCourse(as(su), course.ID)
	if err != nil || len(list) != 0 {
		t.Fatalf("ListByCourse after delete: err=%v len=%d", err, len(list))
	}
}
