package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	"github.com/yungbote/coursehub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/gcp"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type fakeBucket struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	uploadErr error
	deleteErr error
}

func newFakeBucket() *fakeBucket { return &fakeBucket{objects: map[string][]byte{}} }

func (b *fakeBucket) UploadFile(dbc dbctx.Context, category gcp.BucketCategory, key string, file io.Reader, contentType string) error {
	if b.uploadErr != nil {
		return b.uploadErr
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return nil
}

func (b *fakeBucket) DeleteFile(ctx context.Context, category gcp.BucketCategory, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, key)
	if b.deleteErr != nil {
		return b.deleteErr
	}
	if _, ok := b.objects[key]; !ok {
		return fmt.Errorf("%w: %s", gcp.ErrObjectNotFound, key)
	}
	delete(b.objects, key)
	return nil
}

func (b *fakeBucket) GetPublicURL(category gcp.BucketCategory, key string) string {
	return "https://cdn.test/" + key
}

func (b *fakeBucket) has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[key]
	return ok
}

func (b *fakeBucket) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

type recordingNotifier struct {
	mu         sync.Mutex
	enrolled   int
	unenrolled int
	reviewed   int64
	received   int
	graded     []*types.User
}

func (n *recordingNotifier) StudentEnrolled(context.Context, *types.StudentCourse) {
	n.mu.Lock()
	n.enrolled++
	n.mu.Unlock()
}

func (n *recordingNotifier) StudentUnenrolled(context.Context, uuid.UUID, uuid.UUID) {
	n.mu.Lock()
	n.unenrolled++
	n.mu.Unlock()
}

func (n *recordingNotifier) LecturesReviewed(_ context.Context, _ uuid.UUID, count int64) {
	n.mu.Lock()
	n.reviewed += count
	n.mu.Unlock()
}

func (n *recordingNotifier) SubmissionReceived(context.Context, *types.Assignment, *types.Submission) {
	n.mu.Lock()
	n.received++
	n.mu.Unlock()
}

func (n *recordingNotifier) SubmissionGraded(_ context.Context, _ *types.Assignment, _ *types.Submission, student *types.User) {
	n.mu.Lock()
	n.graded = append(n.graded, student)
	n.mu.Unlock()
}

// testEnv wires every repo against a fresh SQLite database.
type testEnv struct {
	db       *gorm.DB
	log      *logger.Logger
	bucket   *fakeBucket
	media    *MediaStore
	notifier *recordingNotifier

	users       repos.UserRepo
	teachers    repos.TeacherRepo
	students    repos.StudentRepo
	tokens      repos.UserTokenRepo
	semesters   repos.SemesterRepo
	courses     repos.CourseRepo
	outlines    repos.CourseOutlineRepo
	enrollments repos.EnrollmentRepo
	lectures    repos.LectureRepo
	econtent    repos.EContentRepo
	assignments repos.AssignmentRepo
	submissions repos.SubmissionRepo
	events      repos.EventRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	bucket := newFakeBucket()
	return &testEnv{
		db:          db,
		log:         log,
		bucket:      bucket,
		media:       NewMediaStore(log, bucket, 1<<20),
		notifier:    &recordingNotifier{},
		users:       repos.NewUserRepo(db, log),
		teachers:    repos.NewTeacherRepo(db, log),
		students:    repos.NewStudentRepo(db, log),
		tokens:      repos.NewUserTokenRepo(db, log),
		semesters:   repos.NewSemesterRepo(db, log),
		courses:     repos.NewCourseRepo(db, log),
		outlines:    repos.NewCourseOutlineRepo(db, log),
		enrollments: repos.NewEnrollmentRepo(db, log),
		lectures:    repos.NewLectureRepo(db, log),
		econtent:    repos.NewEContentRepo(db, log),
		assignments: repos.NewAssignmentRepo(db, log),
		submissions: repos.NewSubmissionRepo(db, log),
		events:      repos.NewEventRepo(db, log),
	}
}

func (e *testEnv) enrollmentService() EnrollmentService {
	return NewEnrollmentService(e.db, e.log, e.courses, e.teachers, e.students, e.enrollments, e.notifier)
}

func (e *testEnv) courseService() *courseService {
	return NewCourseService(e.db, e.log, e.semesters, e.courses, e.outlines, e.teachers, e.students,
		e.enrollments, e.lectures, e.econtent, e.assignments, e.submissions, e.media).(*courseService)
}

func (e *testEnv) lectureService() *lectureService {
	return NewLectureService(e.db, e.log, e.courses, e.teachers, e.students, e.enrollments, e.lectures,
		e.media, e.notifier, 0).(*lectureService)
}

func (e *testEnv) assignmentService() *assignmentService {
	return NewAssignmentService(e.db, e.log, e.courses, e.teachers, e.students, e.enrollments,
		e.assignments, e.submissions, e.media, e.notifier).(*assignmentService)
}

func (e *testEnv) econtentService() EContentService {
	return NewEContentService(e.db, e.log, e.courses, e.teachers, e.students, e.enrollments, e.econtent, e.media)
}

// as returns a request context acting as u.
func as(u *types.User) dbctx.Context {
	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: u.ID, Role: string(u.Role)})
	return dbctx.Context{Ctx: ctx}
}

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("want status %d, got nil error", status)
	}
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("want *apierr.Error with status %d, got %T: %v", status, err, err)
	}
	if ae.Status != status {
		t.Fatalf("status: want=%d got=%d (%s: %v)", status, ae.Status, ae.Code, err)
	}
}

func upload(name string, data []byte) FileUpload {
	return FileUpload{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

func pdfUpload(name string) FileUpload {
	return upload(name, []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n"))
}

// mp4Upload is a bare ftyp box with the isom brand, enough for content sniffing.
func mp4Upload(name string) FileUpload {
	box := []byte{0x00, 0x00, 0x00, 0x18}
	box = append(box, []byte("ftypisom")...)
	box = append(box, 0x00, 0x00, 0x02, 0x00)
	box = append(box, []byte("isomiso2")...)
	return upload(name, append(box, make([]byte, 64)...))
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func (e *testEnv) userService() UserService {
	return NewUserService(e.db, e.log, e.users, e.teachers, e.students, e.courses, e.enrollments, nil)
}

func (e *testEnv) authService(userService UserService) *authService {
	return NewAuthService(e.db, e.log, userService, e.users, e.tokens, "test-secret", time.Hour, 24*time.Hour).(*authService)
}

func (e *testEnv) userServiceWithAvatars(t *testing.T) UserService {
	t.Helper()
	avatars, err := NewAvatarService(e.log, e.bucket)
	if err != nil {
		t.Fatalf("NewAvatarService: %v", err)
	}
	return NewUserService(e.db, e.log, e.users, e.teachers, e.students, e.courses, e.enrollments, avatars)
}
