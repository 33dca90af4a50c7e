package http

import (
	"bytes"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	"github.com/yungbote/coursehub-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/coursehub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/coursehub-backend/internal/http/middleware"
	"github.com/yungbote/coursehub-backend/internal/services"
)

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	engine *gin.Engine
}

func newTestServer(t *testing.T, exposeStacks bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)

	userRepo := repos.NewUserRepo(db, log)
	teacherRepo := repos.NewTeacherRepo(db, log)
	studentRepo := repos.NewStudentRepo(db, log)
	tokenRepo := repos.NewUserTokenRepo(db, log)
	semesterRepo := repos.NewSemesterRepo(db, log)
	courseRepo := repos.NewCourseRepo(db, log)
	outlineRepo := repos.NewCourseOutlineRepo(db, log)
	enrollmentRepo := repos.NewEnrollmentRepo(db, log)
	lectureRepo := repos.NewLectureRepo(db, log)
	econtentRepo := repos.NewEContentRepo(db, log)
	assignmentRepo := repos.NewAssignmentRepo(db, log)
	submissionRepo := repos.NewSubmissionRepo(db, log)
	eventRepo := repos.NewEventRepo(db, log)

	media := services.NewMediaStore(log, nil, 1<<20)
	notifier := services.NewCourseNotifier(log, nil, nil)

	userService := services.NewUserService(db, log, userRepo, teacherRepo, studentRepo, courseRepo, enrollmentRepo, nil)
	authService := services.NewAuthService(db, log, userService, userRepo, tokenRepo, "test-secret", time.Hour, 24*time.Hour)
	enrollmentService := services.NewEnrollmentService(db, log, courseRepo, teacherRepo, studentRepo, enrollmentRepo, notifier)
	courseService := services.NewCourseService(db, log, semesterRepo, courseRepo, outlineRepo, teacherRepo, studentRepo,
		enrollmentRepo, lectureRepo, econtentRepo, assignmentRepo, submissionRepo, media)
	lectureService := services.NewLectureService(db, log, courseRepo, teacherRepo, studentRepo, enrollmentRepo, lectureRepo,
		media, notifier, 0)
	assignmentService := services.NewAssignmentService(db, log, courseRepo, teacherRepo, studentRepo, enrollmentRepo,
		assignmentRepo, submissionRepo, media, notifier)
	econtentService := services.NewEContentService(db, log, courseRepo, teacherRepo, studentRepo, enrollmentRepo, econtentRepo, media)

	engine := NewRouter(RouterConfig{
		Log:               log,
		ServiceName:       "coursehub-test",
		ExposeStacks:      exposeStacks,
		AuthMiddleware:    httpMW.NewAuthMiddleware(log, authService),
		AuthHandler:       httpH.NewAuthHandler(authService),
		UserHandler:       httpH.NewUserHandler(userService, enrollmentService),
		SemesterHandler:   httpH.NewSemesterHandler(services.NewSemesterService(db, log, semesterRepo)),
		EventHandler:      httpH.NewEventHandler(services.NewEventService(db, log, eventRepo, media)),
		CourseHandler:     httpH.NewCourseHandler(courseService, enrollmentService),
		LectureHandler:    httpH.NewLectureHandler(lectureService),
		AssignmentHandler: httpH.NewAssignmentHandler(assignmentService),
		EContentHandler:   httpH.NewEContentHandler(econtentService),
		HealthHandler:     httpH.NewHealthHandler(db),
	})
	return &testServer{t: t, db: db, engine: engine}
}

func (s *testServer) do(method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "" && bytes.HasPrefix(bytes.TrimSpace(rec.Body.Bytes()), []byte("{")) {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			s.t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return rec, out
}

// register signs up through the API; extra adds body fields such as teacher_email.
func (s *testServer) register(email, role string, extra ...string) string {
	s.t.Helper()
	req := map[string]any{"name": email, "email": email, "password": "password123", "role": role}
	for i := 0; i+1 < len(extra); i += 2 {
		req[extra[i]] = extra[i+1]
	}
	rec, body := s.do(stdhttp.MethodPost, "/api/auth/register", "", req)
	if rec.Code != stdhttp.StatusCreated {
		s.t.Fatalf("register %s: status=%d body=%s", email, rec.Code, rec.Body.String())
	}
	return body["tokens"].(map[string]any)["access_token"].(string)
}

func (s *testServer) adminToken() string {
	s.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		s.t.Fatalf("hash: %v", err)
	}
	u := testutil.SeedAdmin(s.t, s.db, "admin@example.com")
	if err := s.db.Model(u).Update("password", string(hash)).Error; err != nil {
		s.t.Fatalf("set password: %v", err)
	}
	rec, body := s.do(stdhttp.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "admin@example.com", "password": "password123",
	})
	if rec.Code != stdhttp.StatusOK {
		s.t.Fatalf("login: status=%d body=%s", rec.Code, rec.Body.String())
	}
	return body["access_token"].(string)
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHealthAndAuthGate(t *testing.T) {
	s := newTestServer(t, false)

	rec, _ := s.do(stdhttp.MethodGet, "/healthcheck", "", nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("healthcheck: %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("request id header missing")
	}

	rec, body := s.do(stdhttp.MethodGet, "/api/me", "", nil)
	if rec.Code != stdhttp.StatusUnauthorized || errorCode(body) != "unauthorized" {
		t.Fatalf("anonymous /me: status=%d body=%v", rec.Code, body)
	}
	rec, _ = s.do(stdhttp.MethodGet, "/api/me", "not-a-jwt", nil)
	if rec.Code != stdhttp.StatusUnauthorized {
		t.Fatalf("bad token /me: status=%d", rec.Code)
	}
}

func TestRegisterLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register("t@example.com", "teacher")

	rec, body := s.do(stdhttp.MethodGet, "/api/me", token, nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("/me: status=%d body=%s", rec.Code, rec.Body.String())
	}
	me := body["me"].(map[string]any)
	if me["teacher"] == nil {
		t.Fatalf("teacher profile missing: %v", me)
	}

	rec, body = s.do(stdhttp.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "x", "email": "x@example.com", "password": "password123", "role": "admin",
	})
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("admin self-registration: status=%d body=%v", rec.Code, body)
	}

	rec, _ = s.do(stdhttp.MethodPost, "/api/auth/logout", token, nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("logout: %d", rec.Code)
	}
	rec, _ = s.do(stdhttp.MethodGet, "/api/me", token, nil)
	if rec.Code != stdhttp.StatusUnauthorized {
		t.Fatalf("revoked token should be rejected, got %d", rec.Code)
	}
}

func TestValidationErrorsCarryFields(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register("t@example.com", "teacher")

	rec, body := s.do(stdhttp.MethodPost, "/api/courses", token, map[string]any{"about_course": "x"})
	if rec.Code != stdhttp.StatusBadRequest || errorCode(body) != "validation_failed" {
		t.Fatalf("status=%d body=%v", rec.Code, body)
	}
	fields := body["error"].(map[string]any)["fields"].(map[string]any)
	if fields["title"] == nil || fields["semester_id"] == nil {
		t.Fatalf("fields: %v", fields)
	}

	rec, body = s.do(stdhttp.MethodGet, "/api/courses/not-a-uuid", token, nil)
	if rec.Code != stdhttp.StatusBadRequest || errorCode(body) != "invalid_course_id" {
		t.Fatalf("bad uuid: status=%d body=%v", rec.Code, body)
	}
}

func TestRoleAllowLists(t *testing.T) {
	s := newTestServer(t, false)
	teacher := s.register("t@example.com", "teacher")
	student := s.register("s@example.com", "student")
	admin := s.adminToken()

	semester := map[string]any{
		"name":       "Fall 2026",
		"start_date": "2026-09-01T00:00:00Z",
		"end_date":   "2026-12-20T00:00:00Z",
	}
	rec, _ := s.do(stdhttp.MethodPost, "/api/semesters", teacher, semester)
	if rec.Code != stdhttp.StatusForbidden {
		t.Fatalf("teacher creating semester: %d", rec.Code)
	}
	rec, body := s.do(stdhttp.MethodPost, "/api/semesters", admin, map[string]any{
		"name": "Bad", "start_date": "2026-09-01T00:00:00Z", "end_date": "2026-08-01T00:00:00Z",
	})
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("reversed dates: status=%d body=%v", rec.Code, body)
	}
	rec, body = s.do(stdhttp.MethodPost, "/api/semesters", admin, semester)
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("admin creating semester: status=%d body=%s", rec.Code, rec.Body.String())
	}
	semesterID := body["semester"].(map[string]any)["id"].(string)

	rec, _ = s.do(stdhttp.MethodPost, "/api/courses", student, map[string]any{"title": "x", "semester_id": semesterID})
	if rec.Code != stdhttp.StatusForbidden {
		t.Fatalf("student creating course: %d", rec.Code)
	}
	rec, _ = s.do(stdhttp.MethodGet, "/api/courses", admin, nil)
	if rec.Code != stdhttp.StatusForbidden {
		t.Fatalf("admin listing own courses: %d", rec.Code)
	}
	rec, _ = s.do(stdhttp.MethodGet, "/api/semesters", student, nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("student listing semesters: %d", rec.Code)
	}
}

func TestCourseEnrollmentFlow(t *testing.T) {
	s := newTestServer(t, false)
	teacher := s.register("t@example.com", "teacher")
	sem := testutil.SeedSemester(t, s.db)

	rec, body := s.do(stdhttp.MethodPost, "/api/courses", teacher, map[string]any{
		"title":       "Algorithms",
		"semester_id": sem.ID.String(),
		"outcomes":    []string{"Analyse algorithms"},
		"weekly_plan": []map[string]any{{"week": 1, "topic": "Sorting"}},
	})
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("create course: status=%d body=%s", rec.Code, rec.Body.String())
	}
	course := body["course"].(map[string]any)
	courseID := course["course"].(map[string]any)["id"].(string)
	// registered after the course exists, so not auto-enrolled
	student := s.register("s@example.com", "student", "teacher_email", "t@example.com")

	rec, body = s.do(stdhttp.MethodGet, "/api/courses/"+courseID, student, nil)
	if rec.Code != stdhttp.StatusForbidden {
		t.Fatalf("unenrolled student: status=%d body=%v", rec.Code, body)
	}

	rec, body = s.do(stdhttp.MethodPost, "/api/courses/"+courseID+"/enroll", student, nil)
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("enroll: status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec, body = s.do(stdhttp.MethodPost, "/api/courses/"+courseID+"/enroll", student, nil)
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("second enroll: status=%d body=%v", rec.Code, body)
	}

	rec, body = s.do(stdhttp.MethodGet, "/api/courses/"+courseID, student, nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("enrolled student view: status=%d body=%s", rec.Code, rec.Body.String())
	}
	view := body["course"].(map[string]any)
	if view["enrollment"] == nil || view["students"] != nil {
		t.Fatalf("student view should carry enrollment and no roster: %v", view)
	}

	rec, body = s.do(stdhttp.MethodGet, "/api/courses/"+courseID+"/students", teacher, nil)
	if rec.Code != stdhttp.StatusOK || body["total"].(float64) != 1 {
		t.Fatalf("roster: status=%d body=%v", rec.Code, body)
	}

	rec, _ = s.do(stdhttp.MethodDelete, "/api/courses/"+courseID+"/enroll", student, nil)
	if rec.Code != stdhttp.StatusNoContent {
		t.Fatalf("unenroll: %d", rec.Code)
	}
}

func TestLectureVisibilityOverHTTP(t *testing.T) {
	s := newTestServer(t, false)
	teacher := s.register("t@example.com", "teacher")
	student := s.register("s@example.com", "student", "teacher_email", "t@example.com")
	sem := testutil.SeedSemester(t, s.db)

	rec, body := s.do(stdhttp.MethodPost, "/api/courses", teacher, map[string]any{"title": "Algorithms", "semester_id": sem.ID.String()})
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("create course: status=%d body=%s", rec.Code, rec.Body.String())
	}
	courseID := body["course"].(map[string]any)["course"].(map[string]any)["id"].(string)

	past := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	future := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	for _, deadline := range []string{past, future} {
		rec, _ := s.do(stdhttp.MethodPost, "/api/courses/"+courseID+"/lectures", teacher, map[string]any{
			"title": "Lecture", "review_deadline": deadline,
		})
		if rec.Code != stdhttp.StatusCreated {
			t.Fatalf("create lecture: status=%d body=%s", rec.Code, rec.Body.String())
		}
	}

	rec, body = s.do(stdhttp.MethodGet, "/api/courses/"+courseID+"/lectures", student, nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("list lectures: %d", rec.Code)
	}
	if got := len(body["lectures"].([]any)); got != 1 {
		t.Fatalf("student sees only the overdue, now reviewed lecture: got %d", got)
	}

	rec, body = s.do(stdhttp.MethodGet, "/api/courses/"+courseID+"/lectures", teacher, nil)
	if rec.Code != stdhttp.StatusOK || len(body["lectures"].([]any)) != 2 {
		t.Fatalf("teacher sees every lecture: status=%d body=%v", rec.Code, body)
	}

	rec, body = s.do(stdhttp.MethodPut, "/api/courses/"+courseID+"/lectures/review-all", teacher, nil)
	if rec.Code != stdhttp.StatusOK || body["reviewed"].(float64) != 0 {
		t.Fatalf("review-all after lazy flip: status=%d body=%v", rec.Code, body)
	}
}

func TestErrorStacksOnlyWhenExposed(t *testing.T) {
	for _, expose := range []bool{true, false} {
		s := newTestServer(t, expose)
		token := s.register("t@example.com", "teacher")
		rec, body := s.do(stdhttp.MethodGet, "/api/courses/00000000-0000-0000-0000-000000000001", token, nil)
		if rec.Code != stdhttp.StatusNotFound {
			t.Fatalf("missing course: status=%d body=%v", rec.Code, body)
		}
		stack, _ := body["error"].(map[string]any)["stack"].(string)
		if expose && stack == "" {
			t.Fatalf("stack should be exposed outside production")
		}
		if !expose && stack != "" {
			t.Fatalf("stack must not leak in production")
		}
	}
}

func TestStudentRoutesRejectTeachers(t *testing.T) {
	s := newTestServer(t, false)
	teacher := s.register("t@example.com", "teacher")
	rec, body := s.do(stdhttp.MethodGet, "/api/assignments/00000000-0000-0000-0000-000000000001/submissions/me", teacher, nil)
	if rec.Code != stdhttp.StatusForbidden || errorCode(body) != "forbidden" {
		t.Fatalf("teacher on student route: status=%d body=%v", rec.Code, body)
	}
}
