package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	httpH "github.com/yungbote/coursehub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/coursehub-backend/internal/http/middleware"
	"github.com/yungbote/coursehub-backend/internal/http/response"
	"github.com/yungbote/coursehub-backend/internal/http/validation"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	ExposeStacks   bool
	TracingEnabled bool

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler       *httpH.AuthHandler
	UserHandler       *httpH.UserHandler
	SemesterHandler   *httpH.SemesterHandler
	EventHandler      *httpH.EventHandler
	CourseHandler     *httpH.CourseHandler
	LectureHandler    *httpH.LectureHandler
	AssignmentHandler *httpH.AssignmentHandler
	EContentHandler   *httpH.EContentHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	validation.Setup()

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.RequestID())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(response.ExposeStacks(cfg.ExposeStacks))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	// Auth (public)
	if cfg.AuthHandler != nil {
		api.POST("/auth/register", cfg.AuthHandler.Register)
		api.POST("/auth/login", cfg.AuthHandler.Login)
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}

	admin := httpMW.RequireRoles(types.RoleAdmin)
	teacher := httpMW.RequireRoles(types.RoleTeacher)
	student := httpMW.RequireRoles(types.RoleStudent)
	staff := httpMW.RequireRoles(types.RoleAdmin, types.RoleTeacher)
	members := httpMW.RequireRoles(types.RoleTeacher, types.RoleStudent)
	anyone := httpMW.RequireRoles(types.RoleAdmin, types.RoleTeacher, types.RoleStudent)

	// Auth (protected)
	if cfg.AuthHandler != nil {
		protected.POST("/auth/refresh", cfg.AuthHandler.Refresh)
		protected.POST("/auth/logout", cfg.AuthHandler.Logout)
	}

	// Users
	if cfg.UserHandler != nil {
		protected.GET("/me", cfg.UserHandler.GetMe)
		protected.POST("/users", admin, cfg.UserHandler.CreateUser)
		protected.POST("/users/import", admin, cfg.UserHandler.ImportStudents)
		protected.GET("/teachers", admin, cfg.UserHandler.ListTeachers)
		protected.GET("/teachers/me/students", teacher, cfg.UserHandler.ListMyStudents)
		protected.GET("/students/unassigned", staff, cfg.UserHandler.ListUnassignedStudents)
		protected.PUT("/students/:studentId/teacher", staff, cfg.UserHandler.AssignTeacher)
	}

	// Semesters
	if cfg.SemesterHandler != nil {
		protected.GET("/semesters", cfg.SemesterHandler.List)
		protected.GET("/semesters/:id", cfg.SemesterHandler.Get)
		protected.POST("/semesters", admin, cfg.SemesterHandler.Create)
		protected.PUT("/semesters/:id", admin, cfg.SemesterHandler.Update)
		protected.DELETE("/semesters/:id", admin, cfg.SemesterHandler.Delete)
	}

	// Events
	if cfg.EventHandler != nil {
		protected.GET("/events", cfg.EventHandler.List)
		protected.GET("/events/:id", cfg.EventHandler.Get)
		protected.POST("/events", admin, cfg.EventHandler.Create)
		protected.PUT("/events/:id", admin, cfg.EventHandler.Update)
		protected.DELETE("/events/:id", admin, cfg.EventHandler.Delete)
	}

	// Courses
	if cfg.CourseHandler != nil {
		protected.POST("/courses", teacher, cfg.CourseHandler.Create)
		protected.GET("/courses", members, cfg.CourseHandler.ListMine)
		protected.GET("/courses/:courseId", members, cfg.CourseHandler.Get)
		protected.PUT("/courses/:courseId", teacher, cfg.CourseHandler.Update)
		protected.DELETE("/courses/:courseId", staff, cfg.CourseHandler.Delete)
		protected.PUT("/courses/:courseId/attendance", teacher, cfg.CourseHandler.UpdateAttendance)
		protected.POST("/courses/:courseId/enroll", anyone, cfg.CourseHandler.Enroll)
		protected.DELETE("/courses/:courseId/enroll", anyone, cfg.CourseHandler.Unenroll)
		protected.GET("/courses/:courseId/students", teacher, cfg.CourseHandler.Roster)
	}

	// Lectures
	if cfg.LectureHandler != nil {
		protected.POST("/courses/:courseId/lectures", teacher, cfg.LectureHandler.Create)
		protected.GET("/courses/:courseId/lectures", members, cfg.LectureHandler.List)
		protected.PUT("/courses/:courseId/lectures/review-all", teacher, cfg.LectureHandler.ReviewAllOverdue)
		protected.GET("/courses/:courseId/lectures/:lectureId", members, cfg.LectureHandler.Get)
		protected.PUT("/courses/:courseId/lectures/:lectureId", teacher, cfg.LectureHandler.Update)
		protected.PUT("/courses/:courseId/lectures/:lectureId/review", teacher, cfg.LectureHandler.MarkReviewed)
		protected.DELETE("/courses/:courseId/lectures/:lectureId", teacher, cfg.LectureHandler.Delete)
	}

	// Assignments
	if cfg.AssignmentHandler != nil {
		protected.POST("/courses/:courseId/assignments", teacher, cfg.AssignmentHandler.Create)
		protected.GET("/courses/:courseId/assignments", members, cfg.AssignmentHandler.ListByCourse)
		protected.GET("/assignments/:assignmentId", members, cfg.AssignmentHandler.Get)
		protected.PUT("/assignments/:assignmentId", teacher, cfg.AssignmentHandler.Update)
		protected.DELETE("/assignments/:assignmentId", teacher, cfg.AssignmentHandler.Delete)
		protected.DELETE("/assignments/:assignmentId/attachments/:attachmentId", teacher, cfg.AssignmentHandler.DeleteAttachment)
		protected.POST("/assignments/:assignmentId/submit", student, cfg.AssignmentHandler.Submit)
		protected.GET("/assignments/:assignmentId/submissions", teacher, cfg.AssignmentHandler.ListSubmissions)
		protected.GET("/assignments/:assignmentId/submissions/me", student, cfg.AssignmentHandler.MySubmission)
		protected.POST("/assignments/:assignmentId/submissions/:submissionId/grade", teacher, cfg.AssignmentHandler.Grade)
	}

	// E-content
	if cfg.EContentHandler != nil {
		protected.POST("/courses/:courseId/econtent/modules", teacher, cfg.EContentHandler.AddModule)
		protected.GET("/courses/:courseId/econtent", members, cfg.EContentHandler.Get)
		protected.DELETE("/courses/:courseId/econtent/modules/:moduleId", teacher, cfg.EContentHandler.DeleteModule)
		protected.DELETE("/courses/:courseId/econtent/modules/:moduleId/files/:fileId", teacher, cfg.EContentHandler.DeleteFile)
	}

	return r
}
