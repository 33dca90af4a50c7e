package app

import (
	"gorm.io/gorm"

	httpserver "github.com/yungbote/coursehub-backend/internal/http"
	httpH "github.com/yungbote/coursehub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/coursehub-backend/internal/http/middleware"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Auth       *httpH.AuthHandler
	User       *httpH.UserHandler
	Semester   *httpH.SemesterHandler
	Event      *httpH.EventHandler
	Course     *httpH.CourseHandler
	Lecture    *httpH.LectureHandler
	Assignment *httpH.AssignmentHandler
	EContent   *httpH.EContentHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(db),
		Auth:       httpH.NewAuthHandler(services.Auth),
		User:       httpH.NewUserHandler(services.User, services.Enrollment),
		Semester:   httpH.NewSemesterHandler(services.Semester),
		Event:      httpH.NewEventHandler(services.Event),
		Course:     httpH.NewCourseHandler(services.Course, services.Enrollment),
		Lecture:    httpH.NewLectureHandler(services.Lecture),
		Assignment: httpH.NewAssignmentHandler(services.Assignment),
		EContent:   httpH.NewEContentHandler(services.EContent),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *httpserver.Server {
	return httpserver.NewServer(httpserver.RouterConfig{
		Log:            log,
		ServiceName:    cfg.ServiceName,
		CORSOrigins:    cfg.CORSOrigins,
		ExposeStacks:   !cfg.IsProduction(),
		TracingEnabled: cfg.TracingEnabled,

		AuthMiddleware: middleware.Auth,

		HealthHandler:     handlers.Health,
		AuthHandler:       handlers.Auth,
		UserHandler:       handlers.User,
		SemesterHandler:   handlers.Semester,
		EventHandler:      handlers.Event,
		CourseHandler:     handlers.Course,
		LectureHandler:    handlers.Lecture,
		AssignmentHandler: handlers.Assignment,
		EContentHandler:   handlers.EContent,
	})
}
