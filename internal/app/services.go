package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/platform/logger"
	"github.com/yungbote/coursehub-backend/internal/services"
)

type Services struct {
	Media      *services.MediaStore
	Notifier   services.CourseNotifier
	Avatar     services.AvatarService
	User       services.UserService
	Auth       services.AuthService
	Enrollment services.EnrollmentService
	Semester   services.SemesterService
	Event      services.EventService
	Course     services.CourseService
	Lecture    services.LectureService
	Assignment services.AssignmentService
	EContent   services.EContentService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	media := services.NewMediaStore(log, clients.Bucket, cfg.MaxUploadBytes)
	notifier := services.NewCourseNotifier(log, clients.EventBus, clients.Mailer)

	var avatar services.AvatarService
	if clients.Bucket != nil {
		a, err := services.NewAvatarService(log, clients.Bucket)
		if err != nil {
			return Services{}, fmt.Errorf("init avatar service: %w", err)
		}
		avatar = a
	}

	userService := services.NewUserService(db, log, r.User, r.Teacher, r.Student, r.Course, r.Enrollment, avatar)
	authService := services.NewAuthService(
		db, log, userService, r.User, r.UserToken,
		cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL,
	)

	return Services{
		Media:      media,
		Notifier:   notifier,
		Avatar:     avatar,
		User:       userService,
		Auth:       authService,
		Enrollment: services.NewEnrollmentService(db, log, r.Course, r.Teacher, r.Student, r.Enrollment, notifier),
		Semester:   services.NewSemesterService(db, log, r.Semester),
		Event:      services.NewEventService(db, log, r.Event, media),
		Course: services.NewCourseService(
			db, log, r.Semester, r.Course, r.Outline, r.Teacher, r.Student, r.Enrollment,
			r.Lecture, r.EContent, r.Assignment, r.Submission, media,
		),
		Lecture: services.NewLectureService(
			db, log, r.Course, r.Teacher, r.Student, r.Enrollment, r.Lecture,
			media, notifier, cfg.LectureReviewWindow,
		),
		Assignment: services.NewAssignmentService(
			db, log, r.Course, r.Teacher, r.Student, r.Enrollment, r.Assignment, r.Submission,
			media, notifier,
		),
		EContent: services.NewEContentService(db, log, r.Course, r.Teacher, r.Student, r.Enrollment, r.EContent, media),
	}, nil
}
