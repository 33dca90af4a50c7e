package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
)

func requestCaller(dbc dbctx.Context) (*ctxutil.RequestData, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("unauthorized", "request data not set in context")
	}
	return rd, nil
}

func requireRole(rd *ctxutil.RequestData, roles ...types.Role) error {
	for _, r := range roles {
		if types.Role(rd.Role) == r {
			return nil
		}
	}
	return apierr.Forbidden("forbidden", "role "+rd.Role+" may not perform this action")
}

// courseAccess is a course resolved for the caller. Teacher is set when the caller owns
// the course, Student when the caller is enrolled in it.
type courseAccess struct {
	Course  *types.Course
	Teacher *types.Teacher
	Student *types.Student
}

type accessResolver struct {
	teacherRepo    repos.TeacherRepo
	studentRepo    repos.StudentRepo
	courseRepo     repos.CourseRepo
	enrollmentRepo repos.EnrollmentRepo
}

func (a accessResolver) teacherFor(dbc dbctx.Context, userID uuid.UUID) (*types.Teacher, error) {
	t, err := a.teacherRepo.GetByUserID(dbc, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.Forbidden("teacher_profile_missing", "caller has no teacher profile")
	}
	if err != nil {
		return nil, apierr.FromDB(err, "teacher")
	}
	return t, nil
}

func (a accessResolver) studentFor(dbc dbctx.Context, userID uuid.UUID) (*types.Student, error) {
	s, err := a.studentRepo.GetByUserID(dbc, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.NotFound("student_not_found", "student profile not found")
	}
	if err != nil {
		return nil, apierr.FromDB(err, "student")
	}
	return s, nil
}

func (a accessResolver) course(dbc dbctx.Context, courseID uuid.UUID) (*types.Course, error) {
	c, err := a.courseRepo.GetByID(dbc, courseID)
	if err != nil {
		return nil, apierr.FromDB(err, "course")
	}
	return c, nil
}

// ownedCourse requires the caller to be the teacher who owns the course.
func (a accessResolver) ownedCourse(dbc dbctx.Context, rd *ctxutil.RequestData, courseID uuid.UUID) (*courseAccess, error) {
	c, err := a.course(dbc, courseID)
	if err != nil {
		return nil, err
	}
	if types.Role(rd.Role) != types.RoleTeacher {
		return nil, apierr.Forbidden("forbidden", "only the course teacher may do this")
	}
	t, err := a.teacherFor(dbc, rd.UserID)
	if err != nil {
		return nil, err
	}
	if c.TeacherID != t.ID {
		return nil, apierr.Forbidden("course_not_owned", "course belongs to another teacher")
	}
	return &courseAccess{Course: c, Teacher: t}, nil
}

// readableCourse admits the owning teacher and enrolled students.
func (a accessResolver) readableCourse(dbc dbctx.Context, rd *ctxutil.RequestData, courseID uuid.UUID) (*courseAccess, error) {
	switch types.Role(rd.Role) {
	case types.RoleTeacher:
		return a.ownedCourse(dbc, rd, courseID)
	case types.RoleStudent:
		c, err := a.course(dbc, courseID)
		if err != nil {
			return nil, err
		}
		s, err := a.studentFor(dbc, rd.UserID)
		if err != nil {
			return nil, err
		}
		ok, err := a.enrollmentRepo.Exists(dbc, s.ID, c.ID)
		if err != nil {
			return nil, apierr.FromDB(err, "enrollment")
		}
		if !ok {
			return nil, apierr.Forbidden("not_enrolled", "student is not enrolled in this course")
		}
		return &courseAccess{Course: c, Student: s}, nil
	default:
		if _, err := a.course(dbc, courseID); err != nil {
			return nil, err
		}
		return nil, apierr.Forbidden("forbidden", "role "+rd.Role+" may not read course content")
	}
}
