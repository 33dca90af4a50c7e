package repos

import (
	"github.com/yungbote/coursehub-backend/internal/data/repos/auth"
	"github.com/yungbote/coursehub-backend/internal/data/repos/campus"
	"github.com/yungbote/coursehub-backend/internal/data/repos/coursework"
	"github.com/yungbote/coursehub-backend/internal/data/repos/learning"
	"github.com/yungbote/coursehub-backend/internal/data/repos/user"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo
type TeacherRepo = user.TeacherRepo
type StudentRepo = user.StudentRepo
type UserTokenRepo = auth.UserTokenRepo

type SemesterRepo = learning.SemesterRepo
type CourseRepo = learning.CourseRepo
type CourseOutlineRepo = learning.CourseOutlineRepo
type EnrollmentRepo = learning.EnrollmentRepo
type LectureRepo = learning.LectureRepo
type EContentRepo = learning.EContentRepo

type AssignmentRepo = coursework.AssignmentRepo
type SubmissionRepo = coursework.SubmissionRepo

type EventRepo = campus.EventRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return user.NewUserRepo(db, log) }
func NewTeacherRepo(db *gorm.DB, log *logger.Logger) TeacherRepo {
	return user.NewTeacherRepo(db, log)
}
func NewStudentRepo(db *gorm.DB, log *logger.Logger) StudentRepo {
	return user.NewStudentRepo(db, log)
}
func NewUserTokenRepo(db *gorm.DB, log *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, log)
}

func NewSemesterRepo(db *gorm.DB, log *logger.Logger) SemesterRepo {
	return learning.NewSemesterRepo(db, log)
}
func NewCourseRepo(db *gorm.DB, log *logger.Logger) CourseRepo {
	return learning.NewCourseRepo(db, log)
}
func NewCourseOutlineRepo(db *gorm.DB, log *logger.Logger) CourseOutlineRepo {
	return learning.NewCourseOutlineRepo(db, log)
}
func NewEnrollmentRepo(db *gorm.DB, log *logger.Logger) EnrollmentRepo {
	return learning.NewEnrollmentRepo(db, log)
}
func NewLectureRepo(db *gorm.DB, log *logger.Logger) LectureRepo {
	return learning.NewLectureRepo(db, log)
}
func NewEContentRepo(db *gorm.DB, log *logger.Logger) EContentRepo {
	return learning.NewEContentRepo(db, log)
}

func NewAssignmentRepo(db *gorm.DB, log *logger.Logger) AssignmentRepo {
	return coursework.NewAssignmentRepo(db, log)
}
func NewSubmissionRepo(db *gorm.DB, log *logger.Logger) SubmissionRepo {
	return coursework.NewSubmissionRepo(db, log)
}

func NewEventRepo(db *gorm.DB, log *logger.Logger) EventRepo { return campus.NewEventRepo(db, log) }
