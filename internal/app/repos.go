package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type Repos struct {
	User       repos.UserRepo
	Teacher    repos.TeacherRepo
	Student    repos.StudentRepo
	UserToken  repos.UserTokenRepo
	Semester   repos.SemesterRepo
	Course     repos.CourseRepo
	Outline    repos.CourseOutlineRepo
	Enrollment repos.EnrollmentRepo
	Lecture    repos.LectureRepo
	EContent   repos.EContentRepo
	Assignment repos.AssignmentRepo
	Submission repos.SubmissionRepo
	Event      repos.EventRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:       repos.NewUserRepo(db, log),
		Teacher:    repos.NewTeacherRepo(db, log),
		Student:    repos.NewStudentRepo(db, log),
		UserToken:  repos.NewUserTokenRepo(db, log),
		Semester:   repos.NewSemesterRepo(db, log),
		Course:     repos.NewCourseRepo(db, log),
		Outline:    repos.NewCourseOutlineRepo(db, log),
		Enrollment: repos.NewEnrollmentRepo(db, log),
		Lecture:    repos.NewLectureRepo(db, log),
		EContent:   repos.NewEContentRepo(db, log),
		Assignment: repos.NewAssignmentRepo(db, log),
		Submission: repos.NewSubmissionRepo(db, log),
		Event:      repos.NewEventRepo(db, log),
	}
}
