package domain

import (
	"time"

	"github.com/yungbote/coursehub-backend/internal/domain/auth"
	"github.com/yungbote/coursehub-backend/internal/domain/campus"
	"github.com/yungbote/coursehub-backend/internal/domain/coursework"
	"github.com/yungbote/coursehub-backend/internal/domain/learning"
	"github.com/yungbote/coursehub-backend/internal/domain/user"
)

type Role = user.Role

const (
	RoleAdmin   = user.RoleAdmin
	RoleTeacher = user.RoleTeacher
	RoleStudent = user.RoleStudent
)

type User = user.User
type Teacher = user.Teacher
type Student = user.Student
type UserToken = auth.UserToken

type Semester = learning.Semester
type Course = learning.Course
type CourseCreditPoints = learning.CourseCreditPoints
type CourseOutcome = learning.CourseOutcome
type CourseWeeklyPlan = learning.CourseWeeklyPlan
type CourseSyllabus = learning.CourseSyllabus
type SyllabusUnit = learning.SyllabusUnit
type CourseSchedule = learning.CourseSchedule
type CourseAttendance = learning.CourseAttendance
type StudentCourse = learning.StudentCourse
type Lecture = learning.Lecture

type EContent = learning.EContent
type EContentModule = learning.EContentModule
type EContentFile = learning.EContentFile
type EContentFileType = learning.EContentFileType

const (
	EContentFilePDF   = learning.EContentFilePDF
	EContentFilePPT   = learning.EContentFilePPT
	EContentFilePPTX  = learning.EContentFilePPTX
	EContentFileOther = learning.EContentFileOther
)

type Assignment = coursework.Assignment
type AssignmentAttachment = coursework.AssignmentAttachment
type Submission = coursework.Submission
type SubmissionStatus = coursework.SubmissionStatus

const (
	SubmissionSubmitted = coursework.SubmissionSubmitted
	SubmissionGraded    = coursework.SubmissionGraded
	SubmissionReturned  = coursework.SubmissionReturned
)

type Event = campus.Event

// Models lists every persisted model in dependency order.
func Models() []any {
	return []any{
		&User{},
		&UserToken{},
		&Teacher{},
		&Student{},

		&Semester{},
		&Course{},
		&CourseCreditPoints{},
		&CourseOutcome{},
		&CourseWeeklyPlan{},
		&CourseSyllabus{},
		&CourseSchedule{},
		&CourseAttendance{},
		&StudentCourse{},
		&Lecture{},
		&EContent{},
		&EContentModule{},
		&EContentFile{},

		&Assignment{},
		&AssignmentAttachment{},
		&Submission{},

		&Event{},
	}
}

// SubmissionLateAt reports whether a submission made at t misses due.
func SubmissionLateAt(t, due time.Time) bool { return coursework.LateAt(t, due) }

// EContentFileTypeFor infers an e-content file type from its name.
func EContentFileTypeFor(name string) EContentFileType { return learning.EContentFileTypeFor(name) }
