package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

// EnrollmentView is an enrollment with course and teacher display fields.
type EnrollmentView struct {
	ID             uuid.UUID `json:"id"`
	StudentID      uuid.UUID `json:"student_id"`
	CourseID       uuid.UUID `json:"course_id"`
	EnrollmentDate time.Time `json:"enrollment_date"`
	CourseTitle    string    `json:"course_title"`
	TeacherID      uuid.UUID `json:"teacher_id"`
	TeacherName    string    `json:"teacher_name"`
	TeacherEmail   string    `json:"teacher_email"`
}

// RosterEntry is one enrolled student. RollNumber follows enrollment order, starting at 1.
type RosterEntry struct {
	RollNumber     int       `json:"roll_number"`
	StudentID      uuid.UUID `json:"student_id"`
	UserID         uuid.UUID `json:"user_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Program        string    `json:"program"`
	Semester       string    `json:"semester"`
	EnrollmentDate time.Time `json:"enrollment_date"`
}

type EnrollmentService interface {
	// Enroll registers a student in a course. Students enroll themselves (studentID is ignored
	// unless it names someone else); the owning teacher or an admin must pass studentID.
	Enroll(dbc dbctx.Context, courseID uuid.UUID, studentID *uuid.UUID) (*EnrollmentView, error)
	Unenroll(dbc dbctx.Context, courseID uuid.UUID, studentID *uuid.UUID) error
	// BulkEnrollAllStudentsOfTeacher enrolls every student of the course's teacher, skipping
	// existing rows, and returns how many rows were added.
	BulkEnrollAllStudentsOfTeacher(dbc dbctx.Context, courseID uuid.UUID, at time.Time) (int64, error)
	AssignStudentToTeacher(dbc dbctx.Context, studentID uuid.UUID, teacherID *uuid.UUID) (*types.Student, error)
	ListRoster(dbc dbctx.Context, courseID uuid.UUID) ([]*RosterEntry, error)
}

type enrollmentService struct {
	db             *gorm.DB
	log            *logger.Logger
	access         accessResolver
	courseRepo     repos.CourseRepo
	teacherRepo    repos.TeacherRepo
	studentRepo    repos.StudentRepo
	enrollmentRepo repos.EnrollmentRepo
	notifier       CourseNotifier
	now            func() time.Time
}

func NewEnrollmentService(
	db *gorm.DB,
	log *logger.Logger,
	courseRepo repos.CourseRepo,
	teacherRepo repos.TeacherRepo,
	studentRepo repos.StudentRepo,
	enrollmentRepo repos.EnrollmentRepo,
	notifier CourseNotifier,
) EnrollmentService {
	return &enrollmentService{
		db:  db,
		log: log.With("service", "EnrollmentService"),
		access: accessResolver{
			teacherRepo:    teacherRepo,
			studentRepo:    studentRepo,
			courseRepo:     courseRepo,
			enrollmentRepo: enrollmentRepo,
		},
		courseRepo:     courseRepo,
		teacherRepo:    teacherRepo,
		studentRepo:    studentRepo,
		enrollmentRepo: enrollmentRepo,
		notifier:       notifierOrNop(notifier),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (es *enrollmentService) Enroll(dbc dbctx.Context, courseID uuid.UUID, studentID *uuid.UUID) (*EnrollmentView, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}

	var out *EnrollmentView
	var created *types.StudentCourse
	if err := es.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		course, student, err := es.resolveTarget(inner, rd, courseID, studentID)
		if err != nil {
			return err
		}
		if !student.AssignedTo(course.TeacherID) {
			return apierr.Forbidden("teacher_mismatch", "student is not assigned to this course's teacher")
		}
		exists, err := es.enrollmentRepo.Exists(inner, student.ID, course.ID)
		if err != nil {
			return apierr.FromDB(err, "enrollment")
		}
		if exists {
			return apierr.Conflict("already_enrolled", "student is already enrolled in this course")
		}
		row, err := es.enrollmentRepo.Create(inner, &types.StudentCourse{
			StudentID:      student.ID,
			CourseID:       course.ID,
			EnrollmentDate: es.now(),
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apierr.Conflict("already_enrolled", "student is already enrolled in this course")
		}
		if err != nil {
			return apierr.FromDB(err, "enrollment")
		}
		teacher, err := es.teacherRepo.GetByID(inner, course.TeacherID)
		if err != nil {
			return apierr.FromDB(err, "teacher")
		}
		created = row
		out = enrollmentView(row, course, teacher)
		return nil
	}); err != nil {
		return nil, err
	}

	logger.FromContext(dbc.Ctx, es.log).Info("Student enrolled", "course_id", courseID, "student_id", out.StudentID)
	es.notifier.StudentEnrolled(dbc.Ctx, created)
	return out, nil
}

func (es *enrollmentService) Unenroll(dbc dbctx.Context, courseID uuid.UUID, studentID *uuid.UUID) error {
	rd, err := requestCaller(dbc)
	if err != nil {
		return err
	}
	var removed uuid.UUID
	if err := es.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		course, student, err := es.resolveTarget(inner, rd, courseID, studentID)
		if err != nil {
			return err
		}
		n, err := es.enrollmentRepo.Delete(inner, student.ID, course.ID)
		if err != nil {
			return apierr.FromDB(err, "enrollment")
		}
		if n == 0 {
			return apierr.NotFound("enrollment_not_found", "student is not enrolled in this course")
		}
		removed = student.ID
		return nil
	}); err != nil {
		return err
	}
	es.notifier.StudentUnenrolled(dbc.Ctx, removed, courseID)
	return nil
}

// resolveTarget loads the course and the student the caller acts on.
func (es *enrollmentService) resolveTarget(dbc dbctx.Context, rd *ctxutil.RequestData, courseID uuid.UUID, studentID *uuid.UUID) (*types.Course, *types.Student, error) {
	switch types.Role(rd.Role) {
	case types.RoleStudent:
		course, err := es.access.course(dbc, courseID)
		if err != nil {
			return nil, nil, err
		}
		self, err := es.access.studentFor(dbc, rd.UserID)
		if err != nil {
			return nil, nil, err
		}
		if studentID != nil && *studentID != uuid.Nil && *studentID != self.ID {
			return nil, nil, apierr.Forbidden("forbidden", "students may only manage their own enrollment")
		}
		return course, self, nil
	case types.RoleTeacher, types.RoleAdmin:
		var course *types.Course
		if types.Role(rd.Role) == types.RoleTeacher {
			ca, err := es.access.ownedCourse(dbc, rd, courseID)
			if err != nil {
				return nil, nil, err
			}
			course = ca.Course
		} else {
			c, err := es.access.course(dbc, courseID)
			if err != nil {
				return nil, nil, err
			}
			course = c
		}
		if studentID == nil || *studentID == uuid.Nil {
			return nil, nil, apierr.BadRequest("student_id_required", "student_id is required")
		}
		student, err := es.studentRepo.GetByID(dbc, *studentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apierr.NotFound("student_not_found", "student profile not found")
		}
		if err != nil {
			return nil, nil, apierr.FromDB(err, "student")
		}
		return course, student, nil
	default:
		return nil, nil, apierr.Forbidden("forbidden", "role "+rd.Role+" may not manage enrollments")
	}
}

func (es *enrollmentService) BulkEnrollAllStudentsOfTeacher(dbc dbctx.Context, courseID uuid.UUID, at time.Time) (int64, error) {
	course, err := es.access.course(dbc, courseID)
	if err != nil {
		return 0, err
	}
	return bulkEnrollTeacherStudents(dbc, es.studentRepo, es.enrollmentRepo, course, at)
}

func (es *enrollmentService) AssignStudentToTeacher(dbc dbctx.Context, studentID uuid.UUID, teacherID *uuid.UUID) (*types.Student, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	if err := requireRole(rd, types.RoleAdmin, types.RoleTeacher); err != nil {
		return nil, err
	}

	var out *types.Student
	var added int64
	var dropped []uuid.UUID
	if err := es.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}

		var teacher *types.Teacher
		if types.Role(rd.Role) == types.RoleTeacher {
			self, err := es.access.teacherFor(inner, rd.UserID)
			if err != nil {
				return err
			}
			if teacherID != nil && *teacherID != uuid.Nil && *teacherID != self.ID {
				return apierr.Forbidden("forbidden", "teachers may only claim students for themselves")
			}
			teacher = self
		} else {
			if teacherID == nil || *teacherID == uuid.Nil {
				return apierr.BadRequest("teacher_id_required", "teacher_id is required")
			}
			t, err := es.teacherRepo.GetByID(inner, *teacherID)
			if err != nil {
				return apierr.FromDB(err, "teacher")
			}
			teacher = t
		}

		student, err := es.studentRepo.GetByID(inner, studentID)
		if err != nil {
			return apierr.FromDB(err, "student")
		}
		if types.Role(rd.Role) == types.RoleTeacher && student.TeacherID != nil && *student.TeacherID != teacher.ID {
			return apierr.Forbidden("student_already_assigned", "student is assigned to another teacher")
		}
		if err := es.studentRepo.AssignTeacher(inner, student.ID, teacher.ID, teacher.Email); err != nil {
			return apierr.FromDB(err, "student")
		}
		dropped, err = es.enrollmentRepo.DeleteOutsideTeacher(inner, student.ID, teacher.ID)
		if err != nil {
			return apierr.FromDB(err, "enrollment")
		}
		n, err := enrollInTeacherCourses(inner, es.courseRepo, es.enrollmentRepo, student.ID, teacher.ID, es.now())
		if err != nil {
			return err
		}
		added = n
		reloaded, err := es.studentRepo.GetByID(inner, student.ID)
		if err != nil {
			return apierr.FromDB(err, "student")
		}
		out = reloaded
		return nil
	}); err != nil {
		return nil, err
	}
	for _, courseID := range dropped {
		es.notifier.StudentUnenrolled(dbc.Ctx, out.ID, courseID)
	}
	logger.FromContext(dbc.Ctx, es.log).Info("Student assigned to teacher",
		"student_id", out.ID, "teacher_id", out.TeacherID,
		"enrollments_added", added, "enrollments_removed", len(dropped))
	return out, nil
}

func (es *enrollmentService) ListRoster(dbc dbctx.Context, courseID uuid.UUID) ([]*RosterEntry, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	if _, err := es.access.ownedCourse(dbc, rd, courseID); err != nil {
		return nil, err
	}
	rows, err := es.enrollmentRepo.ListByCourseID(dbc, courseID)
	if err != nil {
		return nil, apierr.FromDB(err, "enrollment")
	}
	return rosterFrom(rows), nil
}

func rosterFrom(rows []*types.StudentCourse) []*RosterEntry {
	out := make([]*RosterEntry, 0, len(rows))
	for i, row := range rows {
		entry := &RosterEntry{
			RollNumber:     i + 1,
			StudentID:      row.StudentID,
			EnrollmentDate: row.EnrollmentDate,
		}
		if s := row.Student; s != nil {
			entry.UserID = s.UserID
			entry.Program = s.Program
			entry.Semester = s.Semester
			if s.User != nil {
				entry.Name = s.User.Name
				entry.Email = s.User.Email
			}
		}
		out = append(out, entry)
	}
	return out
}

func enrollmentView(row *types.StudentCourse, course *types.Course, teacher *types.Teacher) *EnrollmentView {
	v := &EnrollmentView{
		ID:             row.ID,
		StudentID:      row.StudentID,
		CourseID:       row.CourseID,
		EnrollmentDate: row.EnrollmentDate,
	}
	if course != nil {
		v.CourseTitle = course.Title
		v.TeacherID = course.TeacherID
	}
	if teacher != nil {
		v.TeacherEmail = teacher.Email
		if teacher.User != nil {
			v.TeacherName = teacher.User.Name
		}
	}
	return v
}

// bulkEnrollTeacherStudents enrolls every student of course's teacher, skipping existing rows.
func bulkEnrollTeacherStudents(dbc dbctx.Context, studentRepo repos.StudentRepo, enrollmentRepo repos.EnrollmentRepo, course *types.Course, at time.Time) (int64, error) {
	students, err := studentRepo.ListByTeacherID(dbc, course.TeacherID)
	if err != nil {
		return 0, apierr.FromDB(err, "student")
	}
	if len(students) == 0 {
		return 0, nil
	}
	rows := make([]*types.StudentCourse, 0, len(students))
	for _, s := range students {
		rows = append(rows, &types.StudentCourse{StudentID: s.ID, CourseID: course.ID, EnrollmentDate: at})
	}
	n, err := enrollmentRepo.CreateSkipExisting(dbc, rows)
	if err != nil {
		return 0, apierr.FromDB(err, "enrollment")
	}
	return n, nil
}

// enrollInTeacherCourses enrolls one student in every course of teacherID, skipping existing rows.
func enrollInTeacherCourses(dbc dbctx.Context, courseRepo repos.CourseRepo, enrollmentRepo repos.EnrollmentRepo, studentID, teacherID uuid.UUID, at time.Time) (int64, error) {
	courseIDs, err := courseRepo.ListIDsByTeacherID(dbc, teacherID)
	if err != nil {
		return 0, apierr.FromDB(err, "course")
	}
	if len(courseIDs) == 0 {
		return 0, nil
	}
	rows := make([]*types.StudentCourse, 0, len(courseIDs))
	for _, id := range courseIDs {
		rows = append(rows, &types.StudentCourse{StudentID: studentID, CourseID: id, EnrollmentDate: at})
	}
	n, err := enrollmentRepo.CreateSkipExisting(dbc, rows)
	if err != nil {
		return 0, apierr.FromDB(err, "enrollment")
	}
	return n, nil
}
