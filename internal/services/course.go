package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type CourseInput struct {
	Title       string
	AboutCourse string
	SemesterID  uuid.UUID
	Outline     CourseOutline
	Attendance  AttendanceMarks
}

// CourseUpdate changes only the non-nil fields; outline sections follow CourseOutline rules.
type CourseUpdate struct {
	Title       *string
	AboutCourse *string
	SemesterID  *uuid.UUID
	Outline     CourseOutline
}

type CourseService interface {
	// Create writes the course with its outline and enrolls every current student of the teacher.
	Create(dbc dbctx.Context, in CourseInput) (*CourseDetail, error)
	Update(dbc dbctx.Context, courseID uuid.UUID, in CourseUpdate) (*CourseDetail, error)
	Delete(dbc dbctx.Context, courseID uuid.UUID) error
	ListMine(dbc dbctx.Context) ([]*types.Course, error)
	Get(dbc dbctx.Context, courseID uuid.UUID) (*CourseDetail, error)
	UpdateAttendance(dbc dbctx.Context, courseID uuid.UUID, marks AttendanceMarks) (map[string]any, error)
}

type courseService struct {
	db             *gorm.DB
	log            *logger.Logger
	access         accessResolver
	semesterRepo   repos.SemesterRepo
	courseRepo     repos.CourseRepo
	outlineRepo    repos.CourseOutlineRepo
	teacherRepo    repos.TeacherRepo
	studentRepo    repos.StudentRepo
	enrollmentRepo repos.EnrollmentRepo
	lectureRepo    repos.LectureRepo
	econtentRepo   repos.EContentRepo
	assignmentRepo repos.AssignmentRepo
	submissionRepo repos.SubmissionRepo
	media          *MediaStore
	now            func() time.Time
}

func NewCourseService(
	db *gorm.DB,
	log *logger.Logger,
	semesterRepo repos.SemesterRepo,
	courseRepo repos.CourseRepo,
	outlineRepo repos.CourseOutlineRepo,
	teacherRepo repos.TeacherRepo,
	studentRepo repos.StudentRepo,
	enrollmentRepo repos.EnrollmentRepo,
	lectureRepo repos.LectureRepo,
	econtentRepo repos.EContentRepo,
	assignmentRepo repos.AssignmentRepo,
	submissionRepo repos.SubmissionRepo,
	media *MediaStore,
) CourseService {
	return &courseService{
		db:  db,
		log: log.With("service", "CourseService"),
		access: accessResolver{
			teacherRepo:    teacherRepo,
			studentRepo:    studentRepo,
			courseRepo:     courseRepo,
			enrollmentRepo: enrollmentRepo,
		},
		semesterRepo:   semesterRepo,
		courseRepo:     courseRepo,
		outlineRepo:    outlineRepo,
		teacherRepo:    teacherRepo,
		studentRepo:    studentRepo,
		enrollmentRepo: enrollmentRepo,
		lectureRepo:    lectureRepo,
		econtentRepo:   econtentRepo,
		assignmentRepo: assignmentRepo,
		submissionRepo: submissionRepo,
		media:          media,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (cs *courseService) Create(dbc dbctx.Context, in CourseInput) (*CourseDetail, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	if err := requireRole(rd, types.RoleTeacher); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.BadRequest("title_required", "title is required")
	}
	if in.SemesterID == uuid.Nil {
		return nil, apierr.BadRequest("semester_required", "semester_id is required")
	}
	if err := in.Outline.validate(); err != nil {
		return nil, err
	}

	now := cs.now()
	var course *types.Course
	var enrolled int64
	err = cs.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		teacher, err := cs.access.teacherFor(inner, rd.UserID)
		if err != nil {
			return err
		}
		if _, err := cs.semesterRepo.GetByID(inner, in.SemesterID); err != nil {
			return apierr.FromDB(err, "semester")
		}
		course, err = cs.courseRepo.Create(inner, &types.Course{
			Title:       title,
			AboutCourse: in.AboutCourse,
			SemesterID:  in.SemesterID,
			TeacherID:   teacher.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return apierr.FromDB(err, "course")
		}
		if err := in.Outline.write(inner, cs.outlineRepo, course.ID); err != nil {
			return err
		}
		enrolled, err = bulkEnrollTeacherStudents(inner, cs.studentRepo, cs.enrollmentRepo, course, course.CreatedAt)
		if err != nil {
			return err
		}
		if len(in.Attendance) > 0 {
			_, err = cs.writeAttendance(inner, course.ID, in.Attendance)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(dbc.Ctx, cs.log).Info("Course created",
		"course_id", course.ID,
		"teacher_id", course.TeacherID,
		"auto_enrolled", enrolled,
	)
	return cs.Get(dbc, course.ID)
}

func (cs *courseService) Update(dbc dbctx.Context, courseID uuid.UUID, in CourseUpdate) (*CourseDetail, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	if err := in.Outline.validate(); err != nil {
		return nil, err
	}
	err = cs.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		if _, err := cs.access.ownedCourse(inner, rd, courseID); err != nil {
			return err
		}
		updates := map[string]any{}
		if in.Title != nil {
			title := strings.TrimSpace(*in.Title)
			if title == "" {
				return apierr.BadRequest("title_required", "title cannot be blank")
			}
			updates["title"] = title
		}
		if in.AboutCourse != nil {
			updates["about_course"] = *in.AboutCourse
		}
		if in.SemesterID != nil {
			if _, err := cs.semesterRepo.GetByID(inner, *in.SemesterID); err != nil {
				return apierr.FromDB(err, "semester")
			}
			updates["semester_id"] = *in.SemesterID
		}
		updates["updated_at"] = cs.now()
		if err := cs.courseRepo.UpdateFields(inner, courseID, updates); err != nil {
			return apierr.FromDB(err, "course")
		}
		return in.Outline.write(inner, cs.outlineRepo, courseID)
	})
	if err != nil {
		return nil, err
	}
	return cs.Get(dbc, courseID)
}

func (cs *courseService) Delete(dbc dbctx.Context, courseID uuid.UUID) error {
	rd, err := requestCaller(dbc)
	if err != nil {
		return err
	}
	if err := requireRole(rd, types.RoleTeacher, types.RoleAdmin); err != nil {
		return err
	}

	var keys []string
	err = cs.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		if types.Role(rd.Role) == types.RoleAdmin {
			if _, err := cs.access.course(inner, courseID); err != nil {
				return err
			}
		} else if _, err := cs.access.ownedCourse(inner, rd, courseID); err != nil {
			return err
		}

		listers := []func(dbctx.Context, uuid.UUID) ([]string, error){
			cs.lectureRepo.ListVideoKeysByCourseID,
			cs.econtentRepo.ListFileKeysByCourseID,
			cs.assignmentRepo.ListAttachmentKeysByCourseID,
			cs.submissionRepo.ListFileKeysByCourseID,
		}
		for _, list := range listers {
			k, err := list(inner, courseID)
			if err != nil {
				return apierr.FromDB(err, "course")
			}
			keys = append(keys, k...)
		}
		if _, err := cs.courseRepo.DeleteByID(inner, courseID); err != nil {
			return apierr.FromDB(err, "course")
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.FromContext(dbc.Ctx, cs.log).Info("Course deleted", "course_id", courseID, "blobs", len(keys))
	cs.media.removeBestEffort(dbc.Ctx, keys...)
	return nil
}

func (cs *courseService) ListMine(dbc dbctx.Context) ([]*types.Course, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	var out []*types.Course
	switch types.Role(rd.Role) {
	case types.RoleTeacher:
		t, err := cs.access.teacherFor(dbc, rd.UserID)
		if err != nil {
			return nil, err
		}
		out, err = cs.courseRepo.ListByTeacherID(dbc, t.ID)
		if err != nil {
			return nil, apierr.FromDB(err, "course")
		}
	case types.RoleStudent:
		s, err := cs.access.studentFor(dbc, rd.UserID)
		if err != nil {
			return nil, err
		}
		out, err = cs.courseRepo.ListByStudentID(dbc, s.ID)
		if err != nil {
			return nil, apierr.FromDB(err, "course")
		}
	default:
		return nil, apierr.Forbidden("forbidden", "role "+rd.Role+" has no courses")
	}
	if out == nil {
		out = []*types.Course{}
	}
	return out, nil
}

func (cs *courseService) UpdateAttendance(dbc dbctx.Context, courseID uuid.UUID, marks AttendanceMarks) (map[string]any, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	if len(marks) == 0 {
		return nil, apierr.BadRequest("attendance_required", "no attendance marks given")
	}
	var out map[string]any
	err = cs.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		if _, err := cs.access.ownedCourse(inner, rd, courseID); err != nil {
			return err
		}
		sessions, err := cs.writeAttendance(inner, courseID, marks)
		out = sessions
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// writeAttendance validates marks against the course roster and merges them into the
// locked attendance row.
func (cs *courseService) writeAttendance(dbc dbctx.Context, courseID uuid.UUID, marks AttendanceMarks) (map[string]any, error) {
	enrolled, err := cs.enrollmentRepo.ListStudentIDsByCourseID(dbc, courseID)
	if err != nil {
		return nil, apierr.FromDB(err, "enrollment")
	}
	allowed := make(map[uuid.UUID]bool, len(enrolled))
	for _, id := range enrolled {
		allowed[id] = true
	}
	for session, byStudent := range marks {
		if strings.TrimSpace(session) == "" {
			return nil, apierr.BadRequest("invalid_session", "attendance session key is blank")
		}
		for studentID, status := range byStudent {
			id, err := uuid.Parse(studentID)
			if err != nil {
				return nil, apierr.BadRequest("invalid_student_id", "attendance student id "+studentID+" is not a uuid")
			}
			if !allowed[id] {
				return nil, apierr.BadRequest("student_not_enrolled", "student "+studentID+" is not enrolled in this course")
			}
			if !attendanceStatuses[status] {
				return nil, apierr.BadRequest("invalid_attendance_status", "unknown attendance status "+status)
			}
		}
	}
	att, err := cs.outlineRepo.LockAttendance(dbc, courseID)
	if err != nil {
		return nil, apierr.FromDB(err, "attendance")
	}
	att.Sessions = mergeAttendance(att.Sessions, marks)
	if err := cs.outlineRepo.SaveAttendance(dbc, att); err != nil {
		return nil, apierr.FromDB(err, "attendance")
	}
	return att.Sessions, nil
}
