package services

import (
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
)

// CourseDetail is the assembled course document. Roster fields are only set for the owning
// teacher; Enrollment only for an enrolled student.
type CourseDetail struct {
	Course       *types.Course             `json:"course"`
	Semester     *types.Semester           `json:"semester"`
	CreditPoints *types.CourseCreditPoints `json:"credit_points"`
	Outcomes     []*types.CourseOutcome    `json:"outcomes"`
	WeeklyPlan   []*types.CourseWeeklyPlan `json:"weekly_plan"`
	Syllabus     *types.CourseSyllabus     `json:"syllabus"`
	Schedule     []*types.CourseSchedule   `json:"schedule"`
	Attendance   map[string]any            `json:"attendance"`
	Lectures     []*types.Lecture          `json:"lectures"`

	Students      []*RosterEntry `json:"students,omitempty"`
	TotalStudents *int           `json:"total_students,omitempty"`
	TotalLectures int            `json:"total_lectures"`

	Enrollment *EnrollmentView `json:"enrollment,omitempty"`
}

func (cs *courseService) Get(dbc dbctx.Context, courseID uuid.UUID) (*CourseDetail, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	ca, err := cs.access.readableCourse(dbc, rd, courseID)
	if err != nil {
		return nil, err
	}
	asStudent := ca.Student != nil

	// Lectures go first: the lazy review pass writes before the fan-out reads.
	lectures, err := listLecturesReviewed(dbc, cs.lectureRepo, courseID, asStudent, cs.now())
	if err != nil {
		return nil, err
	}

	out := &CourseDetail{
		Course:        ca.Course,
		Lectures:      lectures,
		TotalLectures: len(lectures),
	}
	var attendance *types.CourseAttendance
	var enrollments []*types.StudentCourse
	var teacher *types.Teacher

	g, gctx := errgroup.WithContext(dbc.Ctx)
	rc := dbctx.Context{Ctx: gctx}
	g.Go(func() error {
		s, err := cs.semesterRepo.GetByID(rc, ca.Course.SemesterID)
		if err != nil {
			return apierr.FromDB(err, "semester")
		}
		out.Semester = s
		return nil
	})
	g.Go(func() error {
		cp, err := cs.outlineRepo.GetCreditPoints(rc, courseID)
		out.CreditPoints = cp
		return apierr.FromDB(err, "credit_points")
	})
	g.Go(func() error {
		rows, err := cs.outlineRepo.ListOutcomes(rc, courseID)
		out.Outcomes = rows
		return apierr.FromDB(err, "outcome")
	})
	g.Go(func() error {
		rows, err := cs.outlineRepo.ListWeeklyPlans(rc, courseID)
		out.WeeklyPlan = rows
		return apierr.FromDB(err, "weekly_plan")
	})
	g.Go(func() error {
		s, err := cs.outlineRepo.GetSyllabus(rc, courseID)
		out.Syllabus = s
		return apierr.FromDB(err, "syllabus")
	})
	g.Go(func() error {
		rows, err := cs.outlineRepo.ListSchedules(rc, courseID)
		out.Schedule = rows
		return apierr.FromDB(err, "schedule")
	})
	g.Go(func() error {
		a, err := cs.outlineRepo.GetAttendance(rc, courseID)
		attendance = a
		return apierr.FromDB(err, "attendance")
	})
	if asStudent {
		g.Go(func() error {
			t, err := cs.teacherRepo.GetByID(rc, ca.Course.TeacherID)
			teacher = t
			return apierr.FromDB(err, "teacher")
		})
		g.Go(func() error {
			row, err := cs.enrollmentRepo.Get(rc, ca.Student.ID, courseID)
			if err != nil {
				return apierr.FromDB(err, "enrollment")
			}
			enrollments = []*types.StudentCourse{row}
			return nil
		})
	} else {
		g.Go(func() error {
			rows, err := cs.enrollmentRepo.ListByCourseID(rc, courseID)
			enrollments = rows
			return apierr.FromDB(err, "enrollment")
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.Attendance = map[string]any{}
	if attendance != nil && attendance.Sessions != nil {
		out.Attendance = attendance.Sessions
	}
	if asStudent {
		out.Attendance = attendanceFor(out.Attendance, ca.Student.ID)
		out.Enrollment = enrollmentView(enrollments[0], ca.Course, teacher)
	} else {
		out.Students = rosterFrom(enrollments)
		total := len(out.Students)
		out.TotalStudents = &total
	}
	return out, nil
}
