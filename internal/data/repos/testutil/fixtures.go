package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursehub-backend/internal/domain"
)

func SeedUser(tb testing.TB, db *gorm.DB, email string, role types.Role) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Name:     email,
		Email:    email,
		Password: "pw",
		Role:     role,
	}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedAdmin(tb testing.TB, db *gorm.DB, email string) *types.User {
	tb.Helper()
	return SeedUser(tb, db, email, types.RoleAdmin)
}

func SeedTeacher(tb testing.TB, db *gorm.DB, email string) (*types.User, *types.Teacher) {
	tb.Helper()
	u := SeedUser(tb, db, email, types.RoleTeacher)
	t := &types.Teacher{ID: uuid.New(), UserID: u.ID, Email: email}
	if err := db.Omit("User").Create(t).Error; err != nil {
		tb.Fatalf("seed teacher: %v", err)
	}
	t.User = u
	return u, t
}

// SeedStudent creates a student assigned to teacher, or unassigned when teacher is nil.
func SeedStudent(tb testing.TB, db *gorm.DB, email string, teacher *types.Teacher) (*types.User, *types.Student) {
	tb.Helper()
	u := SeedUser(tb, db, email, types.RoleStudent)
	s := &types.Student{ID: uuid.New(), UserID: u.ID, Program: "BSc", Semester: "1"}
	if teacher != nil {
		s.TeacherID = &teacher.ID
		s.TeacherEmail = teacher.Email
	}
	if err := db.Omit("User", "Teacher").Create(s).Error; err != nil {
		tb.Fatalf("seed student: %v", err)
	}
	s.User = u
	return u, s
}

func SeedSemester(tb testing.TB, db *gorm.DB) *types.Semester {
	tb.Helper()
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	s := &types.Semester{ID: uuid.New(), Name: "Fall 2026", StartDate: start, EndDate: start.AddDate(0, 4, 0)}
	if err := db.Create(s).Error; err != nil {
		tb.Fatalf("seed semester: %v", err)
	}
	return s
}

func SeedCourse(tb testing.TB, db *gorm.DB, teacher *types.Teacher, semester *types.Semester) *types.Course {
	tb.Helper()
	c := &types.Course{ID: uuid.New(), Title: "course", AboutCourse: "about", SemesterID: semester.ID, TeacherID: teacher.ID}
	if err := db.Omit("Semester", "Teacher").Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedEnrollment(tb testing.TB, db *gorm.DB, student *types.Student, course *types.Course, at time.Time) *types.StudentCourse {
	tb.Helper()
	sc := &types.StudentCourse{ID: uuid.New(), StudentID: student.ID, CourseID: course.ID, EnrollmentDate: at.UTC()}
	if err := db.Omit("Student", "Course").Create(sc).Error; err != nil {
		tb.Fatalf("seed enrollment: %v", err)
	}
	return sc
}

func SeedLecture(tb testing.TB, db *gorm.DB, course *types.Course, reviewed bool, deadline *time.Time) *types.Lecture {
	tb.Helper()
	l := &types.Lecture{
		ID:             uuid.New(),
		Title:          "lecture",
		Content:        "content",
		CourseID:       course.ID,
		IsReviewed:     reviewed,
		ReviewDeadline: deadline,
	}
	if err := db.Omit("Course").Create(l).Error; err != nil {
		tb.Fatalf("seed lecture: %v", err)
	}
	return l
}

func SeedAssignment(tb testing.TB, db *gorm.DB, course *types.Course, due time.Time, totalPoints float64) *types.Assignment {
	tb.Helper()
	a := &types.Assignment{
		ID:          uuid.New(),
		Title:       "assignment",
		Description: "desc",
		CourseID:    course.ID,
		DueDate:     due.UTC(),
		TotalPoints: totalPoints,
		IsActive:    true,
	}
	if err := db.Omit("Course", "Attachments").Create(a).Error; err != nil {
		tb.Fatalf("seed assignment: %v", err)
	}
	return a
}
