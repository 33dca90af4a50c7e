package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type EnrollmentRepo interface {
	Create(dbc dbctx.Context, row *types.StudentCourse) (*types.StudentCourse, error)
	// CreateSkipExisting inserts rows, ignoring (student_id, course_id) pairs that already exist.
	CreateSkipExisting(dbc dbctx.Context, rows []*types.StudentCourse) (int64, error)
	Get(dbc dbctx.Context, studentID, courseID uuid.UUID) (*types.StudentCourse, error)
	Exists(dbc dbctx.Context, studentID, courseID uuid.UUID) (bool, error)
	Delete(dbc dbctx.Context, studentID, courseID uuid.UUID) (int64, error)
	// DeleteOutsideTeacher removes the student's enrollments in courses not taught by teacherID
	// and returns the affected course ids.
	DeleteOutsideTeacher(dbc dbctx.Context, studentID, teacherID uuid.UUID) ([]uuid.UUID, error)
	ListByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]*types.StudentCourse, error)
	CountByCourseID(dbc dbctx.Context, courseID uuid.UUID) (int64, error)
	ListStudentIDsByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]uuid.UUID, error)
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	repoLog := baseLog.With("repo", "EnrollmentRepo")
	return &enrollmentRepo{db: db, log: repoLog}
}

func (r *enrollmentRepo) Create(dbc dbctx.Context, row *types.StudentCourse) (*types.StudentCourse, error) {
	if err := dbc.DB(r.db).Omit("Student", "Course").Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *enrollmentRepo) CreateSkipExisting(dbc dbctx.Context, rows []*types.StudentCourse) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.EnrollmentDate.IsZero() {
			row.EnrollmentDate = now
		}
	}
	res := dbc.DB(r.db).
		Omit("Student", "Course").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "course_id"}},
			DoNothing: true,
		}).
		Create(&rows)
	return res.RowsAffected, res.Error
}

func (r *enrollmentRepo) Get(dbc dbctx.Context, studentID, courseID uuid.UUID) (*types.StudentCourse, error) {
	var row types.StudentCourse
	if err := dbc.DB(r.db).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *enrollmentRepo) Exists(dbc dbctx.Context, studentID, courseID uuid.UUID) (bool, error) {
	var count int64
	if err := dbc.DB(r.db).
		Model(&types.StudentCourse{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *enrollmentRepo) Delete(dbc dbctx.Context, studentID, courseID uuid.UUID) (int64, error) {
	res := dbc.DB(r.db).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Delete(&types.StudentCourse{})
	return res.RowsAffected, res.Error
}

func (r *enrollmentRepo) DeleteOutsideTeacher(dbc dbctx.Context, studentID, teacherID uuid.UUID) ([]uuid.UUID, error) {
	tx := dbc.DB(r.db)
	owned := tx.Session(&gorm.Session{NewDB: true}).
		Model(&types.Course{}).
		Select("id").
		Where("teacher_id = ?", teacherID)

	var courseIDs []uuid.UUID
	if err := tx.Model(&types.StudentCourse{}).
		Where("student_id = ? AND course_id NOT IN (?)", studentID, owned).
		Pluck("course_id", &courseIDs).Error; err != nil {
		return nil, err
	}
	if len(courseIDs) == 0 {
		return courseIDs, nil
	}
	if err := tx.Session(&gorm.Session{NewDB: true}).
		Where("student_id = ? AND course_id IN ?", studentID, courseIDs).
		Delete(&types.StudentCourse{}).Error; err != nil {
		return nil, err
	}
	return courseIDs, nil
}

// ListByCourseID returns enrollments in enrollment order with the student profile and user loaded.
func (r *enrollmentRepo) ListByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]*types.StudentCourse, error) {
	var results []*types.StudentCourse
	if err := dbc.DB(r.db).
		Preload("Student").
		Preload("Student.User").
		Where("course_id = ?", courseID).
		Order("enrollment_date ASC, created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *enrollmentRepo) CountByCourseID(dbc dbctx.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	if err := dbc.DB(r.db).
		Model(&types.StudentCourse{}).
		Where("course_id = ?", courseID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *enrollmentRepo) ListStudentIDsByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := dbc.DB(r.db).
		Model(&types.StudentCourse{}).
		Where("course_id = ?", courseID).
		Pluck("student_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
