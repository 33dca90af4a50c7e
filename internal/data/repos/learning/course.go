package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type CourseRepo interface {
	Create(dbc dbctx.Context, course *types.Course) (*types.Course, error)
	GetByID(dbc dbctx.Context, courseID uuid.UUID) (*types.Course, error)
	ListByTeacherID(dbc dbctx.Context, teacherID uuid.UUID) ([]*types.Course, error)
	ListByStudentID(dbc dbctx.Context, studentID uuid.UUID) ([]*types.Course, error)
	ListIDsByTeacherID(dbc dbctx.Context, teacherID uuid.UUID) ([]uuid.UUID, error)
	UpdateFields(dbc dbctx.Context, courseID uuid.UUID, updates map[string]any) error
	DeleteByID(dbc dbctx.Context, courseID uuid.UUID) (int64, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	repoLog := baseLog.With("repo", "CourseRepo")
	return &courseRepo{db: db, log: repoLog}
}

func (r *courseRepo) Create(dbc dbctx.Context, course *types.Course) (*types.Course, error) {
	if err := dbc.DB(r.db).Omit("Semester", "Teacher").Create(course).Error; err != nil {
		return nil, err
	}
	return course, nil
}

func (r *courseRepo) GetByID(dbc dbctx.Context, courseID uuid.UUID) (*types.Course, error) {
	var c types.Course
	if err := dbc.DB(r.db).Where("id = ?", courseID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *courseRepo) ListByTeacherID(dbc dbctx.Context, teacherID uuid.UUID) ([]*types.Course, error) {
	var results []*types.Course
	if err := dbc.DB(r.db).
		Preload("Semester").
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseRepo) ListByStudentID(dbc dbctx.Context, studentID uuid.UUID) ([]*types.Course, error) {
	var results []*types.Course
	if err := dbc.DB(r.db).
		Preload("Semester").
		Joins("JOIN student_course sc ON sc.course_id = course.id").
		Where("sc.student_id = ?", studentID).
		Order("sc.enrollment_date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseRepo) ListIDsByTeacherID(dbc dbctx.Context, teacherID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := dbc.DB(r.db).
		Model(&types.Course{}).
		Where("teacher_id = ?", teacherID).
		Order("created_at ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *courseRepo) UpdateFields(dbc dbctx.Context, courseID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.Course{}).
		Where("id = ?", courseID).
		Updates(updates).Error
}

func (r *courseRepo) DeleteByID(dbc dbctx.Context, courseID uuid.UUID) (int64, error) {
	res := dbc.DB(r.db).Where("id = ?", courseID).Delete(&types.Course{})
	return res.RowsAffected, res.Error
}
