package user

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type StudentRepo interface {
	Create(dbc dbctx.Context, students []*types.Student) ([]*types.Student, error)
	GetByID(dbc dbctx.Context, studentID uuid.UUID) (*types.Student, error)
	GetByIDs(dbc dbctx.Context, studentIDs []uuid.UUID) ([]*types.Student, error)
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Student, error)
	ListByTeacherID(dbc dbctx.Context, teacherID uuid.UUID) ([]*types.Student, error)
	ListUnassigned(dbc dbctx.Context) ([]*types.Student, error)
	AssignTeacher(dbc dbctx.Context, studentID, teacherID uuid.UUID, teacherEmail string) error
}

type studentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentRepo(db *gorm.DB, baseLog *logger.Logger) StudentRepo {
	repoLog := baseLog.With("repo", "StudentRepo")
	return &studentRepo{db: db, log: repoLog}
}

func (r *studentRepo) Create(dbc dbctx.Context, students []*types.Student) ([]*types.Student, error) {
	if len(students) == 0 {
		return []*types.Student{}, nil
	}
	if err := dbc.DB(r.db).Omit("User", "Teacher").Create(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepo) GetByID(dbc dbctx.Context, studentID uuid.UUID) (*types.Student, error) {
	var s types.Student
	if err := dbc.DB(r.db).Preload("User").Where("id = ?", studentID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepo) GetByIDs(dbc dbctx.Context, studentIDs []uuid.UUID) ([]*types.Student, error) {
	var results []*types.Student
	if len(studentIDs) == 0 {
		return results, nil
	}
	if err := dbc.DB(r.db).
		Preload("User").
		Where("id IN ?", studentIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *studentRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Student, error) {
	var s types.Student
	if err := dbc.DB(r.db).Preload("User").Where("user_id = ?", userID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepo) ListByTeacherID(dbc dbctx.Context, teacherID uuid.UUID) ([]*types.Student, error) {
	var results []*types.Student
	if err := dbc.DB(r.db).
		Preload("User").
		Where("teacher_id = ?", teacherID).
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *studentRepo) ListUnassigned(dbc dbctx.Context) ([]*types.Student, error) {
	var results []*types.Student
	if err := dbc.DB(r.db).
		Preload("User").
		Where("teacher_id IS NULL").
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *studentRepo) AssignTeacher(dbc dbctx.Context, studentID, teacherID uuid.UUID, teacherEmail string) error {
	res := dbc.DB(r.db).
		Model(&types.Student{}).
		Where("id = ?", studentID).
		Updates(map[string]any{
			"teacher_id":    teacherID,
			"teacher_email": teacherEmail,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
