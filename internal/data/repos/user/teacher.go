package user

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type TeacherRepo interface {
	Create(dbc dbctx.Context, teachers []*types.Teacher) ([]*types.Teacher, error)
	GetByID(dbc dbctx.Context, teacherID uuid.UUID) (*types.Teacher, error)
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Teacher, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.Teacher, error)
	List(dbc dbctx.Context) ([]*types.Teacher, error)
}

type teacherRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTeacherRepo(db *gorm.DB, baseLog *logger.Logger) TeacherRepo {
	repoLog := baseLog.With("repo", "TeacherRepo")
	return &teacherRepo{db: db, log: repoLog}
}

func (r *teacherRepo) Create(dbc dbctx.Context, teachers []*types.Teacher) ([]*types.Teacher, error) {
	if len(teachers) == 0 {
		return []*types.Teacher{}, nil
	}
	if err := dbc.DB(r.db).Omit("User").Create(&teachers).Error; err != nil {
		return nil, err
	}
	return teachers, nil
}

func (r *teacherRepo) GetByID(dbc dbctx.Context, teacherID uuid.UUID) (*types.Teacher, error) {
	var t types.Teacher
	if err := dbc.DB(r.db).Preload("User").Where("id = ?", teacherID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *teacherRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Teacher, error) {
	var t types.Teacher
	if err := dbc.DB(r.db).Preload("User").Where("user_id = ?", userID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *teacherRepo) GetByEmail(dbc dbctx.Context, email string) (*types.Teacher, error) {
	var t types.Teacher
	if err := dbc.DB(r.db).Preload("User").Where("email = ?", email).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *teacherRepo) List(dbc dbctx.Context) ([]*types.Teacher, error) {
	var results []*types.Teacher
	if err := dbc.DB(r.db).
		Preload("User").
		Order("email ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
