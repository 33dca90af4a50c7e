package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type SemesterRepo interface {
	Create(dbc dbctx.Context, semester *types.Semester) (*types.Semester, error)
	GetByID(dbc dbctx.Context, semesterID uuid.UUID) (*types.Semester, error)
	List(dbc dbctx.Context) ([]*types.Semester, error)
	Save(dbc dbctx.Context, semester *types.Semester) error
	DeleteByID(dbc dbctx.Context, semesterID uuid.UUID) (int64, error)
}

type semesterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSemesterRepo(db *gorm.DB, baseLog *logger.Logger) SemesterRepo {
	repoLog := baseLog.With("repo", "SemesterRepo")
	return &semesterRepo{db: db, log: repoLog}
}

func (r *semesterRepo) Create(dbc dbctx.Context, semester *types.Semester) (*types.Semester, error) {
	if err := dbc.DB(r.db).Create(semester).Error; err != nil {
		return nil, err
	}
	return semester, nil
}

func (r *semesterRepo) GetByID(dbc dbctx.Context, semesterID uuid.UUID) (*types.Semester, error) {
	var s types.Semester
	if err := dbc.DB(r.db).Where("id = ?", semesterID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *semesterRepo) List(dbc dbctx.Context) ([]*types.Semester, error) {
	var results []*types.Semester
	if err := dbc.DB(r.db).
		Order("start_date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *semesterRepo) Save(dbc dbctx.Context, semester *types.Semester) error {
	return dbc.DB(r.db).Save(semester).Error
}

func (r *semesterRepo) DeleteByID(dbc dbctx.Context, semesterID uuid.UUID) (int64, error) {
	res := dbc.DB(r.db).Where("id = ?", semesterID).Delete(&types.Semester{})
	return res.RowsAffected, res.Error
}
