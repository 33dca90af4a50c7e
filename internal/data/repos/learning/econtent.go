package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type EContentRepo interface {
	FindOrCreate(dbc dbctx.Context, courseID uuid.UUID) (*types.EContent, error)
	// GetByCourseID loads the aggregate with modules ordered by number and files by upload; nil when absent.
	GetByCourseID(dbc dbctx.Context, courseID uuid.UUID) (*types.EContent, error)
	CreateModule(dbc dbctx.Context, module *types.EContentModule) (*types.EContentModule, error)
	CreateFiles(dbc dbctx.Context, files []*types.EContentFile) ([]*types.EContentFile, error)
	GetModule(dbc dbctx.Context, courseID, moduleID uuid.UUID) (*types.EContentModule, error)
	GetFile(dbc dbctx.Context, moduleID, fileID uuid.UUID) (*types.EContentFile, error)
	ListFileKeysByModuleID(dbc dbctx.Context, moduleID uuid.UUID) ([]string, error)
	ListFileKeysByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]string, error)
	DeleteModuleByID(dbc dbctx.Context, moduleID uuid.UUID) (int64, error)
	DeleteFileByID(dbc dbctx.Context, fileID uuid.UUID) (int64, error)
}

type eContentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEContentRepo(db *gorm.DB, baseLog *logger.Logger) EContentRepo {
	repoLog := baseLog.With("repo", "EContentRepo")
	return &eContentRepo{db: db, log: repoLog}
}

func (r *eContentRepo) FindOrCreate(dbc dbctx.Context, courseID uuid.UUID) (*types.EContent, error) {
	var ec types.EContent
	if err := dbc.DB(r.db).
		Omit("Course", "Modules").
		Where(types.EContent{CourseID: courseID}).
		FirstOrCreate(&ec).Error; err != nil {
		return nil, err
	}
	return &ec, nil
}

func (r *eContentRepo) GetByCourseID(dbc dbctx.Context, courseID uuid.UUID) (*types.EContent, error) {
	var rows []*types.EContent
	if err := dbc.DB(r.db).
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("module_number ASC")
		}).
		Preload("Modules.Files", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("course_id = ?", courseID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *eContentRepo) CreateModule(dbc dbctx.Context, module *types.EContentModule) (*types.EContentModule, error) {
	if err := dbc.DB(r.db).Omit("Files").Create(module).Error; err != nil {
		return nil, err
	}
	return module, nil
}

func (r *eContentRepo) CreateFiles(dbc dbctx.Context, files []*types.EContentFile) ([]*types.EContentFile, error) {
	if len(files) == 0 {
		return []*types.EContentFile{}, nil
	}
	if err := dbc.DB(r.db).Create(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (r *eContentRepo) GetModule(dbc dbctx.Context, courseID, moduleID uuid.UUID) (*types.EContentModule, error) {
	var m types.EContentModule
	if err := dbc.DB(r.db).
		Joins("JOIN econtent ec ON ec.id = econtent_module.econtent_id").
		Where("econtent_module.id = ? AND ec.course_id = ?", moduleID, courseID).
		First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *eContentRepo) GetFile(dbc dbctx.Context, moduleID, fileID uuid.UUID) (*types.EContentFile, error) {
	var f types.EContentFile
	if err := dbc.DB(r.db).
		Where("id = ? AND module_id = ?", fileID, moduleID).
		First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *eContentRepo) ListFileKeysByModuleID(dbc dbctx.Context, moduleID uuid.UUID) ([]string, error) {
	var keys []string
	if err := dbc.DB(r.db).
		Model(&types.EContentFile{}).
		Where("module_id = ?", moduleID).
		Pluck("file_key", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *eContentRepo) ListFileKeysByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]string, error) {
	var keys []string
	if err := dbc.DB(r.db).
		Model(&types.EContentFile{}).
		Joins("JOIN econtent_module m ON m.id = econtent_file.module_id").
		Joins("JOIN econtent ec ON ec.id = m.econtent_id").
		Where("ec.course_id = ?", courseID).
		Pluck("econtent_file.file_key", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *eContentRepo) DeleteModuleByID(dbc dbctx.Context, moduleID uuid.UUID) (int64, error) {
	res := dbc.DB(r.db).Where("id = ?", moduleID).Delete(&types.EContentModule{})
	return res.RowsAffected, res.Error
}

func (r *eContentRepo) DeleteFileByID(dbc dbctx.Context, fileID uuid.UUID) (int64, error) {
	res := dbc.DB(r.db).Where("id = ?", fileID).Delete(&types.EContentFile{})
	return res.RowsAffected, res.Error
}
