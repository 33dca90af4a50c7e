package coursework

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type AssignmentRepo interface {
	Create(dbc dbctx.Context, assignment *types.Assignment) (*types.Assignment, error)
	GetByID(dbc dbctx.Context, assignmentID uuid.UUID) (*types.Assignment, error)
	ListByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Assignment, error)
	UpdateFields(dbc dbctx.Context, assignmentID uuid.UUID, updates map[string]any) error
	DeleteByID(dbc dbctx.Context, assignmentID uuid.UUID) (int64, error)

	CreateAttachments(dbc dbctx.Context, rows []*types.AssignmentAttachment) ([]*types.AssignmentAttachment, error)
	ListAttachments(dbc dbctx.Context, assignmentID uuid.UUID) ([]*types.AssignmentAttachment, error)
	GetAttachmentsByIDs(dbc dbctx.Context, assignmentID uuid.UUID, attachmentIDs []uuid.UUID) ([]*types.AssignmentAttachment, error)
	DeleteAttachmentsByIDs(dbc dbctx.Context, attachmentIDs []uuid.UUID) (int64, error)
	ListAttachmentKeysByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]string, error)
}

type assignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	repoLog := baseLog.With("repo", "AssignmentRepo")
	return &assignmentRepo{db: db, log: repoLog}
}

func (r *assignmentRepo) Create(dbc dbctx.Context, assignment *types.Assignment) (*types.Assignment, error) {
	if err := dbc.DB(r.db).Omit("Course", "Attachments").Create(assignment).Error; err != nil {
		return nil, err
	}
	return assignment, nil
}

func (r *assignmentRepo) GetByID(dbc dbctx.Context, assignmentID uuid.UUID) (*types.Assignment, error) {
	var a types.Assignment
	if err := dbc.DB(r.db).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("id = ?", assignmentID).
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) ListByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Assignment, error) {
	var results []*types.Assignment
	if err := dbc.DB(r.db).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("course_id = ?", courseID).
		Order("due_date ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assignmentRepo) UpdateFields(dbc dbctx.Context, assignmentID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.Assignment{}).
		Where("id = ?", assignmentID).
		Updates(updates).Error
}

func (r *assignmentRepo) DeleteByID(dbc dbctx.Context, assignmentID uuid.UUID) (int64, error) {
	res := dbc.DB(r.db).Where("id = ?", assignmentID).Delete(&types.Assignment{})
	return res.RowsAffected, res.Error
}

func (r *assignmentRepo) CreateAttachments(dbc dbctx.Context, rows []*types.AssignmentAttachment) ([]*types.AssignmentAttachment, error) {
	if len(rows) == 0 {
		return []*types.AssignmentAttachment{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assignmentRepo) ListAttachments(dbc dbctx.Context, assignmentID uuid.UUID) ([]*types.AssignmentAttachment, error) {
	var results []*types.AssignmentAttachment
	if err := dbc.DB(r.db).
		Where("assignment_id = ?", assignmentID).
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assignmentRepo) GetAttachmentsByIDs(dbc dbctx.Context, assignmentID uuid.UUID, attachmentIDs []uuid.UUID) ([]*types.AssignmentAttachment, error) {
	var results []*types.AssignmentAttachment
	if len(attachmentIDs) == 0 {
		return results, nil
	}
	if err := dbc.DB(r.db).
		Where("assignment_id = ? AND id IN ?", assignmentID, attachmentIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assignmentRepo) DeleteAttachmentsByIDs(dbc dbctx.Context, attachmentIDs []uuid.UUID) (int64, error) {
	if len(attachmentIDs) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("id IN ?", attachmentIDs).Delete(&types.AssignmentAttachment{})
	return res.RowsAffected, res.Error
}

func (r *assignmentRepo) ListAttachmentKeysByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]string, error) {
	var keys []string
	if err := dbc.DB(r.db).
		Model(&types.AssignmentAttachment{}).
		Joins("JOIN assignment a ON a.id = assignment_attachment.assignment_id").
		Where("a.course_id = ?", courseID).
		Pluck("assignment_attachment.key", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}
