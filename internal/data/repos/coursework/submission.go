package coursework

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type SubmissionRepo interface {
	Create(dbc dbctx.Context, submission *types.Submission) (*types.Submission, error)
	GetByID(dbc dbctx.Context, submissionID uuid.UUID) (*types.Submission, error)
	// GetByAssignmentAndStudent returns (nil, nil) when the student has not submitted.
	GetByAssignmentAndStudent(dbc dbctx.Context, assignmentID, studentID uuid.UUID) (*types.Submission, error)
	ListByAssignmentID(dbc dbctx.Context, assignmentID uuid.UUID) ([]*types.Submission, error)
	UpdateFields(dbc dbctx.Context, submissionID uuid.UUID, updates map[string]any) error
	ListFileKeysByAssignmentID(dbc dbctx.Context, assignmentID uuid.UUID) ([]string, error)
	ListFileKeysByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]string, error)
}

type submissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) SubmissionRepo {
	repoLog := baseLog.With("repo", "SubmissionRepo")
	return &submissionRepo{db: db, log: repoLog}
}

func (r *submissionRepo) Create(dbc dbctx.Context, submission *types.Submission) (*types.Submission, error) {
	if err := dbc.DB(r.db).Omit("Assignment", "Student").Create(submission).Error; err != nil {
		return nil, err
	}
	return submission, nil
}

func (r *submissionRepo) GetByID(dbc dbctx.Context, submissionID uuid.UUID) (*types.Submission, error) {
	var s types.Submission
	if err := dbc.DB(r.db).Where("id = ?", submissionID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *submissionRepo) GetByAssignmentAndStudent(dbc dbctx.Context, assignmentID, studentID uuid.UUID) (*types.Submission, error) {
	var rows []*types.Submission
	if err := dbc.DB(r.db).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *submissionRepo) ListByAssignmentID(dbc dbctx.Context, assignmentID uuid.UUID) ([]*types.Submission, error) {
	var results []*types.Submission
	if err := dbc.DB(r.db).
		Preload("Student").
		Preload("Student.User").
		Where("assignment_id = ?", assignmentID).
		Order("submission_date ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *submissionRepo) UpdateFields(dbc dbctx.Context, submissionID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.Submission{}).
		Where("id = ?", submissionID).
		Updates(updates).Error
}

func (r *submissionRepo) ListFileKeysByAssignmentID(dbc dbctx.Context, assignmentID uuid.UUID) ([]string, error) {
	var keys []string
	if err := dbc.DB(r.db).
		Model(&types.Submission{}).
		Where("assignment_id = ?", assignmentID).
		Pluck("file_key", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *submissionRepo) ListFileKeysByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]string, error) {
	var keys []string
	if err := dbc.DB(r.db).
		Model(&types.Submission{}).
		Joins("JOIN assignment a ON a.id = submission.assignment_id").
		Where("a.course_id = ?", courseID).
		Pluck("submission.file_key", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}
