package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type LectureRepo interface {
	Create(dbc dbctx.Context, lecture *types.Lecture) (*types.Lecture, error)
	GetByID(dbc dbctx.Context, courseID, lectureID uuid.UUID) (*types.Lecture, error)
	ListByCourseID(dbc dbctx.Context, courseID uuid.UUID, reviewedOnly bool) ([]*types.Lecture, error)
	UpdateFields(dbc dbctx.Context, lectureID uuid.UUID, updates map[string]any) error
	// MarkReviewedByIDs flips the given lectures, touching only rows still unreviewed.
	MarkReviewedByIDs(dbc dbctx.Context, lectureIDs []uuid.UUID) (int64, error)
	// ReviewOverdue flips every unreviewed lecture of the course whose deadline is <= now.
	ReviewOverdue(dbc dbctx.Context, courseID uuid.UUID, now time.Time) (int64, error)
	ListVideoKeysByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]string, error)
	DeleteByID(dbc dbctx.Context, lectureID uuid.UUID) (int64, error)
}

type lectureRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLectureRepo(db *gorm.DB, baseLog *logger.Logger) LectureRepo {
	repoLog := baseLog.With("repo", "LectureRepo")
	return &lectureRepo{db: db, log: repoLog}
}

func (r *lectureRepo) Create(dbc dbctx.Context, lecture *types.Lecture) (*types.Lecture, error) {
	if err := dbc.DB(r.db).Omit("Course").Create(lecture).Error; err != nil {
		return nil, err
	}
	return lecture, nil
}

func (r *lectureRepo) GetByID(dbc dbctx.Context, courseID, lectureID uuid.UUID) (*types.Lecture, error) {
	var l types.Lecture
	if err := dbc.DB(r.db).
		Where("id = ? AND course_id = ?", lectureID, courseID).
		First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *lectureRepo) ListByCourseID(dbc dbctx.Context, courseID uuid.UUID, reviewedOnly bool) ([]*types.Lecture, error) {
	var results []*types.Lecture
	q := dbc.DB(r.db).Where("course_id = ?", courseID)
	if reviewedOnly {
		q = q.Where("is_reviewed = ?", true)
	}
	if err := q.Order("created_at ASC, id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *lectureRepo) UpdateFields(dbc dbctx.Context, lectureID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.Lecture{}).
		Where("id = ?", lectureID).
		Updates(updates).Error
}

func (r *lectureRepo) MarkReviewedByIDs(dbc dbctx.Context, lectureIDs []uuid.UUID) (int64, error) {
	if len(lectureIDs) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Model(&types.Lecture{}).
		Where("id IN ? AND is_reviewed = ?", lectureIDs, false).
		Update("is_reviewed", true)
	return res.RowsAffected, res.Error
}

func (r *lectureRepo) ReviewOverdue(dbc dbctx.Context, courseID uuid.UUID, now time.Time) (int64, error) {
	res := dbc.DB(r.db).
		Model(&types.Lecture{}).
		Where("course_id = ? AND is_reviewed = ? AND review_deadline IS NOT NULL AND review_deadline <= ?", courseID, false, now).
		Update("is_reviewed", true)
	return res.RowsAffected, res.Error
}

func (r *lectureRepo) ListVideoKeysByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]string, error) {
	var keys []string
	if err := dbc.DB(r.db).
		Model(&types.Lecture{}).
		Where("course_id = ? AND video_key <> ''", courseID).
		Pluck("video_key", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *lectureRepo) DeleteByID(dbc dbctx.Context, lectureID uuid.UUID) (int64, error) {
	res := dbc.DB(r.db).Where("id = ?", lectureID).Delete(&types.Lecture{})
	return res.RowsAffected, res.Error
}
