package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/filetype"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

const DefaultReviewWindow = 7 * 24 * time.Hour

type LectureInput struct {
	Title          string
	Content        string
	IsReviewed     bool
	ReviewDeadline *time.Time
	Video          *FileUpload
}

// LectureUpdate changes only the non-nil fields. IsReviewed may only move to true.
type LectureUpdate struct {
	Title          *string
	Content        *string
	IsReviewed     *bool
	ReviewDeadline *time.Time
	Video          *FileUpload
}

type LectureService interface {
	Create(dbc dbctx.Context, courseID uuid.UUID, in LectureInput) (*types.Lecture, error)
	Get(dbc dbctx.Context, courseID, lectureID uuid.UUID) (*types.Lecture, error)
	List(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Lecture, error)
	Update(dbc dbctx.Context, courseID, lectureID uuid.UUID, in LectureUpdate) (*types.Lecture, error)
	MarkReviewed(dbc dbctx.Context, courseID, lectureID uuid.UUID) (*types.Lecture, error)
	// ReviewAllOverdue flips every overdue lecture of the course and returns how many changed.
	ReviewAllOverdue(dbc dbctx.Context, courseID uuid.UUID) (int64, error)
	Delete(dbc dbctx.Context, courseID, lectureID uuid.UUID) error
}

type lectureService struct {
	db           *gorm.DB
	log          *logger.Logger
	access       accessResolver
	lectureRepo  repos.LectureRepo
	media        *MediaStore
	notifier     CourseNotifier
	reviewWindow time.Duration
	now          func() time.Time
}

func NewLectureService(
	db *gorm.DB,
	log *logger.Logger,
	courseRepo repos.CourseRepo,
	teacherRepo repos.TeacherRepo,
	studentRepo repos.StudentRepo,
	enrollmentRepo repos.EnrollmentRepo,
	lectureRepo repos.LectureRepo,
	media *MediaStore,
	notifier CourseNotifier,
	reviewWindow time.Duration,
) LectureService {
	if reviewWindow <= 0 {
		reviewWindow = DefaultReviewWindow
	}
	return &lectureService{
		db:  db,
		log: log.With("service", "LectureService"),
		access: accessResolver{
			teacherRepo:    teacherRepo,
			studentRepo:    studentRepo,
			courseRepo:     courseRepo,
			enrollmentRepo: enrollmentRepo,
		},
		lectureRepo:  lectureRepo,
		media:        media,
		notifier:     notifierOrNop(notifier),
		reviewWindow: reviewWindow,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (ls *lectureService) Create(dbc dbctx.Context, courseID uuid.UUID, in LectureInput) (*types.Lecture, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.BadRequest("title_required", "title is required")
	}

	now := ls.now()
	deadline := now.Add(ls.reviewWindow)
	if in.ReviewDeadline != nil {
		deadline = in.ReviewDeadline.UTC()
	}
	lecture := &types.Lecture{
		Title:          title,
		Content:        in.Content,
		CourseID:       courseID,
		IsReviewed:     in.IsReviewed,
		ReviewDeadline: &deadline,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var uploaded string
	err = ls.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		if _, err := ls.access.ownedCourse(inner, rd, courseID); err != nil {
			return err
		}
		if in.Video != nil {
			obj, err := ls.media.put(inner, filetype.Video, "lectures/"+courseID.String(), *in.Video)
			if err != nil {
				return err
			}
			uploaded = obj.Key
			lecture.VideoKey = obj.Key
			lecture.VideoURL = obj.URL
		}
		if _, err := ls.lectureRepo.Create(inner, lecture); err != nil {
			return apierr.FromDB(err, "lecture")
		}
		return nil
	})
	if err != nil {
		ls.media.removeBestEffort(dbc.Ctx, uploaded)
		return nil, err
	}
	logger.FromContext(dbc.Ctx, ls.log).Info("Lecture created", "course_id", courseID, "lecture_id", lecture.ID)
	return lecture, nil
}

func (ls *lectureService) Get(dbc dbctx.Context, courseID, lectureID uuid.UUID) (*types.Lecture, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	ca, err := ls.access.readableCourse(dbc, rd, courseID)
	if err != nil {
		return nil, err
	}
	lecture, err := ls.lectureRepo.GetByID(dbc, courseID, lectureID)
	if err != nil {
		return nil, apierr.FromDB(err, "lecture")
	}
	if err := ls.flipIfOverdue(dbc, lecture); err != nil {
		return nil, err
	}
	if ca.Student != nil && !lecture.IsReviewed {
		return nil, apierr.NotFound("lecture_not_found", "lecture not found")
	}
	return lecture, nil
}

func (ls *lectureService) List(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Lecture, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	ca, err := ls.access.readableCourse(dbc, rd, courseID)
	if err != nil {
		return nil, err
	}
	return listLecturesReviewed(dbc, ls.lectureRepo, courseID, ca.Student != nil, ls.now())
}

// listLecturesReviewed persists every pending lazy flip for the course and then lists it.
func listLecturesReviewed(dbc dbctx.Context, repo repos.LectureRepo, courseID uuid.UUID, reviewedOnly bool, now time.Time) ([]*types.Lecture, error) {
	if _, err := repo.ReviewOverdue(dbc, courseID, now); err != nil {
		return nil, apierr.FromDB(err, "lecture")
	}
	out, err := repo.ListByCourseID(dbc, courseID, reviewedOnly)
	if err != nil {
		return nil, apierr.FromDB(err, "lecture")
	}
	return out, nil
}

// flipIfOverdue persists the implicit review before the lecture is returned.
func (ls *lectureService) flipIfOverdue(dbc dbctx.Context, lecture *types.Lecture) error {
	if !lecture.ReviewOverdue(ls.now()) {
		return nil
	}
	if _, err := ls.lectureRepo.MarkReviewedByIDs(dbc, []uuid.UUID{lecture.ID}); err != nil {
		return apierr.FromDB(err, "lecture")
	}
	lecture.IsReviewed = true
	logger.FromContext(dbc.Ctx, ls.log).Debug("Lecture review deadline passed", "lecture_id", lecture.ID)
	return nil
}

func (ls *lectureService) Update(dbc dbctx.Context, courseID, lectureID uuid.UUID, in LectureUpdate) (*types.Lecture, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}

	var out *types.Lecture
	var uploaded, replaced string
	err = ls.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		if _, err := ls.access.ownedCourse(inner, rd, courseID); err != nil {
			return err
		}
		lecture, err := ls.lectureRepo.GetByID(inner, courseID, lectureID)
		if err != nil {
			return apierr.FromDB(err, "lecture")
		}
		if err := ls.flipIfOverdue(inner, lecture); err != nil {
			return err
		}

		updates := map[string]any{}
		if in.Title != nil {
			title := strings.TrimSpace(*in.Title)
			if title == "" {
				return apierr.BadRequest("title_required", "title cannot be blank")
			}
			updates["title"] = title
		}
		if in.Content != nil {
			updates["content"] = *in.Content
		}
		if in.IsReviewed != nil {
			if !*in.IsReviewed && lecture.IsReviewed {
				return apierr.BadRequest("review_irreversible", "a reviewed lecture cannot be marked unreviewed")
			}
			if *in.IsReviewed {
				updates["is_reviewed"] = true
			}
		}
		if in.ReviewDeadline != nil {
			d := in.ReviewDeadline.UTC()
			updates["review_deadline"] = &d
		}
		if in.Video != nil {
			obj, err := ls.media.put(inner, filetype.Video, "lectures/"+courseID.String(), *in.Video)
			if err != nil {
				return err
			}
			uploaded = obj.Key
			replaced = lecture.VideoKey
			updates["video_key"] = obj.Key
			updates["video_url"] = obj.URL
		}
		if len(updates) > 0 {
			updates["updated_at"] = ls.now()
			if err := ls.lectureRepo.UpdateFields(inner, lecture.ID, updates); err != nil {
				return apierr.FromDB(err, "lecture")
			}
		}
		reloaded, err := ls.lectureRepo.GetByID(inner, courseID, lectureID)
		if err != nil {
			return apierr.FromDB(err, "lecture")
		}
		if err := ls.flipIfOverdue(inner, reloaded); err != nil {
			return err
		}
		out = reloaded
		return nil
	})
	if err != nil {
		ls.media.removeBestEffort(dbc.Ctx, uploaded)
		return nil, err
	}
	ls.media.removeBestEffort(dbc.Ctx, replaced)
	return out, nil
}

func (ls *lectureService) MarkReviewed(dbc dbctx.Context, courseID, lectureID uuid.UUID) (*types.Lecture, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	var out *types.Lecture
	var changed int64
	if err := ls.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		if _, err := ls.access.ownedCourse(inner, rd, courseID); err != nil {
			return err
		}
		lecture, err := ls.lectureRepo.GetByID(inner, courseID, lectureID)
		if err != nil {
			return apierr.FromDB(err, "lecture")
		}
		n, err := ls.lectureRepo.MarkReviewedByIDs(inner, []uuid.UUID{lecture.ID})
		if err != nil {
			return apierr.FromDB(err, "lecture")
		}
		changed = n
		lecture.IsReviewed = true
		out = lecture
		return nil
	}); err != nil {
		return nil, err
	}
	ls.notifier.LecturesReviewed(dbc.Ctx, courseID, changed)
	return out, nil
}

func (ls *lectureService) ReviewAllOverdue(dbc dbctx.Context, courseID uuid.UUID) (int64, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return 0, err
	}
	if _, err := ls.access.ownedCourse(dbc, rd, courseID); err != nil {
		return 0, err
	}
	n, err := ls.lectureRepo.ReviewOverdue(dbc, courseID, ls.now())
	if err != nil {
		return 0, apierr.FromDB(err, "lecture")
	}
	logger.FromContext(dbc.Ctx, ls.log).Info("Overdue lectures reviewed", "course_id", courseID, "count", n)
	ls.notifier.LecturesReviewed(dbc.Ctx, courseID, n)
	return n, nil
}

func (ls *lectureService) Delete(dbc dbctx.Context, courseID, lectureID uuid.UUID) error {
	rd, err := requestCaller(dbc)
	if err != nil {
		return err
	}
	var videoKey string
	if err := ls.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		if _, err := ls.access.ownedCourse(inner, rd, courseID); err != nil {
			return err
		}
		lecture, err := ls.lectureRepo.GetByID(inner, courseID, lectureID)
		if err != nil {
			return apierr.FromDB(err, "lecture")
		}
		if _, err := ls.lectureRepo.DeleteByID(inner, lecture.ID); err != nil {
			return apierr.FromDB(err, "lecture")
		}
		videoKey = lecture.VideoKey
		return nil
	}); err != nil {
		return err
	}
	ls.media.removeBestEffort(dbc.Ctx, videoKey)
	return nil
}
