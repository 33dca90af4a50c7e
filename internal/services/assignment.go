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

type AssignmentInput struct {
	Title       string
	Description string
	DueDate     time.Time
	TotalPoints float64
	// IsActive defaults to true.
	IsActive    *bool
	Attachments []FileUpload
}

// AssignmentUpdate changes only the non-nil fields. With ReplaceAttachments the uploaded
// Attachments replace the whole set; otherwise they are appended.
type AssignmentUpdate struct {
	Title               *string
	Description         *string
	DueDate             *time.Time
	TotalPoints         *float64
	IsActive            *bool
	Attachments         []FileUpload
	ReplaceAttachments  bool
	RemoveAttachmentIDs []uuid.UUID
}

type AssignmentService interface {
	Create(dbc dbctx.Context, courseID uuid.UUID, in AssignmentInput) (*types.Assignment, error)
	Update(dbc dbctx.Context, assignmentID uuid.UUID, in AssignmentUpdate) (*types.Assignment, error)
	DeleteAttachment(dbc dbctx.Context, assignmentID, attachmentID uuid.UUID) error
	Delete(dbc dbctx.Context, assignmentID uuid.UUID) error
	Get(dbc dbctx.Context, assignmentID uuid.UUID) (*types.Assignment, error)
	ListByCourse(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Assignment, error)

	// Submit stores the caller's answer, overwriting an earlier one in place.
	Submit(dbc dbctx.Context, assignmentID uuid.UUID, file FileUpload) (*types.Submission, error)
	Grade(dbc dbctx.Context, assignmentID, submissionID uuid.UUID, grade float64, feedback string) (*types.Submission, error)
	ListSubmissions(dbc dbctx.Context, assignmentID uuid.UUID) ([]*types.Submission, error)
	MySubmission(dbc dbctx.Context, assignmentID uuid.UUID) (*types.Submission, error)
}

type assignmentService struct {
	db             *gorm.DB
	log            *logger.Logger
	access         accessResolver
	studentRepo    repos.StudentRepo
	assignmentRepo repos.AssignmentRepo
	submissionRepo repos.SubmissionRepo
	media          *MediaStore
	notifier       CourseNotifier
	now            func() time.Time
}

func NewAssignmentService(
	db *gorm.DB,
	log *logger.Logger,
	courseRepo repos.CourseRepo,
	teacherRepo repos.TeacherRepo,
	studentRepo repos.StudentRepo,
	enrollmentRepo repos.EnrollmentRepo,
	assignmentRepo repos.AssignmentRepo,
	submissionRepo repos.SubmissionRepo,
	media *MediaStore,
	notifier CourseNotifier,
) AssignmentService {
	return &assignmentService{
		db:  db,
		log: log.With("service", "AssignmentService"),
		access: accessResolver{
			teacherRepo:    teacherRepo,
			studentRepo:    studentRepo,
			courseRepo:     courseRepo,
			enrollmentRepo: enrollmentRepo,
		},
		studentRepo:    studentRepo,
		assignmentRepo: assignmentRepo,
		submissionRepo: submissionRepo,
		media:          media,
		notifier:       notifierOrNop(notifier),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func attachmentPrefix(courseID uuid.UUID) string {
	return "assignments/" + courseID.String()
}

func (as *assignmentService) Create(dbc dbctx.Context, courseID uuid.UUID, in AssignmentInput) (*types.Assignment, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		return nil, apierr.BadRequest("title_required", "title is required")
	case in.DueDate.IsZero():
		return nil, apierr.BadRequest("due_date_required", "due_date is required")
	case in.TotalPoints <= 0:
		return nil, apierr.BadRequest("invalid_total_points", "total_points must be greater than zero")
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	now := as.now()
	a := &types.Assignment{
		Title:       title,
		Description: in.Description,
		CourseID:    courseID,
		DueDate:     in.DueDate.UTC(),
		TotalPoints: in.TotalPoints,
		IsActive:    active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	var uploaded []string
	err = as.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		if _, err := as.access.ownedCourse(inner, rd, courseID); err != nil {
			return err
		}
		objs, err := as.media.putAll(inner, filetype.Document, attachmentPrefix(courseID), in.Attachments)
		if err != nil {
			return err
		}
		uploaded = objectKeys(objs)
		if _, err := as.assignmentRepo.Create(inner, a); err != nil {
			return apierr.FromDB(err, "assignment")
		}
		a.Attachments, err = as.createAttachments(inner, a.ID, objs)
		return err
	})
	if err != nil {
		as.media.removeBestEffort(dbc.Ctx, uploaded...)
		return nil, err
	}
	logger.FromContext(dbc.Ctx, as.log).Info("Assignment created",
		"course_id", courseID,
		"assignment_id", a.ID,
		"attachments", len(a.Attachments),
	)
	return a, nil
}

func (as *assignmentService) createAttachments(dbc dbctx.Context, assignmentID uuid.UUID, objs []*storedObject) ([]*types.AssignmentAttachment, error) {
	if len(objs) == 0 {
		return []*types.AssignmentAttachment{}, nil
	}
	now := as.now()
	rows := make([]*types.AssignmentAttachment, 0, len(objs))
	for _, o := range objs {
		rows = append(rows, &types.AssignmentAttachment{
			AssignmentID: assignmentID,
			Name:         o.Name,
			URL:          o.URL,
			Key:          o.Key,
			CreatedAt:    now,
		})
	}
	out, err := as.assignmentRepo.CreateAttachments(dbc, rows)
	if err != nil {
		return nil, apierr.FromDB(err, "attachment")
	}
	return out, nil
}

// ownedAssignment loads the assignment and requires the caller to own its course.
func (as *assignmentService) ownedAssignment(dbc dbctx.Context, assignmentID uuid.UUID) (*types.Assignment, *courseAccess, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, nil, err
	}
	a, err := as.assignmentRepo.GetByID(dbc, assignmentID)
	if err != nil {
		return nil, nil, apierr.FromDB(err, "assignment")
	}
	ca, err := as.access.ownedCourse(dbc, rd, a.CourseID)
	if err != nil {
		return nil, nil, err
	}
	return a, ca, nil
}

// readableAssignment admits the owning teacher and students enrolled in the course.
func (as *assignmentService) readableAssignment(dbc dbctx.Context, assignmentID uuid.UUID) (*types.Assignment, *courseAccess, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, nil, err
	}
	a, err := as.assignmentRepo.GetByID(dbc, assignmentID)
	if err != nil {
		return nil, nil, apierr.FromDB(err, "assignment")
	}
	ca, err := as.access.readableCourse(dbc, rd, a.CourseID)
	if err != nil {
		return nil, nil, err
	}
	return a, ca, nil
}

func (as *assignmentService) Update(dbc dbctx.Context, assignmentID uuid.UUID, in AssignmentUpdate) (*types.Assignment, error) {
	var out *types.Assignment
	var uploaded, dropped []string
	err := as.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		a, _, err := as.ownedAssignment(inner, assignmentID)
		if err != nil {
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
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.DueDate != nil {
			if in.DueDate.IsZero() {
				return apierr.BadRequest("due_date_required", "due_date cannot be cleared")
			}
			updates["due_date"] = in.DueDate.UTC()
		}
		if in.TotalPoints != nil {
			if *in.TotalPoints <= 0 {
				return apierr.BadRequest("invalid_total_points", "total_points must be greater than zero")
			}
			updates["total_points"] = *in.TotalPoints
		}
		if in.IsActive != nil {
			updates["is_active"] = *in.IsActive
		}

		var removeIDs []uuid.UUID
		if in.ReplaceAttachments {
			for _, att := range a.Attachments {
				removeIDs = append(removeIDs, att.ID)
				dropped = append(dropped, att.Key)
			}
		} else if len(in.RemoveAttachmentIDs) > 0 {
			rows, err := as.assignmentRepo.GetAttachmentsByIDs(inner, a.ID, in.RemoveAttachmentIDs)
			if err != nil {
				return apierr.FromDB(err, "attachment")
			}
			if len(rows) != len(uniqueIDs(in.RemoveAttachmentIDs)) {
				return apierr.NotFound("attachment_not_found", "attachment not found on this assignment")
			}
			for _, att := range rows {
				removeIDs = append(removeIDs, att.ID)
				dropped = append(dropped, att.Key)
			}
		}
		if _, err := as.assignmentRepo.DeleteAttachmentsByIDs(inner, removeIDs); err != nil {
			return apierr.FromDB(err, "attachment")
		}

		objs, err := as.media.putAll(inner, filetype.Document, attachmentPrefix(a.CourseID), in.Attachments)
		if err != nil {
			return err
		}
		uploaded = objectKeys(objs)
		if _, err := as.createAttachments(inner, a.ID, objs); err != nil {
			return err
		}

		updates["updated_at"] = as.now()
		if err := as.assignmentRepo.UpdateFields(inner, a.ID, updates); err != nil {
			return apierr.FromDB(err, "assignment")
		}
		out, err = as.assignmentRepo.GetByID(inner, a.ID)
		return apierr.FromDB(err, "assignment")
	})
	if err != nil {
		as.media.removeBestEffort(dbc.Ctx, uploaded...)
		return nil, err
	}
	as.media.removeBestEffort(dbc.Ctx, dropped...)
	return out, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (as *assignmentService) DeleteAttachment(dbc dbctx.Context, assignmentID, attachmentID uuid.UUID) error {
	var key string
	err := as.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		a, _, err := as.ownedAssignment(inner, assignmentID)
		if err != nil {
			return err
		}
		rows, err := as.assignmentRepo.GetAttachmentsByIDs(inner, a.ID, []uuid.UUID{attachmentID})
		if err != nil {
			return apierr.FromDB(err, "attachment")
		}
		if len(rows) == 0 {
			return apierr.NotFound("attachment_not_found", "attachment not found on this assignment")
		}
		if _, err := as.assignmentRepo.DeleteAttachmentsByIDs(inner, []uuid.UUID{attachmentID}); err != nil {
			return apierr.FromDB(err, "attachment")
		}
		as.touch(inner, a.ID)
		key = rows[0].Key
		return nil
	})
	if err != nil {
		return err
	}
	as.media.removeBestEffort(dbc.Ctx, key)
	return nil
}

func (as *assignmentService) touch(dbc dbctx.Context, assignmentID uuid.UUID) {
	if err := as.assignmentRepo.UpdateFields(dbc, assignmentID, map[string]any{"updated_at": as.now()}); err != nil {
		logger.FromContext(dbc.Ctx, as.log).Warn("Assignment touch failed", "assignment_id", assignmentID, "error", err)
	}
}

func (as *assignmentService) Delete(dbc dbctx.Context, assignmentID uuid.UUID) error {
	var keys []string
	err := as.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		a, _, err := as.ownedAssignment(inner, assignmentID)
		if err != nil {
			return err
		}
		for _, att := range a.Attachments {
			keys = append(keys, att.Key)
		}
		subKeys, err := as.submissionRepo.ListFileKeysByAssignmentID(inner, a.ID)
		if err != nil {
			return apierr.FromDB(err, "submission")
		}
		keys = append(keys, subKeys...)
		if _, err := as.assignmentRepo.DeleteByID(inner, a.ID); err != nil {
			return apierr.FromDB(err, "assignment")
		}
		return nil
	})
	if err != nil {
		return err
	}
	as.media.removeBestEffort(dbc.Ctx, keys...)
	return nil
}

func (as *assignmentService) Get(dbc dbctx.Context, assignmentID uuid.UUID) (*types.Assignment, error) {
	a, _, err := as.readableAssignment(dbc, assignmentID)
	return a, err
}

func (as *assignmentService) ListByCourse(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Assignment, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	if _, err := as.access.readableCourse(dbc, rd, courseID); err != nil {
		return nil, err
	}
	out, err := as.assignmentRepo.ListByCourseID(dbc, courseID)
	if err != nil {
		return nil, apierr.FromDB(err, "assignment")
	}
	if out == nil {
		out = []*types.Assignment{}
	}
	return out, nil
}
