package services

import (
	"math"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/filetype"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

func (as *assignmentService) Submit(dbc dbctx.Context, assignmentID uuid.UUID, file FileUpload) (*types.Submission, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	if err := requireRole(rd, types.RoleStudent); err != nil {
		return nil, err
	}

	var assignment *types.Assignment
	var out *types.Submission
	var uploaded, replaced string
	err = as.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		a, ca, err := as.readableAssignment(inner, assignmentID)
		if err != nil {
			return err
		}
		if !a.IsActive {
			return apierr.BadRequest("assignment_inactive", "assignment is not accepting submissions")
		}
		obj, err := as.media.put(inner, filetype.Document, "submissions/"+a.ID.String(), file)
		if err != nil {
			return err
		}
		uploaded = obj.Key
		assignment = a

		now := as.now()
		late := types.SubmissionLateAt(now, a.DueDate)
		existing, err := as.submissionRepo.GetByAssignmentAndStudent(inner, a.ID, ca.Student.ID)
		if err != nil {
			return apierr.FromDB(err, "submission")
		}
		if existing == nil {
			out, err = as.submissionRepo.Create(inner, &types.Submission{
				AssignmentID:   a.ID,
				StudentID:      ca.Student.ID,
				SubmissionDate: now,
				SubmissionFile: obj.URL,
				FileKey:        obj.Key,
				FileName:       obj.Name,
				Status:         types.SubmissionSubmitted,
				IsLate:         late,
				CreatedAt:      now,
				UpdatedAt:      now,
			})
			if err != nil {
				err = apierr.FromDB(err, "submission")
				if apierr.IsStatus(err, http.StatusConflict) {
					return apierr.Conflict("submission_conflict", "a concurrent submission for this assignment was recorded first")
				}
				return err
			}
			return nil
		}

		// Resubmission replaces the file in place; grade and feedback stay as they were.
		if err := as.submissionRepo.UpdateFields(inner, existing.ID, map[string]any{
			"submission_date": now,
			"submission_file": obj.URL,
			"file_key":        obj.Key,
			"file_name":       obj.Name,
			"status":          types.SubmissionSubmitted,
			"is_late":         late,
			"updated_at":      now,
		}); err != nil {
			return apierr.FromDB(err, "submission")
		}
		replaced = existing.FileKey
		out, err = as.submissionRepo.GetByID(inner, existing.ID)
		return apierr.FromDB(err, "submission")
	})
	if err != nil {
		as.media.removeBestEffort(dbc.Ctx, uploaded)
		return nil, err
	}
	as.media.removeBestEffort(dbc.Ctx, replaced)
	logger.FromContext(dbc.Ctx, as.log).Info("Submission received",
		"assignment_id", assignment.ID,
		"submission_id", out.ID,
		"is_late", out.IsLate,
		"resubmitted", replaced != "",
	)
	as.notifier.SubmissionReceived(dbc.Ctx, assignment, out)
	return out, nil
}

func (as *assignmentService) Grade(dbc dbctx.Context, assignmentID, submissionID uuid.UUID, grade float64, feedback string) (*types.Submission, error) {
	var assignment *types.Assignment
	var out *types.Submission
	err := as.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		a, _, err := as.ownedAssignment(inner, assignmentID)
		if err != nil {
			return err
		}
		if math.IsNaN(grade) || grade < 0 || grade > a.TotalPoints {
			return apierr.BadRequest("invalid_grade", "grade must be between 0 and the assignment's total points")
		}
		s, err := as.submissionRepo.GetByID(inner, submissionID)
		if err != nil {
			return apierr.FromDB(err, "submission")
		}
		if s.AssignmentID != a.ID {
			return apierr.NotFound("submission_not_found", "submission does not belong to this assignment")
		}
		if err := as.submissionRepo.UpdateFields(inner, s.ID, map[string]any{
			"grade":      grade,
			"feedback":   strings.TrimSpace(feedback),
			"status":     types.SubmissionGraded,
			"updated_at": as.now(),
		}); err != nil {
			return apierr.FromDB(err, "submission")
		}
		assignment = a
		out, err = as.submissionRepo.GetByID(inner, s.ID)
		return apierr.FromDB(err, "submission")
	})
	if err != nil {
		return nil, err
	}

	var studentUser *types.User
	if st, err := as.studentRepo.GetByID(dbc, out.StudentID); err != nil {
		logger.FromContext(dbc.Ctx, as.log).Warn("Grade notification lookup failed", "submission_id", out.ID, "error", err)
	} else {
		studentUser = st.User
	}
	as.notifier.SubmissionGraded(dbc.Ctx, assignment, out, studentUser)
	return out, nil
}

func (as *assignmentService) ListSubmissions(dbc dbctx.Context, assignmentID uuid.UUID) ([]*types.Submission, error) {
	a, _, err := as.ownedAssignment(dbc, assignmentID)
	if err != nil {
		return nil, err
	}
	out, err := as.submissionRepo.ListByAssignmentID(dbc, a.ID)
	if err != nil {
		return nil, apierr.FromDB(err, "submission")
	}
	if out == nil {
		out = []*types.Submission{}
	}
	return out, nil
}

func (as *assignmentService) MySubmission(dbc dbctx.Context, assignmentID uuid.UUID) (*types.Submission, error) {
	rd, err := requestCaller(dbc)
	if err != nil {
		return nil, err
	}
	if err := requireRole(rd, types.RoleStudent); err != nil {
		return nil, err
	}
	a, ca, err := as.readableAssignment(dbc, assignmentID)
	if err != nil {
		return nil, err
	}
	s, err := as.submissionRepo.GetByAssignmentAndStudent(dbc, a.ID, ca.Student.ID)
	if err != nil {
		return nil, apierr.FromDB(err, "submission")
	}
	if s == nil {
		return nil, apierr.NotFound("submission_not_found", "no submission yet")
	}
	return s, nil
}
