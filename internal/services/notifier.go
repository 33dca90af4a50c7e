package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/coursehub-backend/internal/clients/redis"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
	"github.com/yungbote/coursehub-backend/internal/platform/sendgrid"
)

// CourseNotifier fans domain events out to the event bus and, for grades, email.
// Every method is best-effort: failures are logged and never returned.
type CourseNotifier interface {
	StudentEnrolled(ctx context.Context, enrollment *types.StudentCourse)
	StudentUnenrolled(ctx context.Context, studentID, courseID uuid.UUID)
	LecturesReviewed(ctx context.Context, courseID uuid.UUID, count int64)
	SubmissionReceived(ctx context.Context, assignment *types.Assignment, submission *types.Submission)
	SubmissionGraded(ctx context.Context, assignment *types.Assignment, submission *types.Submission, student *types.User)
}

type courseNotifier struct {
	log    *logger.Logger
	bus    redis.EventBus
	mailer sendgrid.Client
}

// NewCourseNotifier accepts nil bus or mailer; the matching channel is then skipped.
func NewCourseNotifier(log *logger.Logger, bus redis.EventBus, mailer sendgrid.Client) CourseNotifier {
	return &courseNotifier{log: log.With("service", "CourseNotifier"), bus: bus, mailer: mailer}
}

func (n *courseNotifier) StudentEnrolled(ctx context.Context, enrollment *types.StudentCourse) {
	if enrollment == nil {
		return
	}
	n.publish(ctx, redis.Event{
		Type:     redis.EventStudentEnrolled,
		CourseID: enrollment.CourseID,
		Data: map[string]any{
			"student_id":      enrollment.StudentID.String(),
			"enrollment_date": enrollment.EnrollmentDate,
		},
	})
}

func (n *courseNotifier) StudentUnenrolled(ctx context.Context, studentID, courseID uuid.UUID) {
	n.publish(ctx, redis.Event{
		Type:     redis.EventStudentUnenrolled,
		CourseID: courseID,
		Data:     map[string]any{"student_id": studentID.String()},
	})
}

func (n *courseNotifier) LecturesReviewed(ctx context.Context, courseID uuid.UUID, count int64) {
	if count <= 0 {
		return
	}
	n.publish(ctx, redis.Event{
		Type:     redis.EventLecturesReviewed,
		CourseID: courseID,
		Data:     map[string]any{"count": count},
	})
}

func (n *courseNotifier) SubmissionReceived(ctx context.Context, assignment *types.Assignment, submission *types.Submission) {
	if assignment == nil || submission == nil {
		return
	}
	n.publish(ctx, redis.Event{
		Type:     redis.EventSubmissionCreated,
		CourseID: assignment.CourseID,
		Data: map[string]any{
			"assignment_id": assignment.ID.String(),
			"submission_id": submission.ID.String(),
			"student_id":    submission.StudentID.String(),
			"is_late":       submission.IsLate,
		},
	})
}

func (n *courseNotifier) SubmissionGraded(ctx context.Context, assignment *types.Assignment, submission *types.Submission, student *types.User) {
	if assignment == nil || submission == nil {
		return
	}
	var userID uuid.UUID
	if student != nil {
		userID = student.ID
	}
	n.publish(ctx, redis.Event{
		Type:     redis.EventSubmissionGraded,
		CourseID: assignment.CourseID,
		UserID:   userID,
		Data: map[string]any{
			"assignment_id": assignment.ID.String(),
			"submission_id": submission.ID.String(),
			"grade":         submission.Grade,
		},
	})
	if n.mailer == nil || student == nil || strings.TrimSpace(student.Email) == "" {
		return
	}
	msg := gradeEmail(assignment, submission, student)
	if _, err := n.mailer.Send(context.WithoutCancel(ctx), msg); err != nil {
		logger.FromContext(ctx, n.log).Warn("Grade email failed (ignored)", "submission_id", submission.ID, "error", err)
	}
}

func (n *courseNotifier) publish(ctx context.Context, ev redis.Event) {
	if n == nil || n.bus == nil {
		return
	}
	if err := n.bus.Publish(context.WithoutCancel(ctx), ev); err != nil {
		logger.FromContext(ctx, n.log).Warn("Event publish failed (ignored)", "type", ev.Type, "error", err)
	}
}

func gradeEmail(assignment *types.Assignment, submission *types.Submission, student *types.User) sendgrid.Message {
	grade := "-"
	if submission.Grade != nil {
		grade = fmt.Sprintf("%g", *submission.Grade)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nYour submission for %q has been graded: %s / %g.\n", student.Name, assignment.Title, grade, assignment.TotalPoints)
	if fb := strings.TrimSpace(submission.Feedback); fb != "" {
		fmt.Fprintf(&b, "\nFeedback:\n%s\n", fb)
	}
	return sendgrid.Message{
		To:         []sendgrid.Address{{Email: student.Email, Name: student.Name}},
		Subject:    fmt.Sprintf("Graded: %s", assignment.Title),
		Text:       b.String(),
		Categories: []string{"grade"},
		CustomArgs: map[string]string{"submission_id": submission.ID.String()},
	}
}

// nopNotifier is used when no notifier is wired.
type nopNotifier struct{}

func (nopNotifier) StudentEnrolled(context.Context, *types.StudentCourse)   {}
func (nopNotifier) StudentUnenrolled(context.Context, uuid.UUID, uuid.UUID) {}
func (nopNotifier) LecturesReviewed(context.Context, uuid.UUID, int64)      {}
func (nopNotifier) SubmissionReceived(context.Context, *types.Assignment, *types.Submission) {
}
func (nopNotifier) SubmissionGraded(context.Context, *types.Assignment, *types.Submission, *types.User) {
}

func notifierOrNop(n CourseNotifier) CourseNotifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
