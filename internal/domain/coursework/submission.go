package coursework

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/coursehub-backend/internal/domain/user"
	"gorm.io/gorm"
)

type SubmissionStatus string

const (
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionGraded    SubmissionStatus = "graded"
	// SubmissionReturned is accepted by Valid but no operation transitions into it.
	SubmissionReturned SubmissionStatus = "returned"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionSubmitted, SubmissionGraded, SubmissionReturned:
		return true
	}
	return false
}

// Submission is a student's single live answer to an assignment; (assignment_id, student_id) is unique.
type Submission struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID   uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_submission_assignment_student" json:"assignment_id"`
	Assignment     *Assignment      `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssignmentID;references:ID" json:"-"`
	StudentID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_submission_assignment_student;index" json:"student_id"`
	Student        *user.Student    `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"-"`
	SubmissionDate time.Time        `gorm:"column:submission_date;not null" json:"submission_date"`
	SubmissionFile string           `gorm:"column:submission_file;not null" json:"submission_file"`
	FileKey        string           `gorm:"column:file_key;not null" json:"file_key"`
	FileName       string           `gorm:"column:file_name" json:"file_name"`
	Grade          *float64         `gorm:"column:grade" json:"grade,omitempty"`
	Feedback       string           `gorm:"column:feedback;type:text" json:"feedback,omitempty"`
	Status         SubmissionStatus `gorm:"column:status;not null;index" json:"status"`
	IsLate         bool             `gorm:"column:is_late;not null" json:"is_late"`
	CreatedAt      time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"not null" json:"updated_at"`
}

func (Submission) TableName() string { return "submission" }

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// LateAt reports whether a submission made at t misses due.
func LateAt(t, due time.Time) bool { return t.After(due) }
