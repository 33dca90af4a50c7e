package coursework

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/coursehub-backend/internal/domain/learning"
	"gorm.io/gorm"
)

type Assignment struct {
	ID          uuid.UUID               `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string                  `gorm:"column:title;not null" json:"title"`
	Description string                  `gorm:"column:description;type:text" json:"description"`
	CourseID    uuid.UUID               `gorm:"type:uuid;not null;index" json:"course_id"`
	Course      *learning.Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"-"`
	DueDate     time.Time               `gorm:"column:due_date;not null" json:"due_date"`
	TotalPoints float64                 `gorm:"column:total_points;not null" json:"total_points"`
	IsActive    bool                    `gorm:"column:is_active;not null" json:"is_active"`
	Attachments []*AssignmentAttachment `gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
	CreatedAt   time.Time               `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time               `gorm:"not null" json:"updated_at"`
}

func (Assignment) TableName() string { return "assignment" }

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AssignmentAttachment is teacher-provided reference material on an assignment.
type AssignmentAttachment struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"assignment_id"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	URL          string    `gorm:"column:url;not null" json:"url"`
	Key          string    `gorm:"column:key;not null" json:"key"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (AssignmentAttachment) TableName() string { return "assignment_attachment" }

func (a *AssignmentAttachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
