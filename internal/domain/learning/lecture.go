package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Lecture struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string     `gorm:"column:title;not null" json:"title"`
	Content        string     `gorm:"column:content;type:text" json:"content"`
	VideoURL       string     `gorm:"column:video_url" json:"video_url,omitempty"`
	VideoKey       string     `gorm:"column:video_key" json:"video_key,omitempty"`
	CourseID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"course_id"`
	Course         *Course    `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"-"`
	IsReviewed     bool       `gorm:"column:is_reviewed;not null;index" json:"is_reviewed"`
	ReviewDeadline *time.Time `gorm:"column:review_deadline;index" json:"review_deadline,omitempty"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
}

func (Lecture) TableName() string { return "lecture" }

func (l *Lecture) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// ReviewOverdue reports whether the lecture must be flipped to reviewed at now.
func (l *Lecture) ReviewOverdue(now time.Time) bool {
	return l != nil && !l.IsReviewed && l.ReviewDeadline != nil && !now.Before(*l.ReviewDeadline)
}
