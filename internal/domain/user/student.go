package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Student is the profile row owned by a User with RoleStudent.
// TeacherEmail mirrors the assigned teacher for lookup and is empty while unassigned.
type Student struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User         *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	TeacherID    *uuid.UUID `gorm:"type:uuid;index" json:"teacher_id,omitempty"`
	Teacher      *Teacher   `gorm:"constraint:OnDelete:SET NULL;foreignKey:TeacherID;references:ID" json:"-"`
	TeacherEmail string     `gorm:"column:teacher_email;index" json:"teacher_email,omitempty"`
	Program      string     `gorm:"column:program" json:"program"`
	Semester     string     `gorm:"column:semester" json:"semester"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

func (Student) TableName() string { return "student" }

func (s *Student) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// AssignedTo reports whether the student belongs to teacherID.
func (s *Student) AssignedTo(teacherID uuid.UUID) bool {
	return s != nil && s.TeacherID != nil && *s.TeacherID == teacherID
}
