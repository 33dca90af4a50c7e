package learning

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/coursehub-backend/internal/domain/user"
	"gorm.io/gorm"
)

// StudentCourse is the enrollment join row; (student_id, course_id) is unique.
type StudentCourse struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID      uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_student_course" json:"student_id"`
	Student        *user.Student `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"-"`
	CourseID       uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_student_course;index" json:"course_id"`
	Course         *Course       `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"-"`
	EnrollmentDate time.Time     `gorm:"column:enrollment_date;not null;index" json:"enrollment_date"`
	CreatedAt      time.Time     `gorm:"not null" json:"created_at"`
}

func (StudentCourse) TableName() string { return "student_course" }

func (sc *StudentCourse) BeforeCreate(tx *gorm.DB) error {
	if sc.ID == uuid.Nil {
		sc.ID = uuid.New()
	}
	return nil
}
