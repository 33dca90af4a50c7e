package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Teacher is the profile row owned by a User with RoleTeacher.
type Teacher struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Teacher) TableName() string { return "teacher" }

func (t *Teacher) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// BeforeDelete clears teacher_id and teacher_email on the teacher's students.
func (t *Teacher) BeforeDelete(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		return nil
	}
	return detachStudents(tx, tx.Session(&gorm.Session{NewDB: true}).
		Model(&Teacher{}).Select("id").Where("id = ?", t.ID))
}

func detachStudents(tx *gorm.DB, teacherIDs *gorm.DB) error {
	return tx.Session(&gorm.Session{NewDB: true}).
		Model(&Student{}).
		Where("teacher_id IN (?)", teacherIDs).
		Updates(map[string]any{"teacher_id": nil, "teacher_email": ""}).Error
}
