package campus

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is a campus-wide announcement. Time is a free-form display string ("10:00 - 12:00").
type Event struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Date        time.Time `gorm:"column:date;not null;index" json:"date"`
	Time        string    `gorm:"column:time" json:"time"`
	Image       string    `gorm:"column:image" json:"image,omitempty"`
	ImageKey    string    `gorm:"column:image_key" json:"image_key,omitempty"`
	Location    string    `gorm:"column:location" json:"location"`
	Link        string    `gorm:"column:link" json:"link"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Event) TableName() string { return "event" }

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
