package learning

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EContentFileType string

const (
	EContentFilePDF   EContentFileType = "pdf"
	EContentFilePPT   EContentFileType = "ppt"
	EContentFilePPTX  EContentFileType = "pptx"
	EContentFileOther EContentFileType = "other"
)

// EContentFileTypeFor infers the file type from the file name's extension.
func EContentFileTypeFor(name string) EContentFileType {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(name), ".")) {
	case "pdf":
		return EContentFilePDF
	case "ppt":
		return EContentFilePPT
	case "pptx":
		return EContentFilePPTX
	default:
		return EContentFileOther
	}
}

// EContent is the per-course aggregate; a course has at most one.
type EContent struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex" json:"course_id"`
	Course    *Course           `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"-"`
	Modules   []*EContentModule `gorm:"foreignKey:EContentID;constraint:OnDelete:CASCADE" json:"modules,omitempty"`
	CreatedAt time.Time         `gorm:"not null" json:"created_at"`
}

func (EContent) TableName() string { return "econtent" }

func (e *EContent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

type EContentModule struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	EContentID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_econtent_module_number" json:"econtent_id"`
	ModuleNumber int             `gorm:"column:module_number;not null;uniqueIndex:idx_econtent_module_number" json:"module_number"`
	Title        string          `gorm:"column:title;not null" json:"title"`
	Files        []*EContentFile `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"files,omitempty"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
}

func (EContentModule) TableName() string { return "econtent_module" }

func (m *EContentModule) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type EContentFile struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"module_id"`
	FileType  EContentFileType `gorm:"column:file_type;not null" json:"file_type"`
	FileName  string           `gorm:"column:file_name;not null" json:"file_name"`
	FileURL   string           `gorm:"column:file_url;not null" json:"file_url"`
	FileKey   string           `gorm:"column:file_key;not null" json:"file_key"`
	CreatedAt time.Time        `gorm:"not null;index" json:"created_at"`
}

func (EContentFile) TableName() string { return "econtent_file" }

func (f *EContentFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
