package learning

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/coursehub-backend/internal/domain/user"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Course struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string        `gorm:"column:title;not null" json:"title"`
	AboutCourse string        `gorm:"column:about_course;type:text" json:"about_course"`
	SemesterID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"semester_id"`
	Semester    *Semester     `gorm:"constraint:OnDelete:RESTRICT;foreignKey:SemesterID;references:ID" json:"semester,omitempty"`
	TeacherID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"teacher_id"`
	Teacher     *user.Teacher `gorm:"constraint:OnDelete:CASCADE;foreignKey:TeacherID;references:ID" json:"-"`
	CreatedAt   time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null" json:"updated_at"`
}

func (Course) TableName() string { return "course" }

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CourseCreditPoints struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"course_id"`
	Course    *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"-"`
	Lecture   float64   `gorm:"column:lecture;not null" json:"lecture"`
	Lab       float64   `gorm:"column:lab;not null" json:"lab"`
	Tutorial  float64   `gorm:"column:tutorial;not null" json:"tutorial"`
	Total     float64   `gorm:"column:total;not null" json:"total"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (CourseCreditPoints) TableName() string { return "course_credit_points" }

func (c *CourseCreditPoints) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CourseOutcome struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Course      *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"-"`
	Position    int       `gorm:"column:position;not null" json:"position"`
	Description string    `gorm:"column:description;type:text;not null" json:"description"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (CourseOutcome) TableName() string { return "course_outcome" }

func (c *CourseOutcome) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CourseWeeklyPlan struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_weekly_plan_course_week" json:"course_id"`
	Course    *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"-"`
	Week      int       `gorm:"column:week;not null;uniqueIndex:idx_weekly_plan_course_week" json:"week"`
	Topic     string    `gorm:"column:topic;not null" json:"topic"`
	Details   string    `gorm:"column:details;type:text" json:"details,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (CourseWeeklyPlan) TableName() string { return "course_weekly_plan" }

func (c *CourseWeeklyPlan) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type SyllabusUnit struct {
	Title  string   `json:"title"`
	Topics []string `json:"topics,omitempty"`
}

type CourseSyllabus struct {
	ID        uuid.UUID                         `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID                         `gorm:"type:uuid;not null;uniqueIndex" json:"course_id"`
	Course    *Course                           `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"-"`
	Units     datatypes.JSONSlice[SyllabusUnit] `gorm:"column:units" json:"units"`
	CreatedAt time.Time                         `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time                         `gorm:"not null" json:"updated_at"`
}

func (CourseSyllabus) TableName() string { return "course_syllabus" }

func (c *CourseSyllabus) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CourseSchedule is one recurring class slot. Times are "HH:MM" wall-clock strings.
type CourseSchedule struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Course    *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"-"`
	Day       string    `gorm:"column:day;not null" json:"day"`
	StartTime string    `gorm:"column:start_time;not null" json:"start_time"`
	EndTime   string    `gorm:"column:end_time;not null" json:"end_time"`
	Room      string    `gorm:"column:room" json:"room,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (CourseSchedule) TableName() string { return "course_schedule" }

func (c *CourseSchedule) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CourseAttendance keys sessions (usually a date) to a map of student id -> status.
type CourseAttendance struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex" json:"course_id"`
	Course    *Course           `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"-"`
	Sessions  datatypes.JSONMap `gorm:"column:sessions" json:"sessions"`
	CreatedAt time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null" json:"updated_at"`
}

func (CourseAttendance) TableName() string { return "course_attendance" }

func (c *CourseAttendance) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
