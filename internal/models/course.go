package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	ID          string  `json:"id" gorm:"primaryKey;size:36"`
	Title       string  `json:"title" gorm:"not null;size:200"`
	Description *string `json:"description" gorm:"type:text"`

	// Ordered module references. Order values need not be contiguous; rows
	// with equal order keep their insertion position.
	Modules []CourseModule `json:"modules" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Course) TableName() string {
	return "courses"
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CourseModule binds a module into a course at an explicit order position.
type CourseModule struct {
	ID       uint   `json:"-" gorm:"primaryKey"`
	CourseID string `json:"-" gorm:"not null;index;size:36"`
	ModuleID string `json:"moduleId" gorm:"not null;index;size:36"`
	Order    int    `json:"order" gorm:"not null;default:0"`

	Module *Module `json:"module,omitempty" gorm:"foreignKey:ModuleID"`
}

func (CourseModule) TableName() string {
	return "course_modules"
}

type Module struct {
	ID      string `json:"id" gorm:"primaryKey;size:36"`
	Title   string `json:"title" gorm:"not null;size:200"`
	Content string `json:"content" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Module) TableName() string {
	return "modules"
}

func (m *Module) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
