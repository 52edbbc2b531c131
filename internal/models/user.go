package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

type User struct {
	ID          string   `json:"id" gorm:"primaryKey;size:36"`
	DisplayName string   `json:"displayName" gorm:"not null;size:100"`
	Email       string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password    string   `json:"-" gorm:"not null;size:255"` // bcrypt hash
	Role        UserRole `json:"role" gorm:"not null;default:student;size:20"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Session is the single active session per user. Login upserts it, logout
// deletes it, and Verify treats an expired row as absent.
type Session struct {
	UserID    string    `json:"user_id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
}

func (Session) TableName() string {
	return "sessions"
}
