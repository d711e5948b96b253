package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleTrainee UserRole = "trainee"
	RoleManager UserRole = "manager"
	RoleAdmin   UserRole = "admin"
)

// Identity is the authenticated principal attached to a request.
// A nil *Identity means the caller is anonymous (public exams only).
type Identity struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
}

// IsAdmin is nil-safe so gates can call it on anonymous callers.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	Username string   `json:"username" gorm:"uniqueIndex;not null;size:100"`
	FullName string   `json:"full_name" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role     UserRole `json:"role" gorm:"not null;size:20;default:trainee"`

	IsActive    bool       `json:"is_active" gorm:"default:true"`
	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// Principal converts a stored user into the request-scoped identity shape.
func (u *User) Principal() *Identity {
	return &Identity{
		UserID:   u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Role:     u.Role,
	}
}
