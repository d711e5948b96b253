package models

import (
	"time"
)

// Permission is a static catalog entry. Codes are the stable handles the
// resolver works with; unknown codes never grant anything.
type Permission struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Code     string `json:"code" gorm:"uniqueIndex;not null;size:100" validate:"required,min=1,max=100"`
	Name     string `json:"name" gorm:"not null;size:200" validate:"required"`
	Category string `json:"category" gorm:"size:100;index"`
}

func (Permission) TableName() string {
	return "permissions"
}

// RolePermission grants a permission code to every user holding the role.
type RolePermission struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Role           UserRole  `json:"role" gorm:"not null;size:20;uniqueIndex:idx_role_code"`
	PermissionCode string    `json:"permission_code" gorm:"not null;size:100;uniqueIndex:idx_role_code"`
	CreatedAt      time.Time `json:"created_at"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}

type PermissionOverrideType string

const (
	OverrideGrant PermissionOverrideType = "grant"
	OverrideDeny  PermissionOverrideType = "deny"
)

// UserPermission overrides the role default for a single user. At most one
// row exists per (user, code); deny beats grant beats role default.
type UserPermission struct {
	ID             uint                   `json:"id" gorm:"primaryKey"`
	UserID         string                 `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_user_code"`
	PermissionCode string                 `json:"permission_code" gorm:"not null;size:100;uniqueIndex:idx_user_code"`
	Type           PermissionOverrideType `json:"type" gorm:"not null;size:10" validate:"required,permission_type"`
	Reason         string                 `json:"reason" gorm:"type:text"`
	GrantedBy      string                 `json:"granted_by" gorm:"size:255"`
	GrantedAt      time.Time              `json:"granted_at"`
}

func (UserPermission) TableName() string {
	return "user_permissions"
}
