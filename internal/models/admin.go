package models

import "time"

// Admin roles. Unknown roles resolve to no permission at all.
const (
	RoleAdmin   = "admin"
	RoleEditeur = "editeur"
)

// AdminUser is a back-office account. Accounts are provisioned from the
// command line, never through a public form.
type AdminUser struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Username     string     `gorm:"uniqueIndex;size:100;not null" json:"username"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Role         string     `gorm:"size:50;not null;default:admin" json:"role"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}
