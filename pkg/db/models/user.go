package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func ValidRole(role Role) bool {
	switch role {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// User is an account that can own buyer leads. Passwords are stored as an
// argon2id hash alongside the per-user salt, never in recoverable form.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash []byte    `json:"-" gorm:"not null"`
	PasswordSalt []byte    `json:"-" gorm:"not null"`
	Role         Role      `json:"role" gorm:"not null;default:USER"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
