package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role classifies what a registered user may do.
type Role string

const (
	RoleDonor     Role = "donor"
	RoleCollector Role = "collector"
	// RoleNgo is fixed for NGO accounts; NGOs claim like collectors.
	RoleNgo Role = "ngo"
)

// CanClaim reports whether identities with this role may claim listings.
func (r Role) CanClaim() bool {
	return r == RoleCollector || r == RoleNgo
}

// User represents a registered donor or collector account.
type User struct {
	ID           uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	Name         string         `json:"name" gorm:"size:255;not null"`
	Email        string         `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string         `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role         Role           `json:"role" gorm:"type:varchar(20);not null;index"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
