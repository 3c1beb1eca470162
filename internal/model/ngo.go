package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ngo represents a registered NGO account. NGOs authenticate through their
// own endpoints but claim listings with the same rules as collectors.
type Ngo struct {
	ID           uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	Name         string         `json:"name" gorm:"size:255;not null"`
	Email        string         `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string         `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Phone        string         `json:"phone" gorm:"size:50;not null"`
	Address      string         `json:"address" gorm:"size:500;not null"`
	Nickname     string         `json:"nickname,omitempty" gorm:"size:255"`
	Availability string         `json:"availability,omitempty" gorm:"size:255"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (n *Ngo) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
