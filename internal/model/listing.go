package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListingStatus represents the lifecycle status of a food listing.
type ListingStatus string

const (
	ListingStatusAvailable ListingStatus = "available"
	ListingStatusReserved  ListingStatus = "reserved"
	ListingStatusCompleted ListingStatus = "completed"
)

// FoodListing represents a surplus-food donation offer posted by a donor.
// Status moves available -> reserved -> completed and never back.
type FoodListing struct {
	ID             uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	FoodType       string         `json:"food_type" gorm:"size:255;not null"`
	Quantity       string         `json:"quantity" gorm:"size:100;not null"` // Free text, e.g. "10 kg"
	Category       string         `json:"category" gorm:"size:100;not null;index"`
	Description    string         `json:"description,omitempty" gorm:"type:text"`
	FreshUntil     time.Time      `json:"fresh_until" gorm:"not null;index"`
	PickupTime     string         `json:"pickup_time" gorm:"size:255;not null"`
	PickupLocation string         `json:"pickup_location" gorm:"size:500;not null"`
	ContactInfo    string         `json:"contact_info" gorm:"size:255;not null"`
	Photos         string         `json:"-" gorm:"type:text"` // JSON-encoded []string
	DonorID        uuid.UUID      `json:"donor_id" gorm:"type:char(36);not null;index"`
	Status         ListingStatus  `json:"status" gorm:"type:varchar(20);not null;default:'available';index"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Donor User `json:"-" gorm:"foreignKey:DonorID"`
}

// BeforeCreate sets UUID before creating the record.
func (l *FoodListing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
