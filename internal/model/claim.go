package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClaimStatus represents the status of a claim.
type ClaimStatus string

const (
	ClaimStatusClaimed   ClaimStatus = "claimed"
	ClaimStatusCompleted ClaimStatus = "completed"
)

// IdentityKind distinguishes plain user accounts from NGO accounts.
type IdentityKind string

const (
	IdentityKindUser IdentityKind = "user"
	IdentityKindNgo  IdentityKind = "ngo"
)

// ClaimRecord records which identity reserved a listing. The unique index
// on ListingID enforces at most one claim per listing.
type ClaimRecord struct {
	ID            uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	ListingID     uuid.UUID      `json:"listing_id" gorm:"type:char(36);not null;uniqueIndex"`
	CollectorID   uuid.UUID      `json:"collector_id" gorm:"type:char(36);not null;index"`
	CollectorKind IdentityKind   `json:"collector_kind" gorm:"type:varchar(10);not null"`
	Status        ClaimStatus    `json:"status" gorm:"type:varchar(20);not null;default:'claimed';index"`
	ClaimedAt     time.Time      `json:"claimed_at" gorm:"not null"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Listing FoodListing `json:"-" gorm:"foreignKey:ListingID"`
}

// BeforeCreate sets UUID before creating the record.
func (c *ClaimRecord) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
