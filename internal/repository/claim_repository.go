package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sharebite/internal/model"
)

// ClaimRepository defines claim record persistence operations.
type ClaimRepository interface {
	Create(ctx context.Context, claim *model.ClaimRecord) error
	FindByListingID(ctx context.Context, listingID uuid.UUID) (*model.ClaimRecord, error)
	FindByCollector(ctx context.Context, collectorID uuid.UUID) ([]model.ClaimRecord, error)
	MarkCompleted(ctx context.Context, listingID uuid.UUID, completedAt time.Time) error
}

type claimRepository struct {
	db *gorm.DB
}

// NewClaimRepository creates a new claim repository.
func NewClaimRepository(db *gorm.DB) ClaimRepository {
	return &claimRepository{db: db}
}

// Create creates a new claim record.
func (r *claimRepository) Create(ctx context.Context, claim *model.ClaimRecord) error {
	return r.db.WithContext(ctx).Create(claim).Error
}

// FindByListingID finds the claim record for a listing, if any.
func (r *claimRepository) FindByListingID(ctx context.Context, listingID uuid.UUID) (*model.ClaimRecord, error) {
	var claim model.ClaimRecord
	if err := r.db.WithContext(ctx).Where("listing_id = ?", listingID).First(&claim).Error; err != nil {
		return nil, err
	}
	return &claim, nil
}

// FindByCollector finds all claim records made by a collector, newest first.
func (r *claimRepository) FindByCollector(ctx context.Context, collectorID uuid.UUID) ([]model.ClaimRecord, error) {
	var claims []model.ClaimRecord
	if err := r.db.WithContext(ctx).Where("collector_id = ?", collectorID).
		Order("claimed_at DESC").Find(&claims).Error; err != nil {
		return nil, err
	}
	return claims, nil
}

// MarkCompleted marks the claim for a listing as completed.
func (r *claimRepository) MarkCompleted(ctx context.Context, listingID uuid.UUID, completedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.ClaimRecord{}).
		Where("listing_id = ?", listingID).
		Updates(map[string]interface{}{
			"status":       model.ClaimStatusCompleted,
			"completed_at": completedAt,
		}).Error
}
