package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sharebite/internal/model"
)

// ListingFilter narrows List results. Zero values mean no filtering.
type ListingFilter struct {
	Status   model.ListingStatus
	Category string
}

// ListingRepository defines food listing persistence operations.
type ListingRepository interface {
	Create(ctx context.Context, listing *model.FoodListing) error
	Update(ctx context.Context, listing *model.FoodListing) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.FoodListing, error)
	List(ctx context.Context, filter ListingFilter) ([]model.FoodListing, error)
	// Reserve performs the atomic available -> reserved transition and
	// returns the number of rows affected. Zero means the listing was
	// missing or no longer available; the caller must re-read to tell the
	// two apart.
	Reserve(ctx context.Context, id uuid.UUID) (int64, error)
	// Complete performs the reserved -> completed transition with the same
	// rows-affected discipline as Reserve.
	Complete(ctx context.Context, id uuid.UUID) (int64, error)
	// Release reverts reserved -> available. Only used to compensate a
	// reservation whose claim record could not be written.
	Release(ctx context.Context, id uuid.UUID) (int64, error)
	// DeleteExpired soft-deletes available listings whose freshness deadline
	// is in the past. Reserved and completed listings are never swept.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new listing repository.
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

// Create creates a new listing.
func (r *listingRepository) Create(ctx context.Context, listing *model.FoodListing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

// Update updates an existing listing.
func (r *listingRepository) Update(ctx context.Context, listing *model.FoodListing) error {
	return r.db.WithContext(ctx).Save(listing).Error
}

// Delete soft-deletes a listing.
func (r *listingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.FoodListing{}).Error
}

// FindByID finds a listing by ID.
func (r *listingRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.FoodListing, error) {
	var listing model.FoodListing
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&listing).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// List returns listings newest first, optionally filtered by status and category.
func (r *listingRepository) List(ctx context.Context, filter ListingFilter) ([]model.FoodListing, error) {
	q := r.db.WithContext(ctx).Model(&model.FoodListing{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	var listings []model.FoodListing
	if err := q.Order("created_at DESC").Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

// Reserve transitions a listing from available to reserved in a single
// conditional UPDATE so that exactly one of any concurrent claimers wins.
func (r *listingRepository) Reserve(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.FoodListing{}).
		Where("id = ? AND status = ?", id, model.ListingStatusAvailable).
		Update("status", model.ListingStatusReserved)
	return res.RowsAffected, res.Error
}

// Complete transitions a listing from reserved to completed.
func (r *listingRepository) Complete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.FoodListing{}).
		Where("id = ? AND status = ?", id, model.ListingStatusReserved).
		Update("status", model.ListingStatusCompleted)
	return res.RowsAffected, res.Error
}

// Release transitions a listing from reserved back to available.
func (r *listingRepository) Release(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.FoodListing{}).
		Where("id = ? AND status = ?", id, model.ListingStatusReserved).
		Update("status", model.ListingStatusAvailable)
	return res.RowsAffected, res.Error
}

// DeleteExpired soft-deletes available listings past their freshness deadline.
func (r *listingRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND fresh_until < ?", model.ListingStatusAvailable, now).
		Delete(&model.FoodListing{})
	return res.RowsAffected, res.Error
}
