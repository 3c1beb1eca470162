package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sharebite/internal/auth"
	errs "sharebite/internal/errors"
	"sharebite/internal/metrics"
	"sharebite/internal/model"
	"sharebite/internal/projection"
	"sharebite/internal/repository"
)

// ClaimService gates and performs listing state transitions: claim
// (available -> reserved) and completion (reserved -> completed). First
// claim wins; a listing only moves back to available when its claim
// record could not be written.
type ClaimService interface {
	Claim(ctx context.Context, listingID uuid.UUID, requester *auth.Identity) (*model.ClaimRecord, error)
	Complete(ctx context.Context, listingID uuid.UUID, requester *auth.Identity) (*model.ClaimRecord, error)
	ClaimedListings(ctx context.Context, requester *auth.Identity) ([]model.ClaimRecord, error)
}

type claimService struct {
	listingRepo repository.ListingRepository
	claimRepo   repository.ClaimRepository
	userRepo    repository.UserRepository
	projection  *projection.Cache
	metrics     *metrics.Metrics
}

// NewClaimService creates a new claim service.
func NewClaimService(
	listingRepo repository.ListingRepository,
	claimRepo repository.ClaimRepository,
	userRepo repository.UserRepository,
	projCache *projection.Cache,
	m *metrics.Metrics,
) ClaimService {
	return &claimService{
		listingRepo: listingRepo,
		claimRepo:   claimRepo,
		userRepo:    userRepo,
		projection:  projCache,
		metrics:     m,
	}
}

// Claim reserves an available listing for the requester. The transition is a
// single conditional UPDATE, so under concurrent attempts exactly one caller
// wins and the rest observe AlreadyClaimed.
func (s *claimService) Claim(ctx context.Context, listingID uuid.UUID, requester *auth.Identity) (*model.ClaimRecord, error) {
	if !requester.Role.CanClaim() {
		s.metrics.ObserveClaim("forbidden")
		return nil, errs.ErrForbiddenRole
	}

	affected, err := s.listingRepo.Reserve(ctx, listingID)
	if err != nil {
		s.metrics.ObserveClaim("error")
		return nil, fmt.Errorf("reserve listing: %w", err)
	}
	if affected == 0 {
		// Re-read to tell a missing listing apart from a lost race.
		if _, err := s.listingRepo.FindByID(ctx, listingID); err != nil {
			if err == gorm.ErrRecordNotFound {
				s.metrics.ObserveClaim("not_found")
				return nil, errs.ErrListingNotFound
			}
			s.metrics.ObserveClaim("error")
			return nil, fmt.Errorf("get listing: %w", err)
		}
		s.metrics.ObserveClaim("conflict")
		return nil, errs.ErrAlreadyClaimed
	}

	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		s.metrics.ObserveClaim("error")
		return nil, fmt.Errorf("get reserved listing: %w", err)
	}

	claim := &model.ClaimRecord{
		ID:            uuid.New(),
		ListingID:     listingID,
		CollectorID:   requester.ID,
		CollectorKind: requester.Kind,
		Status:        model.ClaimStatusClaimed,
		ClaimedAt:     time.Now(),
	}
	if err := s.claimRepo.Create(ctx, claim); err != nil {
		// Without a claim record the reservation is unownable; release it so
		// the listing does not stay reserved with no path to completion.
		if _, relErr := s.listingRepo.Release(ctx, listingID); relErr != nil {
			log.Printf("release reservation for %s: %v", listingID, relErr)
		}
		s.metrics.ObserveClaim("error")
		return nil, fmt.Errorf("create claim record: %w", err)
	}

	note := projection.Notification{
		ListingID:      listing.ID,
		FoodType:       listing.FoodType,
		DonorName:      s.donorName(ctx, listing.DonorID),
		PickupLocation: listing.PickupLocation,
		PickupTime:     listing.PickupTime,
		ContactInfo:    listing.ContactInfo,
		ClaimedAt:      claim.ClaimedAt,
		Status:         string(claim.Status),
	}
	if err := s.projection.RecordClaim(ctx, requester.ID, note); err != nil {
		// The claim already succeeded authoritatively; the projection is
		// only a rendering aid.
		log.Printf("record claim projection for %s: %v", requester.ID, err)
	}

	s.metrics.ObserveClaim("success")
	return claim, nil
}

// Complete confirms pickup of a reserved listing. Only the claiming identity
// may complete its own claim.
func (s *claimService) Complete(ctx context.Context, listingID uuid.UUID, requester *auth.Identity) (*model.ClaimRecord, error) {
	if _, err := s.listingRepo.FindByID(ctx, listingID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.ErrListingNotFound
		}
		return nil, fmt.Errorf("get listing: %w", err)
	}

	claim, err := s.claimRepo.FindByListingID(ctx, listingID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.ErrClaimNotPending
		}
		return nil, fmt.Errorf("get claim record: %w", err)
	}
	if claim.CollectorID != requester.ID {
		return nil, errs.ErrNotClaimant
	}

	affected, err := s.listingRepo.Complete(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("complete listing: %w", err)
	}
	if affected == 0 {
		return nil, errs.ErrClaimNotPending
	}

	now := time.Now()
	if err := s.claimRepo.MarkCompleted(ctx, listingID, now); err != nil {
		return nil, fmt.Errorf("mark claim completed: %w", err)
	}
	claim.Status = model.ClaimStatusCompleted
	claim.CompletedAt = &now
	return claim, nil
}

// ClaimedListings returns the requester's claim records, newest first.
func (s *claimService) ClaimedListings(ctx context.Context, requester *auth.Identity) ([]model.ClaimRecord, error) {
	claims, err := s.claimRepo.FindByCollector(ctx, requester.ID)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	return claims, nil
}

func (s *claimService) donorName(ctx context.Context, donorID uuid.UUID) string {
	donor, err := s.userRepo.FindByID(ctx, donorID)
	if err != nil {
		return ""
	}
	return donor.Name
}
