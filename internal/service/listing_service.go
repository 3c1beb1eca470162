package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
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

// ListingInput carries the fields for creating a listing.
type ListingInput struct {
	FoodType       string
	Quantity       string
	Category       string
	Description    string
	FreshUntil     time.Time
	PickupTime     string
	PickupLocation string
	ContactInfo    string
	Photos         []string
}

// ListingPatch carries a partial update. Nil fields are left untouched.
type ListingPatch struct {
	FoodType       *string
	Quantity       *string
	Category       *string
	Description    *string
	FreshUntil     *time.Time
	PickupTime     *string
	PickupLocation *string
	ContactInfo    *string
	Photos         []string
}

// ListingView is a listing as rendered to a requester. ClaimedByRequester is
// computed server-side from the claim record so the UI can distinguish
// "claimed by me" from "claimed by someone else".
type ListingView struct {
	model.FoodListing
	DonorName          string   `json:"donor_name,omitempty"`
	Photos             []string `json:"photos"`
	ClaimedByRequester bool     `json:"claimed_by_requester"`
}

// ListingService handles listing CRUD with ownership-gated mutation.
type ListingService interface {
	Create(ctx context.Context, requester *auth.Identity, in ListingInput) (*model.FoodListing, error)
	List(ctx context.Context, filter repository.ListingFilter, requester *auth.Identity) ([]ListingView, error)
	Get(ctx context.Context, id uuid.UUID) (*ListingView, error)
	Update(ctx context.Context, id uuid.UUID, requester *auth.Identity, patch ListingPatch) (*model.FoodListing, error)
	Delete(ctx context.Context, id uuid.UUID, requester *auth.Identity) error
}

type listingService struct {
	listingRepo repository.ListingRepository
	claimRepo   repository.ClaimRepository
	userRepo    repository.UserRepository
	projection  *projection.Cache
	metrics     *metrics.Metrics
}

// NewListingService creates a new listing service.
func NewListingService(
	listingRepo repository.ListingRepository,
	claimRepo repository.ClaimRepository,
	userRepo repository.UserRepository,
	projCache *projection.Cache,
	m *metrics.Metrics,
) ListingService {
	return &listingService{
		listingRepo: listingRepo,
		claimRepo:   claimRepo,
		userRepo:    userRepo,
		projection:  projCache,
		metrics:     m,
	}
}

// Create validates and persists a new listing owned by the requesting donor.
// Validation is rejected before anything is written.
func (s *listingService) Create(ctx context.Context, requester *auth.Identity, in ListingInput) (*model.FoodListing, error) {
	if requester.Role != model.RoleDonor {
		return nil, errs.ErrForbiddenRole
	}
	if err := validateListingInput(in); err != nil {
		return nil, err
	}

	photos, err := encodePhotos(in.Photos)
	if err != nil {
		return nil, err
	}

	listing := &model.FoodListing{
		ID:             uuid.New(),
		FoodType:       strings.TrimSpace(in.FoodType),
		Quantity:       strings.TrimSpace(in.Quantity),
		Category:       strings.TrimSpace(in.Category),
		Description:    strings.TrimSpace(in.Description),
		FreshUntil:     in.FreshUntil,
		PickupTime:     strings.TrimSpace(in.PickupTime),
		PickupLocation: strings.TrimSpace(in.PickupLocation),
		ContactInfo:    strings.TrimSpace(in.ContactInfo),
		Photos:         photos,
		DonorID:        requester.ID,
		Status:         model.ListingStatusAvailable,
	}
	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	s.metrics.ObserveListingCreated()
	return listing, nil
}

// List returns listings newest first. For authenticated requesters it also
// marks which listings they claimed and reconciles their projection against
// the authoritative store.
func (s *listingService) List(ctx context.Context, filter repository.ListingFilter, requester *auth.Identity) ([]ListingView, error) {
	listings, err := s.listingRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}

	claimedByMe := map[uuid.UUID]bool{}
	if requester != nil {
		claims, err := s.claimRepo.FindByCollector(ctx, requester.ID)
		if err != nil {
			return nil, fmt.Errorf("load requester claims: %w", err)
		}
		for _, claim := range claims {
			claimedByMe[claim.ListingID] = true
		}

		// Reconcile only against a full fetch. A filtered result set omits
		// listings the requester still holds live claims on, and reconciling
		// against it would evict those claims from the projection.
		if filter == (repository.ListingFilter{}) {
			if err := s.projection.Reconcile(ctx, requester.ID, listings); err != nil {
				// Projection is advisory; a failed reconcile must not break reads.
				log.Printf("projection reconcile for %s: %v", requester.ID, err)
			}
		}
	}

	donorNames := map[uuid.UUID]string{}
	views := make([]ListingView, 0, len(listings))
	for _, listing := range listings {
		views = append(views, ListingView{
			FoodListing:        listing,
			DonorName:          s.donorName(ctx, donorNames, listing.DonorID),
			Photos:             decodePhotos(listing.Photos),
			ClaimedByRequester: claimedByMe[listing.ID],
		})
	}
	return views, nil
}

// Get returns a single listing.
func (s *listingService) Get(ctx context.Context, id uuid.UUID) (*ListingView, error) {
	listing, err := s.listingRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.ErrListingNotFound
		}
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return &ListingView{
		FoodListing: *listing,
		DonorName:   s.donorName(ctx, map[uuid.UUID]string{}, listing.DonorID),
		Photos:      decodePhotos(listing.Photos),
	}, nil
}

// Update applies a patch to a listing. Existence is checked before ownership
// so a missing listing is always NotFound regardless of caller.
func (s *listingService) Update(ctx context.Context, id uuid.UUID, requester *auth.Identity, patch ListingPatch) (*model.FoodListing, error) {
	listing, err := s.listingRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.ErrListingNotFound
		}
		return nil, fmt.Errorf("get listing: %w", err)
	}
	if listing.DonorID != requester.ID {
		return nil, errs.ErrNotOwner
	}

	if err := applyPatch(listing, patch); err != nil {
		return nil, err
	}
	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}
	return listing, nil
}

// Delete removes a listing owned by the requester.
func (s *listingService) Delete(ctx context.Context, id uuid.UUID, requester *auth.Identity) error {
	listing, err := s.listingRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.ErrListingNotFound
		}
		return fmt.Errorf("get listing: %w", err)
	}
	if listing.DonorID != requester.ID {
		return errs.ErrNotOwner
	}
	if err := s.listingRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	return nil
}

func (s *listingService) donorName(ctx context.Context, memo map[uuid.UUID]string, donorID uuid.UUID) string {
	if name, ok := memo[donorID]; ok {
		return name
	}
	donor, err := s.userRepo.FindByID(ctx, donorID)
	if err != nil {
		memo[donorID] = ""
		return ""
	}
	memo[donorID] = donor.Name
	return donor.Name
}

// validateListingInput enforces the required-field and freshness rules.
func validateListingInput(in ListingInput) error {
	var missing []string
	required := map[string]string{
		"foodType":       in.FoodType,
		"quantity":       in.Quantity,
		"category":       in.Category,
		"pickupTime":     in.PickupTime,
		"pickupLocation": in.PickupLocation,
		"contactInfo":    in.ContactInfo,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if in.FreshUntil.IsZero() {
		missing = append(missing, "freshUntil")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", errs.ErrValidation, strings.Join(missing, ", "))
	}
	if !in.FreshUntil.After(time.Now()) {
		return fmt.Errorf("%w: freshUntil must be in the future", errs.ErrValidation)
	}
	return nil
}

// applyPatch mutates the listing in place, validating every touched field
// with the same rules as create.
func applyPatch(listing *model.FoodListing, patch ListingPatch) error {
	setRequired := func(field string, dst *string, src *string) error {
		if src == nil {
			return nil
		}
		if strings.TrimSpace(*src) == "" {
			return fmt.Errorf("%w: %s must not be empty", errs.ErrValidation, field)
		}
		*dst = strings.TrimSpace(*src)
		return nil
	}

	if err := setRequired("foodType", &listing.FoodType, patch.FoodType); err != nil {
		return err
	}
	if err := setRequired("quantity", &listing.Quantity, patch.Quantity); err != nil {
		return err
	}
	if err := setRequired("category", &listing.Category, patch.Category); err != nil {
		return err
	}
	if err := setRequired("pickupTime", &listing.PickupTime, patch.PickupTime); err != nil {
		return err
	}
	if err := setRequired("pickupLocation", &listing.PickupLocation, patch.PickupLocation); err != nil {
		return err
	}
	if err := setRequired("contactInfo", &listing.ContactInfo, patch.ContactInfo); err != nil {
		return err
	}
	if patch.Description != nil {
		listing.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.FreshUntil != nil {
		if !patch.FreshUntil.After(time.Now()) {
			return fmt.Errorf("%w: freshUntil must be in the future", errs.ErrValidation)
		}
		listing.FreshUntil = *patch.FreshUntil
	}
	if patch.Photos != nil {
		photos, err := encodePhotos(patch.Photos)
		if err != nil {
			return err
		}
		listing.Photos = photos
	}
	return nil
}

func encodePhotos(photos []string) (string, error) {
	if len(photos) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(photos)
	if err != nil {
		return "", fmt.Errorf("encode photos: %w", err)
	}
	return string(raw), nil
}

func decodePhotos(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var photos []string
	if err := json.Unmarshal([]byte(raw), &photos); err != nil {
		return []string{}
	}
	return photos
}
