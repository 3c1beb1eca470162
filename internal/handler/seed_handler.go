package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"sharebite/internal/model"
	"sharebite/internal/repository"
)

const seedDonorEmail = "demo-donor@sharebite.local"

// SeedHandler populates demo data for UI development.
type SeedHandler struct {
	userRepo    repository.UserRepository
	listingRepo repository.ListingRepository
}

// NewSeedHandler creates a new seed handler.
func NewSeedHandler(userRepo repository.UserRepository, listingRepo repository.ListingRepository) *SeedHandler {
	return &SeedHandler{userRepo: userRepo, listingRepo: listingRepo}
}

// SeedListings godoc
// @Summary Create a demo donor and sample listings (idempotent)
// @Tags seed
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} errors.ErrorResponse
// @Router /seed/listings [get]
func (h *SeedHandler) SeedListings(c echo.Context) error {
	ctx := c.Request().Context()

	donor, err := h.ensureDemoDonor(ctx)
	if err != nil {
		return errorResponse(c, err)
	}

	existing, err := h.listingRepo.List(ctx, repository.ListingFilter{})
	if err != nil {
		return errorResponse(c, err)
	}
	for _, listing := range existing {
		if listing.DonorID == donor.ID {
			return c.JSON(http.StatusOK, map[string]interface{}{
				"message": "demo data already present",
				"donor":   donor.Email,
			})
		}
	}

	created := 0
	for _, sample := range sampleListings(donor.ID) {
		listing := sample
		if err := h.listingRepo.Create(ctx, &listing); err != nil {
			return errorResponse(c, err)
		}
		created++
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "demo data created",
		"donor":    donor.Email,
		"listings": created,
	})
}

func (h *SeedHandler) ensureDemoDonor(ctx context.Context) (*model.User, error) {
	donor, err := h.userRepo.FindByEmail(ctx, seedDonorEmail)
	if err == nil {
		return donor, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	donor = &model.User{
		Name:         "Demo Donor",
		Email:        seedDonorEmail,
		PasswordHash: string(hashed),
		Role:         model.RoleDonor,
	}
	if err := h.userRepo.Create(ctx, donor); err != nil {
		return nil, err
	}
	return donor, nil
}

func sampleListings(donorID uuid.UUID) []model.FoodListing {
	freshUntil := time.Now().Add(6 * time.Hour)
	return []model.FoodListing{
		{
			FoodType:       "Fresh Bread",
			Quantity:       "10 loaves",
			Category:       "bakery",
			Description:    "Sourdough and whole wheat from today's bake",
			FreshUntil:     freshUntil,
			PickupTime:     "Today, 6pm-8pm",
			PickupLocation: "Corner Bakery, 12 Main St",
			ContactInfo:    "+1 555 0100",
			Photos:         "[]",
			DonorID:        donorID,
			Status:         model.ListingStatusAvailable,
		},
		{
			FoodType:       "Vegetable Curry",
			Quantity:       "8 portions",
			Category:       "cooked",
			Description:    "Surplus from lunch service, refrigerated",
			FreshUntil:     freshUntil,
			PickupTime:     "Today, before 9pm",
			PickupLocation: "Green Leaf Cafe, 45 Oak Ave",
			ContactInfo:    "+1 555 0101",
			Photos:         "[]",
			DonorID:        donorID,
			Status:         model.ListingStatusAvailable,
		},
		{
			FoodType:       "Mixed Fruit",
			Quantity:       "5 kg",
			Category:       "produce",
			Description:    "Slightly bruised but fresh apples and bananas",
			FreshUntil:     time.Now().Add(24 * time.Hour),
			PickupTime:     "Tomorrow morning",
			PickupLocation: "Fresh Mart, 3 Station Rd",
			ContactInfo:    "+1 555 0102",
			Photos:         "[]",
			DonorID:        donorID,
			Status:         model.ListingStatusAvailable,
		},
	}
}
