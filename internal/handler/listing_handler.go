package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"sharebite/internal/auth"
	errs "sharebite/internal/errors"
	"sharebite/internal/model"
	"sharebite/internal/repository"
	"sharebite/internal/service"
)

// ListingHandler handles food listing endpoints.
type ListingHandler struct {
	listingService service.ListingService
}

// NewListingHandler creates a new listing handler.
func NewListingHandler(listingService service.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

// CreateListingRequest represents a listing creation request.
type CreateListingRequest struct {
	FoodType       string    `json:"food_type" validate:"required"`
	Quantity       string    `json:"quantity" validate:"required"`
	Category       string    `json:"category" validate:"required"`
	Description    string    `json:"description"`
	FreshUntil     time.Time `json:"fresh_until" validate:"required"`
	PickupTime     string    `json:"pickup_time" validate:"required"`
	PickupLocation string    `json:"pickup_location" validate:"required"`
	ContactInfo    string    `json:"contact_info" validate:"required"`
	Photos         []string  `json:"photos"`
}

// UpdateListingRequest represents a partial listing update. Absent fields
// are left untouched.
type UpdateListingRequest struct {
	FoodType       *string    `json:"food_type"`
	Quantity       *string    `json:"quantity"`
	Category       *string    `json:"category"`
	Description    *string    `json:"description"`
	FreshUntil     *time.Time `json:"fresh_until"`
	PickupTime     *string    `json:"pickup_time"`
	PickupLocation *string    `json:"pickup_location"`
	ContactInfo    *string    `json:"contact_info"`
	Photos         []string   `json:"photos"`
}

// Create godoc
// @Summary Create a food listing
// @Tags food
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateListingRequest true "Listing data"
// @Success 201 {object} model.FoodListing
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /food [post]
func (h *ListingHandler) Create(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req CreateListingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	listing, err := h.listingService.Create(c.Request().Context(), identity, service.ListingInput{
		FoodType:       req.FoodType,
		Quantity:       req.Quantity,
		Category:       req.Category,
		Description:    req.Description,
		FreshUntil:     req.FreshUntil,
		PickupTime:     req.PickupTime,
		PickupLocation: req.PickupLocation,
		ContactInfo:    req.ContactInfo,
		Photos:         req.Photos,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, listing)
}

// List godoc
// @Summary List food listings, newest first
// @Tags food
// @Produce json
// @Param status query string false "Filter by status (available, reserved, completed)"
// @Param category query string false "Filter by category"
// @Success 200 {array} service.ListingView
// @Router /food [get]
func (h *ListingHandler) List(c echo.Context) error {
	filter := repository.ListingFilter{
		Status:   model.ListingStatus(c.QueryParam("status")),
		Category: c.QueryParam("category"),
	}

	identity, _ := auth.IdentityFrom(c)
	listings, err := h.listingService.List(c.Request().Context(), filter, identity)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, listings)
}

// Get godoc
// @Summary Get a food listing by id
// @Tags food
// @Produce json
// @Param id path string true "Listing id"
// @Success 200 {object} service.ListingView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /food/{id} [get]
func (h *ListingHandler) Get(c echo.Context) error {
	id, err := parseListingID(c)
	if err != nil {
		return err
	}

	listing, err := h.listingService.Get(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, listing)
}

// Update godoc
// @Summary Update a food listing (owner only)
// @Tags food
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing id"
// @Param request body UpdateListingRequest true "Fields to update"
// @Success 200 {object} model.FoodListing
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /food/{id} [put]
func (h *ListingHandler) Update(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	id, err := parseListingID(c)
	if err != nil {
		return err
	}

	var req UpdateListingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	listing, err := h.listingService.Update(c.Request().Context(), id, identity, service.ListingPatch{
		FoodType:       req.FoodType,
		Quantity:       req.Quantity,
		Category:       req.Category,
		Description:    req.Description,
		FreshUntil:     req.FreshUntil,
		PickupTime:     req.PickupTime,
		PickupLocation: req.PickupLocation,
		ContactInfo:    req.ContactInfo,
		Photos:         req.Photos,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, listing)
}

// Delete godoc
// @Summary Delete a food listing (owner only)
// @Tags food
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing id"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /food/{id} [delete]
func (h *ListingHandler) Delete(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	id, err := parseListingID(c)
	if err != nil {
		return err
	}

	if err := h.listingService.Delete(c.Request().Context(), id, identity); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "listing deleted"})
}

// parseListingID parses the :id path param, rejecting malformed ids before
// any store access.
func parseListingID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, errs.ErrorResponse{
			Error: "malformed listing id",
			Code:  "VALIDATION_ERROR",
		})
	}
	return id, nil
}
