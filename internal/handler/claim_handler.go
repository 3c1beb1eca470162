package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sharebite/internal/auth"
	"sharebite/internal/service"
)

// ClaimHandler handles claim and completion endpoints.
type ClaimHandler struct {
	claimService service.ClaimService
}

// NewClaimHandler creates a new claim handler.
func NewClaimHandler(claimService service.ClaimService) *ClaimHandler {
	return &ClaimHandler{claimService: claimService}
}

// Claim godoc
// @Summary Claim an available listing (collector or NGO)
// @Tags claims
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing id"
// @Success 201 {object} model.ClaimRecord
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /food/{id}/claim [post]
func (h *ClaimHandler) Claim(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	id, err := parseListingID(c)
	if err != nil {
		return err
	}

	claim, err := h.claimService.Claim(c.Request().Context(), id, identity)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, claim)
}

// Complete godoc
// @Summary Confirm pickup of a reserved listing (claimant only)
// @Tags claims
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing id"
// @Success 200 {object} model.ClaimRecord
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /food/{id}/complete [post]
func (h *ClaimHandler) Complete(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	id, err := parseListingID(c)
	if err != nil {
		return err
	}

	claim, err := h.claimService.Complete(c.Request().Context(), id, identity)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, claim)
}

// ListMine godoc
// @Summary List the requester's claims, newest first
// @Tags claims
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.ClaimRecord
// @Failure 401 {object} errors.ErrorResponse
// @Router /claims [get]
func (h *ClaimHandler) ListMine(c echo.Context) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	claims, err := h.claimService.ClaimedListings(c.Request().Context(), identity)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, claims)
}
