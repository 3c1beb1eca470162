package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sharebite/internal/auth"
	"sharebite/internal/service"
)

// NgoHandler handles NGO registration and login.
type NgoHandler struct {
	authService service.AuthService
}

// NewNgoHandler creates a new NGO handler.
func NewNgoHandler(authService service.AuthService) *NgoHandler {
	return &NgoHandler{authService: authService}
}

// NgoRegisterRequest represents an NGO registration request.
type NgoRegisterRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	Phone        string `json:"phone" validate:"required"`
	Address      string `json:"address" validate:"required"`
	Nickname     string `json:"nickname"`
	Availability string `json:"availability"`
}

// Register godoc
// @Summary Register an NGO account
// @Tags ngo
// @Accept json
// @Produce json
// @Param request body NgoRegisterRequest true "NGO registration data"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /ngo/register [post]
func (h *NgoHandler) Register(c echo.Context) error {
	var req NgoRegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tokens, ngo, err := h.authService.RegisterNgo(c.Request().Context(), service.NgoRegistration{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Phone:        req.Phone,
		Address:      req.Address,
		Nickname:     req.Nickname,
		Availability: req.Availability,
	})
	if err != nil {
		return errorResponse(c, err)
	}

	auth.SetTokenCookie(c, tokens.AccessToken)
	return c.JSON(http.StatusCreated, AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         ngo,
	})
}

// Login godoc
// @Summary Login an NGO account
// @Tags ngo
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /ngo/login [post]
func (h *NgoHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tokens, ngo, err := h.authService.LoginNgo(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return errorResponse(c, err)
	}

	auth.SetTokenCookie(c, tokens.AccessToken)
	return c.JSON(http.StatusOK, AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         ngo,
	})
}
