package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"sharebite/internal/auth"
	"sharebite/internal/config"
	"sharebite/internal/handler"
	"sharebite/internal/model"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	resolver auth.IdentityResolver,
	authHandler *handler.AuthHandler,
	ngoHandler *handler.NgoHandler,
	listingHandler *handler.ListingHandler,
	claimHandler *handler.ClaimHandler,
	notificationHandler *handler.NotificationHandler,
	seedHandler *handler.SeedHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.ClientOrigin},
		AllowCredentials: true,
	}))
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(cfg.RateLimitMax) / cfg.RateLimitWindow.Seconds()),
			Burst:     cfg.RateLimitMax,
			ExpiresIn: cfg.RateLimitWindow,
		},
	)))

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)
	api.POST("/ngo/register", ngoHandler.Register)
	api.POST("/ngo/login", ngoHandler.Login)
	api.GET("/seed/listings", seedHandler.SeedListings)

	// Public reads carry per-requester claim state when a valid token is
	// presented, so they get the optional variant instead of the JWT gate.
	api.GET("/food", listingHandler.List, auth.OptionalIdentity(jwtService, resolver))
	api.GET("/food/:id", listingHandler.Get)

	// Secured routes: token via Authorization header or the token cookie,
	// verified through the same JWTService either way.
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ,cookie:" + auth.TokenCookieName,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.ValidateToken(token)
		},
	}), auth.LoadIdentity(resolver))

	secured.GET("/me", authHandler.Me)

	// Listing mutation. Create is donor-gated up front; update and delete
	// rely on the service's existence-then-ownership checks so a missing
	// listing is NotFound for every caller, never Forbidden.
	secured.POST("/food", listingHandler.Create, auth.RequireRole(model.RoleDonor))
	secured.PUT("/food/:id", listingHandler.Update)
	secured.DELETE("/food/:id", listingHandler.Delete)

	// Claims (collector and NGO roles)
	secured.POST("/food/:id/claim", claimHandler.Claim, auth.RequireRole(model.RoleCollector, model.RoleNgo))
	secured.POST("/food/:id/complete", claimHandler.Complete, auth.RequireRole(model.RoleCollector, model.RoleNgo))
	secured.GET("/claims", claimHandler.ListMine)

	// Notifications
	secured.GET("/notifications", notificationHandler.List)
	secured.DELETE("/notifications", notificationHandler.ClearAll)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
