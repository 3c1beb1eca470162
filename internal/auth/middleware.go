package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"sharebite/internal/model"
)

const (
	identityContextKey = "auth_identity"

	// TokenCookieName is the httpOnly cookie carrying the access token for
	// browser clients. Bearer headers and the cookie are interchangeable.
	TokenCookieName = "token"
)

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	ID    uuid.UUID
	Name  string
	Email string
	Role  model.Role
	Kind  model.IdentityKind
}

// IdentityResolver looks an identity up in its backing collection, refreshing
// name and role from the store on every protected request.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, id uuid.UUID, kind model.IdentityKind) (*Identity, error)
}

// SetIdentity attaches the identity to the request context.
func SetIdentity(c echo.Context, id *Identity) {
	c.Set(identityContextKey, id)
}

// IdentityFrom returns the authenticated identity, if any.
func IdentityFrom(c echo.Context) (*Identity, bool) {
	id, ok := c.Get(identityContextKey).(*Identity)
	return id, ok && id != nil
}

// LoadIdentity resolves the JWT claims placed in context by the echo-jwt
// middleware (configured with JWTService.ValidateToken as its parse func)
// into a full Identity. Runs after token verification, so a missing or
// unresolvable subject is a 401, not a 403.
func LoadIdentity(resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get("user").(*Claims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			identity, err := resolver.ResolveIdentity(c.Request().Context(), claims.SubjectID, claims.Kind)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "identity not found")
			}
			SetIdentity(c, identity)
			return next(c)
		}
	}
}

// OptionalIdentity populates the identity when a valid token is presented,
// and continues anonymously otherwise. Used on public reads so the response
// can carry per-requester claim state without gating access.
func OptionalIdentity(jwtService *JWTService, resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := extractToken(c)
			if raw == "" {
				return next(c)
			}
			claims, err := jwtService.ValidateToken(raw)
			if err != nil {
				return next(c)
			}
			identity, err := resolver.ResolveIdentity(c.Request().Context(), claims.SubjectID, claims.Kind)
			if err != nil {
				return next(c)
			}
			SetIdentity(c, identity)
			return next(c)
		}
	}
}

// RequireRole rejects callers whose role is not in the allowed set.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			for _, role := range roles {
				if identity.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "role not permitted for this operation")
		}
	}
}

// extractToken pulls the raw token from the Authorization header or the
// token cookie, mirroring the echo-jwt dual lookup.
func extractToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// SetTokenCookie delivers the access token as an httpOnly cookie for
// browser clients. The cookie expires with the token it carries, so a
// browser never presents a token that is already dead.
func SetTokenCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(AccessTokenExpiry),
		MaxAge:   int(AccessTokenExpiry.Seconds()),
	})
}

// ClearTokenCookie expires the token cookie.
func ClearTokenCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
