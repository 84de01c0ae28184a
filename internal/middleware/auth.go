package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/jim4golf/simsy-reporting-api/internal/auth"
	"github.com/jim4golf/simsy-reporting-api/internal/scope"
	"github.com/jim4golf/simsy-reporting-api/pkg/logger"
	"github.com/jim4golf/simsy-reporting-api/prometheus"
)

// identityContextKey is the echo context key under which the resolved tenant
// identity is stored for the request lifetime
const identityContextKey = "tenant_identity"

// AuthMiddleware resolves the caller's credential to a tenant identity and
// rejects the request when no identity can be resolved
func AuthMiddleware(resolver *auth.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			identity := resolver.Resolve(c)
			if identity == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			c.Set(identityContextKey, identity)

			log.Debug("Request authenticated",
				zap.String("tenant_id", identity.TenantID),
				zap.String("role", string(identity.Role)),
				zap.String("auth_method", string(identity.AuthMethod)))

			return next(c)
		}
	}
}

// RequireSessionAuth rejects identities that were not derived from an
// interactive session. Admin mutation endpoints sit behind it so long-lived
// service tokens cannot drive them.
func RequireSessionAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		if identity.AuthMethod != scope.AuthMethodSession {
			logger.FromEcho(c).Warn("Non-session credential on session-only endpoint",
				zap.String("auth_method", string(identity.AuthMethod)))
			prometheus.RecordAuthError("session_auth_required")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "session authentication required"})
		}

		return next(c)
	}
}

// RequirePlatformAdmin rejects non-admin identities
func RequirePlatformAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		if !identity.IsAdmin() {
			logger.FromEcho(c).Warn("Insufficient role for admin endpoint",
				zap.String("role", string(identity.Role)))
			prometheus.RecordAuthError("admin_required")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
		}

		return next(c)
	}
}

// IdentityFromContext retrieves the resolved tenant identity from the context
func IdentityFromContext(c echo.Context) (*scope.TenantIdentity, bool) {
	identity, ok := c.Get(identityContextKey).(*scope.TenantIdentity)
	return identity, ok
}
