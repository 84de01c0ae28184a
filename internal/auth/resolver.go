package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/jim4golf/simsy-reporting-api/internal/scope"
	"github.com/jim4golf/simsy-reporting-api/internal/session"
	"github.com/jim4golf/simsy-reporting-api/pkg/config"
	"github.com/jim4golf/simsy-reporting-api/pkg/jwtutil"
	"github.com/jim4golf/simsy-reporting-api/pkg/logger"
	"github.com/jim4golf/simsy-reporting-api/prometheus"
)

// Header carrying the opaque service-token identifier for programmatic access
const ServiceTokenHeader = "X-Service-Token"

// Development-only header naming a tenant directly; honored only when the
// config flag is set and never in production
const DevTenantHeader = "X-Tenant-ID"

// Resolver extracts a bearer credential from an inbound request and resolves
// it to a tenant identity. Every failure path resolves to nil; the caller
// maps nil onto an unauthenticated response.
type Resolver struct {
	jwt             *jwtutil.JWTUtil
	store           session.Store
	devTenantHeader bool
}

// NewResolver creates a credential resolver
func NewResolver(jwt *jwtutil.JWTUtil, store session.Store, cfg *config.AuthConfig) *Resolver {
	return &Resolver{
		jwt:             jwt,
		store:           store,
		devTenantHeader: cfg.DevTenantHeader,
	}
}

// Resolve tries the supported credential kinds in fixed priority order:
// signed session token, opaque service token, then the development tenant
// header. It returns nil on any resolution failure and has no side effects
// beyond session store reads.
func (r *Resolver) Resolve(c echo.Context) *scope.TenantIdentity {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	// 1. Bearer session token
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			prometheus.RecordAuthError("invalid_auth_format")
			return nil
		}

		claims, err := r.jwt.ValidateToken(parts[1])
		if err != nil {
			log.Warn("Invalid or expired session token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return nil
		}

		// A valid signature is not enough: logout and revocation must take
		// effect before token expiry, so the session marker has to still be
		// present in the store.
		record, err := r.store.GetSession(ctx, claims.ID)
		if err != nil {
			if err == session.ErrNotFound {
				log.Warn("Session revoked or unknown", zap.String("token_id", claims.ID))
				prometheus.RecordAuthError("session_revoked")
			} else {
				log.Error("Session store lookup failed", zap.Error(err))
				prometheus.RecordAuthError("session_store_error")
			}
			return nil
		}

		role, ok := scope.ParseRole(record.Role)
		if !ok {
			log.Error("Session record carries unknown role", zap.String("role", record.Role))
			prometheus.RecordAuthError("unknown_role")
			return nil
		}

		return &scope.TenantIdentity{
			TenantID:      record.TenantID,
			Role:          role,
			CustomerScope: record.CustomerScope,
			AuthMethod:    scope.AuthMethodSession,
			UserID:        record.UserID,
			Email:         record.Email,
		}
	}

	// 2. Opaque service token
	if tokenID := c.Request().Header.Get(ServiceTokenHeader); tokenID != "" {
		token, err := r.store.GetServiceToken(ctx, tokenID)
		if err != nil {
			if err == session.ErrNotFound {
				// Repeated unknown tokens are expected scanning noise
				log.Warn("Unknown service token")
				prometheus.RecordAuthError("unknown_service_token")
			} else {
				log.Error("Session store lookup failed", zap.Error(err))
				prometheus.RecordAuthError("session_store_error")
			}
			return nil
		}

		role, ok := scope.ParseRole(token.Role)
		if !ok {
			log.Error("Service token carries unknown role", zap.String("role", token.Role))
			prometheus.RecordAuthError("unknown_role")
			return nil
		}

		return &scope.TenantIdentity{
			TenantID:      token.TenantID,
			Role:          role,
			CustomerScope: token.CustomerScope,
			AuthMethod:    scope.AuthMethodServiceToken,
		}
	}

	// 3. Development fallback: raw tenant header
	if r.devTenantHeader {
		if tenantID := c.Request().Header.Get(DevTenantHeader); tenantID != "" {
			log.Warn("Resolved identity from development tenant header",
				zap.String("tenant_id", tenantID))
			// Treated like a service token: no principal, no session rights
			return &scope.TenantIdentity{
				TenantID:   tenantID,
				Role:       scope.RoleTenant,
				AuthMethod: scope.AuthMethodServiceToken,
			}
		}
	}

	return nil
}
