package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jim4golf/simsy-reporting-api/internal/scope"
	"github.com/jim4golf/simsy-reporting-api/internal/session"
	"github.com/jim4golf/simsy-reporting-api/pkg/config"
	"github.com/jim4golf/simsy-reporting-api/pkg/jwtutil"
)

func newTestResolver(devHeader bool) (*Resolver, *jwtutil.JWTUtil, session.Store) {
	jwt := jwtutil.NewJWTUtil(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
	store := session.NewMemoryStore()
	resolver := NewResolver(jwt, store, &config.AuthConfig{DevTenantHeader: devHeader, SessionTTL: time.Hour})
	return resolver, jwt, store
}

func newTestContext(headers map[string]string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/reports/usage", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestResolve_SessionToken(t *testing.T) {
	resolver, jwt, store := newTestResolver(false)

	signed, tokenID, err := jwt.GenerateToken("ops@acme.test", 7, "t-acme", "tenant", "")
	require.NoError(t, err)
	require.NoError(t, store.SaveSession(context.Background(), &session.Record{
		TokenID:  tokenID,
		UserID:   7,
		Email:    "ops@acme.test",
		TenantID: "t-acme",
		Role:     "tenant",
	}, time.Hour))

	identity := resolver.Resolve(newTestContext(map[string]string{
		"Authorization": "Bearer " + signed,
	}))
	require.NotNil(t, identity)
	assert.Equal(t, "t-acme", identity.TenantID)
	assert.Equal(t, scope.RoleTenant, identity.Role)
	assert.Equal(t, scope.AuthMethodSession, identity.AuthMethod)
	assert.Equal(t, uint(7), identity.UserID)
}

func TestResolve_RevokedSession(t *testing.T) {
	resolver, jwt, store := newTestResolver(false)

	signed, tokenID, err := jwt.GenerateToken("ops@acme.test", 7, "t-acme", "tenant", "")
	require.NoError(t, err)
	require.NoError(t, store.SaveSession(context.Background(), &session.Record{
		TokenID:  tokenID,
		TenantID: "t-acme",
		Role:     "tenant",
	}, time.Hour))
	require.NoError(t, store.DeleteSession(context.Background(), tokenID))

	// The signature still verifies, but the revoked marker must win
	identity := resolver.Resolve(newTestContext(map[string]string{
		"Authorization": "Bearer " + signed,
	}))
	assert.Nil(t, identity)
}

func TestResolve_TamperedToken(t *testing.T) {
	resolver, jwt, store := newTestResolver(false)

	signed, tokenID, err := jwt.GenerateToken("ops@acme.test", 7, "t-acme", "tenant", "")
	require.NoError(t, err)
	require.NoError(t, store.SaveSession(context.Background(), &session.Record{
		TokenID:  tokenID,
		TenantID: "t-acme",
		Role:     "tenant",
	}, time.Hour))

	identity := resolver.Resolve(newTestContext(map[string]string{
		"Authorization": "Bearer " + signed + "x",
	}))
	assert.Nil(t, identity)
}

func TestResolve_MalformedAuthorizationHeader(t *testing.T) {
	resolver, _, _ := newTestResolver(false)

	for _, header := range []string{"Bearer", "Basic abc", "token-without-scheme"} {
		identity := resolver.Resolve(newTestContext(map[string]string{
			"Authorization": header,
		}))
		assert.Nil(t, identity, "header %q must not resolve", header)
	}
}

func TestResolve_ServiceToken(t *testing.T) {
	resolver, _, store := newTestResolver(false)

	require.NoError(t, store.SaveServiceToken(context.Background(), &session.ServiceToken{
		TokenID:       "svc-abc",
		TenantID:      "t-acme",
		Role:          "customer",
		CustomerScope: "globex",
	}))

	identity := resolver.Resolve(newTestContext(map[string]string{
		ServiceTokenHeader: "svc-abc",
	}))
	require.NotNil(t, identity)
	assert.Equal(t, "t-acme", identity.TenantID)
	assert.Equal(t, scope.RoleCustomer, identity.Role)
	assert.Equal(t, "globex", identity.CustomerScope)
	assert.Equal(t, scope.AuthMethodServiceToken, identity.AuthMethod)
}

func TestResolve_UnknownServiceToken(t *testing.T) {
	resolver, _, _ := newTestResolver(false)

	identity := resolver.Resolve(newTestContext(map[string]string{
		ServiceTokenHeader: "never-issued",
	}))
	assert.Nil(t, identity)
}

func TestResolve_DevTenantHeader(t *testing.T) {
	resolver, _, _ := newTestResolver(true)

	identity := resolver.Resolve(newTestContext(map[string]string{
		DevTenantHeader: "t-acme",
	}))
	require.NotNil(t, identity)
	assert.Equal(t, "t-acme", identity.TenantID)
	assert.Equal(t, scope.RoleTenant, identity.Role)
	assert.Equal(t, scope.AuthMethodServiceToken, identity.AuthMethod)
}

func TestResolve_DevTenantHeaderDisabled(t *testing.T) {
	resolver, _, _ := newTestResolver(false)

	identity := resolver.Resolve(newTestContext(map[string]string{
		DevTenantHeader: "t-acme",
	}))
	assert.Nil(t, identity)
}

func TestResolve_PriorityOrder(t *testing.T) {
	resolver, jwt, store := newTestResolver(true)

	signed, tokenID, err := jwt.GenerateToken("ops@acme.test", 7, "t-session", "tenant", "")
	require.NoError(t, err)
	require.NoError(t, store.SaveSession(context.Background(), &session.Record{
		TokenID:  tokenID,
		TenantID: "t-session",
		Role:     "tenant",
	}, time.Hour))
	require.NoError(t, store.SaveServiceToken(context.Background(), &session.ServiceToken{
		TokenID:  "svc-abc",
		TenantID: "t-service",
		Role:     "tenant",
	}))

	// All three credentials present: the session token wins
	identity := resolver.Resolve(newTestContext(map[string]string{
		"Authorization":    "Bearer " + signed,
		ServiceTokenHeader: "svc-abc",
		DevTenantHeader:    "t-dev",
	}))
	require.NotNil(t, identity)
	assert.Equal(t, "t-session", identity.TenantID)
	assert.Equal(t, scope.AuthMethodSession, identity.AuthMethod)

	// Without the session token the service token wins over the dev header
	identity = resolver.Resolve(newTestContext(map[string]string{
		ServiceTokenHeader: "svc-abc",
		DevTenantHeader:    "t-dev",
	}))
	require.NotNil(t, identity)
	assert.Equal(t, "t-service", identity.TenantID)
}

func TestResolve_NoCredentials(t *testing.T) {
	resolver, _, _ := newTestResolver(true)

	identity := resolver.Resolve(newTestContext(nil))
	assert.Nil(t, identity)
}
