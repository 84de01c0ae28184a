package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jim4golf/simsy-reporting-api/internal/model"
	"github.com/jim4golf/simsy-reporting-api/internal/session"
	"github.com/jim4golf/simsy-reporting-api/pkg/database"
	"github.com/jim4golf/simsy-reporting-api/pkg/jwtutil"
	"github.com/jim4golf/simsy-reporting-api/pkg/logger"
	"github.com/jim4golf/simsy-reporting-api/prometheus"
)

// AuthHandler issues and revokes interactive sessions
type AuthHandler struct {
	jwt        *jwtutil.JWTUtil
	store      session.Store
	sessionTTL time.Duration
}

// NewAuthHandler creates an auth handler
func NewAuthHandler(jwt *jwtutil.JWTUtil, store session.Store, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		jwt:        jwt,
		store:      store,
		sessionTTL: sessionTTL,
	}
}

// Login verifies credentials and issues a signed session token. The session
// marker written here is what the resolver checks on every request; deleting
// it revokes the session before token expiry.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.LoginCounter.Inc()

	// Parse request
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	// Find user in database - track DB operation duration
	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().Where("email = ? AND active = ?", req.Email, true).First(&user)
	if result.Error != nil {
		log.Warn("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	customerScope := ""
	if user.CustomerScope != nil {
		customerScope = *user.CustomerScope
	}

	// Generate session token with a fresh token ID
	token, tokenID, err := h.jwt.GenerateToken(user.Email, user.ID, user.TenantID, user.Role, customerScope)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	// Write the revocable session marker
	record := &session.Record{
		TokenID:       tokenID,
		UserID:        user.ID,
		Email:         user.Email,
		TenantID:      user.TenantID,
		Role:          user.Role,
		CustomerScope: customerScope,
	}
	if err := h.store.SaveSession(c.Request().Context(), record, h.sessionTTL); err != nil {
		log.Error("Failed to save session marker", zap.Error(err))
		prometheus.RecordAuthError("session_store_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session error"})
	}

	prometheus.IncreaseActiveSessions()

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.Uint("user_id", user.ID),
		zap.String("tenant_id", user.TenantID),
		zap.String("role", user.Role))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": echo.Map{
			"id":        user.ID,
			"email":     user.Email,
			"tenant_id": user.TenantID,
			"role":      user.Role,
		},
	})
}

// Logout revokes the presented session by deleting its store marker
func (h *AuthHandler) Logout(c echo.Context) error {
	log := logger.FromEcho(c)

	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
	}

	claims, err := h.jwt.ValidateToken(parts[1])
	if err != nil {
		log.Warn("Invalid token on logout", zap.Error(err))
		prometheus.RecordAuthError("invalid_token")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}

	if err := h.store.DeleteSession(c.Request().Context(), claims.ID); err != nil && err != session.ErrNotFound {
		log.Error("Failed to delete session marker", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session error"})
	}

	prometheus.DecreaseActiveSessions()

	log.Info("User logged out", zap.String("email", claims.Email))

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
