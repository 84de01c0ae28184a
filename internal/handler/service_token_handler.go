package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/jim4golf/simsy-reporting-api/internal/model"
	"github.com/jim4golf/simsy-reporting-api/internal/scope"
	"github.com/jim4golf/simsy-reporting-api/internal/session"
	"github.com/jim4golf/simsy-reporting-api/pkg/database"
	"github.com/jim4golf/simsy-reporting-api/pkg/logger"
	"github.com/jim4golf/simsy-reporting-api/prometheus"
)

// ServiceTokenHandler manages long-lived programmatic credentials. Routes
// using it sit behind session-only platform-admin middleware.
type ServiceTokenHandler struct {
	store session.Store
}

// NewServiceTokenHandler creates a service token handler
func NewServiceTokenHandler(store session.Store) *ServiceTokenHandler {
	return &ServiceTokenHandler{store: store}
}

// CreateServiceToken mints an opaque token identifying a tenant (or one of
// its customers) for programmatic access
func (h *ServiceTokenHandler) CreateServiceToken(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		TenantID      string `json:"tenant_id"`
		Role          string `json:"role"`
		CustomerScope string `json:"customer_scope,omitempty"`
		Description   string `json:"description,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse service token request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.TenantID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant_id is required"})
	}

	role, ok := scope.ParseRole(req.Role)
	if !ok || role == scope.RolePlatformAdmin {
		// Service tokens never carry platform admin rights
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be 'tenant' or 'customer'"})
	}

	if role == scope.RoleCustomer && req.CustomerScope == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_scope is required for customer role"})
	}

	// The token must point at a real tenant
	var tenant model.Tenant
	if result := database.GetDB().Where("id = ? AND active = ?", req.TenantID, true).First(&tenant); result.Error != nil {
		log.Warn("Service token requested for unknown tenant", zap.String("tenant_id", req.TenantID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}

	token := &session.ServiceToken{
		TokenID:       uuid.New().String(),
		TenantID:      req.TenantID,
		Role:          string(role),
		CustomerScope: req.CustomerScope,
		Description:   req.Description,
	}

	if err := h.store.SaveServiceToken(c.Request().Context(), token); err != nil {
		log.Error("Failed to save service token", zap.Error(err))
		prometheus.RecordAuthError("session_store_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("Service token created",
		zap.String("tenant_id", req.TenantID),
		zap.String("role", string(role)))

	return c.JSON(http.StatusCreated, token)
}

// DeleteServiceToken revokes a programmatic credential
func (h *ServiceTokenHandler) DeleteServiceToken(c echo.Context) error {
	log := logger.FromEcho(c)

	tokenID := c.Param("id")
	if err := h.store.DeleteServiceToken(c.Request().Context(), tokenID); err != nil {
		if err == session.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service token not found"})
		}
		log.Error("Failed to delete service token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("Service token revoked", zap.String("token_id", tokenID))

	return c.JSON(http.StatusOK, echo.Map{"message": "service token revoked"})
}
