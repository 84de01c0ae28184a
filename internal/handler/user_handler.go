package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jim4golf/simsy-reporting-api/internal/model"
	"github.com/jim4golf/simsy-reporting-api/internal/scope"
	"github.com/jim4golf/simsy-reporting-api/pkg/database"
	"github.com/jim4golf/simsy-reporting-api/pkg/logger"
	"github.com/jim4golf/simsy-reporting-api/prometheus"
)

// ListUsers retrieves all users, optionally filtered by tenant.
// Platform admin only.
func ListUsers(c echo.Context) error {
	log := logger.FromEcho(c)

	defer prometheus.TrackDBOperation("query")(time.Now())

	query := database.GetDB()
	if tenantID := c.QueryParam("tenant_id"); tenantID != "" {
		query = query.Where("tenant_id = ?", tenantID)
	}

	var users []model.User
	if result := query.Order("id").Find(&users); result.Error != nil {
		log.Error("Failed to list users", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve users"})
	}

	return c.JSON(http.StatusOK, users)
}

// CreateUser creates a user with a role and tenant assignment.
// Platform admin only.
func CreateUser(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		Email         string `json:"email"`
		Password      string `json:"password"`
		Role          string `json:"role"`
		TenantID      string `json:"tenant_id"`
		CustomerScope string `json:"customer_scope,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse user creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	role, ok := scope.ParseRole(req.Role)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be 'platform_admin', 'tenant' or 'customer'"})
	}

	// Identity invariants enforced at creation time
	if role != scope.RolePlatformAdmin && req.TenantID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant_id is required for non-admin users"})
	}
	if role == scope.RoleCustomer && req.CustomerScope == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_scope is required for customer role"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if req.TenantID != "" {
		var tenant model.Tenant
		if result := database.GetDB().Where("id = ? AND active = ?", req.TenantID, true).First(&tenant); result.Error != nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
	}

	user := model.User{
		Email:    req.Email,
		Password: string(hash),
		Role:     string(role),
		TenantID: req.TenantID,
		Active:   true,
	}
	if req.CustomerScope != "" {
		user.CustomerScope = &req.CustomerScope
	}

	if result := database.GetDB().Create(&user); result.Error != nil {
		log.Error("Failed to create user", zap.Error(result.Error))
		return c.JSON(http.StatusConflict, echo.Map{"error": "user creation failed"})
	}

	log.Info("User created",
		zap.String("email", user.Email),
		zap.String("role", user.Role),
		zap.String("tenant_id", user.TenantID))

	return c.JSON(http.StatusCreated, user)
}

// DeleteUser removes a user. Platform admin only.
func DeleteUser(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := database.GetDB().Delete(&model.User{}, id)
	if result.Error != nil {
		log.Error("Failed to delete user", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete user"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	log.Info("User deleted", zap.Uint64("user_id", id))

	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}
