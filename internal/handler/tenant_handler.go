package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/jim4golf/simsy-reporting-api/internal/middleware"
	"github.com/jim4golf/simsy-reporting-api/internal/model"
	"github.com/jim4golf/simsy-reporting-api/pkg/database"
	"github.com/jim4golf/simsy-reporting-api/pkg/logger"
	"github.com/jim4golf/simsy-reporting-api/prometheus"
)

// ListTenants retrieves the tenants visible to the caller: all tenants for
// platform admins, otherwise the caller's own tenant plus its direct
// children. This mirrors the visibility rule the query builder applies on
// the report tables.
func ListTenants(c echo.Context) error {
	log := logger.FromEcho(c)

	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	query := database.GetDB().Where("active = ?", true)
	if !identity.IsAdmin() {
		query = query.Where("id = ? OR parent_tenant_id = ?", identity.TenantID, identity.TenantID)
	}

	var tenants []model.Tenant
	if result := query.Order("id").Find(&tenants); result.Error != nil {
		log.Error("Failed to list tenants", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve tenants"})
	}

	return c.JSON(http.StatusOK, tenants)
}
