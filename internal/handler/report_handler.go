package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/jim4golf/simsy-reporting-api/internal/middleware"
	"github.com/jim4golf/simsy-reporting-api/internal/scope"
	"github.com/jim4golf/simsy-reporting-api/pkg/logger"
	"github.com/jim4golf/simsy-reporting-api/prometheus"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// ReportHandler serves the paginated reporting endpoints. Every query runs
// inside the transactional scope guard and starts from the tenant predicate;
// report-specific filters are appended after it.
type ReportHandler struct {
	guard *scope.Guard
}

// NewReportHandler creates a report handler
func NewReportHandler(guard *scope.Guard) *ReportHandler {
	return &ReportHandler{guard: guard}
}

// scopeFilter assembles the WHERE conditions every report query shares: the
// tenant-visibility predicate, the forced customer filter for customer-role
// identities (or the optional ?customer= filter for wider roles), and the
// explicit ?tenant_id= override platform admins may supply. Placeholders are
// numbered from startIndex onward; report-specific filters continue at the
// returned next index.
func scopeFilter(c echo.Context, id *scope.TenantIdentity, startIndex int) ([]string, []interface{}, int, error) {
	pred, err := scope.TenantPredicate(id, startIndex)
	if err != nil {
		return nil, nil, 0, err
	}

	conds := []string{pred.Clause}
	args := append([]interface{}{}, pred.Args...)
	idx := pred.NextIndex

	if id.Role == scope.RoleCustomer {
		// Customer identities are always narrowed to their own partition
		conds = append(conds, fmt.Sprintf("customer_name = $%d", idx))
		args = append(args, id.CustomerScope)
		idx++
	} else if customer := c.QueryParam("customer"); customer != "" {
		conds = append(conds, fmt.Sprintf("customer_name = $%d", idx))
		args = append(args, customer)
		idx++
	}

	if id.IsAdmin() {
		if tenantID := c.QueryParam("tenant_id"); tenantID != "" {
			conds = append(conds, fmt.Sprintf("tenant_id = $%d", idx))
			args = append(args, tenantID)
			idx++
		}
	}

	return conds, args, idx, nil
}

// parsePagination reads page/limit query parameters with sane bounds
func parsePagination(c echo.Context) (page, limit, offset int) {
	page = 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}

	limit = defaultPageSize
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 {
		limit = l
		if limit > maxPageSize {
			limit = maxPageSize
		}
	}

	return page, limit, (page - 1) * limit
}

// parseDay parses a YYYY-MM-DD query parameter
func parseDay(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

// UsageReport aggregates data usage per day across the caller's visible tenants
func (h *ReportHandler) UsageReport(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordReportOperation("usage")

	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	conds, args, idx, err := scopeFilter(c, identity, 1)
	if err != nil {
		log.Error("Tenant predicate failed", zap.Error(err))
		prometheus.RecordScopeViolation()
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	// Optional date range
	if start := c.QueryParam("start"); start != "" {
		day, err := parseDay(start)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start date, expected YYYY-MM-DD"})
		}
		conds = append(conds, fmt.Sprintf("recorded_at >= $%d", idx))
		args = append(args, day)
		idx++
	}
	if end := c.QueryParam("end"); end != "" {
		day, err := parseDay(end)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end date, expected YYYY-MM-DD"})
		}
		conds = append(conds, fmt.Sprintf("recorded_at < $%d", idx))
		args = append(args, day)
		idx++
	}

	page, limit, offset := parsePagination(c)
	query := fmt.Sprintf(`
		SELECT recorded_at::date AS day,
		       COUNT(*) AS samples,
		       SUM(bytes_up) AS bytes_up,
		       SUM(bytes_down) AS bytes_down
		FROM usage_records
		WHERE %s
		GROUP BY day
		ORDER BY day DESC
		LIMIT $%d OFFSET $%d`,
		strings.Join(conds, " AND "), idx, idx+1)
	args = append(args, limit, offset)

	type usageDay struct {
		Day       time.Time `json:"day"`
		Samples   int64     `json:"samples"`
		BytesUp   int64     `json:"bytes_up"`
		BytesDown int64     `json:"bytes_down"`
	}
	var days []usageDay

	defer prometheus.TrackDBOperation("query")(time.Now())
	err = h.guard.WithTenantContext(c.Request().Context(), identity, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var d usageDay
			if err := rows.Scan(&d.Day, &d.Samples, &d.BytesUp, &d.BytesDown); err != nil {
				return err
			}
			days = append(days, d)
		}
		return rows.Err()
	})
	if err != nil {
		log.Error("Usage report query failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve usage report"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":  days,
		"page":  page,
		"limit": limit,
	})
}

// BundleReport lists billing bundles visible to the caller
func (h *ReportHandler) BundleReport(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordReportOperation("bundles")

	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	conds, args, idx, err := scopeFilter(c, identity, 1)
	if err != nil {
		log.Error("Tenant predicate failed", zap.Error(err))
		prometheus.RecordScopeViolation()
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	conds = append(conds, "deleted_at IS NULL")

	if active := c.QueryParam("active"); active != "" {
		flag, err := strconv.ParseBool(active)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid active flag"})
		}
		conds = append(conds, fmt.Sprintf("active = $%d", idx))
		args = append(args, flag)
		idx++
	}

	page, limit, offset := parsePagination(c)
	query := fmt.Sprintf(`
		SELECT id, tenant_id, customer_name, name, data_limit_mb,
		       price_cents, currency, starts_at, expires_at, active
		FROM bundles
		WHERE %s
		ORDER BY expires_at DESC
		LIMIT $%d OFFSET $%d`,
		strings.Join(conds, " AND "), idx, idx+1)
	args = append(args, limit, offset)

	type bundleRow struct {
		ID           uint      `json:"id"`
		TenantID     string    `json:"tenant_id"`
		CustomerName string    `json:"customer_name"`
		Name         string    `json:"name"`
		DataLimitMB  int64     `json:"data_limit_mb"`
		PriceCents   int64     `json:"price_cents"`
		Currency     string    `json:"currency"`
		StartsAt     time.Time `json:"starts_at"`
		ExpiresAt    time.Time `json:"expires_at"`
		Active       bool      `json:"active"`
	}
	var bundles []bundleRow

	defer prometheus.TrackDBOperation("query")(time.Now())
	err = h.guard.WithTenantContext(c.Request().Context(), identity, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var b bundleRow
			if err := rows.Scan(&b.ID, &b.TenantID, &b.CustomerName, &b.Name, &b.DataLimitMB,
				&b.PriceCents, &b.Currency, &b.StartsAt, &b.ExpiresAt, &b.Active); err != nil {
				return err
			}
			bundles = append(bundles, b)
		}
		return rows.Err()
	})
	if err != nil {
		log.Error("Bundle report query failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve bundles"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":  bundles,
		"page":  page,
		"limit": limit,
	})
}

// ListEndpoints lists SIM device endpoints visible to the caller
func (h *ReportHandler) ListEndpoints(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordReportOperation("endpoints")

	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	conds, args, idx, err := scopeFilter(c, identity, 1)
	if err != nil {
		log.Error("Tenant predicate failed", zap.Error(err))
		prometheus.RecordScopeViolation()
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	conds = append(conds, "deleted_at IS NULL")

	if status := c.QueryParam("status"); status != "" {
		conds = append(conds, fmt.Sprintf("status = $%d", idx))
		args = append(args, status)
		idx++
	}

	page, limit, offset := parsePagination(c)
	query := fmt.Sprintf(`
		SELECT id, tenant_id, customer_name, iccid, imsi, msisdn,
		       label, status, last_seen_at
		FROM endpoints
		WHERE %s
		ORDER BY iccid
		LIMIT $%d OFFSET $%d`,
		strings.Join(conds, " AND "), idx, idx+1)
	args = append(args, limit, offset)

	type endpointRow struct {
		ID           uint       `json:"id"`
		TenantID     string     `json:"tenant_id"`
		CustomerName string     `json:"customer_name"`
		ICCID        string     `json:"iccid"`
		IMSI         string     `json:"imsi"`
		MSISDN       string     `json:"msisdn"`
		Label        string     `json:"label"`
		Status       string     `json:"status"`
		LastSeenAt   *time.Time `json:"last_seen_at,omitempty"`
	}
	var endpoints []endpointRow

	defer prometheus.TrackDBOperation("query")(time.Now())
	err = h.guard.WithTenantContext(c.Request().Context(), identity, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var e endpointRow
			if err := rows.Scan(&e.ID, &e.TenantID, &e.CustomerName, &e.ICCID, &e.IMSI, &e.MSISDN,
				&e.Label, &e.Status, &e.LastSeenAt); err != nil {
				return err
			}
			endpoints = append(endpoints, e)
		}
		return rows.Err()
	})
	if err != nil {
		log.Error("Endpoint report query failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve endpoints"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":  endpoints,
		"page":  page,
		"limit": limit,
	})
}
