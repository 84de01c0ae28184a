package scope

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Guard behavior depends on real transaction semantics, so these tests run
// against a live database. Set TEST_DATABASE_URL to a disposable Postgres
// instance to enable them.
func setupGuardTest(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping guard tests")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	// A single connection makes leakage across transactions observable
	cfg.MaxConns = 1

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	ctx := context.Background()
	_, err = pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS tenants (
		id TEXT PRIMARY KEY,
		parent_tenant_id TEXT,
		active BOOLEAN DEFAULT TRUE
	)`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS usage_records (
		id SERIAL PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		customer_name TEXT,
		iccid TEXT,
		bytes_up BIGINT,
		bytes_down BIGINT,
		recorded_at TIMESTAMPTZ
	)`)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx := context.Background()
		pool.Exec(ctx, `DELETE FROM usage_records WHERE tenant_id LIKE 'gt-%'`)
		pool.Exec(ctx, `DELETE FROM tenants WHERE id LIKE 'gt-%'`)
	})

	return pool
}

func seedHierarchy(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	parent := "gt-t1"
	for _, row := range []struct {
		id     string
		parent *string
	}{
		{"gt-t1", nil},
		{"gt-t2", &parent},
		{"gt-t3", nil},
	} {
		_, err := pool.Exec(ctx,
			`INSERT INTO tenants (id, parent_tenant_id) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
			row.id, row.parent)
		require.NoError(t, err)
	}

	for _, tenantID := range []string{"gt-t1", "gt-t2", "gt-t3"} {
		_, err := pool.Exec(ctx,
			`INSERT INTO usage_records (tenant_id, customer_name, bytes_up, bytes_down, recorded_at)
			 VALUES ($1, 'globex', 100, 200, now())`,
			tenantID)
		require.NoError(t, err)
	}
}

func TestGuard_HierarchyVisibility(t *testing.T) {
	pool := setupGuardTest(t)
	seedHierarchy(t, pool)

	guard := NewGuard(pool)
	id := &TenantIdentity{TenantID: "gt-t1", Role: RoleTenant}

	pred, err := TenantPredicate(id, 1)
	require.NoError(t, err)

	var visible []string
	err = guard.WithTenantContext(context.Background(), id, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT DISTINCT tenant_id FROM usage_records WHERE `+pred.Clause+
				` AND tenant_id LIKE 'gt-%' ORDER BY tenant_id`,
			pred.Args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var tenantID string
			if err := rows.Scan(&tenantID); err != nil {
				return err
			}
			visible = append(visible, tenantID)
		}
		return rows.Err()
	})
	require.NoError(t, err)

	// Own tenant and its direct child are visible; the unrelated sibling is not
	assert.Equal(t, []string{"gt-t1", "gt-t2"}, visible)
}

func TestGuard_SetsSessionLocalContext(t *testing.T) {
	pool := setupGuardTest(t)

	guard := NewGuard(pool)
	id := &TenantIdentity{TenantID: "gt-t1", Role: RoleCustomer, CustomerScope: "globex"}

	err := guard.WithTenantContext(context.Background(), id, func(ctx context.Context, tx pgx.Tx) error {
		var tenantID, customer string
		if err := tx.QueryRow(ctx, `SELECT current_setting('app.tenant_id', true)`).Scan(&tenantID); err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, `SELECT current_setting('app.customer_name', true)`).Scan(&customer); err != nil {
			return err
		}
		assert.Equal(t, "gt-t1", tenantID)
		assert.Equal(t, "globex", customer)
		return nil
	})
	require.NoError(t, err)
}

func TestGuard_AdminSetsWildcard(t *testing.T) {
	pool := setupGuardTest(t)

	guard := NewGuard(pool)
	id := &TenantIdentity{TenantID: "gt-ignored", Role: RolePlatformAdmin}

	err := guard.WithTenantContext(context.Background(), id, func(ctx context.Context, tx pgx.Tx) error {
		var tenantID string
		if err := tx.QueryRow(ctx, `SELECT current_setting('app.tenant_id', true)`).Scan(&tenantID); err != nil {
			return err
		}
		assert.Equal(t, TenantWildcard, tenantID)
		return nil
	})
	require.NoError(t, err)
}

func TestGuard_RollbackOnFailure(t *testing.T) {
	pool := setupGuardTest(t)

	guard := NewGuard(pool)
	id := &TenantIdentity{TenantID: "gt-rb", Role: RoleTenant}
	failure := errors.New("handler failed")

	err := guard.WithTenantContext(context.Background(), id, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO usage_records (tenant_id, bytes_up, bytes_down, recorded_at)
			 VALUES ('gt-rb', 1, 1, now())`); err != nil {
			return err
		}
		return failure
	})
	require.ErrorIs(t, err, failure)

	// The write must be absent after rollback, observed from a fresh transaction
	var count int
	err = pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM usage_records WHERE tenant_id = 'gt-rb'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestGuard_ContextDoesNotLeakAcrossTransactions(t *testing.T) {
	pool := setupGuardTest(t)

	guard := NewGuard(pool)
	id := &TenantIdentity{TenantID: "gt-leak", Role: RoleTenant}

	err := guard.WithTenantContext(context.Background(), id, func(ctx context.Context, tx pgx.Tx) error {
		return nil
	})
	require.NoError(t, err)

	// The pool holds a single connection, so this statement reuses the
	// connection the guard just ran on. The transaction-local marker must be
	// gone.
	var setting string
	err = pool.QueryRow(context.Background(),
		`SELECT COALESCE(current_setting('app.tenant_id', true), '')`).Scan(&setting)
	require.NoError(t, err)
	assert.Empty(t, setting)
}
