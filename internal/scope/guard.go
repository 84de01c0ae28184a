package scope

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Guard runs each authenticated request's queries inside one transaction and
// injects the session-local tenant markers the storage layer's row security
// reads. The markers are set with set_config(..., is_local => true), which
// scopes them to the transaction: they cannot survive onto a pooled
// connection once the transaction ends.
type Guard struct {
	pool *pgxpool.Pool
}

// NewGuard creates a transactional scope guard over the given pool
func NewGuard(pool *pgxpool.Pool) *Guard {
	return &Guard{pool: pool}
}

// WithTenantContext opens a transaction, sets the session-local tenant (and,
// for customer identities, customer) markers, and invokes body with the
// transaction handle. Commit happens only when body returns nil; every other
// path, including panics and context cancellation, rolls back through the
// deferred Rollback before the connection returns to the pool.
func (g *Guard) WithTenantContext(ctx context.Context, id *TenantIdentity, body func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return err
	}
	// Rollback after a successful Commit is a no-op
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", id.EffectiveTenant()); err != nil {
		return err
	}

	if id.Role == RoleCustomer {
		if _, err := tx.Exec(ctx, "SELECT set_config('app.customer_name', $1, true)", id.CustomerScope); err != nil {
			return err
		}
	}

	if err := body(ctx, tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
