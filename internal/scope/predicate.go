package scope

import (
	"fmt"
)

// Predicate is the tenant-visibility filter every data query must AND into
// its WHERE clause. Clause only ever references bind placeholders; all
// variable data travels through Args. Callers appending further filters
// continue numbering their placeholders at NextIndex.
type Predicate struct {
	Clause    string
	Args      []interface{}
	NextIndex int
}

// TenantPredicate builds the visibility predicate for an identity, with bind
// placeholders numbered from startIndex.
//
// Platform admins get the tautology with no bound parameters, so callers can
// AND the result in without special-casing admin. Tenant and customer roles
// match rows owned by the identity's tenant or by a direct child tenant; the
// tenant ID is bound once and the placeholder reused on both sides of the OR.
//
// An unrecognized role is a programming error: the function returns an error
// instead of degrading to an unscoped predicate, and callers must fail the
// request on it.
func TenantPredicate(id *TenantIdentity, startIndex int) (Predicate, error) {
	switch id.Role {
	case RolePlatformAdmin:
		return Predicate{
			Clause:    "TRUE",
			NextIndex: startIndex,
		}, nil

	case RoleTenant, RoleCustomer:
		clause := fmt.Sprintf(
			"(tenant_id = $%d OR tenant_id IN (SELECT id FROM tenants WHERE parent_tenant_id = $%d))",
			startIndex, startIndex,
		)
		return Predicate{
			Clause:    clause,
			Args:      []interface{}{id.TenantID},
			NextIndex: startIndex + 1,
		}, nil

	default:
		return Predicate{}, fmt.Errorf("scope: unrecognized role %q in tenant predicate", id.Role)
	}
}
