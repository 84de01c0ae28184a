package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"platform_admin", "tenant", "customer"} {
		role, ok := ParseRole(valid)
		assert.True(t, ok)
		assert.Equal(t, Role(valid), role)
	}

	for _, invalid := range []string{"", "admin", "PLATFORM_ADMIN", "owner"} {
		_, ok := ParseRole(invalid)
		assert.False(t, ok, "role %q must not parse", invalid)
	}
}

func TestEffectiveTenant(t *testing.T) {
	admin := &TenantIdentity{TenantID: "ignored", Role: RolePlatformAdmin}
	assert.Equal(t, TenantWildcard, admin.EffectiveTenant())

	tenant := &TenantIdentity{TenantID: "t-acme", Role: RoleTenant}
	assert.Equal(t, "t-acme", tenant.EffectiveTenant())

	customer := &TenantIdentity{TenantID: "t-acme", Role: RoleCustomer, CustomerScope: "globex"}
	assert.Equal(t, "t-acme", customer.EffectiveTenant())
}
