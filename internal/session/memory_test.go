package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStore_SessionLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	record := &Record{TokenID: "tok1", UserID: 7, Email: "ops@acme.test", TenantID: "t-acme", Role: "tenant"}
	assert.NoError(t, s.SaveSession(ctx, record, time.Minute))

	got, err := s.GetSession(ctx, "tok1")
	assert.NoError(t, err)
	assert.Equal(t, "t-acme", got.TenantID)
	assert.Equal(t, "tenant", got.Role)

	assert.NoError(t, s.DeleteSession(ctx, "tok1"))
	_, err = s.GetSession(ctx, "tok1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again reports absence
	assert.ErrorIs(t, s.DeleteSession(ctx, "tok1"), ErrNotFound)
}

func TestMemoryStore_SessionExpiry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	record := &Record{TokenID: "tok2", TenantID: "t-acme", Role: "tenant"}
	assert.NoError(t, s.SaveSession(ctx, record, -time.Second))

	_, err := s.GetSession(ctx, "tok2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ServiceTokenLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	token := &ServiceToken{TokenID: "svc1", TenantID: "t-acme", Role: "customer", CustomerScope: "globex"}
	assert.NoError(t, s.SaveServiceToken(ctx, token))

	got, err := s.GetServiceToken(ctx, "svc1")
	assert.NoError(t, err)
	assert.Equal(t, "t-acme", got.TenantID)
	assert.Equal(t, "globex", got.CustomerScope)

	_, err = s.GetServiceToken(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.DeleteServiceToken(ctx, "svc1"))
	_, err = s.GetServiceToken(ctx, "svc1")
	assert.ErrorIs(t, err, ErrNotFound)
}
