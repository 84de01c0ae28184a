package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"

	"github.com/jim4golf/simsy-reporting-api/pkg/config"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	s, err := NewRedisStore(&config.RedisConfig{Addr: mr.Addr()})
	if err != nil {
		mr.Close()
		t.Fatalf("failed to create RedisStore: %v", err)
	}
	return s, mr
}

func TestRedisStore_SessionLifecycle(t *testing.T) {
	s, mr := newTestRedisStore(t)
	defer mr.Close()

	ctx := context.Background()

	record := &Record{TokenID: "tok1", UserID: 7, Email: "ops@acme.test", TenantID: "t-acme", Role: "tenant"}
	assert.NoError(t, s.SaveSession(ctx, record, time.Minute))

	got, err := s.GetSession(ctx, "tok1")
	assert.NoError(t, err)
	assert.Equal(t, "t-acme", got.TenantID)
	assert.Equal(t, uint(7), got.UserID)

	assert.NoError(t, s.DeleteSession(ctx, "tok1"))
	_, err = s.GetSession(ctx, "tok1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteSession(ctx, "tok1"), ErrNotFound)
}

func TestRedisStore_SessionTTL(t *testing.T) {
	s, mr := newTestRedisStore(t)
	defer mr.Close()

	ctx := context.Background()

	record := &Record{TokenID: "tok2", TenantID: "t-acme", Role: "tenant"}
	assert.NoError(t, s.SaveSession(ctx, record, time.Minute))

	// Past the TTL the marker is gone: the session is no longer resolvable
	mr.FastForward(2 * time.Minute)

	_, err := s.GetSession(ctx, "tok2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_ServiceTokenLifecycle(t *testing.T) {
	s, mr := newTestRedisStore(t)
	defer mr.Close()

	ctx := context.Background()

	token := &ServiceToken{TokenID: "svc1", TenantID: "t-acme", Role: "customer", CustomerScope: "globex"}
	assert.NoError(t, s.SaveServiceToken(ctx, token))

	got, err := s.GetServiceToken(ctx, "svc1")
	assert.NoError(t, err)
	assert.Equal(t, "customer", got.Role)
	assert.Equal(t, "globex", got.CustomerScope)

	_, err = s.GetServiceToken(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.DeleteServiceToken(ctx, "svc1"))
	_, err = s.GetServiceToken(ctx, "svc1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewRedisStore_ConnectionError(t *testing.T) {
	// invalid address should fail to ping
	s, err := NewRedisStore(&config.RedisConfig{Addr: "127.0.0.1:0"})
	assert.Nil(t, s)
	assert.Error(t, err)
}
