package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key has no record. Absence is an expected
// outcome: a missing session marker means the session was revoked or never
// existed.
var ErrNotFound = errors.New("session: record not found")

// Store defines the interface for session and service-token storage
type Store interface {
	// SaveSession stores a session marker under its token ID with the given TTL
	SaveSession(ctx context.Context, record *Record, ttl time.Duration) error
	// GetSession retrieves a session marker; ErrNotFound when absent or expired
	GetSession(ctx context.Context, tokenID string) (*Record, error)
	// DeleteSession removes a session marker, revoking the session
	DeleteSession(ctx context.Context, tokenID string) error

	// SaveServiceToken stores a service-token identity mapping (no expiry)
	SaveServiceToken(ctx context.Context, token *ServiceToken) error
	// GetServiceToken retrieves a service-token mapping; ErrNotFound when absent
	GetServiceToken(ctx context.Context, tokenID string) (*ServiceToken, error)
	// DeleteServiceToken removes a service-token mapping
	DeleteServiceToken(ctx context.Context, tokenID string) error
}

// Record is the revocable marker for one interactive session
type Record struct {
	TokenID       string `json:"token_id"`
	UserID        uint   `json:"user_id"`
	Email         string `json:"email"`
	TenantID      string `json:"tenant_id"`
	Role          string `json:"role"`
	CustomerScope string `json:"customer_scope,omitempty"`
	CreatedAt     int64  `json:"created_at"`
	ExpiresAt     int64  `json:"expires_at"`
}

// ServiceToken maps an opaque long-lived token ID onto a tenant identity for
// programmatic access
type ServiceToken struct {
	TokenID       string `json:"token_id"`
	TenantID      string `json:"tenant_id"`
	Role          string `json:"role"` // 'tenant' or 'customer'
	CustomerScope string `json:"customer_scope,omitempty"`
	Description   string `json:"description,omitempty"`
	CreatedAt     int64  `json:"created_at"`
}
