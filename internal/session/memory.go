package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements the Store interface using in-memory storage
type MemoryStore struct {
	mu sync.RWMutex

	sessions      map[string]*Record
	serviceTokens map[string]*ServiceToken
}

// NewMemoryStore creates a new memory store instance
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:      make(map[string]*Record),
		serviceTokens: make(map[string]*ServiceToken),
	}
}

// SaveSession stores a session marker
func (s *MemoryStore) SaveSession(ctx context.Context, record *Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	record.CreatedAt = now.Unix()
	record.ExpiresAt = now.Add(ttl).Unix()
	s.sessions[record.TokenID] = record
	return nil
}

// GetSession retrieves a session marker
func (s *MemoryStore) GetSession(ctx context.Context, tokenID string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.sessions[tokenID]
	if !ok {
		return nil, ErrNotFound
	}
	if record.ExpiresAt < time.Now().Unix() {
		delete(s.sessions, tokenID)
		return nil, ErrNotFound
	}
	return record, nil
}

// DeleteSession removes a session marker
func (s *MemoryStore) DeleteSession(ctx context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[tokenID]; !exists {
		return ErrNotFound
	}

	delete(s.sessions, tokenID)
	return nil
}

// SaveServiceToken stores a service-token mapping
func (s *MemoryStore) SaveServiceToken(ctx context.Context, token *ServiceToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token.CreatedAt = time.Now().Unix()
	s.serviceTokens[token.TokenID] = token
	return nil
}

// GetServiceToken retrieves a service-token mapping
func (s *MemoryStore) GetServiceToken(ctx context.Context, tokenID string) (*ServiceToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if token, ok := s.serviceTokens[tokenID]; ok {
		return token, nil
	}
	return nil, ErrNotFound
}

// DeleteServiceToken removes a service-token mapping
func (s *MemoryStore) DeleteServiceToken(ctx context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.serviceTokens[tokenID]; !exists {
		return ErrNotFound
	}

	delete(s.serviceTokens, tokenID)
	return nil
}
