package adapter

import (
	"context"
	"sync"

	"merchant-orders/internal/features/credentials/domain"
)

// MemoryStore keeps credentials in process memory.
// Suitable for single-instance deployments and tests; tokens are lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	creds map[string]domain.Credential
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: make(map[string]domain.Credential)}
}

// Get returns the credential for provider, or nil when none is stored.
func (s *MemoryStore) Get(_ context.Context, provider string) (*domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.creds[provider]
	if !ok {
		return nil, nil
	}
	return &cred, nil
}

// Put replaces the credential for provider.
func (s *MemoryStore) Put(_ context.Context, provider string, cred domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds[provider] = cred
	return nil
}
