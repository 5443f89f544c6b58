package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"merchant-orders/internal/core/cache"
	"merchant-orders/internal/features/credentials/domain"
)

// RedisStore implements ports.CredentialStore as one JSON document per provider,
// all kept in the same namespace.
type RedisStore struct {
	cache     cache.DocumentCache
	namespace string
}

// NewRedisStore creates a RedisStore writing under the given namespace.
func NewRedisStore(c cache.DocumentCache, namespace string) *RedisStore {
	return &RedisStore{
		cache:     c,
		namespace: namespace,
	}
}

func documentID(provider string) string {
	return provider + "_token"
}

// Get retrieves the credential document of provider.
func (r *RedisStore) Get(ctx context.Context, provider string) (*domain.Credential, error) {
	data, err := r.cache.GetDocument(ctx, r.namespace, documentID(provider))
	if err != nil {
		if errors.Is(err, cache.ErrDocumentNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get credential document: %w", err)
	}

	var cred domain.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credential: %w", err)
	}

	return &cred, nil
}

// Put overwrites the credential document of provider.
// Documents never expire in Redis; expiry is decided from ExpiresAt by the token manager.
func (r *RedisStore) Put(ctx context.Context, provider string, cred domain.Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	if err := r.cache.PutDocument(ctx, r.namespace, documentID(provider), data); err != nil {
		return fmt.Errorf("failed to save credential document: %w", err)
	}

	return nil
}
