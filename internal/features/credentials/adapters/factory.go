package adapter

import (
	"context"
	"fmt"

	"merchant-orders/internal/core/cache"
	"merchant-orders/internal/core/config"
	"merchant-orders/internal/features/credentials/ports"
)

// NewCredentialStore builds the store selected by cfg.Backend.
// The returned close function releases the backend's connections.
func NewCredentialStore(ctx context.Context, cfg config.CredentialStoreConfig) (ports.CredentialStore, func() error, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), func() error { return nil }, nil

	case "redis":
		adapter, err := cache.NewRedisAdapter(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		if err := adapter.Ping(ctx); err != nil {
			adapter.Close()
			return nil, nil, err
		}
		return NewRedisStore(adapter, cfg.Namespace), adapter.Close, nil

	case "postgres":
		db, err := OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store := NewPostgresStore(db, cfg.Namespace)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported credential store backend: %q", cfg.Backend)
	}
}
