package ports

import (
	"context"

	"merchant-orders/internal/features/credentials/domain"
)

// CredentialStore persists one credential per provider.
// This is a Secondary Port (Driven Port); memory, Redis and Postgres implement it.
type CredentialStore interface {
	// Get returns the stored credential, or nil and no error when none exists.
	Get(ctx context.Context, provider string) (*domain.Credential, error)
	// Put replaces the stored credential wholesale.
	Put(ctx context.Context, provider string, cred domain.Credential) error
}

// Authenticator performs the login exchange of one provider.
type Authenticator interface {
	// Provider returns the provider name the issued tokens belong to.
	Provider() string
	// Login exchanges configured credentials for a fresh bearer token.
	// Failures are reported as *domain.AuthExchangeError.
	Login(ctx context.Context) (string, error)
}

// TokenSource hands out currently valid bearer tokens.
// This is the Primary Port consumed by provider adapters.
type TokenSource interface {
	GetValidToken(ctx context.Context, provider string) (string, error)
}
