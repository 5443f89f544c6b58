package service

import (
	"context"
	"fmt"
	"time"

	"merchant-orders/internal/core/logger"
	"merchant-orders/internal/core/metrics"
	"merchant-orders/internal/features/credentials/domain"
	"merchant-orders/internal/features/credentials/ports"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// registration binds a provider's authenticator to its fixed validity window.
type registration struct {
	authenticator ports.Authenticator
	validity      time.Duration
}

// TokenManager hands out valid bearer tokens, logging in only when the stored one has expired.
//
// Concurrent refreshes for the same provider are collapsed into one login.
// The store is always written with a complete credential, so racing writers
// from separate processes resolve as last-writer-wins.
type TokenManager struct {
	store     ports.CredentialStore
	providers map[string]registration
	now       func() time.Time
	group     singleflight.Group
}

// Option customizes a TokenManager.
type Option func(*TokenManager)

// WithClock overrides the time source. Tests use it to pin the expiry boundary.
func WithClock(now func() time.Time) Option {
	return func(m *TokenManager) {
		m.now = now
	}
}

// NewTokenManager creates a TokenManager over the given store.
func NewTokenManager(store ports.CredentialStore, opts ...Option) *TokenManager {
	m := &TokenManager{
		store:     store,
		providers: make(map[string]registration),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds a provider. It must be called before the manager serves requests.
func (m *TokenManager) Register(a ports.Authenticator, validity time.Duration) {
	m.providers[a.Provider()] = registration{
		authenticator: a,
		validity:      validity,
	}
}

// GetValidToken returns a token for provider that is valid now.
// A stored token is returned without any network call while now < ExpiresAt;
// otherwise a login is performed and its token persisted with ExpiresAt = login time + validity.
func (m *TokenManager) GetValidToken(ctx context.Context, provider string) (string, error) {
	reg, ok := m.providers[provider]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownProvider, provider)
	}

	log := logger.ForProvider(ctx, provider)

	cred, err := m.store.Get(ctx, provider)
	if err != nil {
		log.Warn("Credential store read failed, logging in", zap.Error(err))
		cred = nil
	}

	if cred != nil && cred.ValidAt(m.now()) {
		metrics.TokenCacheHitsTotal.WithLabelValues(provider).Inc()
		log.Debug("Using cached token", zap.Time("expires_at", cred.ExpiresAt))
		return cred.Token, nil
	}

	ch := m.group.DoChan(provider, func() (interface{}, error) {
		return m.refresh(context.WithoutCancel(ctx), provider, reg)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// refresh performs one login exchange and persists its result.
// A failed login leaves the stored credential untouched.
func (m *TokenManager) refresh(ctx context.Context, provider string, reg registration) (string, error) {
	log := logger.ForProvider(ctx, provider)
	log.Info("Fetching new token")

	loginTime := m.now()

	token, err := reg.authenticator.Login(ctx)
	metrics.TokenLoginsTotal.WithLabelValues(provider, metrics.Result(err)).Inc()
	if err != nil {
		log.Error("Login exchange failed", zap.Error(err))
		return "", err
	}

	cred := domain.Credential{
		Token:     token,
		ExpiresAt: loginTime.Add(reg.validity),
	}

	if err := m.store.Put(ctx, provider, cred); err != nil {
		// The token is valid regardless; the next caller will simply log in again.
		log.Error("Failed to persist token", zap.Error(err))
		return token, nil
	}

	log.Info("New token cached", zap.Time("expires_at", cred.ExpiresAt))
	return token, nil
}
