package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	credentialadapter "merchant-orders/internal/features/credentials/adapters"
	"merchant-orders/internal/features/credentials/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const validity = 240 * time.Hour

var fixedNow = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

// fakeAuthenticator counts login calls and returns a configurable result.
type fakeAuthenticator struct {
	calls atomic.Int32
	token string
	err   error
	delay time.Duration
}

func (f *fakeAuthenticator) Provider() string { return "shiprocket" }

func (f *fakeAuthenticator) Login(ctx context.Context) (string, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.token, f.err
}

// MockCredentialStore is a mock implementation of ports.CredentialStore.
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) Get(ctx context.Context, provider string) (*domain.Credential, error) {
	args := m.Called(ctx, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Credential), args.Error(1)
}

func (m *MockCredentialStore) Put(ctx context.Context, provider string, cred domain.Credential) error {
	args := m.Called(ctx, provider, cred)
	return args.Error(0)
}

func newManager(store *credentialadapter.MemoryStore, auth *fakeAuthenticator, now time.Time) *TokenManager {
	m := NewTokenManager(store, WithClock(func() time.Time { return now }))
	m.Register(auth, validity)
	return m
}

// TestGetValidToken_CachedTokenMakesNoLogin verifies a future expiry is served from the store.
func TestGetValidToken_CachedTokenMakesNoLogin(t *testing.T) {
	store := credentialadapter.NewMemoryStore()
	cached := domain.Credential{Token: "cached", ExpiresAt: fixedNow.Add(time.Hour)}
	require.NoError(t, store.Put(context.Background(), "shiprocket", cached))

	auth := &fakeAuthenticator{token: "fresh"}
	m := newManager(store, auth, fixedNow)

	for i := 0; i < 3; i++ {
		token, err := m.GetValidToken(context.Background(), "shiprocket")
		require.NoError(t, err)
		assert.Equal(t, "cached", token)
	}

	assert.Equal(t, int32(0), auth.calls.Load())

	stored, _ := store.Get(context.Background(), "shiprocket")
	assert.Equal(t, cached, *stored, "cached credential is left unchanged")
}

// TestGetValidToken_RefreshesMissingOrExpired verifies one login and a full overwrite.
func TestGetValidToken_RefreshesMissingOrExpired(t *testing.T) {
	tests := []struct {
		name   string
		stored *domain.Credential
	}{
		{"Absent", nil},
		{"Expired", &domain.Credential{Token: "old", ExpiresAt: fixedNow.Add(-time.Minute)}},
		{"ExactBoundary", &domain.Credential{Token: "old", ExpiresAt: fixedNow}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := credentialadapter.NewMemoryStore()
			if tt.stored != nil {
				require.NoError(t, store.Put(context.Background(), "shiprocket", *tt.stored))
			}

			auth := &fakeAuthenticator{token: "fresh"}
			m := newManager(store, auth, fixedNow)

			token, err := m.GetValidToken(context.Background(), "shiprocket")
			require.NoError(t, err)
			assert.Equal(t, "fresh", token)
			assert.Equal(t, int32(1), auth.calls.Load())

			stored, err := store.Get(context.Background(), "shiprocket")
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, "fresh", stored.Token)
			assert.True(t, fixedNow.Add(validity).Equal(stored.ExpiresAt))

			// Second call is now a cache hit.
			token, err = m.GetValidToken(context.Background(), "shiprocket")
			require.NoError(t, err)
			assert.Equal(t, "fresh", token)
			assert.Equal(t, int32(1), auth.calls.Load())
		})
	}
}

// TestGetValidToken_LoginFailureKeepsStoredCredential verifies no partial credential is persisted.
func TestGetValidToken_LoginFailureKeepsStoredCredential(t *testing.T) {
	store := credentialadapter.NewMemoryStore()
	expired := domain.Credential{Token: "old", ExpiresAt: fixedNow.Add(-time.Hour)}
	require.NoError(t, store.Put(context.Background(), "shiprocket", expired))

	authErr := &domain.AuthExchangeError{Provider: "shiprocket", StatusCode: 401, Body: `{"message":"Invalid credentials"}`}
	auth := &fakeAuthenticator{err: authErr}
	m := newManager(store, auth, fixedNow)

	token, err := m.GetValidToken(context.Background(), "shiprocket")
	require.Error(t, err)
	assert.Empty(t, token, "a stale token is never handed out")

	var got *domain.AuthExchangeError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, 401, got.StatusCode)

	stored, _ := store.Get(context.Background(), "shiprocket")
	assert.Equal(t, expired, *stored)
}

// TestGetValidToken_UnknownProvider verifies unregistered providers are rejected.
func TestGetValidToken_UnknownProvider(t *testing.T) {
	m := NewTokenManager(credentialadapter.NewMemoryStore())

	_, err := m.GetValidToken(context.Background(), "delhivery")
	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}

// TestGetValidToken_StoreReadErrorFallsBackToLogin verifies a broken store does not block callers.
func TestGetValidToken_StoreReadErrorFallsBackToLogin(t *testing.T) {
	store := new(MockCredentialStore)
	store.On("Get", mock.Anything, "shiprocket").Return(nil, errors.New("redis down")).Once()
	store.On("Put", mock.Anything, "shiprocket", domain.Credential{Token: "fresh", ExpiresAt: fixedNow.Add(validity)}).
		Return(errors.New("redis down")).Once()

	auth := &fakeAuthenticator{token: "fresh"}
	m := NewTokenManager(store, WithClock(func() time.Time { return fixedNow }))
	m.Register(auth, validity)

	token, err := m.GetValidToken(context.Background(), "shiprocket")
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
	store.AssertExpectations(t)
}

// TestGetValidToken_ConcurrentCallers verifies concurrent refreshes all succeed with few logins.
func TestGetValidToken_ConcurrentCallers(t *testing.T) {
	store := credentialadapter.NewMemoryStore()
	auth := &fakeAuthenticator{token: "fresh", delay: 50 * time.Millisecond}
	m := newManager(store, auth, fixedNow)

	const callers = 20
	var wg sync.WaitGroup
	errs := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := m.GetValidToken(context.Background(), "shiprocket")
			if err == nil && token != "fresh" {
				err = errors.New("unexpected token " + token)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.GreaterOrEqual(t, auth.calls.Load(), int32(1))
	assert.Less(t, auth.calls.Load(), int32(callers))
}

// TestGetValidToken_CallerCancellation verifies a cancelled caller stops waiting.
func TestGetValidToken_CallerCancellation(t *testing.T) {
	store := credentialadapter.NewMemoryStore()
	auth := &fakeAuthenticator{token: "fresh", delay: 200 * time.Millisecond}
	m := newManager(store, auth, fixedNow)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.GetValidToken(ctx, "shiprocket")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
