package domain

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCredential_ValidAt(t *testing.T) {
	expiresAt := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	cred := Credential{Token: "tok", ExpiresAt: expiresAt}

	assert.True(t, cred.ValidAt(expiresAt.Add(-time.Nanosecond)))
	assert.False(t, cred.ValidAt(expiresAt), "expiry boundary is exclusive")
	assert.False(t, cred.ValidAt(expiresAt.Add(time.Second)))
	assert.False(t, Credential{ExpiresAt: expiresAt}.ValidAt(expiresAt.Add(-time.Hour)), "empty token is never valid")
}

func TestAuthExchangeError(t *testing.T) {
	t.Run("StatusAndBody", func(t *testing.T) {
		err := &AuthExchangeError{Provider: "shiprocket", StatusCode: 403, Body: `{"message":"Invalid credentials"}`}
		assert.Equal(t, `shiprocket auth exchange failed with status 403: {"message":"Invalid credentials"}`, err.Error())
	})

	t.Run("Wrapped", func(t *testing.T) {
		err := &AuthExchangeError{Provider: "shiprocket", Err: io.ErrUnexpectedEOF}
		assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
		assert.Contains(t, err.Error(), "unexpected EOF")
	})
}
