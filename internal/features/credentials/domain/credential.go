package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownProvider is returned when no authenticator is registered for a provider.
var ErrUnknownProvider = errors.New("unknown credential provider")

// Credential is the persisted bearer token of one provider.
// It is never mutated; a refresh replaces the whole value.
type Credential struct {
	// Token is the opaque bearer string issued by the provider.
	Token string `json:"token"`
	// ExpiresAt is the instant from which the token must not be reused.
	ExpiresAt time.Time `json:"expiresAt"`
}

// ValidAt reports whether the credential can still be used at now.
// The boundary is exact: a token is expired at ExpiresAt itself.
func (c Credential) ValidAt(now time.Time) bool {
	return c.Token != "" && now.Before(c.ExpiresAt)
}

// AuthExchangeError reports a failed login exchange against a provider.
type AuthExchangeError struct {
	// Provider is the provider whose login endpoint failed.
	Provider string
	// StatusCode is the HTTP status returned, or 0 when no response was received.
	StatusCode int
	// Body is the raw response body, if any.
	Body string
	// Err is the underlying transport or decoding error, if any.
	Err error
}

func (e *AuthExchangeError) Error() string {
	msg := fmt.Sprintf("%s auth exchange failed", e.Provider)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" with status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *AuthExchangeError) Unwrap() error {
	return e.Err
}
