package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"merchant-orders/internal/core/config"
	"merchant-orders/internal/core/httpclient"
	"merchant-orders/internal/core/proxy"
	"merchant-orders/internal/features/credentials/domain"
)

// ShiprocketProvider is the provider name Shiprocket tokens are stored under.
const ShiprocketProvider = "shiprocket"

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 4096

// ShiprocketAuthenticator exchanges the API user's email and password for a bearer token.
type ShiprocketAuthenticator struct {
	client *http.Client
	config config.ShiprocketConfig
}

// NewShiprocketAuthenticator creates a ShiprocketAuthenticator.
func NewShiprocketAuthenticator(cfg config.ShiprocketConfig, proxySettings proxy.Settings, timeout time.Duration) *ShiprocketAuthenticator {
	return &ShiprocketAuthenticator{
		client: httpclient.NewClient(timeout, proxySettings),
		config: cfg,
	}
}

// Provider implements ports.Authenticator.
func (a *ShiprocketAuthenticator) Provider() string {
	return ShiprocketProvider
}

type shiprocketLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type shiprocketLoginResponse struct {
	Token string `json:"token"`
}

// Login posts the configured credentials to the Shiprocket login endpoint.
func (a *ShiprocketAuthenticator) Login(ctx context.Context) (string, error) {
	payload, err := json.Marshal(shiprocketLoginRequest{
		Email:    a.config.Email,
		Password: a.config.Password,
	})
	if err != nil {
		return "", &domain.AuthExchangeError{Provider: ShiprocketProvider, Err: err}
	}

	url := strings.TrimRight(a.config.BaseURL, "/") + "/v1/external/auth/login"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", &domain.AuthExchangeError{Provider: ShiprocketProvider, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", &domain.AuthExchangeError{Provider: ShiprocketProvider, Err: fmt.Errorf("failed to execute request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return "", &domain.AuthExchangeError{Provider: ShiprocketProvider, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &domain.AuthExchangeError{Provider: ShiprocketProvider, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var login shiprocketLoginResponse
	if err := json.Unmarshal(body, &login); err != nil {
		return "", &domain.AuthExchangeError{Provider: ShiprocketProvider, StatusCode: resp.StatusCode, Body: string(body), Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if login.Token == "" {
		return "", &domain.AuthExchangeError{Provider: ShiprocketProvider, StatusCode: resp.StatusCode, Body: string(body), Err: fmt.Errorf("response carried no token")}
	}

	return login.Token, nil
}
