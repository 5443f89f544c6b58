package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"merchant-orders/internal/core/logger"
	"merchant-orders/internal/core/metrics"
	"merchant-orders/internal/features/orders/domain"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// maxResponseBody bounds how much of a provider response is read.
	maxResponseBody = 8 << 20
	// maxErrorBody bounds how much of a failed response is kept for diagnostics.
	maxErrorBody = 4096
)

// providerClient executes provider API calls and turns failures into ProviderRequestErrors.
type providerClient struct {
	client   *http.Client
	provider domain.Source
	// limiter throttles outbound calls; nil means unlimited.
	limiter *rate.Limiter
}

// Option configures the HTTP client shared by an adapter.
type Option func(*providerClient)

// WithRateLimit caps outbound calls to rps requests per second with the given burst.
// A non-positive rps leaves the adapter unthrottled.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *providerClient) {
		if rps <= 0 {
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(1, burst))
	}
}

func newProviderClient(provider domain.Source, client *http.Client, opts ...Option) providerClient {
	c := providerClient{client: client, provider: provider}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// response is a successful provider answer.
type response struct {
	body   []byte
	header http.Header
}

// do sends req after authorize has decorated it. Non-2xx answers, transport errors
// and unreadable bodies come back as *domain.ProviderRequestError; a 404 also wraps
// domain.ErrOrderNotFound.
func (c providerClient) do(ctx context.Context, operation string, req *http.Request, authorize func(context.Context, *http.Request) error) (*response, error) {
	start := time.Now()
	resp, err := c.send(ctx, operation, req, authorize)

	metrics.ProviderRequestsTotal.WithLabelValues(string(c.provider), operation, metrics.Result(err)).Inc()
	metrics.ProviderRequestDuration.WithLabelValues(string(c.provider), operation).Observe(time.Since(start).Seconds())

	if err != nil {
		fields := []zap.Field{
			zap.String("operation", operation),
			zap.String("path", req.URL.Path),
			zap.Error(err),
		}
		var reqErr *domain.ProviderRequestError
		if errors.As(err, &reqErr) {
			fields = append(fields, zap.Int("status_code", reqErr.StatusCode), zap.String("body", reqErr.Body))
		}
		logger.ForProvider(ctx, string(c.provider)).Error("Provider request failed", fields...)
	}

	return resp, err
}

func (c providerClient) send(ctx context.Context, operation string, req *http.Request, authorize func(context.Context, *http.Request) error) (*response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.failure(operation, 0, "", fmt.Errorf("rate limit wait: %w", err))
		}
	}

	if authorize != nil {
		if err := authorize(ctx, req); err != nil {
			return nil, fmt.Errorf("%s %s: %w", c.provider, operation, err)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, c.failure(operation, 0, "", fmt.Errorf("failed to execute request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, c.failure(operation, resp.StatusCode, "", fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, c.failure(operation, resp.StatusCode, truncate(body), domain.ErrOrderNotFound)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.failure(operation, resp.StatusCode, truncate(body), nil)
	}

	return &response{body: body, header: resp.Header}, nil
}

// malformed reports a 2xx answer whose body could not be decoded.
func (c providerClient) malformed(operation string, body []byte, err error) error {
	return c.failure(operation, http.StatusOK, truncate(body), fmt.Errorf("failed to decode response: %w", err))
}

func (c providerClient) failure(operation string, status int, body string, err error) error {
	return &domain.ProviderRequestError{
		Provider:   string(c.provider),
		Operation:  operation,
		StatusCode: status,
		Body:       body,
		Err:        err,
	}
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody])
	}
	return string(body)
}

// basicAuth returns an authorizer that sets HTTP Basic credentials.
func basicAuth(user, password string) func(context.Context, *http.Request) error {
	return func(_ context.Context, req *http.Request) error {
		req.SetBasicAuth(user, password)
		return nil
	}
}
