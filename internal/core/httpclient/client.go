package httpclient

import (
	"net/http"
	"time"

	"merchant-orders/internal/core/logger"
	"merchant-orders/internal/core/proxy"

	"go.uber.org/zap"
)

// UserAgent is sent on every outbound provider request that does not set its own.
const UserAgent = "merchant-orders/1.0"

// LoggingRoundTripper logs outbound provider calls with the caller's ray id.
type LoggingRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
}

// RoundTrip executes the request and logs its outcome.
// Only scheme, host and path are logged; query strings and headers may carry credentials.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", UserAgent)
	}

	log := logger.FromContext(req.Context()).With(
		zap.String("method", req.Method),
		zap.String("url", redactedURL(req)),
	)
	start := time.Now()

	resp, err := lrt.Proxied.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		log.Error("Provider request failed", zap.Duration("duration", duration), zap.Error(err))
		return nil, err
	}

	fields := []zap.Field{zap.Int("status_code", resp.StatusCode), zap.Duration("duration", duration)}
	if resp.StatusCode >= http.StatusInternalServerError {
		log.Warn("Provider request returned server error", fields...)
	} else {
		log.Debug("Provider request completed", fields...)
	}

	return resp, nil
}

func redactedURL(req *http.Request) string {
	u := *req.URL
	u.RawQuery = ""
	u.User = nil
	return u.String()
}

// NewClient returns an http.Client for provider APIs.
// Requests are routed through the proxy when one is configured.
func NewClient(timeout time.Duration, proxySettings proxy.Settings) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxySettings.ProxyFunc()

	return &http.Client{
		Transport: &LoggingRoundTripper{
			Proxied: transport,
		},
		Timeout: timeout,
	}
}
