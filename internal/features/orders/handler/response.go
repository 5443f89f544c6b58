package handler

import (
	"context"
	"errors"
	"net/http"

	"merchant-orders/internal/core/logger"
	credentialdomain "merchant-orders/internal/features/credentials/domain"
	"merchant-orders/internal/features/orders/domain"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Success is always false.
	Success bool `json:"success"`
	// Error is the error description.
	Error string `json:"error"`
	// Details carries validation failures or the underlying error text.
	Details any `json:"details,omitempty"`
	// Failures lists each provider's error when every provider failed.
	Failures []domain.ProviderFailure `json:"failures,omitempty"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
}

// OrdersResponse is the body of a successful merged feed request.
type OrdersResponse struct {
	Success    bool                     `json:"success"`
	Data       []domain.NormalizedOrder `json:"data"`
	Pagination domain.Pagination        `json:"pagination"`
	Summary    domain.Summary           `json:"summary"`
	Failures   []domain.ProviderFailure `json:"failures,omitempty"`
}

// OrderResponse is the body of a successful order detail request.
type OrderResponse struct {
	Success bool                    `json:"success"`
	Data    *domain.NormalizedOrder `json:"data"`
}

// ShipmentResponse is the body of a successful shipment creation.
type ShipmentResponse struct {
	Success bool                   `json:"success"`
	Data    *domain.ShipmentResult `json:"data"`
}

func rayID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return "unknown"
}

// writeError maps service errors onto HTTP statuses and logs them with the request id.
func writeError(c *fiber.Ctx, msg string, err error) error {
	status := http.StatusInternalServerError
	resp := ErrorResponse{Error: msg, Details: err.Error(), RayID: rayID(c)}

	var (
		validationErrs domain.ValidationErrors
		aggregationErr *domain.AggregationError
		requestErr     *domain.ProviderRequestError
		authErr        *credentialdomain.AuthExchangeError
	)

	switch {
	case errors.As(err, &validationErrs):
		status = http.StatusBadRequest
		resp.Error = "Invalid request"
		resp.Details = validationErrs
	case errors.Is(err, domain.ErrUnknownSource):
		status = http.StatusBadRequest
		resp.Error = "Unknown order source"
	case errors.Is(err, domain.ErrOrderNotFound):
		status = http.StatusNotFound
		resp.Error = "Order not found"
	case errors.As(err, &aggregationErr):
		resp.Failures = aggregationErr.Failures
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.As(err, &requestErr), errors.As(err, &authErr):
		status = http.StatusBadGateway
	}

	log := logger.FromContext(c.UserContext()).Error
	if status < http.StatusInternalServerError {
		log = logger.FromContext(c.UserContext()).Warn
	}
	log("Request failed",
		zap.String("path", c.Path()),
		zap.String("ray_id", resp.RayID),
		zap.Int("status", status),
		zap.Error(err),
	)

	return c.Status(status).JSON(resp)
}
