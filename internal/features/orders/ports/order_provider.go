package ports

import (
	"context"

	"merchant-orders/internal/features/orders/domain"
)

// OrderProvider defines the interface for retrieving orders from one external source.
// This is a Secondary Port (Driven Port).
type OrderProvider interface {
	// Name returns the source identifier the provider's orders carry.
	Name() domain.Source
	// ListOrders fetches one provider-native page of orders, normalized.
	ListOrders(ctx context.Context, query domain.ListQuery) (*domain.OrderPage, error)
	// MaxPageSize is the largest page size the provider's list endpoint accepts. 0 means no limit.
	MaxPageSize() int
	// GetOrder fetches a single order with its raw provider fields attached.
	// It returns an error wrapping domain.ErrOrderNotFound when the provider does not know the id.
	GetOrder(ctx context.Context, orderID string) (*domain.NormalizedOrder, error)
	// HealthCheck verifies the provider is reachable and the credentials are accepted.
	HealthCheck(ctx context.Context) error
}

// ShipmentCreator creates fulfillment orders at the authoritative shipping provider.
type ShipmentCreator interface {
	CreateShipment(ctx context.Context, req domain.ShipmentRequest) (*domain.ShipmentResult, error)
}
