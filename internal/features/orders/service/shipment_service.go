package service

import (
	"context"

	"merchant-orders/internal/core/logger"
	"merchant-orders/internal/core/validation"
	"merchant-orders/internal/features/orders/domain"
	"merchant-orders/internal/features/orders/ports"

	"go.uber.org/zap"
)

// ShipmentService creates fulfillment orders from checkout payloads.
type ShipmentService struct {
	creator   ports.ShipmentCreator
	validator *validation.Validator
}

// NewShipmentService creates a new instance of ShipmentService.
func NewShipmentService(creator ports.ShipmentCreator) *ShipmentService {
	return &ShipmentService{
		creator:   creator,
		validator: validation.New(),
	}
}

// CreateShipment validates req and forwards it to the shipping provider.
// Invalid payloads return domain.ValidationErrors without any network call.
func (s *ShipmentService) CreateShipment(ctx context.Context, req domain.ShipmentRequest) (*domain.ShipmentResult, error) {
	if violations := s.validator.Struct(req); violations != nil {
		return nil, toValidationErrors(violations)
	}

	result, err := s.creator.CreateShipment(ctx, req)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Shipment created",
		zap.String("order_id", req.OrderID),
		zap.String("shipment_id", result.ShipmentID),
		zap.String("status", result.Status),
	)

	return result, nil
}

func toValidationErrors(violations []validation.Violation) domain.ValidationErrors {
	errs := make(domain.ValidationErrors, 0, len(violations))
	for _, v := range violations {
		errs = append(errs, domain.ValidationError{Field: v.Field, Message: v.Message})
	}
	return errs
}
