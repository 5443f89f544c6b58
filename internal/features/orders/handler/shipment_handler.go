package handler

import (
	"net/http"

	"merchant-orders/internal/features/orders/domain"
	"merchant-orders/internal/features/orders/service"

	"github.com/gofiber/fiber/v2"
)

// ShipmentHandler handles shipment creation requests.
type ShipmentHandler struct {
	service *service.ShipmentService
}

// NewShipmentHandler creates a new instance of ShipmentHandler.
func NewShipmentHandler(s *service.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{
		service: s,
	}
}

// CreateShipment creates a fulfillment order from a checkout payload.
// @Summary Create shipment
// @Description Create an ad-hoc Shiprocket order. The payload is validated before any provider call.
// @Tags shipments
// @Accept json
// @Produce json
// @Param X-Merchant-ID header string true "Merchant identity injected by the gateway"
// @Param shipment body domain.ShipmentRequest true "Checkout payload"
// @Success 201 {object} ShipmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /shipments [post]
func (h *ShipmentHandler) CreateShipment(c *fiber.Ctx) error {
	var req domain.ShipmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "Invalid request body",
			Details: err.Error(),
			RayID:   rayID(c),
		})
	}

	result, err := h.service.CreateShipment(c.UserContext(), req)
	if err != nil {
		return writeError(c, "Failed to create shipment", err)
	}

	return c.Status(http.StatusCreated).JSON(ShipmentResponse{
		Success: true,
		Data:    result,
	})
}
