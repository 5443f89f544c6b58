package handler

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// MerchantHeader carries the merchant identity set by the upstream identity gateway.
const MerchantHeader = "X-Merchant-ID"

// RequireMerchant rejects requests that carry no merchant identity.
// The identity is trusted as-is; authentication happens upstream.
func RequireMerchant() fiber.Handler {
	return func(c *fiber.Ctx) error {
		merchantID := c.Get(MerchantHeader)
		if merchantID == "" {
			return c.Status(http.StatusUnauthorized).JSON(ErrorResponse{
				Error: "Missing merchant identity",
				RayID: rayID(c),
			})
		}
		c.Locals("merchant_id", merchantID)
		return c.Next()
	}
}

// Register mounts the order and shipment routes behind RequireMerchant.
// Other routes on router are left untouched.
func Register(router fiber.Router, orders *OrderHandler, shipments *ShipmentHandler) {
	merchant := RequireMerchant()
	router.Get("/orders", merchant, orders.GetOrders)
	router.Get("/orders/:source/:id", merchant, orders.GetOrder)
	if shipments != nil {
		router.Post("/shipments", merchant, shipments.CreateShipment)
	}
}
