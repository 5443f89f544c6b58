package handler

import (
	"net/http"

	"merchant-orders/internal/features/orders/domain"
	"merchant-orders/internal/features/orders/service"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests related to orders.
type OrderHandler struct {
	// service is the OrderService instance.
	service *service.OrderService
}

// NewOrderHandler creates a new instance of OrderHandler.
func NewOrderHandler(s *service.OrderService) *OrderHandler {
	return &OrderHandler{
		service: s,
	}
}

// GetOrders returns one page of the merged order feed.
// @Summary List merged orders
// @Description Fetch orders from every configured provider, merged and sorted newest first.
// @Tags orders
// @Produce json
// @Param X-Merchant-ID header string true "Merchant identity injected by the gateway"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param status query string false "Order status" Enums(all, new, processing, shipped, delivered, cancelled)
// @Param source query string false "Provider name or all"
// @Success 200 {object} OrdersResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /orders [get]
func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	var query domain.OrdersQuery
	if err := c.QueryParser(&query); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "Invalid query parameters",
			Details: err.Error(),
			RayID:   rayID(c),
		})
	}

	result, err := h.service.GetOrders(c.UserContext(), query)
	if err != nil {
		return writeError(c, "Failed to fetch orders", err)
	}

	return c.Status(http.StatusOK).JSON(OrdersResponse{
		Success:    true,
		Data:       result.Data,
		Pagination: result.Pagination,
		Summary:    result.Summary,
		Failures:   result.Failures,
	})
}

// GetOrder returns a single order from one provider.
// @Summary Get order by source and ID
// @Description Fetch one order from the named provider, including its raw provider fields.
// @Tags orders
// @Produce json
// @Param X-Merchant-ID header string true "Merchant identity injected by the gateway"
// @Param source path string true "Provider name"
// @Param id path string true "Provider order ID"
// @Success 200 {object} OrderResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /orders/{source}/{id} [get]
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	source := c.Params("source")
	orderID := c.Params("id")

	if orderID == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error: "Order ID is required",
			RayID: rayID(c),
		})
	}

	order, err := h.service.GetOrder(c.UserContext(), source, orderID)
	if err != nil {
		return writeError(c, "Failed to fetch order", err)
	}

	return c.Status(http.StatusOK).JSON(OrderResponse{
		Success: true,
		Data:    order,
	})
}
