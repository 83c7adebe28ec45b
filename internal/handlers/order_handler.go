package handlers

import (
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler serves the admin order views, status changes and refunds.
type OrderHandler struct {
	service  *services.OrderService
	refunds  *services.RefundService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, refunds *services.RefundService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		refunds:  refunds,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
	orderRoutes.Post("/:id/refund", h.HandleRefund)
}

// HandleGetOrders retrieves orders newest first. ?status= filters by status,
// "all" disables the filter and the default is paid.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext(), c.Query("status"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order with its items. The id may be
// the internal id or the checkout session id.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(order)
}

type statusUpdate struct {
	Status string `json:"status" validate:"required,oneof=paid fulfilled cancelled refunded pending"`
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req statusUpdate
	if err := bind(c, h.validate, &req); err != nil {
		return invalidPayload(c, err)
	}

	order, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), models.OrderStatus(req.Status))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(order)
}

// HandleRefund fully refunds a paid order.
func (h *OrderHandler) HandleRefund(c *fiber.Ctx) error {
	if _, err := h.refunds.Refund(c.UserContext(), c.Params("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
