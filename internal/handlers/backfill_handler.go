package handlers

import (
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// BackfillHandler recovers orders for paid sessions whose webhook was missed.
type BackfillHandler struct {
	service *services.OrderService
}

// NewBackfillHandler creates a new BackfillHandler.
func NewBackfillHandler(service *services.OrderService) *BackfillHandler {
	return &BackfillHandler{service: service}
}

// RegisterRoutes registers the backfill route behind the given guards.
func (h *BackfillHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	chain := append(guards, h.HandleBackfill)
	router.Post("/backfill-from-session", chain...)
}

type backfillRequest struct {
	SessionID string `json:"sessionId"`
}

// HandleBackfill reconstructs the order for {sessionId}.
func (h *BackfillHandler) HandleBackfill(c *fiber.Ctx) error {
	var req backfillRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidPayload(c, err)
		}
	}

	result, err := h.service.Backfill(c.UserContext(), req.SessionID)
	if err != nil {
		return errorResponse(c, err)
	}
	if !result.Created {
		return c.JSON(fiber.Map{"ok": true, "note": "already_present", "orderId": result.OrderID})
	}
	return c.JSON(fiber.Map{"ok": true, "orderId": result.OrderID})
}
