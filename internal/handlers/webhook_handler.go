package handlers

import (
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SignatureHeader carries the provider's webhook signature.
const SignatureHeader = "Stripe-Signature"

// WebhookHandler receives payment provider events.
type WebhookHandler struct {
	service *services.OrderService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(service *services.OrderService) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// RegisterRoutes registers the webhook route.
func (h *WebhookHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/stripe/webhook", h.HandleWebhook)
}

// HandleWebhook verifies and reconciles an event. Non-2xx responses make the
// provider redeliver, so only signature problems and failures worth retrying
// return an error status.
func (h *WebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	payload := append([]byte(nil), c.Body()...)
	if _, err := h.service.HandleWebhook(c.UserContext(), payload, c.Get(SignatureHeader)); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"received": true})
}
