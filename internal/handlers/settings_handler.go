package handlers

import (
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// SettingsHandler exposes the site settings.
type SettingsHandler struct {
	service  *services.SettingsService
	validate *validator.Validate
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(service *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the public settings read.
func (h *SettingsHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/settings", h.HandleGetSettings)
}

// RegisterAdminRoutes registers the settings update.
func (h *SettingsHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/settings", h.HandleGetSettings)
	router.Put("/settings", h.HandleUpdateSettings)
}

// HandleGetSettings returns the current settings.
func (h *SettingsHandler) HandleGetSettings(c *fiber.Ctx) error {
	settings, err := h.service.Get(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(settings)
}

// HandleUpdateSettings opens or closes the store.
func (h *SettingsHandler) HandleUpdateSettings(c *fiber.Ctx) error {
	var req services.SettingsUpdate
	if err := bind(c, h.validate, &req); err != nil {
		return invalidPayload(c, err)
	}
	settings, err := h.service.Update(c.UserContext(), req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(settings)
}
