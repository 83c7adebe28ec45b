package handlers

import (
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the public storefront reads.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListActive)
	productRoutes.Get("/:slug", h.HandleGetBySlug)
}

// RegisterAdminRoutes registers catalog management routes.
func (h *ProductHandler) RegisterAdminRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListAll)
	productRoutes.Get("/:id", h.HandleGetByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeactivateProduct)
	productRoutes.Post("/:id/variants", h.HandleCreateVariant)

	variantRoutes := router.Group("/variants")
	variantRoutes.Put("/:id", h.HandleUpdateVariant)
	variantRoutes.Delete("/:id", h.HandleDeactivateVariant)
}

// HandleListActive returns active products with their active variants.
func (h *ProductHandler) HandleListActive(c *fiber.Ctx) error {
	products, err := h.service.ListActiveProducts(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(products)
}

// HandleGetBySlug returns one active product.
func (h *ProductHandler) HandleGetBySlug(c *fiber.Ctx) error {
	product, err := h.service.GetActiveProductBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(product)
}

// HandleListAll returns every product including inactive ones.
func (h *ProductHandler) HandleListAll(c *fiber.Ctx) error {
	products, err := h.service.ListAllProducts(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(products)
}

// HandleGetByID returns a product with all its variants.
func (h *ProductHandler) HandleGetByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := bind(c, h.validate, &product); err != nil {
		return invalidPayload(c, err)
	}
	product.ID = ""
	if err := h.service.CreateProduct(c.UserContext(), &product); err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces a product's fields.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := bind(c, h.validate, &product); err != nil {
		return invalidPayload(c, err)
	}
	product.ID = c.Params("id")
	if err := h.service.UpdateProduct(c.UserContext(), &product); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(product)
}

// HandleDeactivateProduct hides a product from the storefront.
func (h *ProductHandler) HandleDeactivateProduct(c *fiber.Ctx) error {
	if err := h.service.DeactivateProduct(c.UserContext(), c.Params("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleCreateVariant adds a variant to a product.
func (h *ProductHandler) HandleCreateVariant(c *fiber.Ctx) error {
	var variant models.ProductVariant
	if err := bind(c, h.validate, &variant); err != nil {
		return invalidPayload(c, err)
	}
	variant.ID = ""
	if err := h.service.CreateVariant(c.UserContext(), c.Params("id"), &variant); err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(variant)
}

// HandleUpdateVariant replaces a variant's fields.
func (h *ProductHandler) HandleUpdateVariant(c *fiber.Ctx) error {
	var variant models.ProductVariant
	if err := bind(c, h.validate, &variant); err != nil {
		return invalidPayload(c, err)
	}
	variant.ID = c.Params("id")
	if err := h.service.UpdateVariant(c.UserContext(), &variant); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(variant)
}

// HandleDeactivateVariant makes a variant unpurchasable.
func (h *ProductHandler) HandleDeactivateVariant(c *fiber.Ctx) error {
	if err := h.service.DeactivateVariant(c.UserContext(), c.Params("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
