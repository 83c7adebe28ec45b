package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// newValidator returns a validator with the storefront's custom tags registered.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindInvalid:
		return fiber.StatusBadRequest
	case services.KindUnauthorized:
		return fiber.StatusUnauthorized
	case services.KindForbidden:
		return fiber.StatusForbidden
	case services.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// errorResponse writes {error, detail?} for err. Service errors carry their
// own code; repository not-found maps to 404; anything else is a 500.
func errorResponse(c *fiber.Ctx, err error) error {
	if se, ok := services.AsServiceError(err); ok {
		status := statusFor(se.Kind)
		if status >= fiber.StatusInternalServerError {
			slog.Error("request failed", "path", c.Path(), "code", se.Code, "error", err)
		}
		body := fiber.Map{"error": se.Code}
		if se.Detail != "" {
			body["detail"] = se.Detail
		}
		return c.Status(status).JSON(body)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "detail": err.Error()})
	}
	slog.Error("request failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":  "internal_error",
		"detail": err.Error(),
	})
}

// invalidPayload writes a 400 for an unparsable or invalid body.
func invalidPayload(c *fiber.Ctx, err error) error {
	body := fiber.Map{
		"error":  services.CodeInvalidPayload,
		"detail": err.Error(),
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Namespace()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		body["detail"] = "validation failed"
		body["errors"] = errorMessages
	}
	return c.Status(fiber.StatusBadRequest).JSON(body)
}

// bind parses the JSON body into dst and validates it.
func bind(c *fiber.Ctx, v *validator.Validate, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return err
	}
	return v.Struct(dst)
}
