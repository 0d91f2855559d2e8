package validation

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/account-service/pkg/util/errorutil"
)

const invalidPayloadMessage = "invalid payload"

var defaultValidator = New()

// payloadKey gives every payload type its own Locals slot.
type payloadKey[T any] struct{}

// Body parses and validates the request body as T before the handler runs.
func Body[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var payload T
		if err := c.BodyParser(&payload); err != nil {
			return apperrors.NewValidationError(invalidPayloadMessage, nil)
		}
		return store(c, payload)
	}
}

// Params binds and validates the route parameters as T.
func Params[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var payload T
		if err := c.ParamsParser(&payload); err != nil {
			return apperrors.NewValidationError(invalidPayloadMessage, nil)
		}
		return store(c, payload)
	}
}

// Payload returns the value validated by Body or Params for this request.
func Payload[T any](c *fiber.Ctx) (T, bool) {
	payload, ok := c.Locals(payloadKey[T]{}).(T)
	return payload, ok
}

func store[T any](c *fiber.Ctx, payload T) error {
	if err := defaultValidator.Struct(payload); err != nil {
		var fields FieldErrors
		if errors.As(err, &fields) {
			return apperrors.NewValidationError("validation failed", map[string]any{"fields": map[string]string(fields)})
		}
		return apperrors.NewValidationError(invalidPayloadMessage, nil)
	}
	c.Locals(payloadKey[T]{}, payload)
	return c.Next()
}
