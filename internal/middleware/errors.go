package middleware

import (
	"errors"

	"tradelink/internal/apperrors"
	"tradelink/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders every error returned by a handler as {"success": false, "message": ...}.
func ErrorHandler(log logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"success": false,
				"message": fe.Message,
			})
		}

		kind := apperrors.KindOf(err)
		if kind == apperrors.KindInternal {
			log.Error("request failed", map[string]interface{}{
				"method":     c.Method(),
				"path":       c.Path(),
				"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
				"error":      err.Error(),
			})
		}

		body := fiber.Map{
			"success": false,
			"message": apperrors.Message(err),
		}
		if fields := apperrors.Fields(err); len(fields) > 0 {
			body["errors"] = fields
		}
		return c.Status(kind.HTTPStatus()).JSON(body)
	}
}
