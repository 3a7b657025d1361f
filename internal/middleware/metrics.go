package middleware

import (
	"errors"
	"strconv"
	"time"

	"tradelink/internal/apperrors"
	"tradelink/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics records the count and latency of every request by matched route.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = apperrors.KindOf(err).HTTPStatus()
			}
		}
		metrics.RecordHttpRequest(c.Method(), c.Route().Path, strconv.Itoa(status), time.Since(start))
		return err
	}
}
