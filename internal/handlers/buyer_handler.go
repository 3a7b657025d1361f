package handlers

import (
	"tradelink/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// BuyerHandler serves the buyer's own account.
type BuyerHandler struct {
	gate fiber.Handler
}

func NewBuyerHandler(gate fiber.Handler) *BuyerHandler {
	return &BuyerHandler{gate: gate}
}

func (h *BuyerHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/buyers/me", h.gate, middleware.BuyerOnly(), h.HandleMe)
}

func (h *BuyerHandler) HandleMe(c *fiber.Ctx) error {
	account, _ := middleware.CurrentAccount(c)
	return c.JSON(fiber.Map{
		"success": true,
		"buyer":   account,
	})
}
