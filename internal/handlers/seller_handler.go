package handlers

import (
	"tradelink/internal/middleware"
	"tradelink/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// SellerHandler handles seller registration and the seller's own account.
type SellerHandler struct {
	authService   *services.AuthService
	sellerService *services.SellerService
	gate          fiber.Handler
	validate      *validator.Validate
}

// NewSellerHandler creates a new SellerHandler. gate authenticates protected routes.
func NewSellerHandler(authService *services.AuthService, sellerService *services.SellerService, gate fiber.Handler) *SellerHandler {
	return &SellerHandler{
		authService:   authService,
		sellerService: sellerService,
		gate:          gate,
		validate:      newValidator(),
	}
}

// RegisterRoutes registers the seller routes.
func (h *SellerHandler) RegisterRoutes(router fiber.Router) {
	sellerRoutes := router.Group("/sellers")
	sellerRoutes.Post("/register", h.HandleRegister)

	sellerOnly := []fiber.Handler{h.gate, middleware.SellerOnly()}
	sellerRoutes.Get("/me", append(sellerOnly, h.HandleGetProfile)...)
	sellerRoutes.Put("/me", append(sellerOnly, h.HandleUpdateProfile)...)
	sellerRoutes.Patch("/deactivate", append(sellerOnly, h.HandleDeactivate)...)
	sellerRoutes.Delete("/delete", append(sellerOnly, h.HandleDelete)...)
}

// HandleRegister registers a seller. The optional avatar is sent as sellerImage.
func (h *SellerHandler) HandleRegister(c *fiber.Ctx) error {
	var req services.SellerRegistration
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	avatar, closeAvatar, err := formImage(c, "sellerImage")
	if err != nil {
		return err
	}
	defer closeAvatar()

	session, err := h.authService.RegisterSeller(c.UserContext(), req, avatar)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(sessionBody(session, "Seller registered successfully"))
}

// HandleGetProfile returns the current seller's profile.
func (h *SellerHandler) HandleGetProfile(c *fiber.Ctx) error {
	seller, err := h.sellerService.Profile(c.UserContext(), sellerID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"seller":  seller,
	})
}

// HandleUpdateProfile applies a partial profile update, optionally rotating the password.
func (h *SellerHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req services.SellerProfileUpdate
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	avatar, closeAvatar, err := formImage(c, "sellerImage")
	if err != nil {
		return err
	}
	defer closeAvatar()

	seller, err := h.sellerService.UpdateProfile(c.UserContext(), sellerID(c), req, avatar)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Profile updated successfully",
		"seller":  seller,
	})
}

func (h *SellerHandler) HandleDeactivate(c *fiber.Ctx) error {
	if err := h.sellerService.Deactivate(c.UserContext(), sellerID(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Seller account deactivated",
	})
}

func (h *SellerHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.sellerService.Delete(c.UserContext(), sellerID(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Seller account deleted permanently",
	})
}

// sellerID is the id of the authenticated account. Routes using it run behind SellerOnly.
func sellerID(c *fiber.Ctx) string {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		return ""
	}
	return account.AccountID()
}
