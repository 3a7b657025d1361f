package handlers

import (
	"tradelink/internal/models"
	"tradelink/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    newValidator(),
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
}

// HandleRegister registers a buyer. The optional avatar is sent as buyerImage.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req services.BuyerRegistration
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	avatar, closeAvatar, err := formImage(c, "buyerImage")
	if err != nil {
		return err
	}
	defer closeAvatar()

	session, err := h.authService.RegisterBuyer(c.UserContext(), req, avatar)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(sessionBody(session, "Buyer registered successfully"))
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string      `json:"email" form:"email" validate:"required"`
	Password string      `json:"password" form:"password" validate:"required"`
	Role     models.Role `json:"role" form:"role"`
}

// HandleLogin authenticates a buyer or seller and issues a token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	session, err := h.authService.Login(c.UserContext(), req.Email, req.Password, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(sessionBody(session, "Login successful"))
}

func sessionBody(session *services.Session, message string) fiber.Map {
	return fiber.Map{
		"success": true,
		"message": message,
		"role":    session.Account.AccountRole(),
		"token":   session.Token,
		"user":    session.Account,
	}
}
