package middleware

import (
	"tradelink/internal/apperrors"
	"tradelink/internal/models"

	"github.com/gofiber/fiber/v2"
)

// RequireRole allows the request through only when the attached role is one of roles.
// It must run after AuthRequired.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		current := CurrentRole(c)
		for _, role := range roles {
			if current == role {
				return c.Next()
			}
		}
		return apperrors.Forbidden(deniedMessage(roles))
	}
}

func SellerOnly() fiber.Handler { return RequireRole(models.RoleSeller) }
func BuyerOnly() fiber.Handler  { return RequireRole(models.RoleBuyer) }
func AdminOnly() fiber.Handler  { return RequireRole(models.RoleAdmin) }

func deniedMessage(roles []models.Role) string {
	if len(roles) == 1 {
		switch roles[0] {
		case models.RoleAdmin:
			return "Admin access only"
		case models.RoleSeller:
			return "Access denied: sellers only"
		case models.RoleBuyer:
			return "Access denied: buyers only"
		}
	}
	return "Access denied"
}
