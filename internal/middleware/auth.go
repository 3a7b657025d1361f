package middleware

import (
	"context"
	"strings"

	"tradelink/internal/apperrors"
	"tradelink/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	localAccount = "account"
	localRole    = "role"
)

// Authenticator resolves a bearer token to the account it was issued to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.Account, error)
}

// AuthRequired rejects requests without a valid bearer token and attaches the
// resolved account and its role to the context.
func AuthRequired(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			return apperrors.Unauthenticated("Not authorized, no token")
		}

		account, err := auth.Authenticate(c.UserContext(), strings.TrimSpace(parts[1]))
		if err != nil {
			return err
		}

		c.Locals(localAccount, account)
		c.Locals(localRole, account.AccountRole())
		return c.Next()
	}
}

// CurrentAccount returns the account attached by AuthRequired.
func CurrentAccount(c *fiber.Ctx) (models.Account, bool) {
	account, ok := c.Locals(localAccount).(models.Account)
	return account, ok && account != nil
}

// CurrentRole returns the role attached by AuthRequired.
func CurrentRole(c *fiber.Ctx) models.Role {
	role, _ := c.Locals(localRole).(models.Role)
	return role
}
