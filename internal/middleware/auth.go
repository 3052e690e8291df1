package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/rideway/rideway/internal/api"
	"github.com/rideway/rideway/internal/auth"
	"github.com/rideway/rideway/internal/identity"
)

// AuthRequired validates the bearer token and loads the account behind it.
// Requests from unverified or non-active accounts are rejected.
func AuthRequired(tokens *auth.TokenIssuer, repo identity.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return api.Fail(c, http.StatusUnauthorized, "No token provided", "UNAUTHORIZED", nil)
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])

		userID, _, err := tokens.Verify(tokenStr)
		if err != nil {
			return api.Fail(c, http.StatusUnauthorized, "Invalid or expired token", "UNAUTHORIZED", nil)
		}

		user, err := repo.FindUserByID(c.UserContext(), userID)
		if err != nil {
			return api.Fail(c, http.StatusUnauthorized, "User not found", "UNAUTHORIZED", nil)
		}
		if !user.IsVerified {
			return api.Fail(c, http.StatusUnauthorized, "Email not verified", "UNAUTHORIZED", nil)
		}
		if user.Status != identity.StatusActive {
			return api.Fail(c, http.StatusUnauthorized, "Account is not active", "UNAUTHORIZED", nil)
		}

		c.Locals("user_id", user.ID)
		c.Locals("user_role", user.Role)
		return c.Next()
	}
}

// AdminOnly rejects callers whose account role is not admin. It must run
// after AuthRequired.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("user_role").(string)
		if role != identity.RoleAdmin {
			return api.Fail(c, http.StatusForbidden, "Admin access required", "FORBIDDEN", nil)
		}
		return c.Next()
	}
}
