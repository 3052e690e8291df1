package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rideway/rideway/internal/identity"
)

// RegisterUserRoutes wires the profile endpoints behind the auth guard.
func RegisterUserRoutes(r fiber.Router, h *identity.Handler, authGuard fiber.Handler) {
	group := r.Group("/users", authGuard)
	group.Get("/profile", h.GetProfile)
	group.Put("/profile", h.UpdateProfile)
	group.Put("/password", h.ChangePassword)
	group.Delete("/account", h.DeleteAccount)
}
