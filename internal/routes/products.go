package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rideway/rideway/internal/middleware"
	"github.com/rideway/rideway/internal/product"
)

// RegisterProductRoutes wires catalog reads for any authenticated user and
// catalog mutations for admins.
func RegisterProductRoutes(r fiber.Router, h *product.Handler, authGuard fiber.Handler) {
	group := r.Group("/products", authGuard)
	group.Get("/", h.List)
	group.Get("/:id", h.Get)

	admin := middleware.AdminOnly()
	group.Post("/", admin, h.Create)
	group.Put("/:id", admin, h.Update)
	group.Delete("/:id", admin, h.Delete)
}
