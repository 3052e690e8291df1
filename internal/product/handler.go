package product

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/rideway/rideway/internal/api"
)

// Handler exposes product HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a product HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	BasePrice   float64        `json:"base_price"`
	Description string         `json:"description"`
	Features    map[string]any `json:"features"`
}

// Create adds a product to the catalog.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return api.Fail(c, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
	}
	p, err := h.service.Create(c.UserContext(), CreateInput{
		Name:        req.Name,
		Type:        req.Type,
		BasePrice:   req.BasePrice,
		Description: req.Description,
		Features:    req.Features,
	})
	if err != nil {
		if isValidationError(err) {
			return api.Fail(c, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
		}
		return api.Fail(c, http.StatusInternalServerError, "Something went wrong", "INTERNAL_SERVER_ERROR", nil)
	}
	return api.Success(c, http.StatusCreated, p)
}

// List returns all active products.
func (h *Handler) List(c *fiber.Ctx) error {
	products, err := h.service.List(c.UserContext())
	if err != nil {
		return api.Fail(c, http.StatusInternalServerError, "Something went wrong", "INTERNAL_SERVER_ERROR", nil)
	}
	if products == nil {
		products = []Product{}
	}
	return api.Success(c, http.StatusOK, products)
}

// Get returns one active product.
func (h *Handler) Get(c *fiber.Ctx) error {
	p, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return api.Fail(c, http.StatusNotFound, "Product not found", "NOT_FOUND", nil)
		}
		return api.Fail(c, http.StatusInternalServerError, "Something went wrong", "INTERNAL_SERVER_ERROR", nil)
	}
	return api.Success(c, http.StatusOK, p)
}

type updateRequest struct {
	Name        *string        `json:"name"`
	Type        *string        `json:"type"`
	BasePrice   *float64       `json:"base_price"`
	Description *string        `json:"description"`
	Features    map[string]any `json:"features"`
}

// Update mutates a product.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return api.Fail(c, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
	}
	p, err := h.service.Update(c.UserContext(), c.Params("id"), UpdateInput{
		Name:        req.Name,
		Type:        req.Type,
		BasePrice:   req.BasePrice,
		Description: req.Description,
		Features:    req.Features,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return api.Fail(c, http.StatusNotFound, "Product not found", "NOT_FOUND", nil)
		}
		if isValidationError(err) {
			return api.Fail(c, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
		}
		return api.Fail(c, http.StatusInternalServerError, "Something went wrong", "INTERNAL_SERVER_ERROR", nil)
	}
	return api.Success(c, http.StatusOK, p)
}

func isValidationError(err error) bool {
	return errors.Is(err, ErrInvalidType) || errors.Is(err, ErrNameRequired) || errors.Is(err, ErrInvalidPrice)
}

// Delete soft-deletes a product.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			return api.Fail(c, http.StatusNotFound, "Product not found", "NOT_FOUND", nil)
		}
		return api.Fail(c, http.StatusInternalServerError, "Something went wrong", "INTERNAL_SERVER_ERROR", nil)
	}
	return api.Success(c, http.StatusOK, fiber.Map{"message": "Product deleted successfully"})
}
