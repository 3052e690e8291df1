package identity

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/rideway/rideway/internal/api"
)

// Handler exposes profile endpoints for the authenticated user.
type Handler struct {
	service *Service
}

// NewHandler builds a profile HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetProfile returns the caller's profile.
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	profile, err := h.service.GetProfile(c.UserContext(), userID)
	if err != nil {
		return h.fail(c, err)
	}
	return api.Success(c, http.StatusOK, profile)
}

type updateProfileRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// UpdateProfile changes the caller's name and phone number.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return api.Fail(c, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
	}
	userID, _ := c.Locals("user_id").(string)
	profile, err := h.service.UpdateProfile(c.UserContext(), userID, ProfileUpdate{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return api.Success(c, http.StatusOK, profile)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword rotates the caller's password.
func (h *Handler) ChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return api.Fail(c, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return api.Fail(c, http.StatusBadRequest, "current and new passwords are required", "VALIDATION_ERROR", nil)
	}
	userID, _ := c.Locals("user_id").(string)
	if err := h.service.ChangePassword(c.UserContext(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, ErrWrongPassword) {
			return api.Fail(c, http.StatusUnauthorized, "Current password is incorrect", "INVALID_CREDENTIALS", nil)
		}
		return h.fail(c, err)
	}
	return api.Success(c, http.StatusOK, fiber.Map{"message": "Password updated successfully"})
}

// DeleteAccount permanently removes the caller's account.
func (h *Handler) DeleteAccount(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if err := h.service.DeleteAccount(c.UserContext(), userID); err != nil {
		return h.fail(c, err)
	}
	return api.Success(c, http.StatusOK, fiber.Map{"message": "Account deleted successfully"})
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrUserNotFound) {
		return api.Fail(c, http.StatusNotFound, "User not found", "NOT_FOUND", nil)
	}
	return api.Fail(c, http.StatusInternalServerError, "Something went wrong", "INTERNAL_SERVER_ERROR", nil)
}
