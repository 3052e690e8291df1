package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/rideway/rideway/internal/api"
)

// Handler exposes the auth workflow over HTTP.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler builds an auth HTTP handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`
	CountryCode string `json:"country_code"`
}

// Signup registers a new account. The caller's country comes from the
// request body when present, otherwise from a geo lookup of the client IP.
func (h *Handler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return api.Fail(c, http.StatusBadRequest, err.Error(), CodeValidation, nil)
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return api.Fail(c, http.StatusBadRequest, "email, password and name are required", CodeValidation, nil)
	}

	result, err := h.svc.Register(c.UserContext(), Registration{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
		CountryCode: req.CountryCode,
		IP:          clientIP(c),
	})
	if err != nil {
		return h.fail(c, err)
	}

	data := fiber.Map{
		"message": "Registration successful. Please verify your email.",
		"user_id": result.UserID,
	}
	if result.DebugCode != "" {
		data["debug_code"] = result.DebugCode
	}
	return api.Success(c, http.StatusCreated, data)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates and returns a session token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return api.Fail(c, http.StatusBadRequest, err.Error(), CodeValidation, nil)
	}
	if req.Email == "" || req.Password == "" {
		return api.Fail(c, http.StatusBadRequest, "email and password are required", CodeValidation, nil)
	}

	payload, err := h.svc.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}
	return api.Success(c, http.StatusOK, fiber.Map{"token": payload.Token, "user": payload.User})
}

type verifyRequest struct {
	UserID string `json:"user_id"`
	Code   string `json:"code"`
}

// VerifyOTP consumes a code and activates the account.
func (h *Handler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return api.Fail(c, http.StatusBadRequest, err.Error(), CodeValidation, nil)
	}
	if req.UserID == "" || req.Code == "" {
		return api.Fail(c, http.StatusBadRequest, "user_id and code are required", CodeValidation, nil)
	}

	payload, err := h.svc.VerifyOTP(c.UserContext(), req.UserID, req.Code)
	if err != nil {
		return h.fail(c, err)
	}
	return api.Success(c, http.StatusOK, fiber.Map{
		"message": "Email verified successfully",
		"token":   payload.Token,
		"user":    payload.User,
	})
}

type resendRequest struct {
	UserID string `json:"user_id"`
}

// ResendOTP emails a fresh verification code.
func (h *Handler) ResendOTP(c *fiber.Ctx) error {
	var req resendRequest
	if err := c.BodyParser(&req); err != nil {
		return api.Fail(c, http.StatusBadRequest, err.Error(), CodeValidation, nil)
	}
	if req.UserID == "" {
		return api.Fail(c, http.StatusBadRequest, "user_id is required", CodeValidation, nil)
	}

	if err := h.svc.ResendOTP(c.UserContext(), req.UserID); err != nil {
		return h.fail(c, err)
	}
	return api.Success(c, http.StatusOK, fiber.Map{"message": "Verification code sent"})
}

// fail maps workflow errors onto the envelope. Unexpected faults are logged
// and masked behind a generic server error.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var authErr *Error
	if errors.As(err, &authErr) {
		var details any
		if authErr.UserID != "" {
			details = fiber.Map{"user_id": authErr.UserID}
		}
		return api.Fail(c, statusForCode(authErr.Code), authErr.Message, authErr.Code, details)
	}

	h.logger.Error("auth request failed",
		slog.String("path", c.Path()),
		slog.Any("error", err),
	)
	return api.Fail(c, http.StatusInternalServerError, "Something went wrong", CodeServerError, nil)
}

func statusForCode(code string) int {
	switch code {
	case CodeRestrictedLocation, CodeAccountInactive:
		return http.StatusForbidden
	case CodeLocationUnavailable:
		return http.StatusServiceUnavailable
	case CodeUserExists:
		return http.StatusConflict
	case CodeInvalidCredentials, CodeUnverifiedUser:
		return http.StatusUnauthorized
	case CodeInvalidOTP, CodeValidation:
		return http.StatusBadRequest
	case CodeOTPRateLimit:
		return http.StatusTooManyRequests
	case CodeEmailSendFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// clientIP prefers proxy headers over the socket address.
func clientIP(c *fiber.Ctx) string {
	if ip := c.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if fwd := c.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return c.IP()
}
